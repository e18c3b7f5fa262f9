package logging

import "log/slog"

// Slog adapts a *slog.Logger to the Logger interface, mirroring the
// key/value field convention the corpus uses throughout its slog call
// sites (e.g. slog.Info("...", "resource", id, "error", err)).
type Slog struct {
	logger *slog.Logger
	debug  bool
}

// NewSlog wraps logger. When debug is true every record gains a
// "verbose"=true field; per spec §9 Design Note (b) the debug toggle is a
// hint to sinks like this one, never a branch in core logic.
func NewSlog(logger *slog.Logger, debug bool) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{logger: logger, debug: debug}
}

func (s *Slog) Info(msg string, fields ...any) {
	s.logger.Info(msg, s.withDebug(fields)...)
}

func (s *Slog) withDebug(fields []any) []any {
	if !s.debug {
		return fields
	}
	return append(fields, "verbose", true)
}

func (s *Slog) Warning(msg string, fields ...any) {
	s.logger.Warn(msg, s.withDebug(fields)...)
}

func (s *Slog) Error(msg string, fields ...any) {
	s.logger.Error(msg, s.withDebug(fields)...)
}
