// Package errs defines the closed error taxonomy shared by every camguard
// component: a (prefix, integer) code rendered as PREFIX#### plus a small
// wrapping error that carries the operation and an optional cause.
package errs

import "fmt"

// Code is a stable (prefix, integer) error identifier, e.g. OWN2001.
// Two codes are equal iff both fields match.
type Code struct {
	Prefix string
	Number int
}

// String renders the code as PREFIX#### with the number zero-padded to at
// least four digits.
func (c Code) String() string {
	return fmt.Sprintf("%s%04d", c.Prefix, c.Number)
}

// IsZero reports whether c is the unset code.
func (c Code) IsZero() bool {
	return c == Code{}
}

// The closed set of codes used by the core, per the error taxonomy table.
var (
	OwnershipConflict = Code{Prefix: "OWN", Number: 2001}
	IllegalTransition = Code{Prefix: "ARG", Number: 3001}
	NotInitialized    = Code{Prefix: "ARG", Number: 3002}
	Cancelled         = Code{Prefix: "CT", Number: 1}
	Timeout           = Code{Prefix: "CT", Number: 2}
	HardwareFault     = Code{Prefix: "HW", Number: 1001}
)

// Error wraps a Code with the operation that produced it and an optional
// underlying cause. The operation name is the camguard operation type or
// component method, not a human sentence.
type Error struct {
	Code Code
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Code.String()
	if e.Op != "" {
		s += " " + e.Op
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for code with no underlying cause.
func New(code Code, op, msg string) *Error {
	return &Error{Code: code, Op: op, Msg: msg}
}

// Wrap builds an *Error for code around an existing cause.
func Wrap(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// Of extracts the Code carried by err, the zero Code if err is nil or
// carries none.
func Of(err error) Code {
	if err == nil {
		return Code{}
	}
	var e *Error
	if ce, ok := err.(*Error); ok {
		e = ce
	} else if ce, ok := unwrapToError(err); ok {
		e = ce
	}
	if e == nil {
		return Code{}
	}
	return e.Code
}

func unwrapToError(err error) (*Error, bool) {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		u, ok := err.(unwrapper)
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
