package scheduler

import (
	"time"

	"github.com/camguard/camguard"
)

// TimeoutProfile resolves the per-operation timeout the scheduler composes
// into each request's cancellation scope. A timeout of zero or less
// disables the timeout branch entirely (the operation can then only be
// cancelled by the caller or by scheduler shutdown).
type TimeoutProfile struct {
	Start               time.Duration
	Stop                time.Duration
	Pause               time.Duration
	Resume              time.Duration
	UpdateConfiguration time.Duration
	Reset               time.Duration
	Fallback            time.Duration
}

// DefaultTimeoutProfile returns the spec's default timeout table.
func DefaultTimeoutProfile() TimeoutProfile {
	return TimeoutProfile{
		Start:               5 * time.Second,
		Stop:                5 * time.Second,
		Pause:               3 * time.Second,
		Resume:              3 * time.Second,
		UpdateConfiguration: 4 * time.Second,
		Reset:               10 * time.Second,
		Fallback:            5 * time.Second,
	}
}

// For resolves the configured timeout for op, falling back to Fallback
// for any operation type the profile does not special-case (notably
// Prepare, which carries no adapter call and so never blocks).
func (p TimeoutProfile) For(op camguard.OperationType) time.Duration {
	switch op {
	case camguard.StartStreaming:
		return p.Start
	case camguard.Stop:
		return p.Stop
	case camguard.Pause:
		return p.Pause
	case camguard.Resume:
		return p.Resume
	case camguard.UpdateConfiguration:
		return p.UpdateConfiguration
	case camguard.Reset:
		return p.Reset
	default:
		return p.Fallback
	}
}

// Infinite disables the timeout branch for an operation (a duration of
// zero has the same effect; Infinite documents the intent at call sites).
const Infinite time.Duration = 0
