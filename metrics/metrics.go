// Package metrics defines the narrow metrics sink camguard's core
// consumes: an operations counter, a failures counter, and a latency
// histogram. No third-party metrics client appears anywhere in the
// retrieved reference corpus, so the default implementation here
// (memmetrics.go) is a lock-protected in-memory store rather than an
// adopted library; see DESIGN.md for the justification.
package metrics

import "github.com/camguard/camguard"

// Sink is the three-instrument metrics surface the core writes to.
// Implementations must be safe for concurrent use.
type Sink interface {
	// IncOperations increments operations_total{type} on acceptance.
	IncOperations(op camguard.OperationType)

	// IncFailures increments operation_failures_total{type,error} on
	// failures seen by the scheduler: a pre-cancelled intake, a worker-time
	// rejection, and every asynchronous failure. Rejections made by a
	// Session's synchronous pre-checks never reach the scheduler and are
	// not counted.
	IncFailures(op camguard.OperationType, code string)

	// ObserveLatency records operation_latency_ms{type} on success.
	ObserveLatency(op camguard.OperationType, ms float64)
}

// Nop discards every observation. Useful as a zero-value default.
type Nop struct{}

func (Nop) IncOperations(camguard.OperationType)             {}
func (Nop) IncFailures(camguard.OperationType, string)       {}
func (Nop) ObserveLatency(camguard.OperationType, float64)   {}
