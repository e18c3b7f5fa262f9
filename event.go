package camguard

import (
	"time"

	"github.com/camguard/camguard/errs"
)

// CompletionEvent is the asynchronous notification the scheduler emits
// when an accepted request has succeeded, been cancelled, timed out, or
// faulted in the adapter. success is true iff Code is the zero Code.
type CompletionEvent struct {
	ResourceId  ResourceId
	OperationId OperationId
	Success     bool
	Operation   OperationType
	StateAfter  CameraState
	Metadata    map[string]string
	Code        errs.Code
	Timestamp   time.Time
}

// SuccessEvent builds a completion event for a successful operation.
func SuccessEvent(resource ResourceId, opID OperationId, op OperationType, stateAfter CameraState) CompletionEvent {
	return CompletionEvent{
		ResourceId:  resource,
		OperationId: opID,
		Success:     true,
		Operation:   op,
		StateAfter:  stateAfter,
		Timestamp:   time.Now(),
	}
}

// FailureEvent builds a completion event for a failed operation. stateAfter
// is the state the state machine had already committed to before the
// failure occurred (the adapter call itself never mutates state).
func FailureEvent(resource ResourceId, opID OperationId, op OperationType, stateAfter CameraState, code errs.Code) CompletionEvent {
	return CompletionEvent{
		ResourceId:  resource,
		OperationId: opID,
		Success:     false,
		Operation:   op,
		StateAfter:  stateAfter,
		Code:        code,
		Timestamp:   time.Now(),
	}
}

// Callbacks is the fixed set of typed completion callbacks a Session
// dispatches on, one per OperationType. A nil field means the caller
// does not care about that completion kind. Modelled as a struct of
// named fields rather than a tagged union or interface type-switch,
// matching Go's preference for explicit dispatch over reflection.
type Callbacks struct {
	OnStarted       func(CompletionEvent)
	OnStopped       func(CompletionEvent)
	OnPaused        func(CompletionEvent)
	OnResumed       func(CompletionEvent)
	OnReconfigured  func(CompletionEvent)
	OnPrepared      func(CompletionEvent)
	OnReset         func(CompletionEvent)
}

// For returns the callback registered for op, or nil.
func (c Callbacks) For(op OperationType) func(CompletionEvent) {
	switch op {
	case StartStreaming:
		return c.OnStarted
	case Stop:
		return c.OnStopped
	case Pause:
		return c.OnPaused
	case Resume:
		return c.OnResumed
	case UpdateConfiguration:
		return c.OnReconfigured
	case Prepare:
		return c.OnPrepared
	case Reset:
		return c.OnReset
	default:
		return nil
	}
}
