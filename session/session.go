// Package session implements the per-owner façade: it binds an
// OwnerToken to a resource, pre-validates ownership and transitions
// synchronously, assigns a stable operation id before handing control to
// the scheduler, and filters hub completions back to typed callbacks.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/errs"
	"github.com/camguard/camguard/eventhub"
	"github.com/camguard/camguard/scheduler"
	"github.com/camguard/camguard/statemachine"
	"github.com/camguard/camguard/table"
)

// Session is the per-owner façade described in spec §4.5. Sessions share
// one Table, one Scheduler and one Hub per host. Construct with New;
// release with Dispose.
type Session struct {
	id         string
	resourceID camguard.ResourceId
	token      camguard.OwnerToken

	table     *table.Table
	scheduler *scheduler.Scheduler
	hub       *eventhub.Hub
	callbacks camguard.Callbacks

	subscription eventhub.Token
	disposed     atomic.Bool

	mu      sync.Mutex
	pending map[camguard.OperationId]camguard.OperationType
}

// New constructs a Session bound to resourceID under the given session
// id, and subscribes it to hub's completion stream. id becomes the
// OwnerToken the table must see recorded as the current owner for
// ownership-requiring operations to succeed — New itself performs no
// acquisition; the host façade acquires ownership before handing out a
// Session.
func New(id string, resourceID camguard.ResourceId, t *table.Table, s *scheduler.Scheduler, h *eventhub.Hub, callbacks camguard.Callbacks) *Session {
	sess := &Session{
		id:         id,
		resourceID: resourceID,
		token:      camguard.NewOwnerToken(id),
		table:      t,
		scheduler:  s,
		hub:        h,
		callbacks:  callbacks,
		pending:    make(map[camguard.OperationId]camguard.OperationType),
	}
	sess.subscription = h.Subscribe(sess.onCompletion)
	return sess
}

// ID returns the session identifier it was constructed with. The host
// façade uses this as the external handle callers address a session by.
func (s *Session) ID() string { return s.id }

// Token returns the OwnerToken this session presents to the table and
// scheduler. The host façade uses it to release ownership on shutdown.
func (s *Session) Token() camguard.OwnerToken { return s.token }

// ResourceId returns the resource this session is bound to.
func (s *Session) ResourceId() camguard.ResourceId { return s.resourceID }

// GetCurrentState returns the table's current state under its shared
// lock. It never blocks on an adapter call.
func (s *Session) GetCurrentState() camguard.CameraState {
	return s.table.GetState(s.resourceID)
}

// StartStreaming requests the StartStreaming operation. cancel may be
// nil; a non-nil context already Done at call time fails immediately
// with CT0001.
func (s *Session) StartStreaming(cancel context.Context) camguard.OperationTicket {
	return s.operation(camguard.StartStreaming, nil, cancel)
}

// Stop requests the Stop operation.
func (s *Session) Stop(cancel context.Context) camguard.OperationTicket {
	return s.operation(camguard.Stop, nil, cancel)
}

// Pause requests the Pause operation.
func (s *Session) Pause(cancel context.Context) camguard.OperationTicket {
	return s.operation(camguard.Pause, nil, cancel)
}

// Resume requests the Resume operation.
func (s *Session) Resume(cancel context.Context) camguard.OperationTicket {
	return s.operation(camguard.Resume, nil, cancel)
}

// UpdateConfiguration requests the UpdateConfiguration operation with
// cfg as the per-request override.
func (s *Session) UpdateConfiguration(cfg camguard.CameraConfiguration, cancel context.Context) camguard.OperationTicket {
	return s.operation(camguard.UpdateConfiguration, &cfg, cancel)
}

// Prepare requests the Prepare operation. Prepare is ownership-exempt
// per spec, but the session was itself created against a specific
// resource, so it is still routed through the same pre-check path.
func (s *Session) Prepare(cancel context.Context) camguard.OperationTicket {
	return s.operation(camguard.Prepare, nil, cancel)
}

// Reset requests the Reset operation.
func (s *Session) Reset(cancel context.Context) camguard.OperationTicket {
	return s.operation(camguard.Reset, nil, cancel)
}

// operation is the shared per-operation entry point of spec §4.5:
//  1. pre-cancelled caller handle -> CT0001.
//  2. ownership pre-check (advisory; the scheduler re-checks under lock).
//  3. pure transition-table pre-check on the observed state.
//  4. allocate an operation id, record it pending, enqueue with that id.
//  5. on immediate scheduler failure, remove the pending entry.
func (s *Session) operation(op camguard.OperationType, cfg *camguard.CameraConfiguration, cancel context.Context) camguard.OperationTicket {
	opID := camguard.NewOperationId()

	if cancel != nil && cancel.Err() != nil {
		return camguard.FailedTicket(opID, errs.Cancelled)
	}

	if op.RequiresOwnership() {
		owner, ok := s.table.CurrentOwner(s.resourceID)
		if !ok || owner != s.token {
			return camguard.FailedTicket(opID, errs.OwnershipConflict)
		}
	}

	current := s.table.GetState(s.resourceID)
	if _, ok := statemachine.Next(current, op); !ok {
		return camguard.FailedTicket(opID, errs.IllegalTransition)
	}

	s.addPending(opID, op)

	ticket := s.scheduler.EnqueueWithID(opID, s.resourceID, s.token, op, cfg, cancel)
	if !ticket.Ok() {
		s.removePending(opID)
	}
	return ticket
}

func (s *Session) addPending(id camguard.OperationId, op camguard.OperationType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[id] = op
}

func (s *Session) removePending(id camguard.OperationId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// onCompletion filters the hub's completion stream: events for another
// resource, or for an operation id this session never issued (or
// already consumed), are ignored.
func (s *Session) onCompletion(ev camguard.CompletionEvent) {
	if s.disposed.Load() {
		return
	}
	if ev.ResourceId != s.resourceID {
		return
	}

	s.mu.Lock()
	op, ok := s.pending[ev.OperationId]
	if ok {
		delete(s.pending, ev.OperationId)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	if cb := s.callbacks.For(op); cb != nil {
		cb(ev)
	}
}

// Dispose unsubscribes the session from the hub; a disposed session
// stops receiving typed events. Disposal does not release ownership —
// that is the host façade's duty on shutdown.
func (s *Session) Dispose() {
	if s.disposed.CompareAndSwap(false, true) {
		s.hub.Unsubscribe(s.subscription)
	}
}
