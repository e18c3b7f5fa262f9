// Package table implements the Resource Table: the registry of
// ResourceDescriptors keyed by ResourceId, providing atomic single-owner
// admission control and coherent state reads. A process-wide read/write
// exclusion guards the owner and state fields; adapter invocations never
// execute under this lock.
package table

import (
	"sync"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/errs"
	"github.com/camguard/camguard/hwadapter"
)

// Descriptor is the per-resource record the table owns. It is mutated
// only under the table's write lock, except for adapter invocations
// which the scheduler makes outside any lock.
type Descriptor struct {
	Id      camguard.ResourceId
	State   camguard.CameraState
	Owner   *camguard.OwnerToken
	Adapter hwadapter.Adapter

	// excl is the immediate-acquire exclusion primitive: a non-blocking
	// try-acquire implemented as a mutex-guarded flag rather than a channel,
	// a substitute for a semaphore whose TryAcquire never blocks.
	excl excl
}

type excl struct {
	mu    sync.Mutex
	taken bool
}

func (e *excl) tryAcquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.taken {
		return false
	}
	e.taken = true
	return true
}

func (e *excl) release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.taken = false
}

// Table is the Resource Table. The zero value is not usable; construct
// with New.
type Table struct {
	mu          sync.RWMutex
	descriptors map[camguard.ResourceId]*Descriptor
}

// New constructs an empty Table.
func New() *Table {
	return &Table{descriptors: make(map[camguard.ResourceId]*Descriptor)}
}

// Ensure idempotently inserts-or-gets a descriptor at state
// Uninitialized with no owner.
func (t *Table) Ensure(id camguard.ResourceId) *Descriptor {
	t.mu.RLock()
	d, ok := t.descriptors[id]
	t.mu.RUnlock()
	if ok {
		return d
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if d, ok := t.descriptors[id]; ok {
		return d
	}
	d = &Descriptor{Id: id, State: camguard.Uninitialized}
	t.descriptors[id] = d
	return d
}

// Acquire attempts to become the single owner of id. The two-phase
// protocol (try-acquire the exclusion primitive, then verify no writer
// beat us to recording an owner under the write lock) prevents the race
// in which the primitive is acquired but another writer has already
// recorded an owner.
func (t *Table) Acquire(id camguard.ResourceId, token camguard.OwnerToken) camguard.OperationTicket {
	opID := camguard.NewOperationId()
	d := t.Ensure(id)

	if !d.excl.tryAcquire() {
		return camguard.FailedTicket(opID, errs.OwnershipConflict)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if d.Owner == nil {
		owner := token
		d.Owner = &owner
		return camguard.AcceptedTicket(opID)
	}

	d.excl.release()
	return camguard.FailedTicket(opID, errs.OwnershipConflict)
}

// Release relinquishes ownership of id held by token. Non-owners cannot
// unlock: if the current owner does not equal token, Release leaves the
// owner unchanged and returns false.
func (t *Table) Release(id camguard.ResourceId, token camguard.OwnerToken) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.descriptors[id]
	if !ok || d.Owner == nil || *d.Owner != token {
		return false
	}

	d.Owner = nil
	d.excl.release()
	return true
}

// SetState unconditionally writes the state of id under exclusive mode.
// This primitive is unchecked by design: the state machine is the sole
// gatekeeper of legality, not the table.
func (t *Table) SetState(id camguard.ResourceId, next camguard.CameraState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.descriptors[id]
	if !ok {
		d = &Descriptor{Id: id}
		t.descriptors[id] = d
	}
	d.State = next
}

// WithStateLock runs decide once under the table's exclusive write lock,
// passing it the current state and owner of id, and commits the state it
// returns. This is the single critical section the state machine's
// BeginOperation needs: the ownership check, the transition lookup, and
// the SetState commit happen atomically, so no observer can witness an
// intermediate state. decide's second return value is threaded back to
// the caller unchanged.
func (t *Table) WithStateLock(id camguard.ResourceId, decide func(current camguard.CameraState, owner *camguard.OwnerToken) (camguard.CameraState, camguard.OperationTicket)) camguard.OperationTicket {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.descriptors[id]
	if !ok {
		d = &Descriptor{Id: id, State: camguard.Uninitialized}
		t.descriptors[id] = d
	}

	next, ticket := decide(d.State, d.Owner)
	d.State = next
	return ticket
}

// GetState reads the current state of id under shared mode. An unknown
// id reads as Uninitialized.
func (t *Table) GetState(id camguard.ResourceId) camguard.CameraState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.descriptors[id]
	if !ok {
		return camguard.Uninitialized
	}
	return d.State
}

// CurrentOwner reads the current owner of id, and whether one is set.
func (t *Table) CurrentOwner(id camguard.ResourceId) (camguard.OwnerToken, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.descriptors[id]
	if !ok || d.Owner == nil {
		return camguard.OwnerToken{}, false
	}
	return *d.Owner, true
}

// RegisterAdapter binds an adapter handle to the descriptor for id.
// Exactly-once in production; re-binding is permitted and replaces the
// previously bound handle.
func (t *Table) RegisterAdapter(id camguard.ResourceId, adapter hwadapter.Adapter) {
	d := t.Ensure(id)
	t.mu.Lock()
	defer t.mu.Unlock()
	d.Adapter = adapter
}

// Descriptor returns the descriptor for id, creating it at
// Uninitialized if absent. The returned pointer must only be read; all
// mutation goes through the Table's own methods.
func (t *Table) Descriptor(id camguard.ResourceId) *Descriptor {
	return t.Ensure(id)
}

// AdapterFor returns the adapter bound to id, or nil if none is bound or
// the resource is unknown.
func (t *Table) AdapterFor(id camguard.ResourceId) hwadapter.Adapter {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.descriptors[id]
	if !ok {
		return nil
	}
	return d.Adapter
}

// FirstFree returns the id of the first descriptor among ids with no
// current owner, trying Acquire on each in order until one succeeds.
// Used by the host façade to implement create_session's "first free
// resource" policy.
func (t *Table) FirstFree(ids []camguard.ResourceId, token camguard.OwnerToken) (camguard.ResourceId, bool) {
	for _, id := range ids {
		if t.Acquire(id, token).Ok() {
			return id, true
		}
	}
	return camguard.ResourceId{}, false
}
