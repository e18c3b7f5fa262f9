// Package statemachine enforces the camguard transition table (ST-1) and
// the ownership precondition. The transition relation itself is pure; the
// only side effect is the table.SetState call BeginOperation makes on
// success.
package statemachine

import (
	"github.com/camguard/camguard"
	"github.com/camguard/camguard/errs"
	"github.com/camguard/camguard/table"
)

type transitionKey struct {
	from camguard.CameraState
	op   camguard.OperationType
}

// transitions is table ST-1: the fixed partial function from
// (state, operation) to a next state. Any pair absent here is a
// rejection, never an error.
var transitions = map[transitionKey]camguard.CameraState{
	{camguard.Ready, camguard.StartStreaming}:      camguard.Streaming,
	{camguard.Ready, camguard.UpdateConfiguration}: camguard.Ready,
	{camguard.Streaming, camguard.Pause}:           camguard.Paused,
	{camguard.Streaming, camguard.Stop}:            camguard.Stopped,
	{camguard.Streaming, camguard.UpdateConfiguration}: camguard.Streaming,
	{camguard.Paused, camguard.Resume}:             camguard.Streaming,
	{camguard.Paused, camguard.Stop}:               camguard.Stopped,
	{camguard.Stopped, camguard.Prepare}:           camguard.Ready,
	{camguard.ErrorState, camguard.Reset}:          camguard.Ready,
}

// Next looks up the pure transition relation without consulting
// ownership or mutating anything. Session uses this to pre-check a
// request synchronously against the currently observed state.
func Next(from camguard.CameraState, op camguard.OperationType) (camguard.CameraState, bool) {
	to, ok := transitions[transitionKey{from, op}]
	return to, ok
}

// Machine couples the pure transition relation to a Resource Table,
// providing the single BeginOperation critical section the scheduler
// calls at worker time.
type Machine struct {
	table *table.Table
}

// New builds a Machine backed by t.
func New(t *table.Table) *Machine {
	return &Machine{table: t}
}

// BeginOperation is the admission rule invoked under the table's write
// lock. Steps (2)-(4) below execute as one critical section: no observer
// can witness an intermediate state.
//
//  1. Ensure the descriptor exists.
//  2. If op requires ownership and the current owner is absent or not
//     token, fail with OwnershipConflict and leave state unchanged.
//  3. Look up (state, op); if undefined, fail with IllegalTransition and
//     leave state unchanged.
//  4. Otherwise set state to the next value and accept.
func (m *Machine) BeginOperation(id camguard.ResourceId, token camguard.OwnerToken, op camguard.OperationType) camguard.OperationTicket {
	opID := camguard.NewOperationId()
	m.table.Ensure(id)

	return m.table.WithStateLock(id, func(current camguard.CameraState, owner *camguard.OwnerToken) (camguard.CameraState, camguard.OperationTicket) {
		if op.RequiresOwnership() {
			if owner == nil || *owner != token {
				return current, camguard.FailedTicket(opID, errs.OwnershipConflict)
			}
		}

		next, ok := Next(current, op)
		if !ok {
			return current, camguard.FailedTicket(opID, errs.IllegalTransition)
		}

		return next, camguard.AcceptedTicket(opID)
	})
}
