package statemachine

import (
	"testing"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/errs"
	"github.com/camguard/camguard/table"
)

func TestNextTableST1(t *testing.T) {
	cases := []struct {
		from camguard.CameraState
		op   camguard.OperationType
		want camguard.CameraState
	}{
		{camguard.Ready, camguard.StartStreaming, camguard.Streaming},
		{camguard.Ready, camguard.UpdateConfiguration, camguard.Ready},
		{camguard.Streaming, camguard.Pause, camguard.Paused},
		{camguard.Streaming, camguard.Stop, camguard.Stopped},
		{camguard.Streaming, camguard.UpdateConfiguration, camguard.Streaming},
		{camguard.Paused, camguard.Resume, camguard.Streaming},
		{camguard.Paused, camguard.Stop, camguard.Stopped},
		{camguard.Stopped, camguard.Prepare, camguard.Ready},
		{camguard.ErrorState, camguard.Reset, camguard.Ready},
	}
	for _, tc := range cases {
		got, ok := Next(tc.from, tc.op)
		if !ok {
			t.Errorf("Next(%v, %v): expected a defined transition", tc.from, tc.op)
			continue
		}
		if got != tc.want {
			t.Errorf("Next(%v, %v) = %v, want %v", tc.from, tc.op, got, tc.want)
		}
	}
}

func TestNextUndefinedPairRejected(t *testing.T) {
	if _, ok := Next(camguard.Ready, camguard.Pause); ok {
		t.Error("Pause from Ready should be undefined")
	}
	if _, ok := Next(camguard.Stopped, camguard.StartStreaming); ok {
		t.Error("StartStreaming from Stopped should be undefined")
	}
}

func TestBeginOperationRejectsWrongOwner(t *testing.T) {
	tbl := table.New()
	id := camguard.NewCameraId(0)
	tbl.Acquire(id, camguard.NewOwnerToken("owner"))
	tbl.SetState(id, camguard.Ready)

	m := New(tbl)
	ticket := m.BeginOperation(id, camguard.NewOwnerToken("stranger"), camguard.StartStreaming)
	if ticket.Ok() {
		t.Fatal("expected rejection for a non-owner")
	}
	if ticket.Code != errs.OwnershipConflict {
		t.Errorf("code = %v, want OwnershipConflict", ticket.Code)
	}
	if got := tbl.GetState(id); got != camguard.Ready {
		t.Errorf("state should be unchanged on rejection, got %v", got)
	}
}

func TestBeginOperationRejectsIllegalTransition(t *testing.T) {
	tbl := table.New()
	id := camguard.NewCameraId(0)
	owner := camguard.NewOwnerToken("owner")
	tbl.Acquire(id, owner)
	tbl.SetState(id, camguard.Ready)

	m := New(tbl)
	ticket := m.BeginOperation(id, owner, camguard.Pause)
	if ticket.Ok() {
		t.Fatal("expected rejection for an illegal transition")
	}
	if ticket.Code != errs.IllegalTransition {
		t.Errorf("code = %v, want IllegalTransition", ticket.Code)
	}
	if got := tbl.GetState(id); got != camguard.Ready {
		t.Errorf("state should be unchanged on rejection, got %v", got)
	}
}

func TestBeginOperationCommitsOnSuccess(t *testing.T) {
	tbl := table.New()
	id := camguard.NewCameraId(0)
	owner := camguard.NewOwnerToken("owner")
	tbl.Acquire(id, owner)
	tbl.SetState(id, camguard.Ready)

	m := New(tbl)
	ticket := m.BeginOperation(id, owner, camguard.StartStreaming)
	if !ticket.Ok() {
		t.Fatalf("expected acceptance, got code %v", ticket.Code)
	}
	if got := tbl.GetState(id); got != camguard.Streaming {
		t.Errorf("state = %v, want Streaming", got)
	}
}

func TestBeginOperationAllowsOwnershipExemptPrepare(t *testing.T) {
	tbl := table.New()
	id := camguard.NewCameraId(0)
	tbl.SetState(id, camguard.Stopped)

	m := New(tbl)
	ticket := m.BeginOperation(id, camguard.NewOwnerToken("anyone"), camguard.Prepare)
	if !ticket.Ok() {
		t.Fatalf("Prepare should not require ownership, got code %v", ticket.Code)
	}
}
