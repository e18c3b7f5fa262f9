package session

import (
	"context"
	"testing"
	"time"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/errs"
	"github.com/camguard/camguard/eventhub"
	"github.com/camguard/camguard/scheduler"
	"github.com/camguard/camguard/table"
)

func newTestSession(t *testing.T) (*Session, *table.Table, camguard.ResourceId) {
	t.Helper()
	tbl := table.New()
	hub := eventhub.New(nil)
	sch := scheduler.New(tbl, hub, scheduler.Options{})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sch.Shutdown(ctx)
	})

	id := camguard.NewCameraId(0)
	tbl.SetState(id, camguard.Ready)
	token := camguard.NewOwnerToken("sess-1")
	if !tbl.Acquire(id, token).Ok() {
		t.Fatal("setup acquire failed")
	}

	sess := New("sess-1", id, tbl, sch, hub, camguard.Callbacks{})
	t.Cleanup(sess.Dispose)
	return sess, tbl, id
}

func TestStartStreamingInvokesOnStarted(t *testing.T) {
	tbl := table.New()
	hub := eventhub.New(nil)
	sch := scheduler.New(tbl, hub, scheduler.Options{})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sch.Shutdown(ctx)
	})

	id := camguard.NewCameraId(0)
	tbl.SetState(id, camguard.Ready)
	token := camguard.NewOwnerToken("sess-1")
	tbl.Acquire(id, token)

	done := make(chan camguard.CompletionEvent, 1)
	sess := New("sess-1", id, tbl, sch, hub, camguard.Callbacks{
		OnStarted: func(ev camguard.CompletionEvent) { done <- ev },
	})
	defer sess.Dispose()

	ticket := sess.StartStreaming(nil)
	if !ticket.Ok() {
		t.Fatalf("expected Accepted, got %v", ticket.Code)
	}

	select {
	case ev := <-done:
		if !ev.Success {
			t.Errorf("expected success, code=%v", ev.Code)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnStarted")
	}
}

func TestOperationPreCheckRejectsIllegalTransition(t *testing.T) {
	sess, _, _ := newTestSession(t)

	ticket := sess.Pause(nil) // Ready -> Pause is illegal
	if ticket.Ok() {
		t.Fatal("expected rejection")
	}
	if ticket.Code != errs.IllegalTransition {
		t.Errorf("code = %v, want IllegalTransition", ticket.Code)
	}
}

func TestOperationPreCheckRejectsPreCancelled(t *testing.T) {
	sess, _, _ := newTestSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ticket := sess.StartStreaming(ctx)
	if ticket.Ok() {
		t.Fatal("expected rejection for a pre-cancelled context")
	}
	if ticket.Code != errs.Cancelled {
		t.Errorf("code = %v, want Cancelled", ticket.Code)
	}
}

func TestOperationRejectsWhenNotOwner(t *testing.T) {
	tbl := table.New()
	hub := eventhub.New(nil)
	sch := scheduler.New(tbl, hub, scheduler.Options{})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sch.Shutdown(ctx)
	})

	id := camguard.NewCameraId(0)
	tbl.SetState(id, camguard.Ready)
	// Someone else holds ownership.
	tbl.Acquire(id, camguard.NewOwnerToken("other"))

	sess := New("sess-1", id, tbl, sch, hub, camguard.Callbacks{})
	defer sess.Dispose()

	ticket := sess.StartStreaming(nil)
	if ticket.Ok() {
		t.Fatal("expected rejection for a non-owning session")
	}
	if ticket.Code != errs.OwnershipConflict {
		t.Errorf("code = %v, want OwnershipConflict", ticket.Code)
	}
}

func TestDisposedSessionIgnoresCompletions(t *testing.T) {
	sess, _, id := newTestSession(t)
	sess.Dispose()

	// Publishing after disposal should not panic or deliver anything;
	// onCompletion should short-circuit.
	sess.onCompletion(camguard.SuccessEvent(id, camguard.NewOperationId(), camguard.StartStreaming, camguard.Streaming))
}
