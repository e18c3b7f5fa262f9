package host

import (
	"context"
	"testing"
	"time"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/errs"
	"github.com/camguard/camguard/stubadapter"
)

func TestCreateSessionBeforeInitializeFails(t *testing.T) {
	h := New()
	_, err := h.CreateSession("", camguard.Callbacks{})
	if errs.Of(err) != errs.NotInitialized {
		t.Fatalf("code = %v, want NotInitialized", errs.Of(err))
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	h := New()
	if err := h.Initialize(Options{ResourceCount: 2}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	sess, err := h.CreateSession("alice", camguard.Callbacks{})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Re-initializing must not reset state: the live session should survive.
	if err := h.Initialize(Options{ResourceCount: 99}); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}
	if _, ok := h.Session(sess.ID()); !ok {
		t.Fatal("session should survive a redundant Initialize call")
	}
}

func TestCreateSessionExhaustsResources(t *testing.T) {
	h := New()
	if err := h.Initialize(Options{ResourceCount: 1}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if _, err := h.CreateSession("a", camguard.Callbacks{}); err != nil {
		t.Fatalf("first CreateSession failed: %v", err)
	}
	_, err := h.CreateSession("b", camguard.Callbacks{})
	if errs.Of(err) != errs.OwnershipConflict {
		t.Fatalf("code = %v, want OwnershipConflict", errs.Of(err))
	}
}

func TestCloseSessionFreesResourceForReuse(t *testing.T) {
	h := New()
	if err := h.Initialize(Options{ResourceCount: 1}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	first, err := h.CreateSession("a", camguard.Callbacks{})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	h.CloseSession(first)

	if _, err := h.CreateSession("b", camguard.Callbacks{}); err != nil {
		t.Fatalf("expected the freed resource to be reusable: %v", err)
	}
}

func TestEndToEndStartThroughStub(t *testing.T) {
	h := New()
	err := h.Initialize(Options{
		ResourceCount:  1,
		AdapterFactory: stubadapter.NewFactory(stubadapter.Options{}),
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	})

	done := make(chan camguard.CompletionEvent, 1)
	sess, err := h.CreateSession("a", camguard.Callbacks{
		OnStarted: func(ev camguard.CompletionEvent) { done <- ev },
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if ticket := sess.StartStreaming(nil); !ticket.Ok() {
		t.Fatalf("StartStreaming failed immediately: %v", ticket.Code)
	}

	select {
	case ev := <-done:
		if !ev.Success {
			t.Errorf("expected success, code=%v", ev.Code)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnStarted")
	}

	statuses, err := h.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(statuses) != 1 || statuses[0].State != camguard.Streaming {
		t.Errorf("unexpected status: %+v", statuses)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	h := New()
	if err := h.Initialize(Options{ResourceCount: 1}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := h.Shutdown(ctx); err != nil {
		t.Fatalf("first Shutdown failed: %v", err)
	}
	if err := h.Shutdown(ctx); err != nil {
		t.Fatalf("second Shutdown should be a no-op, got: %v", err)
	}
}
