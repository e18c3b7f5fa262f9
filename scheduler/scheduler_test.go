package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/errs"
	"github.com/camguard/camguard/eventhub"
	"github.com/camguard/camguard/hwadapter"
	"github.com/camguard/camguard/table"
)

type fakeAdapter struct {
	mu       sync.Mutex
	fail     bool
	block    chan struct{}
	started  int
}

func (a *fakeAdapter) Start(ctx context.Context) error {
	a.mu.Lock()
	a.started++
	fail := a.fail
	block := a.block
	a.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return errors.New("simulated hardware fault")
	}
	return nil
}
func (a *fakeAdapter) Stop(ctx context.Context) error                                   { return nil }
func (a *fakeAdapter) Pause(ctx context.Context) error                                  { return nil }
func (a *fakeAdapter) Resume(ctx context.Context) error                                 { return nil }
func (a *fakeAdapter) UpdateConfiguration(ctx context.Context, cfg camguard.CameraConfiguration) error { return nil }

var _ hwadapter.Adapter = (*fakeAdapter)(nil)

func newTestScheduler(t *testing.T) (*Scheduler, *table.Table, *eventhub.Hub) {
	t.Helper()
	tbl := table.New()
	hub := eventhub.New(nil)
	sch := New(tbl, hub, Options{})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sch.Shutdown(ctx)
	})
	return sch, tbl, hub
}

func subscribeOne(hub *eventhub.Hub) <-chan camguard.CompletionEvent {
	ch := make(chan camguard.CompletionEvent, 4)
	hub.Subscribe(func(ev camguard.CompletionEvent) { ch <- ev })
	return ch
}

func TestEnqueueSucceedsAndEmitsSuccessEvent(t *testing.T) {
	sch, tbl, hub := newTestScheduler(t)
	id := camguard.NewCameraId(0)
	tbl.SetState(id, camguard.Ready)
	tbl.RegisterAdapter(id, &fakeAdapter{})
	token := camguard.NewOwnerToken("owner")
	tbl.Acquire(id, token)

	events := subscribeOne(hub)
	ticket := sch.Enqueue(id, token, camguard.StartStreaming, nil, nil)
	if !ticket.Ok() {
		t.Fatalf("expected Accepted, got code %v", ticket.Code)
	}

	select {
	case ev := <-events:
		if !ev.Success {
			t.Errorf("expected a success event, code=%v", ev.Code)
		}
		if ev.StateAfter != camguard.Streaming {
			t.Errorf("StateAfter = %v, want Streaming", ev.StateAfter)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion event")
	}
}

func TestEnqueuePreCancelledFailsImmediately(t *testing.T) {
	sch, tbl, _ := newTestScheduler(t)
	id := camguard.NewCameraId(0)
	token := camguard.NewOwnerToken("owner")
	tbl.Acquire(id, token)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ticket := sch.Enqueue(id, token, camguard.StartStreaming, nil, ctx)
	if ticket.Ok() {
		t.Fatal("expected immediate failure for a pre-cancelled context")
	}
	if ticket.Code != errs.Cancelled {
		t.Errorf("code = %v, want Cancelled", ticket.Code)
	}
}

func TestWorkerRejectsIllegalTransitionWithNoEvent(t *testing.T) {
	sch, tbl, hub := newTestScheduler(t)
	id := camguard.NewCameraId(0)
	tbl.SetState(id, camguard.Ready)
	token := camguard.NewOwnerToken("owner")
	tbl.Acquire(id, token)

	events := subscribeOne(hub)
	// Pause is illegal from Ready.
	sch.Enqueue(id, token, camguard.Pause, nil, nil)

	select {
	case ev := <-events:
		t.Fatalf("expected no completion event, got %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestHardwareFaultPublishesFailureEvent(t *testing.T) {
	sch, tbl, hub := newTestScheduler(t)
	id := camguard.NewCameraId(0)
	tbl.SetState(id, camguard.Ready)
	tbl.RegisterAdapter(id, &fakeAdapter{fail: true})
	token := camguard.NewOwnerToken("owner")
	tbl.Acquire(id, token)

	events := subscribeOne(hub)
	sch.Enqueue(id, token, camguard.StartStreaming, nil, nil)

	select {
	case ev := <-events:
		if ev.Success {
			t.Fatal("expected a failure event")
		}
		if ev.Code != errs.HardwareFault {
			t.Errorf("code = %v, want HardwareFault", ev.Code)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the failure event")
	}
}

func TestCallerCancellationDuringAdapterCallPublishesCancelled(t *testing.T) {
	sch, tbl, hub := newTestScheduler(t)
	id := camguard.NewCameraId(0)
	tbl.SetState(id, camguard.Ready)
	block := make(chan struct{})
	tbl.RegisterAdapter(id, &fakeAdapter{block: block})
	token := camguard.NewOwnerToken("owner")
	tbl.Acquire(id, token)

	ctx, cancel := context.WithCancel(context.Background())
	events := subscribeOne(hub)
	sch.Enqueue(id, token, camguard.StartStreaming, nil, ctx)

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case ev := <-events:
		if ev.Success {
			t.Fatal("expected a failure event")
		}
		if ev.Code != errs.Cancelled {
			t.Errorf("code = %v, want Cancelled", ev.Code)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the cancelled event")
	}
}

func TestOperationTimeoutPublishesTimeoutCode(t *testing.T) {
	tbl := table.New()
	hub := eventhub.New(nil)
	sch := New(tbl, hub, Options{Timeouts: TimeoutProfile{
		Start:    30 * time.Millisecond,
		Fallback: time.Second,
	}})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sch.Shutdown(ctx)
	})

	id := camguard.NewCameraId(0)
	tbl.SetState(id, camguard.Ready)
	block := make(chan struct{})
	tbl.RegisterAdapter(id, &fakeAdapter{block: block})
	token := camguard.NewOwnerToken("owner")
	tbl.Acquire(id, token)

	events := subscribeOne(hub)
	sch.Enqueue(id, token, camguard.StartStreaming, nil, nil)

	select {
	case ev := <-events:
		if ev.Code != errs.Timeout {
			t.Errorf("code = %v, want Timeout", ev.Code)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the timeout event")
	}
}
