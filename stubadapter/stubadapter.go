// Package stubadapter is a software-only hwadapter.Adapter reference
// implementation: no real device is touched. Each call sleeps for a
// configurable latency (observing ctx cancellation the way
// usbcamerasource's capture loop observes its stop channel) and can be
// made to fail on demand. The host and server tests use it in place of
// real hardware; the scheduler's own tests use a separate fake adapter.
package stubadapter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/hwadapter"
)

// Options configures a Stub adapter's simulated behaviour.
type Options struct {
	// Latency is how long each call pretends the hardware operation
	// takes. Zero means immediate.
	Latency time.Duration

	// FailNext, if set, is called before the simulated wait; returning
	// true fails the call with a hardware fault instead of succeeding.
	FailNext func(op camguard.OperationType) bool
}

// Stub is a software-only Adapter. The zero value has zero latency and
// never fails.
type Stub struct {
	id   camguard.ResourceId
	opts Options

	mu             sync.Mutex
	lastConfig     camguard.CameraConfiguration
	configured     bool
	callCount      map[camguard.OperationType]int
}

// New constructs a Stub for id.
func New(id camguard.ResourceId, opts Options) *Stub {
	return &Stub{id: id, opts: opts, callCount: make(map[camguard.OperationType]int)}
}

// NewFactory returns a hwadapter.Factory producing Stub adapters sharing
// the same Options for every resource.
func NewFactory(opts Options) hwadapter.Factory {
	return hwadapter.FactoryFunc(func(id camguard.ResourceId) (hwadapter.Adapter, error) {
		return New(id, opts), nil
	})
}

func (s *Stub) Start(ctx context.Context) error {
	return s.simulate(ctx, camguard.StartStreaming)
}

func (s *Stub) Stop(ctx context.Context) error {
	return s.simulate(ctx, camguard.Stop)
}

func (s *Stub) Pause(ctx context.Context) error {
	return s.simulate(ctx, camguard.Pause)
}

func (s *Stub) Resume(ctx context.Context) error {
	return s.simulate(ctx, camguard.Resume)
}

func (s *Stub) UpdateConfiguration(ctx context.Context, cfg camguard.CameraConfiguration) error {
	if err := s.simulate(ctx, camguard.UpdateConfiguration); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastConfig = cfg
	s.configured = true
	s.mu.Unlock()
	return nil
}

// LastConfiguration returns the configuration from the most recent
// successful UpdateConfiguration call, if any.
func (s *Stub) LastConfiguration() (camguard.CameraConfiguration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastConfig, s.configured
}

// Calls returns how many times op has been invoked on this stub.
func (s *Stub) Calls(op camguard.OperationType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callCount[op]
}

func (s *Stub) simulate(ctx context.Context, op camguard.OperationType) error {
	s.mu.Lock()
	if s.callCount == nil {
		s.callCount = make(map[camguard.OperationType]int)
	}
	s.callCount[op]++
	s.mu.Unlock()

	if s.opts.FailNext != nil && s.opts.FailNext(op) {
		return fmt.Errorf("stubadapter: simulated fault on resource %s op %s", s.id.String(), op)
	}

	if s.opts.Latency <= 0 {
		return ctx.Err()
	}

	select {
	case <-time.After(s.opts.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
