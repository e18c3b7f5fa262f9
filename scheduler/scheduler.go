// Package scheduler turns synchronous acceptance into asynchronous
// execution: Enqueue is non-blocking with respect to any adapter call,
// a single worker drains the intake queue in FIFO order, and exactly one
// completion event is emitted per accepted request unless the state
// machine rejects it at worker time.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/errs"
	"github.com/camguard/camguard/eventhub"
	"github.com/camguard/camguard/logging"
	"github.com/camguard/camguard/metrics"
	"github.com/camguard/camguard/statemachine"
	"github.com/camguard/camguard/table"
)

// Scheduler is the component described in spec §4.3. Construct with New;
// the zero value is not usable.
type Scheduler struct {
	table    *table.Table
	machine  *statemachine.Machine
	hub      *eventhub.Hub
	logger   logging.Logger
	metrics  metrics.Sink
	timeouts TimeoutProfile
	defaults camguard.CameraConfiguration

	queue *unboundedQueue

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
	wg             sync.WaitGroup
}

// Options configures a Scheduler at construction time. Zero-valued
// fields fall back to sane defaults (Nop logger/metrics, the spec's
// default timeout table, a 1280x720@30fps default configuration).
type Options struct {
	Timeouts      TimeoutProfile
	DefaultConfig camguard.CameraConfiguration
	Logger        logging.Logger
	Metrics       metrics.Sink
}

// New constructs a Scheduler over t, h and starts its single worker
// goroutine. Callers must call Shutdown to stop it.
func New(t *table.Table, h *eventhub.Hub, opts Options) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = logging.Nop{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	if opts.Timeouts == (TimeoutProfile{}) {
		opts.Timeouts = DefaultTimeoutProfile()
	}
	if opts.DefaultConfig == (camguard.CameraConfiguration{}) {
		opts.DefaultConfig = camguard.DefaultCameraConfiguration()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		table:          t,
		machine:        statemachine.New(t),
		hub:            h,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
		timeouts:       opts.Timeouts,
		defaults:       opts.DefaultConfig,
		queue:          newUnboundedQueue(),
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}

	s.wg.Add(1)
	go s.workerLoop()
	return s
}

// Enqueue is the synchronous intake entry point. It allocates a fresh
// operation id; use EnqueueWithID when a caller (a Session) must publish
// the id before control passes to the scheduler, closing the race
// between enqueue and completion observation.
func (s *Scheduler) Enqueue(id camguard.ResourceId, token camguard.OwnerToken, op camguard.OperationType, cfg *camguard.CameraConfiguration, cancel context.Context) camguard.OperationTicket {
	return s.EnqueueWithID(camguard.NewOperationId(), id, token, op, cfg, cancel)
}

// EnqueueWithID is the intake form that accepts a caller-generated
// operation id instead of allocating one.
//
//  1. If cancel is already done, fail immediately with CT0001.
//  2. Build an Accepted receipt around opID.
//  3. Push the request onto the unbounded queue (fire-and-forget).
//  4. Return the receipt.
func (s *Scheduler) EnqueueWithID(opID camguard.OperationId, id camguard.ResourceId, token camguard.OwnerToken, op camguard.OperationType, cfg *camguard.CameraConfiguration, cancel context.Context) camguard.OperationTicket {
	if cancel != nil && cancel.Err() != nil {
		s.metrics.IncFailures(op, errs.Cancelled.String())
		return camguard.FailedTicket(opID, errs.Cancelled)
	}

	s.metrics.IncOperations(op)
	s.logger.Info("operation accepted", "resource", id.String(), "op", string(op), "operation_id", opID.String())

	s.queue.push(&operationRequest{
		operationID: opID,
		resourceID:  id,
		owner:       token,
		op:          op,
		config:      cfg,
		cancel:      cancel,
	})

	return camguard.AcceptedTicket(opID)
}

// Shutdown signals the worker to stop once the queue drains and waits
// for it, bounded by ctx. In-flight adapter calls observe the shutdown
// cancellation composed into their scope; they are not killed outright.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.shutdownCancel()
	s.queue.close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) workerLoop() {
	defer s.wg.Done()
	for {
		items, ok := s.queue.drain()
		if !ok {
			return
		}
		for _, req := range items {
			s.processRequest(req)
		}
	}
}

// processRequest implements the ProcessRequest contract of spec §4.3.
func (s *Scheduler) processRequest(req *operationRequest) {
	start := time.Now()

	ticket := s.machine.BeginOperation(req.resourceID, req.owner, req.op)
	if !ticket.Ok() {
		s.logger.Error("operation rejected at worker time",
			"resource", req.resourceID.String(), "op", string(req.op),
			"operation_id", req.operationID.String(), "code", ticket.Code.String())
		s.metrics.IncFailures(req.op, ticket.Code.String())
		return
	}

	ctx, cancelScope, timedOut := s.composeCancellation(req)
	defer cancelScope()

	err := s.invokeAdapter(ctx, req)

	if err != nil {
		if ctx.Err() != nil {
			code := errs.Cancelled
			if timedOut() {
				code = errs.Timeout
			}
			s.logger.Warning("operation cancelled",
				"resource", req.resourceID.String(), "op", string(req.op),
				"operation_id", req.operationID.String(), "code", code.String())
			s.metrics.IncFailures(req.op, code.String())
			s.hub.Publish(camguard.FailureEvent(req.resourceID, req.operationID, req.op, s.table.GetState(req.resourceID), code))
			return
		}

		s.logger.Error("adapter fault",
			"resource", req.resourceID.String(), "op", string(req.op),
			"operation_id", req.operationID.String(), "error", err)
		s.metrics.IncFailures(req.op, errs.HardwareFault.String())
		s.hub.Publish(camguard.FailureEvent(req.resourceID, req.operationID, req.op, s.table.GetState(req.resourceID), errs.HardwareFault))
		return
	}

	stateAfter := s.table.GetState(req.resourceID)
	s.metrics.ObserveLatency(req.op, float64(time.Since(start).Microseconds())/1000)
	s.hub.Publish(camguard.SuccessEvent(req.resourceID, req.operationID, req.op, stateAfter))
}

// invokeAdapter dispatches to the bound adapter's method for req.op. An
// absent adapter is treated as a no-op step; Prepare and Reset carry no
// adapter verb at all (they are pure state-machine transitions) and are
// always no-ops.
func (s *Scheduler) invokeAdapter(ctx context.Context, req *operationRequest) error {
	adapter := s.table.AdapterFor(req.resourceID)
	if adapter == nil {
		return nil
	}

	switch req.op {
	case camguard.StartStreaming:
		return adapter.Start(ctx)
	case camguard.Stop:
		return adapter.Stop(ctx)
	case camguard.Pause:
		return adapter.Pause(ctx)
	case camguard.Resume:
		return adapter.Resume(ctx)
	case camguard.UpdateConfiguration:
		cfg := req.config
		if cfg == nil {
			d := s.defaults
			cfg = &d
		}
		return adapter.UpdateConfiguration(ctx, *cfg)
	default:
		return nil
	}
}
