// Package host implements the public façade described in spec §6.4:
// initialize (idempotent), create_session (first-free-resource, OWN2001
// on exhaustion), and shutdown (idempotent, bounded teardown). Per
// spec §9 Design Note (a), the process-wide singleton of the original
// source is replaced here by an explicit Host value.
package host

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/errs"
	"github.com/camguard/camguard/eventhub"
	"github.com/camguard/camguard/hwadapter"
	"github.com/camguard/camguard/logging"
	"github.com/camguard/camguard/metrics"
	"github.com/camguard/camguard/scheduler"
	"github.com/camguard/camguard/session"
	"github.com/camguard/camguard/table"
)

// Options configures Initialize. Zero-valued fields fall back to
// defaults: ResourceCount 1, DefaultTimeoutProfile, a 1280x720@30fps
// default configuration and a Nop logger. Metrics is replaced by a Nop
// sink when MetricsEnabled is false, and defaults to an in-memory sink
// when MetricsEnabled is true and Metrics is nil. A nil AdapterFactory
// leaves resources without a bound adapter.
type Options struct {
	// ResourceCount is how many Camera resources to pre-register.
	ResourceCount int

	DefaultConfig  camguard.CameraConfiguration
	Timeouts       scheduler.TimeoutProfile
	Logger         logging.Logger
	Metrics        metrics.Sink
	MetricsEnabled bool
	Debug          bool

	// AdapterFactory binds resources to real hardware adapters. If nil,
	// resources are left without a bound adapter and every operation on
	// them is a no-op success (the scheduler treats an absent adapter as
	// a no-op step per spec §4.3 step 4).
	AdapterFactory hwadapter.Factory
}

// Host is the public façade. The zero value is a valid, uninitialized
// Host; construct with New or simply declare a var.
type Host struct {
	mu          sync.Mutex
	initialized bool

	table     *table.Table
	hub       *eventhub.Hub
	scheduler *scheduler.Scheduler

	resourceIDs []camguard.ResourceId
	sessions    map[string]*session.Session
}

// New returns an uninitialized Host.
func New() *Host {
	return &Host{}
}

// Initialize wires the table, event hub and scheduler and pre-registers
// ResourceCount Camera resources. It is idempotent: calling Initialize
// again while already initialized is a no-op observationally equivalent
// to the first call.
func (h *Host) Initialize(opts Options) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return nil
	}

	if opts.ResourceCount <= 0 {
		opts.ResourceCount = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop{}
	}
	if !opts.MetricsEnabled {
		opts.Metrics = metrics.Nop{}
	} else if opts.Metrics == nil {
		opts.Metrics = metrics.NewMem()
	}
	if opts.Timeouts == (scheduler.TimeoutProfile{}) {
		opts.Timeouts = scheduler.DefaultTimeoutProfile()
	}
	if opts.DefaultConfig == (camguard.CameraConfiguration{}) {
		opts.DefaultConfig = camguard.DefaultCameraConfiguration()
	}

	t := table.New()
	hub := eventhub.New(opts.Logger)
	sch := scheduler.New(t, hub, scheduler.Options{
		Timeouts:      opts.Timeouts,
		DefaultConfig: opts.DefaultConfig,
		Logger:        opts.Logger,
		Metrics:       opts.Metrics,
	})

	ids := make([]camguard.ResourceId, 0, opts.ResourceCount)
	for i := 0; i < opts.ResourceCount; i++ {
		id := camguard.NewCameraId(uint32(i))
		t.Ensure(id)
		t.SetState(id, camguard.Ready)
		if opts.AdapterFactory != nil {
			if adapter, err := opts.AdapterFactory.NewAdapter(id); err == nil {
				t.RegisterAdapter(id, adapter)
			} else {
				opts.Logger.Error("adapter factory failed", "resource", id.String(), "error", err)
			}
		}
		ids = append(ids, id)
	}

	h.table = t
	h.hub = hub
	h.scheduler = sch
	h.resourceIDs = ids
	h.sessions = make(map[string]*session.Session)
	h.initialized = true
	return nil
}

// CreateSession binds a new Session to the first free pre-registered
// resource. userID seeds the session identifier; an empty string gets a
// generated one. callbacks wires the typed completion callbacks the
// session dispatches to.
//
// Per spec §9 Design Note (c), resource exhaustion surfaces uniformly as
// a FailedImmediately-shaped error (OwnershipConflict) rather than a
// generic invalid-operation fault.
func (h *Host) CreateSession(userID string, callbacks camguard.Callbacks) (*session.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.initialized {
		return nil, errs.New(errs.NotInitialized, "CreateSession", "host is not initialized")
	}

	if userID == "" {
		userID = uuid.NewString()
	}
	sessionID := userID + "/" + uuid.NewString()
	token := camguard.NewOwnerToken(sessionID)

	id, ok := h.table.FirstFree(h.resourceIDs, token)
	if !ok {
		return nil, errs.New(errs.OwnershipConflict, "CreateSession", "no free resource")
	}

	sess := session.New(sessionID, id, h.table, h.scheduler, h.hub, callbacks)
	h.sessions[sessionID] = sess
	return sess, nil
}

// Session looks up a live session by the ID returned from CreateSession.
func (h *Host) Session(id string) (*session.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sess, ok := h.sessions[id]
	return sess, ok
}

// ResourceStatus describes one pre-registered resource's current state.
type ResourceStatus struct {
	ResourceId string
	State      camguard.CameraState
	Owned      bool
}

// Status reports the current state of every pre-registered resource.
// Returns an error with errs.NotInitialized if the host has not been
// initialized.
func (h *Host) Status() ([]ResourceStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.initialized {
		return nil, errs.New(errs.NotInitialized, "Status", "host is not initialized")
	}

	out := make([]ResourceStatus, 0, len(h.resourceIDs))
	for _, id := range h.resourceIDs {
		_, owned := h.table.CurrentOwner(id)
		out = append(out, ResourceStatus{
			ResourceId: id.String(),
			State:      h.table.GetState(id),
			Owned:      owned,
		})
	}
	return out, nil
}

// CloseSession disposes sess (it stops receiving events) and releases
// its ownership of the underlying resource, making it available to a
// future CreateSession. Safe to call more than once.
func (h *Host) CloseSession(sess *session.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeSessionLocked(sess)
}

func (h *Host) closeSessionLocked(sess *session.Session) {
	sess.Dispose()
	if h.table != nil {
		h.table.Release(sess.ResourceId(), sess.Token())
	}
	delete(h.sessions, sess.ID())
}

// Shutdown tears down the scheduler (cancelling shutdown, waiting bounded
// by ctx) and disposes every live session. Idempotent: shutting down an
// uninitialized or already-shut-down Host is a no-op.
func (h *Host) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if !h.initialized {
		h.mu.Unlock()
		return nil
	}

	sessions := make([]*session.Session, 0, len(h.sessions))
	for _, sess := range h.sessions {
		sessions = append(sessions, sess)
	}
	sch := h.scheduler
	h.mu.Unlock()

	for _, sess := range sessions {
		h.CloseSession(sess)
	}

	err := sch.Shutdown(ctx)

	h.mu.Lock()
	h.initialized = false
	h.mu.Unlock()

	return err
}
