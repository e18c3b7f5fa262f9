// Package eventhub fans completion events out to subscribers with
// handler-fault isolation: each handler runs on its own goroutine,
// panics are recovered and logged, and a faulting handler never prevents
// other handlers — or the scheduler's drain loop — from proceeding.
package eventhub

import (
	"sync"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/logging"
)

// Handler receives completion events published to the hub.
type Handler func(camguard.CompletionEvent)

// Token identifies a subscription so it can later be removed.
type Token struct {
	id uint64
}

// Hub is the Event Hub. The zero value is not usable; construct with New.
type Hub struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler
	nextID   uint64
	logger   logging.Logger
}

// New constructs an empty Hub. A nil logger falls back to a no-op sink.
func New(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Hub{handlers: make(map[uint64]Handler), logger: logger}
}

// Subscribe registers handler and returns a Token that Unsubscribe
// accepts to remove it. The hub never retains any identity beyond the
// opaque handler closure and its token — subscribers (Sessions) are
// unknown to it.
func (h *Hub) Subscribe(handler Handler) Token {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.handlers[id] = handler
	return Token{id: id}
}

// Unsubscribe removes the handler registered under tok, if any.
func (h *Hub) Unsubscribe(tok Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.handlers, tok.id)
}

// Publish dispatches ev to every current subscriber. Dispatch is
// fire-and-forget: each handler is scheduled onto its own goroutine and
// Publish returns once all have been scheduled, not once they have run.
// There is no ordering guarantee among handlers for the same event;
// events themselves are published in the order the caller (the
// scheduler) calls Publish.
func (h *Hub) Publish(ev camguard.CompletionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, handler := range h.handlers {
		go h.dispatch(handler, ev)
	}
}

func (h *Hub) dispatch(handler Handler, ev camguard.CompletionEvent) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("event handler panicked", "resource", ev.ResourceId.String(), "operation_id", ev.OperationId.String(), "panic", r)
		}
	}()
	handler(ev)
}
