package metrics

import (
	"sync"

	"github.com/camguard/camguard"
)

// Mem is a lock-protected in-memory Sink suitable for tests and the demo
// façade. Counters are keyed by operation type (and error code, for
// failures); the histogram keeps a running count/sum per operation so a
// caller can derive an average without pulling in a histogram library
// the corpus never shows in use.
type Mem struct {
	mu          sync.Mutex
	operations  map[camguard.OperationType]uint64
	failures    map[camguard.OperationType]map[string]uint64
	latencyN    map[camguard.OperationType]uint64
	latencySumMs map[camguard.OperationType]float64
}

// NewMem constructs an empty Mem sink.
func NewMem() *Mem {
	return &Mem{
		operations:   make(map[camguard.OperationType]uint64),
		failures:     make(map[camguard.OperationType]map[string]uint64),
		latencyN:     make(map[camguard.OperationType]uint64),
		latencySumMs: make(map[camguard.OperationType]float64),
	}
}

func (m *Mem) IncOperations(op camguard.OperationType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[op]++
}

func (m *Mem) IncFailures(op camguard.OperationType, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byCode, ok := m.failures[op]
	if !ok {
		byCode = make(map[string]uint64)
		m.failures[op] = byCode
	}
	byCode[code]++
}

func (m *Mem) ObserveLatency(op camguard.OperationType, ms float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencyN[op]++
	m.latencySumMs[op] += ms
}

// Operations returns the current operations_total value for op.
func (m *Mem) Operations(op camguard.OperationType) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.operations[op]
}

// Failures returns the current operation_failures_total value for
// (op, code).
func (m *Mem) Failures(op camguard.OperationType, code string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[op][code]
}

// AverageLatencyMs returns the mean observed latency for op, or 0 if no
// observation was ever recorded.
func (m *Mem) AverageLatencyMs(op camguard.OperationType) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.latencyN[op]
	if n == 0 {
		return 0
	}
	return m.latencySumMs[op] / float64(n)
}
