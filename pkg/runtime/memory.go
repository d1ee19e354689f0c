package runtime

import "sync/atomic"

// MemoryTracker counts live environments and functions process-wide. It is
// never consulted by evaluation logic — only by tests asserting deterministic
// teardown (spec.md §8, C9).
type MemoryTracker struct {
	envCount int64
	fnCount  int64
}

// DefaultTracker is the package-level tracker every Environment and
// FunctionValue reports to unless a test swaps in its own via NewEnvironment
// variants. Kept as a single shared instance so CLI runs and library callers
// observe the same counters the teacher's design calls for ("process-wide
// counters").
var DefaultTracker = &MemoryTracker{}

type Snapshot struct {
	EnvCount int64
	FnCount  int64
}

func (m *MemoryTracker) Snapshot() Snapshot {
	return Snapshot{
		EnvCount: atomic.LoadInt64(&m.envCount),
		FnCount:  atomic.LoadInt64(&m.fnCount),
	}
}

func (m *MemoryTracker) Reset() {
	atomic.StoreInt64(&m.envCount, 0)
	atomic.StoreInt64(&m.fnCount, 0)
}

func (m *MemoryTracker) envCreated()   { atomic.AddInt64(&m.envCount, 1) }
func (m *MemoryTracker) envDestroyed() { atomic.AddInt64(&m.envCount, -1) }
func (m *MemoryTracker) fnCreated()    { atomic.AddInt64(&m.fnCount, 1) }
func (m *MemoryTracker) fnDestroyed()  { atomic.AddInt64(&m.fnCount, -1) }
