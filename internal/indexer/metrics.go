package indexer

import "sync/atomic"

// RunMetrics is a lock-free, in-process snapshot of loop activity. It is
// never persisted; operators read it via Loop.Snapshot for visibility into
// a running process, the way the 0xmhha indexer keeps atomic counters
// alongside its fetch pipeline. Its exported Inc methods let sibling
// packages (Matcher, the RPC client) report into the same instance without
// importing this package's unexported Loop internals, or indexer importing
// theirs.
type RunMetrics struct {
	iterations     atomic.Uint64
	txsProcessed   atomic.Uint64
	eventsMatched  atomic.Uint64
	decodeFailures atomic.Uint64
	lastTip        atomic.Uint64
	mode           atomic.Int32
}

// NewRunMetrics returns a zero-valued RunMetrics, constructed up front so
// it can be wired into the RPC client and Matcher before the Loop itself
// exists.
func NewRunMetrics() *RunMetrics { return &RunMetrics{} }

// IncEventsMatched records one catalogue entry satisfied by a group.
func (m *RunMetrics) IncEventsMatched() { m.eventsMatched.Add(1) }

// IncDecodeFailures records one attribute field (key or value) that failed
// base64 or UTF-8 decoding.
func (m *RunMetrics) IncDecodeFailures() { m.decodeFailures.Add(1) }

// MetricsSnapshot is an immutable copy of RunMetrics at one instant.
type MetricsSnapshot struct {
	Iterations     uint64
	TxsProcessed   uint64
	EventsMatched  uint64
	DecodeFailures uint64
	LastTip        uint64
	Mode           Mode
}

func (m *RunMetrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Iterations:     m.iterations.Load(),
		TxsProcessed:   m.txsProcessed.Load(),
		EventsMatched:  m.eventsMatched.Load(),
		DecodeFailures: m.decodeFailures.Load(),
		LastTip:        m.lastTip.Load(),
		Mode:           Mode(m.mode.Load()),
	}
}
