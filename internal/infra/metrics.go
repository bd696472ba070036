package infra

import (
	"sync/atomic"
	"time"

	"auction_go/internal/domain"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	clearingsTotal atomic.Uint64
	emptyPeriods   atomic.Uint64
	errorsTotal    atomic.Uint64
	byCase         [domain.CaseBestBuyAboveBestSell + 1]atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	feedClients atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordClearing records a completed clearing run with its latency.
func (m *Metrics) RecordClearing(c domain.ClearingCase, latency time.Duration) {
	m.clearingsTotal.Add(1)
	if c == domain.CaseNone {
		m.emptyPeriods.Add(1)
	} else if c.IsValid() {
		m.byCase[c].Add(1)
	}
	m.latencySumNs.Add(latency.Nanoseconds())
	m.latencyCount.Add(1)
}

// RecordError records a failed clearing run.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// IncrementFeedClients increments connected feed clients by 1.
func (m *Metrics) IncrementFeedClients() {
	m.feedClients.Add(1)
}

// DecrementFeedClients decrements connected feed clients by 1.
func (m *Metrics) DecrementFeedClients() {
	m.feedClients.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	ClearingsTotal uint64
	EmptyPeriods   uint64
	ErrorsTotal    uint64
	ByCase         map[domain.ClearingCase]uint64
	AvgLatencyNs   int64
	FeedClients    int32
	Timestamp      time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	byCase := make(map[domain.ClearingCase]uint64, len(domain.AllCases))
	for _, c := range domain.AllCases {
		byCase[c] = m.byCase[c].Load()
	}

	return MetricsSnapshot{
		ClearingsTotal: m.clearingsTotal.Load(),
		EmptyPeriods:   m.emptyPeriods.Load(),
		ErrorsTotal:    m.errorsTotal.Load(),
		ByCase:         byCase,
		AvgLatencyNs:   avgLatency,
		FeedClients:    m.feedClients.Load(),
		Timestamp:      time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.clearingsTotal.Store(0)
	m.emptyPeriods.Store(0)
	m.errorsTotal.Store(0)
	for i := range m.byCase {
		m.byCase[i].Store(0)
	}
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.feedClients.Store(0)
}
