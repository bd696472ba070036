package infra

import (
	"testing"
	"time"

	"auction_go/internal/domain"
)

func TestMetrics_RecordClearing(t *testing.T) {
	m := &Metrics{}

	m.RecordClearing(domain.CaseBestBuyAboveBestSell, 1000*time.Nanosecond)
	m.RecordClearing(domain.CaseBestBuyAboveBestSell, 2000*time.Nanosecond)
	m.RecordClearing(domain.CaseNone, 3000*time.Nanosecond)

	snap := m.Snapshot()

	if snap.ClearingsTotal != 3 {
		t.Errorf("Expected 3 clearings, got %d", snap.ClearingsTotal)
	}
	if snap.EmptyPeriods != 1 {
		t.Errorf("Expected 1 empty period, got %d", snap.EmptyPeriods)
	}
	if snap.ByCase[domain.CaseBestBuyAboveBestSell] != 2 {
		t.Errorf("Expected 2 crossing clearings, got %d", snap.ByCase[domain.CaseBestBuyAboveBestSell])
	}
	if snap.ByCase[domain.CaseBestPricesEqual] != 0 {
		t.Errorf("Expected 0 equal-price clearings, got %d", snap.ByCase[domain.CaseBestPricesEqual])
	}

	// Average latency: (1000 + 2000 + 3000) / 3 = 2000
	if snap.AvgLatencyNs != 2000 {
		t.Errorf("Expected avg latency 2000, got %d", snap.AvgLatencyNs)
	}
}

func TestMetrics_FeedClients(t *testing.T) {
	m := &Metrics{}

	m.IncrementFeedClients()
	m.IncrementFeedClients()
	m.IncrementFeedClients()
	m.DecrementFeedClients()

	if got := m.Snapshot().FeedClients; got != 2 {
		t.Errorf("Expected 2 feed clients, got %d", got)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := &Metrics{}

	m.RecordClearing(domain.CaseBestPricesEqual, time.Microsecond)
	m.RecordError()
	m.IncrementFeedClients()

	m.Reset()
	snap := m.Snapshot()

	if snap.ClearingsTotal != 0 {
		t.Error("Expected 0 clearings after reset")
	}
	if snap.ErrorsTotal != 0 {
		t.Error("Expected 0 errors after reset")
	}
	if snap.FeedClients != 0 {
		t.Error("Expected 0 feed clients after reset")
	}
	if snap.ByCase[domain.CaseBestPricesEqual] != 0 {
		t.Error("Expected per-case counters cleared after reset")
	}
}
