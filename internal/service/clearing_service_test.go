package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"auction_go/internal/domain"
	"auction_go/internal/engine"
	"auction_go/internal/infra"

	"github.com/shopspring/decimal"
)

type memRepo struct {
	mu        sync.Mutex
	snapshots map[uint]domain.Snapshot
	saved     []*domain.ClearingRecord
	loadErr   error
}

func (r *memRepo) LoadSnapshot(_ context.Context, periodID uint, _ bool) (domain.Snapshot, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	snap, ok := r.snapshots[periodID]
	if !ok {
		return nil, domain.ErrPeriodNotFound
	}
	return snap, nil
}

func (r *memRepo) SaveClearing(_ context.Context, rec *domain.ClearingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, rec)
	return nil
}

func (r *memRepo) LatestClearing(_ context.Context, periodID uint) (*domain.ClearingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].PeriodID == periodID {
			return r.saved[i], nil
		}
	}
	return nil, nil
}

func (r *memRepo) ListClearings(_ context.Context, periodID uint) ([]domain.ClearingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ClearingRecord
	for _, rec := range r.saved {
		if rec.PeriodID == periodID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	published []*domain.ClearingRecord
}

func (p *recordingPublisher) Publish(rec *domain.ClearingRecord) {
	p.published = append(p.published, rec)
}

func order(side domain.Side, price, volume int64) domain.Order {
	return domain.NewOrder(side, decimal.NewFromInt(price), decimal.NewFromInt(volume))
}

func newTestService(t *testing.T, repo *memRepo, opts Options) (*ClearingService, *recordingPublisher, *infra.Metrics) {
	t.Helper()
	pub := &recordingPublisher{}
	metrics := &infra.Metrics{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewClearingService(repo, engine.NewEngine(domain.PriceRangePercent), pub, metrics, logger, opts)
	return svc, pub, metrics
}

func TestClearingService_ClearPeriod(t *testing.T) {
	repo := &memRepo{snapshots: map[uint]domain.Snapshot{
		1: {
			order(domain.SideBuy, 10, 8), order(domain.SideBuy, 11, 6),
			order(domain.SideSell, 9, 5), order(domain.SideSell, 10, 7),
		},
	}}
	svc, pub, metrics := newTestService(t, repo, Options{})

	rec, err := svc.ClearPeriod(context.Background(), 1)
	if err != nil {
		t.Fatalf("ClearPeriod failed: %v", err)
	}

	if !rec.Price.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected price 10, got %s", rec.Price)
	}
	if rec.Case != domain.CaseBestBuyAboveBestSell || rec.CaseLabel != domain.CaseBestBuyAboveBestSell.Label() {
		t.Errorf("Unexpected case %s / %q", rec.Case, rec.CaseLabel)
	}
	if rec.ID == "" || rec.OrderCount != 4 {
		t.Errorf("Record not filled in: %+v", rec)
	}

	if len(repo.saved) != 1 || repo.saved[0] != rec {
		t.Error("Record should be saved")
	}
	if len(pub.published) != 1 || pub.published[0] != rec {
		t.Error("Record should be published")
	}

	snap := metrics.Snapshot()
	if snap.ClearingsTotal != 1 || snap.ByCase[domain.CaseBestBuyAboveBestSell] != 1 {
		t.Errorf("Unexpected metrics: %+v", snap)
	}
}

func TestClearingService_EmptyPeriod(t *testing.T) {
	repo := &memRepo{snapshots: map[uint]domain.Snapshot{2: nil}}
	svc, _, metrics := newTestService(t, repo, Options{})

	rec, err := svc.ClearPeriod(context.Background(), 2)
	if err != nil {
		t.Fatalf("Empty period should not fail: %v", err)
	}
	if !rec.Price.IsZero() || rec.Case != domain.CaseNone || rec.Range != "" {
		t.Errorf("Expected sentinel record, got %+v", rec)
	}
	if metrics.Snapshot().EmptyPeriods != 1 {
		t.Error("Expected empty period to be counted")
	}
}

func TestClearingService_Errors(t *testing.T) {
	t.Run("unknown period", func(t *testing.T) {
		svc, pub, metrics := newTestService(t, &memRepo{}, Options{})
		_, err := svc.ClearPeriod(context.Background(), 99)
		if !errors.Is(err, domain.ErrPeriodNotFound) {
			t.Errorf("Expected ErrPeriodNotFound, got %v", err)
		}
		if len(pub.published) != 0 {
			t.Error("Nothing should be published on failure")
		}
		if metrics.Snapshot().ErrorsTotal != 1 {
			t.Error("Expected error to be counted")
		}
	})

	t.Run("invalid order", func(t *testing.T) {
		dumpDir := t.TempDir()
		repo := &memRepo{snapshots: map[uint]domain.Snapshot{
			3: {{Side: domain.SideBuy, Price: decimal.Zero, Volume: decimal.NewFromInt(1)}},
		}}
		svc, _, _ := newTestService(t, repo, Options{DumpDir: dumpDir})

		_, err := svc.ClearPeriod(context.Background(), 3)
		if !errors.Is(err, domain.ErrInvalidOrder) {
			t.Errorf("Expected ErrInvalidOrder, got %v", err)
		}
		if entries, _ := os.ReadDir(dumpDir); len(entries) != 0 {
			t.Error("Invalid input should not be dumped")
		}
	})

	t.Run("precondition violation is dumped", func(t *testing.T) {
		dumpDir := t.TempDir()
		// Crossing book where no level has turnover.
		repo := &memRepo{snapshots: map[uint]domain.Snapshot{
			4: {order(domain.SideBuy, 12, 0), order(domain.SideSell, 10, 0)},
		}}
		svc, _, _ := newTestService(t, repo, Options{DumpDir: dumpDir})

		_, err := svc.ClearPeriod(context.Background(), 4)
		var pe *domain.PreconditionError
		if !errors.As(err, &pe) {
			t.Fatalf("Expected PreconditionError, got %v", err)
		}
		if pe.Case != domain.CaseBestBuyAboveBestSell {
			t.Errorf("Expected case %s, got %s", domain.CaseBestBuyAboveBestSell, pe.Case)
		}
		if len(repo.saved) != 0 {
			t.Error("Failed clearing must not be saved")
		}

		entries, err := os.ReadDir(dumpDir)
		if err != nil || len(entries) != 1 {
			t.Fatalf("Expected one dump file, got %d (%v)", len(entries), err)
		}
	})
}

func TestClearingService_Latest(t *testing.T) {
	stored := &domain.ClearingRecord{ID: "old", PeriodID: 5, Price: decimal.NewFromInt(7), Case: domain.CaseBestPricesEqual}
	repo := &memRepo{
		snapshots: map[uint]domain.Snapshot{5: {order(domain.SideBuy, 10, 1), order(domain.SideSell, 10, 1)}},
		saved:     []*domain.ClearingRecord{stored},
	}
	svc, _, _ := newTestService(t, repo, Options{})
	ctx := context.Background()

	rec, err := svc.Latest(ctx, 5)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if rec == nil || rec.ID != "old" {
		t.Fatalf("Expected stored record, got %+v", rec)
	}

	fresh, err := svc.ClearPeriod(ctx, 5)
	if err != nil {
		t.Fatalf("ClearPeriod failed: %v", err)
	}
	rec, _ = svc.Latest(ctx, 5)
	if rec != fresh {
		t.Error("Latest should return the newest clearing")
	}

	none, err := svc.Latest(ctx, 6)
	if err != nil || none != nil {
		t.Errorf("Expected nil for never-cleared period, got %+v (%v)", none, err)
	}
}

func TestClearingService_History(t *testing.T) {
	repo := &memRepo{snapshots: map[uint]domain.Snapshot{
		1: {order(domain.SideBuy, 10, 5), order(domain.SideSell, 12, 5)},
		2: {order(domain.SideBuy, 10, 1)},
	}}
	svc, _, _ := newTestService(t, repo, Options{})
	ctx := context.Background()

	for _, id := range []uint{1, 2, 1} {
		if _, err := svc.ClearPeriod(ctx, id); err != nil {
			t.Fatalf("ClearPeriod(%d) failed: %v", id, err)
		}
	}

	history, err := svc.History(ctx, 1)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 clearings for period 1, got %d", len(history))
	}
	res := history[1].Result()
	if res.Case != domain.CaseBestBuyBelowBestSell || !res.Price.Equal(decimal.NewFromInt(12)) {
		t.Errorf("Unexpected result: %+v", res)
	}
}

func TestClearingService_Depth(t *testing.T) {
	repo := &memRepo{snapshots: map[uint]domain.Snapshot{
		1: {order(domain.SideBuy, 10, 4), order(domain.SideBuy, 12, 4), order(domain.SideSell, 10, 6)},
	}}
	svc, _, _ := newTestService(t, repo, Options{})

	levels, err := svc.Depth(context.Background(), 1)
	if err != nil {
		t.Fatalf("Depth failed: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("Expected 2 levels, got %d", len(levels))
	}
	if !levels[1].Turnover.Equal(decimal.NewFromInt(4)) {
		t.Errorf("Expected turnover 4 at 12, got %s", levels[1].Turnover)
	}
}
