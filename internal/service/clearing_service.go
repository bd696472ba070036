package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"auction_go/internal/domain"
	"auction_go/internal/engine"
	"auction_go/internal/infra"
	"auction_go/internal/strategy"

	"github.com/google/uuid"
)

// Repository is the persistence the service needs.
type Repository interface {
	domain.OrderRepository
	domain.ClearingRepository
}

// Options tune a ClearingService.
type Options struct {
	OnlyFilled bool   // clear using filled orders only
	DumpDir    string // snapshot dumps on precondition violations; empty disables
}

// ClearingService runs the clearing engine for stored trading periods and hands
// the outcome to persistence and the feed.
type ClearingService struct {
	repo      Repository
	engine    *engine.Engine
	publisher domain.ClearingPublisher
	metrics   *infra.Metrics
	logger    *slog.Logger
	opts      Options

	mu     sync.RWMutex
	latest map[uint]*domain.ClearingRecord

	now func() time.Time
}

// NewClearingService creates a new ClearingService instance. publisher may be nil.
func NewClearingService(repo Repository, eng *engine.Engine, publisher domain.ClearingPublisher,
	metrics *infra.Metrics, logger *slog.Logger, opts Options) *ClearingService {
	return &ClearingService{
		repo:      repo,
		engine:    eng,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "clearing_service")),
		opts:      opts,
		latest:    make(map[uint]*domain.ClearingRecord),
		now:       time.Now,
	}
}

// ClearPeriod computes, stores and publishes the clearing price of a period.
func (s *ClearingService) ClearPeriod(ctx context.Context, periodID uint) (*domain.ClearingRecord, error) {
	start := s.now()

	orders, err := s.repo.LoadSnapshot(ctx, periodID, s.opts.OnlyFilled)
	if err != nil {
		s.metrics.RecordError()
		return nil, fmt.Errorf("load snapshot for period %d: %w", periodID, err)
	}

	result, err := s.engine.Clear(orders)
	if err != nil {
		s.metrics.RecordError()
		s.logger.ErrorContext(ctx, "Clearing failed",
			slog.Uint64("period_id", uint64(periodID)),
			slog.Int("orders", len(orders)),
			slog.Any("error", err))
		if errors.Is(err, domain.ErrPreconditionViolated) {
			s.dumpSnapshot(periodID, orders)
		}
		return nil, fmt.Errorf("clear period %d: %w", periodID, err)
	}

	rec := &domain.ClearingRecord{
		ID:         uuid.NewString(),
		PeriodID:   periodID,
		Price:      result.Price,
		Case:       result.Case,
		CaseLabel:  result.Case.Label(),
		Range:      result.Range,
		OrderCount: len(orders),
		CreatedAt:  s.now(),
	}

	if err := s.repo.SaveClearing(ctx, rec); err != nil {
		s.metrics.RecordError()
		return nil, fmt.Errorf("save clearing for period %d: %w", periodID, err)
	}

	s.mu.Lock()
	s.latest[periodID] = rec
	s.mu.Unlock()

	s.metrics.RecordClearing(result.Case, s.now().Sub(start))
	s.logger.InfoContext(ctx, "Period cleared",
		slog.Uint64("period_id", uint64(periodID)),
		slog.String("price", result.Price.String()),
		slog.String("case", result.Case.String()),
		slog.String("range", result.Range),
		slog.Int("orders", len(orders)))

	if s.publisher != nil {
		s.publisher.Publish(rec)
	}
	return rec, nil
}

// Latest returns the most recent clearing of a period, from memory when this
// process produced it, otherwise from the repository. nil means never cleared.
func (s *ClearingService) Latest(ctx context.Context, periodID uint) (*domain.ClearingRecord, error) {
	s.mu.RLock()
	rec, ok := s.latest[periodID]
	s.mu.RUnlock()
	if ok {
		return rec, nil
	}

	rec, err := s.repo.LatestClearing(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		s.mu.Lock()
		s.latest[periodID] = rec
		s.mu.Unlock()
	}
	return rec, nil
}

// History returns every clearing of a period, oldest first.
func (s *ClearingService) History(ctx context.Context, periodID uint) ([]domain.ClearingRecord, error) {
	return s.repo.ListClearings(ctx, periodID)
}

// Depth returns the per-price supply/demand table of a period.
func (s *ClearingService) Depth(ctx context.Context, periodID uint) ([]strategy.Level, error) {
	orders, err := s.repo.LoadSnapshot(ctx, periodID, s.opts.OnlyFilled)
	if err != nil {
		return nil, err
	}
	if err := orders.Validate(); err != nil {
		return nil, err
	}
	return strategy.Depth(orders), nil
}

// dumpSnapshot writes the offending snapshot to DumpDir for post-mortem.
func (s *ClearingService) dumpSnapshot(periodID uint, orders domain.Snapshot) {
	if s.opts.DumpDir == "" {
		return
	}
	if err := os.MkdirAll(s.opts.DumpDir, 0755); err != nil {
		s.logger.Error("Failed to create dump directory", slog.Any("error", err))
		return
	}

	type dumpedOrder struct {
		Side   string `json:"side"`
		Price  string `json:"price"`
		Volume string `json:"volume"`
	}
	dump := struct {
		PeriodID uint          `json:"period_id"`
		Orders   []dumpedOrder `json:"orders"`
	}{PeriodID: periodID}
	for _, o := range orders {
		dump.Orders = append(dump.Orders, dumpedOrder{
			Side:   o.Side.String(),
			Price:  o.Price.String(),
			Volume: o.SignedVolume().String(),
		})
	}

	b, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		s.logger.Error("Failed to marshal snapshot dump", slog.Any("error", err))
		return
	}

	filename := filepath.Join(s.opts.DumpDir, fmt.Sprintf("period_%d_%d.json", periodID, s.now().UnixMilli()))
	if err := os.WriteFile(filename, b, 0644); err != nil {
		s.logger.Error("Failed to write snapshot dump", slog.Any("error", err))
		return
	}
	s.logger.Warn("Snapshot dumped", slog.String("file", filename))
}
