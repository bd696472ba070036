package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"auction_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists trading periods, their orders and clearing outcomes
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at dbPath
func NewStorage(dbPath string) (*Storage, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.TradingPeriod{}, &domain.OrderRecord{}, &domain.ClearingRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Trading Period Operations
// ======================================================================================

// CreatePeriod inserts a new trading period and fills in its ID
func (s *Storage) CreatePeriod(ctx context.Context, period *domain.TradingPeriod) error {
	return s.db.WithContext(ctx).Create(period).Error
}

// GetPeriod retrieves a trading period by ID
func (s *Storage) GetPeriod(ctx context.Context, id uint) (*domain.TradingPeriod, error) {
	var period domain.TradingPeriod
	err := s.db.WithContext(ctx).First(&period, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", domain.ErrPeriodNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// ======================================================================================
// Order Operations
// ======================================================================================

// AddOrders stores orders for a period in a single transaction
func (s *Storage) AddOrders(ctx context.Context, periodID uint, orders []domain.Order, filled bool) error {
	if len(orders) == 0 {
		return nil
	}
	records := make([]domain.OrderRecord, 0, len(orders))
	for _, o := range orders {
		records = append(records, domain.NewOrderRecord(periodID, o, filled))
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	})
}

// LoadSnapshot returns the orders of one period in insertion order.
// When onlyFilled is true, unfilled orders are left out.
func (s *Storage) LoadSnapshot(ctx context.Context, periodID uint, onlyFilled bool) (domain.Snapshot, error) {
	if _, err := s.GetPeriod(ctx, periodID); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Where("period_id = ?", periodID)
	if onlyFilled {
		query = query.Where("filled = ?", true)
	}

	var records []domain.OrderRecord
	if err := query.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}

	snapshot := make(domain.Snapshot, 0, len(records))
	for _, rec := range records {
		o, err := rec.ToOrder()
		if err != nil {
			return nil, fmt.Errorf("order record %d: %w", rec.ID, err)
		}
		snapshot = append(snapshot, o)
	}
	return snapshot, nil
}

// ======================================================================================
// Clearing Operations
// ======================================================================================

// SaveClearing stores a clearing outcome
func (s *Storage) SaveClearing(ctx context.Context, rec *domain.ClearingRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

// LatestClearing returns the most recent clearing of a period, or nil if the
// period was never cleared
func (s *Storage) LatestClearing(ctx context.Context, periodID uint) (*domain.ClearingRecord, error) {
	var rec domain.ClearingRecord
	err := s.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("created_at DESC").
		Order("rowid DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not cleared yet is not an error
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListClearings returns every clearing of a period, oldest first
func (s *Storage) ListClearings(ctx context.Context, periodID uint) ([]domain.ClearingRecord, error) {
	var recs []domain.ClearingRecord
	err := s.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("created_at").
		Order("rowid").
		Find(&recs).Error
	return recs, err
}

var (
	_ domain.OrderRepository    = (*Storage)(nil)
	_ domain.ClearingRepository = (*Storage)(nil)
)
