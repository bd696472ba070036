package domain

import "context"

// OrderRepository supplies the order snapshot of a trading period.
type OrderRepository interface {
	LoadSnapshot(ctx context.Context, periodID uint, onlyFilled bool) (Snapshot, error)
}

// ClearingRepository persists clearing outcomes.
type ClearingRepository interface {
	SaveClearing(ctx context.Context, rec *ClearingRecord) error
	LatestClearing(ctx context.Context, periodID uint) (*ClearingRecord, error)
	// ListClearings returns every clearing of a period, oldest first.
	ListClearings(ctx context.Context, periodID uint) ([]ClearingRecord, error)
}

// ClearingPublisher forwards clearing outcomes to downstream consumers.
type ClearingPublisher interface {
	Publish(rec *ClearingRecord)
}
