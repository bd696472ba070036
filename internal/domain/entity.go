package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradingPeriod is one batch window of the call auction
type TradingPeriod struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	ClosedAt  time.Time `json:"closed_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderRecord is the persisted form of an order.
// Volume keeps the stored sign convention: sells are negative.
type OrderRecord struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	PeriodID  uint            `gorm:"index" json:"period_id"`
	Side      string          `gorm:"size:4" json:"side"` // "BUY", "SELL"
	Price     decimal.Decimal `gorm:"type:text" json:"price"`
	Volume    decimal.Decimal `gorm:"type:text" json:"volume"`
	Filled    bool            `gorm:"index" json:"filled"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToOrder converts the row into a domain order.
func (r OrderRecord) ToOrder() (Order, error) {
	side, err := ParseSide(r.Side)
	if err != nil {
		return Order{}, err
	}
	return NewOrderFromSigned(side, r.Price, r.Volume), nil
}

// NewOrderRecord converts a domain order into a row for the given period.
func NewOrderRecord(periodID uint, o Order, filled bool) OrderRecord {
	return OrderRecord{
		PeriodID: periodID,
		Side:     o.Side.String(),
		Price:    o.Price,
		Volume:   o.SignedVolume(),
		Filled:   filled,
	}
}

// ClearingRecord is a persisted clearing outcome for a trading period
type ClearingRecord struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	PeriodID   uint            `gorm:"index" json:"period_id"`
	Price      decimal.Decimal `gorm:"type:text" json:"price"`
	Case       ClearingCase    `gorm:"column:clearing_case" json:"case"`
	CaseLabel  string          `json:"case_label"`
	Range      string          `json:"range,omitempty"`
	OrderCount int             `json:"order_count"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
}

// Result returns the clearing outcome held by the record.
func (r ClearingRecord) Result() ClearingResult {
	return ClearingResult{Price: r.Price, Case: r.Case, Range: r.Range}
}
