package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Side is the direction of an auction order.
type Side uint8

const (
	SideBuy Side = iota + 1
	SideSell
)

// String returns the string representation of Side
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether s is one of the two defined sides.
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// ParseSide converts "BUY"/"SELL" (case-insensitive) to a Side.
func ParseSide(raw string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	default:
		return 0, fmt.Errorf("%w: side %q", ErrInvalidOrder, raw)
	}
}

// Order is a single limit order collected during a trading period.
// Volume is always a non-negative magnitude; the direction lives in Side.
type Order struct {
	Side   Side
	Price  decimal.Decimal
	Volume decimal.Decimal
}

// NewOrder creates an order from a magnitude. Negative volumes are folded to
// their absolute value.
func NewOrder(side Side, price, volume decimal.Decimal) Order {
	return Order{Side: side, Price: price, Volume: volume.Abs()}
}

// NewOrderFromSigned creates an order from a snapshot row where sell volumes are
// recorded as negative numbers.
func NewOrderFromSigned(side Side, price, signedVolume decimal.Decimal) Order {
	return NewOrder(side, price, signedVolume)
}

// SignedVolume returns the volume with the snapshot sign convention applied:
// positive for buys, negative for sells.
func (o Order) SignedVolume() decimal.Decimal {
	if o.Side == SideSell {
		return o.Volume.Neg()
	}
	return o.Volume
}

// IsBuy reports whether the order is on the buy side.
func (o Order) IsBuy() bool { return o.Side == SideBuy }

// IsSell reports whether the order is on the sell side.
func (o Order) IsSell() bool { return o.Side == SideSell }

// Validate checks the order against the snapshot contract.
func (o Order) Validate() error {
	if !o.Side.IsValid() {
		return fmt.Errorf("%w: undefined side %d", ErrInvalidOrder, o.Side)
	}
	if !o.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive, got %s", ErrInvalidOrder, o.Price)
	}
	return nil
}

// String implements fmt.Stringer.
func (o Order) String() string {
	return fmt.Sprintf("%s %s@%s", o.Side, o.Volume, o.Price)
}
