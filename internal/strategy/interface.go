package strategy

import (
	"fmt"

	"auction_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Quote is what a pricing strategy produces before the engine attaches the case.
type Quote struct {
	Price decimal.Decimal
	Range string // empty when the strategy reports no band
}

// Strategy computes the clearing price for one structural case of the book.
// It is called synchronously by the Engine and must not mutate the snapshot.
type Strategy interface {
	// Case returns the clearing case the strategy is built for.
	Case() domain.ClearingCase

	// Calculate returns the clearing quote for a snapshot already classified
	// into Case().
	Calculate(orders domain.Snapshot) (Quote, error)
}

// For returns the strategy serving c. bandPercent is the tolerance used by the
// band-based strategies.
func For(c domain.ClearingCase, bandPercent decimal.Decimal) (Strategy, error) {
	switch c {
	case domain.CaseBestPricesEqual:
		return EqualPrices{}, nil
	case domain.CaseOrdersMissingOnOneSide:
		return NewOneSided(bandPercent), nil
	case domain.CaseBestBuyBelowBestSell:
		return NewNonCrossing(bandPercent), nil
	case domain.CaseBestBuyAboveBestSell:
		return Crossing{}, nil
	default:
		return nil, fmt.Errorf("no pricing strategy for case %s", c)
	}
}

// buyBand is [best×(1−pct), best].
func buyBand(best, pct decimal.Decimal) (from, to decimal.Decimal) {
	return best.Mul(decimal.NewFromInt(1).Sub(pct)), best
}

// sellBand is [best, best×(1+pct)].
func sellBand(best, pct decimal.Decimal) (from, to decimal.Decimal) {
	return best, best.Mul(decimal.NewFromInt(1).Add(pct))
}
