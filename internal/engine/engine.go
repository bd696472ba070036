package engine

import (
	"fmt"

	"auction_go/internal/domain"
	"auction_go/internal/strategy"

	"github.com/shopspring/decimal"
)

// Engine computes the clearing price of a trading period.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	bandPercent decimal.Decimal
}

// NewEngine creates an engine using bandPercent as the price band tolerance.
// A non-positive value falls back to domain.PriceRangePercent.
func NewEngine(bandPercent decimal.Decimal) *Engine {
	if !bandPercent.IsPositive() {
		bandPercent = domain.PriceRangePercent
	}
	return &Engine{bandPercent: bandPercent}
}

// BandPercent returns the tolerance the engine was built with.
func (e *Engine) BandPercent() decimal.Decimal {
	return e.bandPercent
}

// Clear returns the clearing result for one period's orders.
// An empty snapshot yields the zero result with CaseNone and no error.
func (e *Engine) Clear(orders domain.Snapshot) (domain.ClearingResult, error) {
	if orders.IsEmpty() {
		return domain.ClearingResult{Price: decimal.Zero, Case: domain.CaseNone}, nil
	}

	if err := orders.Validate(); err != nil {
		return domain.ClearingResult{}, err
	}

	clearingCase := Classify(orders)

	strat, err := strategy.For(clearingCase, e.bandPercent)
	if err != nil {
		return domain.ClearingResult{}, err
	}

	quote, err := strat.Calculate(orders)
	if err != nil {
		return domain.ClearingResult{}, fmt.Errorf("calculate %s: %w", clearingCase, err)
	}

	return domain.ClearingResult{
		Price: quote.Price,
		Case:  clearingCase,
		Range: quote.Range,
	}, nil
}

var defaultEngine = NewEngine(domain.PriceRangePercent)

// Clear runs the default engine.
func Clear(orders domain.Snapshot) (domain.ClearingResult, error) {
	return defaultEngine.Clear(orders)
}
