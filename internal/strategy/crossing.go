package strategy

import (
	"sort"

	"auction_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Level is the cumulative depth of the book at one candidate price.
type Level struct {
	Price     decimal.Decimal `json:"price"`
	Supply    decimal.Decimal `json:"supply"`    // sell volume priced at or below Price
	Demand    decimal.Decimal `json:"demand"`    // buy volume priced at or above Price
	Turnover  decimal.Decimal `json:"turnover"`  // volume that would trade at Price
	Imbalance decimal.Decimal `json:"imbalance"` // |Supply - Demand|
}

// Depth computes supply, demand, turnover and imbalance for every distinct
// price in the snapshot, ascending by price. Levels with zero turnover are kept.
func Depth(orders domain.Snapshot) []Level {
	buys := orders.Side(domain.SideBuy)
	sells := orders.Side(domain.SideSell)

	prices := orders.PriceLevels()
	levels := make([]Level, 0, len(prices))
	for _, p := range prices {
		supply := sells.Filter(func(o domain.Order) bool { return o.Price.LessThanOrEqual(p) }).TotalVolume()
		demand := buys.Filter(func(o domain.Order) bool { return o.Price.GreaterThanOrEqual(p) }).TotalVolume()

		diff := supply.Sub(demand)
		turnover := supply
		if diff.IsPositive() {
			turnover = demand
		}

		levels = append(levels, Level{
			Price:     p,
			Supply:    supply,
			Demand:    demand,
			Turnover:  turnover,
			Imbalance: diff.Abs(),
		})
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Price.LessThan(levels[j].Price)
	})
	return levels
}

// Crossing prices a book whose best buy is above its best sell. It searches
// the price levels with the smallest supply/demand imbalance and returns their
// turnover-weighted average price.
type Crossing struct{}

func (Crossing) Case() domain.ClearingCase { return domain.CaseBestBuyAboveBestSell }

// Calculate implements Strategy.
func (s Crossing) Calculate(orders domain.Snapshot) (Quote, error) {
	var (
		candidates   []Level
		minImbalance decimal.Decimal
	)
	for _, lvl := range Depth(orders) {
		if lvl.Turnover.IsZero() {
			continue
		}
		if len(candidates) == 0 || lvl.Imbalance.LessThan(minImbalance) {
			minImbalance = lvl.Imbalance
		}
		candidates = append(candidates, lvl)
	}

	weighted, turnover := decimal.Zero, decimal.Zero
	for _, lvl := range candidates {
		if !lvl.Imbalance.Equal(minImbalance) {
			continue
		}
		weighted = weighted.Add(lvl.Price.Mul(lvl.Turnover))
		turnover = turnover.Add(lvl.Turnover)
	}

	if turnover.IsZero() {
		return Quote{}, &domain.PreconditionError{Case: s.Case(), Reason: "no price level with non-zero turnover"}
	}
	return Quote{Price: weighted.Div(turnover)}, nil
}
