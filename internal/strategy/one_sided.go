package strategy

import (
	"sort"

	"auction_go/internal/domain"

	"github.com/shopspring/decimal"
)

// OneSided prices a book where only one side has orders. The price is taken
// from an order inside the tolerance band anchored at the available best price.
type OneSided struct {
	bandPercent decimal.Decimal
}

// NewOneSided creates the strategy with the given band tolerance.
func NewOneSided(bandPercent decimal.Decimal) OneSided {
	return OneSided{bandPercent: bandPercent}
}

func (OneSided) Case() domain.ClearingCase { return domain.CaseOrdersMissingOnOneSide }

// Calculate implements Strategy.
func (s OneSided) Calculate(orders domain.Snapshot) (Quote, error) {
	bestBuy, buyDriven := orders.BestBuy()

	var from, to decimal.Decimal
	if buyDriven {
		from, to = buyBand(bestBuy, s.bandPercent)
	} else {
		bestSell, ok := orders.BestSell()
		if !ok {
			return Quote{}, &domain.PreconditionError{Case: s.Case(), Reason: "no orders on either side"}
		}
		from, to = sellBand(bestSell, s.bandPercent)
	}

	candidates := orders.Between(from, to)
	if len(candidates) == 0 {
		return Quote{}, &domain.PreconditionError{
			Case:   s.Case(),
			Reason: "no order priced inside band " + domain.FormatRange(from, to),
		}
	}

	// Ordering uses the signed volume: buys descending, sells ascending. Sell
	// volumes are negative, so ascending puts the largest sell first.
	// Equal volumes fall back to the price nearest the best price so the pick
	// does not depend on insertion order.
	sort.SliceStable(candidates, func(i, j int) bool {
		vi, vj := candidates[i].SignedVolume(), candidates[j].SignedVolume()
		if !vi.Equal(vj) {
			if buyDriven {
				return vi.GreaterThan(vj)
			}
			return vi.LessThan(vj)
		}
		if buyDriven {
			return candidates[i].Price.GreaterThan(candidates[j].Price)
		}
		return candidates[i].Price.LessThan(candidates[j].Price)
	})

	return Quote{
		Price: candidates[0].Price,
		Range: domain.FormatRange(from, to),
	}, nil
}
