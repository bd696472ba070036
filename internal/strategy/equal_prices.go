package strategy

import "auction_go/internal/domain"

// EqualPrices clears at the best buy price, which equals the best sell price.
type EqualPrices struct{}

func (EqualPrices) Case() domain.ClearingCase { return domain.CaseBestPricesEqual }

// Calculate implements Strategy.
func (s EqualPrices) Calculate(orders domain.Snapshot) (Quote, error) {
	bestBuy, ok := orders.BestBuy()
	if !ok {
		return Quote{}, &domain.PreconditionError{Case: s.Case(), Reason: "no buy orders"}
	}
	return Quote{Price: bestBuy}, nil
}
