package engine

import "auction_go/internal/domain"

// Classify determines the structural case of a non-empty snapshot from its
// best buy and best sell prices. Prices are compared exactly.
func Classify(orders domain.Snapshot) domain.ClearingCase {
	bestBuy, okBuy := orders.BestBuy()
	bestSell, okSell := orders.BestSell()

	switch {
	case !okBuy || !okSell:
		return domain.CaseOrdersMissingOnOneSide
	case bestBuy.Equal(bestSell):
		return domain.CaseBestPricesEqual
	case bestBuy.LessThan(bestSell):
		return domain.CaseBestBuyBelowBestSell
	default:
		return domain.CaseBestBuyAboveBestSell
	}
}
