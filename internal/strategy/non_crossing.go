package strategy

import (
	"auction_go/internal/domain"

	"github.com/shopspring/decimal"
)

// NonCrossing prices a book whose best buy is below its best sell. It picks
// whichever best price carries more volume inside its own tolerance band.
type NonCrossing struct {
	bandPercent decimal.Decimal
}

// NewNonCrossing creates the strategy with the given band tolerance.
func NewNonCrossing(bandPercent decimal.Decimal) NonCrossing {
	return NonCrossing{bandPercent: bandPercent}
}

func (NonCrossing) Case() domain.ClearingCase { return domain.CaseBestBuyBelowBestSell }

// Calculate implements Strategy.
func (s NonCrossing) Calculate(orders domain.Snapshot) (Quote, error) {
	bestBuy, okBuy := orders.BestBuy()
	bestSell, okSell := orders.BestSell()
	if !okBuy || !okSell {
		return Quote{}, &domain.PreconditionError{Case: s.Case(), Reason: "both sides must have orders"}
	}

	buyFrom, buyTo := buyBand(bestBuy, s.bandPercent)
	sellFrom, sellTo := sellBand(bestSell, s.bandPercent)

	buyVolume := orders.Side(domain.SideBuy).Between(buyFrom, buyTo).TotalVolume()
	sellVolume := orders.Side(domain.SideSell).Between(sellFrom, sellTo).TotalVolume()

	// Strictly greater: a tie goes to the sell side.
	if buyVolume.GreaterThan(sellVolume) {
		return Quote{Price: bestBuy}, nil
	}
	return Quote{Price: bestSell}, nil
}
