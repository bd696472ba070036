package strategy_test

import (
	"testing"

	"auction_go/internal/domain"
	"auction_go/internal/strategy"

	"github.com/shopspring/decimal"
)

// BenchmarkCrossing_Calculate measures the equilibrium search on a period with
// a few hundred distinct price levels.
func BenchmarkCrossing_Calculate(b *testing.B) {
	orders := make(domain.Snapshot, 0, 400)
	for i := 0; i < 200; i++ {
		orders = append(orders,
			domain.NewOrder(domain.SideBuy, decimal.New(int64(900+i), -1), decimal.NewFromInt(int64(1+i%7))),
			domain.NewOrder(domain.SideSell, decimal.New(int64(850+i), -1), decimal.NewFromInt(int64(1+i%5))),
		)
	}
	s := strategy.Crossing{}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := s.Calculate(orders); err != nil {
			b.Fatal(err)
		}
	}
}
