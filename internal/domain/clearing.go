package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceRangePercent is the tolerance used to build the admissible price band
// around a best price.
var PriceRangePercent = decimal.RequireFromString("0.2")

// ClearingCase classifies the structure of a period's order book.
// The numeric values are persisted and must not be reordered.
type ClearingCase int

const (
	CaseNone                   ClearingCase = 0
	CaseBestPricesEqual        ClearingCase = 1
	CaseOrdersMissingOnOneSide ClearingCase = 2
	CaseBestBuyBelowBestSell   ClearingCase = 3
	CaseBestBuyAboveBestSell   ClearingCase = 4
)

// AllCases lists every defined case, excluding CaseNone.
var AllCases = []ClearingCase{
	CaseBestPricesEqual,
	CaseOrdersMissingOnOneSide,
	CaseBestBuyBelowBestSell,
	CaseBestBuyAboveBestSell,
}

// String returns the identifier of the case.
func (c ClearingCase) String() string {
	switch c {
	case CaseNone:
		return "NONE"
	case CaseBestPricesEqual:
		return "BEST_PRICES_EQUAL"
	case CaseOrdersMissingOnOneSide:
		return "ORDERS_MISSING_ON_ONE_SIDE"
	case CaseBestBuyBelowBestSell:
		return "BEST_BUY_BELOW_BEST_SELL"
	case CaseBestBuyAboveBestSell:
		return "BEST_BUY_ABOVE_BEST_SELL"
	default:
		return fmt.Sprintf("CASE(%d)", int(c))
	}
}

// Label returns the human-readable description shown next to a clearing price.
func (c ClearingCase) Label() string {
	switch c {
	case CaseBestPricesEqual:
		return "Price from meeting orders"
	case CaseOrdersMissingOnOneSide:
		return "Price from one-sided orders"
	case CaseBestBuyBelowBestSell:
		return "Price from non-meeting orders"
	case CaseBestBuyAboveBestSell:
		return "Price from crossing orders"
	default:
		return ""
	}
}

// IsValid reports whether c is one of the four defined cases.
func (c ClearingCase) IsValid() bool {
	return c >= CaseBestPricesEqual && c <= CaseBestBuyAboveBestSell
}

// MarshalText encodes the case as its identifier.
func (c ClearingCase) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ClearingResult is the outcome of clearing one trading period.
// An empty snapshot yields the zero Price, CaseNone and an empty Range.
type ClearingResult struct {
	Price decimal.Decimal `json:"price"`
	Case  ClearingCase    `json:"case"`
	Range string          `json:"range,omitempty"` // "<from>-<to>", empty when no band applies
}

// IsNone reports whether the result is the empty-snapshot sentinel.
func (r ClearingResult) IsNone() bool {
	return r.Case == CaseNone
}

// HasRange reports whether a price band accompanies the result.
func (r ClearingResult) HasRange() bool {
	return r.Range != ""
}

// FormatRange renders a price band the way it is reported downstream.
// Bounds are not rounded.
func FormatRange(from, to decimal.Decimal) string {
	return from.String() + "-" + to.String()
}

// UnmarshalText decodes a case identifier produced by MarshalText.
func (c *ClearingCase) UnmarshalText(text []byte) error {
	s := string(text)
	if s == CaseNone.String() {
		*c = CaseNone
		return nil
	}
	for _, candidate := range AllCases {
		if candidate.String() == s {
			*c = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown clearing case %q", s)
}
