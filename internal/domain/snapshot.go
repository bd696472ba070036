package domain

import "github.com/shopspring/decimal"

// Snapshot is the set of orders collected for exactly one trading period.
// Insertion order carries no meaning; every helper below is set-like.
type Snapshot []Order

// IsEmpty reports whether the snapshot holds no orders.
func (s Snapshot) IsEmpty() bool {
	return len(s) == 0
}

// Validate checks every order against the snapshot contract.
func (s Snapshot) Validate() error {
	for i, o := range s {
		if err := o.Validate(); err != nil {
			return &OrderError{Index: i, Err: err}
		}
	}
	return nil
}

// BestBuy returns the highest buy price. ok is false when there are no buys.
func (s Snapshot) BestBuy() (price decimal.Decimal, ok bool) {
	for _, o := range s {
		if !o.IsBuy() {
			continue
		}
		if !ok || o.Price.GreaterThan(price) {
			price = o.Price
			ok = true
		}
	}
	return price, ok
}

// BestSell returns the lowest sell price. ok is false when there are no sells.
func (s Snapshot) BestSell() (price decimal.Decimal, ok bool) {
	for _, o := range s {
		if !o.IsSell() {
			continue
		}
		if !ok || o.Price.LessThan(price) {
			price = o.Price
			ok = true
		}
	}
	return price, ok
}

// Filter returns the orders for which keep returns true.
func (s Snapshot) Filter(keep func(Order) bool) Snapshot {
	var out Snapshot
	for _, o := range s {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

// Side returns the orders of one side.
func (s Snapshot) Side(side Side) Snapshot {
	return s.Filter(func(o Order) bool { return o.Side == side })
}

// Between returns the orders priced within [from, to], both ends inclusive.
func (s Snapshot) Between(from, to decimal.Decimal) Snapshot {
	return s.Filter(func(o Order) bool {
		return o.Price.GreaterThanOrEqual(from) && o.Price.LessThanOrEqual(to)
	})
}

// TotalVolume sums volume magnitudes.
func (s Snapshot) TotalVolume() decimal.Decimal {
	total := decimal.Zero
	for _, o := range s {
		total = total.Add(o.Volume)
	}
	return total
}

// PriceLevels returns the distinct prices in first-seen order.
func (s Snapshot) PriceLevels() []decimal.Decimal {
	seen := make(map[string]struct{}, len(s))
	levels := make([]decimal.Decimal, 0, len(s))
	for _, o := range s {
		// Normalized key so 10 and 10.00 collapse to one level.
		key := o.Price.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		levels = append(levels, o.Price)
	}
	return levels
}
