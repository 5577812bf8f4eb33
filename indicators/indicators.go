// Package indicators provides the technical indicators used for signal
// generation and position sizing on daily bars.
package indicators

import "github.com/rustyeddy/swingsim/market"

// Indicator computes a single streaming value from bars.
// It is deterministic and safe to reuse across backtests after Reset.
type Indicator interface {
	// Name returns a stable identifier like "EMA(8)" or "ATR(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	Reset()

	// Update consumes the next closed bar.
	Update(b market.Bar)

	Ready() bool

	// Value is 0 until Ready.
	Value() float64
}

// Run feeds bars through ind and returns the final value.
func Run(ind Indicator, bars []market.Bar) float64 {
	ind.Reset()
	for _, b := range bars {
		ind.Update(b)
	}
	return ind.Value()
}
