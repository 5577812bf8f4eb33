package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/swingsim/market"
)

// DefaultATRPeriod is the lookback used for sizing when none is configured.
const DefaultATRPeriod = 14

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(current, previous market.Bar) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)
	return math.Max(highLow, math.Max(highClose, lowClose))
}

// ATRFunc returns the simple average of the last period true ranges.
// The first bar has no previous close, so its true range is high-low.
func ATRFunc(bars []market.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period, len(bars))
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		if i == 0 {
			sum += bars[0].High - bars[0].Low
			continue
		}
		sum += TrueRange(bars[i], bars[i-1])
	}
	return sum / float64(period), nil
}

// ATR is a streaming Average True Range over a rolling window.
type ATR struct {
	period  int
	window  []float64
	sum     float64
	prev    market.Bar
	hasPrev bool
}

func NewATR(period int) *ATR {
	return &ATR{period: period, window: make([]float64, 0, period)}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR(%d)", a.period)
}

func (a *ATR) Warmup() int { return a.period }

func (a *ATR) Reset() {
	a.window = a.window[:0]
	a.sum = 0
	a.hasPrev = false
}

func (a *ATR) Update(b market.Bar) {
	tr := b.High - b.Low
	if a.hasPrev {
		tr = TrueRange(b, a.prev)
	}
	a.prev = b
	a.hasPrev = true

	a.window = append(a.window, tr)
	a.sum += tr
	if len(a.window) > a.period {
		a.sum -= a.window[0]
		a.window = a.window[1:]
	}
}

func (a *ATR) Ready() bool {
	return a.period > 0 && len(a.window) >= a.period
}

func (a *ATR) Value() float64 {
	if !a.Ready() {
		return 0
	}
	return a.sum / float64(a.period)
}
