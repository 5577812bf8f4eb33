package indicators

import (
	"fmt"

	"github.com/rustyeddy/swingsim/market"
)

// MA calculates the simple moving average of the last period closes.
func MA(bars []market.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period, len(bars))
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		sum += bars[i].Close
	}
	return sum / float64(period), nil
}

// EMASeries returns the exponential moving average of closes for every
// bar, seeded with the first close and smoothed with alpha = 2/(span+1).
func EMASeries(bars []market.Bar, span int) ([]float64, error) {
	if span <= 0 {
		return nil, fmt.Errorf("span must be positive, got %d", span)
	}
	out := make([]float64, len(bars))
	if len(bars) == 0 {
		return out, nil
	}

	alpha := 2.0 / float64(span+1)
	out[0] = bars[0].Close
	for i := 1; i < len(bars); i++ {
		out[i] = alpha*bars[i].Close + (1-alpha)*out[i-1]
	}
	return out, nil
}

// EMA returns the last value of EMASeries.
func EMA(bars []market.Bar, span int) (float64, error) {
	if len(bars) == 0 {
		return 0, fmt.Errorf("not enough bars: need 1, got 0")
	}
	s, err := EMASeries(bars, span)
	if err != nil {
		return 0, err
	}
	return s[len(s)-1], nil
}

// ExponentialMA is a streaming EMA seeded with the first close.
type ExponentialMA struct {
	span  int
	alpha float64
	value float64
	count int
}

func NewEMA(span int) *ExponentialMA {
	return &ExponentialMA{span: span, alpha: 2.0 / float64(span+1)}
}

func (e *ExponentialMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.span)
}

func (e *ExponentialMA) Warmup() int { return e.span }

func (e *ExponentialMA) Reset() {
	e.value = 0
	e.count = 0
}

func (e *ExponentialMA) Update(b market.Bar) {
	if e.count == 0 {
		e.value = b.Close
	} else {
		e.value = e.alpha*b.Close + (1-e.alpha)*e.value
	}
	e.count++
}

func (e *ExponentialMA) Ready() bool {
	return e.span > 0 && e.count >= e.span
}

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.value
}
