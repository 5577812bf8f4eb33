package strategies

import (
	"context"
	"math"
	"time"

	"github.com/rustyeddy/swingsim/backtest"
	"github.com/rustyeddy/swingsim/config"
	"github.com/rustyeddy/swingsim/indicators"
	"github.com/rustyeddy/swingsim/market"
)

// MinHistory is the number of daily bars a symbol and the benchmark need
// before the RRS strategy evaluates them.
const MinHistory = 20

// Class buckets an RRS value.
type Class string

const (
	StrongRS   Class = "STRONG_RS"
	ModerateRS Class = "MODERATE_RS"
	Neutral    Class = "NEUTRAL"
	ModerateRW Class = "MODERATE_RW"
	StrongRW   Class = "STRONG_RW"
)

func Classify(rrs float64) Class {
	switch {
	case rrs > 2.0:
		return StrongRS
	case rrs > 0.5:
		return ModerateRS
	case rrs > -0.5:
		return Neutral
	case rrs > -2.0:
		return ModerateRW
	default:
		return StrongRW
	}
}

// RRS is real relative strength: the stock's percent change less the
// benchmark's, in units of the stock's ATR. It is 0 when atr is not
// positive.
func RRS(close, prevClose, benchClose, benchPrevClose, atr float64) float64 {
	if atr <= 0 || prevClose == 0 || benchPrevClose == 0 {
		return 0
	}
	stock := (close/prevClose - 1) * 100
	bench := (benchClose/benchPrevClose - 1) * 100
	return (stock - bench) / atr
}

// DailyCheck is the daily chart assessment for one side.
type DailyCheck struct {
	Score   int  // conditions met out of five
	Relaxed bool // Score >= 3
	Strict  bool // three candles in a row plus short EMA alignment
}

// Passes picks the relaxed or strict verdict.
func (c DailyCheck) Passes(relaxed bool) bool {
	if relaxed {
		return c.Relaxed
	}
	return c.Strict
}

type emas struct{ e3, e8, e21 float64 }

func lastEMAs(bars []market.Bar) emas {
	var out emas
	out.e3, _ = indicators.EMA(bars, 3)
	out.e8, _ = indicators.EMA(bars, 8)
	out.e21, _ = indicators.EMA(bars, 21)
	return out
}

func tail(bars []market.Bar, n int) []market.Bar {
	if len(bars) < n {
		return bars
	}
	return bars[len(bars)-n:]
}

func count(bars []market.Bar, pred func(market.Bar) bool) int {
	n := 0
	for _, b := range bars {
		if pred(b) {
			n++
		}
	}
	return n
}

func point(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

// Strength scores a bullish daily chart.
func Strength(bars []market.Bar) DailyCheck {
	if len(bars) == 0 {
		return DailyCheck{}
	}
	e := lastEMAs(bars)
	last := bars[len(bars)-1]
	last3 := tail(bars, 3)
	last5 := tail(bars, 5)

	green := count(last3, market.Bar.Green)
	higherLows := len(last5) >= 3 && last5[len(last5)-1].Low > last5[0].Low

	score := point(e.e3 > e.e8) + point(e.e8 > e.e21) + point(last.Close > e.e8) +
		point(higherLows) + point(green >= 2)
	return DailyCheck{
		Score:   score,
		Relaxed: score >= 3,
		Strict:  len(last3) == 3 && green == 3 && e.e3 > e.e8 && last.Close > e.e8,
	}
}

// Weakness mirrors Strength for a bearish daily chart.
func Weakness(bars []market.Bar) DailyCheck {
	if len(bars) == 0 {
		return DailyCheck{}
	}
	e := lastEMAs(bars)
	last := bars[len(bars)-1]
	last3 := tail(bars, 3)
	last5 := tail(bars, 5)

	red := count(last3, market.Bar.Red)
	lowerHighs := len(last5) >= 3 && last5[len(last5)-1].High < last5[0].High

	score := point(e.e8 > e.e3) + point(e.e21 > e.e8) + point(last.Close < e.e8) +
		point(lowerHighs) + point(red >= 2)
	return DailyCheck{
		Score:   score,
		Relaxed: score >= 3,
		Strict:  len(last3) == 3 && red == 3 && e.e8 > e.e3 && last.Close < e.e8,
	}
}

// RRSStrategy signals a long when RRS is above the threshold on a strong
// daily chart and a short when it is below the negative threshold on a
// weak one. Entries are at the day's close with ATR(14) for sizing.
type RRSStrategy struct {
	Threshold float64
	Relaxed   bool
	ATRPeriod int
}

func NewRRS(p config.ParameterSet) *RRSStrategy {
	return &RRSStrategy{
		Threshold: p.RRSThreshold,
		Relaxed:   p.UseRelaxedEntry,
		ATRPeriod: indicators.DefaultATRPeriod,
	}
}

// Evaluate looks at one symbol's bars and the benchmark's, both ending on
// the day being evaluated.
func (s *RRSStrategy) Evaluate(symbol string, bars, bench []market.Bar) (backtest.Signal, bool) {
	if len(bars) < MinHistory || len(bench) < MinHistory || len(bars) < s.ATRPeriod {
		return backtest.Signal{}, false
	}
	last, prev := bars[len(bars)-1], bars[len(bars)-2]
	bLast, bPrev := bench[len(bench)-1], bench[len(bench)-2]

	atr := indicators.Run(indicators.NewATR(s.ATRPeriod), bars)
	rrs := RRS(last.Close, prev.Close, bLast.Close, bPrev.Close, atr)
	if math.Abs(rrs) < s.Threshold {
		return backtest.Signal{}, false
	}

	var dir market.Direction
	switch {
	case rrs > s.Threshold && Strength(bars).Passes(s.Relaxed):
		dir = market.Long
	case rrs < -s.Threshold && Weakness(bars).Passes(s.Relaxed):
		dir = market.Short
	default:
		return backtest.Signal{}, false
	}

	return backtest.Signal{
		Date:      last.Date,
		Symbol:    symbol,
		Direction: dir,
		Price:     last.Close,
		ATR:       atr,
		Strength:  math.Abs(rrs),
	}, true
}

// Signals evaluates every symbol with a bar on day.
func (s *RRSStrategy) Signals(ctx context.Context, day time.Time, data *market.Dataset) ([]backtest.Signal, error) {
	if data.Benchmark == nil {
		return nil, nil
	}
	bench := data.Benchmark.Upto(day)
	if len(bench) == 0 || !bench[len(bench)-1].Date.Equal(market.Day(day)) {
		return nil, nil
	}

	var out []backtest.Signal
	for _, name := range data.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bars := data.Series(name).Upto(day)
		if len(bars) == 0 || !bars[len(bars)-1].Date.Equal(market.Day(day)) {
			continue
		}
		if sig, ok := s.Evaluate(name, bars, bench); ok {
			out = append(out, sig)
		}
	}
	return out, nil
}
