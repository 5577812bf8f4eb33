package optimize

import (
	"math"

	"github.com/rustyeddy/swingsim/metrics"
	"github.com/shopspring/decimal"
)

// Weights of each component in the composite score. They sum to 1.
type Weights struct {
	Return       float64
	ProfitFactor float64
	Sharpe       float64
	Drawdown     float64
	WinRate      float64
}

func DefaultWeights() Weights {
	return Weights{Return: 0.30, ProfitFactor: 0.25, Sharpe: 0.20, Drawdown: 0.15, WinRate: 0.10}
}

// Scorer maps a run's metrics to a score of roughly 0 to 100, higher is
// better. Runs with fewer than MinTrades trades score 0.
type Scorer struct {
	Weights   Weights
	MinTrades int
}

func NewScorer() Scorer {
	return Scorer{Weights: DefaultWeights(), MinTrades: 10}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(x, hi))
}

// Components normalizes each metric to 0..100:
//
//	return     0..50%         2 points per percent, capped at 100 (not floored)
//	pf         1.0..3.0
//	sharpe     0..3.0
//	drawdown   0% is 100, 20% is 0
//	win rate   20%..60%
func Components(m metrics.Summary) (ret, pf, sharpe, dd, win float64) {
	ret = math.Min(m.TotalReturnPct*2, 100)
	pf = 100
	if !m.ProfitFactor.IsInf() {
		pf = clamp((float64(m.ProfitFactor)-1.0)*50, 0, 100)
	}
	sharpe = clamp(m.SharpeRatio*33.33, 0, 100)
	dd = math.Max(0, 100-m.MaxDrawdownPct*5)
	win = clamp((m.WinRate*100-20)*2.5, 0, 100)
	return
}

func (s Scorer) Score(m metrics.Summary) float64 {
	if m.TotalTrades < s.MinTrades {
		return 0
	}
	ret, pf, sharpe, dd, win := Components(m)
	w := s.Weights
	score := ret*w.Return + pf*w.ProfitFactor + sharpe*w.Sharpe + dd*w.Drawdown + win*w.WinRate

	switch {
	case m.TotalTrades >= 100:
		score *= 1.2
	case m.TotalTrades >= 50:
		score *= 1.1
	}
	return decimal.NewFromFloat(score).Round(2).InexactFloat64()
}
