// Package metrics reduces completed trades and an equity curve to the
// summary statistics of a run.
package metrics

import (
	"math"

	"github.com/rustyeddy/swingsim/portfolio"
	"github.com/rustyeddy/swingsim/sim"
)

// Counters are engine events that do not show up in the trade list.
type Counters struct {
	BreakevenActivations int `json:"breakeven_activations" yaml:"breakeven_activations"`
	Scale1Exits          int `json:"scale1_exits" yaml:"scale1_exits"`
	Scale2Exits          int `json:"scale2_exits" yaml:"scale2_exits"`
	RejectedSignals      int `json:"rejected_signals" yaml:"rejected_signals"`
}

type Input struct {
	InitialCapital float64
	FinalCapital   float64
	Trades         []sim.CompletedTrade
	Curve          []portfolio.EquityPoint
	Counters       Counters
}

type Summary struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	FinalCapital   float64 `json:"final_capital" yaml:"final_capital"`
	TotalReturn    float64 `json:"total_return" yaml:"total_return"`
	TotalReturnPct float64 `json:"total_return_pct" yaml:"total_return_pct"`

	TotalTrades   int     `json:"total_trades" yaml:"total_trades"`
	WinningTrades int     `json:"winning_trades" yaml:"winning_trades"`
	LosingTrades  int     `json:"losing_trades" yaml:"losing_trades"`
	WinRate       float64 `json:"win_rate" yaml:"win_rate"`
	GrossProfit   float64 `json:"gross_profit" yaml:"gross_profit"`
	GrossLoss     float64 `json:"gross_loss" yaml:"gross_loss"`
	AvgWin        float64 `json:"avg_win" yaml:"avg_win"`
	AvgLoss       float64 `json:"avg_loss" yaml:"avg_loss"`
	ProfitFactor  Factor  `json:"profit_factor" yaml:"profit_factor"`

	MaxDrawdown    float64 `json:"max_drawdown" yaml:"max_drawdown"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio" yaml:"sharpe_ratio"`

	AvgHoldingDays float64 `json:"avg_holding_days" yaml:"avg_holding_days"`
	AvgMFE         float64 `json:"avg_mfe" yaml:"avg_mfe"`
	AvgMAE         float64 `json:"avg_mae" yaml:"avg_mae"`

	// StoppedOut counts every stop exit; TrailingStops is the subset hit
	// after the stop had moved.
	StoppedOut    int                    `json:"trades_stopped_out" yaml:"trades_stopped_out"`
	TargetHit     int                    `json:"trades_target_hit" yaml:"trades_target_hit"`
	TrailingStops int                    `json:"trades_trailing_stopped" yaml:"trades_trailing_stopped"`
	TimeStopped   int                    `json:"trades_time_stopped" yaml:"trades_time_stopped"`
	ExitReasons   map[sim.ExitReason]int `json:"exit_reasons" yaml:"exit_reasons"`

	Counters `json:",inline" yaml:",inline"`
}

// Compute is a pure function of its input.
func Compute(in Input) Summary {
	s := Summary{
		InitialCapital: in.InitialCapital,
		FinalCapital:   in.FinalCapital,
		TotalReturn:    in.FinalCapital - in.InitialCapital,
		TotalTrades:    len(in.Trades),
		ExitReasons:    map[sim.ExitReason]int{},
		Counters:       in.Counters,
	}
	if in.InitialCapital > 0 {
		s.TotalReturnPct = s.TotalReturn / in.InitialCapital * 100
	}
	s.MaxDrawdown, s.MaxDrawdownPct = MaxDrawdown(in.InitialCapital, in.Curve)

	if len(in.Trades) == 0 {
		return s
	}

	var holding, mfe, mae float64
	for _, t := range in.Trades {
		if t.IsWinner() {
			s.WinningTrades++
			s.GrossProfit += t.PnL
		} else {
			s.LosingTrades++
			s.GrossLoss += -t.PnL
		}
		holding += float64(t.HoldingDays)
		mfe += t.MFE
		mae += t.MAE

		s.ExitReasons[t.ExitReason]++
		switch {
		case t.ExitReason.IsStop():
			s.StoppedOut++
			if t.ExitReason == sim.ExitTrailingStop {
				s.TrailingStops++
			}
		case t.ExitReason == sim.ExitTakeProfit:
			s.TargetHit++
		case t.ExitReason.IsTime():
			s.TimeStopped++
		}
	}

	n := float64(len(in.Trades))
	s.WinRate = float64(s.WinningTrades) / n
	if s.WinningTrades > 0 {
		s.AvgWin = s.GrossProfit / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = s.GrossLoss / float64(s.LosingTrades)
	}
	s.ProfitFactor = ProfitFactor(s.GrossProfit, s.GrossLoss)
	s.SharpeRatio = Sharpe(in.Trades)
	s.AvgHoldingDays = holding / n
	s.AvgMFE = mfe / n
	s.AvgMAE = mae / n
	return s
}

// ProfitFactor is gross profit over gross loss, +Inf with no losses.
func ProfitFactor(grossProfit, grossLoss float64) Factor {
	if grossLoss == 0 {
		return Factor(math.Inf(1))
	}
	return Factor(grossProfit / grossLoss)
}

// MaxDrawdown walks the curve with the peak starting at initial and
// returns the largest drop below peak and that drop as a percent of the
// peak it fell from.
func MaxDrawdown(initial float64, curve []portfolio.EquityPoint) (amount, pct float64) {
	peak := initial
	for _, pt := range curve {
		if pt.Equity > peak {
			peak = pt.Equity
		}
		if dd := peak - pt.Equity; dd > amount {
			amount = dd
			if peak > 0 {
				pct = dd / peak * 100
			}
		}
	}
	return amount, pct
}

// Sharpe is mean over population standard deviation of per-trade percent
// returns. It is 0 with fewer than two trades or no variance.
func Sharpe(trades []sim.CompletedTrade) float64 {
	if len(trades) < 2 {
		return 0
	}
	n := float64(len(trades))
	mean := 0.0
	for _, t := range trades {
		mean += t.PnLPercent
	}
	mean /= n

	variance := 0.0
	for _, t := range trades {
		d := t.PnLPercent - mean
		variance += d * d
	}
	std := math.Sqrt(variance / n)
	if std == 0 {
		return 0
	}
	return mean / std
}
