// Package backtest runs the day-by-day simulation of a swing strategy over
// daily bars.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/swingsim/config"
	"github.com/rustyeddy/swingsim/market"
	"github.com/rustyeddy/swingsim/metrics"
	"github.com/rustyeddy/swingsim/pkg/id"
	"github.com/rustyeddy/swingsim/portfolio"
	"github.com/rustyeddy/swingsim/risk"
	"github.com/rustyeddy/swingsim/sim"
	"go.uber.org/zap"
)

var ErrNoTradingDays = errors.New("backtest: no trading days in window")

// Settings is everything a run needs besides data and signals. It is
// copied into the Engine and never changed.
type Settings struct {
	InitialCapital float64             `json:"initial_capital" yaml:"initial_capital"`
	Params         config.ParameterSet `json:"params" yaml:"params"`
	Limits         risk.Limits         `json:"limits" yaml:"limits"`
	Exits          sim.ExitRules       `json:"exits" yaml:"exits"`
	Start          time.Time           `json:"start,omitempty" yaml:"start,omitempty"`
	End            time.Time           `json:"end,omitempty" yaml:"end,omitempty"`
}

// SettingsFromConfig builds run settings from a loaded Config.
func SettingsFromConfig(c *config.Config) (Settings, error) {
	start, end, err := c.Data.Window()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		InitialCapital: c.Account.Balance,
		Params:         c.Params,
		Limits:         c.Risk,
		Exits:          c.Exits,
		Start:          start,
		End:            end,
	}, nil
}

// EffectiveLimits applies the parameter set's per-trade risk and
// position count to the configured limits.
func (s Settings) EffectiveLimits() risk.Limits {
	l := s.Limits
	l.MaxRiskPerTrade = s.Params.MaxRiskPerTrade
	l.MaxOpenPositions = s.Params.MaxPositions
	return l
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRunID fixes the run ID instead of generating one.
func WithRunID(runID string) Option {
	return func(e *Engine) { e.runID = runID }
}

// Engine is a configured simulation. Run may be called any number of
// times; each call owns its own account, positions and equity curve.
type Engine struct {
	data     *market.Dataset
	signals  SignalSource
	settings Settings
	log      *zap.Logger
	runID    string
}

func NewEngine(data *market.Dataset, signals SignalSource, s Settings, opts ...Option) (*Engine, error) {
	if data == nil {
		return nil, fmt.Errorf("backtest: dataset is required")
	}
	if signals == nil {
		return nil, fmt.Errorf("backtest: signal source is required")
	}
	if s.InitialCapital <= 0 {
		return nil, fmt.Errorf("backtest: initial capital must be positive")
	}
	if err := s.Params.Validate(); err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}

	e := &Engine{data: data, signals: signals, settings: s, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Settings() Settings { return e.settings }

// run is the mutable state of one Run call.
type run struct {
	e        *Engine
	id       string
	acct     *portfolio.Account
	open     *sim.Registry
	sizer    *risk.Sizer
	gate     *risk.Gate
	machine  *sim.Machine
	trades   []sim.CompletedTrade
	rejected []Rejection
	counters metrics.Counters
	halted   string
}

// Run simulates every trading day in the window. For each day it steps
// open positions, admits new entries while below the position cap, then
// records one equity sample. Positions still open after the last day are
// closed at its close with reason backtest_end.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	days := e.data.TradingDays(e.settings.Start, e.settings.End)
	if len(days) == 0 {
		return nil, ErrNoTradingDays
	}

	runID := e.runID
	if runID == "" {
		runID = id.New()
	}
	limits := e.settings.EffectiveLimits()
	r := &run{
		e:       e,
		id:      runID,
		acct:    portfolio.NewAccount(e.settings.InitialCapital),
		open:    sim.NewRegistry(),
		sizer:   risk.NewSizer(limits),
		gate:    risk.NewGate(limits),
		machine: sim.NewMachine(e.settings.Exits, sim.WithLogger(e.log)),
	}
	log := e.log.With(zap.String("run_id", runID))
	log.Info("backtest start",
		zap.Time("start", days[0]),
		zap.Time("end", days[len(days)-1]),
		zap.Int("days", len(days)),
		zap.Int("symbols", len(e.data.Symbols)),
		zap.String("params", e.settings.Params.String()))

	for _, d := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.day(ctx, d); err != nil {
			return nil, fmt.Errorf("run %s on %s: %w", runID, d.Format(time.DateOnly), err)
		}
	}

	last := days[len(days)-1]
	for _, p := range r.open.Positions() {
		price := r.mark(p, last)
		f, err := p.ForceClose(last, price, sim.ExitBacktestEnd)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		r.acct.Credit(p.EntryPrice*float64(f.Shares)+f.PnL, f.PnL)
		if err := r.complete(p); err != nil {
			return nil, err
		}
	}

	res := &Result{
		RunID:          runID,
		Start:          days[0],
		End:            last,
		InitialCapital: r.acct.Initial(),
		FinalCapital:   r.acct.Cash(),
		Settings:       e.settings,
		Trades:         r.trades,
		Equity:         r.acct.Curve(),
		Rejections:     r.rejected,
	}
	res.Metrics = metrics.Compute(metrics.Input{
		InitialCapital: res.InitialCapital,
		FinalCapital:   res.FinalCapital,
		Trades:         res.Trades,
		Curve:          res.Equity,
		Counters:       r.counters,
	})

	log.Info("backtest complete",
		zap.Int("trades", res.Metrics.TotalTrades),
		zap.Float64("win_rate", res.Metrics.WinRate),
		zap.Float64("return_pct", res.Metrics.TotalReturnPct),
		zap.Float64("max_dd_pct", res.Metrics.MaxDrawdownPct))
	return res, nil
}

func (r *run) day(ctx context.Context, d time.Time) error {
	r.acct.StartDay(d)
	r.halted = ""

	if err := r.updatePositions(d); err != nil {
		return err
	}

	state := r.state(d)
	if r.gate.DailyLossBreached(state) {
		r.halted = "daily loss limit exceeded"
		r.e.log.Debug("trading halted", zap.Time("day", d), zap.Float64("daily_pnl", state.DailyPnL))
	}

	if r.open.Len() < r.e.settings.Params.MaxPositions {
		if err := r.enter(ctx, d); err != nil {
			return err
		}
	}

	if _, err := r.acct.Record(d, r.equity(d), r.open.Len()); err != nil {
		return err
	}
	dd, ddPct := r.acct.Drawdown()
	r.e.log.Debug("day closed",
		zap.Time("day", d),
		zap.Float64("equity", r.acct.Equity()),
		zap.Float64("cash", r.acct.Cash()),
		zap.Int("open", r.open.Len()),
		zap.Float64("drawdown", dd),
		zap.Float64("drawdown_pct", ddPct))
	return nil
}

func (r *run) updatePositions(d time.Time) error {
	for _, p := range r.open.Positions() {
		s := r.e.data.Series(p.Symbol)
		if s == nil {
			continue
		}
		b, ok := s.At(d)
		if !ok {
			continue
		}

		out, err := r.machine.Step(p, b)
		if err != nil {
			return err
		}
		if len(out.Fills) > 0 {
			r.acct.Credit(out.Proceeds(p.EntryPrice), out.RealizedPnL())
		}
		if out.Breakeven {
			r.counters.BreakevenActivations++
		}
		if out.Scale1 {
			r.counters.Scale1Exits++
		}
		if out.Scale2 {
			r.counters.Scale2Exits++
		}
		if out.Closed {
			if err := r.complete(p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) enter(ctx context.Context, d time.Time) error {
	sigs, err := r.e.signals.Signals(ctx, d, r.e.data)
	if err != nil {
		return fmt.Errorf("signals: %w", err)
	}
	Rank(sigs)

	params := r.e.settings.Params
	for _, sig := range sigs {
		if r.open.Len() >= params.MaxPositions {
			break
		}
		if r.open.Has(sig.Symbol) {
			continue
		}
		s := r.e.data.Series(sig.Symbol)
		if s == nil {
			continue
		}
		if _, ok := s.At(d); !ok {
			continue
		}

		sz := r.sizer.Size(risk.SizeRequest{
			Capital:    r.acct.Cash(),
			Entry:      sig.Price,
			ATR:        sig.ATR,
			Direction:  sig.Direction,
			StopMult:   params.StopATRMultiplier,
			TargetMult: params.TargetATRMultiplier,
			RiskPct:    params.MaxRiskPerTrade,
		})
		if sz.Shares == 0 {
			r.reject(d, sig, string(sz.Constraint))
			continue
		}

		checks := r.gate.Validate(risk.Proposal(sig.Symbol, sig.Direction, sig.Price, sz), r.state(d))
		if !risk.Passed(checks) {
			r.reject(d, sig, risk.Summary(checks))
			continue
		}

		p, err := sim.NewPosition(sim.OpenRequest{
			ID:          fmt.Sprintf("%s-%s", sig.Symbol, d.Format("20060102")),
			Symbol:      sig.Symbol,
			Direction:   sig.Direction,
			Date:        d,
			EntryPrice:  sig.Price,
			Shares:      sz.Shares,
			StopPrice:   sz.StopPrice,
			TargetPrice: sz.TargetPrice,
			ATR:         sig.ATR,
			Strength:    sig.Strength,
		})
		if err != nil {
			r.reject(d, sig, err.Error())
			continue
		}
		if err := r.acct.Debit(sz.PositionValue); err != nil {
			return err
		}
		if err := r.open.Insert(p); err != nil {
			return err
		}
		r.e.log.Debug("entered",
			zap.String("symbol", p.Symbol),
			zap.String("direction", string(p.Direction)),
			zap.Float64("entry", p.EntryPrice),
			zap.Int("shares", p.SharesTotal),
			zap.Float64("stop", p.StopPrice),
			zap.Float64("target", p.TargetPrice))
	}
	return nil
}

func (r *run) reject(d time.Time, sig Signal, reason string) {
	r.counters.RejectedSignals++
	r.rejected = append(r.rejected, Rejection{Date: d, Symbol: sig.Symbol, Direction: sig.Direction, Reason: reason})
	r.e.log.Debug("signal rejected", zap.String("symbol", sig.Symbol), zap.String("reason", reason))
}

func (r *run) complete(p *sim.Position) error {
	t, err := sim.Complete(p)
	if err != nil {
		return err
	}
	r.open.Remove(p.Symbol)
	r.trades = append(r.trades, t)
	return nil
}

// mark is the latest close on or before d, or the entry price when the
// symbol has no bars yet.
func (r *run) mark(p *sim.Position, d time.Time) float64 {
	if s := r.e.data.Series(p.Symbol); s != nil {
		if c, ok := s.CloseOnOrBefore(d); ok {
			return c
		}
	}
	return p.EntryPrice
}

func (r *run) equity(d time.Time) float64 {
	eq := r.acct.Cash()
	for _, p := range r.open.Positions() {
		eq += p.MarketValue(r.mark(p, d))
	}
	return eq
}

func (r *run) state(d time.Time) risk.PortfolioState {
	cash := r.acct.Cash()
	return risk.PortfolioState{
		AccountValue:  cash,
		Cash:          cash,
		Equity:        r.equity(d),
		PeakEquity:    r.acct.Peak(),
		DailyPnL:      r.acct.DailyPnL(),
		OpenPositions: r.open.Len(),
		Halted:        r.halted != "",
		HaltReason:    r.halted,
	}
}
