package sim

import (
	"github.com/rustyeddy/swingsim/market"
	"go.uber.org/zap"
)

// Outcome is what one Step did to a position.
type Outcome struct {
	Fills     []Fill
	Closed    bool
	Reason    ExitReason
	Breakeven bool
	StopMoved bool
	Scale1    bool
	Scale2    bool
}

// Proceeds is the cash returned by the day's fills: cost basis plus P&L.
func (o Outcome) Proceeds(entry float64) float64 {
	total := 0.0
	for _, f := range o.Fills {
		total += entry*float64(f.Shares) + f.PnL
	}
	return total
}

// RealizedPnL sums the P&L of the day's fills.
func (o Outcome) RealizedPnL() float64 {
	total := 0.0
	for _, f := range o.Fills {
		total += f.PnL
	}
	return total
}

type MachineOption func(*Machine)

func WithLogger(l *zap.Logger) MachineOption {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

// Machine evaluates the daily exit rules for open positions.
type Machine struct {
	rules ExitRules
	log   *zap.Logger
}

func NewMachine(rules ExitRules, opts ...MachineOption) *Machine {
	m := &Machine{rules: rules, log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Rules() ExitRules { return m.rules }

// Step runs one day of the lifecycle on p in fixed order:
//
//  1. excursions from the day's high and low
//  2. stop (checked first, so a day touching stop and target is a loss)
//  3. scale-out 1 at the R target from the original stop
//  4. breakeven on close-based R
//  5. trailing ratchet behind the favorable extreme
//  6. scale-out 2
//  7. full target
//  8. max-days and stale time stops at the close
//
// Any step that closes the position ends the day.
func (m *Machine) Step(p *Position, b market.Bar) (Outcome, error) {
	var out Outcome
	if p.Closed() {
		e := invariant(p, "step", "position closed")
		e.Err = ErrPositionClosed
		return out, e
	}
	r := m.rules
	sign := p.Direction.Sign()

	if fav := sign * (p.Direction.Favorable(b) - p.EntryPrice); fav > p.MFE {
		p.MFE = fav
	}
	if adv := sign * (p.EntryPrice - p.Direction.Adverse(b)); adv > p.MAE {
		p.MAE = adv
	}

	closeAt := func(price float64, reason ExitReason) (Outcome, error) {
		f, err := p.ForceClose(b.Date, price, reason)
		if err != nil {
			return out, err
		}
		out.Fills = append(out.Fills, f)
		out.Closed = true
		out.Reason = reason
		m.log.Debug("position closed",
			zap.String("symbol", p.Symbol),
			zap.String("reason", string(reason)),
			zap.Float64("price", price),
			zap.Float64("pnl", p.RealizedPnL))
		return out, nil
	}

	if hitStop(p, b) {
		return closeAt(p.StopPrice, stopReason(p))
	}

	if r.UseScaledExits && !p.Scale1Done {
		level := p.TargetForR(r.Scale1TargetR)
		if reached(p, b, level) {
			f, filled, err := p.ScaleOut(b.Date, FillScale1, level, r.Scale1Fraction)
			if err != nil {
				return out, err
			}
			if filled {
				out.Fills = append(out.Fills, f)
				out.Scale1 = true
				m.log.Debug("scaled out", zap.String("symbol", p.Symbol), zap.String("leg", string(f.Kind)),
					zap.Int("shares", f.Shares), zap.Float64("price", f.Price))
			}
		}
	}

	if r.UseTrailingStop && !p.BreakevenActivated && p.RMultiple(b.Close) >= r.BreakevenTriggerR {
		before := p.StopPrice
		if err := p.ActivateBreakeven(); err != nil {
			return out, err
		}
		out.Breakeven = true
		out.StopMoved = out.StopMoved || p.StopPrice != before
		m.log.Debug("breakeven activated", zap.String("symbol", p.Symbol), zap.Float64("stop", p.StopPrice))
	}

	if r.UseTrailingStop && p.BreakevenActivated {
		candidate := p.Direction.Favorable(b) - sign*p.ATR*r.TrailingATRMultiplier
		moved, err := p.Trail(candidate)
		if err != nil {
			return out, err
		}
		out.StopMoved = out.StopMoved || moved
	}

	if r.UseScaledExits && p.Scale1Done && !p.Scale2Done {
		level := p.TargetForR(r.Scale2TargetR)
		if reached(p, b, level) {
			f, filled, err := p.ScaleOut(b.Date, FillScale2, level, r.Scale2Fraction)
			if err != nil {
				return out, err
			}
			if filled {
				out.Fills = append(out.Fills, f)
				out.Scale2 = true
				m.log.Debug("scaled out", zap.String("symbol", p.Symbol), zap.String("leg", string(f.Kind)),
					zap.Int("shares", f.Shares), zap.Float64("price", f.Price))
			}
		}
	}

	if reached(p, b, p.TargetPrice) {
		return closeAt(p.TargetPrice, ExitTakeProfit)
	}

	if r.UseTimeStop {
		days := p.HoldingDays(b.Date)
		if days >= r.MaxHoldingDays {
			return closeAt(b.Close, ExitMaxDays)
		}
		if days >= r.StaleTradeDays && p.RMultiple(b.Close) < r.StaleMinR {
			return closeAt(b.Close, ExitStale)
		}
	}

	return out, nil
}
