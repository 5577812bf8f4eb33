package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/swingsim/market"
)

type State string

const (
	StateOpen    State = "open"
	StatePartial State = "partially_scaled"
	StateClosed  State = "closed"
)

type ExitReason string

const (
	ExitStopLoss     ExitReason = "stop_loss"
	ExitTrailingStop ExitReason = "trailing_stop"
	ExitTakeProfit   ExitReason = "take_profit"
	ExitMaxDays      ExitReason = "time_stop_max_days"
	ExitStale        ExitReason = "time_stop_stale"
	ExitBacktestEnd  ExitReason = "backtest_end"
)

// IsStop reports whether r is a stop exit, trailing or not.
func (r ExitReason) IsStop() bool {
	return r == ExitStopLoss || r == ExitTrailingStop
}

// IsTime reports whether r is a time-based exit.
func (r ExitReason) IsTime() bool {
	return r == ExitMaxDays || r == ExitStale
}

type FillKind string

const (
	FillScale1 FillKind = "scale_1"
	FillScale2 FillKind = "scale_2"
	FillExit   FillKind = "exit"
)

// Fill is one sale of shares out of a position.
type Fill struct {
	Date   time.Time `json:"date" yaml:"date"`
	Kind   FillKind  `json:"kind" yaml:"kind"`
	Shares int       `json:"shares" yaml:"shares"`
	Price  float64   `json:"price" yaml:"price"`
	PnL    float64   `json:"pnl" yaml:"pnl"`
}

// OpenRequest describes an admitted entry.
type OpenRequest struct {
	ID          string
	Symbol      string
	Direction   market.Direction
	Date        time.Time
	EntryPrice  float64
	Shares      int
	StopPrice   float64
	TargetPrice float64
	ATR         float64
	Strength    float64
}

// Position is one open trade. Fields are exported for reporting; all
// changes go through ApplyStop, Trail, ActivateBreakeven, ScaleOut and
// ForceClose, which check their invariants before returning.
type Position struct {
	ID        string           `json:"id"`
	Symbol    string           `json:"symbol"`
	Direction market.Direction `json:"direction"`
	EntryDate time.Time        `json:"entry_date"`

	EntryPrice float64 `json:"entry_price"`
	ATR        float64 `json:"atr"`
	Strength   float64 `json:"strength"`

	SharesTotal     int `json:"shares_total"`
	SharesRemaining int `json:"shares_remaining"`

	StopPrice         float64 `json:"stop_price"`
	OriginalStop      float64 `json:"original_stop"`
	TargetPrice       float64 `json:"target_price"`
	TrailingStopPrice float64 `json:"trailing_stop_price"`

	BreakevenActivated bool `json:"breakeven_activated"`
	Scale1Done         bool `json:"scale1_done"`
	Scale2Done         bool `json:"scale2_done"`

	MFE float64 `json:"max_favorable_excursion"`
	MAE float64 `json:"max_adverse_excursion"`

	ExitDate    time.Time  `json:"exit_date,omitempty"`
	ExitPrice   float64    `json:"exit_price,omitempty"`
	ExitReason  ExitReason `json:"exit_reason,omitempty"`
	RealizedPnL float64    `json:"realized_pnl"`

	Fills []Fill `json:"fills,omitempty"`
}

// NewPosition validates req and opens a position.
func NewPosition(req OpenRequest) (*Position, error) {
	switch {
	case req.Symbol == "":
		return nil, fmt.Errorf("%w: symbol required", ErrInvalidPosition)
	case !req.Direction.Valid():
		return nil, fmt.Errorf("%w: direction %q", ErrInvalidPosition, req.Direction)
	case req.EntryPrice <= 0:
		return nil, fmt.Errorf("%w: entry price %.4f", ErrInvalidPosition, req.EntryPrice)
	case req.Shares <= 0:
		return nil, fmt.Errorf("%w: shares %d", ErrInvalidPosition, req.Shares)
	}

	sign := req.Direction.Sign()
	if sign*(req.EntryPrice-req.StopPrice) <= 0 {
		return nil, fmt.Errorf("%w: %s stop %.4f on wrong side of entry %.4f",
			ErrInvalidPosition, req.Direction, req.StopPrice, req.EntryPrice)
	}
	if sign*(req.TargetPrice-req.EntryPrice) <= 0 {
		return nil, fmt.Errorf("%w: %s target %.4f on wrong side of entry %.4f",
			ErrInvalidPosition, req.Direction, req.TargetPrice, req.EntryPrice)
	}

	return &Position{
		ID:              req.ID,
		Symbol:          req.Symbol,
		Direction:       req.Direction,
		EntryDate:       market.Day(req.Date),
		EntryPrice:      req.EntryPrice,
		ATR:             req.ATR,
		Strength:        req.Strength,
		SharesTotal:     req.Shares,
		SharesRemaining: req.Shares,
		StopPrice:       req.StopPrice,
		OriginalStop:    req.StopPrice,
		TargetPrice:     req.TargetPrice,
	}, nil
}

func (p *Position) State() State {
	switch {
	case p.SharesRemaining == 0:
		return StateClosed
	case p.SharesRemaining < p.SharesTotal:
		return StatePartial
	default:
		return StateOpen
	}
}

func (p *Position) Closed() bool { return p.ExitReason != "" }

// RiskPerShare is the original entry to stop distance, the 1R unit.
func (p *Position) RiskPerShare() float64 {
	d := p.EntryPrice - p.OriginalStop
	if d < 0 {
		return -d
	}
	return d
}

// RMultiple expresses price as profit in units of the original risk.
func (p *Position) RMultiple(price float64) float64 {
	r := p.RiskPerShare()
	if r == 0 {
		return 0
	}
	return p.Direction.Sign() * (price - p.EntryPrice) / r
}

// TargetForR returns the price r units of original risk from entry.
func (p *Position) TargetForR(r float64) float64 {
	return p.EntryPrice + p.Direction.Sign()*p.RiskPerShare()*r
}

// PnL is the profit on shares closed at price.
func (p *Position) PnL(price float64, shares int) float64 {
	return p.Direction.Sign() * (price - p.EntryPrice) * float64(shares)
}

// PnLPercent is realized P&L against the full original position value.
func (p *Position) PnLPercent() float64 {
	basis := p.EntryPrice * float64(p.SharesTotal)
	if basis == 0 {
		return 0
	}
	return p.RealizedPnL / basis * 100
}

// HoldingDays counts calendar days from entry to asOf.
func (p *Position) HoldingDays(asOf time.Time) int {
	return market.DaysBetween(p.EntryDate, asOf)
}

// MarketValue is what the remaining shares return if closed at price:
// cost basis plus unrealized P&L.
func (p *Position) MarketValue(price float64) float64 {
	return p.EntryPrice*float64(p.SharesRemaining) + p.PnL(price, p.SharesRemaining)
}

// Snapshot returns a deep copy.
func (p *Position) Snapshot() Position {
	cp := *p
	cp.Fills = append([]Fill(nil), p.Fills...)
	return cp
}

// more reports whether a is a tighter stop than b for the direction.
func (p *Position) more(a, b float64) bool {
	if p.Direction == market.Short {
		return a < b
	}
	return a > b
}

// ApplyStop moves the live stop to price. A stop may only tighten.
func (p *Position) ApplyStop(price float64) error {
	if p.Closed() {
		e := invariant(p, "apply_stop", "position closed")
		e.Err = ErrPositionClosed
		return e
	}
	if p.more(p.StopPrice, price) {
		return invariant(p, "apply_stop", "stop %.4f would loosen from %.4f", price, p.StopPrice)
	}
	p.StopPrice = price
	return p.Verify()
}

// Trail adopts candidate as the trailing stop when it is tighter than the
// current stop.
func (p *Position) Trail(candidate float64) (bool, error) {
	if !p.more(candidate, p.StopPrice) {
		return false, nil
	}
	if err := p.ApplyStop(candidate); err != nil {
		return false, err
	}
	p.TrailingStopPrice = candidate
	return true, nil
}

// ActivateBreakeven moves the stop to entry, or leaves it when the stop
// is already past entry.
func (p *Position) ActivateBreakeven() error {
	if p.BreakevenActivated {
		return nil
	}
	if p.more(p.EntryPrice, p.StopPrice) {
		if err := p.ApplyStop(p.EntryPrice); err != nil {
			return err
		}
	} else if p.Closed() {
		e := invariant(p, "activate_breakeven", "position closed")
		e.Err = ErrPositionClosed
		return e
	}
	p.BreakevenActivated = true
	return nil
}

// ScaleOut sells floor(remaining*fraction) shares, at least one, at price.
// When that would sell every remaining share the leg is marked done with
// no fill and filled is false.
func (p *Position) ScaleOut(date time.Time, kind FillKind, price, fraction float64) (f Fill, filled bool, err error) {
	if p.Closed() {
		e := invariant(p, "scale_out", "position closed")
		e.Err = ErrPositionClosed
		return Fill{}, false, e
	}
	switch kind {
	case FillScale1:
		if p.Scale1Done {
			return Fill{}, false, invariant(p, "scale_out", "scale 1 already done")
		}
		p.Scale1Done = true
	case FillScale2:
		if !p.Scale1Done || p.Scale2Done {
			return Fill{}, false, invariant(p, "scale_out", "scale 2 out of order")
		}
		p.Scale2Done = true
	default:
		return Fill{}, false, invariant(p, "scale_out", "unknown leg %q", kind)
	}

	shares := int(float64(p.SharesRemaining) * fraction)
	if shares < 1 {
		shares = 1
	}
	if shares >= p.SharesRemaining {
		return Fill{}, false, nil
	}

	f = Fill{
		Date:   market.Day(date),
		Kind:   kind,
		Shares: shares,
		Price:  price,
		PnL:    p.PnL(price, shares),
	}
	p.SharesRemaining -= shares
	p.RealizedPnL += f.PnL
	p.Fills = append(p.Fills, f)
	return f, true, p.Verify()
}

// ForceClose sells every remaining share at price and sets the exit
// reason. It is the only transition into the closed state.
func (p *Position) ForceClose(date time.Time, price float64, reason ExitReason) (Fill, error) {
	if p.Closed() {
		e := invariant(p, "force_close", "already closed with %q", p.ExitReason)
		e.Err = ErrPositionClosed
		return Fill{}, e
	}
	if reason == "" {
		return Fill{}, invariant(p, "force_close", "empty exit reason")
	}

	f := Fill{
		Date:   market.Day(date),
		Kind:   FillExit,
		Shares: p.SharesRemaining,
		Price:  price,
		PnL:    p.PnL(price, p.SharesRemaining),
	}
	p.RealizedPnL += f.PnL
	p.SharesRemaining = 0
	p.Fills = append(p.Fills, f)
	p.ExitDate = f.Date
	p.ExitPrice = price
	p.ExitReason = reason
	return f, p.Verify()
}

// Verify checks the share accounting and the closed-state invariants.
func (p *Position) Verify() error {
	if p.SharesRemaining < 0 || p.SharesRemaining > p.SharesTotal {
		return invariant(p, "verify", "shares remaining %d outside [0,%d]", p.SharesRemaining, p.SharesTotal)
	}
	sold := 0
	for _, f := range p.Fills {
		if f.Shares <= 0 {
			return invariant(p, "verify", "fill with %d shares", f.Shares)
		}
		sold += f.Shares
	}
	if sold+p.SharesRemaining != p.SharesTotal {
		return invariant(p, "verify", "sold %d + remaining %d != total %d", sold, p.SharesRemaining, p.SharesTotal)
	}
	if (p.SharesRemaining == 0) != p.Closed() {
		return invariant(p, "verify", "remaining %d with exit reason %q", p.SharesRemaining, p.ExitReason)
	}
	if p.BreakevenActivated && p.more(p.EntryPrice, p.StopPrice) {
		return invariant(p, "verify", "breakeven active but stop %.4f behind entry", p.StopPrice)
	}
	return nil
}
