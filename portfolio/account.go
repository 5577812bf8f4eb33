// Package portfolio tracks the cash and equity curve of one simulation run.
package portfolio

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/swingsim/market"
)

var (
	ErrInsufficientCash = errors.New("portfolio: insufficient cash")
	ErrOutOfOrder       = errors.New("portfolio: equity sample out of order")
)

// EquityPoint is one end-of-day sample.
type EquityPoint struct {
	Date          time.Time `json:"date" yaml:"date"`
	Equity        float64   `json:"equity" yaml:"equity"`
	Cash          float64   `json:"cash" yaml:"cash"`
	OpenPositions int       `json:"open_positions" yaml:"open_positions"`
}

// Account is the per-run account state. It is not safe for concurrent
// use; every run owns its own.
type Account struct {
	initial float64
	cash    float64
	peak    float64
	curve   []EquityPoint

	day      time.Time
	dailyPnL float64
}

func NewAccount(initial float64) *Account {
	return &Account{initial: initial, cash: initial, peak: initial}
}

func (a *Account) Initial() float64 { return a.initial }
func (a *Account) Cash() float64    { return a.cash }

// Peak is the high-water mark of recorded equity, starting at the
// initial capital.
func (a *Account) Peak() float64 { return a.peak }

// Equity is the last recorded equity, or the initial capital.
func (a *Account) Equity() float64 {
	if len(a.curve) == 0 {
		return a.initial
	}
	return a.curve[len(a.curve)-1].Equity
}

// StartDay resets the day's realized P&L when d is a new day.
func (a *Account) StartDay(d time.Time) {
	d = market.Day(d)
	if !d.Equal(a.day) {
		a.day = d
		a.dailyPnL = 0
	}
}

// DailyPnL is the P&L realized since StartDay.
func (a *Account) DailyPnL() float64 { return a.dailyPnL }

// Debit pays for an entry.
func (a *Account) Debit(amount float64) error {
	if amount > a.cash {
		return fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCash, amount, a.cash)
	}
	a.cash -= amount
	return nil
}

// Credit returns proceeds from a sale. pnl is the realized part.
func (a *Account) Credit(proceeds, pnl float64) {
	a.cash += proceeds
	a.dailyPnL += pnl
}

// Record appends the end-of-day sample. Dates must strictly increase.
func (a *Account) Record(d time.Time, equity float64, open int) (EquityPoint, error) {
	d = market.Day(d)
	if n := len(a.curve); n > 0 && !d.After(a.curve[n-1].Date) {
		return EquityPoint{}, fmt.Errorf("%w: %s after %s", ErrOutOfOrder,
			d.Format(time.DateOnly), a.curve[n-1].Date.Format(time.DateOnly))
	}
	pt := EquityPoint{Date: d, Equity: equity, Cash: a.cash, OpenPositions: open}
	a.curve = append(a.curve, pt)
	if equity > a.peak {
		a.peak = equity
	}
	return pt, nil
}

// Curve returns a copy of the equity curve.
func (a *Account) Curve() []EquityPoint {
	return append([]EquityPoint(nil), a.curve...)
}

// Drawdown is the current distance below peak in currency and percent.
func (a *Account) Drawdown() (amount, pct float64) {
	amount = a.peak - a.Equity()
	if amount < 0 {
		amount = 0
	}
	if a.peak > 0 {
		pct = amount / a.peak * 100
	}
	return amount, pct
}
