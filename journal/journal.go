// Package journal persists backtest runs, their trades and their equity
// curves.
package journal

import (
	"time"
)

// RunRecord is one row per backtest run.
type RunRecord struct {
	RunID   string
	Created time.Time
	Start   time.Time
	End     time.Time
	Dataset string
	Params  string // parameter set as "key=value" pairs

	StartBalance float64
	EndBalance   float64
	NetPL        float64
	ReturnPct    float64

	Trades       int
	Wins         int
	Losses       int
	WinRate      float64
	ProfitFactor float64 // +Inf when there were no losses
	MaxDDPct     float64
	Sharpe       float64

	Notes []string
}

type TradeRecord struct {
	RunID       string
	TradeID     string
	Symbol      string
	Direction   string
	Shares      int
	EntryPrice  float64
	ExitPrice   float64
	StopPrice   float64
	TargetPrice float64
	EntryDate   time.Time
	ExitDate    time.Time
	RealizedPL  float64
	PnLPercent  float64
	HoldingDays int
	MFE         float64
	MAE         float64
	Reason      string
}

type EquitySnapshot struct {
	RunID         string
	Date          time.Time
	Cash          float64
	Equity        float64
	OpenPositions int
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRun(RunRecord) error         { return nil }
func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
