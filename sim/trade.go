package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/swingsim/market"
)

// CompletedTrade is the immutable record of a closed position.
type CompletedTrade struct {
	ID          string           `json:"id" yaml:"id"`
	Symbol      string           `json:"symbol" yaml:"symbol"`
	Direction   market.Direction `json:"direction" yaml:"direction"`
	EntryDate   time.Time        `json:"entry_date" yaml:"entry_date"`
	ExitDate    time.Time        `json:"exit_date" yaml:"exit_date"`
	EntryPrice  float64          `json:"entry_price" yaml:"entry_price"`
	ExitPrice   float64          `json:"exit_price" yaml:"exit_price"`
	Shares      int              `json:"shares" yaml:"shares"`
	StopPrice   float64          `json:"stop_price" yaml:"stop_price"`
	TargetPrice float64          `json:"target_price" yaml:"target_price"`
	ATR         float64          `json:"atr" yaml:"atr"`
	Strength    float64          `json:"strength" yaml:"strength"`
	ExitReason  ExitReason       `json:"exit_reason" yaml:"exit_reason"`
	PnL         float64          `json:"pnl" yaml:"pnl"`
	PnLPercent  float64          `json:"pnl_percent" yaml:"pnl_percent"`
	HoldingDays int              `json:"holding_days" yaml:"holding_days"`
	MFE         float64          `json:"mfe" yaml:"mfe"`
	MAE         float64          `json:"mae" yaml:"mae"`

	Breakeven bool   `json:"breakeven_activated" yaml:"breakeven_activated"`
	Scale1    bool   `json:"scale1_done" yaml:"scale1_done"`
	Scale2    bool   `json:"scale2_done" yaml:"scale2_done"`
	Fills     []Fill `json:"fills" yaml:"fills"`
}

func (t CompletedTrade) IsWinner() bool { return t.PnL > 0 }

// Complete snapshots a closed position.
func Complete(p *Position) (CompletedTrade, error) {
	if !p.Closed() {
		return CompletedTrade{}, fmt.Errorf("complete %s: %w", p.Symbol, ErrPositionOpen)
	}
	return CompletedTrade{
		ID:          p.ID,
		Symbol:      p.Symbol,
		Direction:   p.Direction,
		EntryDate:   p.EntryDate,
		ExitDate:    p.ExitDate,
		EntryPrice:  p.EntryPrice,
		ExitPrice:   p.ExitPrice,
		Shares:      p.SharesTotal,
		StopPrice:   p.OriginalStop,
		TargetPrice: p.TargetPrice,
		ATR:         p.ATR,
		Strength:    p.Strength,
		ExitReason:  p.ExitReason,
		PnL:         p.RealizedPnL,
		PnLPercent:  p.PnLPercent(),
		HoldingDays: p.HoldingDays(p.ExitDate),
		MFE:         p.MFE,
		MAE:         p.MAE,
		Breakeven:   p.BreakevenActivated,
		Scale1:      p.Scale1Done,
		Scale2:      p.Scale2Done,
		Fills:       append([]Fill(nil), p.Fills...),
	}, nil
}
