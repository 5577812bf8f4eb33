package backtest

import (
	"fmt"
	"time"

	"github.com/rustyeddy/swingsim/journal"
	"github.com/rustyeddy/swingsim/pkg/id"
)

// RunRecord summarizes a result for the journal.
func (r *Result) RunRecord(dataset string, created time.Time) journal.RunRecord {
	m := r.Metrics
	return journal.RunRecord{
		RunID:        r.RunID,
		Created:      created,
		Start:        r.Start,
		End:          r.End,
		Dataset:      dataset,
		Params:       r.Settings.Params.String(),
		StartBalance: m.InitialCapital,
		EndBalance:   m.FinalCapital,
		NetPL:        m.TotalReturn,
		ReturnPct:    m.TotalReturnPct,
		Trades:       m.TotalTrades,
		Wins:         m.WinningTrades,
		Losses:       m.LosingTrades,
		WinRate:      m.WinRate,
		ProfitFactor: float64(m.ProfitFactor),
		MaxDDPct:     m.MaxDrawdownPct,
		Sharpe:       m.SharpeRatio,
	}
}

// Record writes the run, every trade and every equity sample. The run's
// created time comes from its ID when the ID is a ULID.
func Record(j journal.Journal, r *Result, dataset string) error {
	created, err := id.Time(r.RunID)
	if err != nil {
		created = time.Now().UTC()
	}
	if err := j.RecordRun(r.RunRecord(dataset, created)); err != nil {
		return err
	}
	for _, t := range r.Trades {
		err := j.RecordTrade(journal.TradeRecord{
			RunID:       r.RunID,
			TradeID:     t.ID,
			Symbol:      t.Symbol,
			Direction:   string(t.Direction),
			Shares:      t.Shares,
			EntryPrice:  t.EntryPrice,
			ExitPrice:   t.ExitPrice,
			StopPrice:   t.StopPrice,
			TargetPrice: t.TargetPrice,
			EntryDate:   t.EntryDate,
			ExitDate:    t.ExitDate,
			RealizedPL:  t.PnL,
			PnLPercent:  t.PnLPercent,
			HoldingDays: t.HoldingDays,
			MFE:         t.MFE,
			MAE:         t.MAE,
			Reason:      string(t.ExitReason),
		})
		if err != nil {
			return fmt.Errorf("record %s: %w", t.ID, err)
		}
	}
	for _, e := range r.Equity {
		err := j.RecordEquity(journal.EquitySnapshot{
			RunID:         r.RunID,
			Date:          e.Date,
			Cash:          e.Cash,
			Equity:        e.Equity,
			OpenPositions: e.OpenPositions,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
