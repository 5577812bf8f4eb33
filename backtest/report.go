package backtest

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rustyeddy/swingsim/sim"
)

func PrintResult(w io.Writer, r *Result) {
	m := r.Metrics
	p := r.Settings.Params

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.DateOnly))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.DateOnly))
	fmt.Fprintf(w, "Days:          %d\n", len(r.Equity))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Parameters")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "RRS Threshold: %.2f\n", p.RRSThreshold)
	fmt.Fprintf(w, "Stop ATR:      %.2fx\n", p.StopATRMultiplier)
	fmt.Fprintf(w, "Target ATR:    %.2fx\n", p.TargetATRMultiplier)
	fmt.Fprintf(w, "Max Positions: %d\n", p.MaxPositions)
	fmt.Fprintf(w, "Risk/Trade:    %.2f%%\n", p.MaxRiskPerTrade*100)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", m.TotalTrades)
	fmt.Fprintf(w, "Wins:          %d\n", m.WinningTrades)
	fmt.Fprintf(w, "Losses:        %d\n", m.LosingTrades)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", m.WinRate*100)
	fmt.Fprintf(w, "Avg Win:       %.2f\n", m.AvgWin)
	fmt.Fprintf(w, "Avg Loss:      %.2f\n", m.AvgLoss)
	fmt.Fprintf(w, "Profit Factor: %s\n", m.ProfitFactor)
	fmt.Fprintf(w, "Avg Hold:      %.1f days\n", m.AvgHoldingDays)
	fmt.Fprintf(w, "Avg MFE/MAE:   %.2f / %.2f\n", m.AvgMFE, m.AvgMAE)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Balance: %.2f\n", m.InitialCapital)
	fmt.Fprintf(w, "End Balance:   %.2f\n", m.FinalCapital)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", m.TotalReturn)
	fmt.Fprintf(w, "Return:        %.2f%%\n", m.TotalReturnPct)
	fmt.Fprintf(w, "Max Drawdown:  %.2f (%.2f%%)\n", m.MaxDrawdown, m.MaxDrawdownPct)
	fmt.Fprintf(w, "Sharpe:        %.2f\n", m.SharpeRatio)

	if len(m.ExitReasons) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Exit Reasons")
		fmt.Fprintln(w, "--------------------------------------------------")
		reasons := make([]sim.ExitReason, 0, len(m.ExitReasons))
		for k := range m.ExitReasons {
			reasons = append(reasons, k)
		}
		sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
		for _, k := range reasons {
			fmt.Fprintf(w, "%-15s%d\n", string(k)+":", m.ExitReasons[k])
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Position Management")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Breakevens:    %d\n", m.BreakevenActivations)
	fmt.Fprintf(w, "Scale 1 Exits: %d\n", m.Scale1Exits)
	fmt.Fprintf(w, "Scale 2 Exits: %d\n", m.Scale2Exits)
	fmt.Fprintf(w, "Rejected:      %d\n", m.RejectedSignals)

	fmt.Fprintln(w)
}

// PrintTrades writes one line per completed trade.
func PrintTrades(w io.Writer, trades []sim.CompletedTrade) {
	fmt.Fprintf(w, "%-8s %-5s %-10s %-10s %8s %8s %6s %10s %8s  %s\n",
		"SYMBOL", "DIR", "ENTRY", "EXIT", "IN", "OUT", "QTY", "PNL", "PNL%", "REASON")
	for _, t := range trades {
		fmt.Fprintf(w, "%-8s %-5s %-10s %-10s %8.2f %8.2f %6d %10.2f %7.2f%%  %s\n",
			t.Symbol, t.Direction,
			t.EntryDate.Format(time.DateOnly), t.ExitDate.Format(time.DateOnly),
			t.EntryPrice, t.ExitPrice, t.Shares, t.PnL, t.PnLPercent, t.ExitReason)
	}
}
