package optimize

import (
	"encoding/json"
	"fmt"
	"io"
)

// PrintTrials writes the top n trials as a table. n <= 0 prints all.
func PrintTrials(w io.Writer, trials []Trial, n int) {
	if n <= 0 || n > len(trials) {
		n = len(trials)
	}
	fmt.Fprintln(w, "==================================================================================")
	fmt.Fprintln(w, " Parameter Optimization")
	fmt.Fprintln(w, "==================================================================================")
	fmt.Fprintf(w, "Trials: %d\n\n", len(trials))
	fmt.Fprintf(w, "%4s %6s %5s %6s %4s %7s %8s %7s %6s %7s %6s\n",
		"RANK", "RRS", "STOP", "TARGET", "POS", "SCORE", "RETURN%", "WIN%", "PF", "MAXDD%", "TRADES")
	for _, t := range trials[:n] {
		p := t.Params
		if t.Failed() {
			fmt.Fprintf(w, "%4d %6.2f %5.2f %6.2f %4d  failed: %v\n",
				t.Rank, p.RRSThreshold, p.StopATRMultiplier, p.TargetATRMultiplier, p.MaxPositions, t.Err)
			continue
		}
		m := t.Metrics
		fmt.Fprintf(w, "%4d %6.2f %5.2f %6.2f %4d %7.2f %8.2f %7.2f %6s %7.2f %6d\n",
			t.Rank, p.RRSThreshold, p.StopATRMultiplier, p.TargetATRMultiplier, p.MaxPositions,
			t.Score, m.TotalReturnPct, m.WinRate*100, m.ProfitFactor, m.MaxDrawdownPct, m.TotalTrades)
	}
}

func PrintWalkForward(w io.Writer, r *WalkForwardResult) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Walk-Forward Analysis")
	fmt.Fprintln(w, "==================================================")
	for _, p := range r.Periods {
		fmt.Fprintf(w, "Period %d\n", p.Period)
		fmt.Fprintf(w, "  In-sample:     %s .. %s  score %.2f  return %.2f%%\n",
			p.InStart.Format("2006-01-02"), p.InEnd.Format("2006-01-02"),
			p.InSample.Score, p.InSample.Metrics.TotalReturnPct)
		fmt.Fprintf(w, "  Out-of-sample: %s .. %s  score %.2f  return %.2f%%\n",
			p.OutStart.Format("2006-01-02"), p.OutEnd.Format("2006-01-02"),
			p.OutOfSample.Score, p.OutOfSample.Metrics.TotalReturnPct)
		fmt.Fprintf(w, "  Params:        %s\n", p.Best)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Efficiency:    %.2f\n", r.Efficiency)
	fmt.Fprintf(w, "Assessment:    %s\n", r.Interpretation)
}

type trialView struct {
	Trial
	Error string `json:"error,omitempty"`
}

// WriteJSON writes trials as an indented JSON array.
func WriteJSON(w io.Writer, trials []Trial) error {
	out := make([]trialView, len(trials))
	for i, t := range trials {
		out[i] = trialView{Trial: t}
		if t.Err != nil {
			out[i].Error = t.Err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
