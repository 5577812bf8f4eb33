package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CSVJournal writes trades and equity to two CSV files. Runs go to an
// optional third file.
type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	runs   *csv.Writer
	files  []*os.File
}

var (
	csvTradeHeader  = []string{"run_id", "trade_id", "symbol", "direction", "shares", "entry_price", "exit_price", "stop_price", "target_price", "entry_date", "exit_date", "realized_pl", "pnl_pct", "holding_days", "mfe", "mae", "reason"}
	csvEquityHeader = []string{"run_id", "date", "cash", "equity", "open_positions"}
	csvRunHeader    = []string{"run_id", "created", "start", "end", "dataset", "params", "start_balance", "end_balance", "net_pl", "return_pct", "trades", "wins", "losses", "win_rate", "profit_factor", "max_dd_pct", "sharpe"}
)

// NewCSV creates the trade and equity files. runsPath may be empty.
func NewCSV(tradesPath, equityPath, runsPath string) (*CSVJournal, error) {
	j := &CSVJournal{}

	open := func(path string, header []string) (*csv.Writer, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, f)
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return nil, err
		}
		w.Flush()
		return w, w.Error()
	}

	var err error
	if j.trades, err = open(tradesPath, csvTradeHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if j.equity, err = open(equityPath, csvEquityHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if runsPath != "" {
		if j.runs, err = open(runsPath, csvRunHeader); err != nil {
			j.closeFiles()
			return nil, err
		}
	}
	return j, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	if j.runs == nil {
		return nil
	}
	return j.write(j.runs, []string{
		r.RunID,
		r.Created.Format(time.RFC3339),
		r.Start.Format(time.DateOnly),
		r.End.Format(time.DateOnly),
		r.Dataset,
		r.Params,
		f(r.StartBalance),
		f(r.EndBalance),
		f(r.NetPL),
		f(r.ReturnPct),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
		f(r.WinRate),
		f(r.ProfitFactor),
		f(r.MaxDDPct),
		f(r.Sharpe),
	})
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	return j.write(j.trades, []string{
		t.RunID,
		t.TradeID,
		t.Symbol,
		t.Direction,
		strconv.Itoa(t.Shares),
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.StopPrice),
		f(t.TargetPrice),
		t.EntryDate.Format(time.DateOnly),
		t.ExitDate.Format(time.DateOnly),
		f(t.RealizedPL),
		f(t.PnLPercent),
		strconv.Itoa(t.HoldingDays),
		f(t.MFE),
		f(t.MAE),
		t.Reason,
	})
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	return j.write(j.equity, []string{
		e.RunID,
		e.Date.Format(time.DateOnly),
		f(e.Cash),
		f(e.Equity),
		strconv.Itoa(e.OpenPositions),
	})
}

func (j *CSVJournal) write(w *csv.Writer, rec []string) error {
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) Close() error {
	for _, w := range []*csv.Writer{j.trades, j.equity, j.runs} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil {
			j.closeFiles()
			return err
		}
	}
	return j.closeFiles()
}

func (j *CSVJournal) closeFiles() error {
	var first error
	for _, fh := range j.files {
		if err := fh.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s: %w", fh.Name(), err)
		}
	}
	j.files = nil
	return first
}

// f formats +Inf as "+Inf".
func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
