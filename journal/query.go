package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Masterminds/squirrel"
)

var ErrNotFound = errors.New("journal: not found")

var (
	runColumns = []string{
		"run_id", "created", "start_date", "end_date", "dataset", "params",
		"start_balance", "end_balance", "net_pl", "return_pct",
		"trades", "wins", "losses", "win_rate", "profit_factor", "max_dd_pct", "sharpe",
		"notes",
	}
	tradeColumns = []string{
		"run_id", "trade_id", "symbol", "direction", "shares",
		"entry_price", "exit_price", "stop_price", "target_price",
		"entry_date", "exit_date", "realized_pl", "pnl_pct",
		"holding_days", "mfe", "mae", "reason",
	}
	equityColumns = []string{"run_id", "date", "cash", "equity", "open_positions"}
)

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var (
		r     RunRecord
		pf    sql.NullFloat64
		notes string
	)
	err := s.Scan(
		&r.RunID, &r.Created, &r.Start, &r.End, &r.Dataset, &r.Params,
		&r.StartBalance, &r.EndBalance, &r.NetPL, &r.ReturnPct,
		&r.Trades, &r.Wins, &r.Losses, &r.WinRate, &pf, &r.MaxDDPct, &r.Sharpe,
		&notes,
	)
	if err != nil {
		return RunRecord{}, err
	}
	r.ProfitFactor = math.Inf(1)
	if pf.Valid {
		r.ProfitFactor = pf.Float64
	}
	if notes != "" {
		r.Notes = strings.Split(notes, "\n")
	}
	return r, nil
}

// GetRun returns a single run by ID.
func (j *SQLiteJournal) GetRun(runID string) (RunRecord, error) {
	q, args, err := j.sq.Select(runColumns...).From("runs").Where(squirrel.Eq{"run_id": runID}).ToSql()
	if err != nil {
		return RunRecord{}, err
	}

	r, err := scanRun(j.db.QueryRow(q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	return r, err
}

// ListRuns returns runs newest first. A limit of zero returns all.
func (j *SQLiteJournal) ListRuns(limit uint64) ([]RunRecord, error) {
	b := j.sq.Select(runColumns...).From("runs").OrderBy("created DESC", "run_id DESC")
	if limit > 0 {
		b = b.Limit(limit)
	}
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListTradesByRunID returns the run's trades ordered by exit date.
func (j *SQLiteJournal) ListTradesByRunID(runID string) ([]TradeRecord, error) {
	q, args, err := j.sq.
		Select(tradeColumns...).
		From("trades").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("exit_date ASC", "trade_id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(
			&t.RunID, &t.TradeID, &t.Symbol, &t.Direction, &t.Shares,
			&t.EntryPrice, &t.ExitPrice, &t.StopPrice, &t.TargetPrice,
			&t.EntryDate, &t.ExitDate, &t.RealizedPL, &t.PnLPercent,
			&t.HoldingDays, &t.MFE, &t.MAE, &t.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) ListEquityByRunID(runID string) ([]EquitySnapshot, error) {
	q, args, err := j.sq.
		Select(equityColumns...).
		From("equity").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Date, &e.Cash, &e.Equity, &e.OpenPositions); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ExportRunOrg loads a run with its trades and renders the org block.
func (j *SQLiteJournal) ExportRunOrg(runID string) (string, error) {
	r, err := j.GetRun(runID)
	if err != nil {
		return "", err
	}
	trades, err := j.ListTradesByRunID(runID)
	if err != nil {
		return "", err
	}
	return FormatRunOrg(r, trades)
}
