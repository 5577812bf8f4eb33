package journal

import (
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
	sq squirrel.StatementBuilderType
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteJournal{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// RecordRun inserts or replaces the run row.
func (j *SQLiteJournal) RecordRun(r RunRecord) error {
	var pf sql.NullFloat64
	if !math.IsInf(r.ProfitFactor, 1) {
		pf = sql.NullFloat64{Float64: r.ProfitFactor, Valid: true}
	}

	_, err := j.sq.
		Replace("runs").
		Columns(runColumns...).
		Values(
			r.RunID, r.Created, r.Start, r.End, r.Dataset, r.Params,
			r.StartBalance, r.EndBalance, r.NetPL, r.ReturnPct,
			r.Trades, r.Wins, r.Losses, r.WinRate, pf, r.MaxDDPct, r.Sharpe,
			strings.Join(r.Notes, "\n"),
		).
		RunWith(j.db).
		Exec()
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.RunID, err)
	}
	return nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.sq.
		Insert("trades").
		Columns(tradeColumns...).
		Values(
			t.RunID, t.TradeID, t.Symbol, t.Direction, t.Shares,
			t.EntryPrice, t.ExitPrice, t.StopPrice, t.TargetPrice,
			t.EntryDate, t.ExitDate, t.RealizedPL, t.PnLPercent,
			t.HoldingDays, t.MFE, t.MAE, t.Reason,
		).
		RunWith(j.db).
		Exec()
	if err != nil {
		return fmt.Errorf("record trade %s: %w", t.TradeID, err)
	}
	return nil
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.sq.
		Insert("equity").
		Columns(equityColumns...).
		Values(e.RunID, e.Date, e.Cash, e.Equity, e.OpenPositions).
		RunWith(j.db).
		Exec()
	if err != nil {
		return fmt.Errorf("record equity %s: %w", e.Date.Format("2006-01-02"), err)
	}
	return nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
