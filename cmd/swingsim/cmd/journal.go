package cmd

import (
	"fmt"
	"os"

	"github.com/rustyeddy/swingsim/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded backtest runs",
	Long: `Query and display backtest runs recorded in a SQLite journal.

Subcommands:
  runs    - List recent runs
  trades  - List the trades of a run
  equity  - Print the equity curve of a run
  org     - Export a run and its trades as an org-mode block

Examples:
  swingsim journal runs --limit 5
  swingsim journal trades <run-id>
  swingsim journal org <run-id> --output run.org`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List the trades of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity <run-id>",
	Short: "Print the daily equity of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalEquity,
}

var journalOrgCmd = &cobra.Command{
	Use:   "org <run-id>",
	Short: "Export a run as org-mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalOrg,
}

var (
	journalDBPath string
	journalLimit  uint64
	journalOutput string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalEquityCmd)
	journalCmd.AddCommand(journalOrgCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./swingsim.sqlite", "path to SQLite journal DB")
	journalRunsCmd.Flags().Uint64VarP(&journalLimit, "limit", "n", 20, "maximum runs to list (0 = all)")
	journalOrgCmd.Flags().StringVarP(&journalOutput, "output", "o", "", "write to this file instead of stdout")
}

func openSQLite() (*journal.SQLiteJournal, error) {
	if _, err := os.Stat(journalDBPath); err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns(journalLimit)
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-26s %-16s %-10s %-10s %8s %6s %6s %7s\n",
		"RUN", "CREATED", "START", "END", "RETURN%", "TRADES", "WIN%", "MAXDD%")
	for _, r := range runs {
		fmt.Fprintf(out, "%-26s %-16s %-10s %-10s %8.2f %6d %6.1f %7.2f\n",
			r.RunID, r.Created.Format("2006-01-02 15:04"),
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"),
			r.ReturnPct, r.Trades, r.WinRate*100, r.MaxDDPct)
	}
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.ListTradesByRunID(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-16s %-6s %-5s %6s %-10s %9s %-10s %9s %10s %-15s\n",
		"TRADE", "SYMBOL", "DIR", "SHARES", "ENTRY", "PRICE", "EXIT", "PRICE", "P&L", "REASON")
	for _, t := range trades {
		fmt.Fprintf(out, "%-16s %-6s %-5s %6d %-10s %9.2f %-10s %9.2f %10.2f %-15s\n",
			t.TradeID, t.Symbol, t.Direction, t.Shares,
			t.EntryDate.Format("2006-01-02"), t.EntryPrice,
			t.ExitDate.Format("2006-01-02"), t.ExitPrice,
			t.RealizedPL, t.Reason)
	}
	return nil
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	points, err := j.ListEquityByRunID(args[0])
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %12s %12s %5s\n", "DATE", "CASH", "EQUITY", "OPEN")
	for _, e := range points {
		fmt.Fprintf(out, "%-10s %12.2f %12.2f %5d\n", e.Date.Format("2006-01-02"), e.Cash, e.Equity, e.OpenPositions)
	}
	return nil
}

func runJournalOrg(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	if journalOutput != "" {
		r, err := j.GetRun(args[0])
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		trades, err := j.ListTradesByRunID(args[0])
		if err != nil {
			return fmt.Errorf("query trades: %w", err)
		}
		return journal.WriteRunOrg(journalOutput, r, trades)
	}

	s, err := j.ExportRunOrg(args[0])
	if err != nil {
		return fmt.Errorf("export run: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), s)
	return nil
}
