package cmd

import (
	"fmt"

	"github.com/rustyeddy/swingsim/backtest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a daily-bar swing backtest",
	Long: `Backtest replays the daily bars in the data directory, opening positions
from the strategy's signals (or a signals CSV) and managing them with the
configured exit rules and risk limits.

Examples:
  swingsim backtest --config swing.yaml
  swingsim backtest --data ./data --start 2023-01-01 --end 2023-12-31 --trades
  swingsim backtest --signals picks.csv --json result.json --db runs.sqlite`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

var (
	btDataDir  string
	btSignals  string
	btStrategy string
	btStart    string
	btEnd      string
	btOutput   string
	btDBPath   string
	btTrades   bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btDataDir, "data", "d", "", "directory of daily bar CSVs (overrides config)")
	backtestCmd.Flags().StringVar(&btSignals, "signals", "", "signals CSV (date,symbol,direction,price,atr[,strength])")
	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "rrs", "strategy name when no signals CSV is given")
	backtestCmd.Flags().StringVar(&btStart, "start", "", "first day YYYY-MM-DD (overrides config)")
	backtestCmd.Flags().StringVar(&btEnd, "end", "", "last day YYYY-MM-DD (overrides config)")
	backtestCmd.Flags().StringVarP(&btOutput, "json", "o", "", "write the full result to this file (.yaml for YAML)")
	backtestCmd.Flags().StringVar(&btDBPath, "db", "", "record the run in this SQLite journal (overrides config)")
	backtestCmd.Flags().BoolVar(&btTrades, "trades", false, "print every completed trade")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if btDataDir != "" {
		cfg.Data.Dir = btDataDir
	}
	if btSignals != "" {
		cfg.Data.Signals = btSignals
	}
	if btStart != "" {
		cfg.Data.Start = btStart
	}
	if btEnd != "" {
		cfg.Data.End = btEnd
	}
	if btDBPath != "" {
		cfg.Journal.Type = "sqlite"
		cfg.Journal.DBPath = btDBPath
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	data, err := loadDataset(cfg)
	if err != nil {
		return err
	}
	src, err := signalSource(cfg, btStrategy)
	if err != nil {
		return err
	}
	settings, err := backtest.SettingsFromConfig(cfg)
	if err != nil {
		return err
	}
	engine, err := backtest.NewEngine(data, src, settings, backtest.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	res, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	out := cmd.OutOrStdout()
	backtest.PrintResult(out, res)
	if btTrades {
		fmt.Fprintln(out)
		backtest.PrintTrades(out, res.Trades)
	}

	if btOutput != "" {
		if err := res.SaveToFile(btOutput); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nResult written to %s\n", btOutput)
	}

	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()
	if err := backtest.Record(j, res, cfg.Data.Dir); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	log.Debug("run journaled", zap.String("run_id", res.RunID), zap.String("journal", cfg.Journal.Type))
	return nil
}
