package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rustyeddy/swingsim/backtest"
	"github.com/rustyeddy/swingsim/optimize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Sweep the parameter grid and rank the results",
	Long: `Optimize runs a backtest for every combination in the config's optimize
grid on a pool of workers, scores each run and prints the best. With
--walk-forward it also optimizes rolling in-sample windows and checks the
winners on the following out-of-sample windows.

Examples:
  swingsim optimize --config swing.yaml --top 10
  swingsim optimize --config swing.yaml --workers 4 --walk-forward
  swingsim optimize --config swing.yaml --json trials.json`,
	Args: cobra.NoArgs,
	RunE: runOptimize,
}

var (
	optDataDir     string
	optStrategy    string
	optWorkers     int
	optTop         int
	optWalkForward bool
	optOutput      string
	optQuiet       bool
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVarP(&optDataDir, "data", "d", "", "directory of daily bar CSVs (overrides config)")
	optimizeCmd.Flags().StringVarP(&optStrategy, "strategy", "s", "rrs", "strategy name")
	optimizeCmd.Flags().IntVarP(&optWorkers, "workers", "w", 0, "parallel backtests (0 = config, then number of CPUs)")
	optimizeCmd.Flags().IntVarP(&optTop, "top", "n", 10, "number of ranked trials to print (0 = all)")
	optimizeCmd.Flags().BoolVar(&optWalkForward, "walk-forward", false, "run walk-forward analysis after the sweep")
	optimizeCmd.Flags().StringVarP(&optOutput, "json", "o", "", "write every trial as JSON to this file")
	optimizeCmd.Flags().BoolVarP(&optQuiet, "quiet", "q", false, "hide the progress bar")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if optDataDir != "" {
		cfg.Data.Dir = optDataDir
	}
	if optWorkers > 0 {
		cfg.Optimize.Workers = optWorkers
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
	factory, err := strategyFactory(cfg, optStrategy)
	if err != nil {
		return err
	}
	base, err := backtest.SettingsFromConfig(cfg)
	if err != nil {
		return err
	}

	sets := optimize.GridFromConfig(cfg.Optimize).Expand(cfg.Params)
	run := optimize.EngineRunner(data, factory, base, log)
	scorer := optimize.NewScorer()
	scorer.MinTrades = cfg.Optimize.MinTrades

	opts := optimize.Options{
		Workers: cfg.Optimize.Workers,
		Scorer:  scorer,
		Start:   base.Start,
		End:     base.End,
		Logger:  log,
	}
	if !optQuiet {
		opts.Progress = progress(os.Stderr, "Optimizing")
	}

	ctx, cancel := interruptContext()
	defer cancel()

	log.Info("optimization started", zap.Int("trials", len(sets)), zap.Int("workers", opts.Workers))
	trials, err := optimize.Sweep(ctx, run, sets, opts)
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	optimize.PrintTrials(out, trials, optTop)

	if p, ok := optimize.Recommend(trials, cfg.Optimize.MinTrades, cfg.Optimize.MaxDrawdownPct); ok {
		fmt.Fprintf(out, "\nRecommended: %s\n", p)
	} else {
		fmt.Fprintln(out, "\nNo successful trial to recommend")
	}

	if optOutput != "" {
		if err := writeTrials(optOutput, trials); err != nil {
			return err
		}
		fmt.Fprintf(out, "Trials written to %s\n", optOutput)
	}

	if !optWalkForward {
		return nil
	}

	wf := optimize.WalkForwardFromConfig(cfg.Optimize)
	days := data.TradingDays(base.Start, base.End)
	if !optQuiet {
		opts.Progress = progress(os.Stderr, "Walk-forward")
	}
	res, err := optimize.WalkForward(ctx, run, sets, days, wf, opts)
	if err != nil {
		return fmt.Errorf("walk-forward: %w", err)
	}
	fmt.Fprintln(out)
	optimize.PrintWalkForward(out, res)
	return nil
}

// progress draws a bar for each sweep. A new bar starts whenever a sweep
// reports its first trial.
func progress(w io.Writer, desc string) func(done, total int) {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil || done == 1 {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription(desc),
				progressbar.OptionShowCount(),
			)
		}
		_ = bar.Set(done)
	}
}

func writeTrials(path string, trials []optimize.Trial) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := optimize.WriteJSON(f, trials); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
