package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rustyeddy/swingsim/config"
	"github.com/rustyeddy/swingsim/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "swingsim",
	Short: "Daily-bar swing trading backtester and parameter optimizer",
	Long: `swingsim replays daily OHLCV bars through a relative-strength swing
strategy with ATR-based sizing, staged exits and portfolio risk gates.

Settings come from a YAML or JSON config file (see "swingsim config init"),
then from a .env file and the process environment.

Examples:
  swingsim backtest --config swing.yaml
  swingsim optimize --config swing.yaml --walk-forward
  swingsim journal runs --db swingsim.sqlite`,
	SilenceUsage: true,
}

var (
	rootConfigPath string
	rootLogLevel   string
	rootEnvFiles   []string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootConfigPath, "config", "c", "", "path to YAML or JSON config (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringSliceVar(&rootEnvFiles, "env", nil, ".env files to load (default .env)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file, or the defaults when none is given,
// and applies the environment on top.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if rootConfigPath != "" {
		c, err := config.LoadFromFile(rootConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if err := cfg.ApplyEnv(rootEnvFiles...); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if rootLogLevel != "" {
		cfg.Log.Level = rootLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log, nil
}

// interruptContext is cancelled on Ctrl-C.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
