package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rustyeddy/swingsim/risk"
	"github.com/rustyeddy/swingsim/sim"
	"gopkg.in/yaml.v3"
)

// Config is the complete run configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Params   ParameterSet   `json:"params" yaml:"params"`
	Exits    sim.ExitRules  `json:"exits" yaml:"exits"`
	Risk     risk.Limits    `json:"risk" yaml:"risk"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Optimize OptimizeConfig `json:"optimize" yaml:"optimize"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency" validate:"required"`
	Balance  float64 `json:"balance" yaml:"balance" validate:"gt=0"`
}

// DataConfig locates the daily bar CSVs. Start and End are YYYY-MM-DD and
// may be empty. An empty Signals path uses the RRS scanner.
type DataConfig struct {
	Dir       string   `json:"dir" yaml:"dir" validate:"required"`
	Benchmark string   `json:"benchmark" yaml:"benchmark"`
	Symbols   []string `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Start     string   `json:"start,omitempty" yaml:"start,omitempty"`
	End       string   `json:"end,omitempty" yaml:"end,omitempty"`
	Signals   string   `json:"signals,omitempty" yaml:"signals,omitempty"`
	ATRPeriod int      `json:"atr_period" yaml:"atr_period" validate:"gte=1"`
}

type JournalConfig struct {
	Type       string `json:"type" yaml:"type" validate:"oneof=none csv sqlite"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// OptimizeConfig is the parameter grid and sweep settings.
type OptimizeConfig struct {
	Workers             int       `json:"workers" yaml:"workers" validate:"gte=0"`
	MinTrades           int       `json:"min_trades" yaml:"min_trades" validate:"gte=0"`
	MaxDrawdownPct      float64   `json:"max_drawdown_pct" yaml:"max_drawdown_pct" validate:"gte=0"`
	RRSThresholds       []float64 `json:"rrs_thresholds" yaml:"rrs_thresholds" validate:"dive,gt=0"`
	StopMultipliers     []float64 `json:"stop_multipliers" yaml:"stop_multipliers" validate:"dive,gt=0"`
	TargetMultipliers   []float64 `json:"target_multipliers" yaml:"target_multipliers" validate:"dive,gt=0"`
	MaxPositions        []int     `json:"max_positions" yaml:"max_positions" validate:"dive,gte=1"`
	RelaxedEntry        []bool    `json:"use_relaxed_entry_criteria,omitempty" yaml:"use_relaxed_entry_criteria,omitempty"`
	InSampleDays        int       `json:"in_sample_days" yaml:"in_sample_days" validate:"gte=0"`
	OutOfSampleDays     int       `json:"out_of_sample_days" yaml:"out_of_sample_days" validate:"gte=0"`
	WalkForwardStepDays int       `json:"walk_forward_step_days" yaml:"walk_forward_step_days" validate:"gte=0"`
	WalkForwardPeriods  int       `json:"walk_forward_periods" yaml:"walk_forward_periods" validate:"gte=0"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the cross-field rules first, then the struct tags.
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Params.TargetATRMultiplier <= c.Params.StopATRMultiplier {
		return fmt.Errorf("params.target_atr_multiplier must be greater than params.stop_atr_multiplier")
	}
	if c.Params.MaxRiskPerTrade <= 0 || c.Params.MaxRiskPerTrade > 1 {
		return fmt.Errorf("params.max_risk_per_trade must be between 0 and 1")
	}
	if c.Exits.Scale2TargetR <= c.Exits.Scale1TargetR {
		return fmt.Errorf("exits.scale2_target_r must be greater than exits.scale1_target_r")
	}
	if c.Journal.Type == "csv" && (c.Journal.TradesFile == "" || c.Journal.EquityFile == "") {
		return fmt.Errorf("journal trades_file and equity_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	if _, _, err := c.Data.Window(); err != nil {
		return err
	}

	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return nil
}

// Window parses Start and End. Empty bounds are zero times.
func (d DataConfig) Window() (start, end time.Time, err error) {
	if d.Start != "" {
		if start, err = time.Parse(time.DateOnly, d.Start); err != nil {
			return start, end, fmt.Errorf("data.start must be YYYY-MM-DD: %w", err)
		}
	}
	if d.End != "" {
		if end, err = time.Parse(time.DateOnly, d.End); err != nil {
			return start, end, fmt.Errorf("data.end must be YYYY-MM-DD: %w", err)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fmt.Errorf("data.end %s is before data.start %s", d.End, d.Start)
	}
	return start, end, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "SIM-001",
			Currency: "USD",
			Balance:  25000,
		},
		Params: DefaultParams(),
		Exits:  sim.DefaultRules(),
		Risk:   risk.DefaultLimits(),
		Data: DataConfig{
			Dir:       "./data",
			Benchmark: "SPY",
			ATRPeriod: 14,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Optimize: OptimizeConfig{
			MinTrades:           10,
			MaxDrawdownPct:      20,
			RRSThresholds:       []float64{1.5, 2.0, 2.5},
			StopMultipliers:     []float64{0.5, 0.75, 1.0},
			TargetMultipliers:   []float64{1.5, 2.0, 3.0},
			MaxPositions:        []int{3, 5},
			InSampleDays:        180,
			OutOfSampleDays:     60,
			WalkForwardStepDays: 60,
			WalkForwardPeriods:  4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
