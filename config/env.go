package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ApplyEnv loads the given .env files (".env" when none are given) and
// then overrides c from the process environment. A missing file is
// skipped; a malformed one is an error.
func (c *Config) ApplyEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"ACCOUNT_SIZE", &c.Account.Balance},
		{"MAX_RISK_PER_TRADE", &c.Params.MaxRiskPerTrade},
		{"MAX_DAILY_LOSS", &c.Risk.MaxDailyLoss},
		{"MAX_POSITION_SIZE", &c.Risk.MaxPositionSize},
	}
	for _, f := range floats {
		v, ok := os.LookupEnv(f.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dst = n
	}

	if v := os.Getenv("ATR_PERIOD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ATR_PERIOD: %w", err)
		}
		c.Data.ATRPeriod = n
	}
	if v := os.Getenv("SWINGSIM_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("SWINGSIM_DB_PATH"); v != "" {
		c.Journal.Type = "sqlite"
		c.Journal.DBPath = v
	}
	if v := os.Getenv("SWINGSIM_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}
