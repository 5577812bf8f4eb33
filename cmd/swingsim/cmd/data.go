package cmd

import (
	"fmt"

	"github.com/rustyeddy/swingsim/backtest"
	"github.com/rustyeddy/swingsim/config"
	"github.com/rustyeddy/swingsim/journal"
	"github.com/rustyeddy/swingsim/market"
	"github.com/rustyeddy/swingsim/strategies"
)

func loadDataset(cfg *config.Config) (*market.Dataset, error) {
	ds, err := market.LoadDir(cfg.Data.Dir, cfg.Data.Benchmark, cfg.Data.Symbols)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	if len(ds.Symbols) == 0 {
		return nil, fmt.Errorf("load data: no symbol CSVs in %s", cfg.Data.Dir)
	}
	return ds, nil
}

// strategyFactory resolves a registered strategy and applies the
// configured ATR period to RRS sources.
func strategyFactory(cfg *config.Config, name string) (strategies.Factory, error) {
	if _, err := strategies.ByName(name, cfg.Params); err != nil {
		return nil, err
	}
	return func(p config.ParameterSet) backtest.SignalSource {
		src, _ := strategies.ByName(name, p)
		if rrs, ok := src.(*strategies.RRSStrategy); ok {
			rrs.ATRPeriod = cfg.Data.ATRPeriod
		}
		return src
	}, nil
}

// signalSource uses the signals CSV when one is configured and the named
// strategy otherwise.
func signalSource(cfg *config.Config, name string) (backtest.SignalSource, error) {
	if cfg.Data.Signals != "" {
		src, err := backtest.LoadSignalsCSV(cfg.Data.Signals)
		if err != nil {
			return nil, fmt.Errorf("load signals: %w", err)
		}
		return src, nil
	}
	f, err := strategyFactory(cfg, name)
	if err != nil {
		return nil, err
	}
	return f(cfg.Params), nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		path := cfg.Journal.DBPath
		if path == "" {
			path = "./swingsim.sqlite"
		}
		return journal.NewSQLite(path)
	case "csv":
		trades := cfg.Journal.TradesFile
		if trades == "" {
			trades = "./trades.csv"
		}
		equity := cfg.Journal.EquityFile
		if equity == "" {
			equity = "./equity.csv"
		}
		return journal.NewCSV(trades, equity, "")
	}
	return journal.Nop{}, nil
}
