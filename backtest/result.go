package backtest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustyeddy/swingsim/market"
	"github.com/rustyeddy/swingsim/metrics"
	"github.com/rustyeddy/swingsim/portfolio"
	"github.com/rustyeddy/swingsim/sim"
	"gopkg.in/yaml.v3"
)

// Rejection records a signal that did not become a position.
type Rejection struct {
	Date      time.Time        `json:"date" yaml:"date"`
	Symbol    string           `json:"symbol" yaml:"symbol"`
	Direction market.Direction `json:"direction" yaml:"direction"`
	Reason    string           `json:"reason" yaml:"reason"`
}

// Result is the full output of one run.
type Result struct {
	RunID          string                  `json:"run_id" yaml:"run_id"`
	Start          time.Time               `json:"start" yaml:"start"`
	End            time.Time               `json:"end" yaml:"end"`
	InitialCapital float64                 `json:"initial_capital" yaml:"initial_capital"`
	FinalCapital   float64                 `json:"final_capital" yaml:"final_capital"`
	Settings       Settings                `json:"settings" yaml:"settings"`
	Metrics        metrics.Summary         `json:"metrics" yaml:"metrics"`
	Trades         []sim.CompletedTrade    `json:"trades" yaml:"trades"`
	Equity         []portfolio.EquityPoint `json:"equity_curve" yaml:"equity_curve"`
	Rejections     []Rejection             `json:"rejections,omitempty" yaml:"rejections,omitempty"`
}

func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *Result) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// SaveToFile writes the result as YAML when path ends in .yaml or .yml,
// JSON otherwise.
func (r *Result) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = r.WriteYAML(f)
	default:
		err = r.WriteJSON(f)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
