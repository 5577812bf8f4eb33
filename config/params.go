package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ParameterSet holds the strategy parameters for one run or one optimizer
// trial. It is passed by value and never mutated.
type ParameterSet struct {
	RRSThreshold        float64 `json:"rrs_threshold" yaml:"rrs_threshold" validate:"gt=0"`
	StopATRMultiplier   float64 `json:"stop_atr_multiplier" yaml:"stop_atr_multiplier" validate:"gt=0"`
	TargetATRMultiplier float64 `json:"target_atr_multiplier" yaml:"target_atr_multiplier" validate:"gtfield=StopATRMultiplier"`
	MaxPositions        int     `json:"max_positions" yaml:"max_positions" validate:"gte=1"`
	MaxRiskPerTrade     float64 `json:"max_risk_per_trade" yaml:"max_risk_per_trade" validate:"gt=0,lte=1"`
	UseRelaxedEntry     bool    `json:"use_relaxed_entry_criteria" yaml:"use_relaxed_entry_criteria"`
}

func DefaultParams() ParameterSet {
	return ParameterSet{
		RRSThreshold:        2.0,
		StopATRMultiplier:   0.75,
		TargetATRMultiplier: 2.0,
		MaxPositions:        5,
		MaxRiskPerTrade:     0.01,
		UseRelaxedEntry:     true,
	}
}

func (p ParameterSet) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

// String is a compact label used in logs and reports.
func (p ParameterSet) String() string {
	return fmt.Sprintf("rrs=%.2f stop=%.2f target=%.2f maxpos=%d risk=%.3f relaxed=%t",
		p.RRSThreshold, p.StopATRMultiplier, p.TargetATRMultiplier,
		p.MaxPositions, p.MaxRiskPerTrade, p.UseRelaxedEntry)
}
