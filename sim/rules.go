package sim

// ExitRules configures the lifecycle steps after the hard stop. With
// trailing, scaling and time stops disabled a position exits only at its
// stop or its target.
type ExitRules struct {
	UseTrailingStop       bool    `yaml:"use_trailing_stop" json:"use_trailing_stop"`
	BreakevenTriggerR     float64 `yaml:"breakeven_trigger_r" json:"breakeven_trigger_r" validate:"gt=0"`
	TrailingATRMultiplier float64 `yaml:"trailing_atr_multiplier" json:"trailing_atr_multiplier" validate:"gt=0"`

	UseScaledExits bool    `yaml:"use_scaled_exits" json:"use_scaled_exits"`
	Scale1TargetR  float64 `yaml:"scale1_target_r" json:"scale1_target_r" validate:"gt=0"`
	Scale1Fraction float64 `yaml:"scale1_fraction" json:"scale1_fraction" validate:"gt=0,lte=1"`
	Scale2TargetR  float64 `yaml:"scale2_target_r" json:"scale2_target_r" validate:"gtfield=Scale1TargetR"`
	Scale2Fraction float64 `yaml:"scale2_fraction" json:"scale2_fraction" validate:"gt=0,lte=1"`

	UseTimeStop    bool    `yaml:"use_time_stop" json:"use_time_stop"`
	MaxHoldingDays int     `yaml:"max_holding_days" json:"max_holding_days" validate:"gte=1"`
	StaleTradeDays int     `yaml:"stale_trade_days" json:"stale_trade_days" validate:"gte=1"`
	StaleMinR      float64 `yaml:"stale_min_r" json:"stale_min_r"`
}

// DefaultRules enables every exit feature.
func DefaultRules() ExitRules {
	r := StandardRules()
	r.UseTrailingStop = true
	r.UseScaledExits = true
	r.UseTimeStop = true
	return r
}

// StandardRules exits only at the stop or the target. The parameters
// carry the defaults so toggling a feature on needs no other change.
func StandardRules() ExitRules {
	return ExitRules{
		BreakevenTriggerR:     1.0,
		TrailingATRMultiplier: 1.0,
		Scale1TargetR:         1.0,
		Scale1Fraction:        0.5,
		Scale2TargetR:         2.0,
		Scale2Fraction:        0.25,
		MaxHoldingDays:        10,
		StaleTradeDays:        5,
		StaleMinR:             0.5,
	}
}
