package risk

// Limits are the per-trade and portfolio ceilings enforced by the Sizer
// and the Gate. Fractions are of account value (0.01 == 1%).
type Limits struct {
	MaxRiskPerTrade  float64 `yaml:"max_risk_per_trade" json:"max_risk_per_trade" validate:"gt=0,lte=1"`
	MaxPositionSize  float64 `yaml:"max_position_size" json:"max_position_size" validate:"gt=0,lte=1"`
	MaxDailyLoss     float64 `yaml:"max_daily_loss" json:"max_daily_loss" validate:"gt=0,lte=1"`
	MaxOpenPositions int     `yaml:"max_open_positions" json:"max_open_positions" validate:"gte=1"`
	MaxDrawdown      float64 `yaml:"max_drawdown" json:"max_drawdown" validate:"gt=0,lte=1"`
	MinRiskReward    float64 `yaml:"min_risk_reward" json:"min_risk_reward" validate:"gte=0"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxRiskPerTrade:  0.01,
		MaxPositionSize:  0.10,
		MaxDailyLoss:     0.03,
		MaxOpenPositions: 5,
		MaxDrawdown:      0.10,
		MinRiskReward:    2.0,
	}
}
