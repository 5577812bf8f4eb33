package risk

import (
	"math"

	"github.com/shopspring/decimal"
)

// PlannedRisk is the loss on shares if a stop stopDistance away is hit.
func PlannedRisk(shares int, stopDistance float64) float64 {
	return float64(shares) * math.Abs(stopDistance)
}

// RR is reward distance over risk distance, 0 when there is no risk.
func RR(riskDistance, rewardDistance float64) float64 {
	risk := math.Abs(riskDistance)
	if risk == 0 {
		return 0
	}
	return math.Abs(rewardDistance) / risk
}

// RiskPct is plannedRisk as a fraction of accountValue. It is +Inf when
// there is no account value to risk.
func RiskPct(plannedRisk, accountValue float64) float64 {
	if accountValue <= 0 {
		return math.Inf(1)
	}
	return plannedRisk / accountValue
}

// RoundCents rounds a price to two decimals, half away from zero.
func RoundCents(price float64) float64 {
	f, _ := decimal.NewFromFloat(price).Round(2).Float64()
	return f
}
