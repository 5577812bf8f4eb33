package risk

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/swingsim/market"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rule identifies one gate check.
type Rule string

const (
	RulePositionSize  Rule = "max_position_size"
	RuleRiskPerTrade  Rule = "max_risk_per_trade"
	RuleRiskReward    Rule = "min_risk_reward"
	RuleDailyLoss     Rule = "max_daily_loss"
	RuleOpenPositions Rule = "max_open_positions"
	RuleBuyingPower   Rule = "buying_power"
	RuleDrawdown      Rule = "max_drawdown"
	RuleHalted        Rule = "trading_halted"
)

type CheckResult struct {
	Rule     Rule     `json:"rule"`
	Passed   bool     `json:"passed"`
	Current  float64  `json:"current"`
	Limit    float64  `json:"limit"`
	Severity Severity `json:"severity"`
	Msg      string   `json:"msg"`
}

// ProposedTrade is a sized entry awaiting admission.
type ProposedTrade struct {
	Symbol        string
	Direction     market.Direction
	Entry         float64
	Shares        int
	StopPrice     float64
	TargetPrice   float64
	PositionValue float64
	RiskAmount    float64
	RiskReward    float64
}

// Proposal builds a ProposedTrade from a Sizing.
func Proposal(symbol string, dir market.Direction, entry float64, sz Sizing) ProposedTrade {
	return ProposedTrade{
		Symbol:        symbol,
		Direction:     dir,
		Entry:         entry,
		Shares:        sz.Shares,
		StopPrice:     sz.StopPrice,
		TargetPrice:   sz.TargetPrice,
		PositionValue: sz.PositionValue,
		RiskAmount:    sz.RiskAmount,
		RiskReward:    sz.RiskReward,
	}
}

// PortfolioState is the account snapshot a trade is checked against.
type PortfolioState struct {
	AccountValue  float64
	Cash          float64
	Equity        float64
	PeakEquity    float64
	DailyPnL      float64
	OpenPositions int
	Halted        bool
	HaltReason    string
}

type Gate struct {
	limits Limits
}

func NewGate(l Limits) *Gate {
	return &Gate{limits: l}
}

func (g *Gate) Limits() Limits { return g.limits }

// Validate runs every rule and returns one result per rule in a fixed
// order. No rule short-circuits another.
func (g *Gate) Validate(t ProposedTrade, s PortfolioState) []CheckResult {
	l := g.limits
	out := make([]CheckResult, 0, 8)
	add := func(rule Rule, passed bool, current, limit float64, sev Severity, msg string) {
		if passed {
			sev = SeverityLow
		}
		out = append(out, CheckResult{Rule: rule, Passed: passed, Current: current, Limit: limit, Severity: sev, Msg: msg})
	}

	maxValue := s.AccountValue * l.MaxPositionSize
	add(RulePositionSize, t.PositionValue <= maxValue, t.PositionValue, maxValue, SeverityMedium,
		fmt.Sprintf("position size $%.0f / $%.0f max", t.PositionValue, maxValue))

	maxRisk := s.AccountValue * l.MaxRiskPerTrade
	riskPct := RiskPct(t.RiskAmount, s.AccountValue)
	add(RuleRiskPerTrade, t.RiskAmount <= maxRisk, riskPct, l.MaxRiskPerTrade, SeverityHigh,
		fmt.Sprintf("risk $%.0f (%.2f%%) / $%.0f max", t.RiskAmount, riskPct*100, maxRisk))

	add(RuleRiskReward, t.RiskReward >= l.MinRiskReward, t.RiskReward, l.MinRiskReward, SeverityMedium,
		fmt.Sprintf("R/R %.2f (min %.2f)", t.RiskReward, l.MinRiskReward))

	maxLoss := s.AccountValue * l.MaxDailyLoss
	loss := 0.0
	if s.DailyPnL < 0 {
		loss = -s.DailyPnL
	}
	add(RuleDailyLoss, loss < maxLoss, loss, maxLoss, SeverityCritical,
		fmt.Sprintf("daily loss $%.0f / $%.0f limit", loss, maxLoss))

	add(RuleOpenPositions, s.OpenPositions < l.MaxOpenPositions,
		float64(s.OpenPositions), float64(l.MaxOpenPositions), SeverityMedium,
		fmt.Sprintf("open positions %d / %d max", s.OpenPositions, l.MaxOpenPositions))

	add(RuleBuyingPower, t.PositionValue <= s.Cash, t.PositionValue, s.Cash, SeverityHigh,
		fmt.Sprintf("buying power $%.0f available, need $%.0f", s.Cash, t.PositionValue))

	dd := s.PeakEquity - s.Equity
	if dd < 0 {
		dd = 0
	}
	maxDD := s.PeakEquity * l.MaxDrawdown
	add(RuleDrawdown, dd < maxDD, dd, maxDD, SeverityCritical,
		fmt.Sprintf("drawdown $%.0f / $%.0f max", dd, maxDD))

	msg := "trading active"
	if s.Halted {
		msg = "trading halted"
		if s.HaltReason != "" {
			msg += ": " + s.HaltReason
		}
	}
	add(RuleHalted, !s.Halted, 0, 0, SeverityCritical, msg)

	return out
}

// DailyLossBreached reports whether the day's P&L is past the daily loss
// limit. Callers use it to halt new entries for the rest of the day.
func (g *Gate) DailyLossBreached(s PortfolioState) bool {
	return s.DailyPnL < -s.AccountValue*g.limits.MaxDailyLoss
}

// Passed reports whether every result passed.
func Passed(results []CheckResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Failed returns the failing results in order.
func Failed(results []CheckResult) []CheckResult {
	var out []CheckResult
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Summary joins every failure into one rejection reason.
func Summary(results []CheckResult) string {
	failed := Failed(results)
	if len(failed) == 0 {
		return ""
	}
	parts := make([]string, len(failed))
	for i, r := range failed {
		parts[i] = fmt.Sprintf("%s: %s", r.Rule, r.Msg)
	}
	return strings.Join(parts, "; ")
}
