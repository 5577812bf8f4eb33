package risk

import (
	"testing"

	"github.com/rustyeddy/swingsim/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyState() PortfolioState {
	return PortfolioState{
		AccountValue:  25000,
		Cash:          25000,
		Equity:        25000,
		PeakEquity:    25000,
		OpenPositions: 0,
	}
}

func sampleTrade() ProposedTrade {
	sz := NewSizer(DefaultLimits()).Size(SizeRequest{
		Capital: 25000, Entry: 50, ATR: 2, Direction: market.Long,
		StopMult: 1, TargetMult: 2, RiskPct: 0.01,
	})
	return Proposal("AAPL", market.Long, 50, sz)
}

func TestGate_AllPass(t *testing.T) {
	t.Parallel()

	g := NewGate(DefaultLimits())
	results := g.Validate(sampleTrade(), healthyState())

	require.Len(t, results, 8)
	assert.True(t, Passed(results))
	assert.Empty(t, Failed(results))
	assert.Equal(t, "", Summary(results))
	for _, r := range results {
		assert.Equal(t, SeverityLow, r.Severity, r.Rule)
	}
}

func TestGate_ReportsEveryFailure(t *testing.T) {
	t.Parallel()

	g := NewGate(DefaultLimits())
	trade := ProposedTrade{
		Symbol:        "TSLA",
		Direction:     market.Long,
		Entry:         100,
		Shares:        100,
		PositionValue: 10000,
		RiskAmount:    1000,
		RiskReward:    1.5,
	}
	state := PortfolioState{
		AccountValue:  25000,
		Cash:          5000,
		Equity:        21000,
		PeakEquity:    25000,
		DailyPnL:      -900,
		OpenPositions: 5,
		Halted:        true,
		HaltReason:    "daily loss limit",
	}

	results := g.Validate(trade, state)
	failed := Failed(results)

	rules := make([]Rule, 0, len(failed))
	for _, r := range failed {
		rules = append(rules, r.Rule)
	}
	assert.Equal(t, []Rule{
		RulePositionSize,
		RuleRiskPerTrade,
		RuleRiskReward,
		RuleDailyLoss,
		RuleOpenPositions,
		RuleBuyingPower,
		RuleDrawdown,
		RuleHalted,
	}, rules)

	bySev := map[Rule]Severity{}
	for _, r := range failed {
		bySev[r.Rule] = r.Severity
	}
	assert.Equal(t, SeverityMedium, bySev[RulePositionSize])
	assert.Equal(t, SeverityHigh, bySev[RuleRiskPerTrade])
	assert.Equal(t, SeverityCritical, bySev[RuleDailyLoss])
	assert.Equal(t, SeverityCritical, bySev[RuleHalted])

	summary := Summary(results)
	assert.Contains(t, summary, "max_daily_loss")
	assert.Contains(t, summary, "trading halted: daily loss limit")
}

func TestGate_CurrentAndLimit(t *testing.T) {
	t.Parallel()

	g := NewGate(DefaultLimits())
	state := healthyState()
	state.Equity = 24000

	results := g.Validate(sampleTrade(), state)
	var dd, perTrade CheckResult
	for _, r := range results {
		switch r.Rule {
		case RuleDrawdown:
			dd = r
		case RuleRiskPerTrade:
			perTrade = r
		}
	}
	assert.True(t, dd.Passed)
	assert.InDelta(t, 1000.0, dd.Current, 1e-9)
	assert.InDelta(t, 2500.0, dd.Limit, 1e-9)

	// 50 shares risking $2 each on a $25,000 account
	assert.True(t, perTrade.Passed)
	assert.InDelta(t, 0.004, perTrade.Current, 1e-12)
	assert.Equal(t, 0.01, perTrade.Limit)
	assert.Contains(t, perTrade.Msg, "(0.40%)")
}

func TestGate_DailyLossBreached(t *testing.T) {
	t.Parallel()

	g := NewGate(DefaultLimits())
	s := healthyState()

	s.DailyPnL = -700
	assert.False(t, g.DailyLossBreached(s))
	s.DailyPnL = -800
	assert.True(t, g.DailyLossBreached(s))
}
