package risk

import (
	"math"

	"github.com/rustyeddy/swingsim/market"
)

// Constraint names what bound the share count.
type Constraint string

const (
	ConstraintRisk         Constraint = "risk_per_trade"
	ConstraintPositionSize Constraint = "max_position_size"
	ConstraintInvalidStop  Constraint = "invalid_stop"
)

// SizeRequest is one entry to be sized.
type SizeRequest struct {
	Capital    float64
	Entry      float64
	ATR        float64
	Direction  market.Direction
	StopMult   float64
	TargetMult float64
	RiskPct    float64
}

// Sizing is the concrete proposal for a SizeRequest. Shares == 0 means the
// entry must be rejected.
type Sizing struct {
	Shares        int
	StopPrice     float64
	TargetPrice   float64
	StopDistance  float64
	RiskAmount    float64
	RewardAmount  float64
	RiskReward    float64
	PositionValue float64
	RiskPct       float64
	Constraint    Constraint
}

type Sizer struct {
	limits Limits
}

func NewSizer(l Limits) *Sizer {
	return &Sizer{limits: l}
}

func (s *Sizer) Limits() Limits { return s.limits }

// Size converts an ATR-based stop into a share count.
//
//	shares = floor(capital*risk / (atr*stopMult))
//
// capped at floor(capital*MaxPositionSize / entry). Risk and reward are
// computed on the final share count from the unrounded ATR distances, so
// the loss at the cent-rounded stop can differ from RiskAmount by up to
// half a cent per share.
func (s *Sizer) Size(req SizeRequest) Sizing {
	riskPct := req.RiskPct
	if riskPct <= 0 {
		riskPct = s.limits.MaxRiskPerTrade
	}
	stopDistance := req.ATR * req.StopMult
	targetDistance := req.ATR * req.TargetMult
	sign := req.Direction.Sign()

	out := Sizing{
		StopDistance: stopDistance,
		RiskPct:      riskPct,
		StopPrice:    RoundCents(req.Entry - sign*stopDistance),
		TargetPrice:  RoundCents(req.Entry + sign*targetDistance),
	}
	if stopDistance <= 0 || req.Entry <= 0 || req.Capital <= 0 || !req.Direction.Valid() {
		out.Constraint = ConstraintInvalidStop
		return out
	}

	shares := int(math.Floor(req.Capital * riskPct / stopDistance))
	out.Constraint = ConstraintRisk

	maxShares := int(math.Floor(req.Capital * s.limits.MaxPositionSize / req.Entry))
	if shares > maxShares {
		shares = maxShares
		out.Constraint = ConstraintPositionSize
	}
	if shares <= 0 {
		return out
	}

	out.Shares = shares
	out.PositionValue = req.Entry * float64(shares)
	out.RiskAmount = PlannedRisk(shares, stopDistance)
	out.RewardAmount = targetDistance * float64(shares)
	out.RiskReward = RR(stopDistance, targetDistance)
	return out
}
