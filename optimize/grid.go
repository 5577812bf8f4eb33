// Package optimize searches strategy parameters: grid sweeps scored by a
// composite of return, profit factor, Sharpe, drawdown and win rate, and
// walk-forward validation of the winners.
package optimize

import (
	"github.com/rustyeddy/swingsim/config"
)

// Grid lists candidate values per parameter. An empty list keeps the
// base parameter set's value.
type Grid struct {
	RRSThresholds     []float64
	StopMultipliers   []float64
	TargetMultipliers []float64
	MaxPositions      []int
	RelaxedEntry      []bool
}

func GridFromConfig(c config.OptimizeConfig) Grid {
	return Grid{
		RRSThresholds:     c.RRSThresholds,
		StopMultipliers:   c.StopMultipliers,
		TargetMultipliers: c.TargetMultipliers,
		MaxPositions:      c.MaxPositions,
		RelaxedEntry:      c.RelaxedEntry,
	}
}

func orFloat(v []float64, def float64) []float64 {
	if len(v) == 0 {
		return []float64{def}
	}
	return v
}

// Expand returns the cartesian product of the grid applied to base, in
// grid order. Combinations with target <= stop are dropped.
func (g Grid) Expand(base config.ParameterSet) []config.ParameterSet {
	rrs := orFloat(g.RRSThresholds, base.RRSThreshold)
	stops := orFloat(g.StopMultipliers, base.StopATRMultiplier)
	targets := orFloat(g.TargetMultipliers, base.TargetATRMultiplier)
	maxPos := g.MaxPositions
	if len(maxPos) == 0 {
		maxPos = []int{base.MaxPositions}
	}
	relaxed := g.RelaxedEntry
	if len(relaxed) == 0 {
		relaxed = []bool{base.UseRelaxedEntry}
	}

	var out []config.ParameterSet
	for _, r := range rrs {
		for _, s := range stops {
			for _, t := range targets {
				if t <= s {
					continue
				}
				for _, m := range maxPos {
					for _, rel := range relaxed {
						p := base
						p.RRSThreshold = r
						p.StopATRMultiplier = s
						p.TargetATRMultiplier = t
						p.MaxPositions = m
						p.UseRelaxedEntry = rel
						out = append(out, p)
					}
				}
			}
		}
	}
	return out
}
