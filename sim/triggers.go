package sim

import (
	"github.com/rustyeddy/swingsim/market"
)

// hitStop reports whether the day's adverse extreme touched the live stop.
func hitStop(p *Position, b market.Bar) bool {
	if p.Direction == market.Short {
		return b.High >= p.StopPrice
	}
	return b.Low <= p.StopPrice
}

// reached reports whether the day's favorable extreme reached level.
func reached(p *Position, b market.Bar, level float64) bool {
	if p.Direction == market.Short {
		return b.Low <= level
	}
	return b.High >= level
}

// stopReason names a stop exit: trailing once the stop has moved.
func stopReason(p *Position) ExitReason {
	if p.BreakevenActivated || p.StopPrice != p.OriginalStop {
		return ExitTrailingStop
	}
	return ExitStopLoss
}
