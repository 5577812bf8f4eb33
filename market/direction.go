package market

import (
	"fmt"
	"strings"
)

// Direction is the side of a position.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Sign returns +1 for long and -1 for short.
func (d Direction) Sign() float64 {
	if d == Short {
		return -1
	}
	return 1
}

func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// Favorable returns the day's best price for the direction.
func (d Direction) Favorable(b Bar) float64 {
	if d == Short {
		return b.Low
	}
	return b.High
}

// Adverse returns the day's worst price for the direction.
func (d Direction) Adverse(b Bar) float64 {
	if d == Short {
		return b.High
	}
	return b.Low
}

// ParseDirection accepts long/short in any case, plus buy/sell.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy":
		return Long, nil
	case "short", "sell":
		return Short, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}
