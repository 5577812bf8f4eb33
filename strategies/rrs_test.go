package strategies

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rustyeddy/swingsim/config"
	"github.com/rustyeddy/swingsim/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(i int) time.Time {
	return time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)
}

// build makes one bar per close, opening at the previous close with a
// quarter point of wick on each side.
func build(closes []float64) []market.Bar {
	bars := make([]market.Bar, len(closes))
	prev := closes[0]
	for i, c := range closes {
		o := prev
		bars[i] = market.Bar{
			Date:  date(i),
			Open:  o,
			High:  math.Max(o, c) + 0.25,
			Low:   math.Min(o, c) - 0.25,
			Close: c,
		}
		prev = c
	}
	return bars
}

// trend is 19 steady half-point moves followed by a final jump.
func trend(start, step, jump float64) []float64 {
	closes := make([]float64, 20)
	for i := 0; i < 19; i++ {
		closes[i] = start + step*float64(i)
	}
	closes[19] = closes[18] + jump
	return closes
}

func flatCloses(n int, px float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = px
	}
	return out
}

func params(threshold float64, relaxed bool) config.ParameterSet {
	p := config.DefaultParams()
	p.RRSThreshold = threshold
	p.UseRelaxedEntry = relaxed
	return p
}

const wantATR = 16.5 / 14

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rrs  float64
		want Class
	}{
		{3, StrongRS},
		{2.0, ModerateRS},
		{0.6, ModerateRS},
		{0.5, Neutral},
		{0, Neutral},
		{-0.5, ModerateRW},
		{-1.9, ModerateRW},
		{-2.0, StrongRW},
		{-5, StrongRW},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.rrs), "rrs=%v", tt.rrs)
	}
}

func TestRRS(t *testing.T) {
	t.Parallel()

	// stock +2%, benchmark +1%, ATR 0.5
	assert.InDelta(t, 2.0, RRS(102, 100, 404, 400, 0.5), 1e-9)
	assert.InDelta(t, -1.9414, RRS(100, 102, 400, 404, 0.5), 1e-3)
	assert.Equal(t, 0.0, RRS(102, 100, 404, 400, 0))
	assert.Equal(t, 0.0, RRS(102, 0, 404, 400, 1))
}

func TestStrengthAndWeakness(t *testing.T) {
	t.Parallel()

	up := build(trend(100, 0.5, 3))
	s := Strength(up)
	assert.Equal(t, 5, s.Score)
	assert.True(t, s.Relaxed)
	assert.True(t, s.Strict)
	assert.False(t, Weakness(up).Relaxed)

	down := build(trend(100, -0.5, -3))
	w := Weakness(down)
	assert.Equal(t, 5, w.Score)
	assert.True(t, w.Relaxed)
	assert.True(t, w.Strict)
	assert.False(t, Strength(down).Relaxed)

	// one red candle in the last three breaks strict but not relaxed
	mixed := build(trend(100, 0.5, 3))
	mixed[18].Open = mixed[18].Close + 0.1
	m := Strength(mixed)
	assert.True(t, m.Relaxed)
	assert.False(t, m.Strict)
	assert.True(t, m.Passes(true))
	assert.False(t, m.Passes(false))

	assert.Equal(t, DailyCheck{}, Strength(nil))
	assert.Equal(t, DailyCheck{}, Weakness(nil))
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	bench := build(flatCloses(20, 400))

	t.Run("long", func(t *testing.T) {
		sig, ok := NewRRS(params(2, true)).Evaluate("UP", build(trend(100, 0.5, 3)), bench)
		require.True(t, ok)
		assert.Equal(t, market.Long, sig.Direction)
		assert.Equal(t, "UP", sig.Symbol)
		assert.InDelta(t, 112.0, sig.Price, 1e-9)
		assert.InDelta(t, wantATR, sig.ATR, 1e-9)
		assert.InDelta(t, RRS(112, 109, 400, 400, wantATR), sig.Strength, 1e-9)
		assert.True(t, sig.Date.Equal(date(19)))
	})

	t.Run("short", func(t *testing.T) {
		sig, ok := NewRRS(params(2, false)).Evaluate("DN", build(trend(100, -0.5, -3)), bench)
		require.True(t, ok)
		assert.Equal(t, market.Short, sig.Direction)
		assert.InDelta(t, 88.0, sig.Price, 1e-9)
		assert.Greater(t, sig.Strength, 2.0)
	})

	t.Run("below threshold", func(t *testing.T) {
		_, ok := NewRRS(params(3, true)).Evaluate("UP", build(trend(100, 0.5, 3)), bench)
		assert.False(t, ok)
	})

	t.Run("benchmark moved too", func(t *testing.T) {
		b := build(append(flatCloses(19, 400), 411))
		_, ok := NewRRS(params(2, true)).Evaluate("UP", build(trend(100, 0.5, 3)), b)
		assert.False(t, ok)
	})

	t.Run("jump against a downtrend", func(t *testing.T) {
		_, ok := NewRRS(params(2, true)).Evaluate("X", build(trend(100, -0.5, 3)), bench)
		assert.False(t, ok)
	})

	t.Run("short history", func(t *testing.T) {
		closes := trend(100, 0.5, 3)[1:]
		_, ok := NewRRS(params(2, true)).Evaluate("UP", build(closes), bench)
		assert.False(t, ok)
	})
}

func TestRRSSignals(t *testing.T) {
	t.Parallel()

	up := market.NewSeries("UP", build(trend(100, 0.5, 3)))
	dn := market.NewSeries("DN", build(trend(100, -0.5, -3)))
	stale := market.NewSeries("OLD", build(trend(100, 0.5, 3))[:19])
	data := market.NewDataset(market.NewSeries("SPY", build(flatCloses(20, 400))), up, dn, stale)

	s := NewRRS(params(2, true))
	sigs, err := s.Signals(context.Background(), date(19), data)
	require.NoError(t, err)
	require.Len(t, sigs, 2)
	assert.Equal(t, "DN", sigs[0].Symbol)
	assert.Equal(t, market.Short, sigs[0].Direction)
	assert.Equal(t, "UP", sigs[1].Symbol)
	assert.Equal(t, market.Long, sigs[1].Direction)

	sigs, err = s.Signals(context.Background(), date(10), data)
	require.NoError(t, err)
	assert.Empty(t, sigs)

	sigs, err = s.Signals(context.Background(), date(30), data)
	require.NoError(t, err)
	assert.Empty(t, sigs, "no benchmark bar that day")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Signals(ctx, date(19), data)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestByName(t *testing.T) {
	t.Parallel()

	src, err := ByName(" RRS ", config.DefaultParams())
	require.NoError(t, err)
	r, ok := src.(*RRSStrategy)
	require.True(t, ok)
	assert.Equal(t, 2.0, r.Threshold)
	assert.True(t, r.Relaxed)

	src, err = ByName("noop", config.DefaultParams())
	require.NoError(t, err)
	sigs, err := src.Signals(context.Background(), date(0), market.NewDataset(nil))
	assert.NoError(t, err)
	assert.Nil(t, sigs)

	_, err = ByName("nope", config.DefaultParams())
	assert.ErrorContains(t, err, "rrs")
	assert.Contains(t, Names(), "noop")
}
