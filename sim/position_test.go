package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/rustyeddy/swingsim/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return t0.AddDate(0, 0, n) }

func bar(n int, o, h, l, c float64) market.Bar {
	return market.Bar{Date: day(n), Open: o, High: h, Low: l, Close: c}
}

func open(t *testing.T, dir market.Direction, entry, stop, target float64, shares int, atr float64) *Position {
	t.Helper()
	p, err := NewPosition(OpenRequest{
		ID:          "TEST-1",
		Symbol:      "TEST",
		Direction:   dir,
		Date:        day(0),
		EntryPrice:  entry,
		Shares:      shares,
		StopPrice:   stop,
		TargetPrice: target,
		ATR:         atr,
	})
	require.NoError(t, err)
	return p
}

func TestNewPosition_Validation(t *testing.T) {
	t.Parallel()

	base := OpenRequest{Symbol: "X", Direction: market.Long, Date: day(0), EntryPrice: 50, Shares: 10, StopPrice: 48, TargetPrice: 54}

	tests := []struct {
		name   string
		mutate func(r *OpenRequest)
	}{
		{"no symbol", func(r *OpenRequest) { r.Symbol = "" }},
		{"bad direction", func(r *OpenRequest) { r.Direction = "flat" }},
		{"zero entry", func(r *OpenRequest) { r.EntryPrice = 0 }},
		{"zero shares", func(r *OpenRequest) { r.Shares = 0 }},
		{"stop above long entry", func(r *OpenRequest) { r.StopPrice = 51 }},
		{"stop at entry", func(r *OpenRequest) { r.StopPrice = 50 }},
		{"target below long entry", func(r *OpenRequest) { r.TargetPrice = 49 }},
		{"short with long levels", func(r *OpenRequest) { r.Direction = market.Short }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := base
			tt.mutate(&req)
			_, err := NewPosition(req)
			assert.ErrorIs(t, err, ErrInvalidPosition)
		})
	}

	p, err := NewPosition(base)
	require.NoError(t, err)
	assert.Equal(t, StateOpen, p.State())
	assert.Equal(t, 48.0, p.OriginalStop)
	assert.Equal(t, 2.0, p.RiskPerShare())
}

func TestPosition_RMath(t *testing.T) {
	t.Parallel()

	long := open(t, market.Long, 100, 90, 120, 10, 5)
	assert.InDelta(t, 1.5, long.RMultiple(115), 1e-12)
	assert.InDelta(t, 110.0, long.TargetForR(1), 1e-12)
	assert.InDelta(t, 50.0, long.PnL(110, 5), 1e-12)
	assert.InDelta(t, 1050.0, long.MarketValue(105), 1e-12)

	short := open(t, market.Short, 100, 110, 80, 10, 5)
	assert.InDelta(t, 1.5, short.RMultiple(85), 1e-12)
	assert.InDelta(t, 80.0, short.TargetForR(2), 1e-12)
	assert.InDelta(t, -50.0, short.PnL(105, 10), 1e-12)
	assert.InDelta(t, 950.0, short.MarketValue(105), 1e-12)
}

func TestPosition_PnLRoundTrip(t *testing.T) {
	t.Parallel()

	p := open(t, market.Long, 100, 90, 120, 10, 5)

	f, filled, err := p.ScaleOut(day(1), FillScale1, 110, 0.5)
	require.NoError(t, err)
	require.True(t, filled)
	assert.Equal(t, 5, f.Shares)
	assert.InDelta(t, 50.0, f.PnL, 1e-12)
	assert.Equal(t, StatePartial, p.State())

	last, err := p.ForceClose(day(2), 105, ExitBacktestEnd)
	require.NoError(t, err)
	assert.Equal(t, 5, last.Shares)
	assert.InDelta(t, 25.0, last.PnL, 1e-12)

	assert.InDelta(t, 75.0, p.RealizedPnL, 1e-12)
	assert.InDelta(t, 7.5, p.PnLPercent(), 1e-12)
	assert.Equal(t, StateClosed, p.State())
	assert.Equal(t, ExitBacktestEnd, p.ExitReason)
}

func TestPosition_NoDoubleClose(t *testing.T) {
	t.Parallel()

	p := open(t, market.Long, 50, 48, 54, 10, 2)
	_, err := p.ForceClose(day(1), 54, ExitTakeProfit)
	require.NoError(t, err)

	_, err = p.ForceClose(day(2), 47, ExitStopLoss)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPositionClosed)

	var inv *InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "force_close", inv.Op)
	assert.Equal(t, ExitTakeProfit, inv.Position.ExitReason)

	assert.Equal(t, ExitTakeProfit, p.ExitReason)
	assert.InDelta(t, 40.0, p.RealizedPnL, 1e-12)
	assert.Len(t, p.Fills, 1)

	_, _, err = p.ScaleOut(day(2), FillScale1, 55, 0.5)
	assert.ErrorIs(t, err, ErrPositionClosed)
	assert.ErrorIs(t, p.ApplyStop(53), ErrPositionClosed)
}

func TestPosition_ApplyStopNeverLoosens(t *testing.T) {
	t.Parallel()

	long := open(t, market.Long, 100, 95, 120, 10, 5)
	require.NoError(t, long.ApplyStop(97))
	err := long.ApplyStop(96)

	var inv *InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "apply_stop", inv.Op)
	assert.Equal(t, 97.0, inv.Position.StopPrice)
	assert.Equal(t, 97.0, long.StopPrice)

	short := open(t, market.Short, 100, 105, 80, 10, 5)
	require.NoError(t, short.ApplyStop(103))
	assert.Error(t, short.ApplyStop(104))
	assert.Equal(t, 103.0, short.StopPrice)
}

func TestPosition_ActivateBreakeven(t *testing.T) {
	t.Parallel()

	p := open(t, market.Long, 100, 95, 120, 10, 5)
	require.NoError(t, p.ActivateBreakeven())
	assert.True(t, p.BreakevenActivated)
	assert.Equal(t, 100.0, p.StopPrice)
	assert.Equal(t, 95.0, p.OriginalStop)

	// A stop already past entry is not pulled back.
	q := open(t, market.Long, 100, 95, 120, 10, 5)
	require.NoError(t, q.ApplyStop(102))
	require.NoError(t, q.ActivateBreakeven())
	assert.Equal(t, 102.0, q.StopPrice)
}

func TestPosition_ScaleOutLegs(t *testing.T) {
	t.Parallel()

	p := open(t, market.Long, 100, 95, 130, 10, 5)

	_, _, err := p.ScaleOut(day(1), FillScale2, 110, 0.25)
	assert.Error(t, err, "scale 2 before scale 1")

	_, filled, err := p.ScaleOut(day(1), FillScale1, 105, 0.5)
	require.NoError(t, err)
	require.True(t, filled)

	_, _, err = p.ScaleOut(day(1), FillScale1, 105, 0.5)
	assert.Error(t, err, "scale 1 twice")

	f, filled, err := p.ScaleOut(day(2), FillScale2, 110, 0.25)
	require.NoError(t, err)
	require.True(t, filled)
	// floor(5 * 0.25) = 1
	assert.Equal(t, 1, f.Shares)
	assert.Equal(t, 4, p.SharesRemaining)
}

func TestPosition_ScaleOutWouldCloseAll(t *testing.T) {
	t.Parallel()

	p := open(t, market.Long, 100, 95, 130, 1, 5)
	_, filled, err := p.ScaleOut(day(1), FillScale1, 105, 0.5)
	require.NoError(t, err)
	assert.False(t, filled)
	assert.True(t, p.Scale1Done)
	assert.Equal(t, 1, p.SharesRemaining)
	assert.False(t, p.Closed())
	assert.Empty(t, p.Fills)
}

func TestComplete(t *testing.T) {
	t.Parallel()

	p := open(t, market.Long, 50, 48, 54, 50, 2)
	_, err := Complete(p)
	assert.ErrorIs(t, err, ErrPositionOpen)

	_, err = p.ForceClose(day(3), 54, ExitTakeProfit)
	require.NoError(t, err)

	tr, err := Complete(p)
	require.NoError(t, err)
	assert.Equal(t, "TEST", tr.Symbol)
	assert.Equal(t, 50, tr.Shares)
	assert.Equal(t, 3, tr.HoldingDays)
	assert.InDelta(t, 200.0, tr.PnL, 1e-12)
	assert.InDelta(t, 8.0, tr.PnLPercent, 1e-12)
	assert.True(t, tr.IsWinner())
	assert.Equal(t, 48.0, tr.StopPrice)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	mk := func(sym string) *Position {
		p, err := NewPosition(OpenRequest{Symbol: sym, Direction: market.Long, Date: day(0), EntryPrice: 10, Shares: 1, StopPrice: 9, TargetPrice: 12})
		require.NoError(t, err)
		return p
	}

	require.NoError(t, r.Insert(mk("B")))
	require.NoError(t, r.Insert(mk("A")))
	require.NoError(t, r.Insert(mk("C")))
	assert.ErrorIs(t, r.Insert(mk("A")), ErrDuplicatePosition)
	assert.Equal(t, 3, r.Len())

	syms := func() []string {
		var out []string
		for _, p := range r.Positions() {
			out = append(out, p.Symbol)
		}
		return out
	}
	assert.Equal(t, []string{"B", "A", "C"}, syms())

	p, ok := r.Remove("A")
	require.True(t, ok)
	assert.Equal(t, "A", p.Symbol)
	assert.False(t, r.Has("A"))
	assert.Equal(t, []string{"B", "C"}, syms())

	_, ok = r.Remove("A")
	assert.False(t, ok)

	closed := mk("D")
	_, err := closed.ForceClose(day(1), 11, ExitTakeProfit)
	require.NoError(t, err)
	assert.ErrorIs(t, r.Insert(closed), ErrPositionClosed)
}
