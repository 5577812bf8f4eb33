package indicators

import (
	"testing"

	"github.com/rustyeddy/swingsim/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBars() []market.Bar {
	return []market.Bar{
		{Open: 100, High: 105, Low: 99, Close: 102},
		{Open: 102, High: 107, Low: 101, Close: 105},
		{Open: 105, High: 108, Low: 104, Close: 106},
		{Open: 106, High: 110, Low: 105, Close: 108},
		{Open: 108, High: 112, Low: 107, Close: 110},
		{Open: 110, High: 113, Low: 109, Close: 111},
		{Open: 111, High: 115, Low: 110, Close: 113},
		{Open: 113, High: 116, Low: 112, Close: 114},
		{Open: 114, High: 118, Low: 113, Close: 116},
		{Open: 116, High: 120, Low: 115, Close: 118},
	}
}

func TestMA(t *testing.T) {
	t.Parallel()
	bars := createTestBars()

	ma, err := MA(bars, 5)
	require.NoError(t, err)
	// Last 5 closes: 111,113,114,116,118 => 572/5 = 114.4
	assert.InDelta(t, 114.4, ma, 0.001)

	_, err = MA(bars, 20)
	assert.Error(t, err)
	_, err = MA(bars, 0)
	assert.Error(t, err)
}

func TestEMASeries(t *testing.T) {
	t.Parallel()
	bars := []market.Bar{{Close: 10}, {Close: 12}, {Close: 14}}

	s, err := EMASeries(bars, 3)
	require.NoError(t, err)
	// alpha = 0.5: 10, 11, 12.5
	assert.InDeltaSlice(t, []float64{10, 11, 12.5}, s, 1e-9)

	last, err := EMA(bars, 3)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, last, 1e-9)
}

func TestStreamingEMAMatchesSeries(t *testing.T) {
	t.Parallel()
	bars := createTestBars()

	ema := NewEMA(5)
	v := Run(ema, bars)
	want, err := EMA(bars, 5)
	require.NoError(t, err)
	assert.InDelta(t, want, v, 1e-9)
	assert.Equal(t, "EMA(5)", ema.Name())

	ema.Reset()
	assert.False(t, ema.Ready())
	assert.Equal(t, 0.0, ema.Value())
}

func TestATRFunc(t *testing.T) {
	t.Parallel()
	bars := []market.Bar{
		{High: 10, Low: 8, Close: 9},
		{High: 11, Low: 9, Close: 10},
		{High: 12, Low: 10, Close: 11},
		{High: 11, Low: 9, Close: 10},
		{High: 12, Low: 10, Close: 11},
		{High: 13, Low: 11, Close: 12},
	}
	atr, err := ATRFunc(bars, 3)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, atr, 1e-9)

	// First bar contributes high-low only.
	atr, err = ATRFunc(bars[:2], 2)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, atr, 1e-9)

	_, err = ATRFunc(bars, 10)
	assert.Error(t, err)
}

func TestStreamingATRMatchesFunc(t *testing.T) {
	t.Parallel()
	bars := createTestBars()

	atr := NewATR(4)
	for i, b := range bars {
		atr.Update(b)
		if i < 3 {
			assert.False(t, atr.Ready())
			continue
		}
		want, err := ATRFunc(bars[:i+1], 4)
		require.NoError(t, err)
		assert.InDelta(t, want, atr.Value(), 1e-9)
	}
}

func TestTrueRange(t *testing.T) {
	t.Parallel()
	current := market.Bar{High: 110, Low: 100, Close: 105}

	assert.Equal(t, 10.0, TrueRange(current, market.Bar{Close: 104}))
	// Gap up: high-prevClose dominates.
	assert.Equal(t, 20.0, TrueRange(current, market.Bar{Close: 90}))
	// Gap down: prevClose-low dominates.
	assert.Equal(t, 15.0, TrueRange(current, market.Bar{Close: 115}))
}
