package market

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(day int) time.Time {
	return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
}

func TestNewSeriesSortsAndDedups(t *testing.T) {
	t.Parallel()

	s := NewSeries("AAPL", []Bar{
		{Date: d(3), Close: 3},
		{Date: d(1).Add(15 * time.Hour), Close: 1},
		{Date: d(2), Close: 2},
		{Date: d(2), Close: 22},
	})

	require.Equal(t, 3, s.Len())
	assert.Equal(t, d(1), s.Bars()[0].Date)
	assert.Equal(t, 22.0, s.Bars()[1].Close)
	assert.Equal(t, 3.0, s.Bars()[2].Close)
}

func TestSeriesLookups(t *testing.T) {
	t.Parallel()

	s := NewSeries("MSFT", []Bar{
		{Date: d(1), Close: 10},
		{Date: d(2), Close: 11},
		{Date: d(5), Close: 12},
	})

	b, ok := s.At(d(2).Add(9 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, 11.0, b.Close)

	_, ok = s.At(d(3))
	assert.False(t, ok)

	assert.Len(t, s.Upto(d(4)), 2)
	assert.Len(t, s.Upto(d(5)), 3)
	assert.Empty(t, s.Upto(d(1).Add(-time.Hour)))

	c, ok := s.CloseOnOrBefore(d(4))
	require.True(t, ok)
	assert.Equal(t, 11.0, c)

	_, ok = s.CloseOnOrBefore(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)

	assert.Equal(t, []time.Time{d(2), d(5)}, s.Dates(d(2), time.Time{}))
	assert.Equal(t, []time.Time{d(1), d(2)}, s.Dates(time.Time{}, d(4)))
}

func TestDatasetTradingDays(t *testing.T) {
	t.Parallel()

	a := NewSeries("A", []Bar{{Date: d(1)}, {Date: d(3)}})
	b := NewSeries("B", []Bar{{Date: d(2)}, {Date: d(3)}})

	noBench := NewDataset(nil, a, b)
	assert.Equal(t, []time.Time{d(1), d(2), d(3)}, noBench.TradingDays(time.Time{}, time.Time{}))
	assert.Equal(t, []string{"A", "B"}, noBench.Names())

	bench := NewSeries("SPY", []Bar{{Date: d(1)}, {Date: d(2)}})
	withBench := NewDataset(bench, a, b)
	assert.Equal(t, []time.Time{d(1), d(2)}, withBench.TradingDays(time.Time{}, time.Time{}))
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	in := `date,open,high,low,close,volume
2024-03-01,10,11,9,10.5,1000

2024-03-04T00:00:00Z,10.5,12,10,11.5,
`
	s, err := ReadCSV(strings.NewReader(in), "XYZ")
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	first := s.Bars()[0]
	assert.Equal(t, d(1), first.Date)
	assert.Equal(t, 11.0, first.High)
	assert.Equal(t, 1000.0, first.Volume)
	assert.Equal(t, 0.0, s.Bars()[1].Volume)
}

func TestReadCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"short row", "2024-03-01,1,2,3\n"},
		{"bad date", "03/01/2024,1,2,0.5,1\n"},
		{"bad number", "2024-03-01,1,x,0.5,1\n"},
		{"high below low", "2024-03-01,1,1,2,1\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadCSV(strings.NewReader(tt.in), "BAD")
			assert.Error(t, err)
		})
	}
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("spy.csv", "2024-03-01,1,2,0.5,1\n")
	write("aapl.csv", "2024-03-01,1,2,0.5,1\n")
	write("msft.csv", "2024-03-01,1,2,0.5,1\n")

	ds, err := LoadDir(dir, "SPY", nil)
	require.NoError(t, err)
	require.NotNil(t, ds.Benchmark)
	assert.Equal(t, []string{"AAPL", "MSFT"}, ds.Names())

	only, err := LoadDir(dir, "SPY", []string{"msft"})
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT"}, only.Names())

	_, err = LoadDir(dir, "QQQ", nil)
	assert.Error(t, err)
}

func TestDirection(t *testing.T) {
	t.Parallel()

	bar := Bar{High: 12, Low: 8}
	assert.Equal(t, 12.0, Long.Favorable(bar))
	assert.Equal(t, 8.0, Long.Adverse(bar))
	assert.Equal(t, 8.0, Short.Favorable(bar))
	assert.Equal(t, 12.0, Short.Adverse(bar))
	assert.Equal(t, -1.0, Short.Sign())

	dir, err := ParseDirection(" SELL ")
	require.NoError(t, err)
	assert.Equal(t, Short, dir)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}
