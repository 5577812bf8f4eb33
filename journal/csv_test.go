package journal

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()
	recs, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tp, ep, rp := filepath.Join(dir, "trades.csv"), filepath.Join(dir, "equity.csv"), filepath.Join(dir, "runs.csv")

	j, err := NewCSV(tp, ep, rp)
	require.NoError(t, err)

	require.NoError(t, j.RecordTrade(TradeRecord{
		RunID: "R1", TradeID: "AAPL-20240105", Symbol: "AAPL", Direction: "long", Shares: 25,
		EntryPrice: 100, ExitPrice: 98.5, EntryDate: day(2024, 1, 5), ExitDate: day(2024, 1, 8),
		RealizedPL: -37.5, HoldingDays: 3, Reason: "stop_loss",
	}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "R1", Date: day(2024, 1, 5), Cash: 22500, Equity: 25000, OpenPositions: 1}))
	r := sampleRun("R1", day(2024, 4, 1))
	r.ProfitFactor = math.Inf(1)
	require.NoError(t, j.RecordRun(r))
	require.NoError(t, j.Close())

	trades := readCSV(t, tp)
	require.Len(t, trades, 2)
	assert.Equal(t, csvTradeHeader, trades[0])
	assert.Equal(t, "AAPL", trades[1][2])
	assert.Equal(t, "25", trades[1][4])
	assert.Equal(t, "2024-01-08", trades[1][10])
	assert.Equal(t, "-37.500000", trades[1][11])
	assert.Equal(t, "stop_loss", trades[1][16])

	equity := readCSV(t, ep)
	require.Len(t, equity, 2)
	assert.Equal(t, []string{"R1", "2024-01-05", "22500.000000", "25000.000000", "1"}, equity[1])

	runs := readCSV(t, rp)
	require.Len(t, runs, 2)
	assert.Equal(t, "+Inf", runs[1][14])
}

func TestCSVJournalWithoutRunsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(filepath.Join(dir, "t.csv"), filepath.Join(dir, "e.csv"), "")
	require.NoError(t, err)
	assert.NoError(t, j.RecordRun(sampleRun("R1", day(2024, 4, 1))))
	assert.NoError(t, j.Close())
}

func TestNewCSVBadPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewCSV(filepath.Join(dir, "t.csv"), filepath.Join(dir, "missing", "e.csv"), "")
	assert.Error(t, err)
}
