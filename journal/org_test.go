package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRunOrg(t *testing.T) {
	t.Parallel()

	r := sampleRun("01HZX", time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC))
	out, err := FormatRunOrg(r, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "* BACKTEST: testdata 2024-01-02..2024-03-29"))
	assert.Contains(t, out, ":RUN_ID:      01HZX")
	assert.Contains(t, out, ":WIN_RATE:    75.00")
	assert.Contains(t, out, ":PROFIT_FAC:  3.50")
	assert.Contains(t, out, ":CREATED:     [2024-04-01 Mon 09:30]")
	assert.Contains(t, out, "- first note")
	assert.NotContains(t, out, "** Trades")
}

func TestWriteRunOrg(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.org")
	r := sampleRun("R1", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	r.Notes = nil
	trades := []TradeRecord{{Symbol: "AMD", Direction: "long", EntryDate: day(2024, 1, 3), ExitDate: day(2024, 1, 10), Shares: 5, EntryPrice: 10, ExitPrice: 11, RealizedPL: 5, Reason: "target"}}
	require.NoError(t, WriteRunOrg(path, r, trades))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "| AMD | long | 2024-01-03 | 2024-01-10 | 5 | 10.00 | 11.00 | 5.00 | target |")
	assert.NotContains(t, string(b), "** Observations")
}
