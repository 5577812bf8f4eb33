package backtest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/swingsim/market"
)

// Signal is a candidate entry produced by a strategy.
type Signal struct {
	Date      time.Time        `json:"date" yaml:"date"`
	Symbol    string           `json:"symbol" yaml:"symbol"`
	Direction market.Direction `json:"direction" yaml:"direction"`
	Price     float64          `json:"price" yaml:"price"`
	ATR       float64          `json:"atr" yaml:"atr"`
	Strength  float64          `json:"strength" yaml:"strength"`
}

// SignalSource produces the candidate entries for one day. It must only
// look at data dated on or before day.
type SignalSource interface {
	Signals(ctx context.Context, day time.Time, data *market.Dataset) ([]Signal, error)
}

// SignalFunc adapts a function to a SignalSource.
type SignalFunc func(ctx context.Context, day time.Time, data *market.Dataset) ([]Signal, error)

func (f SignalFunc) Signals(ctx context.Context, day time.Time, data *market.Dataset) ([]Signal, error) {
	return f(ctx, day, data)
}

// Rank sorts signals strongest first. Ties keep symbol order so the
// result does not depend on the source's ordering.
func Rank(sigs []Signal) {
	sort.SliceStable(sigs, func(i, j int) bool {
		if sigs[i].Strength != sigs[j].Strength {
			return sigs[i].Strength > sigs[j].Strength
		}
		return sigs[i].Symbol < sigs[j].Symbol
	})
}

// StaticSignals replays a fixed set of precomputed signals by date.
type StaticSignals struct {
	byDay map[int64][]Signal
}

func NewStaticSignals(sigs []Signal) *StaticSignals {
	s := &StaticSignals{byDay: map[int64][]Signal{}}
	for _, sig := range sigs {
		sig.Date = market.Day(sig.Date)
		k := sig.Date.Unix()
		s.byDay[k] = append(s.byDay[k], sig)
	}
	return s
}

func (s *StaticSignals) Signals(_ context.Context, day time.Time, _ *market.Dataset) ([]Signal, error) {
	sigs := s.byDay[market.Day(day).Unix()]
	return append([]Signal(nil), sigs...), nil
}

// Len is the total number of stored signals.
func (s *StaticSignals) Len() int {
	n := 0
	for _, sigs := range s.byDay {
		n += len(sigs)
	}
	return n
}

// ReadSignalsCSV reads rows of
//
//	date,symbol,direction,price,atr[,strength]
//
// A header row ("date,...") is allowed and empty rows are skipped.
func ReadSignalsCSV(r io.Reader) (*StaticSignals, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var sigs []Signal
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}

		sig, err := parseSignalRow(row)
		if err != nil {
			return nil, fmt.Errorf("signals line %d: %w", line, err)
		}
		sigs = append(sigs, sig)
	}
	return NewStaticSignals(sigs), nil
}

func LoadSignalsCSV(path string) (*StaticSignals, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSignalsCSV(f)
}

func parseSignalRow(row []string) (Signal, error) {
	if len(row) < 5 {
		return Signal{}, fmt.Errorf("need at least 5 columns (date,symbol,direction,price,atr), got %d", len(row))
	}
	d, err := market.ParseDate(row[0])
	if err != nil {
		return Signal{}, err
	}
	dir, err := market.ParseDirection(row[2])
	if err != nil {
		return Signal{}, err
	}

	nums := make([]float64, 3)
	for i := 3; i < len(row) && i < 6; i++ {
		s := strings.TrimSpace(row[i])
		if s == "" && i == 5 {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Signal{}, fmt.Errorf("bad number %q: %w", row[i], err)
		}
		nums[i-3] = v
	}

	return Signal{
		Date:      d,
		Symbol:    strings.ToUpper(strings.TrimSpace(row[1])),
		Direction: dir,
		Price:     nums[0],
		ATR:       nums[1],
		Strength:  nums[2],
	}, nil
}
