package market

import (
	"sort"
	"time"
)

// Series is a date-ordered run of daily bars for one symbol.
// Dates are normalized to midnight UTC and unique.
type Series struct {
	Symbol string
	bars   []Bar
	index  map[int64]int
}

// NewSeries copies bars, normalizes their dates, sorts them and drops
// duplicate days (the last occurrence wins).
func NewSeries(symbol string, bars []Bar) *Series {
	byDay := make(map[int64]Bar, len(bars))
	for _, b := range bars {
		b.Date = Day(b.Date)
		byDay[b.Date.Unix()] = b
	}

	out := make([]Bar, 0, len(byDay))
	for _, b := range byDay {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	s := &Series{Symbol: symbol, bars: out, index: make(map[int64]int, len(out))}
	for i, b := range out {
		s.index[b.Date.Unix()] = i
	}
	return s
}

func (s *Series) Len() int { return len(s.bars) }

// Bars returns the underlying bars. Callers must not modify them.
func (s *Series) Bars() []Bar { return s.bars }

// At returns the bar for the calendar day of t.
func (s *Series) At(t time.Time) (Bar, bool) {
	i, ok := s.index[Day(t).Unix()]
	if !ok {
		return Bar{}, false
	}
	return s.bars[i], true
}

// Upto returns every bar dated on or before t.
func (s *Series) Upto(t time.Time) []Bar {
	d := Day(t)
	n := sort.Search(len(s.bars), func(i int) bool { return s.bars[i].Date.After(d) })
	return s.bars[:n]
}

// CloseOnOrBefore returns the latest close dated on or before t.
func (s *Series) CloseOnOrBefore(t time.Time) (float64, bool) {
	bars := s.Upto(t)
	if len(bars) == 0 {
		return 0, false
	}
	return bars[len(bars)-1].Close, true
}

// Dates returns the bar dates within [from, to]. Zero bounds are open.
func (s *Series) Dates(from, to time.Time) []time.Time {
	var out []time.Time
	for _, b := range s.bars {
		if !from.IsZero() && b.Date.Before(Day(from)) {
			continue
		}
		if !to.IsZero() && b.Date.After(Day(to)) {
			continue
		}
		out = append(out, b.Date)
	}
	return out
}

func (s *Series) First() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	return s.bars[0], true
}

func (s *Series) Last() (Bar, bool) {
	if len(s.bars) == 0 {
		return Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}
