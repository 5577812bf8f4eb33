package market

import (
	"sort"
	"time"
)

// Dataset is the read-only price history a simulation runs over: one
// series per tradable symbol plus the benchmark that defines the calendar.
type Dataset struct {
	Benchmark *Series
	Symbols   map[string]*Series
}

func NewDataset(benchmark *Series, symbols ...*Series) *Dataset {
	ds := &Dataset{Benchmark: benchmark, Symbols: make(map[string]*Series, len(symbols))}
	for _, s := range symbols {
		ds.Symbols[s.Symbol] = s
	}
	return ds
}

// Series returns the series for sym, or nil.
func (ds *Dataset) Series(sym string) *Series {
	return ds.Symbols[sym]
}

// Names returns the symbol names in sorted order.
func (ds *Dataset) Names() []string {
	names := make([]string, 0, len(ds.Symbols))
	for name := range ds.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TradingDays returns the simulation calendar within [from, to]. The
// benchmark's dates are used when present, otherwise the union of all
// symbol dates.
func (ds *Dataset) TradingDays(from, to time.Time) []time.Time {
	if ds.Benchmark != nil && ds.Benchmark.Len() > 0 {
		return ds.Benchmark.Dates(from, to)
	}

	seen := map[int64]time.Time{}
	for _, s := range ds.Symbols {
		for _, d := range s.Dates(from, to) {
			seen[d.Unix()] = d
		}
	}
	out := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
