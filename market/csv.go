package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ReadCSV reads daily bars in the form
//
//	date,open,high,low,close[,volume]
//
// where date is YYYY-MM-DD or RFC3339. A header row ("date,...") is
// allowed and empty rows are skipped.
func ReadCSV(r io.Reader, symbol string) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var bars []Bar
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

		b, err := parseBarRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", symbol, line, err)
		}
		bars = append(bars, b)
	}
	return NewSeries(symbol, bars), nil
}

// LoadCSV reads a single symbol's bars from path.
func LoadCSV(path, symbol string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, symbol)
}

// LoadDir loads every *.csv in dir. The symbol is the upper-cased file
// name without extension. The file named after benchmark becomes the
// dataset benchmark and is not tradable. If symbols is non-empty only
// those files are loaded.
func LoadDir(dir, benchmark string, symbols []string) (*Dataset, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}

	want := map[string]bool{}
	for _, s := range symbols {
		want[strings.ToUpper(s)] = true
	}

	ds := &Dataset{Symbols: map[string]*Series{}}
	for _, p := range paths {
		sym := strings.ToUpper(strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)))
		isBench := strings.EqualFold(sym, benchmark)
		if !isBench && len(want) > 0 && !want[sym] {
			continue
		}

		s, err := LoadCSV(p, sym)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		if isBench {
			ds.Benchmark = s
			continue
		}
		ds.Symbols[sym] = s
	}

	if benchmark != "" && ds.Benchmark == nil {
		return nil, fmt.Errorf("benchmark %q not found in %s", benchmark, dir)
	}
	return ds, nil
}

func parseBarRow(row []string) (Bar, error) {
	if len(row) < 5 {
		return Bar{}, fmt.Errorf("need at least 5 columns (date,open,high,low,close), got %d", len(row))
	}

	d, err := ParseDate(row[0])
	if err != nil {
		return Bar{}, err
	}

	var vals [5]float64
	for i := 1; i < len(row) && i <= 5; i++ {
		s := strings.TrimSpace(row[i])
		if s == "" && i == 5 {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad number %q: %w", row[i], err)
		}
		vals[i-1] = v
	}

	b := Bar{Date: d, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3], Volume: vals[4]}
	if b.High < b.Low {
		return Bar{}, fmt.Errorf("high %.4f below low %.4f on %s", b.High, b.Low, d.Format(time.DateOnly))
	}
	return b, nil
}

// ParseDate accepts YYYY-MM-DD, RFC3339 or RFC3339Nano.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", s)
}
