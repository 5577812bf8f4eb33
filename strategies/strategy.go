// Package strategies turns daily bars into entry signals for the
// backtest engine.
package strategies

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rustyeddy/swingsim/backtest"
	"github.com/rustyeddy/swingsim/config"
	"github.com/rustyeddy/swingsim/market"
)

// Factory builds a signal source for one parameter set. Sources built
// by a factory share no state, so parallel runs each get their own.
type Factory func(p config.ParameterSet) backtest.SignalSource

var registry = map[string]Factory{
	"rrs": func(p config.ParameterSet) backtest.SignalSource { return NewRRS(p) },
	"noop": func(config.ParameterSet) backtest.SignalSource {
		return Noop{}
	},
}

func Register(name string, f Factory) {
	registry[strings.ToLower(name)] = f
}

// Names lists the registered strategies.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func ByName(name string, p config.ParameterSet) (backtest.SignalSource, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return f(p), nil
}

// Noop never signals.
type Noop struct{}

func (Noop) Signals(context.Context, time.Time, *market.Dataset) ([]backtest.Signal, error) {
	return nil, nil
}
