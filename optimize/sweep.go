package optimize

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rustyeddy/swingsim/backtest"
	"github.com/rustyeddy/swingsim/config"
	"github.com/rustyeddy/swingsim/market"
	"github.com/rustyeddy/swingsim/metrics"
	"github.com/rustyeddy/swingsim/strategies"
	"go.uber.org/zap"
)

// RunFunc runs one backtest for p over [start, end]. Zero bounds are open.
// It must not share mutable state between calls.
type RunFunc func(ctx context.Context, p config.ParameterSet, start, end time.Time) (*backtest.Result, error)

// EngineRunner builds a fresh Engine and signal source for every call.
func EngineRunner(data *market.Dataset, factory strategies.Factory, base backtest.Settings, log *zap.Logger) RunFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, p config.ParameterSet, start, end time.Time) (*backtest.Result, error) {
		s := base
		s.Params = p
		if !start.IsZero() {
			s.Start = start
		}
		if !end.IsZero() {
			s.End = end
		}
		e, err := backtest.NewEngine(data, factory(p), s, backtest.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return e.Run(ctx)
	}
}

// Trial is one parameter set's outcome.
type Trial struct {
	Index   int                 `json:"index"`
	Params  config.ParameterSet `json:"params"`
	Metrics metrics.Summary     `json:"metrics"`
	Score   float64             `json:"score"`
	Rank    int                 `json:"rank"`
	Err     error               `json:"-"`

	Result *backtest.Result `json:"-"`
}

func (t Trial) Failed() bool { return t.Err != nil }

type Options struct {
	Workers int
	Scorer  Scorer
	Start   time.Time
	End     time.Time

	// Progress is called after each trial from a single goroutine.
	Progress func(done, total int)
	Logger   *zap.Logger
}

func (o Options) workers(n int) int {
	w := o.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > n {
		w = n
	}
	return w
}

// Sweep runs every parameter set on a worker pool. A failed trial keeps
// its error and scores 0; it does not stop the sweep. Cancelling ctx
// abandons the sweep and returns ctx's error. Trials come back sorted by
// score, best first, with ranks from 1.
func Sweep(ctx context.Context, run RunFunc, sets []config.ParameterSet, opts Options) ([]Trial, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("optimize: no parameter sets")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Scorer == (Scorer{}) {
		opts.Scorer = NewScorer()
	}

	jobs := make(chan int)
	results := make(chan Trial)

	var wg sync.WaitGroup
	for w := 0; w < opts.workers(len(sets)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- runTrial(ctx, run, i, sets[i], opts, log)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range sets {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	trials := make([]Trial, 0, len(sets))
	for t := range results {
		trials = append(trials, t)
		if opts.Progress != nil {
			opts.Progress(len(trials), len(sets))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	Rank(trials)
	log.Info("sweep complete", zap.Int("trials", len(trials)), zap.Float64("best_score", trials[0].Score))
	return trials, nil
}

func runTrial(ctx context.Context, run RunFunc, i int, p config.ParameterSet, opts Options, log *zap.Logger) Trial {
	t := Trial{Index: i, Params: p}
	res, err := run(ctx, p, opts.Start, opts.End)
	if err != nil {
		t.Err = err
		if ctx.Err() == nil {
			log.Warn("trial failed", zap.Int("trial", i), zap.String("params", p.String()), zap.Error(err))
		}
		return t
	}
	t.Result = res
	t.Metrics = res.Metrics
	t.Score = opts.Scorer.Score(res.Metrics)
	return t
}

// Rank sorts trials best first and numbers them. Failed trials sort last;
// ties keep grid order.
func Rank(trials []Trial) {
	sort.SliceStable(trials, func(i, j int) bool {
		a, b := trials[i], trials[j]
		if a.Failed() != b.Failed() {
			return !a.Failed()
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Index < b.Index
	})
	for i := range trials {
		trials[i].Rank = i + 1
	}
}

// Recommend picks the best trial with at least minTrades trades and a max
// drawdown of at most maxDDPct percent. If none qualifies it falls back to
// the best successful trial. ok is false when every trial failed.
func Recommend(trials []Trial, minTrades int, maxDDPct float64) (p config.ParameterSet, ok bool) {
	var best *Trial
	for i := range trials {
		t := &trials[i]
		if t.Failed() {
			continue
		}
		if best == nil || better(*t, *best) {
			best = t
		}
	}
	if best == nil {
		return config.ParameterSet{}, false
	}

	var pick *Trial
	for i := range trials {
		t := &trials[i]
		if t.Failed() || t.Metrics.TotalTrades < minTrades || t.Metrics.MaxDrawdownPct > maxDDPct {
			continue
		}
		if pick == nil || better(*t, *pick) {
			pick = t
		}
	}
	if pick == nil {
		return best.Params, true
	}
	return pick.Params, true
}

func better(a, b Trial) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Index < b.Index
}
