package optimize

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/swingsim/config"
	"go.uber.org/zap"
)

// Window is one walk-forward period. In-sample and out-of-sample ranges
// are adjacent and do not share a day.
type Window struct {
	Period   int       `json:"period"`
	InStart  time.Time `json:"in_sample_start"`
	InEnd    time.Time `json:"in_sample_end"`
	OutStart time.Time `json:"out_of_sample_start"`
	OutEnd   time.Time `json:"out_of_sample_end"`
}

// WalkForwardConfig sizes the windows in trading days. Step defaults to
// OutOfSampleDays.
type WalkForwardConfig struct {
	InSampleDays    int
	OutOfSampleDays int
	StepDays        int
	Periods         int
}

func WalkForwardFromConfig(c config.OptimizeConfig) WalkForwardConfig {
	return WalkForwardConfig{
		InSampleDays:    c.InSampleDays,
		OutOfSampleDays: c.OutOfSampleDays,
		StepDays:        c.WalkForwardStepDays,
		Periods:         c.WalkForwardPeriods,
	}
}

// Windows lays out up to Periods windows ending at the last trading day
// and stepping back StepDays at a time. They are returned oldest first.
func Windows(days []time.Time, c WalkForwardConfig) []Window {
	if c.InSampleDays <= 0 || c.OutOfSampleDays <= 0 || c.Periods <= 0 {
		return nil
	}
	step := c.StepDays
	if step <= 0 {
		step = c.OutOfSampleDays
	}
	total := c.InSampleDays + c.OutOfSampleDays

	var back []Window
	for p := 0; p < c.Periods; p++ {
		end := len(days) - p*step
		start := end - total
		if start < 0 {
			break
		}
		split := start + c.InSampleDays
		back = append(back, Window{
			InStart:  days[start],
			InEnd:    days[split-1],
			OutStart: days[split],
			OutEnd:   days[end-1],
		})
	}

	out := make([]Window, len(back))
	for i, w := range back {
		out[len(back)-1-i] = w
	}
	for i := range out {
		out[i].Period = i + 1
	}
	return out
}

// Period is the outcome of one window: the best in-sample trial and that
// parameter set's out-of-sample run.
type Period struct {
	Window
	Best        config.ParameterSet `json:"best_params"`
	InSample    Trial               `json:"in_sample"`
	OutOfSample Trial               `json:"out_of_sample"`
}

type WalkForwardResult struct {
	Periods        []Period `json:"periods"`
	Efficiency     float64  `json:"walk_forward_efficiency"`
	Interpretation string   `json:"interpretation"`
}

// Interpret labels a walk-forward efficiency.
func Interpret(eff float64) string {
	switch {
	case eff >= 0.8:
		return "excellent: robust out of sample"
	case eff >= 0.6:
		return "good: reasonable out-of-sample performance"
	case eff >= 0.4:
		return "fair: some overfitting"
	default:
		return "poor: significant overfitting"
	}
}

// WalkForward sweeps every window's in-sample range, reruns the winner on
// the following out-of-sample range, and reports efficiency as the sum of
// out-of-sample scores over the sum of in-sample scores. A window whose
// sweep or out-of-sample run fails is skipped.
func WalkForward(ctx context.Context, run RunFunc, sets []config.ParameterSet, days []time.Time, c WalkForwardConfig, opts Options) (*WalkForwardResult, error) {
	windows := Windows(days, c)
	if len(windows) == 0 {
		return nil, fmt.Errorf("optimize: %d trading days is too few for %d+%d day windows",
			len(days), c.InSampleDays, c.OutOfSampleDays)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Scorer == (Scorer{}) {
		opts.Scorer = NewScorer()
	}

	res := &WalkForwardResult{}
	var inSum, outSum float64
	for _, w := range windows {
		in := opts
		in.Start, in.End = w.InStart, w.InEnd
		trials, err := Sweep(ctx, run, sets, in)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			log.Warn("in-sample sweep failed", zap.Int("period", w.Period), zap.Error(err))
			continue
		}
		best := trials[0]
		if best.Failed() {
			log.Warn("no successful in-sample trial", zap.Int("period", w.Period))
			continue
		}

		out := Trial{Index: best.Index, Params: best.Params}
		r, err := run(ctx, best.Params, w.OutStart, w.OutEnd)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("out-of-sample run failed", zap.Int("period", w.Period), zap.Error(err))
			continue
		}
		out.Result = r
		out.Metrics = r.Metrics
		out.Score = opts.Scorer.Score(r.Metrics)
		out.Rank = 1

		res.Periods = append(res.Periods, Period{Window: w, Best: best.Params, InSample: best, OutOfSample: out})
		inSum += best.Score
		outSum += out.Score
		log.Info("walk-forward period",
			zap.Int("period", w.Period),
			zap.Float64("in_sample_score", best.Score),
			zap.Float64("out_of_sample_score", out.Score),
			zap.String("params", best.Params.String()))
	}

	if inSum > 0 {
		res.Efficiency = outSum / inSum
	}
	res.Interpretation = Interpret(res.Efficiency)
	return res, nil
}
