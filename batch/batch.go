// Package batch estimates the capacity of every flow of a trace.
package batch

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/m-lab/pprate/logging"
	"github.com/m-lab/pprate/metrics"
	"github.com/m-lab/pprate/pprate"
	"github.com/m-lab/pprate/spec"
	"github.com/m-lab/pprate/trace"
)

// Config controls how flows are turned into estimates.
type Config struct {
	Estimator pprate.Config

	// Size is the constant packet size in bytes. It is ignored when
	// Variable is set and the captured IP lengths are used instead.
	Size     int
	Variable bool

	// MaxIAT drops gaps of MaxIAT seconds or more, zero keeps all of them.
	MaxIAT float64

	// SamplingFactor keeps every SamplingFactor-th gap.
	SamplingFactor int

	// Parallelism bounds the number of concurrent estimations. Zero or
	// less means no bound.
	Parallelism int
}

// Outcome is the estimate of one flow. Err is set when the flow could not
// be estimated.
type Outcome struct {
	Flow   trace.Key
	IATs   int
	Result *pprate.Result
	Err    error

	// Expected and RelativeError are set by ApplyExpected.
	Expected      float64
	RelativeError float64
}

// estimate runs the estimator on one flow.
func estimate(f *trace.Flow, cfg Config) Outcome {
	s := f.Series(cfg.MaxIAT).Sample(cfg.SamplingFactor)
	out := Outcome{Flow: f.Key, IATs: len(s.IATs)}
	if cfg.Variable {
		out.Result, out.Err = pprate.EstimateVariable(s.IATs, s.Sizes, cfg.Estimator)
	} else {
		out.Result, out.Err = pprate.EstimateConstant(s.IATs, cfg.Size, cfg.Estimator)
	}
	if out.Err != nil {
		out.Err = fmt.Errorf("flow %s: %w", f.Key, out.Err)
	}
	return out
}

// Run estimates all flows and returns one outcome per flow, in the same
// order. A flow that cannot be estimated does not stop the others. Run
// only fails when ctx is canceled.
func Run(ctx context.Context, flows []trace.Flow, cfg Config) ([]Outcome, error) {
	outcomes := make([]Outcome, len(flows))
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Parallelism > 0 {
		g.SetLimit(cfg.Parallelism)
	}
	active := metrics.ActiveEstimations.WithLabelValues(string(spec.SourceTrace))
	for i := range flows {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			active.Inc()
			defer active.Dec()
			outcomes[i] = estimate(&flows[i], cfg)
			metrics.Observe(spec.SourceTrace, outcomes[i].Result, outcomes[i].Err)
			if outcomes[i].Err != nil {
				logging.Logger.WithError(outcomes[i].Err).Warn("batch: estimation failed")
				return nil
			}
			logging.Logger.WithFields(log.Fields{
				"flow":     flows[i].Key.String(),
				"capacity": humanize.SI(outcomes[i].Result.Capacity, "bps"),
				"phase":    outcomes[i].Result.Phase,
			}).Info("batch: estimated")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
