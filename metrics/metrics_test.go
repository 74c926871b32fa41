package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/m-lab/go/prometheusx/promtest"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/m-lab/pprate/pprate"
	"github.com/m-lab/pprate/spec"
)

func TestErrorLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: fmt.Errorf("prepare: %w", pprate.ErrEmptySample), want: "empty-sample"},
		{err: pprate.ErrNoModeDetected, want: "no-mode"},
		{err: fmt.Errorf("%w: size 0", pprate.ErrInvalidInput), want: "invalid-input"},
		{err: errors.New("boom"), want: "other"},
	}
	for _, tt := range tests {
		if got := ErrorLabel(tt.err); got != tt.want {
			t.Errorf("ErrorLabel(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserve(t *testing.T) {
	r := &pprate.Result{
		Capacity:   120e6,
		Phase:      pprate.PhaseConverged,
		Confidence: pprate.ConfidenceHigh,
		Step:       3,
		Samples:    200,
	}
	ok := EstimateCount.WithLabelValues("test", "converged", "high")
	failed := EstimateErrors.WithLabelValues("test", "empty-sample")
	before, beforeErr := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	Observe(spec.Source("test"), r, nil)
	Observe(spec.Source("test"), nil, pprate.ErrEmptySample)

	if got := testutil.ToFloat64(ok) - before; got != 1 {
		t.Errorf("Observe() counted %v estimates, want 1", got)
	}
	if got := testutil.ToFloat64(failed) - beforeErr; got != 1 {
		t.Errorf("Observe() counted %v errors, want 1", got)
	}
}

func TestLintMetrics(t *testing.T) {
	ActiveEstimations.WithLabelValues("x")
	EstimateCount.WithLabelValues("x", "x", "x")
	EstimateErrors.WithLabelValues("x", "x")
	CapacityMbps.WithLabelValues("x")
	SampleCount.WithLabelValues("x")
	promtest.LintMetrics(t)
}
