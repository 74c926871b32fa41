package metrics

import (
	"errors"

	"github.com/m-lab/pprate/pprate"
	"github.com/m-lab/pprate/spec"
)

// Observe records the outcome of one estimation.
func Observe(source spec.Source, r *pprate.Result, err error) {
	if err != nil {
		EstimateErrors.WithLabelValues(string(source), ErrorLabel(err)).Inc()
		return
	}
	EstimateCount.WithLabelValues(string(source), string(r.Phase), string(r.Confidence)).Inc()
	CapacityMbps.WithLabelValues(string(source)).Observe(r.Capacity / 1e6)
	SampleCount.WithLabelValues(string(source)).Observe(float64(r.Samples))
	if r.Phase == pprate.PhaseConverged {
		ConvergenceStep.Observe(float64(r.Step))
	}
}

// ErrorLabel maps an estimation error to a bounded set of label values.
func ErrorLabel(err error) string {
	switch {
	case errors.Is(err, pprate.ErrEmptySample):
		return "empty-sample"
	case errors.Is(err, pprate.ErrNoModeDetected):
		return "no-mode"
	case errors.Is(err, pprate.ErrInvalidInput):
		return "invalid-input"
	default:
		return "other"
	}
}
