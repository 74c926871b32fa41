package pprate

import (
	"errors"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/m-lab/pprate/logging"
)

// Phase tells how the estimate was obtained.
type Phase string

const (
	// PhaseUnimodal means that phase 1 found a single mode.
	PhaseUnimodal = Phase("unimodal")

	// PhaseConverged means that phase 2 converged to a single train mode
	// that selected one of the phase 1 modes.
	PhaseConverged = Phase("converged")

	// PhaseFallback means that phase 2 did not converge and the tallest
	// phase 1 mode was used.
	PhaseFallback = Phase("fallback")
)

// Confidence qualifies an estimate.
type Confidence string

const (
	ConfidenceHigh = Confidence("high")
	ConfidenceLow  = Confidence("low")
)

// Result is the outcome of an estimation.
type Result struct {
	// Capacity is the estimated bottleneck capacity in bits/second.
	Capacity float64

	// Resolution is the phase 1 bin width in bits/second.
	Resolution float64

	// Bins is the number of phase 1 bins.
	Bins int

	Phase      Phase
	Confidence Confidence

	// Modes are the cleaned phase 1 modes.
	Modes []Mode

	// Selected is the phase 1 mode the capacity comes from.
	Selected Mode

	// TrainModes are the cleaned modes of the last phase 2 step.
	TrainModes []Mode `json:",omitempty"`

	// Step is the train length phase 2 converged at.
	Step int `json:",omitempty"`

	// ADR is the asymptotic dispersion rate, in bits/second, measured by
	// the converged train mode.
	ADR float64 `json:",omitempty"`

	// Samples and Trimmed are the number of rate samples before and after
	// the IQR trimming.
	Samples int
	Trimmed int
}

// EstimateConstant estimates the capacity from packets of size bytes.
func EstimateConstant(iats []float64, size int, cfg Config) (*Result, error) {
	return Estimate(Input{IATs: iats, Size: size}, cfg)
}

// EstimateVariable estimates the capacity from packets whose sizes, in
// bytes, are given one per inter-arrival time.
func EstimateVariable(iats []float64, sizes []int, cfg Config) (*Result, error) {
	if sizes == nil {
		sizes = []int{}
	}
	return Estimate(Input{IATs: iats, Sizes: sizes}, cfg)
}

// Estimate runs the two phase estimation. It returns an error wrapping
// ErrEmptySample, ErrNoModeDetected or ErrInvalidInput on failure. Not
// converging in phase 2 is not an error: the result has low confidence.
func Estimate(in Input, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rates, iats, err := prepare(in)
	if err != nil {
		return nil, err
	}
	trimmed, err := trim(rates)
	if err != nil {
		return nil, err
	}
	hist := newHistogram(trimmed, cfg)
	logger := diagnostics(cfg)
	if cfg.Verbose {
		mean, std := stat.MeanStdDev(trimmed, nil)
		logger.WithFields(log.Fields{
			"resolution": humanize.SI(hist.Resolution, "bps"),
			"bins":       hist.N,
			"samples":    len(rates),
			"trimmed":    len(trimmed),
			"mean":       humanize.SI(mean, "bps"),
			"stddev":     humanize.SI(std, "bps"),
		}).Debug("pprate: phase 1: mode estimation using packet pairs")
	}

	modes, err := detectModes(hist.Counts)
	if err != nil {
		logger.WithError(err).Debug("pprate: could not detect modes")
		return nil, err
	}
	modes = cleanModes(hist.Counts, modes, cfg)
	result := &Result{
		Resolution: hist.Resolution,
		Bins:       hist.N,
		Confidence: ConfidenceHigh,
		Modes:      modes,
		Samples:    len(rates),
		Trimmed:    len(trimmed),
	}

	if len(modes) == 1 {
		logger.Debug("pprate: weak noise")
		result.Phase = PhaseUnimodal
		result.Selected = modes[0]
		result.Capacity = hist.Center(modes[0].Peak)
		if lo, hi := floats.Min(trimmed), floats.Max(trimmed); lo == hi {
			// No spread: the histogram can only blur the common value.
			result.Capacity = lo
		}
		return result, nil
	}

	logger.WithField("modes", len(modes)).Debug("pprate: phase 2: estimating ADR")
	size := in.Size
	if in.Variable() {
		size = cfg.TrainPacketSize
	}
	train, ok := refine(iats, 8*float64(size), hist, cfg, result)
	if !ok {
		logger.Debug("pprate: phase 2 did not lead to an unimodal distribution")
		result.Phase = PhaseFallback
		result.Confidence = ConfidenceLow
		result.Selected = modes[tallestMode(modes)]
		result.Capacity = hist.Center(result.Selected.Peak)
		return result, nil
	}
	result.Phase = PhaseConverged
	result.ADR = hist.Center(train.Peak)
	result.Selected = selectMode(modes, train.Right)
	result.Capacity = hist.Center(result.Selected.Peak)
	logger.WithFields(log.Fields{
		"adr":  humanize.SI(result.ADR, "bps"),
		"step": result.Step,
	}).Debug("pprate: ADR estimate")
	return result, nil
}

// trainRates splits the inter-arrival times into consecutive chunks of
// step gaps and returns the rate of the train spanning the first step-1
// gaps of each chunk.
func trainRates(iats []float64, step int, bits float64) []float64 {
	n := len(iats) / step
	rates := make([]float64, 0, n)
	for j := 0; j < n; j++ {
		gap := floats.Sum(iats[j*step : j*step+step-1])
		rates = append(rates, float64(step-1)*bits/gap)
	}
	return rates
}

// refine runs phase 2 with increasing train lengths until the train rates
// have a single significant mode. It records the steps in result and
// returns the train mode on convergence.
func refine(iats []float64, bits float64, hist *Histogram, cfg Config, result *Result) (Mode, bool) {
	logger := diagnostics(cfg)
	for step := cfg.MinTrainStep; step <= cfg.MaxTrainStep; step++ {
		rates := trainRates(iats, step, bits)
		if len(rates) == 0 {
			// Longer trains cannot do better.
			break
		}
		th := hist.with(rates)
		modes, err := detectModes(th.Counts)
		if err != nil {
			logger.WithError(err).WithField("step", step).Debug("pprate: no train mode")
			continue
		}
		modes = cleanModes(th.Counts, modes, cfg)
		result.TrainModes = modes
		if converged(modes, cfg) {
			result.Step = step
			return modes[0], true
		}
	}
	return Mode{}, false
}

// converged reports whether the train modes settled on a single mode
// holding at least MinTrainModeHeight trains.
func converged(modes []Mode, cfg Config) bool {
	return len(modes) == 1 && modes[0].Height >= cfg.MinTrainModeHeight
}

// selectMode picks the tallest mode not slower than the ADR bound or,
// when all modes are slower, the fastest of them.
func selectMode(modes []Mode, bound int) Mode {
	best := -1
	for i, m := range modes {
		if m.Peak >= bound && (best < 0 || m.Height > modes[best].Height) {
			best = i
		}
	}
	if best >= 0 {
		return modes[best]
	}
	for i := len(modes) - 1; i >= 0; i-- {
		if modes[i].Peak <= bound {
			return modes[i]
		}
	}
	// Unreachable: some mode is either at or above or below the bound.
	return modes[0]
}

func tallestMode(modes []Mode) int {
	id := 0
	for i := range modes {
		if modes[i].Height > modes[id].Height {
			id = i
		}
	}
	return id
}

// quiet drops the diagnostics of estimations that are not verbose.
var quiet = &log.Logger{Handler: discard.Default, Level: log.FatalLevel}

func diagnostics(cfg Config) log.Interface {
	if cfg.Verbose {
		return &logging.Logger
	}
	return quiet
}

// IsEstimationError reports whether err means that the input cannot be
// estimated, as opposed to an invalid request.
func IsEstimationError(err error) bool {
	return errors.Is(err, ErrEmptySample) || errors.Is(err, ErrNoModeDetected)
}
