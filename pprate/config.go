package pprate

import "fmt"

// Default values of the estimator tunables.
const (
	// DefaultMergeThreshold is the valley depth, relative to the height of
	// the neighbouring peak, below which two adjacent modes are merged by
	// the forward cleaning pass.
	DefaultMergeThreshold = 0.20

	// DefaultEliminationThreshold is the height, relative to the tallest
	// peak, below which a peak is discarded. The backward cleaning pass
	// uses it as its merge threshold as well.
	DefaultEliminationThreshold = 0.15

	// DefaultUnimodalTolerance is the ratio between the height of the right
	// bound and the height of the peak that delimits a lone mode.
	DefaultUnimodalTolerance = 0.01

	// DefaultMinTrainModeHeight is the minimum height of the phase 2 mode
	// for the refinement loop to be considered converged.
	DefaultMinTrainModeHeight = 15

	// DefaultMaxBins caps the number of histogram bins.
	DefaultMaxBins = 1000

	// DefaultMinTrainStep and DefaultMaxTrainStep bound the train lengths
	// tried by the refinement loop. A train of length step spans step-1
	// packet transmissions.
	DefaultMinTrainStep = 3
	DefaultMaxTrainStep = 39

	// DefaultTrainPacketSize is the packet size, in bytes, assumed for
	// trains when packet sizes vary (the Ethernet MSS).
	DefaultTrainPacketSize = 1460

	// DefaultResolutionFactor is the fraction of the IQR used as histogram
	// resolution.
	DefaultResolutionFactor = 0.05
)

// Config contains the estimator tunables.
type Config struct {
	MergeThreshold       float64
	EliminationThreshold float64
	UnimodalTolerance    float64
	MinTrainModeHeight   int
	MaxBins              int
	MinTrainStep         int
	MaxTrainStep         int
	TrainPacketSize      int
	ResolutionFactor     float64

	// Verbose enables debug logging of the intermediate results. It never
	// changes the estimate.
	Verbose bool
}

// DefaultConfig returns the configuration with all the default values.
func DefaultConfig() Config {
	return Config{
		MergeThreshold:       DefaultMergeThreshold,
		EliminationThreshold: DefaultEliminationThreshold,
		UnimodalTolerance:    DefaultUnimodalTolerance,
		MinTrainModeHeight:   DefaultMinTrainModeHeight,
		MaxBins:              DefaultMaxBins,
		MinTrainStep:         DefaultMinTrainStep,
		MaxTrainStep:         DefaultMaxTrainStep,
		TrainPacketSize:      DefaultTrainPacketSize,
		ResolutionFactor:     DefaultResolutionFactor,
	}
}

// Validate returns an error wrapping ErrInvalidInput if any of the
// tunables is out of range.
func (c Config) Validate() error {
	switch {
	case c.MergeThreshold < 0 || c.MergeThreshold > 1:
		return fmt.Errorf("%w: merge threshold %v not in [0, 1]", ErrInvalidInput, c.MergeThreshold)
	case c.EliminationThreshold < 0 || c.EliminationThreshold > 1:
		return fmt.Errorf("%w: elimination threshold %v not in [0, 1]", ErrInvalidInput, c.EliminationThreshold)
	case c.UnimodalTolerance <= 0 || c.UnimodalTolerance >= 1:
		return fmt.Errorf("%w: unimodal tolerance %v not in (0, 1)", ErrInvalidInput, c.UnimodalTolerance)
	case c.MinTrainModeHeight < 1:
		return fmt.Errorf("%w: min train mode height %d < 1", ErrInvalidInput, c.MinTrainModeHeight)
	case c.MaxBins < 1:
		return fmt.Errorf("%w: max bins %d < 1", ErrInvalidInput, c.MaxBins)
	case c.MinTrainStep < 2 || c.MaxTrainStep < c.MinTrainStep:
		return fmt.Errorf("%w: train steps [%d, %d]", ErrInvalidInput, c.MinTrainStep, c.MaxTrainStep)
	case c.TrainPacketSize <= 0:
		return fmt.Errorf("%w: train packet size %d", ErrInvalidInput, c.TrainPacketSize)
	case c.ResolutionFactor <= 0:
		return fmt.Errorf("%w: resolution factor %v", ErrInvalidInput, c.ResolutionFactor)
	}
	return nil
}
