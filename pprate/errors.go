package pprate

import "errors"

var (
	// ErrEmptySample is returned when no rate sample survives the removal
	// of invalid inter-arrival times or the IQR trimming.
	ErrEmptySample = errors.New("no valid rate samples")

	// ErrNoModeDetected is returned when the phase 1 histogram has no local
	// maximum (e.g. a flat histogram).
	ErrNoModeDetected = errors.New("no mode detected")

	// ErrInvalidInput is returned for inconsistent inputs or configurations.
	ErrInvalidInput = errors.New("invalid input")
)
