package pprate

import (
	"fmt"
	"math"
)

// Input contains the measured inter-arrival times and the packet sizes.
// When Sizes is nil every packet is Size bytes long, otherwise Sizes[i] is
// the size in bytes of the packet that arrived IATs[i] seconds after the
// previous one.
type Input struct {
	IATs  []float64
	Size  int
	Sizes []int
}

// Variable reports whether the input carries per-packet sizes.
func (in Input) Variable() bool {
	return in.Sizes != nil
}

// validIAT reports whether the gap is usable. Zero means the dispersion
// could not be measured.
func validIAT(iat float64) bool {
	return iat > 0 && !math.IsInf(iat, 1)
}

// validIATs returns the usable inter-arrival times, in order.
func validIATs(iats []float64) []float64 {
	out := make([]float64, 0, len(iats))
	for _, iat := range iats {
		if validIAT(iat) {
			out = append(out, iat)
		}
	}
	return out
}

// removeZeroes returns the non-zero samples, in order.
func removeZeroes(samples []float64) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s != 0 {
			out = append(out, s)
		}
	}
	return out
}

// prepare converts the input into packet pair rates in bits/second. It
// also returns the valid inter-arrival times used for the trains.
func prepare(in Input) ([]float64, []float64, error) {
	iats := validIATs(in.IATs)
	var rates []float64
	if !in.Variable() {
		if in.Size <= 0 {
			return nil, nil, fmt.Errorf("%w: packet size %d", ErrInvalidInput, in.Size)
		}
		bits := 8 * float64(in.Size)
		rates = make([]float64, 0, len(iats))
		for _, iat := range iats {
			// Subnormal gaps overflow.
			if r := bits / iat; !math.IsInf(r, 1) {
				rates = append(rates, r)
			}
		}
	} else {
		if len(in.Sizes) != len(in.IATs) {
			return nil, nil, fmt.Errorf(
				"%w: %d sizes for %d inter-arrival times", ErrInvalidInput, len(in.Sizes), len(in.IATs))
		}
		rates = pairRates(in.IATs, in.Sizes)
	}
	if len(rates) == 0 {
		return nil, nil, fmt.Errorf("prepare: %w", ErrEmptySample)
	}
	return rates, iats, nil
}

// pairRates only uses adjacent packets of equal size, the only ones that
// form a valid packet pair.
func pairRates(iats []float64, sizes []int) []float64 {
	var rates []float64
	for i := 1; i < len(iats); i++ {
		if !validIAT(iats[i]) || sizes[i] <= 0 || sizes[i] != sizes[i-1] {
			continue
		}
		if r := 8 * float64(sizes[i]) / iats[i]; !math.IsInf(r, 1) {
			rates = append(rates, r)
		}
	}
	return rates
}
