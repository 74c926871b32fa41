package pprate

import (
	"fmt"
	"math"
	"sort"
)

func sorted(samples []float64) []float64 {
	s := make([]float64, len(samples))
	copy(s, samples)
	sort.Float64s(s)
	return s
}

// midpoint returns the p-th quantile of the sorted samples as the average
// of the two closest order statistics.
func midpoint(s []float64, p float64) float64 {
	h := float64(len(s)-1) * p
	return (s[int(math.Floor(h))] + s[int(math.Ceil(h))]) / 2
}

// linear returns the p-th quantile of the sorted samples interpolating
// linearly between the two closest order statistics.
func linear(s []float64, p float64) float64 {
	h := float64(len(s)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(s) {
		return s[i]
	}
	return s[i] + (h-lo)*(s[i+1]-s[i])
}

// iqr returns the inter-quartile range of the sorted samples.
func iqr(s []float64) float64 {
	return linear(s, 0.75) - linear(s, 0.25)
}

// trim removes the samples farther than one IQR from the quartiles.
func trim(samples []float64) ([]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("trim: %w", ErrEmptySample)
	}
	s := sorted(samples)
	spread := iqr(s)
	hi := midpoint(s, 0.75) + spread
	lo := midpoint(s, 0.25) - spread
	kept := make([]float64, 0, len(samples))
	for _, x := range samples {
		if x >= lo && x <= hi {
			kept = append(kept, x)
		}
	}
	kept = removeZeroes(kept)
	if len(kept) == 0 {
		return nil, fmt.Errorf("trim: %w", ErrEmptySample)
	}
	return kept, nil
}
