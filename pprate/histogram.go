package pprate

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Histogram contains the number of rate samples per bin. Bin b covers the
// rates in [b*Resolution, (b+1)*Resolution); the last bin is closed on
// the right.
type Histogram struct {
	// Resolution is the bin width in bits/second.
	Resolution float64

	// N is the number of bins.
	N int

	// Counts contains N per-bin occurrence counts.
	Counts []int

	// upper is the largest rate counted by the histogram.
	upper float64
}

// newHistogram sizes a histogram for the trimmed samples, which must be
// non-empty and positive, and fills it.
func newHistogram(trimmed []float64, cfg Config) *Histogram {
	top := floats.Max(trimmed)
	res := math.Floor(iqr(sorted(trimmed)) * cfg.ResolutionFactor)
	n := cfg.MaxBins
	if res == 0 {
		// Degenerate spread: fall back to a fixed number of bins.
		res = top / float64(n)
	} else if n = int(math.Ceil(top / res)); n > cfg.MaxBins {
		n = cfg.MaxBins
		res = top / float64(n)
	}
	h := &Histogram{
		Resolution: res,
		N:          n,
		upper:      math.Max(float64(n)*res, top),
	}
	h.fill(trimmed)
	return h
}

// with returns a histogram with the same bins filled with other samples.
func (h *Histogram) with(samples []float64) *Histogram {
	o := &Histogram{Resolution: h.Resolution, N: h.N, upper: h.upper}
	o.fill(samples)
	return o
}

func (h *Histogram) fill(samples []float64) {
	h.Counts = make([]int, h.N)
	for _, x := range samples {
		if x < 0 || x > h.upper {
			continue
		}
		b := int(x / h.Resolution)
		if b >= h.N {
			b = h.N - 1
		}
		h.Counts[b]++
	}
}

// Center returns the rate at the center of bin b.
func (h *Histogram) Center(b int) float64 {
	return (float64(b) + 0.5) * h.Resolution
}
