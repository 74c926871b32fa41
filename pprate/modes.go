package pprate

import "fmt"

// Mode is a local maximum of a histogram with the basin around it.
type Mode struct {
	// Height is the number of samples in the peak bin.
	Height int

	// Peak is the bin of the local maximum.
	Peak int

	// Left and Right are the first and the last bin of the basin.
	Left  int
	Right int
}

// ascending marks the bins whose count is larger than the count of the
// previous bin. The bin before the first one counts as empty.
func ascending(counts []int) []bool {
	asc := make([]bool, len(counts))
	prev := 0
	for b, c := range counts {
		asc[b] = c > prev
		prev = c
	}
	return asc
}

// detectModes finds the peaks of the histogram counts, i.e. the bins where
// an ascending slope turns into a non-ascending one, and the basin of each
// peak: the ascending run to the left and the non-ascending run to the
// right. Returns the modes ordered by peak.
func detectModes(counts []int) ([]Mode, error) {
	asc := ascending(counts)
	n := len(asc)
	isAsc := func(b int) bool {
		return b >= 0 && b < n && asc[b]
	}
	var modes []Mode
	for b := 0; b < n; b++ {
		if !asc[b] || isAsc(b+1) {
			continue
		}
		left := b
		for isAsc(left - 1) {
			left--
		}
		right := b
		for right+1 < n && !asc[right+1] {
			right++
		}
		modes = append(modes, Mode{Height: counts[b], Peak: b, Left: left, Right: right})
	}
	if len(modes) == 0 {
		return nil, fmt.Errorf("detectModes: %w", ErrNoModeDetected)
	}
	return modes, nil
}
