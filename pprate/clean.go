package pprate

// candidate is a mode being cleaned. Merged modes are tombstoned and
// dropped by compact.
type candidate struct {
	Mode
	removed bool
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// tallest returns the index of the first candidate with the largest height.
func tallest(c []candidate) int {
	id := 0
	for i := range c {
		if c[i].Height > c[id].Height {
			id = i
		}
	}
	return id
}

// compact returns the candidates that have not been removed.
func compact(c []candidate) []candidate {
	out := make([]candidate, 0, len(c))
	for _, m := range c {
		if !m.removed {
			out = append(out, m)
		}
	}
	return out
}

// cleanModes discards the peaks that are too small and merges the peaks
// separated by shallow valleys. Merging walks away from the tallest mode
// in both directions and the absorbed mode extends the boundary of the
// nearest surviving one. A lone surviving mode gets its right bound moved
// to where the histogram falls to UnimodalTolerance of the peak.
func cleanModes(counts []int, modes []Mode, cfg Config) []Mode {
	h := func(b int) int {
		return counts[b]
	}
	c := make([]candidate, 0, len(modes))
	for _, m := range modes {
		c = append(c, candidate{Mode: m})
	}

	// Eliminate small peaks.
	alpha := cfg.EliminationThreshold * float64(c[tallest(c)].Height)
	for i := range c {
		c[i].removed = float64(c[i].Height) < alpha
	}
	c = compact(c)

	// Merge forward, from the tallest peak to the rightmost one.
	id := tallest(c)
	for i := id; i < len(c)-1; i++ {
		next := &c[i+1]
		hp := h(next.Peak)
		a := abs(hp - h(c[i].Right))
		b := a
		if i+2 < len(c) {
			b = abs(hp - h(next.Right))
		}
		if float64(minInt(a, b)) > cfg.MergeThreshold*float64(hp) {
			continue
		}
		next.removed = true
		for j := i; j >= id; j-- {
			if !c[j].removed {
				c[j].Right = next.Right
				break
			}
		}
	}
	c = compact(c)

	// Merge backward, from the tallest peak to the leftmost one.
	id = tallest(c)
	for i := id; i > 0; i-- {
		prev := &c[i-1]
		hp := h(prev.Peak)
		a := abs(hp - h(c[i].Left))
		var b int
		switch {
		case i-1 > 0:
			b = abs(hp - h(c[i-2].Right))
		case hp != h(prev.Left):
			b = abs(hp - h(prev.Left))
		default:
			b = h(prev.Left)
		}
		if float64(minInt(a, b)) > cfg.EliminationThreshold*float64(hp) {
			continue
		}
		prev.removed = true
		for j := i; j <= id; j++ {
			if !c[j].removed {
				c[j].Left = prev.Left
				break
			}
		}
	}
	c = compact(c)

	if len(c) == 1 {
		boundLoneMode(counts, &c[0].Mode, cfg.UnimodalTolerance)
	}
	out := make([]Mode, 0, len(c))
	for _, m := range c {
		out = append(out, m.Mode)
	}
	return out
}

// boundLoneMode moves the right bound of m one bin at a time until the
// height ratio between the bound and the peak crosses tol.
func boundLoneMode(counts []int, m *Mode, tol float64) {
	last := len(counts) - 1
	if m.Right > last {
		m.Right = last
	}
	ratio := func() float64 {
		return float64(counts[m.Right]) / float64(counts[m.Peak])
	}
	if ratio() > tol {
		for ratio() > tol && m.Right < last {
			m.Right++
		}
		return
	}
	// Terminates at the latest when Right reaches Peak.
	for ratio() < tol {
		m.Right--
	}
}
