package batch

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/m-lab/pprate/results"
)

// ReadExpected reads one assigned link capacity, in bits per second, per
// line. Blank lines and lines starting with # are skipped.
func ReadExpected(r io.Reader) ([]float64, error) {
	var caps []float64
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("line %d: bad capacity %q", n, line)
		}
		caps = append(caps, v)
	}
	return caps, scanner.Err()
}

// ExpectedCapacities returns the path capacity of the k-th flow, which is
// the narrowest of the first k assigned link capacities.
func ExpectedCapacities(assigned []float64) []float64 {
	out := make([]float64, len(assigned))
	for i, c := range assigned {
		out[i] = c
		if i > 0 && out[i-1] < c {
			out[i] = out[i-1]
		}
	}
	return out
}

// ApplyExpected sets the expected capacity and the relative error of the
// outcomes that have one.
func ApplyExpected(outcomes []Outcome, expected []float64) {
	for i := range outcomes {
		if i >= len(expected) {
			return
		}
		outcomes[i].Expected = expected[i]
		if outcomes[i].Err == nil {
			outcomes[i].RelativeError = results.RelativeError(outcomes[i].Result.Capacity, expected[i])
		}
	}
}

// CapacityRows returns the capacity log rows of the estimated flows.
func CapacityRows(outcomes []Outcome) []results.CapacityRow {
	var rows []results.CapacityRow
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		rows = append(rows, results.CapacityRow{
			Path:      o.Flow.String(),
			Estimated: o.Result.Capacity,
			Expected:  o.Expected,
			Error:     o.RelativeError,
		})
	}
	return rows
}
