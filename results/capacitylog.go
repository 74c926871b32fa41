package results

import (
	"encoding/csv"
	"io"
	"math"

	"github.com/gocarina/gocsv"
)

// CapacityRow is one line of the capacity log. Capacities are in bits per
// second and Error is the relative error in percent.
type CapacityRow struct {
	Path      string  `csv:"path"`
	Estimated float64 `csv:"estimated"`
	Expected  float64 `csv:"expected"`
	Error     float64 `csv:"error"`
}

// RelativeError returns |expected - estimated| / expected in percent,
// rounded to two decimals. It returns zero when expected is not positive.
func RelativeError(estimated, expected float64) float64 {
	if expected <= 0 {
		return 0
	}
	return math.Round(math.Abs(expected-estimated)/expected*100*100) / 100
}

// WriteCapacityLog writes the header and rows to w, separated by
// semicolons.
func WriteCapacityLog(w io.Writer, rows []CapacityRow) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(cw))
}

// ReadCapacityLog parses a capacity log written by WriteCapacityLog.
func ReadCapacityLog(r io.Reader) ([]CapacityRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	var rows []CapacityRow
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
