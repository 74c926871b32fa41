package trace

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// csvRow is one line of a tshark export made with
//
//	tshark -T fields -E header=y -E separator=, -e frame.time_epoch \
//	    -e ip.src -e ip.dst -e ip.len [-e tcp.len -e tcp.flags.ack]
type csvRow struct {
	Time   string `csv:"frame.time_epoch"`
	Src    string `csv:"ip.src"`
	Dst    string `csv:"ip.dst"`
	Length string `csv:"ip.len"`
	TCPLen string `csv:"tcp.len"`
	Ack    string `csv:"tcp.flags.ack"`
}

// epoch parses a decimal timestamp into whole seconds and nanoseconds,
// keeping the precision a float64 of the whole value would lose.
func epoch(s string) (int64, int64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	sec, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, 0, err
	}
	if len(frac) > 9 {
		frac = frac[:9]
	}
	var nsec int64
	if frac != "" {
		nsec, err = strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil {
			return 0, 0, err
		}
	}
	return sec, nsec, nil
}

// ReadCSV reads a tshark field export. Rows without IP addresses are
// skipped, and so are TCP segments without payload when the tcp.len
// column is present.
func ReadCSV(r io.Reader) ([]Flow, error) {
	var rows []csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	var packets []packet
	var sec0, nsec0 int64
	for i, row := range rows {
		if row.Src == "" || row.Dst == "" || strings.TrimSpace(row.TCPLen) == "0" {
			continue
		}
		sec, nsec, err := epoch(row.Time)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad frame.time_epoch %q: %w", i+2, row.Time, err)
		}
		// Multiple values show up for tunnelled packets: the outer header
		// comes first.
		first, _, _ := strings.Cut(row.Length, ",")
		size, err := strconv.Atoi(strings.TrimSpace(first))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad ip.len %q: %w", i+2, row.Length, err)
		}
		if len(packets) == 0 {
			sec0, nsec0 = sec, nsec
		}
		packets = append(packets, packet{
			key:  Key{Src: row.Src, Dst: row.Dst},
			time: float64(sec-sec0) + float64(nsec-nsec0)/1e9,
			size: size,
		})
	}
	return group(packets)
}
