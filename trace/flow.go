// Package trace turns packet captures into per-flow inter-arrival time
// series. Captures are either tshark field exports (CSV) or pcap files.
package trace

import (
	"errors"
	"net/netip"
	"sort"
	"strings"
)

// ErrNoFlows means that the capture contained no usable IP packet.
var ErrNoFlows = errors.New("no flows in trace")

// Key identifies a flow by its IP endpoints.
type Key struct {
	Src string
	Dst string
}

func (k Key) String() string {
	return k.Src + "-" + k.Dst
}

// Flow contains the packets of one flow in arrival order. Timestamps are
// seconds since the first packet of the trace, Sizes are IP total lengths
// in bytes.
type Flow struct {
	Key
	Timestamps []float64
	Sizes      []int
}

// Series is the estimator input derived from a flow: IATs[i] separates
// the packet of Sizes[i] from the previous packet of the flow.
type Series struct {
	IATs  []float64
	Sizes []int
}

// Series computes the inter-arrival times of the flow. Gaps of maxIAT
// seconds or more are dropped along with their packet size, unless maxIAT
// is zero.
func (f *Flow) Series(maxIAT float64) Series {
	var s Series
	for i := 1; i < len(f.Timestamps); i++ {
		iat := f.Timestamps[i] - f.Timestamps[i-1]
		if maxIAT > 0 && iat >= maxIAT {
			continue
		}
		s.IATs = append(s.IATs, iat)
		s.Sizes = append(s.Sizes, f.Sizes[i])
	}
	return s
}

// Sample keeps every k-th inter-arrival time, starting with the first.
// A factor below two returns s unchanged.
func (s Series) Sample(k int) Series {
	if k < 2 {
		return s
	}
	var out Series
	for i := 0; i < len(s.IATs); i += k {
		out.IATs = append(out.IATs, s.IATs[i])
		out.Sizes = append(out.Sizes, s.Sizes[i])
	}
	return out
}

// packet is one captured packet as seen by the readers.
type packet struct {
	key  Key
	time float64
	size int
}

// group splits packets into flows sorted by key.
func group(packets []packet) ([]Flow, error) {
	index := make(map[Key]int)
	var flows []Flow
	for _, p := range packets {
		i, found := index[p.key]
		if !found {
			i = len(flows)
			index[p.key] = i
			flows = append(flows, Flow{Key: p.key})
		}
		flows[i].Timestamps = append(flows[i].Timestamps, p.time)
		flows[i].Sizes = append(flows[i].Sizes, p.size)
	}
	if len(flows) == 0 {
		return nil, ErrNoFlows
	}
	sort.SliceStable(flows, func(i, j int) bool {
		if c := compareAddr(flows[i].Src, flows[j].Src); c != 0 {
			return c < 0
		}
		return compareAddr(flows[i].Dst, flows[j].Dst) < 0
	})
	return flows, nil
}

// compareAddr orders addresses numerically. Strings that are not IP
// addresses compare as text.
func compareAddr(a, b string) int {
	x, errx := netip.ParseAddr(a)
	y, erry := netip.ParseAddr(b)
	if errx != nil || erry != nil {
		return strings.Compare(a, b)
	}
	return x.Compare(y)
}
