package pprate

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/floats"
)

const gap = 0.0001 // 1500 bytes every 100us is 120 Mbit/s

// triangle returns gaps around gap whose rates form a bell.
func triangle() []float64 {
	var iats []float64
	for r := 0; r < 8; r++ {
		for k := -7; k <= 7; k++ {
			if r < 8-abs(k) {
				iats = append(iats, gap*(1+0.0005*float64(k)))
			}
		}
	}
	return iats
}

// crossTraffic returns n gaps where a cross traffic packet delays every
// third probe.
func crossTraffic(n int) []float64 {
	iats := make([]float64, n)
	for i := range iats {
		iats[i] = gap
		if i%3 == 0 {
			iats[i] = 2.1 * gap
		}
	}
	return iats
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func sizes(size, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = size
	}
	return out
}

// checkRange verifies that the estimate is within half a bin of the
// trimmed samples.
func checkRange(t *testing.T, in Input, r *Result) {
	t.Helper()
	rates, _, err := prepare(in)
	if err != nil {
		t.Fatal(err)
	}
	trimmed, err := trim(rates)
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := floats.Min(trimmed), floats.Max(trimmed)
	if r.Capacity < lo-r.Resolution/2 || r.Capacity > hi+r.Resolution/2 {
		t.Errorf("capacity %v not within [%v, %v] +/- %v", r.Capacity, lo, hi, r.Resolution/2)
	}
}

func TestEstimate_constantGaps(t *testing.T) {
	iats := repeat(gap, 50)
	r, err := EstimateConstant(iats, 1500, DefaultConfig())
	if err != nil {
		t.Fatalf("EstimateConstant() error = %v", err)
	}
	if want := float64(12000) / iats[0]; r.Capacity != want {
		t.Errorf("EstimateConstant() = %v, want %v", r.Capacity, want)
	}
	if r.Phase != PhaseUnimodal || r.Confidence != ConfidenceHigh {
		t.Errorf("EstimateConstant() phase = %s/%s", r.Phase, r.Confidence)
	}
}

func TestEstimate_singleSample(t *testing.T) {
	iats := []float64{0, gap, 0}
	r1, err := EstimateConstant(iats, 1500, DefaultConfig())
	if err != nil {
		t.Fatalf("EstimateConstant() error = %v", err)
	}
	r2, err := EstimateConstant(iats, 1500, DefaultConfig())
	if err != nil {
		t.Fatalf("EstimateConstant() error = %v", err)
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Errorf("EstimateConstant() not deterministic: %+v vs %+v", r1, r2)
	}
	if want := float64(12000) / gap; r1.Capacity != want || r1.Samples != 1 {
		t.Errorf("EstimateConstant() = %v from %d samples, want %v from 1", r1.Capacity, r1.Samples, want)
	}
}

func TestEstimate_outliers(t *testing.T) {
	iats := triangle()
	clean, err := EstimateConstant(iats, 1500, DefaultConfig())
	if err != nil {
		t.Fatalf("EstimateConstant() error = %v", err)
	}
	if clean.Phase != PhaseUnimodal {
		t.Fatalf("EstimateConstant() phase = %s, want %s", clean.Phase, PhaseUnimodal)
	}
	if math.Abs(clean.Capacity-120e6) > clean.Resolution {
		t.Errorf("EstimateConstant() = %v, want 120e6 +/- %v", clean.Capacity, clean.Resolution)
	}
	checkRange(t, Input{IATs: iats, Size: 1500}, clean)

	// Rates 100x the median.
	noisy := append([]float64{1e-6}, iats...)
	noisy = append(noisy, 2e-6, 1.5e-6)
	r, err := EstimateConstant(noisy, 1500, DefaultConfig())
	if err != nil {
		t.Fatalf("EstimateConstant() error = %v", err)
	}
	if math.Abs(r.Capacity-clean.Capacity) > clean.Resolution {
		t.Errorf("outliers moved the estimate from %v to %v", clean.Capacity, r.Capacity)
	}
	if r.Samples != len(noisy) || r.Trimmed != len(iats) {
		t.Errorf("EstimateConstant() trimmed %d of %d samples", r.Samples-r.Trimmed, r.Samples)
	}
}

func TestEstimate_idempotent(t *testing.T) {
	iats := crossTraffic(200)
	r1, err := EstimateConstant(iats, 1500, DefaultConfig())
	if err != nil {
		t.Fatalf("EstimateConstant() error = %v", err)
	}
	r2, err := EstimateConstant(iats, 1500, DefaultConfig())
	if err != nil {
		t.Fatalf("EstimateConstant() error = %v", err)
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Errorf("EstimateConstant() = %+v then %+v", r1, r2)
	}
}

func TestEstimate_scaling(t *testing.T) {
	iats := triangle()
	r1, err := EstimateVariable(iats, sizes(1500, len(iats)), DefaultConfig())
	if err != nil {
		t.Fatalf("EstimateVariable() error = %v", err)
	}
	r2, err := EstimateVariable(iats, sizes(3000, len(iats)), DefaultConfig())
	if err != nil {
		t.Fatalf("EstimateVariable() error = %v", err)
	}
	if r2.Capacity != 2*r1.Capacity {
		t.Errorf("doubling sizes gave %v, want %v", r2.Capacity, 2*r1.Capacity)
	}
	if r1.Samples != len(iats)-1 {
		t.Errorf("EstimateVariable() used %d samples, want %d", r1.Samples, len(iats)-1)
	}
}

func TestEstimate_converged(t *testing.T) {
	iats := crossTraffic(200)
	r, err := EstimateConstant(iats, 1500, DefaultConfig())
	if err != nil {
		t.Fatalf("EstimateConstant() error = %v", err)
	}
	if len(r.Modes) != 2 {
		t.Fatalf("EstimateConstant() found modes %+v, want 2", r.Modes)
	}
	if r.Phase != PhaseConverged || r.Confidence != ConfidenceHigh || r.Step != 3 {
		t.Errorf("EstimateConstant() = %s/%s at step %d, want converged at step 3", r.Phase, r.Confidence, r.Step)
	}
	if r.Selected != r.Modes[1] {
		t.Errorf("EstimateConstant() selected %+v, want %+v", r.Selected, r.Modes[1])
	}
	if math.Abs(r.Capacity-120e6) > r.Resolution {
		t.Errorf("EstimateConstant() = %v, want 120e6 +/- %v", r.Capacity, r.Resolution)
	}
	// Trains of two gaps out of three: 2 packets in 3.1 gaps.
	if math.Abs(r.ADR-2*12000/(3.1*gap)) > r.Resolution {
		t.Errorf("EstimateConstant() ADR = %v", r.ADR)
	}
	checkRange(t, Input{IATs: iats, Size: 1500}, r)

	cfg := DefaultConfig()
	cfg.Verbose = true
	verbose, err := EstimateConstant(iats, 1500, cfg)
	if err != nil {
		t.Fatalf("EstimateConstant() error = %v", err)
	}
	if !reflect.DeepEqual(r, verbose) {
		t.Errorf("verbose estimate %+v differs from %+v", verbose, r)
	}
}

func TestEstimate_fallback(t *testing.T) {
	// Too few packets for any train mode to be significant.
	iats := crossTraffic(40)
	r, err := EstimateConstant(iats, 1500, DefaultConfig())
	if err != nil {
		t.Fatalf("EstimateConstant() error = %v", err)
	}
	if r.Phase != PhaseFallback || r.Confidence != ConfidenceLow {
		t.Errorf("EstimateConstant() = %s/%s, want fallback/low", r.Phase, r.Confidence)
	}
	if len(r.Modes) != 2 || r.Selected != r.Modes[1] {
		t.Errorf("EstimateConstant() selected %+v among %+v, want the tallest", r.Selected, r.Modes)
	}
	checkRange(t, Input{IATs: iats, Size: 1500}, r)
}

func TestEstimate_subnormalGap(t *testing.T) {
	r, err := EstimateConstant([]float64{5e-324, gap, gap, gap}, 1500, DefaultConfig())
	if err != nil {
		t.Fatalf("EstimateConstant() error = %v", err)
	}
	if want := float64(12000) / gap; r.Capacity != want {
		t.Errorf("EstimateConstant() capacity = %v, want %v", r.Capacity, want)
	}
	if math.IsInf(r.Resolution, 0) || math.IsNaN(r.Resolution) {
		t.Errorf("EstimateConstant() resolution = %v", r.Resolution)
	}
}

func TestEstimate_congestionNoise(t *testing.T) {
	// Queueing delay spreads a few gaps to five times the bottleneck
	// spacing. They are trimmed as outliers.
	iats := append(repeat(gap, 50), repeat(5*gap, 5)...)
	in := Input{IATs: iats, Size: 1500}
	r, err := Estimate(in, DefaultConfig())
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if r.Phase != PhaseUnimodal {
		t.Errorf("Estimate() phase = %v, want %v", r.Phase, PhaseUnimodal)
	}
	if math.Abs(r.Capacity-120e6) > r.Resolution {
		t.Errorf("Estimate() capacity = %v, want 120e6 +/- %v", r.Capacity, r.Resolution)
	}
	checkRange(t, in, r)
}

func TestEstimate_errors(t *testing.T) {
	bad := DefaultConfig()
	bad.MaxBins = 0
	tests := []struct {
		name      string
		in        Input
		cfg       Config
		wantErr   error
		estimable bool
	}{
		{
			name:      "only-zeroes",
			in:        Input{IATs: []float64{0, 0}, Size: 1500},
			cfg:       DefaultConfig(),
			wantErr:   ErrEmptySample,
			estimable: true,
		},
		{
			name:    "bad-config",
			in:      Input{IATs: []float64{gap}, Size: 1500},
			cfg:     bad,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "mismatched-sizes",
			in:      Input{IATs: []float64{gap, gap}, Sizes: []int{1500}},
			cfg:     DefaultConfig(),
			wantErr: ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Estimate(tt.in, tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Estimate() error = %v, want %v", err, tt.wantErr)
			}
			if IsEstimationError(err) != tt.estimable {
				t.Errorf("IsEstimationError(%v) = %t", err, !tt.estimable)
			}
		})
	}
}

func Test_trainRates(t *testing.T) {
	got := trainRates([]float64{1, 1, 5, 2, 2, 5, 3}, 3, 8)
	want := []float64{8, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("trainRates() = %v, want %v", got, want)
	}
	if got := trainRates([]float64{1, 1}, 3, 8); len(got) != 0 {
		t.Errorf("trainRates() = %v, want none", got)
	}
}

func Test_converged(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name  string
		modes []Mode
		want  bool
	}{
		{
			name:  "height-at-minimum",
			modes: []Mode{{Height: DefaultMinTrainModeHeight, Peak: 3, Left: 0, Right: 6}},
			want:  true,
		},
		{
			name:  "height-below-minimum",
			modes: []Mode{{Height: DefaultMinTrainModeHeight - 1, Peak: 3, Left: 0, Right: 6}},
			want:  false,
		},
		{
			name: "two-modes",
			modes: []Mode{
				{Height: 40, Peak: 2, Left: 0, Right: 4},
				{Height: 20, Peak: 7, Left: 5, Right: 9},
			},
			want: false,
		},
		{
			name: "no-modes",
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := converged(tt.modes, cfg); got != tt.want {
				t.Errorf("converged() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_selectMode(t *testing.T) {
	modes := []Mode{
		{Height: 10, Peak: 5},
		{Height: 20, Peak: 10},
		{Height: 15, Peak: 20},
	}
	tests := []struct {
		bound int
		want  Mode
	}{
		{bound: 0, want: modes[1]},
		{bound: 8, want: modes[1]},
		{bound: 12, want: modes[2]},
		{bound: 25, want: modes[2]},
	}
	for _, tt := range tests {
		if got := selectMode(modes, tt.bound); got != tt.want {
			t.Errorf("selectMode(%d) = %+v, want %+v", tt.bound, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
	for name, mutate := range map[string]func(*Config){
		"merge":     func(c *Config) { c.MergeThreshold = 1.5 },
		"eliminate": func(c *Config) { c.EliminationThreshold = -0.1 },
		"tolerance": func(c *Config) { c.UnimodalTolerance = 1 },
		"height":    func(c *Config) { c.MinTrainModeHeight = 0 },
		"steps":     func(c *Config) { c.MinTrainStep, c.MaxTrainStep = 10, 5 },
		"train":     func(c *Config) { c.TrainPacketSize = 0 },
		"factor":    func(c *Config) { c.ResolutionFactor = 0 },
	} {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Validate() with bad %s = %v", name, err)
		}
	}
}
