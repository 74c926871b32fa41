package pprate

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func Test_prepare(t *testing.T) {
	tests := []struct {
		name      string
		in        Input
		wantRates []float64
		wantIATs  []float64
		wantErr   error
	}{
		{
			name:      "constant-size",
			in:        Input{IATs: []float64{0.5, 0.25}, Size: 100},
			wantRates: []float64{1600, 3200},
			wantIATs:  []float64{0.5, 0.25},
		},
		{
			name:      "constant-size-drops-invalid",
			in:        Input{IATs: []float64{0, 0.5, -1, math.NaN(), math.Inf(1), 0.25, 0}, Size: 100},
			wantRates: []float64{1600, 3200},
			wantIATs:  []float64{0.5, 0.25},
		},
		{
			name:      "constant-size-drops-overflowing-rates",
			in:        Input{IATs: []float64{5e-324, 0.5, 0.25}, Size: 1500},
			wantRates: []float64{24000, 48000},
			wantIATs:  []float64{5e-324, 0.5, 0.25},
		},
		{
			name:      "variable-size-drops-overflowing-rates",
			in:        Input{IATs: []float64{0.5, 5e-324, 0.5}, Sizes: []int{100, 100, 100}},
			wantRates: []float64{1600},
			wantIATs:  []float64{0.5, 5e-324, 0.5},
		},
		{
			name:    "only-overflowing-rates",
			in:      Input{IATs: []float64{5e-324, 1e-320}, Size: 1500},
			wantErr: ErrEmptySample,
		},
		{
			name:      "huge-size",
			in:        Input{IATs: []float64{1}, Size: 1 << 61},
			wantRates: []float64{8 * float64(1<<61)},
			wantIATs:  []float64{1},
		},
		{
			name:      "variable-size-equal-neighbours-only",
			in:        Input{IATs: []float64{0.5, 0.5, 0.5, 0.25}, Sizes: []int{100, 100, 200, 200}},
			wantRates: []float64{1600, 6400},
			wantIATs:  []float64{0.5, 0.5, 0.5, 0.25},
		},
		{
			name:      "variable-size-skips-zero-gaps",
			in:        Input{IATs: []float64{0.5, 0, 0.5}, Sizes: []int{100, 100, 100}},
			wantRates: []float64{1600},
			wantIATs:  []float64{0.5, 0.5},
		},
		{
			name:    "variable-size-all-different",
			in:      Input{IATs: []float64{0.5, 0.5, 0.5}, Sizes: []int{100, 200, 300}},
			wantErr: ErrEmptySample,
		},
		{
			name:    "only-zeroes",
			in:      Input{IATs: []float64{0, 0, 0}, Size: 1500},
			wantErr: ErrEmptySample,
		},
		{
			name:    "length-mismatch",
			in:      Input{IATs: []float64{0.5, 0.5}, Sizes: []int{100}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "zero-size",
			in:      Input{IATs: []float64{0.5}},
			wantErr: ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates, iats, err := prepare(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("prepare() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !reflect.DeepEqual(rates, tt.wantRates) {
				t.Errorf("prepare() rates = %v, want %v", rates, tt.wantRates)
			}
			if !reflect.DeepEqual(iats, tt.wantIATs) {
				t.Errorf("prepare() iats = %v, want %v", iats, tt.wantIATs)
			}
		})
	}
}
