package pprate

import (
	"errors"
	"reflect"
	"testing"
)

func Test_quantiles(t *testing.T) {
	s := []float64{1, 2, 3, 4}
	if got := midpoint(s, 0.25); got != 1.5 {
		t.Errorf("midpoint(0.25) = %v, want 1.5", got)
	}
	if got := midpoint(s, 0.75); got != 3.5 {
		t.Errorf("midpoint(0.75) = %v, want 3.5", got)
	}
	if got := linear(s, 0.25); got != 1.75 {
		t.Errorf("linear(0.25) = %v, want 1.75", got)
	}
	if got := linear(s, 1); got != 4 {
		t.Errorf("linear(1) = %v, want 4", got)
	}
	if got := iqr(s); got != 1.5 {
		t.Errorf("iqr() = %v, want 1.5", got)
	}
	if got := iqr([]float64{7}); got != 0 {
		t.Errorf("iqr() of one sample = %v, want 0", got)
	}
}

func Test_trim(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    []float64
		wantErr bool
	}{
		{
			name:    "drops-high-outlier",
			samples: []float64{3, 1, 100, 4, 2},
			want:    []float64{3, 1, 4, 2},
		},
		{
			name:    "drops-low-outlier",
			samples: []float64{100, 101, 1, 102, 103},
			want:    []float64{100, 101, 102, 103},
		},
		{
			name:    "no-spread-keeps-all",
			samples: []float64{5, 5, 5},
			want:    []float64{5, 5, 5},
		},
		{
			name:    "empty",
			samples: []float64{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := trim(tt.samples)
			if (err != nil) != tt.wantErr {
				t.Fatalf("trim() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrEmptySample) {
					t.Errorf("trim() error = %v, want ErrEmptySample", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("trim() = %v, want %v", got, tt.want)
			}
		})
	}
}
