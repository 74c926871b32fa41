package pprate

import (
	"errors"
	"reflect"
	"testing"
)

func Test_detectModes(t *testing.T) {
	tests := []struct {
		name    string
		counts  []int
		want    []Mode
		wantErr bool
	}{
		{
			name:   "two-basins",
			counts: []int{0, 1, 3, 5, 2, 0, 4, 6, 1},
			want: []Mode{
				{Height: 5, Peak: 3, Left: 1, Right: 5},
				{Height: 6, Peak: 7, Left: 6, Right: 8},
			},
		},
		{
			name:   "peak-in-first-bin",
			counts: []int{3, 1, 0, 0, 2, 2, 0},
			want: []Mode{
				{Height: 3, Peak: 0, Left: 0, Right: 3},
				{Height: 2, Peak: 4, Left: 4, Right: 6},
			},
		},
		{
			name:   "peak-in-last-bin",
			counts: []int{0, 1, 2},
			want:   []Mode{{Height: 2, Peak: 2, Left: 1, Right: 2}},
		},
		{
			name:    "flat",
			counts:  []int{0, 0, 0, 0},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := detectModes(tt.counts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("detectModes() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNoModeDetected) {
				t.Errorf("detectModes() error = %v, want ErrNoModeDetected", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("detectModes() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
