package results

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestRelativeError(t *testing.T) {
	tests := []struct {
		estimated, expected, want float64
	}{
		{estimated: 10e6, expected: 10e6, want: 0},
		{estimated: 9e6, expected: 10e6, want: 10},
		{estimated: 12e6, expected: 9e6, want: 33.33},
		{estimated: 5e6, expected: 0, want: 0},
	}
	for _, tt := range tests {
		if got := RelativeError(tt.estimated, tt.expected); got != tt.want {
			t.Errorf("RelativeError(%v, %v) = %v, want %v", tt.estimated, tt.expected, got, tt.want)
		}
	}
}

func TestCapacityLog(t *testing.T) {
	rows := []CapacityRow{
		{Path: "10.0.0.1-10.0.0.4", Estimated: 9e6, Expected: 10e6, Error: 10},
		{Path: "10.0.0.2-10.0.0.4", Estimated: 1.25e6, Expected: 1e6, Error: 25},
	}
	buf := &bytes.Buffer{}
	if err := WriteCapacityLog(buf, rows); err != nil {
		t.Fatalf("WriteCapacityLog() error = %v", err)
	}
	header, _, _ := strings.Cut(buf.String(), "\n")
	if header != "path;estimated;expected;error" {
		t.Errorf("WriteCapacityLog() header = %q", header)
	}
	got, err := ReadCapacityLog(buf)
	if err != nil {
		t.Fatalf("ReadCapacityLog() error = %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("ReadCapacityLog() = %+v, want %+v", got, rows)
	}
}
