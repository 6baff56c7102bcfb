package imaging

import (
	"math"
	"slices"
	"testing"
)

func TestIngestFloat64(t *testing.T) {
	testCases := []struct {
		name   string
		in     float64
		scaled bool
		want   uint16
	}{
		{"scaled NaN", math.NaN(), true, 0},
		{"scaled +Inf", math.Inf(1), true, 4095},
		{"scaled -Inf", math.Inf(-1), true, 4095},
		{"scaled negative", -5, true, 0},
		{"scaled half", 0.5, true, 2048},
		{"scaled one", 1, true, 4095},
		{"scaled above ceiling", 1.0001, true, 4095},
		{"scaled zero", 0, true, 0},
		{"unscaled negative", -3, false, 0},
		{"unscaled rounds half to even", 12.5, false, 12},
		{"unscaled rounds up", 13.5, false, 14},
		{"unscaled max", 65535, false, 65535},
		{"unscaled overflow", 70000, false, 4096},
		{"unscaled NaN", math.NaN(), false, 4096},
		{"unscaled +Inf", math.Inf(1), false, 4096},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := IngestFloat64([][]float64{{tc.in}}, tc.scaled)
			if len(got) != 1 || got[0] != tc.want {
				t.Errorf("IngestFloat64(%v, %v) = %v, want %d", tc.in, tc.scaled, got, tc.want)
			}
		})
	}
}

func TestIngestFlattensRowMajor(t *testing.T) {
	got := IngestFloat64([][]float64{{1, 2}, {3, 4}}, false)
	if want := []uint16{1, 2, 3, 4}; !slices.Equal(got, want) {
		t.Errorf("IngestFloat64() = %v, want %v", got, want)
	}
}

func TestIngestUint16(t *testing.T) {
	grid := [][]uint16{{0, 1, 2, 4095}}
	if got, want := IngestUint16(grid, true), []uint16{0, 4095, 4095, 4095}; !slices.Equal(got, want) {
		t.Errorf("scaled = %v, want %v", got, want)
	}
	if got, want := IngestUint16(grid, false), []uint16{0, 1, 2, 4095}; !slices.Equal(got, want) {
		t.Errorf("unscaled = %v, want %v", got, want)
	}
}

func TestInterleaveColor(t *testing.T) {
	got := InterleaveColor([][3]byte{{1, 2, 3}, {4, 5, 6}})
	if want := []byte{1, 2, 3, 4, 5, 6}; !slices.Equal(got, want) {
		t.Errorf("InterleaveColor() = %v, want %v", got, want)
	}
}
