package imaging

import "math"

const (
	// MaxSample is the largest value an ingested sample is clamped to
	MaxSample = 4095

	// OverflowSample marks an unscaled value that does not fit 16 bits
	OverflowSample = 4096
)

// IngestFloat64 flattens a row-major grid into one frame of samples. Scaled
// inputs are expected in [0, 1] and are stretched to [0, MaxSample].
func IngestFloat64(grid [][]float64, scaled bool) []uint16 {
	out := make([]uint16, 0, gridLen(grid))
	for _, row := range grid {
		for _, v := range row {
			if scaled {
				out = append(out, scaleSample(v))
			} else {
				out = append(out, passSample(v))
			}
		}
	}
	return out
}

// IngestUint16 flattens a row-major grid into one frame of samples. Scaled
// inputs above 1 saturate at MaxSample.
func IngestUint16(grid [][]uint16, scaled bool) []uint16 {
	out := make([]uint16, 0, gridLen(grid))
	for _, row := range grid {
		for _, v := range row {
			switch {
			case !scaled:
				out = append(out, v)
			case v > 1:
				out = append(out, MaxSample)
			default:
				out = append(out, uint16(float32(v)*MaxSample))
			}
		}
	}
	return out
}

// InterleaveColor flattens one RGB triple per pixel into R, G, B bytes
func InterleaveColor(pixels [][3]byte) []byte {
	out := make([]byte, 0, len(pixels)*3)
	for _, p := range pixels {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

func passSample(v float64) uint16 {
	if v < 0 {
		return 0
	}
	r := math.RoundToEven(v)
	if math.IsNaN(r) || r > math.MaxUint16 {
		return OverflowSample
	}
	return uint16(r)
}

func scaleSample(v float64) uint16 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 0):
		return MaxSample
	case v < 0:
		return 0
	case v > 1:
		return MaxSample
	}
	return uint16(math.RoundToEven(v * MaxSample))
}

func gridLen[T any](grid [][]T) int {
	n := 0
	for _, row := range grid {
		n += len(row)
	}
	return n
}
