package dicom

import "math"

// WindowLevel is the display window and the sample bounds it was derived from
type WindowLevel struct {
	Center float64 `json:"center"`
	Width  float64 `json:"width"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ComputeWindowLevel derives the display window for buf starting from the
// header hints in md. Bounds are global across frames. Colour buffers keep the
// header values untouched.
func ComputeWindowLevel(buf *PixelBuffer, md Metadata) WindowLevel {
	wl := WindowLevel{Center: md.WindowCenter, Width: md.WindowWidth}
	if buf == nil {
		return wl
	}
	if !md.Kind.Decodable() {
		return WindowLevel{
			Center: PlaceholderWindowCenter,
			Width:  PlaceholderWindowWidth,
			Min:    PlaceholderValue,
			Max:    PlaceholderValue,
		}
	}

	switch buf.Format {
	case FormatGrey8:
		if len(buf.Grey8) == 0 {
			return wl
		}
		lo, hi := buf.Grey8[0], buf.Grey8[0]
		for _, v := range buf.Grey8 {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		wl.Min, wl.Max = float64(lo), float64(hi)
		if buf.Signed {
			wl.Center -= math.MinInt8
		}
	case FormatGrey16:
		first := true
		for _, frame := range buf.Grey16 {
			for _, v := range frame {
				f := float64(v)
				if first {
					wl.Min, wl.Max = f, f
					first = false
					continue
				}
				wl.Min = math.Min(wl.Min, f)
				wl.Max = math.Max(wl.Max, f)
			}
		}
		if first {
			return wl
		}
		if buf.Signed {
			wl.Center -= math.MinInt16
		}
	default:
		return wl
	}

	if math.Abs(wl.Width) < 0.001 {
		wl.Width = wl.Max - wl.Min
	}
	if wl.Center == 0 || wl.Center < wl.Min || wl.Center > wl.Max {
		wl.Center = (wl.Max + wl.Min) / 2
	}
	return wl
}
