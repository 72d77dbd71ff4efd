// Package dsp provides the integer kernels behind the pixel reformatting
// engine: limited/full range rescaling, bounds-checked sample access and
// alpha plane processing.
package dsp

// ITU-R BT.601/709/2020 limited-range windows at 8 bits. Deeper samples
// scale every bound by 1<<(depth-8).
const (
	limitedMin   = 16
	limitedMaxY  = 235
	limitedMaxUV = 240
)

// window returns the limited window [lo, hi] and the full-range maximum for
// a sample depth in [8, 16].
func window(depth, max8 int) (lo, hi, full int) {
	shift := uint(depth - 8)
	return limitedMin << shift, max8 << shift, (1 << uint(depth)) - 1
}

func limitedToFull(v, lo, hi, full int) int {
	v = ((v-lo)*full + (hi-lo)/2) / (hi - lo)
	return Clamp(v, 0, full)
}

func fullToLimited(v, lo, hi, full int) int {
	v = (v*(hi-lo)+full/2)/full + lo
	return Clamp(v, lo, hi)
}

// LimitedToFullY expands a limited-range luma (or alpha) code to full range.
func LimitedToFullY(depth, v int) int {
	lo, hi, full := window(depth, limitedMaxY)
	return limitedToFull(v, lo, hi, full)
}

// LimitedToFullUV expands a limited-range chroma code to full range.
func LimitedToFullUV(depth, v int) int {
	lo, hi, full := window(depth, limitedMaxUV)
	return limitedToFull(v, lo, hi, full)
}

// FullToLimitedY compresses a full-range luma (or alpha) code into the
// limited window.
func FullToLimitedY(depth, v int) int {
	lo, hi, full := window(depth, limitedMaxY)
	return fullToLimited(v, lo, hi, full)
}

// FullToLimitedUV compresses a full-range chroma code into the limited
// window.
func FullToLimitedUV(depth, v int) int {
	lo, hi, full := window(depth, limitedMaxUV)
	return fullToLimited(v, lo, hi, full)
}

// LimitedBoundsY returns the legal luma window [lo, hi] at depth.
func LimitedBoundsY(depth int) (lo, hi int) {
	lo, hi, _ = window(depth, limitedMaxY)
	return lo, hi
}

// LimitedBoundsUV returns the legal chroma window [lo, hi] at depth.
func LimitedBoundsUV(depth int) (lo, hi int) {
	lo, hi, _ = window(depth, limitedMaxUV)
	return lo, hi
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
