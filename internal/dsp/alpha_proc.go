package dsp

import "math"

// Alpha channel processing: premultiply, unpremultiply, fill and the
// depth/range rescale used when moving alpha between planar and packed
// buffers. All arithmetic is float32 with round-half-up.

// Roundf rounds half up, matching floor(v + 0.5).
func Roundf(v float32) float32 {
	return float32(math.Floor(float64(v + 0.5)))
}

// ApplyAlphaMultiply premultiplies the three color channels by alpha in
// place, or divides them back out when inverse is set. maxValue is the
// largest code at the buffer's depth.
//
// Opaque pixels are left untouched and fully transparent pixels become
// black in both directions. Unpremultiplied values are clamped to maxValue.
func ApplyAlphaMultiply(color [3]Plane, alpha Plane, width, height, maxValue int, inverse bool) {
	maxF := float32(maxValue)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			a := int(alpha.At(x, y))
			if a >= maxValue {
				continue
			}
			if a == 0 {
				for _, c := range color {
					c.Set(x, y, 0)
				}
				continue
			}
			af := float32(a)
			for _, c := range color {
				v := float32(c.At(x, y))
				if inverse {
					v = Roundf(float32(v*maxF) / af)
					if v > maxF {
						v = maxF
					}
				} else {
					v = Roundf(float32(v*af) / maxF)
				}
				c.Set(x, y, uint16(v))
			}
		}
	}
}

// FillAlpha writes the opaque code for depth into every sample of dst.
// In limited range opaque is the top of the limited window.
func FillAlpha(dst Plane, width, height, depth int, limited bool) {
	opaque := (1 << uint(depth)) - 1
	if limited {
		_, opaque = LimitedBoundsY(depth)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dst.Set(x, y, uint16(opaque))
		}
	}
}

// AlphaParams describes one alpha transfer between two buffers.
type AlphaParams struct {
	Width, Height int

	Src        Plane
	SrcDepth   int
	SrcLimited bool

	Dst        Plane
	DstDepth   int
	DstLimited bool
}

// ReformatAlpha copies alpha from p.Src to p.Dst, expanding a limited
// source to full range, rescaling between depths and compressing into a
// limited destination as needed. Same depth and range is a copy clamped to
// the depth's maximum code.
func ReformatAlpha(p *AlphaParams) {
	srcMax := (1 << uint(p.SrcDepth)) - 1
	dstMax := (1 << uint(p.DstDepth)) - 1
	srcMaxF := float32(srcMax)
	dstMaxF := float32(dstMax)

	if p.SrcDepth == p.DstDepth && p.SrcLimited == p.DstLimited {
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				p.Dst.Set(x, y, min(p.Src.At(x, y), uint16(dstMax)))
			}
		}
		return
	}

	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			a := int(p.Src.At(x, y))
			if a > srcMax {
				a = srcMax
			}
			if p.SrcLimited {
				a = LimitedToFullY(p.SrcDepth, a)
			}
			if p.SrcDepth != p.DstDepth {
				f := float32(a) / srcMaxF
				a = Clamp(int(0.5+float32(f*dstMaxF)), 0, dstMax)
			}
			if p.DstLimited {
				a = FullToLimitedY(p.DstDepth, a)
			}
			p.Dst.Set(x, y, uint16(a))
		}
	}
}

// HasTransparency reports whether any alpha sample is below maxValue.
func HasTransparency(alpha Plane, width, height, maxValue int) bool {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if int(alpha.At(x, y)) < maxValue {
				return true
			}
		}
	}
	return false
}
