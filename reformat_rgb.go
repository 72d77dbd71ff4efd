package avif

import "github.com/deepteams/avif/internal/dsp"

// yuvSample is one converted pixel before quantization.
type yuvSample struct {
	y, u, v float32
}

// convertFromRGB fills the Y, U and V planes of image from rgb in 2x2
// blocks. Blocks on the right and bottom edges shrink to the pixels that
// exist; chroma averages divide by the number of samples present.
func (s *reformatState) convertFromRGB(rgb *RGBImage, image *Image) {
	rPlane := s.channel(rgb, s.rgbOffsetR)
	gPlane := s.channel(rgb, s.rgbOffsetG)
	bPlane := s.channel(rgb, s.rgbOffsetB)
	var aPlane dsp.Plane
	premultiply, unpremultiply := false, false
	if s.rgbAlpha && rgb.AlphaPremultiplied != image.AlphaPremultiplied {
		aPlane = s.channel(rgb, s.rgbOffsetA)
		premultiply = image.AlphaPremultiplied
		unpremultiply = rgb.AlphaPremultiplied
	}

	yPlane := image.plane(ChannelY)
	var uPlane, vPlane dsp.Plane
	color := !s.format.Monochrome
	if color {
		uPlane = image.plane(ChannelU)
		vPlane = image.plane(ChannelV)
	}
	full := s.format.ChromaShiftX == 0 && s.format.ChromaShiftY == 0

	var block [2][2]yuvSample
	for by := 0; by < image.Height; by += 2 {
		bh := min(2, image.Height-by)
		for bx := 0; bx < image.Width; bx += 2 {
			bw := min(2, image.Width-bx)

			for j := 0; j < bh; j++ {
				for i := 0; i < bw; i++ {
					x, y := bx+i, by+j
					r := float32(rPlane.At(x, y)) / s.rgbMaxF
					g := float32(gPlane.At(x, y)) / s.rgbMaxF
					b := float32(bPlane.At(x, y)) / s.rgbMaxF
					if premultiply || unpremultiply {
						a := float32(aPlane.At(x, y)) / s.rgbMaxF
						r, g, b = reconcileAlpha(r, g, b, a, premultiply)
					}
					p := &block[i][j]
					p.y, p.u, p.v = s.fromRGB(r, g, b)
					yPlane.Set(x, y, s.yToUNorm(p.y))
					if color && full {
						uPlane.Set(x, y, s.uvToUNorm(p.u))
						vPlane.Set(x, y, s.uvToUNorm(p.v))
					}
				}
			}
			if !color || full {
				continue
			}

			cx := bx >> s.format.ChromaShiftX
			if s.format.ChromaShiftY == 1 {
				var su, sv float32
				for j := 0; j < bh; j++ {
					for i := 0; i < bw; i++ {
						su += block[i][j].u
						sv += block[i][j].v
					}
				}
				n := float32(bw * bh)
				uPlane.Set(cx, by>>1, s.uvToUNorm(su/n))
				vPlane.Set(cx, by>>1, s.uvToUNorm(sv/n))
				continue
			}
			for j := 0; j < bh; j++ {
				var su, sv float32
				for i := 0; i < bw; i++ {
					su += block[i][j].u
					sv += block[i][j].v
				}
				n := float32(bw)
				uPlane.Set(cx, by+j, s.uvToUNorm(su/n))
				vPlane.Set(cx, by+j, s.uvToUNorm(sv/n))
			}
		}
	}
}

// reconcileAlpha multiplies normalized color by a, or divides it out.
// Division by zero alpha yields black and quotients are clamped to 1.
func reconcileAlpha(r, g, b, a float32, premultiply bool) (float32, float32, float32) {
	if premultiply {
		if a >= 1 {
			return r, g, b
		}
		return r * a, g * a, b * a
	}
	if a >= 1 {
		return r, g, b
	}
	if a <= 0 {
		return 0, 0, 0
	}
	return min(r/a, 1), min(g/a, 1), min(b/a, 1)
}

// alphaFromRGB writes the image alpha plane, if there is one.
func (s *reformatState) alphaFromRGB(rgb *RGBImage, image *Image) {
	if image.AlphaPlane == nil {
		return
	}
	dst := image.alphaPlane()
	limited := image.AlphaRange == RangeLimited
	if !s.rgbAlpha {
		dsp.FillAlpha(dst, image.Width, image.Height, image.Depth, limited)
		return
	}
	dsp.ReformatAlpha(&dsp.AlphaParams{
		Width:      image.Width,
		Height:     image.Height,
		Src:        s.channel(rgb, s.rgbOffsetA),
		SrcDepth:   rgb.Depth,
		Dst:        dst,
		DstDepth:   image.Depth,
		DstLimited: limited,
	})
}
