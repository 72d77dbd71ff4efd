package avif

import "github.com/deepteams/avif/internal/dsp"

// bilinearChroma weighs the closest chroma sample 9/16, its column and row
// neighbors 3/16 each and the diagonal 1/16.
func bilinearChroma(closest, col, row, diag float32) float32 {
	return float32(closest*(9.0/16.0)) + float32(col*(3.0/16.0)) +
		float32(row*(3.0/16.0)) + float32(diag*(1.0/16.0))
}

// lumaAt maps a luma code to float, clamping codes above the depth.
func (s *reformatState) lumaAt(p dsp.Plane, x, y int) float32 {
	return s.unormY[min(int(p.At(x, y)), s.yuvMax)]
}

func (s *reformatState) chromaAt(p dsp.Plane, x, y int) float32 {
	return s.unormUV[min(int(p.At(x, y)), s.yuvMax)]
}

// convertGeneric is the reference YUV to RGB conversion. It handles every
// mode, chroma layout and upsampling filter.
func (s *reformatState) convertGeneric(image *Image, rgb *RGBImage) {
	rPlane := s.channel(rgb, s.rgbOffsetR)
	gPlane := s.channel(rgb, s.rgbOffsetG)
	bPlane := s.channel(rgb, s.rgbOffsetB)

	yPlane := image.plane(ChannelY)
	var uPlane, vPlane dsp.Plane
	color := !s.format.Monochrome
	if color {
		uPlane = image.plane(ChannelU)
		vPlane = image.plane(ChannelV)
	}
	shiftX, shiftY := s.format.ChromaShiftX, s.format.ChromaShiftY
	subsampled := shiftX != 0 || shiftY != 0

	for j := 0; j < image.Height; j++ {
		uvJ := j >> shiftY
		adjRow := 0
		if shiftY != 0 {
			adjRow = dsp.AdjacentChroma(j, image.Height)
		}
		for i := 0; i < image.Width; i++ {
			y := s.lumaAt(yPlane, i, j)
			var cb, cr float32
			if color {
				uvI := i >> shiftX
				cb = s.chromaAt(uPlane, uvI, uvJ)
				cr = s.chromaAt(vPlane, uvI, uvJ)
				if subsampled && s.bilinear {
					adjCol := dsp.AdjacentChroma(i, image.Width)
					cb = bilinearChroma(cb,
						s.chromaAt(uPlane, uvI+adjCol, uvJ),
						s.chromaAt(uPlane, uvI, uvJ+adjRow),
						s.chromaAt(uPlane, uvI+adjCol, uvJ+adjRow))
					cr = bilinearChroma(cr,
						s.chromaAt(vPlane, uvI+adjCol, uvJ),
						s.chromaAt(vPlane, uvI, uvJ+adjRow),
						s.chromaAt(vPlane, uvI+adjCol, uvJ+adjRow))
				}
			}
			r, g, b := s.toRGB(y, cb, cr)
			rPlane.Set(i, j, s.rgbToUNorm(r))
			gPlane.Set(i, j, s.rgbToUNorm(g))
			bPlane.Set(i, j, s.rgbToUNorm(b))
		}
	}
}

// alphaToRGB writes the RGB alpha channel, if the format carries one. The
// output is always full range.
func (s *reformatState) alphaToRGB(image *Image, rgb *RGBImage) {
	if !s.rgbAlpha {
		return
	}
	dst := s.channel(rgb, s.rgbOffsetA)
	if image.AlphaPlane == nil {
		dsp.FillAlpha(dst, rgb.Width, rgb.Height, rgb.Depth, false)
		return
	}
	dsp.ReformatAlpha(&dsp.AlphaParams{
		Width:      rgb.Width,
		Height:     rgb.Height,
		Src:        image.alphaPlane(),
		SrcDepth:   image.Depth,
		SrcLimited: image.AlphaRange == RangeLimited,
		Dst:        dst,
		DstDepth:   rgb.Depth,
	})
}

// reconcilePremultiplied brings the RGB color channels to rgb's
// premultiplication state once alpha is in place.
func (s *reformatState) reconcilePremultiplied(image *Image, rgb *RGBImage) {
	if !s.rgbAlpha || image.AlphaPlane == nil || image.AlphaPremultiplied == rgb.AlphaPremultiplied {
		return
	}
	s.multiplyAlpha(rgb, !rgb.AlphaPremultiplied)
}

func (s *reformatState) multiplyAlpha(rgb *RGBImage, inverse bool) {
	color := [3]dsp.Plane{
		s.channel(rgb, s.rgbOffsetR),
		s.channel(rgb, s.rgbOffsetG),
		s.channel(rgb, s.rgbOffsetB),
	}
	dsp.ApplyAlphaMultiply(color, s.channel(rgb, s.rgbOffsetA), rgb.Width, rgb.Height, s.rgbMax, inverse)
}
