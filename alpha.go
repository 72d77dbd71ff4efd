package avif

import "github.com/deepteams/avif/internal/dsp"

// PremultiplyAlpha multiplies the color channels of rgb by its alpha
// channel in place. rgb.AlphaPremultiplied is left for the caller to set.
func PremultiplyAlpha(rgb *RGBImage) error {
	if err := multiplyRGBAlpha(rgb, false); err != nil {
		return withOp("PremultiplyAlpha", err)
	}
	return nil
}

// UnpremultiplyAlpha divides the alpha channel back out of the color
// channels of rgb. Fully transparent pixels become black and results are
// clamped to the depth's maximum.
func UnpremultiplyAlpha(rgb *RGBImage) error {
	if err := multiplyRGBAlpha(rgb, true); err != nil {
		return withOp("UnpremultiplyAlpha", err)
	}
	return nil
}

func multiplyRGBAlpha(rgb *RGBImage, inverse bool) error {
	if rgb == nil {
		return invalidf("nil image descriptor")
	}
	if rgb.Width <= 0 || rgb.Height <= 0 {
		return invalidf("image size %dx%d", rgb.Width, rgb.Height)
	}
	if !validRGBDepth(rgb.Depth) {
		return invalidf("unsupported RGB depth %d", rgb.Depth)
	}
	if !rgb.Format.valid() || !rgb.Format.HasAlpha() {
		return invalidf("RGB format %v has no alpha channel", rgb.Format)
	}
	if err := checkRGBBuffer(rgb); err != nil {
		return err
	}

	cb := rgb.channelBytes()
	ps := rgb.PixelSize()
	r, g, b, a := rgbOffsets(rgb.Format, cb)
	view := func(off int) dsp.Plane {
		return dsp.NewChannel(rgb.Pixels, off, rgb.RowBytes, ps, cb)
	}
	dsp.ApplyAlphaMultiply([3]dsp.Plane{view(r), view(g), view(b)}, view(a),
		rgb.Width, rgb.Height, (1<<uint(rgb.Depth))-1, inverse)
	return nil
}
