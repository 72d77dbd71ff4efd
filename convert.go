package avif

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/deepteams/avif/internal/dsp"
)

// NewRGBImageFromImage copies img into a new RGBA buffer of the given
// depth. 8-bit output goes through image.NRGBA, deeper output through
// image.NRGBA64 rescaled to depth. NRGBA and NRGBA64 sources keep the color
// of fully transparent pixels.
func NewRGBImageFromImage(img image.Image, depth int) (*RGBImage, error) {
	if !validRGBDepth(depth) {
		return nil, withOp("NewRGBImageFromImage", invalidf("unsupported RGB depth %d", depth))
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, withOp("NewRGBImageFromImage", invalidf("empty image"))
	}
	rgb := &RGBImage{
		Width:  b.Dx(),
		Height: b.Dy(),
		Depth:  depth,
		Format: RGBFormatRGBA,
	}
	rect := image.Rect(0, 0, b.Dx(), b.Dy())

	rgb.AllocatePixels()
	if depth == 8 {
		// Non-premultiplied sources are copied directly; going through
		// draw would round trip them via premultiplied color.
		if src, ok := img.(*image.NRGBA); ok {
			for y := 0; y < rgb.Height; y++ {
				off := src.PixOffset(b.Min.X, b.Min.Y+y)
				copy(rgb.Pixels[y*rgb.RowBytes:], src.Pix[off:off+4*rgb.Width])
			}
			return rgb, nil
		}
		dst := &image.NRGBA{Pix: rgb.Pixels, Stride: rgb.RowBytes, Rect: rect}
		draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
		return rgb, nil
	}

	src, ok := img.(*image.NRGBA64)
	if !ok {
		src = image.NewNRGBA64(rect)
		draw.Copy(src, image.Point{}, img, b, draw.Src, nil)
		b = rect
	}
	maxV := uint32(1)<<uint(depth) - 1
	for y := 0; y < rgb.Height; y++ {
		in := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		out := rgb.Pixels[y*rgb.RowBytes:]
		for i := 0; i < rgb.Width*4; i++ {
			v := uint32(in[2*i])<<8 | uint32(in[2*i+1])
			v = (v*maxV + 32767) / 65535
			out[2*i] = uint8(v)
			out[2*i+1] = uint8(v >> 8)
		}
	}
	return rgb, nil
}

// ToImage copies rgb into a standard library image: NRGBA or NRGBA64 for
// straight alpha, RGBA or RGBA64 when AlphaPremultiplied is set. Formats
// without alpha come out opaque.
func (rgb *RGBImage) ToImage() (image.Image, error) {
	if !validRGBDepth(rgb.Depth) || !rgb.Format.valid() || rgb.Width <= 0 || rgb.Height <= 0 {
		return nil, withOp("ToImage", invalidf("unsupported RGB image %dx%d depth %d format %v",
			rgb.Width, rgb.Height, rgb.Depth, rgb.Format))
	}
	if err := checkRGBBuffer(rgb); err != nil {
		return nil, withOp("ToImage", err)
	}

	cb := rgb.channelBytes()
	ps := rgb.PixelSize()
	ro, gOff, bo, ao := rgbOffsets(rgb.Format, cb)
	view := func(off int) dsp.Plane {
		return dsp.NewChannel(rgb.Pixels, off, rgb.RowBytes, ps, cb)
	}
	rp, gp, bp := view(ro), view(gOff), view(bo)
	var ap dsp.Plane
	alpha := rgb.hasAlpha()
	if alpha {
		ap = view(ao)
	}
	maxV := uint32(1)<<uint(rgb.Depth) - 1
	rect := image.Rect(0, 0, rgb.Width, rgb.Height)

	if rgb.Depth == 8 {
		var dst draw.Image = image.NewNRGBA(rect)
		if rgb.AlphaPremultiplied {
			dst = image.NewRGBA(rect)
		}
		for y := 0; y < rgb.Height; y++ {
			for x := 0; x < rgb.Width; x++ {
				a := uint8(255)
				if alpha {
					a = uint8(ap.At(x, y))
				}
				c := [4]uint8{uint8(rp.At(x, y)), uint8(gp.At(x, y)), uint8(bp.At(x, y)), a}
				if rgb.AlphaPremultiplied {
					dst.Set(x, y, color.RGBA{c[0], c[1], c[2], c[3]})
				} else {
					dst.Set(x, y, color.NRGBA{c[0], c[1], c[2], c[3]})
				}
			}
		}
		return dst, nil
	}

	widen := func(v uint16) uint16 {
		return uint16((uint32(v)*65535 + maxV/2) / maxV)
	}
	var dst draw.Image = image.NewNRGBA64(rect)
	if rgb.AlphaPremultiplied {
		dst = image.NewRGBA64(rect)
	}
	for y := 0; y < rgb.Height; y++ {
		for x := 0; x < rgb.Width; x++ {
			a := uint16(0xffff)
			if alpha {
				a = widen(ap.At(x, y))
			}
			r, g, b := widen(rp.At(x, y)), widen(gp.At(x, y)), widen(bp.At(x, y))
			if rgb.AlphaPremultiplied {
				dst.Set(x, y, color.RGBA64{r, g, b, a})
			} else {
				dst.Set(x, y, color.NRGBA64{r, g, b, a})
			}
		}
	}
	return dst, nil
}
