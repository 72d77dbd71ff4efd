package avif

import (
	"math/rand"
	"testing"
)

// newRandomImage returns an image with all planes allocated and filled with
// random codes up to maxCode, which may exceed the depth to exercise clamping.
func newRandomImage(t testing.TB, rng *rand.Rand, w, h, depth int, format PixelFormat, maxCode int) *Image {
	t.Helper()
	img := NewImage(w, h, depth, format)
	if err := img.AllocatePlanes(PlanesYUV); err != nil {
		t.Fatalf("AllocatePlanes: %v", err)
	}
	planes := []int{ChannelY}
	if format != PixelFormatYUV400 {
		planes = append(planes, ChannelU, ChannelV)
	}
	for _, c := range planes {
		p := img.plane(c)
		pw, ph := img.Width, img.Height
		if c != ChannelY {
			pw, ph = img.ChromaSize()
		}
		for y := 0; y < ph; y++ {
			for x := 0; x < pw; x++ {
				p.Set(x, y, uint16(rng.Intn(maxCode+1)))
			}
		}
	}
	return img
}

// newRandomRGB returns an allocated RGB image with random channel values.
func newRandomRGB(rng *rand.Rand, w, h, depth int, format RGBFormat) *RGBImage {
	rgb := &RGBImage{Width: w, Height: h, Depth: depth, Format: format}
	rgb.AllocatePixels()
	maxV := (1 << uint(depth)) - 1
	cb := rgb.channelBytes()
	for y := 0; y < h; y++ {
		for x := 0; x < w*format.ChannelCount(); x++ {
			off := y*rgb.RowBytes + x*cb
			v := rng.Intn(maxV + 1)
			rgb.Pixels[off] = uint8(v)
			if cb == 2 {
				rgb.Pixels[off+1] = uint8(v >> 8)
			}
		}
	}
	return rgb
}

// pixel returns the R, G, B, A values at (x, y), with A = -1 for formats
// without alpha.
func pixel(rgb *RGBImage, x, y int) [4]int {
	r, g, b, a := rgbOffsets(rgb.Format, rgb.channelBytes())
	at := func(off int) int {
		i := y*rgb.RowBytes + x*rgb.PixelSize() + off
		if rgb.Depth > 8 {
			return int(rgb.Pixels[i]) | int(rgb.Pixels[i+1])<<8
		}
		return int(rgb.Pixels[i])
	}
	out := [4]int{at(r), at(g), at(b), -1}
	if rgb.Format.HasAlpha() {
		out[3] = at(a)
	}
	return out
}

func setPixel(rgb *RGBImage, x, y int, v [4]int) {
	r, g, b, a := rgbOffsets(rgb.Format, rgb.channelBytes())
	put := func(off, val int) {
		i := y*rgb.RowBytes + x*rgb.PixelSize() + off
		rgb.Pixels[i] = uint8(val)
		if rgb.Depth > 8 {
			rgb.Pixels[i+1] = uint8(val >> 8)
		}
	}
	put(r, v[0])
	put(g, v[1])
	put(b, v[2])
	if rgb.Format.HasAlpha() {
		put(a, v[3])
	}
}

func mustState(t testing.TB, img *Image, rgb *RGBImage) *reformatState {
	t.Helper()
	s, err := newReformatState(img, rgb)
	if err != nil {
		t.Fatalf("newReformatState: %v", err)
	}
	return s
}
