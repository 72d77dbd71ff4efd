package avif

import "encoding/binary"

// Fast YUV to RGB loops for layouts where every pixel reads exactly one
// chroma sample: 4:4:4, monochrome and nearest upsampling. They are
// specialized per sample storage width and colorness and must produce
// the same bytes as convertGeneric.

type sampleWidth interface {
	sample8 | sample16
	load(b []byte, i int) int
	store(b []byte, i int, v uint16)
	size() int
}

// sample8 is one byte per sample.
type sample8 uint8

func (sample8) load(b []byte, i int) int        { return int(b[i]) }
func (sample8) store(b []byte, i int, v uint16) { b[i] = uint8(v) }
func (sample8) size() int                       { return 1 }

// sample16 is two little-endian bytes per sample.
type sample16 uint16

func (sample16) load(b []byte, i int) int        { return int(binary.LittleEndian.Uint16(b[i:])) }
func (sample16) store(b []byte, i int, v uint16) { binary.LittleEndian.PutUint16(b[i:], v) }
func (sample16) size() int                       { return 2 }

type colorness interface {
	withColor | monochrome
	hasColor() bool
}

type withColor struct{}

func (withColor) hasColor() bool { return true }

type monochrome struct{}

func (monochrome) hasColor() bool { return false }

type fastConverter func(s *reformatState, image *Image, rgb *RGBImage)

// fastPaths is indexed by [source wide][destination wide][has color].
var fastPaths = [2][2][2]fastConverter{
	{
		{convertFastPath[sample8, sample8, monochrome], convertFastPath[sample8, sample8, withColor]},
		{convertFastPath[sample8, sample16, monochrome], convertFastPath[sample8, sample16, withColor]},
	},
	{
		{convertFastPath[sample16, sample8, monochrome], convertFastPath[sample16, sample8, withColor]},
		{convertFastPath[sample16, sample16, monochrome], convertFastPath[sample16, sample16, withColor]},
	},
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// convertFast dispatches to the specialization matching the buffers.
func (s *reformatState) convertFast(image *Image, rgb *RGBImage) {
	fastPaths[b2i(s.yuvChannelBytes == 2)][b2i(s.rgbChannelBytes == 2)][b2i(!s.format.Monochrome)](s, image, rgb)
}

func convertFastPath[S, D sampleWidth, C colorness](s *reformatState, image *Image, rgb *RGBImage) {
	var (
		src S
		dst D
		col C
	)
	sb := src.size()
	shiftX, shiftY := s.format.ChromaShiftX, s.format.ChromaShiftY
	yPix, yStride := image.YUVPlanes[ChannelY], image.YUVRowBytes[ChannelY]
	var uPix, vPix []byte
	var uStride, vStride int
	if col.hasColor() {
		uPix, uStride = image.YUVPlanes[ChannelU], image.YUVRowBytes[ChannelU]
		vPix, vStride = image.YUVPlanes[ChannelV], image.YUVRowBytes[ChannelV]
	}
	maxY := s.yuvMax
	px := s.rgbPixelBytes

	for j := 0; j < image.Height; j++ {
		yRow := yPix[j*yStride:]
		var uRow, vRow []byte
		if col.hasColor() {
			uvJ := j >> shiftY
			uRow = uPix[uvJ*uStride:]
			vRow = vPix[uvJ*vStride:]
		}
		out := rgb.Pixels[j*rgb.RowBytes:]
		for i := 0; i < image.Width; i++ {
			y := s.unormY[min(src.load(yRow, i*sb), maxY)]
			var cb, cr float32
			if col.hasColor() {
				uvOff := (i >> shiftX) * sb
				cb = s.unormUV[min(src.load(uRow, uvOff), maxY)]
				cr = s.unormUV[min(src.load(vRow, uvOff), maxY)]
			}
			r, g, b := s.coefficientsToRGB(y, cb, cr)
			o := i * px
			dst.store(out, o+s.rgbOffsetR, s.rgbToUNorm(r))
			dst.store(out, o+s.rgbOffsetG, s.rgbToUNorm(g))
			dst.store(out, o+s.rgbOffsetB, s.rgbToUNorm(b))
		}
	}
}
