package avif

import (
	"github.com/deepteams/avif/internal/dsp"
	"github.com/deepteams/avif/internal/pool"
)

// PixelFormat is the chroma subsampling layout of an Image.
type PixelFormat int

const (
	PixelFormatNone   PixelFormat = iota
	PixelFormatYUV444             // full resolution chroma
	PixelFormatYUV422             // chroma halved horizontally
	PixelFormatYUV420             // chroma halved in both directions
	PixelFormatYUV400             // monochrome, no chroma planes
)

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatYUV444:
		return "YUV444"
	case PixelFormatYUV422:
		return "YUV422"
	case PixelFormatYUV420:
		return "YUV420"
	case PixelFormatYUV400:
		return "YUV400"
	default:
		return "None"
	}
}

func (f PixelFormat) valid() bool {
	return f >= PixelFormatYUV444 && f <= PixelFormatYUV400
}

// PixelFormatInfo describes how chroma planes relate to the luma plane.
type PixelFormatInfo struct {
	Monochrome   bool
	ChromaShiftX int
	ChromaShiftY int
}

// Info returns the chroma layout of f.
func (f PixelFormat) Info() PixelFormatInfo {
	switch f {
	case PixelFormatYUV422:
		return PixelFormatInfo{ChromaShiftX: 1}
	case PixelFormatYUV420:
		return PixelFormatInfo{ChromaShiftX: 1, ChromaShiftY: 1}
	case PixelFormatYUV400:
		return PixelFormatInfo{Monochrome: true, ChromaShiftX: 1, ChromaShiftY: 1}
	default:
		return PixelFormatInfo{}
	}
}

// Range selects full or ITU limited sample codes.
type Range int

const (
	RangeFull    Range = iota // codes use [0, 2^depth-1]
	RangeLimited              // Y in [16, 235], UV in [16, 240] at 8 bits
)

func (r Range) String() string {
	if r == RangeLimited {
		return "limited"
	}
	return "full"
}

// Plane indices into Image.YUVPlanes.
const (
	ChannelY = 0
	ChannelU = 1
	ChannelV = 2
)

// Planes selects plane groups for allocation.
type Planes int

const (
	PlanesYUV Planes = 1 << iota
	PlanesA
	PlanesAll = PlanesYUV | PlanesA
)

// Image is a planar YUV frame with optional alpha. Samples deeper than
// 8 bits occupy two little-endian bytes.
type Image struct {
	Width  int
	Height int
	Depth  int // 8, 10 or 12

	YUVFormat          PixelFormat
	YUVRange           Range
	MatrixCoefficients MatrixCoefficients
	ColorPrimaries     ColorPrimaries

	YUVPlanes   [3][]byte
	YUVRowBytes [3]int

	AlphaPlane         []byte
	AlphaRowBytes      int
	AlphaRange         Range
	AlphaPremultiplied bool
}

// NewImage returns an Image without planes, tagged with the MIAF default
// color description (BT.601 matrix, BT.709 primaries, full range).
func NewImage(width, height, depth int, format PixelFormat) *Image {
	return &Image{
		Width:              width,
		Height:             height,
		Depth:              depth,
		YUVFormat:          format,
		YUVRange:           RangeFull,
		MatrixCoefficients: MatrixCoefficientsBT601,
		ColorPrimaries:     ColorPrimariesBT709,
		AlphaRange:         RangeFull,
	}
}

func (img *Image) channelBytes() int {
	if img.Depth > 8 {
		return 2
	}
	return 1
}

// ChromaSize returns the dimensions of the U and V planes.
func (img *Image) ChromaSize() (width, height int) {
	info := img.YUVFormat.Info()
	return (img.Width + info.ChromaShiftX) >> info.ChromaShiftX,
		(img.Height + info.ChromaShiftY) >> info.ChromaShiftY
}

// AllocatePlanes allocates zeroed planes selected by planes that are not
// already present. Buffers come from a shared pool; FreePlanes returns
// them.
func (img *Image) AllocatePlanes(planes Planes) error {
	if img.Width <= 0 || img.Height <= 0 {
		return withOp("AllocatePlanes", invalidf("image size %dx%d", img.Width, img.Height))
	}
	if !validYUVDepth(img.Depth) {
		return withOp("AllocatePlanes", invalidf("unsupported YUV depth %d", img.Depth))
	}
	if !img.YUVFormat.valid() {
		return withOp("AllocatePlanes", invalidf("unsupported pixel format %v", img.YUVFormat))
	}
	cb := img.channelBytes()
	if planes&PlanesYUV != 0 {
		if img.YUVPlanes[ChannelY] == nil {
			img.YUVRowBytes[ChannelY] = cb * img.Width
			img.YUVPlanes[ChannelY] = pool.Get(img.YUVRowBytes[ChannelY] * img.Height)
		}
		if img.YUVFormat != PixelFormatYUV400 {
			w, h := img.ChromaSize()
			for _, c := range []int{ChannelU, ChannelV} {
				if img.YUVPlanes[c] == nil {
					img.YUVRowBytes[c] = cb * w
					img.YUVPlanes[c] = pool.Get(img.YUVRowBytes[c] * h)
				}
			}
		}
	}
	if planes&PlanesA != 0 && img.AlphaPlane == nil {
		img.AlphaRowBytes = cb * img.Width
		img.AlphaPlane = pool.Get(img.AlphaRowBytes * img.Height)
	}
	return nil
}

// FreePlanes releases the selected planes. The slices must not be used
// afterwards.
func (img *Image) FreePlanes(planes Planes) {
	if planes&PlanesYUV != 0 {
		for c := range img.YUVPlanes {
			pool.Put(img.YUVPlanes[c])
			img.YUVPlanes[c] = nil
			img.YUVRowBytes[c] = 0
		}
	}
	if planes&PlanesA != 0 {
		pool.Put(img.AlphaPlane)
		img.AlphaPlane = nil
		img.AlphaRowBytes = 0
	}
}

func (img *Image) plane(c int) dsp.Plane {
	return dsp.NewPlane(img.YUVPlanes[c], img.YUVRowBytes[c], img.channelBytes())
}

func (img *Image) alphaPlane() dsp.Plane {
	return dsp.NewPlane(img.AlphaPlane, img.AlphaRowBytes, img.channelBytes())
}

// RGBFormat is the channel order of a packed RGB(A) pixel.
type RGBFormat int

const (
	RGBFormatRGB RGBFormat = iota
	RGBFormatRGBA
	RGBFormatARGB
	RGBFormatBGR
	RGBFormatBGRA
	RGBFormatABGR
)

func (f RGBFormat) String() string {
	switch f {
	case RGBFormatRGB:
		return "RGB"
	case RGBFormatRGBA:
		return "RGBA"
	case RGBFormatARGB:
		return "ARGB"
	case RGBFormatBGR:
		return "BGR"
	case RGBFormatBGRA:
		return "BGRA"
	case RGBFormatABGR:
		return "ABGR"
	default:
		return "unknown"
	}
}

func (f RGBFormat) valid() bool {
	return f >= RGBFormatRGB && f <= RGBFormatABGR
}

// HasAlpha reports whether the format stores an alpha channel.
func (f RGBFormat) HasAlpha() bool {
	return f != RGBFormatRGB && f != RGBFormatBGR
}

// ChannelCount returns 4 for formats with alpha and 3 otherwise.
func (f RGBFormat) ChannelCount() int {
	if f.HasAlpha() {
		return 4
	}
	return 3
}

// ChromaUpsampling selects how subsampled chroma is reconstructed when
// converting to RGB.
type ChromaUpsampling int

const (
	ChromaUpsamplingAutomatic   ChromaUpsampling = iota // bilinear, accelerator allowed
	ChromaUpsamplingFastest                             // nearest, accelerator allowed
	ChromaUpsamplingBestQuality                         // bilinear, built-in only
	ChromaUpsamplingNearest
	ChromaUpsamplingBilinear
)

func (u ChromaUpsampling) bilinear() bool {
	return u != ChromaUpsamplingFastest && u != ChromaUpsamplingNearest
}

// RGBImage is a packed RGB(A) buffer. Channels deeper than 8 bits occupy
// two little-endian bytes.
type RGBImage struct {
	Width  int
	Height int
	Depth  int // 8, 10, 12 or 16
	Format RGBFormat

	ChromaUpsampling ChromaUpsampling
	// IgnoreAlpha treats the alpha channel of Format as absent: it is
	// neither read nor written.
	IgnoreAlpha        bool
	AlphaPremultiplied bool
	// AvoidAccelerator forces the built-in converters.
	AvoidAccelerator bool

	Pixels   []byte
	RowBytes int
}

// NewRGBImage returns an RGBA descriptor matching img's size and depth,
// without pixels.
func NewRGBImage(img *Image) *RGBImage {
	rgb := &RGBImage{
		Width:  img.Width,
		Height: img.Height,
		Depth:  img.Depth,
		Format: RGBFormatRGBA,
	}
	rgb.RowBytes = rgb.Width * rgb.PixelSize()
	return rgb
}

func (rgb *RGBImage) channelBytes() int {
	if rgb.Depth > 8 {
		return 2
	}
	return 1
}

// PixelSize returns the number of bytes per pixel.
func (rgb *RGBImage) PixelSize() int {
	return rgb.Format.ChannelCount() * rgb.channelBytes()
}

func (rgb *RGBImage) hasAlpha() bool {
	return rgb.Format.HasAlpha() && !rgb.IgnoreAlpha
}

// AllocatePixels allocates a zeroed pixel buffer, computing RowBytes when
// it is unset.
func (rgb *RGBImage) AllocatePixels() {
	if rgb.RowBytes == 0 {
		rgb.RowBytes = rgb.Width * rgb.PixelSize()
	}
	rgb.Pixels = pool.Get(rgb.RowBytes * rgb.Height)
}

// FreePixels releases the pixel buffer.
func (rgb *RGBImage) FreePixels() {
	pool.Put(rgb.Pixels)
	rgb.Pixels = nil
}

func validYUVDepth(d int) bool {
	return d == 8 || d == 10 || d == 12
}

func validRGBDepth(d int) bool {
	return d == 8 || d == 10 || d == 12 || d == 16
}

// IsOpaque reports whether the image has no alpha plane or every alpha
// sample is at the opaque code for its depth and range.
func (img *Image) IsOpaque() bool {
	if img.AlphaPlane == nil {
		return true
	}
	opaque := (1 << uint(img.Depth)) - 1
	if img.AlphaRange == RangeLimited {
		_, opaque = dsp.LimitedBoundsY(img.Depth)
	}
	return !dsp.HasTransparency(img.alphaPlane(), img.Width, img.Height, opaque)
}

// ConvertRange rescales the Y, U and V samples in place to r and updates
// YUVRange. Identity-coded chroma holds G and B and is rescaled like luma.
// The alpha plane keeps its own range.
func (img *Image) ConvertRange(r Range) error {
	if r != RangeFull && r != RangeLimited {
		return withOp("ConvertRange", invalidf("unknown YUV range %d", int(r)))
	}
	if img.Width <= 0 || img.Height <= 0 || !validYUVDepth(img.Depth) || !img.YUVFormat.valid() {
		return withOp("ConvertRange", invalidf("unsupported image %dx%d depth %d format %v",
			img.Width, img.Height, img.Depth, img.YUVFormat))
	}
	if err := checkImageBuffers(img); err != nil {
		return withOp("ConvertRange", err)
	}
	if img.YUVRange == r {
		return nil
	}

	toLimited := r == RangeLimited
	luma := dsp.LimitedToFullY
	chroma := dsp.LimitedToFullUV
	if toLimited {
		luma, chroma = dsp.FullToLimitedY, dsp.FullToLimitedUV
	}
	if img.MatrixCoefficients == MatrixCoefficientsIdentity {
		chroma = luma
	}
	maxV := (1 << uint(img.Depth)) - 1
	rescale := func(p dsp.Plane, w, h int, fn func(depth, v int) int) {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := min(int(p.At(x, y)), maxV)
				p.Set(x, y, uint16(fn(img.Depth, v)))
			}
		}
	}
	rescale(img.plane(ChannelY), img.Width, img.Height, luma)
	if img.YUVFormat != PixelFormatYUV400 {
		w, h := img.ChromaSize()
		rescale(img.plane(ChannelU), w, h, chroma)
		rescale(img.plane(ChannelV), w, h, chroma)
	}
	img.YUVRange = r
	return nil
}
