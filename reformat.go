package avif

import (
	"errors"

	"github.com/deepteams/avif/internal/dsp"
)

type reformatMode int

const (
	modeYUVCoefficients reformatMode = iota // Kr/Kb weighted Y'CbCr
	modeIdentity                            // G, B, R stored as Y, U, V
	modeYCgCo
)

func (m reformatMode) String() string {
	switch m {
	case modeIdentity:
		return "identity"
	case modeYCgCo:
		return "ycgco"
	default:
		return "coefficients"
	}
}

// reformatState is everything a conversion needs that can be derived from
// the two descriptors. It is built once per call and not modified
// afterwards.
type reformatState struct {
	mode       reformatMode
	kr, kg, kb float32

	format   PixelFormatInfo
	bilinear bool

	yuvChannelBytes int
	yuvMax          int

	rgbChannelBytes int
	rgbPixelBytes   int
	rgbOffsetR      int
	rgbOffsetG      int
	rgbOffsetB      int
	rgbOffsetA      int
	rgbMax          int
	rgbMaxF         float32
	rgbAlpha        bool

	biasY, rangeY   float32
	biasUV, rangeUV float32

	// unorm code -> normalized float. Y maps to [0, 1], UV to [-0.5, 0.5]
	// (Identity keeps all three channels on the Y mapping).
	unormY  []float32
	unormUV []float32
}

// newReformatState validates the pair of descriptors and derives the
// conversion parameters. It reads no pixel data.
func newReformatState(image *Image, rgb *RGBImage) (*reformatState, error) {
	if image == nil || rgb == nil {
		return nil, invalidf("nil image descriptor")
	}
	if image.Width <= 0 || image.Height <= 0 {
		return nil, invalidf("image size %dx%d", image.Width, image.Height)
	}
	if rgb.Width != image.Width || rgb.Height != image.Height {
		return nil, invalidf("size mismatch: image %dx%d, rgb %dx%d", image.Width, image.Height, rgb.Width, rgb.Height)
	}
	if !validYUVDepth(image.Depth) {
		return nil, invalidf("unsupported YUV depth %d", image.Depth)
	}
	if !validRGBDepth(rgb.Depth) {
		return nil, invalidf("unsupported RGB depth %d", rgb.Depth)
	}
	if !image.YUVFormat.valid() {
		return nil, invalidf("unsupported pixel format %v", image.YUVFormat)
	}
	if !rgb.Format.valid() {
		return nil, invalidf("unsupported RGB format %d", int(rgb.Format))
	}
	if image.YUVRange != RangeFull && image.YUVRange != RangeLimited {
		return nil, invalidf("unknown YUV range %d", int(image.YUVRange))
	}
	if image.AlphaRange != RangeFull && image.AlphaRange != RangeLimited {
		return nil, invalidf("unknown alpha range %d", int(image.AlphaRange))
	}
	if rgb.ChromaUpsampling < ChromaUpsamplingAutomatic || rgb.ChromaUpsampling > ChromaUpsamplingBilinear {
		return nil, invalidf("unknown chroma upsampling %d", int(rgb.ChromaUpsampling))
	}
	mc := image.MatrixCoefficients
	if !mc.Supported() {
		return nil, invalidf("unsupported matrix coefficients %v", mc)
	}

	s := &reformatState{
		format:          image.YUVFormat.Info(),
		bilinear:        rgb.ChromaUpsampling.bilinear(),
		yuvChannelBytes: image.channelBytes(),
		yuvMax:          (1 << uint(image.Depth)) - 1,
		rgbChannelBytes: rgb.channelBytes(),
		rgbPixelBytes:   rgb.PixelSize(),
		rgbMax:          (1 << uint(rgb.Depth)) - 1,
		rgbAlpha:        rgb.hasAlpha(),
	}
	s.rgbMaxF = float32(s.rgbMax)

	switch mc {
	case MatrixCoefficientsIdentity:
		if image.YUVFormat != PixelFormatYUV444 {
			return nil, invalidf("identity matrix requires YUV444, got %v", image.YUVFormat)
		}
		s.mode = modeIdentity
	case MatrixCoefficientsYCgCo:
		if image.YUVRange == RangeLimited {
			return nil, invalidf("YCgCo with limited range is not supported")
		}
		s.mode = modeYCgCo
	default:
		s.mode = modeYUVCoefficients
		s.kr, s.kg, s.kb = lumaCoefficients(mc, image.ColorPrimaries)
	}

	s.rgbOffsetR, s.rgbOffsetG, s.rgbOffsetB, s.rgbOffsetA = rgbOffsets(rgb.Format, s.rgbChannelBytes)

	shift := uint(image.Depth - 8)
	s.biasUV = float32(int(1) << uint(image.Depth-1))
	if image.YUVRange == RangeLimited {
		s.biasY = float32(int(16) << shift)
		s.rangeY = float32(int(219) << shift)
		s.rangeUV = float32(int(224) << shift)
	} else {
		s.rangeY = float32(s.yuvMax)
		s.rangeUV = s.rangeY
	}

	s.unormY = make([]float32, 1<<uint(image.Depth))
	s.unormUV = make([]float32, len(s.unormY))
	for c := range s.unormY {
		s.unormY[c] = (float32(c) - s.biasY) / s.rangeY
		if s.mode == modeIdentity {
			s.unormUV[c] = s.unormY[c]
		} else {
			s.unormUV[c] = (float32(c) - s.biasUV) / s.rangeUV
		}
	}
	return s, nil
}

// rgbOffsets returns the byte offset of each channel within a pixel. The
// alpha offset is meaningless for formats without alpha.
func rgbOffsets(f RGBFormat, cb int) (r, g, b, a int) {
	switch f {
	case RGBFormatARGB:
		return cb, 2 * cb, 3 * cb, 0
	case RGBFormatBGR, RGBFormatBGRA:
		return 2 * cb, cb, 0, 3 * cb
	case RGBFormatABGR:
		return 3 * cb, 2 * cb, cb, 0
	default:
		return 0, cb, 2 * cb, 3 * cb
	}
}

// checkImageBuffers verifies that every plane the conversion touches is
// present and large enough for the declared geometry.
func checkImageBuffers(image *Image) error {
	if image.YUVPlanes[ChannelY] == nil {
		return missingf("missing Y plane")
	}
	if !image.plane(ChannelY).Fits(image.Width, image.Height) {
		return missingf("Y plane too small for %dx%d", image.Width, image.Height)
	}
	if image.YUVFormat != PixelFormatYUV400 {
		w, h := image.ChromaSize()
		for _, c := range []int{ChannelU, ChannelV} {
			if image.YUVPlanes[c] == nil {
				return missingf("missing %c plane", "YUV"[c])
			}
			if !image.plane(c).Fits(w, h) {
				return missingf("%c plane too small for %dx%d", "YUV"[c], w, h)
			}
		}
	}
	if image.AlphaPlane != nil && !image.alphaPlane().Fits(image.Width, image.Height) {
		return missingf("alpha plane too small for %dx%d", image.Width, image.Height)
	}
	return nil
}

func checkRGBBuffer(rgb *RGBImage) error {
	if rgb.Pixels == nil {
		return missingf("missing RGB pixels")
	}
	ps := rgb.PixelSize()
	if !dsp.NewPlane(rgb.Pixels, rgb.RowBytes, ps).Fits(rgb.Width, rgb.Height) {
		return missingf("RGB buffer too small for %dx%d (row bytes %d)", rgb.Width, rgb.Height, rgb.RowBytes)
	}
	return nil
}

// channel returns the view of one RGB channel at byte offset off.
func (s *reformatState) channel(rgb *RGBImage, off int) dsp.Plane {
	return dsp.NewChannel(rgb.Pixels, off, rgb.RowBytes, s.rgbPixelBytes, s.rgbChannelBytes)
}

// yToUNorm quantizes a normalized luma value.
func (s *reformatState) yToUNorm(v float32) uint16 {
	return uint16(dsp.Clamp(int(dsp.Roundf(float32(v*s.rangeY)+s.biasY)), 0, s.yuvMax))
}

// uvToUNorm quantizes a normalized chroma value.
func (s *reformatState) uvToUNorm(v float32) uint16 {
	if s.mode == modeIdentity {
		return s.yToUNorm(v)
	}
	return uint16(dsp.Clamp(int(dsp.Roundf(float32(v*s.rangeUV)+s.biasUV)), 0, s.yuvMax))
}

// rgbToUNorm clamps v to [0, 1] and scales it to the RGB depth.
func (s *reformatState) rgbToUNorm(v float32) uint16 {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return uint16(0.5 + float32(v*s.rgbMaxF))
}

// coefficientsToRGB inverts the Kr/Kb weighted transform. It is shared by
// the generic and fast paths so both produce identical bytes.
func (s *reformatState) coefficientsToRGB(y, cb, cr float32) (r, g, b float32) {
	r = y + float32(float32(2*(1-s.kr))*cr)
	b = y + float32(float32(2*(1-s.kb))*cb)
	t := float32(float32(s.kr*(1-s.kr))*cr) + float32(float32(s.kb*(1-s.kb))*cb)
	g = y - float32(2*t)/s.kg
	return r, g, b
}

// toRGB inverts the selected transform.
func (s *reformatState) toRGB(y, cb, cr float32) (r, g, b float32) {
	switch s.mode {
	case modeIdentity:
		return cr, y, cb
	case modeYCgCo:
		t := y - cb
		return t + cr, y + cb, t - cr
	default:
		return s.coefficientsToRGB(y, cb, cr)
	}
}

// fromRGB applies the forward transform to normalized R'G'B'.
func (s *reformatState) fromRGB(r, g, b float32) (y, u, v float32) {
	switch s.mode {
	case modeIdentity:
		return g, b, r
	case modeYCgCo:
		rb := float32(0.25 * (r + b))
		gh := float32(0.5 * g)
		return gh + rb, gh - rb, float32(0.5 * (r - b))
	default:
		y = float32(s.kr*r) + float32(s.kg*g) + float32(s.kb*b)
		u = (b - y) / float32(2*(1-s.kb))
		v = (r - y) / float32(2*(1-s.kr))
		return y, u, v
	}
}

// usesFastPath reports whether the reverse conversion can skip chroma
// neighbor gathering.
func (s *reformatState) usesFastPath() bool {
	if s.mode != modeYUVCoefficients {
		return false
	}
	return s.format.Monochrome || (s.format.ChromaShiftX == 0 && s.format.ChromaShiftY == 0) || !s.bilinear
}

// ImageToRGB converts the planar image into rgb's pixel buffer, which must
// be allocated. Alpha is copied into the alpha channel of formats that
// carry one, or filled opaque when the image has no alpha plane.
//
// On error nothing has been written to rgb.
func ImageToRGB(image *Image, rgb *RGBImage) error {
	if err := imageToRGB(image, rgb); err != nil {
		return withOp("ImageToRGB", err)
	}
	return nil
}

func imageToRGB(image *Image, rgb *RGBImage) error {
	s, err := newReformatState(image, rgb)
	if err != nil {
		return err
	}
	if err := checkImageBuffers(image); err != nil {
		return err
	}
	if err := checkRGBBuffer(rgb); err != nil {
		return err
	}

	path := ""
	alphaDone := false
	if a := Accelerator(); a != nil && !rgb.AvoidAccelerator && rgb.ChromaUpsampling != ChromaUpsamplingBestQuality {
		wrote, err := a.ImageToRGB(image, rgb)
		switch {
		case err == nil:
			path = a.Name()
			alphaDone = wrote
		case !errors.Is(err, ErrNotAccelerated):
			Logger().Warn("avif: accelerator failed, using built-in conversion",
				"accelerator", a.Name(), "err", err)
		}
	}
	if path == "" {
		if s.usesFastPath() {
			path = "fast"
			s.convertFast(image, rgb)
		} else {
			path = "generic"
			s.convertGeneric(image, rgb)
		}
	}
	if !alphaDone {
		s.alphaToRGB(image, rgb)
	}
	s.reconcilePremultiplied(image, rgb)

	Logger().Debug("avif: yuv to rgb",
		"path", path,
		"mode", s.mode.String(),
		"format", image.YUVFormat.String(),
		"yuvDepth", image.Depth,
		"rgbDepth", rgb.Depth,
		"size", [2]int{image.Width, image.Height})
	return nil
}

// ImageFromRGB converts rgb into the planes of image. The Y, U and V planes
// (Y only for YUV400) must be allocated; an allocated alpha plane receives
// the RGB alpha channel, or opaque samples when rgb has none.
//
// On error nothing has been written to image.
func ImageFromRGB(rgb *RGBImage, image *Image) error {
	if err := imageFromRGB(rgb, image); err != nil {
		return withOp("ImageFromRGB", err)
	}
	return nil
}

func imageFromRGB(rgb *RGBImage, image *Image) error {
	s, err := newReformatState(image, rgb)
	if err != nil {
		return err
	}
	if err := checkRGBBuffer(rgb); err != nil {
		return err
	}
	if err := checkImageBuffers(image); err != nil {
		return err
	}

	path := ""
	alphaDone := false
	// Accelerators convert straight values only.
	reconcile := s.rgbAlpha && rgb.AlphaPremultiplied != image.AlphaPremultiplied
	if a := Accelerator(); a != nil && !rgb.AvoidAccelerator && !reconcile {
		wrote, err := a.ImageFromRGB(rgb, image)
		switch {
		case err == nil:
			path = a.Name()
			alphaDone = wrote
		case !errors.Is(err, ErrNotAccelerated):
			Logger().Warn("avif: accelerator failed, using built-in conversion",
				"accelerator", a.Name(), "err", err)
		}
	}
	if path == "" {
		path = "blocks"
		s.convertFromRGB(rgb, image)
	}
	if !alphaDone {
		s.alphaFromRGB(rgb, image)
	}

	Logger().Debug("avif: rgb to yuv",
		"path", path,
		"mode", s.mode.String(),
		"format", image.YUVFormat.String(),
		"yuvDepth", image.Depth,
		"rgbDepth", rgb.Depth,
		"size", [2]int{image.Width, image.Height})
	return nil
}
