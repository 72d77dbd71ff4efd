package avif

import "fmt"

// MatrixCoefficients is the CICP matrix_coefficients code (ITU-T H.273)
// relating R'G'B' to Y'CbCr.
type MatrixCoefficients uint16

const (
	MatrixCoefficientsIdentity         MatrixCoefficients = 0
	MatrixCoefficientsBT709            MatrixCoefficients = 1
	MatrixCoefficientsUnspecified      MatrixCoefficients = 2
	MatrixCoefficientsFCC              MatrixCoefficients = 4
	MatrixCoefficientsBT470BG          MatrixCoefficients = 5
	MatrixCoefficientsBT601            MatrixCoefficients = 6
	MatrixCoefficientsSMPTE240         MatrixCoefficients = 7
	MatrixCoefficientsYCgCo            MatrixCoefficients = 8
	MatrixCoefficientsBT2020NCL        MatrixCoefficients = 9
	MatrixCoefficientsBT2020CL         MatrixCoefficients = 10
	MatrixCoefficientsSMPTE2085        MatrixCoefficients = 11
	MatrixCoefficientsChromaDerivedNCL MatrixCoefficients = 12
	MatrixCoefficientsChromaDerivedCL  MatrixCoefficients = 13
	MatrixCoefficientsICtCp            MatrixCoefficients = 14
)

func (m MatrixCoefficients) String() string {
	switch m {
	case MatrixCoefficientsIdentity:
		return "identity"
	case MatrixCoefficientsBT709:
		return "bt709"
	case MatrixCoefficientsUnspecified:
		return "unspecified"
	case MatrixCoefficientsFCC:
		return "fcc"
	case MatrixCoefficientsBT470BG:
		return "bt470bg"
	case MatrixCoefficientsBT601:
		return "bt601"
	case MatrixCoefficientsSMPTE240:
		return "smpte240"
	case MatrixCoefficientsYCgCo:
		return "ycgco"
	case MatrixCoefficientsBT2020NCL:
		return "bt2020ncl"
	case MatrixCoefficientsBT2020CL:
		return "bt2020cl"
	case MatrixCoefficientsSMPTE2085:
		return "smpte2085"
	case MatrixCoefficientsChromaDerivedNCL:
		return "chroma-derived-ncl"
	case MatrixCoefficientsChromaDerivedCL:
		return "chroma-derived-cl"
	case MatrixCoefficientsICtCp:
		return "ictcp"
	default:
		return fmt.Sprintf("mc(%d)", uint16(m))
	}
}

// Supported reports whether the engine can convert with m. Constant
// luminance systems, ICtCp and reserved codes are not.
func (m MatrixCoefficients) Supported() bool {
	switch m {
	case 3, MatrixCoefficientsBT2020CL, MatrixCoefficientsSMPTE2085, MatrixCoefficientsChromaDerivedCL:
		return false
	}
	return m < MatrixCoefficientsICtCp
}

// ColorPrimaries is the CICP colour_primaries code. It only affects
// conversion for MatrixCoefficientsChromaDerivedNCL.
type ColorPrimaries uint16

const (
	ColorPrimariesBT709       ColorPrimaries = 1
	ColorPrimariesUnspecified ColorPrimaries = 2
	ColorPrimariesBT470M      ColorPrimaries = 4
	ColorPrimariesBT470BG     ColorPrimaries = 5
	ColorPrimariesBT601       ColorPrimaries = 6
	ColorPrimariesSMPTE240    ColorPrimaries = 7
	ColorPrimariesGenericFilm ColorPrimaries = 8
	ColorPrimariesBT2020      ColorPrimaries = 9
	ColorPrimariesXYZ         ColorPrimaries = 10
	ColorPrimariesSMPTE431    ColorPrimaries = 11
	ColorPrimariesSMPTE432    ColorPrimaries = 12
	ColorPrimariesEBU3213     ColorPrimaries = 22
)

// chromaticities holds CIE 1931 xy for red, green, blue and white.
type chromaticities [8]float64

var primariesTable = map[ColorPrimaries]chromaticities{
	ColorPrimariesBT709:       {0.64, 0.33, 0.30, 0.60, 0.15, 0.06, 0.3127, 0.3290},
	ColorPrimariesUnspecified: {0.64, 0.33, 0.30, 0.60, 0.15, 0.06, 0.3127, 0.3290},
	ColorPrimariesBT470M:      {0.67, 0.33, 0.21, 0.71, 0.14, 0.08, 0.310, 0.316},
	ColorPrimariesBT470BG:     {0.64, 0.33, 0.29, 0.60, 0.15, 0.06, 0.3127, 0.3290},
	ColorPrimariesBT601:       {0.630, 0.340, 0.310, 0.595, 0.155, 0.070, 0.3127, 0.3290},
	ColorPrimariesSMPTE240:    {0.630, 0.340, 0.310, 0.595, 0.155, 0.070, 0.3127, 0.3290},
	ColorPrimariesGenericFilm: {0.681, 0.319, 0.243, 0.692, 0.145, 0.049, 0.310, 0.316},
	ColorPrimariesBT2020:      {0.708, 0.292, 0.170, 0.797, 0.131, 0.046, 0.3127, 0.3290},
	ColorPrimariesXYZ:         {1.0, 0.0, 0.0, 1.0, 0.0, 0.0, 0.3333, 0.3333},
	ColorPrimariesSMPTE431:    {0.680, 0.320, 0.265, 0.690, 0.150, 0.060, 0.314, 0.351},
	ColorPrimariesSMPTE432:    {0.680, 0.320, 0.265, 0.690, 0.150, 0.060, 0.3127, 0.3290},
	ColorPrimariesEBU3213:     {0.630, 0.340, 0.295, 0.605, 0.155, 0.077, 0.3127, 0.3290},
}

// Luma weights per matrix. Codes without an entry use BT.601.
var lumaTable = map[MatrixCoefficients][2]float32{
	MatrixCoefficientsBT709:     {0.2126, 0.0722},
	MatrixCoefficientsFCC:       {0.30, 0.11},
	MatrixCoefficientsBT470BG:   {0.299, 0.114},
	MatrixCoefficientsBT601:     {0.299, 0.114},
	MatrixCoefficientsSMPTE240:  {0.212, 0.087},
	MatrixCoefficientsBT2020NCL: {0.2627, 0.0593},
}

// lumaCoefficients returns kr, kg and kb for a Kr/Kb parameterized matrix.
func lumaCoefficients(m MatrixCoefficients, cp ColorPrimaries) (kr, kg, kb float32) {
	kr, kb = 0.299, 0.114
	if m == MatrixCoefficientsChromaDerivedNCL {
		kr, kb = derivedLuma(cp)
	} else if w, ok := lumaTable[m]; ok {
		kr, kb = w[0], w[1]
	}
	return kr, 1 - kr - kb, kb
}

// derivedLuma computes kr and kb from the primaries' chromaticities
// (H.273 equations 39 and 40). Unknown primaries are treated as BT.709.
func derivedLuma(cp ColorPrimaries) (kr, kb float32) {
	p, ok := primariesTable[cp]
	if !ok {
		p = primariesTable[ColorPrimariesBT709]
	}
	rX, rY, gX, gY, bX, bY, wX, wY := p[0], p[1], p[2], p[3], p[4], p[5], p[6], p[7]
	rZ := 1 - (rX + rY)
	gZ := 1 - (gX + gY)
	bZ := 1 - (bX + bY)
	wZ := 1 - (wX + wY)
	den := wY * (rX*(gY*bZ-bY*gZ) + gX*(bY*rZ-rY*bZ) + bX*(rY*gZ-gY*rZ))
	r := rY * (wX*(gY*bZ-bY*gZ) + wY*(bX*gZ-gX*bZ) + wZ*(gX*bY-bX*gY)) / den
	b := bY * (wX*(rY*gZ-gY*rZ) + wY*(gX*rZ-rX*gZ) + wZ*(rX*gY-gX*rY)) / den
	return float32(r), float32(b)
}
