// Command avifyuv converts images between RGB and the planar YUV layouts
// used by AVIF, through the github.com/deepteams/avif reformat engine.
//
// Usage:
//
//	avifyuv enc [options] <input>       PNG/JPEG/GIF/BMP/TIFF/WebP → Y4M (use "-" for stdin)
//	avifyuv dec [options] <input.y4m>   Y4M → PNG (use "-" for stdin, -o - for stdout)
//	avifyuv roundtrip [options] <input> RGB → YUV → RGB, reports PSNR per channel
//	avifyuv info                        Display supported layouts and CPU features
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/sys/cpu"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/deepteams/avif"
)

// cli carries the standard streams so commands can run in-process.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

var errUsage = errors.New("usage")

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	err := c.run(os.Args[1:])
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "avifyuv: %v\n", err)
		os.Exit(1)
	}
}

func (c *cli) run(args []string) error {
	if len(args) < 1 {
		c.printUsage()
		return errUsage
	}
	switch args[0] {
	case "enc":
		return c.runEnc(args[1:])
	case "dec":
		return c.runDec(args[1:])
	case "roundtrip":
		return c.runRoundtrip(args[1:])
	case "info":
		return c.runInfo(args[1:])
	case "-h", "-help", "--help", "help":
		c.printUsage()
		return nil
	default:
		fmt.Fprintf(c.stderr, "avifyuv: unknown command %q\n\n", args[0])
		c.printUsage()
		return errUsage
	}
}

func (c *cli) printUsage() {
	fmt.Fprintf(c.stderr, `Usage:
  avifyuv enc [options] <input>         Convert an image to a Y4M frame
  avifyuv dec [options] <input.y4m>     Convert a Y4M frame to PNG
  avifyuv roundtrip [options] <input>   Convert RGB → YUV → RGB and report PSNR
  avifyuv info                          Display supported layouts and CPU features

Use "-" as input to read from stdin, "-o -" to write to stdout.

Run "avifyuv <command> -h" for command-specific options.
`)
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned.
func (c *cli) openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(c.stdin), nil
	}
	return os.Open(path)
}

// createOutput resolves the output path, defaulting to the input base name
// with ext, and returns a writer for it. "-" is stdout.
func (c *cli) createOutput(outputPath, inputPath, ext string) (io.WriteCloser, string, error) {
	if outputPath == "-" {
		return nopWriteCloser{c.stdout}, outputPath, nil
	}
	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "output" + ext
		} else {
			outputPath = strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)) + ext
		}
	}
	f, err := os.Create(outputPath)
	return f, outputPath, err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// --- shared conversion flags ---

type convOptions struct {
	depth      int
	format     avif.PixelFormat
	matrix     avif.MatrixCoefficients
	yuvRange   avif.Range
	upsampling avif.ChromaUpsampling
}

// addConvFlags registers the conversion flags on fs and returns a function
// that validates them after parsing.
func (c *cli) addConvFlags(fs *flag.FlagSet) func() (convOptions, error) {
	depth := fs.Int("depth", 8, "YUV bit depth: 8, 10 or 12")
	format := fs.String("format", "420", "chroma layout: 444, 422, 420 or 400")
	matrix := fs.String("matrix", "bt601", "matrix coefficients name or CICP code")
	yuvRange := fs.String("range", "full", "YUV range: full or limited")
	upsampling := fs.String("upsampling", "auto", "chroma upsampling: auto, fastest, best, nearest or bilinear")
	verbose := fs.Bool("v", false, "log conversion details to stderr")

	return func() (convOptions, error) {
		var o convOptions
		var err error
		o.depth = *depth
		if o.format, err = parseFormat(*format); err != nil {
			return o, err
		}
		if o.matrix, err = parseMatrix(*matrix); err != nil {
			return o, err
		}
		if o.yuvRange, err = parseRange(*yuvRange); err != nil {
			return o, err
		}
		if o.upsampling, err = parseUpsampling(*upsampling); err != nil {
			return o, err
		}
		if *verbose {
			avif.SetLogger(slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
		return o, nil
	}
}

func parseFormat(s string) (avif.PixelFormat, error) {
	switch strings.ToLower(s) {
	case "444", "yuv444":
		return avif.PixelFormatYUV444, nil
	case "422", "yuv422":
		return avif.PixelFormatYUV422, nil
	case "420", "yuv420":
		return avif.PixelFormatYUV420, nil
	case "400", "yuv400", "mono":
		return avif.PixelFormatYUV400, nil
	}
	return avif.PixelFormatNone, fmt.Errorf("unknown pixel format %q", s)
}

func parseMatrix(s string) (avif.MatrixCoefficients, error) {
	if n, err := strconv.ParseUint(s, 10, 16); err == nil {
		return avif.MatrixCoefficients(n), nil
	}
	for m := avif.MatrixCoefficientsIdentity; m <= avif.MatrixCoefficientsICtCp; m++ {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown matrix coefficients %q", s)
}

func parseRange(s string) (avif.Range, error) {
	switch strings.ToLower(s) {
	case "full", "pc":
		return avif.RangeFull, nil
	case "limited", "tv":
		return avif.RangeLimited, nil
	}
	return 0, fmt.Errorf("unknown range %q", s)
}

func parseUpsampling(s string) (avif.ChromaUpsampling, error) {
	switch strings.ToLower(s) {
	case "auto", "automatic":
		return avif.ChromaUpsamplingAutomatic, nil
	case "fastest":
		return avif.ChromaUpsamplingFastest, nil
	case "best":
		return avif.ChromaUpsamplingBestQuality, nil
	case "nearest":
		return avif.ChromaUpsamplingNearest, nil
	case "bilinear":
		return avif.ChromaUpsamplingBilinear, nil
	}
	return 0, fmt.Errorf("unknown chroma upsampling %q", s)
}

// parseSize parses "WxH".
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	w, errW := strconv.Atoi(ws)
	h, errH := strconv.Atoi(hs)
	if !ok || errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", s)
	}
	return w, h, nil
}

// loadImage decodes the input with any registered image decoder and
// optionally scales it with Catmull-Rom.
func (c *cli) loadImage(path, resize string) (image.Image, error) {
	in, err := c.openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("decoding input: %w", err)
	}
	if resize == "" {
		return img, nil
	}
	w, h, err := parseSize(resize)
	if err != nil {
		return nil, err
	}
	dst := image.NewNRGBA64(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

// toYUV converts img into a new planar image. The returned RGB buffer holds
// the source samples at the YUV depth.
func toYUV(img image.Image, o convOptions, alpha bool) (*avif.Image, *avif.RGBImage, error) {
	rgb, err := avif.NewRGBImageFromImage(img, o.depth)
	if err != nil {
		return nil, nil, err
	}
	yuv := avif.NewImage(rgb.Width, rgb.Height, o.depth, o.format)
	yuv.MatrixCoefficients = o.matrix
	yuv.YUVRange = o.yuvRange
	planes := avif.PlanesYUV
	if alpha {
		planes = avif.PlanesAll
	}
	if err := yuv.AllocatePlanes(planes); err != nil {
		rgb.FreePixels()
		return nil, nil, err
	}
	if err := avif.ImageFromRGB(rgb, yuv); err != nil {
		rgb.FreePixels()
		yuv.FreePlanes(avif.PlanesAll)
		return nil, nil, err
	}
	return yuv, rgb, nil
}

// toRGB converts yuv into a new RGBA buffer of the given depth.
func toRGB(yuv *avif.Image, depth int, upsampling avif.ChromaUpsampling) (*avif.RGBImage, error) {
	rgb := avif.NewRGBImage(yuv)
	rgb.Depth = depth
	rgb.RowBytes = 0
	rgb.ChromaUpsampling = upsampling
	rgb.AllocatePixels()
	if err := avif.ImageToRGB(yuv, rgb); err != nil {
		rgb.FreePixels()
		return nil, err
	}
	return rgb, nil
}

// --- enc ---

func (c *cli) runEnc(args []string) error {
	fs := c.flagSet("enc")
	output := fs.String("o", "", `output path (default: <input>.y4m, "-" for stdout)`)
	resize := fs.String("resize", "", "scale to WxH before conversion")
	alpha := fs.Bool("alpha", false, "keep a non-opaque alpha channel (8-bit 444 only)")
	conv := c.addConvFlags(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("enc: missing input file\nUsage: avifyuv enc [options] <input>")
	}
	inputPath := fs.Arg(0)
	o, err := conv()
	if err != nil {
		return fmt.Errorf("enc: %w", err)
	}
	if *alpha && (o.depth != 8 || o.format != avif.PixelFormatYUV444) {
		return errors.New("enc: -alpha requires -depth 8 -format 444")
	}

	img, err := c.loadImage(inputPath, *resize)
	if err != nil {
		return fmt.Errorf("enc: %w", err)
	}
	yuv, rgb, err := toYUV(img, o, *alpha)
	if err != nil {
		return fmt.Errorf("enc: %w", err)
	}
	defer yuv.FreePlanes(avif.PlanesAll)
	rgb.FreePixels()
	if yuv.IsOpaque() {
		yuv.FreePlanes(avif.PlanesA)
	}

	out, outputPath, err := c.createOutput(*output, inputPath, ".y4m")
	if err != nil {
		return err
	}
	if err := writeY4M(out, yuv); err != nil {
		out.Close()
		if outputPath != "-" {
			os.Remove(outputPath)
		}
		return fmt.Errorf("enc: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	if outputPath != "-" {
		fmt.Fprintf(c.stderr, "Converted %s → %s (%dx%d %v %d-bit)\n",
			inputPath, outputPath, yuv.Width, yuv.Height, yuv.YUVFormat, yuv.Depth)
	}
	return nil
}

// --- dec ---

func (c *cli) runDec(args []string) error {
	fs := c.flagSet("dec")
	output := fs.String("o", "", `output path (default: <input>.png, "-" for stdout)`)
	rgbDepth := fs.Int("rgbdepth", 0, "RGB bit depth: 8 or 16 (default: 8 for 8-bit input, else 16)")
	matrix := fs.String("matrix", "bt601", "matrix coefficients name or CICP code")
	upsampling := fs.String("upsampling", "auto", "chroma upsampling: auto, fastest, best, nearest or bilinear")
	verbose := fs.Bool("v", false, "log conversion details to stderr")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("dec: missing input file\nUsage: avifyuv dec [options] <input.y4m>")
	}
	inputPath := fs.Arg(0)
	mc, err := parseMatrix(*matrix)
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}
	up, err := parseUpsampling(*upsampling)
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}
	if *verbose {
		avif.SetLogger(slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	in, err := c.openInput(inputPath)
	if err != nil {
		return err
	}
	yuv, err := readY4M(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}
	defer yuv.FreePlanes(avif.PlanesAll)
	yuv.MatrixCoefficients = mc

	depth := *rgbDepth
	if depth == 0 {
		depth = 16
		if yuv.Depth == 8 {
			depth = 8
		}
	}
	if depth != 8 && depth != 16 {
		return fmt.Errorf("dec: PNG output needs an RGB depth of 8 or 16, got %d", depth)
	}
	rgb, err := toRGB(yuv, depth, up)
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}
	defer rgb.FreePixels()
	img, err := rgb.ToImage()
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}

	out, outputPath, err := c.createOutput(*output, inputPath, ".png")
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		if outputPath != "-" {
			os.Remove(outputPath)
		}
		return fmt.Errorf("dec: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	if outputPath != "-" {
		fmt.Fprintf(c.stderr, "Converted %s → %s\n", inputPath, outputPath)
	}
	return nil
}

// --- roundtrip ---

func (c *cli) runRoundtrip(args []string) error {
	fs := c.flagSet("roundtrip")
	resize := fs.String("resize", "", "scale to WxH before conversion")
	conv := c.addConvFlags(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("roundtrip: missing input file\nUsage: avifyuv roundtrip [options] <input>")
	}
	o, err := conv()
	if err != nil {
		return fmt.Errorf("roundtrip: %w", err)
	}

	img, err := c.loadImage(fs.Arg(0), *resize)
	if err != nil {
		return fmt.Errorf("roundtrip: %w", err)
	}
	yuv, src, err := toYUV(img, o, false)
	if err != nil {
		return fmt.Errorf("roundtrip: %w", err)
	}
	defer src.FreePixels()
	defer yuv.FreePlanes(avif.PlanesAll)

	dst, err := toRGB(yuv, o.depth, o.upsampling)
	if err != nil {
		return fmt.Errorf("roundtrip: %w", err)
	}
	defer dst.FreePixels()

	fmt.Fprintf(c.stdout, "%dx%d %v %d-bit %v %v range\n",
		yuv.Width, yuv.Height, yuv.YUVFormat, yuv.Depth, yuv.MatrixCoefficients, yuv.YUVRange)
	for i, name := range []string{"R", "G", "B"} {
		fmt.Fprintf(c.stdout, "PSNR %s: %s\n", name, formatPSNR(psnr(src, dst, i)))
	}
	return nil
}

// psnr compares channel ch of two RGBA buffers of equal geometry.
func psnr(a, b *avif.RGBImage, ch int) float64 {
	cb := 1
	if a.Depth > 8 {
		cb = 2
	}
	sample := func(rgb *avif.RGBImage, x, y int) float64 {
		off := y*rgb.RowBytes + (x*4+ch)*cb
		if cb == 1 {
			return float64(rgb.Pixels[off])
		}
		return float64(uint16(rgb.Pixels[off]) | uint16(rgb.Pixels[off+1])<<8)
	}
	var sum float64
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			d := sample(a, x, y) - sample(b, x, y)
			sum += d * d
		}
	}
	mse := sum / float64(a.Width*a.Height)
	if mse == 0 {
		return math.Inf(1)
	}
	peak := float64(int(1)<<uint(a.Depth) - 1)
	return 10 * math.Log10(peak*peak/mse)
}

func formatPSNR(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f dB", v)
}

// --- info ---

func (c *cli) runInfo(args []string) error {
	fs := c.flagSet("info")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := c.stdout
	fmt.Fprintf(w, "Pixel formats: 444 422 420 400\n")
	fmt.Fprintf(w, "YUV depths:    8 10 12\n")
	fmt.Fprintf(w, "RGB depths:    8 10 12 16\n")
	var names []string
	for m := avif.MatrixCoefficientsIdentity; m <= avif.MatrixCoefficientsICtCp; m++ {
		if m.Supported() {
			names = append(names, m.String())
		}
	}
	fmt.Fprintf(w, "Matrices:      %s\n", strings.Join(names, " "))

	accel := "none"
	if a := avif.Accelerator(); a != nil {
		accel = a.Name()
	}
	fmt.Fprintf(w, "Accelerator:   %s\n", accel)
	fmt.Fprintf(w, "CPU:           %s/%s %s\n", runtime.GOOS, runtime.GOARCH, strings.Join(cpuFeatures(), " "))
	return nil
}

// cpuFeatures lists the SIMD extensions a reformat accelerator could use.
func cpuFeatures() []string {
	var feats []string
	add := func(ok bool, name string) {
		if ok {
			feats = append(feats, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE2, "sse2")
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
		add(cpu.X86.HasAVX512BW, "avx512bw")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasFPHP, "fphp")
		add(cpu.ARM64.HasSVE, "sve")
		add(cpu.ARM64.HasSVE2, "sve2")
	}
	if len(feats) == 0 {
		feats = append(feats, "(no SIMD features detected)")
	}
	return feats
}
