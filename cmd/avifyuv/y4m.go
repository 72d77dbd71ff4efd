package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/deepteams/avif"
)

const y4mMagic = "YUV4MPEG2"

// y4mColorspace returns the C tag for the given layout. 8-bit 4:2:0 uses
// the JPEG siting tag most tools default to.
func y4mColorspace(format avif.PixelFormat, depth int, alpha bool) (string, error) {
	var base string
	switch format {
	case avif.PixelFormatYUV444:
		base = "444"
	case avif.PixelFormatYUV422:
		base = "422"
	case avif.PixelFormatYUV420:
		base = "420"
	case avif.PixelFormatYUV400:
		base = "mono"
	default:
		return "", fmt.Errorf("y4m: unsupported pixel format %v", format)
	}
	if alpha {
		if format != avif.PixelFormatYUV444 || depth != 8 {
			return "", errors.New("y4m: alpha requires 8-bit 4:4:4")
		}
		return "444alpha", nil
	}
	switch {
	case depth == 8 && format == avif.PixelFormatYUV420:
		return "420jpeg", nil
	case depth == 8:
		return base, nil
	case format == avif.PixelFormatYUV400:
		return fmt.Sprintf("mono%d", depth), nil
	default:
		return fmt.Sprintf("%sp%d", base, depth), nil
	}
}

// parseY4MColorspace is the inverse of y4mColorspace. A missing tag means
// 8-bit 4:2:0.
func parseY4MColorspace(tag string) (format avif.PixelFormat, depth int, alpha bool, err error) {
	switch tag {
	case "", "420", "420jpeg", "420paldv", "420mpeg2":
		return avif.PixelFormatYUV420, 8, false, nil
	case "422":
		return avif.PixelFormatYUV422, 8, false, nil
	case "444":
		return avif.PixelFormatYUV444, 8, false, nil
	case "444alpha":
		return avif.PixelFormatYUV444, 8, true, nil
	case "mono":
		return avif.PixelFormatYUV400, 8, false, nil
	}
	if d, ok := strings.CutPrefix(tag, "mono"); ok {
		depth, err = strconv.Atoi(d)
		format = avif.PixelFormatYUV400
	} else if base, d, ok := strings.Cut(tag, "p"); ok {
		depth, err = strconv.Atoi(d)
		switch base {
		case "420":
			format = avif.PixelFormatYUV420
		case "422":
			format = avif.PixelFormatYUV422
		case "444":
			format = avif.PixelFormatYUV444
		}
	}
	if err != nil || format == avif.PixelFormatNone || (depth != 10 && depth != 12) {
		return avif.PixelFormatNone, 0, false, fmt.Errorf("y4m: unsupported colorspace %q", tag)
	}
	return format, depth, false, nil
}

// writeY4M writes img as a single-frame YUV4MPEG2 stream. Row padding is
// dropped; wide samples stay little-endian as the format requires.
func writeY4M(w io.Writer, img *avif.Image) error {
	alpha := img.AlphaPlane != nil
	cs, err := y4mColorspace(img.YUVFormat, img.Depth, alpha)
	if err != nil {
		return err
	}
	colorRange := "FULL"
	if img.YUVRange == avif.RangeLimited {
		colorRange = "LIMITED"
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s W%d H%d F25:1 Ip A1:1 C%s XCOLORRANGE=%s\nFRAME\n",
		y4mMagic, img.Width, img.Height, cs, colorRange)

	sampleBytes := 1
	if img.Depth > 8 {
		sampleBytes = 2
	}
	writePlane := func(pix []byte, rowBytes, width, height int) error {
		for y := 0; y < height; y++ {
			if _, err := bw.Write(pix[y*rowBytes : y*rowBytes+width*sampleBytes]); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writePlane(img.YUVPlanes[avif.ChannelY], img.YUVRowBytes[avif.ChannelY], img.Width, img.Height); err != nil {
		return err
	}
	if img.YUVFormat != avif.PixelFormatYUV400 {
		cw, ch := img.ChromaSize()
		for _, c := range []int{avif.ChannelU, avif.ChannelV} {
			if err := writePlane(img.YUVPlanes[c], img.YUVRowBytes[c], cw, ch); err != nil {
				return err
			}
		}
	}
	if alpha {
		if err := writePlane(img.AlphaPlane, img.AlphaRowBytes, img.Width, img.Height); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// readY4M reads the first frame of a YUV4MPEG2 stream. Streams without an
// XCOLORRANGE tag are taken as limited range.
func readY4M(r io.Reader) (*avif.Image, error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("y4m: reading header: %w", err)
	}
	fields := strings.Fields(header)
	if len(fields) == 0 || fields[0] != y4mMagic {
		return nil, errors.New("y4m: missing YUV4MPEG2 signature")
	}

	var width, height int
	var cs string
	yuvRange := avif.RangeLimited
	for _, f := range fields[1:] {
		switch f[0] {
		case 'W':
			width, err = strconv.Atoi(f[1:])
		case 'H':
			height, err = strconv.Atoi(f[1:])
		case 'C':
			cs = f[1:]
		case 'X':
			switch f[1:] {
			case "COLORRANGE=FULL":
				yuvRange = avif.RangeFull
			case "COLORRANGE=LIMITED":
				yuvRange = avif.RangeLimited
			}
		}
		if err != nil {
			return nil, fmt.Errorf("y4m: bad header field %q", f)
		}
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("y4m: invalid dimensions %dx%d", width, height)
	}
	format, depth, alpha, err := parseY4MColorspace(cs)
	if err != nil {
		return nil, err
	}

	frame, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("y4m: reading frame header: %w", err)
	}
	if !strings.HasPrefix(frame, "FRAME") {
		return nil, errors.New("y4m: missing FRAME marker")
	}

	img := avif.NewImage(width, height, depth, format)
	img.YUVRange = yuvRange
	planes := avif.PlanesYUV
	if alpha {
		planes = avif.PlanesAll
	}
	if err := img.AllocatePlanes(planes); err != nil {
		return nil, err
	}

	sampleBytes := 1
	if depth > 8 {
		sampleBytes = 2
	}
	readPlane := func(pix []byte, rowBytes, width, height int) error {
		for y := 0; y < height; y++ {
			if _, err := io.ReadFull(br, pix[y*rowBytes:y*rowBytes+width*sampleBytes]); err != nil {
				return fmt.Errorf("y4m: truncated frame: %w", err)
			}
		}
		return nil
	}

	if err := readPlane(img.YUVPlanes[avif.ChannelY], img.YUVRowBytes[avif.ChannelY], width, height); err != nil {
		return nil, err
	}
	if format != avif.PixelFormatYUV400 {
		cw, ch := img.ChromaSize()
		for _, c := range []int{avif.ChannelU, avif.ChannelV} {
			if err := readPlane(img.YUVPlanes[c], img.YUVRowBytes[c], cw, ch); err != nil {
				return nil, err
			}
		}
	}
	if alpha {
		if err := readPlane(img.AlphaPlane, img.AlphaRowBytes, width, height); err != nil {
			return nil, err
		}
	}
	return img, nil
}
