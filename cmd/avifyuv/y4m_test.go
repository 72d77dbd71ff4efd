package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/avif"
)

func TestY4MColorspace(t *testing.T) {
	tests := []struct {
		format avif.PixelFormat
		depth  int
		alpha  bool
		tag    string
	}{
		{avif.PixelFormatYUV420, 8, false, "420jpeg"},
		{avif.PixelFormatYUV422, 8, false, "422"},
		{avif.PixelFormatYUV444, 8, false, "444"},
		{avif.PixelFormatYUV444, 8, true, "444alpha"},
		{avif.PixelFormatYUV400, 8, false, "mono"},
		{avif.PixelFormatYUV420, 10, false, "420p10"},
		{avif.PixelFormatYUV422, 12, false, "422p12"},
		{avif.PixelFormatYUV400, 12, false, "mono12"},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			tag, err := y4mColorspace(tt.format, tt.depth, tt.alpha)
			require.NoError(t, err)
			require.Equal(t, tt.tag, tag)

			format, depth, alpha, err := parseY4MColorspace(tag)
			require.NoError(t, err)
			require.Equal(t, tt.format, format)
			require.Equal(t, tt.depth, depth)
			require.Equal(t, tt.alpha, alpha)
		})
	}
}

func TestParseY4MColorspaceErrors(t *testing.T) {
	for _, tag := range []string{"411", "420p9", "444p", "mono16", "xyz"} {
		_, _, _, err := parseY4MColorspace(tag)
		require.Error(t, err, tag)
	}
	format, depth, _, err := parseY4MColorspace("")
	require.NoError(t, err)
	require.Equal(t, avif.PixelFormatYUV420, format)
	require.Equal(t, 8, depth)
}

func TestY4MRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		format avif.PixelFormat
		depth  int
		planes avif.Planes
	}{
		{avif.PixelFormatYUV420, 8, avif.PlanesYUV},
		{avif.PixelFormatYUV422, 10, avif.PlanesYUV},
		{avif.PixelFormatYUV400, 12, avif.PlanesYUV},
		{avif.PixelFormatYUV444, 8, avif.PlanesAll},
	} {
		t.Run(tt.format.String(), func(t *testing.T) {
			img := avif.NewImage(5, 3, tt.depth, tt.format)
			img.YUVRange = avif.RangeLimited
			require.NoError(t, img.AllocatePlanes(tt.planes))
			fill := func(p []byte, seed byte) {
				for i := range p {
					p[i] = seed + byte(i)
				}
				if tt.depth > 8 {
					// Keep wide samples within depth.
					for i := 1; i < len(p); i += 2 {
						p[i] &= 0x03
					}
				}
			}
			for c := range img.YUVPlanes {
				fill(img.YUVPlanes[c], byte(c*50))
			}
			fill(img.AlphaPlane, 200)

			var buf bytes.Buffer
			require.NoError(t, writeY4M(&buf, img))
			got, err := readY4M(&buf)
			require.NoError(t, err)
			require.Equal(t, img.Width, got.Width)
			require.Equal(t, img.Height, got.Height)
			require.Equal(t, img.Depth, got.Depth)
			require.Equal(t, img.YUVFormat, got.YUVFormat)
			require.Equal(t, avif.RangeLimited, got.YUVRange)
			require.Equal(t, img.YUVPlanes, got.YUVPlanes)
			require.Equal(t, img.AlphaPlane, got.AlphaPlane)
		})
	}
}
