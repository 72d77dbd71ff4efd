package dsp

import (
	"encoding/binary"
	"math/bits"
)

// Plane is a bounds-checked view of one channel inside a sample buffer.
//
// A planar Y/U/V/A buffer has PixelBytes == SampleBytes. A channel of a
// packed RGB(A) buffer starts at the channel's byte offset and steps by the
// full pixel size. Samples of two bytes are little-endian.
type Plane struct {
	Pix         []byte
	RowBytes    int
	PixelBytes  int
	SampleBytes int
}

// NewPlane returns a planar view where each sample is its own pixel.
func NewPlane(pix []byte, rowBytes, sampleBytes int) Plane {
	return Plane{Pix: pix, RowBytes: rowBytes, PixelBytes: sampleBytes, SampleBytes: sampleBytes}
}

// NewChannel returns a view of the channel at byte offset off of a packed
// buffer with pixelBytes bytes per pixel. pix must be longer than off.
func NewChannel(pix []byte, off, rowBytes, pixelBytes, sampleBytes int) Plane {
	return Plane{Pix: pix[off:], RowBytes: rowBytes, PixelBytes: pixelBytes, SampleBytes: sampleBytes}
}

// Offset returns the byte offset of sample (x, y).
func (p Plane) Offset(x, y int) int {
	return y*p.RowBytes + x*p.PixelBytes
}

// At returns sample (x, y).
func (p Plane) At(x, y int) uint16 {
	off := p.Offset(x, y)
	if p.SampleBytes == 1 {
		return uint16(p.Pix[off])
	}
	return binary.LittleEndian.Uint16(p.Pix[off:])
}

// Set stores v at (x, y). Narrow planes keep the low byte.
func (p Plane) Set(x, y int, v uint16) {
	off := p.Offset(x, y)
	if p.SampleBytes == 1 {
		p.Pix[off] = uint8(v)
		return
	}
	binary.LittleEndian.PutUint16(p.Pix[off:], v)
}

// Fits reports whether the view covers width x height samples.
func (p Plane) Fits(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if p.RowBytes < (width-1)*p.PixelBytes+p.SampleBytes {
		return false
	}
	hi, rows := bits.Mul64(uint64(height-1), uint64(p.RowBytes))
	if hi != 0 {
		return false
	}
	need, carry := bits.Add64(rows, uint64((width-1)*p.PixelBytes+p.SampleBytes), 0)
	return carry == 0 && need <= uint64(len(p.Pix))
}

// AdjacentChroma returns the step (-1, 0 or +1) from the chroma sample
// closest to luma position pos to the next closest one along the same axis
// of a 2x subsampled plane. Odd positions look forward, even positions look
// back; the first position and an odd last position have no second sample
// and duplicate the closest one.
func AdjacentChroma(pos, size int) int {
	if pos == 0 || (pos == size-1 && pos&1 != 0) {
		return 0
	}
	if pos&1 != 0 {
		return 1
	}
	return -1
}
