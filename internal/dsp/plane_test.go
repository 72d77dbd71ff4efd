package dsp

import (
	"math"
	"testing"
)

func TestPlaneAtSet(t *testing.T) {
	narrow := NewPlane(make([]byte, 3*2), 3, 1)
	narrow.Set(2, 1, 0x1ff)
	if got := narrow.At(2, 1); got != 0xff {
		t.Errorf("narrow At = %#x, want 0xff", got)
	}
	if narrow.Pix[5] != 0xff {
		t.Errorf("narrow sample stored at wrong offset: %v", narrow.Pix)
	}

	wide := NewPlane(make([]byte, 8), 4, 2)
	wide.Set(1, 1, 0x0302)
	if wide.Pix[6] != 0x02 || wide.Pix[7] != 0x03 {
		t.Errorf("wide sample not little-endian: %v", wide.Pix)
	}
	if got := wide.At(1, 1); got != 0x0302 {
		t.Errorf("wide At = %#x, want 0x302", got)
	}
}

func TestChannelView(t *testing.T) {
	// Two RGBA pixels per row, two rows, 8-bit.
	pix := make([]byte, 2*8)
	g := NewChannel(pix, 1, 8, 4, 1)
	g.Set(1, 1, 7)
	if pix[8+4+1] != 7 {
		t.Errorf("green written to wrong byte: %v", pix)
	}
	// 16-bit ARGB: alpha at 0, blue at 6.
	pix16 := make([]byte, 8)
	b := NewChannel(pix16, 6, 8, 8, 2)
	b.Set(0, 0, 0xabcd)
	if pix16[6] != 0xcd || pix16[7] != 0xab {
		t.Errorf("16-bit channel written to wrong bytes: %v", pix16)
	}
}

func TestPlaneFits(t *testing.T) {
	tests := []struct {
		name string
		p    Plane
		w, h int
		want bool
	}{
		{"exact", NewPlane(make([]byte, 12), 4, 1), 4, 3, true},
		{"short", NewPlane(make([]byte, 11), 4, 1), 4, 3, false},
		{"padded rows last row short", NewPlane(make([]byte, 6+4), 6, 1), 4, 2, true},
		{"row too narrow", NewPlane(make([]byte, 64), 3, 1), 4, 2, false},
		{"wide", NewPlane(make([]byte, 16), 8, 2), 4, 2, true},
		{"wide short", NewPlane(make([]byte, 15), 8, 2), 4, 2, false},
		{"channel", NewChannel(make([]byte, 8), 3, 8, 4, 1), 2, 1, true},
		{"empty", NewPlane(nil, 4, 1), 4, 1, false},
		{"zero size", NewPlane(make([]byte, 4), 4, 1), 0, 1, false},
		{"row bytes wraps", NewPlane(make([]byte, 4), math.MaxInt>>1+1, 1), 1, 5, false},
		{"row bytes near max", NewPlane(make([]byte, 4), math.MaxInt, 1), 1, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Fits(tt.w, tt.h); got != tt.want {
				t.Errorf("Fits(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestAdjacentChroma(t *testing.T) {
	tests := []struct {
		pos, size, want int
	}{
		{0, 1, 0},
		{0, 4, 0},
		{1, 4, 1},
		{2, 4, -1},
		{3, 4, 0}, // odd last position has no forward neighbor
		{2, 3, -1},
		{1, 2, 0},
		{1, 3, 1},
	}
	for _, tt := range tests {
		if got := AdjacentChroma(tt.pos, tt.size); got != tt.want {
			t.Errorf("AdjacentChroma(%d, %d) = %d, want %d", tt.pos, tt.size, got, tt.want)
		}
	}
	// The selected neighbor must always be inside a plane of (size+1)/2 samples.
	for size := 1; size < 9; size++ {
		chroma := (size + 1) >> 1
		for pos := 0; pos < size; pos++ {
			n := pos>>1 + AdjacentChroma(pos, size)
			if n < 0 || n >= chroma {
				t.Errorf("size %d pos %d: neighbor %d outside [0, %d)", size, pos, n, chroma)
			}
		}
	}
}
