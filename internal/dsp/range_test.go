package dsp

import "testing"

func TestRangeEndpoints(t *testing.T) {
	tests := []struct {
		name  string
		fn    func(depth, v int) int
		depth int
		in    int
		want  int
	}{
		{"LimitedToFullY 8 lo", LimitedToFullY, 8, 16, 0},
		{"LimitedToFullY 8 hi", LimitedToFullY, 8, 235, 255},
		{"LimitedToFullY 8 below", LimitedToFullY, 8, 0, 0},
		{"LimitedToFullY 8 above", LimitedToFullY, 8, 255, 255},
		{"LimitedToFullUV 8 hi", LimitedToFullUV, 8, 240, 255},
		{"LimitedToFullUV 8 mid", LimitedToFullUV, 8, 128, 128},
		{"LimitedToFullY 10 lo", LimitedToFullY, 10, 64, 0},
		{"LimitedToFullY 10 hi", LimitedToFullY, 10, 940, 1023},
		{"LimitedToFullUV 10 hi", LimitedToFullUV, 10, 960, 1023},
		{"LimitedToFullY 12 hi", LimitedToFullY, 12, 3760, 4095},
		{"LimitedToFullUV 12 hi", LimitedToFullUV, 12, 3840, 4095},
		{"FullToLimitedY 8 lo", FullToLimitedY, 8, 0, 16},
		{"FullToLimitedY 8 hi", FullToLimitedY, 8, 255, 235},
		{"FullToLimitedUV 8 hi", FullToLimitedUV, 8, 255, 240},
		{"FullToLimitedY 10 hi", FullToLimitedY, 10, 1023, 940},
		{"FullToLimitedUV 12 lo", FullToLimitedUV, 12, 0, 256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.depth, tt.in); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

// Every legal limited code survives a trip through full range.
func TestLimitedRoundTrip(t *testing.T) {
	for _, depth := range []int{8, 10, 12} {
		lo, hi := LimitedBoundsY(depth)
		for v := lo; v <= hi; v++ {
			if got := FullToLimitedY(depth, LimitedToFullY(depth, v)); got != v {
				t.Fatalf("Y depth %d: %d -> %d", depth, v, got)
			}
		}
		lo, hi = LimitedBoundsUV(depth)
		for v := lo; v <= hi; v++ {
			if got := FullToLimitedUV(depth, LimitedToFullUV(depth, v)); got != v {
				t.Fatalf("UV depth %d: %d -> %d", depth, v, got)
			}
		}
	}
}

func TestFullToLimitedStaysInWindow(t *testing.T) {
	for _, depth := range []int{8, 10, 12} {
		loY, hiY := LimitedBoundsY(depth)
		loUV, hiUV := LimitedBoundsUV(depth)
		for v := 0; v < 1<<uint(depth); v++ {
			if got := FullToLimitedY(depth, v); got < loY || got > hiY {
				t.Fatalf("Y depth %d: %d -> %d outside [%d, %d]", depth, v, got, loY, hiY)
			}
			if got := FullToLimitedUV(depth, v); got < loUV || got > hiUV {
				t.Fatalf("UV depth %d: %d -> %d outside [%d, %d]", depth, v, got, loUV, hiUV)
			}
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-3, 0, 10) != 0 || Clamp(11, 0, 10) != 10 || Clamp(5, 0, 10) != 5 {
		t.Error("Clamp returned a value outside its bounds")
	}
}
