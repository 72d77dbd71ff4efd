package avif

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"testing"
)

// fakeAccelerator fills RGB pixels with a marker byte, or fails with err.
type fakeAccelerator struct {
	err     error
	alpha   bool
	toRGB   int
	fromRGB int
	logger  *slog.Logger
}

func (f *fakeAccelerator) Name() string { return "fake" }

func (f *fakeAccelerator) ImageToRGB(image *Image, rgb *RGBImage) (bool, error) {
	f.toRGB++
	if f.err != nil {
		return false, f.err
	}
	for i := range rgb.Pixels {
		rgb.Pixels[i] = 0x5A
	}
	return f.alpha, nil
}

func (f *fakeAccelerator) ImageFromRGB(rgb *RGBImage, image *Image) (bool, error) {
	f.fromRGB++
	if f.err != nil {
		return false, f.err
	}
	for i := range image.YUVPlanes[ChannelY] {
		image.YUVPlanes[ChannelY][i] = 0x5A
	}
	return f.alpha, nil
}

func (f *fakeAccelerator) SetLogger(l *slog.Logger) { f.logger = l }

func useAccelerator(t *testing.T, a ReformatAccelerator) {
	t.Helper()
	if err := RegisterAccelerator(a); err != nil {
		t.Fatalf("RegisterAccelerator: %v", err)
	}
	t.Cleanup(UnregisterAccelerator)
}

func acceleratorFixture(t *testing.T) (*Image, *RGBImage) {
	t.Helper()
	img := newRandomImage(t, rand.New(rand.NewSource(21)), 6, 4, 8, PixelFormatYUV420, 255)
	rgb := NewRGBImage(img)
	rgb.AllocatePixels()
	return img, rgb
}

func TestRegisterAcceleratorNil(t *testing.T) {
	if err := RegisterAccelerator(nil); err == nil {
		t.Error("RegisterAccelerator(nil) succeeded")
	}
	if Accelerator() != nil {
		t.Error("nil accelerator was registered")
	}
}

func TestAcceleratorUsed(t *testing.T) {
	fake := &fakeAccelerator{}
	useAccelerator(t, fake)
	img, rgb := acceleratorFixture(t)
	if err := ImageToRGB(img, rgb); err != nil {
		t.Fatal(err)
	}
	if fake.toRGB != 1 {
		t.Fatalf("accelerator called %d times, want 1", fake.toRGB)
	}
	// The accelerator did not write alpha, so the package filled it.
	if p := pixel(rgb, 0, 0); p != [4]int{0x5A, 0x5A, 0x5A, 255} {
		t.Errorf("pixel = %v, want accelerator color with opaque alpha", p)
	}

	fake.alpha = true
	if err := ImageToRGB(img, rgb); err != nil {
		t.Fatal(err)
	}
	if p := pixel(rgb, 0, 0); p[3] != 0x5A {
		t.Errorf("alpha = %d, want accelerator's 0x5A", p[3])
	}
}

func TestAcceleratorSkipped(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RGBImage)
	}{
		{"avoid", func(rgb *RGBImage) { rgb.AvoidAccelerator = true }},
		{"best quality", func(rgb *RGBImage) { rgb.ChromaUpsampling = ChromaUpsamplingBestQuality }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAccelerator{}
			useAccelerator(t, fake)
			img, rgb := acceleratorFixture(t)
			tt.mutate(rgb)
			if err := ImageToRGB(img, rgb); err != nil {
				t.Fatal(err)
			}
			if fake.toRGB != 0 {
				t.Errorf("accelerator called %d times, want 0", fake.toRGB)
			}
		})
	}
}

func TestAcceleratorFallback(t *testing.T) {
	img, want := acceleratorFixture(t)
	if err := ImageToRGB(img, want); err != nil {
		t.Fatal(err)
	}

	for _, accelErr := range []error{ErrNotAccelerated, errors.New("device lost")} {
		t.Run(accelErr.Error(), func(t *testing.T) {
			var logs bytes.Buffer
			orig := Logger()
			SetLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn})))
			t.Cleanup(func() { SetLogger(orig) })

			fake := &fakeAccelerator{err: accelErr}
			useAccelerator(t, fake)
			rgb := NewRGBImage(img)
			rgb.AllocatePixels()
			if err := ImageToRGB(img, rgb); err != nil {
				t.Fatal(err)
			}
			if fake.toRGB != 1 {
				t.Errorf("accelerator called %d times, want 1", fake.toRGB)
			}
			if !bytes.Equal(rgb.Pixels, want.Pixels) {
				t.Error("fallback output differs from the built-in conversion")
			}
			warned := strings.Contains(logs.String(), "device lost")
			if wantWarn := !errors.Is(accelErr, ErrNotAccelerated); warned != wantWarn {
				t.Errorf("warned = %v, want %v; log: %s", warned, wantWarn, logs.String())
			}
		})
	}
}

func TestAcceleratorFromRGB(t *testing.T) {
	fake := &fakeAccelerator{}
	useAccelerator(t, fake)
	img, rgb := acceleratorFixture(t)
	if err := ImageFromRGB(rgb, img); err != nil {
		t.Fatal(err)
	}
	if fake.fromRGB != 1 || img.YUVPlanes[ChannelY][0] != 0x5A {
		t.Errorf("accelerator calls = %d, Y = %#x", fake.fromRGB, img.YUVPlanes[ChannelY][0])
	}

	// Premultiply reconciliation stays with the package.
	img.AlphaPremultiplied = true
	if err := ImageFromRGB(rgb, img); err != nil {
		t.Fatal(err)
	}
	if fake.fromRGB != 1 {
		t.Errorf("accelerator called for premultiplied conversion")
	}
}

func TestAcceleratorReceivesLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	fake := &fakeAccelerator{}
	useAccelerator(t, fake)
	if fake.logger != orig {
		t.Error("RegisterAccelerator did not pass the current logger")
	}
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(l)
	if fake.logger != l {
		t.Error("SetLogger did not reach the accelerator")
	}
}

func TestUnregisterAccelerator(t *testing.T) {
	useAccelerator(t, &fakeAccelerator{})
	UnregisterAccelerator()
	if a := Accelerator(); a != nil {
		t.Errorf("Accelerator() = %v after unregister", a.Name())
	}
}
