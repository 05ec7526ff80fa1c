package colour

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	imgload "github.com/jmylchreest/glazecat/internal/image"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSamplerPoint(t *testing.T) {
	s := NewSampler(DefaultSamplerConfig())

	tests := []struct {
		name   string
		bounds image.Rectangle
		pos    Position
		want   image.Point
	}{
		{name: "left 100x100", bounds: image.Rect(0, 0, 100, 100), pos: PositionLeft, want: image.Pt(45, 55)},
		{name: "top 100x100", bounds: image.Rect(0, 0, 100, 100), pos: PositionTop, want: image.Pt(50, 20)},
		{name: "left 1x1", bounds: image.Rect(0, 0, 1, 1), pos: PositionLeft, want: image.Pt(0, 0)},
		{name: "top 1x1 clamps inset", bounds: image.Rect(0, 0, 1, 1), pos: PositionTop, want: image.Pt(0, 0)},
		{name: "top short image clamps inset", bounds: image.Rect(0, 0, 40, 10), pos: PositionTop, want: image.Pt(20, 9)},
		{name: "offset bounds", bounds: image.Rect(10, 10, 110, 60), pos: PositionLeft, want: image.Pt(55, 37)},
		{name: "odd width top", bounds: image.Rect(0, 0, 7, 30), pos: PositionTop, want: image.Pt(3, 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Point(tt.bounds, tt.pos)
			if err != nil {
				t.Fatalf("Point() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Point() = %v, want %v", got, tt.want)
			}
			if !got.In(tt.bounds) {
				t.Errorf("Point() = %v outside %v", got, tt.bounds)
			}
		})
	}
}

func TestSamplerPointAlwaysInBounds(t *testing.T) {
	configs := []SamplerConfig{
		DefaultSamplerConfig(),
		{BlurRadius: 0, TopInset: 1000, LeftFractionX: 1, LeftFractionY: 1},
		{BlurRadius: 0, TopInset: 0, LeftFractionX: 0, LeftFractionY: 0},
	}
	for _, cfg := range configs {
		s := NewSampler(cfg)
		for w := 1; w <= 50; w += 7 {
			for h := 1; h <= 50; h += 5 {
				b := image.Rect(0, 0, w, h)
				for _, pos := range Positions() {
					pt, err := s.Point(b, pos)
					if err != nil {
						t.Fatalf("Point(%v, %s) error = %v", b, pos, err)
					}
					if !pt.In(b) {
						t.Fatalf("Point(%v, %s) = %v out of bounds", b, pos, pt)
					}
				}
			}
		}
	}
}

func TestSamplerPointErrors(t *testing.T) {
	s := NewSampler(DefaultSamplerConfig())
	if _, err := s.Point(image.Rect(0, 0, 0, 10), PositionLeft); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Point() on empty bounds error = %v, want ErrEmptyImage", err)
	}
	if _, err := s.Point(image.Rect(0, 0, 10, 10), Position("bottom")); err == nil {
		t.Error("Point() with unknown position should fail")
	}
}

func TestSampleSolidRedIsBlurInvariant(t *testing.T) {
	red := RGB{R: 255}
	img := solidImage(100, 100, color.NRGBA{R: 255, A: 255})

	for _, radius := range []float64{0, 10, 25} {
		cfg := DefaultSamplerConfig()
		cfg.BlurRadius = radius
		s := NewSampler(cfg)

		for _, pos := range Positions() {
			got, err := s.Sample(img, pos)
			if err != nil {
				t.Fatalf("Sample(radius=%g, %s) error = %v", radius, pos, err)
			}
			if got != red {
				t.Errorf("Sample(radius=%g, %s) = %v, want %v", radius, pos, got, red)
			}
		}
	}
}

func TestSampleAveragesNoise(t *testing.T) {
	// A checkerboard of black and white averages to mid grey once blurred.
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{A: 255})
			} else {
				img.Set(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}

	s := NewSampler(DefaultSamplerConfig())
	got, err := s.Sample(img, PositionLeft)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	for _, ch := range []uint8{got.R, got.G, got.B} {
		if ch < 120 || ch > 135 {
			t.Errorf("Sample() = %v, want approximately mid grey", got)
			break
		}
	}
}

func TestSampleAlphaAndGray(t *testing.T) {
	cfg := DefaultSamplerConfig()
	cfg.BlurRadius = 0
	s := NewSampler(cfg)

	translucent := solidImage(10, 10, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	got, err := s.Sample(translucent, PositionLeft)
	if err != nil {
		t.Fatal(err)
	}
	if want := (RGB{R: 132, G: 137, B: 142}); got != want {
		t.Errorf("Sample(translucent) = %v, want %v", got, want)
	}

	gray := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range gray.Pix {
		gray.Pix[i] = 200
	}
	got, err = s.Sample(gray, PositionTop)
	if err != nil {
		t.Fatal(err)
	}
	if want := (RGB{R: 200, G: 200, B: 200}); got != want {
		t.Errorf("Sample(gray) = %v, want %v", got, want)
	}
}

func TestSampleBothDistinctRegions(t *testing.T) {
	// Top band blue, remainder green: top samples blue, left samples green.
	img := solidImage(200, 200, color.NRGBA{G: 255, A: 255})
	for y := 0; y < 60; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.NRGBA{B: 255, A: 255})
		}
	}

	cfg := DefaultSamplerConfig()
	cfg.BlurRadius = 2
	left, top, err := NewSampler(cfg).SampleBoth(img)
	if err != nil {
		t.Fatalf("SampleBoth() error = %v", err)
	}
	if left != (RGB{G: 255}) {
		t.Errorf("left = %v, want green", left)
	}
	if top != (RGB{B: 255}) {
		t.Errorf("top = %v, want blue", top)
	}

	if got := left.Hex(); got != "#00ff00" {
		t.Errorf("left.Hex() = %q", got)
	}
	parsed, err := ParseHex(top.Hex())
	if err != nil || parsed != top {
		t.Errorf("ParseHex(top.Hex()) = %v, %v; want %v", parsed, err, top)
	}
}

func TestSampleEmptyImage(t *testing.T) {
	s := NewSampler(DefaultSamplerConfig())
	if _, err := s.Sample(image.NewNRGBA(image.Rect(0, 0, 0, 0)), PositionLeft); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Sample(empty) error = %v, want ErrEmptyImage", err)
	}
	if _, _, err := s.SampleBoth(nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("SampleBoth(nil) error = %v, want ErrEmptyImage", err)
	}
}

func TestSampleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swatch.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, solidImage(30, 30, color.NRGBA{R: 12, G: 34, B: 56, A: 255})); err != nil {
		t.Fatal(err)
	}
	f.Close()

	s := NewSampler(DefaultSamplerConfig())

	left, top, err := s.SampleFile(path)
	if err != nil {
		t.Fatalf("SampleFile() error = %v", err)
	}
	want := RGB{R: 12, G: 34, B: 56}
	if left != want || top != want {
		t.Errorf("SampleFile() = %v, %v; want %v", left, top, want)
	}

	_, _, err = s.SampleFile(filepath.Join(dir, "missing.jpg"))
	var de *imgload.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("SampleFile(missing) error = %v, want *DecodeError", err)
	}
}

func TestSamplerConfigValidate(t *testing.T) {
	if err := DefaultSamplerConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	bad := []SamplerConfig{
		{TopInset: -1, LeftFractionX: 0.5, LeftFractionY: 0.5},
		{LeftFractionX: 1.5, LeftFractionY: 0.5},
		{LeftFractionX: 0.5, LeftFractionY: -0.1},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", cfg)
		}
	}
}
