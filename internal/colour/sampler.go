package colour

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	imgload "github.com/jmylchreest/glazecat/internal/image"
)

// Position names a sampling policy within an image.
type Position string

const (
	// PositionLeft samples slightly left of and below the centre.
	PositionLeft Position = "left"

	// PositionTop samples the horizontal centre, a fixed inset below the top edge.
	PositionTop Position = "top"
)

// Positions returns the positions sampled for every record, in output order.
func Positions() []Position {
	return []Position{PositionLeft, PositionTop}
}

// ErrEmptyImage is returned when sampling an image with no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// SamplerConfig holds the sampling policy constants.
type SamplerConfig struct {
	// BlurRadius is the Gaussian blur sigma in pixels applied to the whole
	// image before sampling. Zero or negative disables blurring.
	BlurRadius float64 `json:"blur_radius"`

	// TopInset is the distance in pixels of the top sample from the top edge.
	TopInset int `json:"top_inset"`

	// LeftFractionX and LeftFractionY place the left sample as fractions of
	// the image width and height.
	LeftFractionX float64 `json:"left_fraction_x"`
	LeftFractionY float64 `json:"left_fraction_y"`
}

// DefaultSamplerConfig returns the default sampling policy.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		BlurRadius:    10,
		TopInset:      20,
		LeftFractionX: 0.45,
		LeftFractionY: 0.55,
	}
}

// Validate validates the sampler configuration.
func (c SamplerConfig) Validate() error {
	if c.TopInset < 0 {
		return fmt.Errorf("top inset must not be negative, got %d", c.TopInset)
	}
	if c.LeftFractionX < 0 || c.LeftFractionX > 1 {
		return fmt.Errorf("left fraction x must be within [0, 1], got %g", c.LeftFractionX)
	}
	if c.LeftFractionY < 0 || c.LeftFractionY > 1 {
		return fmt.Errorf("left fraction y must be within [0, 1], got %g", c.LeftFractionY)
	}
	return nil
}

// Sampler extracts representative colours at fixed positions of an image.
// A Sampler holds no per-image state and may be reused.
type Sampler struct {
	config SamplerConfig
	loader imgload.Loader
}

// NewSampler creates a sampler with the given policy.
func NewSampler(config SamplerConfig) *Sampler {
	return &Sampler{
		config: config,
		loader: imgload.NewFileLoader(),
	}
}

// Point returns the pixel sampled for pos within bounds.
// Each coordinate is clamped independently to the bounds.
func (s *Sampler) Point(bounds image.Rectangle, pos Position) (image.Point, error) {
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return image.Point{}, ErrEmptyImage
	}

	var x, y int
	switch pos {
	case PositionLeft:
		x = int(float64(w) * s.config.LeftFractionX)
		y = int(float64(h) * s.config.LeftFractionY)
	case PositionTop:
		x = w / 2
		y = s.config.TopInset
	default:
		return image.Point{}, fmt.Errorf("unknown position: %q", pos)
	}

	return image.Pt(bounds.Min.X+clamp(x, 0, w-1), bounds.Min.Y+clamp(y, 0, h-1)), nil
}

// Blur returns the image blurred with the configured radius.
// The result always has its origin at (0, 0).
func (s *Sampler) Blur(img image.Image) *image.NRGBA {
	if s.config.BlurRadius <= 0 {
		return imaging.Clone(img)
	}
	return imaging.Blur(img, s.config.BlurRadius)
}

// Sample blurs img and returns the colour at pos.
func (s *Sampler) Sample(img image.Image, pos Position) (RGB, error) {
	if img == nil {
		return RGB{}, ErrEmptyImage
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return RGB{}, ErrEmptyImage
	}
	return s.sampleBlurred(s.Blur(img), pos)
}

// SampleBoth returns the left and top colours of img, blurring it once.
func (s *Sampler) SampleBoth(img image.Image) (left, top RGB, err error) {
	if img == nil {
		return RGB{}, RGB{}, ErrEmptyImage
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return RGB{}, RGB{}, ErrEmptyImage
	}

	blurred := s.Blur(img)
	if left, err = s.sampleBlurred(blurred, PositionLeft); err != nil {
		return RGB{}, RGB{}, err
	}
	if top, err = s.sampleBlurred(blurred, PositionTop); err != nil {
		return RGB{}, RGB{}, err
	}
	return left, top, nil
}

// SampleFile loads the image at path and returns its left and top colours.
// Load failures are returned as *image.DecodeError.
func (s *Sampler) SampleFile(path string) (left, top RGB, err error) {
	img, err := s.loader.Load(path)
	if err != nil {
		if imgload.IsDecodeError(err) {
			return RGB{}, RGB{}, err
		}
		return RGB{}, RGB{}, &imgload.DecodeError{Path: path, Err: err}
	}

	left, top, err = s.SampleBoth(img)
	if err != nil {
		return RGB{}, RGB{}, &imgload.DecodeError{Path: path, Err: err}
	}
	return left, top, nil
}

func (s *Sampler) sampleBlurred(img *image.NRGBA, pos Position) (RGB, error) {
	pt, err := s.Point(img.Bounds(), pos)
	if err != nil {
		return RGB{}, err
	}
	px := img.NRGBAAt(pt.X, pt.Y)
	return BlendOverWhite(px.R, px.G, px.B, px.A), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
