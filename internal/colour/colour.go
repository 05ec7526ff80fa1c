// Package colour provides colour sampling and formatting for glaze swatches.
package colour

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB represents an opaque colour in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour in the "(r, g, b)" form used by CSV rgb columns.
func (rgb RGB) String() string {
	return fmt.Sprintf("(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a lowercase hex string (e.g., "#1a2b3c").
// This is the canonical representation shared by every output format.
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// ParseHex parses "#rrggbb" or "#rgb" into an RGB value.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// Color returns the colour as an opaque color.RGBA.
func (rgb RGB) Color() color.Color {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// BlendOverWhite composites a non-premultiplied colour with alpha a over an
// opaque white background, rounding each channel to the nearest integer.
func BlendOverWhite(r, g, b, a uint8) RGB {
	if a == 255 {
		return RGB{R: r, G: g, B: b}
	}
	alpha := float64(a) / 255.0
	blend := func(c uint8) uint8 {
		v := float64(c)*alpha + 255*(1-alpha)
		return uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	return RGB{R: blend(r), G: blend(g), B: blend(b)}
}

// RGBA lets RGB satisfy color.Color.
func (rgb RGB) RGBA() (r, g, b, a uint32) {
	return rgb.Color().RGBA()
}
