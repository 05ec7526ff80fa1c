package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmylchreest/glazecat/internal/colour"
)

// ColorsHeader is the header row of a colours CSV.
var ColorsHeader = []string{"code", "color_name", "left_color_hex", "top_color_hex", "left_color_rgb", "top_color_rgb"}

// ColorRecord holds the two sampled colours of one product. Left and Top are
// nil when the image could not be downloaded or decoded.
type ColorRecord struct {
	Code string
	Name string
	Left *colour.RGB
	Top  *colour.RGB

	// ImagePath is the local image the colours were sampled from. It is not
	// part of the colours CSV; see AttachImages.
	ImagePath string
}

// Complete reports whether both colours are set.
func (r ColorRecord) Complete() bool {
	return r.Left != nil && r.Top != nil
}

// Complete returns the records that have both colours set.
func Complete(records []ColorRecord) []ColorRecord {
	out := make([]ColorRecord, 0, len(records))
	for _, r := range records {
		if r.Complete() {
			out = append(out, r)
		}
	}
	return out
}

// AttachImages copies local image paths from listing rows onto records with
// the same code.
func AttachImages(records []ColorRecord, rows []ListingRow) {
	paths := make(map[string]string, len(rows))
	for _, row := range rows {
		if !row.Failed() {
			paths[row.Code] = row.LocalImagePath
		}
	}
	for i := range records {
		if p, ok := paths[records[i].Code]; ok {
			records[i].ImagePath = p
		}
	}
}

// WriteColors writes records as CSV. Unset colours are empty cells.
func WriteColors(w io.Writer, records []ColorRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ColorsHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{r.Code, r.Name, hexOf(r.Left), hexOf(r.Top), rgbOf(r.Left), rgbOf(r.Top)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadColors reads a colours CSV. The rgb columns are optional; the hex
// columns are authoritative.
func ReadColors(r io.Reader) ([]ColorRecord, error) {
	records, cols, err := readTable(r, ColorsHeader[:4]...)
	if err != nil {
		return nil, err
	}

	out := make([]ColorRecord, 0, len(records))
	for i, rec := range records {
		cr := ColorRecord{
			Code: field(rec, cols, "code"),
			Name: field(rec, cols, "color_name"),
		}
		if cr.Left, err = parseOptional(field(rec, cols, "left_color_hex"), field(rec, cols, "left_color_rgb")); err != nil {
			return nil, fmt.Errorf("row %d (%s): left colour: %w", i+2, cr.Code, err)
		}
		if cr.Top, err = parseOptional(field(rec, cols, "top_color_hex"), field(rec, cols, "top_color_rgb")); err != nil {
			return nil, fmt.Errorf("row %d (%s): top colour: %w", i+2, cr.Code, err)
		}
		out = append(out, cr)
	}
	return out, nil
}

// SaveColors writes records to path, creating parent directories.
func SaveColors(path string, records []ColorRecord) error {
	return writeFile(path, func(w io.Writer) error { return WriteColors(w, records) })
}

// LoadColors reads a colours CSV from path.
func LoadColors(path string) ([]ColorRecord, error) {
	f, err := os.Open(path) // #nosec G304 - Colours path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to open colours: %w", err)
	}
	defer f.Close()

	records, err := ReadColors(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func hexOf(c *colour.RGB) string {
	if c == nil {
		return ""
	}
	return c.Hex()
}

func rgbOf(c *colour.RGB) string {
	if c == nil {
		return ""
	}
	return c.String()
}

func parseOptional(hex, rgb string) (*colour.RGB, error) {
	if hex != "" {
		c, err := colour.ParseHex(hex)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
	if rgb != "" {
		c, err := ParseRGB(rgb)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
	return nil, nil
}

// ParseRGB parses the "(r, g, b)" form produced by colour.RGB.String.
func ParseRGB(s string) (colour.RGB, error) {
	inner := strings.TrimSpace(s)
	inner = strings.TrimPrefix(inner, "(")
	inner = strings.TrimSuffix(inner, ")")
	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return colour.RGB{}, fmt.Errorf("invalid rgb %q", s)
	}

	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return colour.RGB{}, fmt.Errorf("invalid rgb %q: %w", s, err)
		}
		ch[i] = uint8(v)
	}
	return colour.RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}
