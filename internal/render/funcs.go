package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"

	"github.com/jmylchreest/glazecat/internal/colour"
)

// TemplateFuncs returns the functions available to every template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Colour formatting.
		"hex":        hexFunc,
		"rgb":        rgbFunc,
		"textColour": textColourFunc,

		// Layout arithmetic.
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"mul": func(a, b int) int { return a * b },
		"div": divFunc,

		// Escaping for text/template based XML output.
		"xml": xmlEscape,

		// String manipulation (pipe-friendly argument order).
		"trimPrefix": func(prefix, s string) string { return strings.TrimPrefix(s, prefix) },
		"replace":    func(old, new, s string) string { return strings.ReplaceAll(s, old, new) },
		"toLower":    strings.ToLower,
		"toUpper":    strings.ToUpper,
	}
}

func toRGB(v any) (colour.RGB, bool) {
	switch c := v.(type) {
	case colour.RGB:
		return c, true
	case *colour.RGB:
		if c == nil {
			return colour.RGB{}, false
		}
		return *c, true
	case string:
		rgb, err := colour.ParseHex(c)
		return rgb, err == nil
	}
	return colour.RGB{}, false
}

// hexFunc returns a colour in #rrggbb format, or "" for an unset colour.
func hexFunc(v any) string {
	c, ok := toRGB(v)
	if !ok {
		return ""
	}
	return c.Hex()
}

// rgbFunc returns a colour in CSS rgb(r, g, b) format.
func rgbFunc(v any) string {
	c, ok := toRGB(v)
	if !ok {
		return ""
	}
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// textColourFunc returns a readable text colour for the background.
func textColourFunc(v any) string {
	c, ok := toRGB(v)
	if !ok {
		return "#000000"
	}
	return colour.TextColour(c).Hex()
}

func divFunc(a, b int) (int, error) {
	if b == 0 {
		return 0, fmt.Errorf("division by zero")
	}
	return a / b, nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
