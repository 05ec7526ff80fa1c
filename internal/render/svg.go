package render

import (
	"bytes"
	"fmt"
	"math"
	"text/template"

	"github.com/hashicorp/go-hclog"
	"github.com/jmylchreest/glazecat/internal/colour"
)

// SVGLayout describes a swatch sheet grid. Items are placed left to right,
// ItemsPerRow to a row, starting Top pixels below the sheet's top edge.
type SVGLayout struct {
	Name     string
	Template string
	Suffix   string

	SwatchSize  int
	ItemWidth   int
	TextHeight  int
	RowHeight   int
	ItemsPerRow int
	Margin      int
	ColumnGap   int
	Top         int
}

// DetailedLayout shows both swatches with hex codes and position labels.
func DetailedLayout() SVGLayout {
	return SVGLayout{
		Name:        "detailed",
		Template:    "detailed.svg.tmpl",
		Suffix:      "",
		SwatchSize:  60,
		ItemWidth:   200,
		TextHeight:  20,
		RowHeight:   60*2 + 20*3 + 20,
		ItemsPerRow: 6,
		Margin:      20,
		ColumnGap:   20,
		Top:         80,
	}
}

// CompactLayout shows both swatches with hex codes in a denser grid.
func CompactLayout() SVGLayout {
	return SVGLayout{
		Name:        "compact",
		Template:    "compact.svg.tmpl",
		Suffix:      "_compact",
		SwatchSize:  40,
		ItemWidth:   150,
		TextHeight:  15,
		RowHeight:   40*2 + 15*2 + 15,
		ItemsPerRow: 8,
		Margin:      15,
		ColumnGap:   15,
		Top:         60,
	}
}

// StripLayout shows only the left swatch labelled with the code.
func StripLayout() SVGLayout {
	return SVGLayout{
		Name:        "strip",
		Template:    "strip.svg.tmpl",
		Suffix:      "_strip",
		SwatchSize:  20,
		ItemWidth:   20,
		TextHeight:  15,
		RowHeight:   20 + 15 + 2,
		ItemsPerRow: 20,
		Margin:      10,
		ColumnGap:   2,
		Top:         10 + 30,
	}
}

// SVGLayouts returns the built-in layouts keyed by name.
func SVGLayouts() map[string]SVGLayout {
	return map[string]SVGLayout{
		"detailed": DetailedLayout(),
		"compact":  CompactLayout(),
		"strip":    StripLayout(),
	}
}

// Validate checks that the layout produces a usable grid.
func (l SVGLayout) Validate() error {
	if l.ItemsPerRow < 1 {
		return fmt.Errorf("layout %q: items per row must be at least 1", l.Name)
	}
	if l.SwatchSize <= 0 || l.ItemWidth <= 0 || l.RowHeight <= 0 {
		return fmt.Errorf("layout %q: swatch size, item width and row height must be positive", l.Name)
	}
	if l.Margin < 0 || l.ColumnGap < 0 || l.Top < 0 {
		return fmt.Errorf("layout %q: margins must not be negative", l.Name)
	}
	return nil
}

// Width returns the sheet width.
func (l SVGLayout) Width() int {
	return 2*l.Margin + l.ItemsPerRow*l.ItemWidth + (l.ItemsPerRow-1)*l.ColumnGap
}

// Height returns the sheet height for n items.
func (l SVGLayout) Height(n int) int {
	rows := (n + l.ItemsPerRow - 1) / l.ItemsPerRow
	return l.Top + rows*l.RowHeight + l.Margin
}

// Position returns the top-left corner of item i.
func (l SVGLayout) Position(i int) (x, y int) {
	row, col := i/l.ItemsPerRow, i%l.ItemsPerRow
	return l.Margin + col*(l.ItemWidth+l.ColumnGap), l.Top + row*l.RowHeight
}

type svgItem struct {
	X, Y int
	Code string
	Name string
	Left string
	Top  string
}

type svgData struct {
	Title     string
	LeftLabel string
	TopLabel  string
	LeftXPct  float64
	LeftYPct  float64
	Width     int
	Height    int
	CenterX   int
	Layout    SVGLayout
	Items     []svgItem
}

// SVG renders one swatch sheet per category and layout.
type SVG struct {
	layouts []SVGLayout
	sampler colour.SamplerConfig
	loader  *TemplateLoader
}

// NewSVG creates the svg renderer. The sampler policy labels the sample positions.
func NewSVG(layouts []SVGLayout, sampler colour.SamplerConfig, templateDir string, logger hclog.Logger) *SVG {
	return &SVG{
		layouts: layouts,
		sampler: sampler,
		loader:  NewTemplateLoader("svg", templateDir, logger),
	}
}

// Name returns the renderer name.
func (s *SVG) Name() string {
	return "svg"
}

// Description returns the renderer description.
func (s *SVG) Description() string {
	return "Swatch sheets per category (detailed, compact and strip layouts)"
}

// Loader returns the template loader.
func (s *SVG) Loader() *TemplateLoader {
	return s.loader
}

// Render builds <category>_colors<suffix>.svg for every category and layout.
func (s *SVG) Render(cat *Catalog) (map[string][]byte, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}

	files := make(map[string][]byte)
	for _, layout := range s.layouts {
		if err := layout.Validate(); err != nil {
			return nil, err
		}

		tmpl, err := s.parse(layout)
		if err != nil {
			return nil, err
		}

		for _, sec := range cat.Sections {
			data := s.prepare(sec, layout)
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, data); err != nil {
				return nil, fmt.Errorf("failed to execute %s template for %s: %w", layout.Name, sec.Category.Name, err)
			}
			files[sec.Category.Name+"_colors"+layout.Suffix+".svg"] = buf.Bytes()
		}
	}
	return files, nil
}

func (s *SVG) parse(layout SVGLayout) (*template.Template, error) {
	content, _, err := s.loader.Load(layout.Template)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(layout.Template).Funcs(TemplateFuncs()).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", layout.Name, err)
	}
	return tmpl, nil
}

func (s *SVG) prepare(sec Section, layout SVGLayout) svgData {
	data := svgData{
		Title:     sec.Category.Title,
		LeftLabel: PositionLabel(s.sampler),
		TopLabel:  "Top middle",
		LeftXPct:  percent(s.sampler.LeftFractionX),
		LeftYPct:  percent(s.sampler.LeftFractionY),
		Width:     layout.Width(),
		Height:    layout.Height(len(sec.Records)),
		Layout:    layout,
		Items:     make([]svgItem, 0, len(sec.Records)),
	}
	data.CenterX = data.Width / 2

	for i, r := range sec.Records {
		x, y := layout.Position(i)
		data.Items = append(data.Items, svgItem{
			X:    x,
			Y:    y,
			Code: r.Code,
			Name: r.Name,
			Left: r.Left.Hex(),
			Top:  r.Top.Hex(),
		})
	}
	return data
}

// PositionLabel describes the left sample position, e.g. "45% w, 55% h".
func PositionLabel(cfg colour.SamplerConfig) string {
	return fmt.Sprintf("%g%% w, %g%% h", percent(cfg.LeftFractionX), percent(cfg.LeftFractionY))
}

// percent converts a fraction to a percentage rounded to one decimal.
func percent(f float64) float64 {
	return math.Round(f*1000) / 10
}
