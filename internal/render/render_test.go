package render

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/glazecat/internal/colour"
	"github.com/jmylchreest/glazecat/internal/config"
	"github.com/jmylchreest/glazecat/internal/dataset"
	"github.com/stretchr/testify/require"
)

func rgb(r, g, b uint8) *colour.RGB {
	return &colour.RGB{R: r, G: g, B: b}
}

func testCatalog() *Catalog {
	return NewCatalog(
		Section{
			Category: config.DefaultCategory(config.KindGlaze),
			Records: []dataset.ColorRecord{
				{Code: "SC-74", Name: "Hot Tamale", Left: rgb(200, 30, 10), Top: rgb(190, 40, 20), ImagePath: "glaze_images/sc_74_cone06.jpg"},
				{Code: "SC-2", Name: "Failed"},
				{Code: "SC-15", Name: "Black & Tan", Left: rgb(0, 0, 0), Top: rgb(20, 20, 20)},
			},
		},
		Section{
			Category: config.DefaultCategory(config.KindUnderglaze),
			Records: []dataset.ColorRecord{
				{Code: "UG-1", Name: "Dusty Rose", Left: rgb(210, 150, 150), Top: rgb(220, 160, 160), ImagePath: "underglaze_images/UG-1 Dusty Rose.jpg"},
			},
		},
	)
}

func TestNewCatalogKeepsCompleteRecords(t *testing.T) {
	cat := testCatalog()
	require.Len(t, cat.Sections, 2)
	require.Len(t, cat.ByKind(config.KindGlaze), 2)
	require.Len(t, cat.ByKind(config.KindUnderglaze), 1)
}

func TestJSONRender(t *testing.T) {
	files, err := NewJSON().Render(testCatalog())
	require.NoError(t, err)
	require.Contains(t, files, JSONFile)

	want := `{
  "glazes": [
    {
      "id": "SC-74",
      "name": "Hot Tamale",
      "color": "#c81e0a"
    },
    {
      "id": "SC-15",
      "name": "Black & Tan",
      "color": "#000000"
    }
  ],
  "underglazes": [
    {
      "id": "UG-1",
      "name": "Dusty Rose",
      "left": "#d29696",
      "top": "#dca0a0"
    }
  ]
}
`
	require.Equal(t, want, string(files[JSONFile]))
}

func TestJSONRenderEmpty(t *testing.T) {
	files, err := NewJSON().Render(NewCatalog())
	require.NoError(t, err)

	var doc ColorsDocument
	require.NoError(t, json.Unmarshal(files[JSONFile], &doc))
	require.NotNil(t, doc.Glazes)
	require.NotNil(t, doc.Underglazes)
	require.Contains(t, string(files[JSONFile]), `"glazes": []`)
}

func TestSVGLayoutGeometry(t *testing.T) {
	tests := []struct {
		layout SVGLayout
		n      int
		width  int
		height int
		lastX  int
		lastY  int
	}{
		{layout: DetailedLayout(), n: 7, width: 1340, height: 80 + 2*200 + 20, lastX: 20, lastY: 280},
		{layout: CompactLayout(), n: 8, width: 1335, height: 60 + 125 + 15, lastX: 15 + 7*165, lastY: 60},
		{layout: StripLayout(), n: 21, width: 458, height: 40 + 2*37 + 10, lastX: 10, lastY: 77},
		{layout: StripLayout(), n: 0, width: 458, height: 50},
	}
	for _, tt := range tests {
		t.Run(tt.layout.Name, func(t *testing.T) {
			require.NoError(t, tt.layout.Validate())
			require.Equal(t, tt.width, tt.layout.Width())
			require.Equal(t, tt.height, tt.layout.Height(tt.n))
			if tt.n > 0 {
				x, y := tt.layout.Position(tt.n - 1)
				require.Equal(t, tt.lastX, x)
				require.Equal(t, tt.lastY, y)
			}
		})
	}

	bad := DetailedLayout()
	bad.ItemsPerRow = 0
	require.Error(t, bad.Validate())
}

func TestSVGRender(t *testing.T) {
	layouts, err := LookupLayouts(nil)
	require.NoError(t, err)

	files, err := NewSVG(layouts, colour.DefaultSamplerConfig(), "", nil).Render(testCatalog())
	require.NoError(t, err)

	for _, name := range []string{
		"glaze_colors.svg", "glaze_colors_compact.svg", "glaze_colors_strip.svg",
		"underglaze_colors.svg", "underglaze_colors_compact.svg", "underglaze_colors_strip.svg",
	} {
		require.Contains(t, files, name)
	}

	detailed := string(files["glaze_colors.svg"])
	require.True(t, strings.HasPrefix(detailed, `<?xml version="1.0" encoding="UTF-8"?>`))
	require.Contains(t, detailed, `<svg width="1340" height="300"`)
	require.Contains(t, detailed, "Mayco Glaze Colors - Cone 06")
	require.Contains(t, detailed, "Color samples: 45% width/55% height and top middle positions")
	require.Contains(t, detailed, `<rect x="30" y="120" width="60" height="60" fill="#c81e0a"`)
	require.Contains(t, detailed, `<rect x="30" y="200" width="60" height="60" fill="#be2814"`)
	require.Contains(t, detailed, `<text x="60" y="192" class="position-label">L</text>`)
	require.Contains(t, detailed, "45% w, 55% h")
	require.Contains(t, detailed, "Black &amp; Tan")
	require.NotContains(t, detailed, "Failed")

	compact := string(files["underglaze_colors_compact.svg"])
	require.Contains(t, compact, `<rect x="20" y="85" width="40" height="40" fill="#d29696"`)
	require.Contains(t, compact, "L: 45% w/55% h | T: Top middle")

	strip := string(files["glaze_colors_strip.svg"])
	require.Contains(t, strip, `<rect x="10" y="40" width="20" height="20" fill="#c81e0a"`)
	require.Contains(t, strip, `<text x="20" y="75" text-anchor="middle" font-family="Arial, sans-serif" font-size="8">SC-74</text>`)
	require.NotContains(t, strip, "#be2814")
}

func TestSVGCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "svg"), 0o755))
	custom := `<svg>{{range .Items}}[{{.Code}}={{.Left}}]{{end}}</svg>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "svg", "strip.svg.tmpl"), []byte(custom), 0o644))

	files, err := NewSVG([]SVGLayout{StripLayout()}, colour.DefaultSamplerConfig(), dir, nil).Render(testCatalog())
	require.NoError(t, err)
	require.Equal(t, "<svg>[SC-74=#c81e0a][SC-15=#000000]</svg>", string(files["glaze_colors_strip.svg"]))
}

func TestHTMLRender(t *testing.T) {
	files, err := NewHTML(".", colour.DefaultSamplerConfig(), "", nil).Render(testCatalog())
	require.NoError(t, err)
	require.Contains(t, files, "glaze_colors.html")
	require.Contains(t, files, "underglaze_colors.html")

	page := string(files["glaze_colors.html"])
	require.Contains(t, page, "<title>Mayco Glaze Colors - Cone 06</title>")
	require.Contains(t, page, `src="glaze_images/sc_74_cone06.jpg"`)
	require.Contains(t, page, "background-color: #c81e0a")
	require.Contains(t, page, `<span class="hex-code">#be2814</span>`)
	require.Contains(t, page, "Black &amp; Tan")
	require.Contains(t, page, "45% width, 55% height")

	ug := string(files["underglaze_colors.html"])
	require.Contains(t, ug, `src="underglaze_images/UG-1%20Dusty%20Rose.jpg"`)
}

func TestHTMLImageSrcRelativeToOutput(t *testing.T) {
	h := NewHTML("site", colour.DefaultSamplerConfig(), "", nil)
	require.Equal(t, "../glaze_images/a.jpg", h.imageSrc("glaze_images/a.jpg"))
	require.Equal(t, "", h.imageSrc(""))
}

func TestSQLiteRender(t *testing.T) {
	files, err := NewSQLite().Render(testCatalog())
	require.NoError(t, err)
	require.Contains(t, files, SQLiteFile)

	path := filepath.Join(t.TempDir(), SQLiteFile)
	require.NoError(t, os.WriteFile(path, files[SQLiteFile], 0o644))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var glazes, underglazes int
	require.NoError(t, db.QueryRow("select count(*) from glazes").Scan(&glazes))
	require.NoError(t, db.QueryRow("select count(*) from underglazes").Scan(&underglazes))
	require.Equal(t, 2, glazes)
	require.Equal(t, 1, underglazes)

	var left, top string
	require.NoError(t, db.QueryRow("select left_color, top_color from underglazes where id = ?", "UG-1").Scan(&left, &top))
	require.Equal(t, "#d29696", left)
	require.Equal(t, "#dca0a0", top)
}

// Every renderer must emit the same hex string for the same colour.
func TestHexConsistentAcrossFormats(t *testing.T) {
	cat := testCatalog()
	reg, err := NewDefaultRegistry(Options{OutputDir: ".", Sampler: colour.DefaultSamplerConfig()})
	require.NoError(t, err)

	outputs := map[string]string{}
	for _, name := range []string{"json", "svg", "html"} {
		r, ok := reg.Get(name)
		require.True(t, ok)
		files, err := r.Render(cat)
		require.NoError(t, err)
		var all strings.Builder
		for _, content := range files {
			all.Write(content)
		}
		outputs[name] = all.String()
	}

	for _, sec := range cat.Sections {
		for _, r := range sec.Records {
			for format, out := range outputs {
				require.Contains(t, out, r.Left.Hex(), "%s missing left colour of %s", format, r.Code)
				if sec.Category.Kind == config.KindUnderglaze && format != "json" {
					require.Contains(t, out, r.Top.Hex(), "%s missing top colour of %s", format, r.Code)
				}
			}
		}
	}
}

func TestRegistry(t *testing.T) {
	reg, err := NewDefaultRegistry(Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"html", "json", "sqlite", "svg"}, reg.List())

	selected, err := reg.Select([]string{"svg", "json"})
	require.NoError(t, err)
	require.Equal(t, "svg", selected[0].Name())
	require.Equal(t, "json", selected[1].Name())

	_, err = reg.Select([]string{"pdf"})
	require.Error(t, err)

	_, err = NewDefaultRegistry(Options{SVGLayouts: []string{"poster"}})
	require.Error(t, err)

	require.Len(t, reg.TemplateLoaders(), 2)
}

func TestDumpTemplates(t *testing.T) {
	dir := t.TempDir()
	loader := NewTemplateLoader("svg", dir, nil)

	names, err := loader.ListEmbeddedTemplates()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"compact.svg.tmpl", "detailed.svg.tmpl", "strip.svg.tmpl"}, names)

	dumped, err := loader.DumpTemplates(false)
	require.NoError(t, err)
	require.Len(t, dumped, 3)

	content, fromCustom, err := loader.Load("strip.svg.tmpl")
	require.NoError(t, err)
	require.True(t, fromCustom)
	require.Contains(t, string(content), "<svg")

	_, err = loader.DumpTemplates(false)
	require.Error(t, err)

	_, err = NewTemplateLoader("svg", "", nil).DumpTemplates(false)
	require.Error(t, err)
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	written, err := WriteFiles(dir, map[string][]byte{
		"b.svg":       []byte("b"),
		"a.json":      []byte("a"),
		"nested/c.db": []byte("c"),
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.svg"),
		filepath.Join(dir, "nested", "c.db"),
	}, written)

	_, err = WriteFiles(dir, map[string][]byte{"../escape.json": nil})
	require.Error(t, err)
}
