package render

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/jmylchreest/glazecat/internal/colour"
	"github.com/jmylchreest/glazecat/internal/config"
)

const galleryTemplate = "gallery.html.tmpl"

type galleryItem struct {
	Code     string
	Name     string
	ImageSrc string
	Left     string
	Top      string
	KindName string
}

type galleryData struct {
	Title       string
	Description string
	LeftLabel   string
	TopLabel    string
	Items       []galleryItem
}

// HTML renders a gallery page per category with the original image and
// both sampled swatches of every product.
type HTML struct {
	outputDir string
	sampler   colour.SamplerConfig
	loader    *TemplateLoader
}

// NewHTML creates the html renderer. Image links are made relative to outputDir.
func NewHTML(outputDir string, sampler colour.SamplerConfig, templateDir string, logger hclog.Logger) *HTML {
	return &HTML{
		outputDir: outputDir,
		sampler:   sampler,
		loader:    NewTemplateLoader("html", templateDir, logger),
	}
}

// Name returns the renderer name.
func (h *HTML) Name() string {
	return "html"
}

// Description returns the renderer description.
func (h *HTML) Description() string {
	return "Gallery page per category with original images and swatches"
}

// Loader returns the template loader.
func (h *HTML) Loader() *TemplateLoader {
	return h.loader
}

// Render builds <category>_colors.html for every category.
func (h *HTML) Render(cat *Catalog) (map[string][]byte, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}

	content, _, err := h.loader.Load(galleryTemplate)
	if err != nil {
		return nil, err
	}
	tmpl, err := htmltemplate.New(galleryTemplate).
		Funcs(htmltemplate.FuncMap(TemplateFuncs())).
		Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse gallery template: %w", err)
	}

	files := make(map[string][]byte, len(cat.Sections))
	for _, sec := range cat.Sections {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, h.prepare(sec)); err != nil {
			return nil, fmt.Errorf("failed to execute gallery template for %s: %w", sec.Category.Name, err)
		}
		files[sec.Category.Name+"_colors.html"] = buf.Bytes()
	}
	return files, nil
}

func (h *HTML) prepare(sec Section) galleryData {
	kindName := "glaze"
	if sec.Category.Kind == config.KindUnderglaze {
		kindName = "underglaze"
	}

	data := galleryData{
		Title:       sec.Category.Title,
		Description: fmt.Sprintf("Color samples extracted from %s images (%g%% width/%g%% height and top middle positions)", kindName, percent(h.sampler.LeftFractionX), percent(h.sampler.LeftFractionY)),
		LeftLabel:   fmt.Sprintf("%g%% width, %g%% height", percent(h.sampler.LeftFractionX), percent(h.sampler.LeftFractionY)),
		TopLabel:    "Top position",
		Items:       make([]galleryItem, 0, len(sec.Records)),
	}
	for _, r := range sec.Records {
		data.Items = append(data.Items, galleryItem{
			Code:     r.Code,
			Name:     r.Name,
			ImageSrc: h.imageSrc(r.ImagePath),
			Left:     r.Left.Hex(),
			Top:      r.Top.Hex(),
			KindName: kindName,
		})
	}
	return data
}

// imageSrc returns a slash-separated link to path relative to the output directory.
func (h *HTML) imageSrc(path string) string {
	if path == "" {
		return ""
	}
	if h.outputDir != "" && !filepath.IsAbs(path) {
		if rel, err := filepath.Rel(h.outputDir, path); err == nil {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}
