package render

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/jmylchreest/glazecat/internal/colour"
)

// Options configures the built-in renderers.
type Options struct {
	OutputDir   string
	TemplateDir string
	SVGLayouts  []string
	Sampler     colour.SamplerConfig
	Logger      hclog.Logger
}

// NewDefaultRegistry returns a registry holding every built-in renderer.
func NewDefaultRegistry(opts Options) (*Registry, error) {
	layouts, err := LookupLayouts(opts.SVGLayouts)
	if err != nil {
		return nil, err
	}

	r := NewRegistry()
	r.Register(NewJSON())
	r.Register(NewSVG(layouts, opts.Sampler, opts.TemplateDir, opts.Logger))
	r.Register(NewHTML(opts.OutputDir, opts.Sampler, opts.TemplateDir, opts.Logger))
	r.Register(NewSQLite())
	return r, nil
}

// LookupLayouts resolves layout names. No names selects all built-in layouts.
func LookupLayouts(names []string) ([]SVGLayout, error) {
	if len(names) == 0 {
		names = []string{"detailed", "compact", "strip"}
	}
	known := SVGLayouts()
	out := make([]SVGLayout, 0, len(names))
	for _, name := range names {
		l, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown svg layout %q (want detailed, compact or strip)", name)
		}
		out = append(out, l)
	}
	return out, nil
}

// TemplateLoaders returns the loaders of registered renderers that use templates.
func (r *Registry) TemplateLoaders() []*TemplateLoader {
	var loaders []*TemplateLoader
	for _, name := range r.List() {
		if t, ok := r.renderers[name].(interface{ Loader() *TemplateLoader }); ok {
			loaders = append(loaders, t.Loader())
		}
	}
	return loaders
}
