// Package render turns sampled colour records into publishable artifacts.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/jmylchreest/glazecat/internal/config"
	"github.com/jmylchreest/glazecat/internal/dataset"
	"github.com/jmylchreest/glazecat/internal/security"
)

// Renderer produces one or more files from a catalog.
type Renderer interface {
	// Name returns the format name (e.g., "json", "svg").
	Name() string

	// Description returns a human-readable description of the format.
	Description() string

	// Render returns a map of filename -> content.
	Render(cat *Catalog) (map[string][]byte, error)
}

// Section is one category and its complete records.
type Section struct {
	Category config.Category
	Records  []dataset.ColorRecord
}

// Catalog is the input of every renderer.
type Catalog struct {
	Sections []Section
}

// NewCatalog builds a catalog from per-category records, keeping only
// records with both colours set.
func NewCatalog(sections ...Section) *Catalog {
	c := &Catalog{Sections: make([]Section, 0, len(sections))}
	for _, s := range sections {
		c.Sections = append(c.Sections, Section{
			Category: s.Category,
			Records:  dataset.Complete(s.Records),
		})
	}
	return c
}

// ByKind returns the records of every section of kind, in section order.
func (c *Catalog) ByKind(kind config.Kind) []dataset.ColorRecord {
	var out []dataset.ColorRecord
	for _, s := range c.Sections {
		if s.Category.Kind == kind {
			out = append(out, s.Records...)
		}
	}
	return out
}

// Registry holds the available renderers.
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// Register adds a renderer to the registry.
func (r *Registry) Register(renderer Renderer) {
	r.renderers[renderer.Name()] = renderer
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, bool) {
	renderer, ok := r.renderers[name]
	return renderer, ok
}

// List returns all registered renderer names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the named renderers in the given order.
func (r *Registry) Select(names []string) ([]Renderer, error) {
	out := make([]Renderer, 0, len(names))
	for _, name := range names {
		renderer, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown format %q (available: %v)", name, r.List())
		}
		out = append(out, renderer)
	}
	return out, nil
}

// WriteFiles writes rendered files below dir and returns the written paths
// in name order.
func WriteFiles(dir string, files map[string][]byte) ([]string, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		if err := security.ValidateFilePath(name, dir); err != nil {
			return written, fmt.Errorf("refusing to write %q: %w", name, err)
		}
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { // #nosec G301 - Output directory needs standard permissions
			return written, fmt.Errorf("failed to create directory: %w", err)
		}
		if err := os.WriteFile(path, files[name], 0o644); err != nil { // #nosec G306 - Artifacts need standard read permissions
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
