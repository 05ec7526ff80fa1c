// Package config loads glazecat configuration from JSON5 files and the environment.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jmylchreest/glazecat/internal/catalog"
	"github.com/jmylchreest/glazecat/internal/colour"
)

// Kind is the catalog a category belongs to. It decides how records are
// rendered: glazes carry one colour, underglazes two.
type Kind string

// Category kinds.
const (
	KindGlaze      Kind = "glaze"
	KindUnderglaze Kind = "underglaze"
)

// Config is the full glazecat configuration.
type Config struct {
	Sampler    colour.SamplerConfig `json:"sampler"`
	Fetch      FetchConfig          `json:"fetch"`
	Render     RenderConfig         `json:"render"`
	Categories []Category           `json:"categories"`
}

// FetchConfig controls image downloads. Durations use time.ParseDuration syntax.
type FetchConfig struct {
	Timeout   string `json:"timeout"`
	Delay     string `json:"delay"`
	Workers   int    `json:"workers"`
	Overwrite bool   `json:"overwrite"`
	UserAgent string `json:"user_agent"`
}

// TimeoutDuration returns the parsed request timeout.
func (f FetchConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(f.Timeout)
	return d
}

// DelayDuration returns the parsed politeness delay.
func (f FetchConfig) DelayDuration() time.Duration {
	d, _ := time.ParseDuration(f.Delay)
	return d
}

// RenderConfig controls artifact rendering.
type RenderConfig struct {
	OutputDir   string   `json:"output_dir"`
	TemplateDir string   `json:"template_dir"`
	Formats     []string `json:"formats"`
	SVGLayouts  []string `json:"svg_layouts"`
}

// Category describes one product catalog and where its stage files live.
type Category struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`

	HTMLPath   string `json:"html_path"`
	ListingCSV string `json:"listing_csv"`
	ImageDir   string `json:"image_dir"`
	ColoursCSV string `json:"colours_csv"`

	CodePrefix    string `json:"code_prefix"`
	ConeLabel     string `json:"cone_label"`
	ConeSelector  string `json:"cone_selector"`
	BlockSelector string `json:"block_selector"`
	ImageSelector string `json:"image_selector"`
	BaseURL       string `json:"base_url"`

	FilenameStyle  catalog.FilenameStyle `json:"filename_style"`
	FilenameSuffix string                `json:"filename_suffix"`
}

// ParseOptions returns the catalog parser options for the category.
func (c Category) ParseOptions() catalog.Options {
	return catalog.Options{
		BlockSelector: c.BlockSelector,
		ImageSelector: c.ImageSelector,
		ConeLabel:     c.ConeLabel,
		ConeSelector:  c.ConeSelector,
		CodePattern:   catalog.CodeRegexp(c.CodePrefix),
		BaseURL:       c.BaseURL,
	}
}

// Default returns the built-in configuration for the Mayco Cone 06 catalogs.
func Default() *Config {
	return &Config{
		Sampler: colour.DefaultSamplerConfig(),
		Fetch: FetchConfig{
			Timeout: "30s",
			Delay:   "500ms",
			Workers: 1,
		},
		Render: RenderConfig{
			OutputDir:  ".",
			Formats:    []string{"json", "svg", "html"},
			SVGLayouts: []string{"detailed", "compact", "strip"},
		},
		Categories: []Category{
			DefaultCategory(KindGlaze),
			DefaultCategory(KindUnderglaze),
		},
	}
}

// DefaultCategory returns the defaults for a kind.
func DefaultCategory(kind Kind) Category {
	common := Category{
		Kind:          kind,
		ConeLabel:     catalog.DefaultConeLabel,
		BlockSelector: catalog.DefaultBlockSelector,
		ImageSelector: catalog.DefaultImageSelector,
	}
	switch kind {
	case KindUnderglaze:
		common.Name = "underglaze"
		common.Title = "Mayco Underglaze Colors - Cone 06"
		common.HTMLPath = "underglazes.html"
		common.ListingCSV = "underglazes_cone06.csv"
		common.ImageDir = "underglaze_images"
		common.ColoursCSV = "underglaze_colors.csv"
		common.CodePrefix = "UG-"
		common.ConeSelector = "small em"
		common.FilenameStyle = catalog.FilenameByURL
	default:
		common.Name = "glaze"
		common.Title = "Mayco Glaze Colors - Cone 06"
		common.HTMLPath = "glazes.html"
		common.ListingCSV = "glazes_cone06.csv"
		common.ImageDir = "glaze_images"
		common.ColoursCSV = "glaze_colors.csv"
		common.CodePrefix = catalog.DefaultCodePrefix
		common.FilenameStyle = catalog.FilenameByCode
		common.FilenameSuffix = "_cone06"
	}
	return common
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Sampler.Validate(); err != nil {
		return fmt.Errorf("sampler: %w", err)
	}

	if _, err := time.ParseDuration(c.Fetch.Timeout); err != nil {
		return fmt.Errorf("fetch.timeout: %w", err)
	}
	if c.Fetch.TimeoutDuration() <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if _, err := time.ParseDuration(c.Fetch.Delay); err != nil {
		return fmt.Errorf("fetch.delay: %w", err)
	}
	if c.Fetch.DelayDuration() < 0 {
		return fmt.Errorf("fetch.delay must not be negative")
	}
	if c.Fetch.Workers < 1 {
		return fmt.Errorf("fetch.workers must be at least 1")
	}

	if len(c.Categories) == 0 {
		return fmt.Errorf("no categories configured")
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if seen[cat.Name] {
			return fmt.Errorf("duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true

		if cat.Kind != KindGlaze && cat.Kind != KindUnderglaze {
			return fmt.Errorf("category %q: unknown kind %q", cat.Name, cat.Kind)
		}
		if cat.CodePrefix == "" {
			return fmt.Errorf("category %q: code_prefix is required", cat.Name)
		}
		if _, err := catalog.ParseFilenameStyle(string(cat.FilenameStyle)); err != nil {
			return fmt.Errorf("category %q: %w", cat.Name, err)
		}
	}
	return nil
}

// CategoryNames returns the configured category names in order.
func (c *Config) CategoryNames() []string {
	names := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		names[i] = cat.Name
	}
	return names
}

// SelectCategories returns the named categories in configuration order.
// No names selects every category.
func (c *Config) SelectCategories(names []string) ([]Category, error) {
	if len(names) == 0 {
		return slices.Clone(c.Categories), nil
	}

	for _, name := range names {
		if !slices.Contains(c.CategoryNames(), name) {
			return nil, fmt.Errorf("unknown category %q (available: %s)", name, strings.Join(c.CategoryNames(), ", "))
		}
	}

	var out []Category
	for _, cat := range c.Categories {
		if slices.Contains(names, cat.Name) {
			out = append(out, cat)
		}
	}
	return out, nil
}
