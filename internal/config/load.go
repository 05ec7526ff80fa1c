package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// DefaultFile is the config file read when no path is given.
const DefaultFile = "glazecat.json5"

// EnvPrefix prefixes environment overrides, e.g. GLAZECAT_BLUR_RADIUS.
const EnvPrefix = "GLAZECAT_"

// Load reads the configuration at path, overlaying <name>.local.<ext> on
// it, applying environment overrides and validating the result. Files are
// decoded onto the defaults, so a value a file sets explicitly, zero
// included, always wins. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}

	def := Default()
	cfg := *def
	// Lists are replaced as a whole rather than decoded into the defaults.
	cfg.Categories = nil
	cfg.Render.Formats = nil
	cfg.Render.SVGLayouts = nil

	if err := readFiles(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if cfg.Categories == nil {
		cfg.Categories = def.Categories
	}
	if cfg.Render.Formats == nil {
		cfg.Render.Formats = def.Render.Formats
	}
	if cfg.Render.SVGLayouts == nil {
		cfg.Render.SVGLayouts = def.Render.SVGLayouts
	}
	for i := range cfg.Categories {
		c, err := withCategoryDefaults(cfg.Categories[i])
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", cfg.Categories[i].Name, err)
		}
		cfg.Categories[i] = c
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// readFiles decodes <name>.<ext> and then <name>.local.<ext> onto cfg. It
// returns os.ErrNotExist when neither exists.
func readFiles(name string, cfg *Config) error {
	found := false

	base, err := os.ReadFile(name) // #nosec G304 - Config path is supplied by the user
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if len(base) > 0 {
		if err := json5.Unmarshal(base, cfg); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		found = true
	}

	local := localPath(name)
	override, err := os.ReadFile(local) // #nosec G304 - Derived from the config path
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if len(override) > 0 {
		if err := overlay(cfg, override); err != nil {
			return fmt.Errorf("%s: %w", local, err)
		}
		found = true
	}

	if !found {
		return os.ErrNotExist
	}
	return nil
}

// overlay decodes data onto cfg. Lists present in data replace those in cfg
// instead of being decoded element by element into them.
func overlay(cfg *Config, data []byte) error {
	var lists Config
	if err := json5.Unmarshal(data, &lists); err != nil {
		return err
	}
	if err := json5.Unmarshal(data, cfg); err != nil {
		return err
	}
	if lists.Categories != nil {
		cfg.Categories = lists.Categories
	}
	if lists.Render.Formats != nil {
		cfg.Render.Formats = lists.Render.Formats
	}
	if lists.Render.SVGLayouts != nil {
		cfg.Render.SVGLayouts = lists.Render.SVGLayouts
	}
	return nil
}

func localPath(name string) string {
	dir := filepath.Dir(name)
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+".local"+ext)
}

// withCategoryDefaults fills unset category fields from the defaults of its
// kind. Paths are derived from the category name when it is not a built-in one.
func withCategoryDefaults(c Category) (Category, error) {
	if c.Kind == "" {
		c.Kind = KindGlaze
	}
	def := DefaultCategory(c.Kind)
	if c.Name != "" && c.Name != def.Name {
		def.Title = c.Name
		def.HTMLPath = c.Name + ".html"
		def.ListingCSV = c.Name + "_listing.csv"
		def.ImageDir = c.Name + "_images"
		def.ColoursCSV = c.Name + "_colors.csv"
	}
	if err := mergo.Merge(&c, def); err != nil {
		return c, err
	}
	return c, nil
}

type lookupFunc func(string) (string, bool)

// applyEnv applies GLAZECAT_* overrides.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	if v, ok := lookup(EnvPrefix + "BLUR_RADIUS"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sBLUR_RADIUS: %w", EnvPrefix, err)
		}
		cfg.Sampler.BlurRadius = f
	}
	if v, ok := lookup(EnvPrefix + "TOP_INSET"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sTOP_INSET: %w", EnvPrefix, err)
		}
		cfg.Sampler.TopInset = n
	}
	if v, ok := lookup(EnvPrefix + "WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", EnvPrefix, err)
		}
		cfg.Fetch.Workers = n
	}
	if v, ok := lookup(EnvPrefix + "OVERWRITE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sOVERWRITE: %w", EnvPrefix, err)
		}
		cfg.Fetch.Overwrite = b
	}
	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok {
		cfg.Fetch.Timeout = v
	}
	if v, ok := lookup(EnvPrefix + "DELAY"); ok {
		cfg.Fetch.Delay = v
	}
	if v, ok := lookup(EnvPrefix + "USER_AGENT"); ok {
		cfg.Fetch.UserAgent = v
	}
	if v, ok := lookup(EnvPrefix + "OUTPUT_DIR"); ok {
		cfg.Render.OutputDir = v
	}
	if v, ok := lookup(EnvPrefix + "TEMPLATE_DIR"); ok {
		cfg.Render.TemplateDir = v
	}
	return nil
}
