package render

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
)

//go:embed templates
var embedded embed.FS

// TemplateLoader loads a renderer's templates, preferring files in a custom
// directory ({customBase}/{renderer}/{file}) over the embedded defaults.
type TemplateLoader struct {
	name       string
	embedFS    fs.FS
	customBase string
	logger     hclog.Logger
}

// NewTemplateLoader creates a loader for the named renderer. An empty
// customBase disables overrides.
func NewTemplateLoader(name, customBase string, logger hclog.Logger) *TemplateLoader {
	sub, err := fs.Sub(embedded, "templates/"+name)
	if err != nil {
		sub = embedded
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &TemplateLoader{
		name:       name,
		embedFS:    sub,
		customBase: customBase,
		logger:     logger,
	}
}

// Load reads a template file, checking for a custom override first.
// Returns the template content and whether it was loaded from the override.
func (l *TemplateLoader) Load(filename string) (content []byte, fromCustom bool, err error) {
	if l.customBase != "" {
		customPath := l.CustomPath(filename)
		if content, err := os.ReadFile(customPath); err == nil { // #nosec G304 - Template directory is supplied by the user
			l.logger.Debug("using custom template", "path", customPath)
			return content, true, nil
		}
	}

	content, err = fs.ReadFile(l.embedFS, filename)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load template %q: %w", filename, err)
	}
	return content, false, nil
}

// CustomPath returns the path where a custom template would be located.
func (l *TemplateLoader) CustomPath(filename string) string {
	return filepath.Join(l.customBase, l.name, filename)
}

// ListEmbeddedTemplates returns the embedded template files of the renderer.
func (l *TemplateLoader) ListEmbeddedTemplates() ([]string, error) {
	var templates []string
	err := fs.WalkDir(l.embedFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".tmpl" {
			templates = append(templates, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded templates: %w", err)
	}
	return templates, nil
}

// DumpTemplates writes the embedded templates to the custom directory so
// they can be edited. Existing files are kept unless force is set.
func (l *TemplateLoader) DumpTemplates(force bool) ([]string, error) {
	if l.customBase == "" {
		return nil, fmt.Errorf("no template directory configured")
	}

	templates, err := l.ListEmbeddedTemplates()
	if err != nil {
		return nil, err
	}

	var dumped, skipped []string
	for _, name := range templates {
		out := l.CustomPath(name)
		if !force {
			if _, err := os.Stat(out); err == nil {
				skipped = append(skipped, out)
				continue
			}
		}

		content, err := fs.ReadFile(l.embedFS, name)
		if err != nil {
			return dumped, fmt.Errorf("failed to read embedded template %q: %w", name, err)
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil { // #nosec G301 - Template directory needs standard permissions
			return dumped, fmt.Errorf("failed to create directory: %w", err)
		}
		if err := os.WriteFile(out, content, 0o644); err != nil { // #nosec G306 - Templates need standard read permissions
			return dumped, fmt.Errorf("failed to write template to %q: %w", out, err)
		}
		dumped = append(dumped, out)
	}

	if len(skipped) > 0 {
		return dumped, fmt.Errorf("custom templates already exist (use --force to overwrite): %s", strings.Join(skipped, ", "))
	}
	return dumped, nil
}
