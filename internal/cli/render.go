package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jmylchreest/glazecat/internal/dataset"
	"github.com/jmylchreest/glazecat/internal/render"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	formats       []string
	outputDir     string
	layouts       []string
	templateDir   string
	dumpTemplates bool
	force         bool
}

func newRenderCmd(a *app) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render colour artifacts from the colours CSVs",
		Long: `Render the sampled colours of the selected categories.

Formats:
  json     colors.json with glazes and underglazes
  svg      <category>_colors<layout>.svg swatch sheets (detailed, compact, strip)
  html     <category>_colors.html gallery with the product images
  sqlite   colors.db with glazes and underglazes tables

Only records with both colours are rendered. SVG and HTML templates can be
overridden by files in --template-dir; use --dump-templates to start from
the built-in ones.

Examples:
  # Render the configured formats
  glazecat render

  # Only the compact swatch sheet for glazes
  glazecat render --category glaze --format svg --layout compact

  # Copy the built-in templates for editing
  glazecat render --template-dir ./templates --dump-templates`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, a, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", nil, "formats to render: json, svg, html, sqlite (default from config)")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for rendered files (default from config)")
	cmd.Flags().StringSliceVar(&opts.layouts, "layout", nil, "svg layouts: detailed, compact, strip (default from config)")
	cmd.Flags().StringVar(&opts.templateDir, "template-dir", "", "directory with custom templates (default from config)")
	cmd.Flags().BoolVar(&opts.dumpTemplates, "dump-templates", false, "write the built-in templates to --template-dir and exit")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite existing templates when dumping")
	return cmd
}

func runRender(cmd *cobra.Command, a *app, opts *renderOptions) error {
	rc := &a.cfg.Render
	if cmd.Flags().Changed("format") {
		rc.Formats = opts.formats
	}
	if cmd.Flags().Changed("output-dir") {
		rc.OutputDir = opts.outputDir
	}
	if cmd.Flags().Changed("layout") {
		rc.SVGLayouts = opts.layouts
	}
	if cmd.Flags().Changed("template-dir") {
		rc.TemplateDir = opts.templateDir
	}

	log := a.logger.Named("render")
	registry, err := render.NewDefaultRegistry(render.Options{
		OutputDir:   rc.OutputDir,
		TemplateDir: rc.TemplateDir,
		SVGLayouts:  rc.SVGLayouts,
		Sampler:     a.cfg.Sampler,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	if opts.dumpTemplates {
		return dumpTemplates(cmd, a, registry, opts.force)
	}

	renderers, err := registry.Select(rc.Formats)
	if err != nil {
		return err
	}

	categories, err := a.selected()
	if err != nil {
		return err
	}

	sections := make([]render.Section, 0, len(categories))
	for _, cat := range categories {
		records, err := dataset.LoadColors(cat.ColoursCSV)
		if err != nil {
			return fmt.Errorf("category %s: %w", cat.Name, err)
		}

		rows, err := dataset.LoadListing(cat.ListingCSV)
		switch {
		case err == nil:
			dataset.AttachImages(records, rows)
		case errors.Is(err, os.ErrNotExist):
			log.Warn("listing not found, gallery images will be missing", "category", cat.Name, "path", cat.ListingCSV)
		default:
			return fmt.Errorf("category %s: %w", cat.Name, err)
		}

		section := render.Section{Category: cat, Records: records}
		sections = append(sections, section)
		log.Debug("loaded colours", "category", cat.Name, "records", len(records))
	}

	catalog := render.NewCatalog(sections...)
	for _, s := range catalog.Sections {
		if len(s.Records) == 0 {
			log.Warn("no complete records", "category", s.Category.Name)
		}
	}

	for _, r := range renderers {
		files, err := r.Render(catalog)
		if err != nil {
			return fmt.Errorf("%s: %w", r.Name(), err)
		}
		written, err := render.WriteFiles(rc.OutputDir, files)
		if err != nil {
			return fmt.Errorf("%s: %w", r.Name(), err)
		}
		for _, path := range written {
			log.Info("wrote artifact", "format", r.Name(), "path", path)
			a.printf(cmd, "%s\n", path)
		}
	}
	return nil
}

func dumpTemplates(cmd *cobra.Command, a *app, registry *render.Registry, force bool) error {
	for _, loader := range registry.TemplateLoaders() {
		dumped, err := loader.DumpTemplates(force)
		for _, path := range dumped {
			a.printf(cmd, "%s\n", path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
