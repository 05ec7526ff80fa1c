// Package cli provides the command-line interface for glazecat.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/jmylchreest/glazecat/internal/colour"
	"github.com/jmylchreest/glazecat/internal/config"
	"github.com/jmylchreest/glazecat/internal/logging"
	"github.com/jmylchreest/glazecat/internal/version"
	"github.com/spf13/cobra"
)

// app carries state shared by every command of one invocation.
type app struct {
	configPath string
	verbose    bool
	quiet      bool
	noColour   bool
	categories []string

	cfg    *config.Config
	logger hclog.Logger
}

// NewRootCmd builds the glazecat command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "glazecat",
		Short: "Build a colour catalog of ceramic glazes",
		Long: `glazecat builds a reference catalog of ceramic glaze colours.

It scrapes product listings from saved HTML pages, downloads the product
images, samples two representative colours from each image and renders the
results as JSON, SVG swatch sheets, an HTML gallery or a SQLite database.

The stages run independently and hand over through CSV files:

  glazecat scrape    # HTML page  -> listing CSV
  glazecat fetch     # listing    -> local images
  glazecat sample    # images     -> colours CSV
  glazecat render    # colours    -> artifacts`,
		Version:           version.Short(),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultFile, "configuration file (JSON5)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&a.noColour, "no-color", false, "disable colour previews")
	rootCmd.PersistentFlags().StringSliceVar(&a.categories, "category", nil, "categories to process (default: all configured)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newScrapeCmd(a))
	rootCmd.AddCommand(newFetchCmd(a))
	rootCmd.AddCommand(newSampleCmd(a))
	rootCmd.AddCommand(newRenderCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newLookupCmd(a))

	return rootCmd
}

// Execute runs the root command with ctx and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and creates the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.logger = logging.New(logging.Options{
		Verbose: a.verbose,
		Quiet:   a.quiet,
		Output:  cmd.ErrOrStderr(),
	})

	if a.noColour || !colour.SupportsANSIColours() {
		colour.DisableColourOutput = true
	}

	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	a.logger.Debug("configuration loaded", "path", a.configPath, "categories", cfg.CategoryNames())
	return nil
}

// selected returns the categories chosen with --category.
func (a *app) selected() ([]config.Category, error) {
	return a.cfg.SelectCategories(a.categories)
}

// printf writes progress output unless --quiet is set.
func (a *app) printf(cmd *cobra.Command, format string, args ...any) {
	if a.quiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
