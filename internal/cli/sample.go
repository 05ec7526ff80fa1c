package cli

import (
	"fmt"

	"github.com/jmylchreest/glazecat/internal/colour"
	"github.com/jmylchreest/glazecat/internal/dataset"
	"github.com/spf13/cobra"
)

type sampleOptions struct {
	blurRadius float64
	topInset   int
	workers    int
}

func newSampleCmd(a *app) *cobra.Command {
	opts := &sampleOptions{}

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample left and top colours from downloaded images",
		Long: `Sample two representative colours from every downloaded image and
write them to the category's colours CSV.

The image is blurred, then sampled at the left position (45% across, 55%
down) and the top position (centred, a fixed inset below the top edge).
Transparent pixels are blended over white.

Rows whose image failed to download or decode keep empty colour cells.

Examples:
  # Sample with the configured policy
  glazecat sample

  # Sharper samples closer to the top edge
  glazecat sample --blur-radius 4 --top-inset 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd, a, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.blurRadius, "blur-radius", 0, "Gaussian blur radius in pixels (negative disables, default from config)")
	cmd.Flags().IntVar(&opts.topInset, "top-inset", 0, "distance of the top sample from the top edge (default from config)")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "images decoded concurrently")
	return cmd
}

func runSample(cmd *cobra.Command, a *app, opts *sampleOptions) error {
	if cmd.Flags().Changed("blur-radius") {
		a.cfg.Sampler.BlurRadius = opts.blurRadius
	}
	if cmd.Flags().Changed("top-inset") {
		a.cfg.Sampler.TopInset = opts.topInset
	}
	if err := a.cfg.Sampler.Validate(); err != nil {
		return fmt.Errorf("invalid sampler settings: %w", err)
	}

	categories, err := a.selected()
	if err != nil {
		return err
	}

	sampler := colour.NewSampler(a.cfg.Sampler)
	for _, cat := range categories {
		log := a.logger.Named("sample").With("category", cat.Name)

		rows, err := dataset.LoadListing(cat.ListingCSV)
		if err != nil {
			return fmt.Errorf("category %s: %w", cat.Name, err)
		}

		builder := dataset.NewBuilder(sampler, dataset.BuilderOptions{
			Workers: opts.workers,
			Logger:  log,
		})
		records := builder.Build(cmd.Context(), rows)

		if err := dataset.SaveColors(cat.ColoursCSV, records); err != nil {
			return fmt.Errorf("category %s: %w", cat.Name, err)
		}

		complete := len(dataset.Complete(records))
		log.Info("colours written", "complete", complete, "total", len(records), "path", cat.ColoursCSV)
		a.printf(cmd, "%s: sampled %d of %d -> %s\n", cat.Name, complete, len(records), cat.ColoursCSV)

		if err := cmd.Context().Err(); err != nil {
			return fmt.Errorf("sampling interrupted: %w", err)
		}
	}
	return nil
}
