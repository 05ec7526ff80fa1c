package cli

import (
	"fmt"

	"github.com/jmylchreest/glazecat/internal/catalog"
	"github.com/jmylchreest/glazecat/internal/config"
	"github.com/jmylchreest/glazecat/internal/dataset"
	"github.com/spf13/cobra"
)

type scrapeOptions struct {
	fetch bool
	fetchFlags
}

func newScrapeCmd(a *app) *cobra.Command {
	opts := &scrapeOptions{}

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Extract products from saved catalog pages",
		Long: `Extract product code, name and image URL from the saved HTML page of
each category and write them to the category's listing CSV.

Pages may be gzip, xz or bzip2 compressed. Only products carrying the
category's cone label are kept.

Examples:
  # Scrape every configured category
  glazecat scrape

  # Scrape the underglaze page only and download its images
  glazecat scrape --category underglaze --fetch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, a, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.fetch, "fetch", false, "download images after scraping")
	opts.register(cmd.Flags())
	return cmd
}

func runScrape(cmd *cobra.Command, a *app, opts *scrapeOptions) error {
	categories, err := a.selected()
	if err != nil {
		return err
	}
	if opts.fetch {
		if err := opts.apply(cmd.Flags(), a.cfg); err != nil {
			return err
		}
	}

	for _, cat := range categories {
		rows, err := scrapeCategory(a, cat)
		if err != nil {
			return err
		}
		a.printf(cmd, "%s: %d products -> %s\n", cat.Name, len(rows), cat.ListingCSV)

		if opts.fetch {
			if err := fetchCategory(cmd, a, cat, rows); err != nil {
				return err
			}
		}
	}
	return nil
}

// scrapeCategory parses the category page and saves its listing.
func scrapeCategory(a *app, cat config.Category) ([]dataset.ListingRow, error) {
	log := a.logger.Named("scrape").With("category", cat.Name)

	log.Debug("parsing page", "path", cat.HTMLPath)
	res, err := catalog.ParseFile(cat.HTMLPath, cat.ParseOptions())
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", cat.Name, err)
	}
	for _, skipped := range res.Skipped {
		log.Debug("skipping product", "reason", skipped.Error())
	}
	if len(res.Products) == 0 {
		log.Warn("no products found", "path", cat.HTMLPath, "cone", cat.ConeLabel)
	}

	rows := dataset.RowsFromProducts(res.Products)
	if err := dataset.SaveListing(cat.ListingCSV, rows); err != nil {
		return nil, fmt.Errorf("category %s: %w", cat.Name, err)
	}
	log.Info("listing written", "products", len(rows), "skipped", len(res.Skipped), "path", cat.ListingCSV)
	return rows, nil
}
