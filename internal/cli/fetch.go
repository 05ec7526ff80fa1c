package cli

import (
	"fmt"
	"time"

	"github.com/jmylchreest/glazecat/internal/catalog"
	"github.com/jmylchreest/glazecat/internal/config"
	"github.com/jmylchreest/glazecat/internal/dataset"
	"github.com/jmylchreest/glazecat/internal/fetch"
	httputil "github.com/jmylchreest/glazecat/internal/util/http"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// fetchFlags are the download flags shared by fetch and scrape --fetch.
type fetchFlags struct {
	workers   int
	delay     time.Duration
	timeout   time.Duration
	overwrite bool
	userAgent string
}

func (f *fetchFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.workers, "workers", 1, "concurrent downloads (the delay still applies globally)")
	fs.DurationVar(&f.delay, "delay", fetch.DefaultDelay, "pause between successive requests")
	fs.DurationVar(&f.timeout, "timeout", httputil.DefaultTimeout, "per-request timeout")
	fs.BoolVar(&f.overwrite, "overwrite", false, "download images that already exist locally")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent header (default: a desktop browser)")
}

// apply copies explicitly set flags over the loaded configuration.
func (f *fetchFlags) apply(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("workers") {
		cfg.Fetch.Workers = f.workers
	}
	if flags.Changed("delay") {
		cfg.Fetch.Delay = f.delay.String()
	}
	if flags.Changed("timeout") {
		cfg.Fetch.Timeout = f.timeout.String()
	}
	if flags.Changed("overwrite") {
		cfg.Fetch.Overwrite = f.overwrite
	}
	if flags.Changed("user-agent") {
		cfg.Fetch.UserAgent = f.userAgent
	}
	return cfg.Validate()
}

func newFetchCmd(a *app) *cobra.Command {
	flags := &fetchFlags{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download product images listed in the listing CSVs",
		Long: `Download the image of every product in each category's listing CSV
into the category's image directory and record the local path.

Images that already exist are reused unless --overwrite is given. A failed
download is logged, recorded as DOWNLOAD_FAILED and never stops the batch.

Examples:
  # Download all images, one at a time
  glazecat fetch

  # Four workers sharing a one second rate limit
  glazecat fetch --workers 4 --delay 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd.Flags(), a.cfg); err != nil {
				return err
			}
			categories, err := a.selected()
			if err != nil {
				return err
			}
			for _, cat := range categories {
				rows, err := dataset.LoadListing(cat.ListingCSV)
				if err != nil {
					return fmt.Errorf("category %s: %w", cat.Name, err)
				}
				if err := fetchCategory(cmd, a, cat, rows); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

// fetchCategory downloads the images of rows, records their local paths and
// saves the listing. Only a cancelled context or an unwritable listing is an
// error.
func fetchCategory(cmd *cobra.Command, a *app, cat config.Category, rows []dataset.ListingRow) error {
	log := a.logger.Named("fetch").With("category", cat.Name)
	ctx := cmd.Context()

	client := httputil.NewClient(httputil.FetchOptions{
		Timeout:   a.cfg.Fetch.TimeoutDuration(),
		UserAgent: a.cfg.Fetch.UserAgent,
		Delay:     a.cfg.Fetch.DelayDuration(),
	})
	downloader := fetch.New(client, fetch.Options{
		Dir:       cat.ImageDir,
		Workers:   a.cfg.Fetch.Workers,
		Overwrite: a.cfg.Fetch.Overwrite,
		Logger:    log,
	})

	jobs := make([]fetch.Job, 0, len(rows))
	index := make([]int, 0, len(rows))
	for i, row := range rows {
		if row.ImageURL == "" {
			log.Warn("no image url", "code", row.Code)
			rows[i].LocalImagePath = fetch.DownloadFailed
			continue
		}
		product := catalog.Product{Code: row.Code, Name: row.Name, ImageURL: row.ImageURL}
		name, err := catalog.LocalFilename(product, cat.FilenameStyle, cat.FilenameSuffix)
		if err != nil {
			log.Warn("no usable filename", "code", row.Code, "error", err)
			rows[i].LocalImagePath = fetch.DownloadFailed
			continue
		}
		jobs = append(jobs, fetch.Job{URL: row.ImageURL, Filename: name})
		index = append(index, i)
	}

	log.Info("downloading images", "count", len(jobs), "dir", cat.ImageDir)
	results := downloader.DownloadAll(ctx, jobs)

	fetched := 0
	for j, res := range results {
		rows[index[j]].LocalImagePath = res.Path
		if res.Fetched && res.Err == nil {
			fetched++
		}
	}
	failed := fetch.Failed(results) + len(rows) - len(jobs)

	// The listing is saved even when interrupted so completed downloads are kept.
	if err := dataset.SaveListing(cat.ListingCSV, rows); err != nil {
		return fmt.Errorf("category %s: %w", cat.Name, err)
	}

	a.printf(cmd, "%s: %d downloaded, %d reused, %d failed -> %s\n",
		cat.Name, fetched, len(rows)-fetched-failed, failed, cat.ListingCSV)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("download interrupted: %w", err)
	}
	return nil
}
