// Package fetch downloads product images to local storage.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	imgload "github.com/jmylchreest/glazecat/internal/image"
	"github.com/jmylchreest/glazecat/internal/security"
	httputil "github.com/jmylchreest/glazecat/internal/util/http"
	"golang.org/x/sync/errgroup"
)

// DownloadFailed replaces the local path of a job whose download failed.
const DownloadFailed = "DOWNLOAD_FAILED"

// DefaultDelay is the pause between successive network requests.
const DefaultDelay = 500 * time.Millisecond

// Fetcher retrieves a URL. *httputil.Client satisfies it and applies the
// politeness delay, so a single Fetcher is shared by all workers.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*httputil.Response, error)
}

// Options configures a Downloader.
type Options struct {
	// Dir is the directory images are written to. Created on demand.
	Dir string

	// Workers bounds concurrent downloads. Values below 1 mean 1.
	Workers int

	// Overwrite re-downloads files that already exist.
	Overwrite bool

	Logger hclog.Logger
}

// Job is a single image to download.
type Job struct {
	URL string

	// Filename is the local name. If it has no extension one is taken from
	// the URL or, failing that, from the downloaded bytes.
	Filename string
}

// Result is the outcome of a Job. Path is DownloadFailed when Err is set.
type Result struct {
	Job     Job
	Path    string
	Fetched bool
	Err     error
}

// Downloader saves images verbatim into a directory.
type Downloader struct {
	dir       string
	workers   int
	overwrite bool
	fetcher   Fetcher
	logger    hclog.Logger
}

// New creates a Downloader using fetcher for network access.
func New(fetcher Fetcher, opts Options) *Downloader {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Downloader{
		dir:       opts.Dir,
		workers:   workers,
		overwrite: opts.Overwrite,
		fetcher:   fetcher,
		logger:    logger,
	}
}

// Download fetches url into the download directory as filename. It returns
// the local path and whether a network request was made. Existing files are
// reused unless overwrite is enabled.
func (d *Downloader) Download(ctx context.Context, rawURL, filename string) (string, bool, error) {
	if err := security.ValidateFilename(filename); err != nil {
		return "", false, err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil { // #nosec G301 - Image directory needs standard permissions
		return "", false, fmt.Errorf("failed to create image directory: %w", err)
	}

	if filepath.Ext(filename) == "" {
		filename += extensionFromURL(rawURL)
	}

	if !d.overwrite {
		if existing, ok := d.existing(filename); ok {
			d.logger.Debug("reusing existing image", "path", existing)
			return existing, false, nil
		}
	}

	res, err := d.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", true, err
	}

	if filepath.Ext(filename) == "" {
		ext := imgload.ExtensionFor(imgload.DetectFormat(res.Body))
		if ext == "" {
			ext = ".jpg"
		}
		filename += ext
	}

	dest := filepath.Join(d.dir, filename)
	if err := os.WriteFile(dest, res.Body, 0o644); err != nil { // #nosec G306 - Image files need standard read permissions
		return "", true, fmt.Errorf("failed to write image: %w", err)
	}

	d.logger.Debug("downloaded image", "url", rawURL, "path", dest, "bytes", len(res.Body))
	return dest, true, nil
}

// DownloadAll downloads every job and returns results in input order. A
// failed job never stops the batch. When ctx is cancelled no further jobs
// are started and the remainder fail with the context error.
func (d *Downloader) DownloadAll(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(d.workers)

	for i, job := range jobs {
		results[i].Job = job
		if err := ctx.Err(); err != nil {
			results[i].Path = DownloadFailed
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			p, fetched, err := d.Download(ctx, job.URL, job.Filename)
			if err != nil {
				var fe *httputil.FetchError
				switch {
				case IsCancelled(err):
					d.logger.Debug("download cancelled", "url", job.URL)
				case errors.As(err, &fe) && fe.StatusCode != 0:
					d.logger.Warn("download failed", "url", job.URL, "status", fe.StatusCode)
				default:
					d.logger.Warn("download failed", "url", job.URL, "error", err)
				}
				p = DownloadFailed
			} else if fetched {
				d.logger.Info("downloaded", "file", filepath.Base(p))
			}
			results[i] = Result{Job: job, Path: p, Fetched: fetched, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failed counts the results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// IsCancelled reports whether err stems from context cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (d *Downloader) existing(filename string) (string, bool) {
	candidates := []string{filename}
	if filepath.Ext(filename) == "" {
		candidates = candidates[:0]
		for _, ext := range imgload.SupportedImageExtensions() {
			candidates = append(candidates, filename+ext)
		}
	}
	for _, name := range candidates {
		p := filepath.Join(d.dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// extensionFromURL returns the image extension of the URL path, or "".
func extensionFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if !imgload.IsImageFile("x" + ext) {
		return ""
	}
	return ext
}
