package dataset

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"github.com/jmylchreest/glazecat/internal/colour"
	"golang.org/x/sync/errgroup"
)

// FileSampler samples the left and top colours of an image file.
// *colour.Sampler satisfies it.
type FileSampler interface {
	SampleFile(path string) (left, top colour.RGB, err error)
}

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	// Workers bounds concurrent sampling. Values below 1 mean 1.
	Workers int

	Logger hclog.Logger
}

// Builder turns listing rows into colour records.
type Builder struct {
	sampler FileSampler
	workers int
	logger  hclog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(sampler FileSampler, opts BuilderOptions) *Builder {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Builder{sampler: sampler, workers: workers, logger: logger}
}

// Build returns one record per row, in row order. Rows without an image and
// rows whose image cannot be sampled yield records with both colours unset.
// Cancelling ctx leaves the remaining records unset.
func (b *Builder) Build(ctx context.Context, rows []ListingRow) []ColorRecord {
	records := make([]ColorRecord, len(rows))

	g := new(errgroup.Group)
	g.SetLimit(b.workers)

	for i, row := range rows {
		records[i] = ColorRecord{Code: row.Code, Name: row.Name}
		if row.Failed() {
			b.logger.Debug("no image, skipping", "code", row.Code)
			continue
		}
		records[i].ImagePath = row.LocalImagePath
		if ctx.Err() != nil {
			continue
		}

		g.Go(func() error {
			left, top, err := b.sampler.SampleFile(row.LocalImagePath)
			if err != nil {
				b.logger.Warn("failed to sample colours", "code", row.Code, "error", err)
				return nil
			}
			records[i].Left = &left
			records[i].Top = &top
			b.logger.Debug("sampled colours", "code", row.Code, "left", left.Hex(), "top", top.Hex())
			return nil
		})
	}
	_ = g.Wait()

	return records
}
