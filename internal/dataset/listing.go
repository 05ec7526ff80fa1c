// Package dataset persists catalog listings and sampled colour records as CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jmylchreest/glazecat/internal/catalog"
	"github.com/jmylchreest/glazecat/internal/fetch"
)

// ListingHeader is the header row of a listing CSV.
var ListingHeader = []string{"code", "color_name", "image_url", "local_image_path"}

// ListingRow is a product together with where its image was stored.
type ListingRow struct {
	Code           string
	Name           string
	ImageURL       string
	LocalImagePath string
}

// Failed reports whether the row carries no usable image.
func (r ListingRow) Failed() bool {
	return r.LocalImagePath == "" || r.LocalImagePath == fetch.DownloadFailed
}

// RowsFromProducts creates listing rows with empty image paths.
func RowsFromProducts(products []catalog.Product) []ListingRow {
	rows := make([]ListingRow, len(products))
	for i, p := range products {
		rows[i] = ListingRow{Code: p.Code, Name: p.Name, ImageURL: p.ImageURL}
	}
	return rows
}

// WriteListing writes rows as CSV to w.
func WriteListing(w io.Writer, rows []ListingRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ListingHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Code, r.Name, r.ImageURL, r.LocalImagePath}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadListing reads a listing CSV. Columns are located by header name.
func ReadListing(r io.Reader) ([]ListingRow, error) {
	records, cols, err := readTable(r, ListingHeader[:3]...)
	if err != nil {
		return nil, err
	}

	rows := make([]ListingRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ListingRow{
			Code:           field(rec, cols, "code"),
			Name:           field(rec, cols, "color_name"),
			ImageURL:       field(rec, cols, "image_url"),
			LocalImagePath: field(rec, cols, "local_image_path"),
		})
	}
	return rows, nil
}

// SaveListing writes rows to path, creating parent directories.
func SaveListing(path string, rows []ListingRow) error {
	return writeFile(path, func(w io.Writer) error { return WriteListing(w, rows) })
}

// LoadListing reads a listing CSV from path.
func LoadListing(path string) ([]ListingRow, error) {
	f, err := os.Open(path) // #nosec G304 - Listing path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to open listing: %w", err)
	}
	defer f.Close()

	rows, err := ReadListing(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// readTable reads a CSV with a header row and returns the data rows and a
// column index keyed by header name.
func readTable(r io.Reader, required ...string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return records, cols, nil
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Output directory needs standard permissions
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path) // #nosec G304 - Output path is supplied by the user
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
