// Package compression opens catalog pages that may be stored gzip, xz or bzip2 compressed.
package compression

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmylchreest/glazecat/internal/security"
	"github.com/ulikunitz/xz"
)

// MaxDecompressedSize caps how much data a compressed page may expand to.
const MaxDecompressedSize = 100 * 1024 * 1024

// Format identifies a compression format.
type Format string

// Supported formats.
const (
	FormatNone  Format = ""
	FormatGzip  Format = "gzip"
	FormatXz    Format = "xz"
	FormatBzip2 Format = "bzip2"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	bzip2Magic = []byte{'B', 'Z', 'h'}
)

// FormatFromName detects the compression format from a filename suffix.
func FormatFromName(name string) Format {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"), strings.HasSuffix(lower, ".gzip"):
		return FormatGzip
	case strings.HasSuffix(lower, ".xz"):
		return FormatXz
	case strings.HasSuffix(lower, ".bz2"):
		return FormatBzip2
	}
	return FormatNone
}

// FormatFromMagic detects the compression format from leading bytes.
func FormatFromMagic(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return FormatGzip
	case bytes.HasPrefix(header, xzMagic):
		return FormatXz
	case bytes.HasPrefix(header, bzip2Magic):
		return FormatBzip2
	}
	return FormatNone
}

// NewReader wraps r with a decompressor. The format is taken from name when
// it carries a known suffix, otherwise from the stream's magic bytes.
// Uncompressed input is passed through unchanged.
func NewReader(r io.Reader, name string) (io.ReadCloser, error) {
	br := bufio.NewReader(r)

	format := FormatFromName(name)
	if format == FormatNone {
		header, _ := br.Peek(len(xzMagic))
		format = FormatFromMagic(header)
	}

	switch format {
	case FormatGzip:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &limitedReadCloser{
			Reader: security.NewLimitedReader(gzr, MaxDecompressedSize),
			close:  gzr.Close,
		}, nil

	case FormatXz:
		xzr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return &limitedReadCloser{Reader: security.NewLimitedReader(xzr, MaxDecompressedSize)}, nil

	case FormatBzip2:
		return &limitedReadCloser{Reader: security.NewLimitedReader(bzip2.NewReader(br), MaxDecompressedSize)}, nil
	}

	return io.NopCloser(br), nil
}

// Open opens a file on disk and returns a decompressing reader over it.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path) // #nosec G304 - Catalog page path is supplied by the user
	if err != nil {
		return nil, err
	}

	r, err := NewReader(f, path)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &fileReadCloser{ReadCloser: r, file: f}, nil
}

type limitedReadCloser struct {
	io.Reader
	close func() error
}

func (l *limitedReadCloser) Close() error {
	if l.close == nil {
		return nil
	}
	return l.close()
}

type fileReadCloser struct {
	io.ReadCloser
	file *os.File
}

func (f *fileReadCloser) Close() error {
	err := f.ReadCloser.Close()
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	return err
}
