// Package security provides validation utilities for untrusted catalog input.
package security

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
)

// ValidateImageURL validates an image URL scraped from a catalog page.
// Only http:// and https:// URLs with a hostname are accepted.
func ValidateImageURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("invalid URL protocol (only http:// and https:// allowed): %q", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	return nil
}

// ValidateFilename validates a filename derived from scraped data.
// The name must be a single path element that cannot escape its directory.
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("empty filename")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid filename: %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("filename must not contain path separators: %q", name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("filename must not contain NUL bytes")
	}
	return nil
}

// ValidateFilePath validates a relative output path to prevent directory traversal.
func ValidateFilePath(filePath, baseDir string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}

	if strings.Contains(filePath, "..") {
		return fmt.Errorf("file path contains directory traversal (..) - not allowed")
	}

	if filepath.IsAbs(filePath) {
		return fmt.Errorf("absolute output paths are not allowed")
	}

	finalPath := filepath.Join(baseDir, filePath)
	cleanFinal := filepath.Clean(finalPath)
	cleanBase := filepath.Clean(baseDir)

	if cleanBase != "." && !strings.HasPrefix(cleanFinal, cleanBase+string(filepath.Separator)) &&
		cleanFinal != cleanBase {
		return fmt.Errorf("file path would escape base directory")
	}

	return nil
}

// LimitedReader wraps an io.Reader and limits the total bytes that can be read.
// This prevents decompression bombs when opening compressed catalog pages.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining <= 0 {
		return 0, fmt.Errorf("decompression size limit exceeded")
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes,
	}
}
