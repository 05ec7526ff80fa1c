// Package image provides utilities for loading and identifying images.
package image

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WebP format
)

// DecodeError reports an image that could not be opened or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is, or wraps, a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given path.
	Load(path string) (image.Image, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load loads an image from a file path.
// Every failure is returned as a *DecodeError.
func (l *FileLoader) Load(path string) (image.Image, error) {
	if path == "" {
		return nil, &DecodeError{Path: path, Err: errors.New("image path cannot be empty")}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("image file not found")}
		}
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to stat image file: %w", err)}
	}
	if info.IsDir() {
		return nil, &DecodeError{Path: path, Err: errors.New("path is a directory, not a file")}
	}

	file, err := os.Open(path) // #nosec G304 - image paths come from the listing CSV
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to open image file: %w", err)}
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("failed to decode image (format: %s): %w", format, err)}
	}

	return img, nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff"}
}

// IsImageFile checks if a file has a supported image extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}
