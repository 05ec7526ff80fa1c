package catalog

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	imgload "github.com/jmylchreest/glazecat/internal/image"
	"github.com/jmylchreest/glazecat/internal/security"
)

// FilenameStyle selects how local image filenames are derived.
type FilenameStyle string

// Filename styles.
const (
	// FilenameByCode lowercases the code, replaces '-' with '_' and appends
	// a suffix, e.g. "sc_74_cone06.jpg".
	FilenameByCode FilenameStyle = "code"

	// FilenameByURL uses the basename of the image URL.
	FilenameByURL FilenameStyle = "url"
)

// ParseFilenameStyle parses a style name.
func ParseFilenameStyle(s string) (FilenameStyle, error) {
	switch FilenameStyle(strings.ToLower(s)) {
	case FilenameByCode:
		return FilenameByCode, nil
	case FilenameByURL:
		return FilenameByURL, nil
	}
	return "", fmt.Errorf("unknown filename style %q (want %q or %q)", s, FilenameByCode, FilenameByURL)
}

// LocalFilename returns the filename an image for p is stored under.
func LocalFilename(p Product, style FilenameStyle, suffix string) (string, error) {
	switch style {
	case FilenameByURL:
		u, err := url.Parse(p.ImageURL)
		if err != nil {
			return "", fmt.Errorf("invalid image url %q: %w", p.ImageURL, err)
		}
		name, err := url.PathUnescape(path.Base(u.EscapedPath()))
		if err != nil {
			return "", fmt.Errorf("invalid image url %q: %w", p.ImageURL, err)
		}
		if err := security.ValidateFilename(name); err != nil {
			return "", fmt.Errorf("image url %q has no usable filename", p.ImageURL)
		}
		return name, nil

	case FilenameByCode, "":
		if err := security.ValidateFilename(p.Code); err != nil {
			return "", fmt.Errorf("product code %q: %w", p.Code, err)
		}
		ext := ".jpg"
		if u, err := url.Parse(p.ImageURL); err == nil {
			if e := strings.ToLower(path.Ext(u.Path)); imgload.IsImageFile("x" + e) {
				ext = e
			}
		}
		return strings.ToLower(strings.ReplaceAll(p.Code, "-", "_")) + suffix + ext, nil
	}
	return "", fmt.Errorf("unknown filename style %q", style)
}
