package image

import "bytes"

// Format names returned by DetectFormat.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatGIF  = "gif"
	FormatWebP = "webp"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// DetectFormat identifies the image format by examining the magic bytes.
// It returns an empty string if the format is not recognised.
func DetectFormat(magic []byte) string {
	switch {
	case len(magic) >= 3 && magic[0] == 0xFF && magic[1] == 0xD8 && magic[2] == 0xFF:
		return FormatJPEG
	case bytes.HasPrefix(magic, pngSignature):
		return FormatPNG
	case bytes.HasPrefix(magic, []byte("GIF87a")), bytes.HasPrefix(magic, []byte("GIF89a")):
		return FormatGIF
	case len(magic) >= 12 && bytes.Equal(magic[0:4], []byte("RIFF")) && bytes.Equal(magic[8:12], []byte("WEBP")):
		return FormatWebP
	case bytes.HasPrefix(magic, []byte("BM")):
		return FormatBMP
	case bytes.HasPrefix(magic, []byte("II*\x00")), bytes.HasPrefix(magic, []byte("MM\x00*")):
		return FormatTIFF
	}
	return ""
}

// ExtensionFor returns the conventional file extension for a detected format,
// or an empty string for unknown formats.
func ExtensionFor(format string) string {
	switch format {
	case FormatJPEG:
		return ".jpg"
	case FormatPNG:
		return ".png"
	case FormatGIF:
		return ".gif"
	case FormatWebP:
		return ".webp"
	case FormatBMP:
		return ".bmp"
	case FormatTIFF:
		return ".tiff"
	}
	return ""
}
