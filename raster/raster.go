package raster

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for unknown image formats and for
// encoding a decode-only format.
var ErrUnsupportedFormat = errors.New("raster: unsupported image format")

// Format is an image encoding.
type Format int

const (
	PNG Format = iota
	JPEG
	GIF
	BMP
	TIFF
	// WEBP can be decoded but not encoded.
	WEBP
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	case GIF:
		return "gif"
	case BMP:
		return "bmp"
	case TIFF:
		return "tiff"
	case WEBP:
		return "webp"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// Extension returns the canonical file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case JPEG:
		return ".jpg"
	case GIF:
		return ".gif"
	case BMP:
		return ".bmp"
	case TIFF:
		return ".tiff"
	case WEBP:
		return ".webp"
	default:
		return ".png"
	}
}

// CanEncode reports whether Encode supports f.
func (f Format) CanEncode() bool {
	switch f {
	case PNG, JPEG, GIF, BMP, TIFF:
		return true
	default:
		return false
	}
}

// ParseFormat parses a format name as returned by image.Decode.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "bmp":
		return BMP, nil
	case "tiff", "tif":
		return TIFF, nil
	case "webp":
		return WEBP, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// FormatFromName picks the format from the extension of a file or object name.
func FormatFromName(name string) (Format, error) {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if ext == "" {
		return 0, fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, name)
	}
	return ParseFormat(ext)
}

// OutputFormat is FormatFromName restricted to formats Encode can write.
func OutputFormat(name string) (Format, error) {
	f, err := FormatFromName(name)
	if err != nil {
		return 0, err
	}
	if !f.CanEncode() {
		return 0, fmt.Errorf("%w: %s is decode-only", ErrUnsupportedFormat, f)
	}
	return f, nil
}

// Decode decodes any supported image format.
func Decode(r io.Reader) (image.Image, Format, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, 0, fmt.Errorf("raster: decode: %w", err)
	}
	f, err := ParseFormat(name)
	if err != nil {
		return nil, 0, err
	}
	return img, f, nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case GIF:
		err = gif.Encode(w, img, &gif.Options{NumColors: 256})
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return fmt.Errorf("raster: encode %s: %w", f, err)
	}
	return nil
}
