package images

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ErrUnsupportedFormat is returned when an image is declared in a format other than JPEG or PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format represents supported image formats.
type Format string

const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG Format = "jpeg"
	// FormatPNG is the PNG image format.
	FormatPNG Format = "png"
)

// ParseFormat resolves a declared format name into a Format.
//
// Matching is case-insensitive and accepts "jpeg", "jpg" and "png". Every other
// name is rejected here so that nothing past the input boundary has to deal with
// an unknown format.
//
// Arguments:
//   - name: The declared format, e.g. "JPEG" or "png".
//
// Returns:
//   - Format: The resolved format.
//   - error: ErrUnsupportedFormat when the name is not JPEG or PNG.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%q (only jpeg and png are supported)", name)
	}
}

// FormatFromContentType resolves a MIME type such as "image/png" into a Format.
func FormatFromContentType(contentType string) (Format, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", errors.Wrapf(ErrUnsupportedFormat, "content type %q", contentType)
	}
	name, ok := strings.CutPrefix(mediaType, "image/")
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedFormat, "content type %q", contentType)
	}
	return ParseFormat(name)
}

// FormatFromPath resolves the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

func (f Format) codec() (imaging.Format, error) {
	switch f {
	case FormatJPEG:
		return imaging.JPEG, nil
	case FormatPNG:
		return imaging.PNG, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedFormat, "%q", string(f))
	}
}
