// Package images - Image formats, tensors and box geometry for detection.
package images

import (
	"bytes"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Image is a decoded raster together with the format it was declared in.
type Image struct {
	// The declared format of the image.
	Format Format `json:"format" yaml:"format"`
	// The decoded pixels.
	Pixels image.Image `json:"-" yaml:"-"`
}

// New pairs a decoded image with its declared format.
//
// Arguments:
//   - img: The decoded image.
//   - declared: The declared format name, e.g. "jpg".
//
// Returns:
//   - Image: The image with a resolved format.
//   - error: ErrUnsupportedFormat when the declared format is not JPEG or PNG.
func New(img image.Image, declared string) (Image, error) {
	f, err := ParseFormat(declared)
	if err != nil {
		return Image{}, err
	}
	return Image{Format: f, Pixels: img}, nil
}

// Decode decodes raw bytes declared as the given format.
//
// The declared format is checked before any decoding happens.
func Decode(data []byte, declared Format) (Image, error) {
	f, err := ParseFormat(string(declared))
	if err != nil {
		return Image{}, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, errors.Wrap(err, "failed to decode image")
	}
	return Image{Format: f, Pixels: img}, nil
}

// Load reads an image file, taking the declared format from its extension.
//
// Arguments:
//   - path: Path to a .jpg, .jpeg or .png file.
//
// Returns:
//   - Image: The decoded image.
//   - error: ErrUnsupportedFormat for other extensions, or a read/decode error.
func Load(path string) (Image, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return Image{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, errors.Wrapf(err, "failed to read %s", path)
	}
	return Decode(data, f)
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	codec, err := f.codec()
	if err != nil {
		return err
	}
	return imaging.Encode(w, img, codec)
}

// Width returns the width of the image in pixels.
func (i Image) Width() int {
	return i.Pixels.Bounds().Dx()
}

// Height returns the height of the image in pixels.
func (i Image) Height() int {
	return i.Pixels.Bounds().Dy()
}
