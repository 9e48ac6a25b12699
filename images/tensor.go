package images

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Normalize round-trips the pixels through an encode/decode pass in the declared
// format so that every input reaches the model with the same pixel representation.
//
// Arguments:
//   - img: The image and its declared format.
//
// Returns:
//   - image.Image: The re-decoded pixels.
//   - error: ErrUnsupportedFormat for formats other than JPEG and PNG, or a codec error.
func Normalize(img Image) (image.Image, error) {
	f, err := ParseFormat(string(img.Format))
	if err != nil {
		return nil, err
	}
	if img.Pixels == nil {
		return nil, errors.New("image has no pixels")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img.Pixels, f); err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s", f)
	}
	out, err := imaging.Decode(&buf)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", f)
	}
	return out, nil
}

// ToTensor converts an image into a float32 tensor of shape (1, H, W, 3) with
// values scaled to [0,1]. Alpha is dropped.
//
// Arguments:
//   - img: The image to convert.
//
// Returns:
//   - *tensor.Dense: The NHWC tensor with a batch dimension of 1.
func ToTensor(img image.Image) *tensor.Dense {
	// Clone gives a zero-origin NRGBA regardless of the source model.
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()

	data := make([]float32, h*w*3)
	i := 0
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			data[i] = float32(row[x*4]) / 255.0
			data[i+1] = float32(row[x*4+1]) / 255.0
			data[i+2] = float32(row[x*4+2]) / 255.0
			i += 3
		}
	}

	return tensor.New(tensor.WithShape(1, h, w, 3), tensor.WithBacking(data))
}
