package images

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 20), B: 255, A: 255})
		}
	}
	return img
}

func TestToTensor(t *testing.T) {
	img := newTestImage(4, 3)
	dense := ToTensor(img)

	assert.Equal(t, []int{1, 3, 4, 3}, []int(dense.Shape()))

	data, ok := dense.Data().([]float32)
	require.True(t, ok)
	require.Len(t, data, 3*4*3)

	// Pixel (x=2, y=1) sits at ((1*4)+2)*3.
	idx := (1*4 + 2) * 3
	assert.InDelta(t, 20.0/255.0, data[idx], 1e-6)
	assert.InDelta(t, 20.0/255.0, data[idx+1], 1e-6)
	assert.InDelta(t, 1.0, data[idx+2], 1e-6)

	for _, v := range data {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestToTensor_OffsetBounds(t *testing.T) {
	img := newTestImage(6, 6).SubImage(image.Rect(2, 2, 5, 4))
	dense := ToTensor(img)
	assert.Equal(t, []int{1, 2, 3, 3}, []int(dense.Shape()))

	data := dense.Data().([]float32)
	// First element is the source pixel (2,2).
	assert.InDelta(t, 20.0/255.0, data[0], 1e-6)
	assert.InDelta(t, 40.0/255.0, data[1], 1e-6)
}

func TestNormalize_PNGIsLossless(t *testing.T) {
	src := newTestImage(8, 8)
	out, err := Normalize(Image{Format: FormatPNG, Pixels: src})
	require.NoError(t, err)

	assert.Equal(t, src.Bounds(), out.Bounds())
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			r1, g1, b1, _ := src.At(x, y).RGBA()
			r2, g2, b2, _ := out.At(x, y).RGBA()
			assert.Equal(t, []uint32{r1, g1, b1}, []uint32{r2, g2, b2})
		}
	}
}

func TestNormalize_JPEGKeepsSize(t *testing.T) {
	out, err := Normalize(Image{Format: FormatJPEG, Pixels: newTestImage(16, 9)})
	require.NoError(t, err)
	assert.Equal(t, 16, out.Bounds().Dx())
	assert.Equal(t, 9, out.Bounds().Dy())
}

func TestNormalize_UnsupportedFormat(t *testing.T) {
	_, err := Normalize(Image{Format: Format("bmp"), Pixels: newTestImage(2, 2)})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeAndLoad(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, newTestImage(5, 7), FormatPNG))

	img, err := Decode(buf.Bytes(), "png")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, img.Format)
	assert.Equal(t, 5, img.Width())
	assert.Equal(t, 7, img.Height())

	_, err = Decode(buf.Bytes(), "bmp")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Decode([]byte("not an image"), FormatPNG)
	assert.Error(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, loaded.Format)
	assert.Equal(t, 5, loaded.Width())

	_, err = Load(filepath.Join(dir, "frame.bmp"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNew(t *testing.T) {
	img, err := New(newTestImage(1, 1), "JPG")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, img.Format)

	_, err = New(newTestImage(1, 1), "tiff")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
