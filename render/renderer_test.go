package render

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

var gray = color.RGBA{R: 128, G: 128, B: 128, A: 255}

func grayImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = gray.R, gray.G, gray.B, gray.A
	}
	return img
}

func countColor(img *image.RGBA, c color.RGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == c.R && img.Pix[i+1] == c.G && img.Pix[i+2] == c.B {
			n++
		}
	}
	return n
}

func TestFileFont_Errors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.ttf")
	require.NoError(t, os.WriteFile(garbage, []byte("not a font"), 0o600))

	for _, path := range []string{filepath.Join(dir, "missing.ttf"), garbage} {
		_, err := FileFont(path).Face(12)
		assert.ErrorIs(t, err, ErrResourceUnavailable, path)
	}
}

func TestGoRegular(t *testing.T) {
	face, err := GoRegular().Face(14)
	require.NoError(t, err)
	assert.Positive(t, face.Metrics().Height.Ceil())
}

func TestFitFont(t *testing.T) {
	fonts := GoRegular()

	for _, target := range []float64{1, 40, 128, 300} {
		fit, err := FitFont(fonts, "cat: 87%", target, DefaultMaxFontIterations)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, fit.Width, target)
		assert.Positive(t, fit.Height)
		assert.Greater(t, fit.Height, fit.Ascent)

		if fit.Size > 1 {
			smaller, err := fonts.Face(fit.Size - 1)
			require.NoError(t, err)
			w, _, _ := measure(smaller, "cat: 87%")
			assert.Less(t, w, target, "size %v is not the first to reach %v", fit.Size, target)
		}
	}
}

func TestFitFont_Capped(t *testing.T) {
	fit, err := FitFont(GoRegular(), "x", 1e9, 16)
	require.NoError(t, err)
	assert.Equal(t, 16.0, fit.Size)
	assert.Less(t, fit.Width, 1e9)
}

func TestRenderer_DrawBox(t *testing.T) {
	src := grayImage(100, 100)
	r := NewRenderer(src, GoRegular())
	rect := images.NormalizedRect{YMin: 0.1, XMin: 0.1, YMax: 0.9, XMax: 0.9}

	r.DrawBox(rect, "Cat", 4)

	want := ColorFor("Cat")
	out := r.Image()
	assert.Equal(t, want, out.RGBAAt(11, 50))
	assert.Equal(t, want, out.RGBAAt(50, 11))
	assert.Equal(t, want, out.RGBAAt(88, 50))
	assert.Equal(t, gray, out.RGBAAt(50, 50))
	assert.Equal(t, gray, out.RGBAAt(5, 5))

	// The source is never touched.
	assert.Equal(t, gray, src.RGBAAt(11, 50))
}

func TestRenderer_DrawBox_ThinAndOutOfRange(t *testing.T) {
	r := NewRenderer(grayImage(50, 50), GoRegular())

	assert.NotPanics(t, func() {
		r.DrawBox(images.NormalizedRect{YMin: -0.5, XMin: -0.5, YMax: 1.5, XMax: 1.5}, "dog", 0)
		r.DrawBox(images.NormalizedRect{YMin: 0.5, XMin: 0.5, YMax: 0.5, XMax: 0.5}, "dog", 10)
	})
	assert.Equal(t, 50, r.Width())
	assert.Equal(t, 50, r.Height())
}

func TestRenderer_DrawLabel(t *testing.T) {
	r := NewRenderer(grayImage(600, 300), GoRegular())
	rect := images.NormalizedRect{YMin: 0.2, XMin: 0.1, YMax: 0.8, XMax: 0.9}

	require.NoError(t, r.DrawLabel(rect, "Cat: 87%"))

	bg := ColorFor("Cat")
	assert.Positive(t, countColor(r.Image(), bg))
	assert.Equal(t, bg, r.Image().RGBAAt(62, 62))
	assert.Positive(t, countColor(r.Image(), color.RGBA{R: 255, G: 255, B: 255, A: 255}))
}

func TestRenderer_DrawLabel_TextInsideBackground(t *testing.T) {
	const text = "gyp: 87%"
	r := NewRenderer(grayImage(600, 300), GoRegular())
	rect := images.NormalizedRect{YMin: 0.2, XMin: 0.1, YMax: 0.8, XMax: 0.9}

	require.NoError(t, r.DrawLabel(rect, text))

	fit, err := FitFont(GoRegular(), text, DefaultTextFraction*600, DefaultMaxFontIterations)
	require.NoError(t, err)
	top, left := 60, 60
	bottom := top + int(fit.Height)
	right := left + int(fit.Width)

	out := r.Image()
	inside, outside := 0, 0
	for y := 0; y < 300; y++ {
		for x := 0; x < 600; x++ {
			c := out.RGBAAt(x, y)
			if c.R < 200 || c.G < 200 || c.B < 200 {
				continue
			}
			if y >= top && y <= bottom && x >= left-1 && x <= right+1 {
				inside++
			} else {
				outside++
			}
		}
	}
	assert.Positive(t, inside)
	assert.Zero(t, outside, "text pixels outside the %vx%v background", fit.Width, fit.Height)
}

func TestRenderer_DrawLabel_Empty(t *testing.T) {
	r := NewRenderer(grayImage(40, 40), FileFont("/nonexistent.ttf"))
	require.NoError(t, r.DrawLabel(images.NormalizedRect{XMax: 1, YMax: 1}, ""))
	assert.Equal(t, 40*40, countColor(r.Image(), gray))
}

func TestRenderer_DrawLabel_FontUnavailable(t *testing.T) {
	r := NewRenderer(grayImage(60, 60), FileFont(filepath.Join(t.TempDir(), "missing.ttf")))
	rect := images.NormalizedRect{YMin: 0.1, XMin: 0.1, YMax: 0.9, XMax: 0.9}

	r.DrawBox(rect, "Cat", 2)
	before := countColor(r.Image(), gray)

	err := r.DrawLabel(rect, "Cat: 50%")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResourceUnavailable))

	// The box stays, the label is missing.
	assert.Equal(t, before, countColor(r.Image(), gray))
	assert.Positive(t, countColor(r.Image(), ColorFor("Cat")))
}

func TestAnnotate(t *testing.T) {
	set := postprocess.DetectionSet{
		{ClassEntity: "Cat", Score: 0.87, Box: images.NormalizedRect{YMin: 0.1, XMin: 0.1, YMax: 0.5, XMax: 0.5}},
		{ClassEntity: "Dog", Score: 0.5, Box: images.NormalizedRect{YMin: 0.5, XMin: 0.5, YMax: 0.9, XMax: 0.9}},
	}
	assert.Equal(t, "Cat: 87%", DisplayText(set[0]))

	src := grayImage(160, 120)
	out, err := Annotate(src, set, GoRegular(), 3)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), out.Bounds())
	assert.Positive(t, countColor(out, ColorFor("Cat")))
	assert.Positive(t, countColor(out, ColorFor("Dog")))

	_, err = Annotate(src, set, FileFont("/nonexistent.ttf"), 3)
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}
