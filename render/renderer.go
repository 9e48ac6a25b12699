package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/images"
)

const (
	// DefaultTextFraction is the share of the image width a label grows to.
	DefaultTextFraction = 0.2
	// DefaultMaxFontIterations bounds the font size search.
	DefaultMaxFontIterations = 512
)

// Renderer draws boxes and labels onto its own copy of an image.
//
// Box drawing never fails. Label drawing needs a font; if the font cannot be
// loaded the label is skipped and ErrResourceUnavailable is returned, so an
// image may end up with a box drawn but its label missing.
type Renderer struct {
	surface *image.RGBA
	dc      *gg.Context
	fonts   FontSource
	palette *Palette

	textFraction      float64
	maxFontIterations int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPalette replaces the default named color table.
func WithPalette(p *Palette) Option {
	return func(r *Renderer) {
		if p != nil && p.Len() > 0 {
			r.palette = p
		}
	}
}

// WithTextFraction sets the share of the image width that label text grows to.
func WithTextFraction(f float64) Option {
	return func(r *Renderer) {
		if f > 0 {
			r.textFraction = f
		}
	}
}

// WithMaxFontIterations caps the number of font sizes tried per label.
func WithMaxFontIterations(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxFontIterations = n
		}
	}
}

// NewRenderer copies img into a fresh RGBA surface. The source image is never
// modified.
func NewRenderer(img image.Image, fonts FontSource, opts ...Option) *Renderer {
	src := imaging.Clone(img)
	surface := image.NewRGBA(src.Bounds())
	draw.Draw(surface, surface.Bounds(), src, image.Point{}, draw.Src)

	r := &Renderer{
		surface:           surface,
		dc:                gg.NewContextForRGBA(surface),
		fonts:             fonts,
		palette:           defaultPalette,
		textFraction:      DefaultTextFraction,
		maxFontIterations: DefaultMaxFontIterations,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Width returns the surface width in pixels.
func (r *Renderer) Width() int { return r.surface.Bounds().Dx() }

// Height returns the surface height in pixels.
func (r *Renderer) Height() int { return r.surface.Bounds().Dy() }

// Image returns the annotated surface.
func (r *Renderer) Image() *image.RGBA { return r.surface }

// DrawBox outlines rect in the color of classLabel. The stroke lies inside the
// rectangle. A thickness below 1 is drawn as 1.
func (r *Renderer) DrawBox(rect images.NormalizedRect, classLabel string, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	px := images.Rescale(rect, r.Width(), r.Height())

	t := float64(thickness)
	w := px.Width() - t
	h := px.Height() - t
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}

	r.dc.SetColor(r.palette.ColorFor(classLabel))
	r.dc.SetLineWidth(t)
	r.dc.DrawRectangle(px.XMin+t/2, px.YMin+t/2, w, h)
	r.dc.Stroke()
}

// DrawLabel writes text at the top-left corner of rect on a filled background.
// The background color is taken from the class part of text, so "cat: 87%"
// matches a box drawn for "cat". Empty text draws nothing.
func (r *Renderer) DrawLabel(rect images.NormalizedRect, text string) error {
	if text == "" {
		return nil
	}

	target := r.textFraction * float64(r.Width())
	fit, err := FitFont(r.fonts, text, target, r.maxFontIterations)
	if err != nil {
		return errors.Wrapf(err, "draw label %q", text)
	}

	px := images.Rescale(rect, r.Width(), r.Height())

	r.dc.SetColor(r.palette.ColorFor(CanonicalClass(text)))
	r.dc.DrawRectangle(px.XMin, px.YMin, fit.Width, fit.Height)
	r.dc.Fill()

	r.dc.SetFontFace(fit.Face)
	r.dc.SetColor(color.White)
	r.dc.DrawString(text, px.XMin, px.YMin+fit.Ascent)
	return nil
}
