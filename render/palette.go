// Package render draws detection boxes and labels onto images.
//
// Colors are derived deterministically from class labels, so a class keeps the
// same color across boxes, images and processes without any shared assignment
// state. Label text is sized relative to the image width.
//
// A Renderer owns its drawing surface for one annotation pass; it is not safe for
// concurrent use. Concurrent passes must use separate Renderers.
package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Palette is a read-only table of named colors.
type Palette struct {
	names  []string
	colors []color.RGBA
}

// NewPalette builds a palette from names in the given order.
func NewPalette(names []string, table map[string]color.RGBA) *Palette {
	p := &Palette{
		names:  make([]string, 0, len(names)),
		colors: make([]color.RGBA, 0, len(names)),
	}
	for _, name := range names {
		c, ok := table[name]
		if !ok {
			continue
		}
		p.names = append(p.names, name)
		p.colors = append(p.colors, c)
	}
	return p
}

// defaultPalette is the SVG/CSS named color table in alphabetical order. It is
// built once and never written afterwards.
var defaultPalette = NewPalette(colornames.Names, colornames.Map)

// DefaultPalette returns the process-wide named color table.
func DefaultPalette() *Palette {
	return defaultPalette
}

// Len returns the number of colors.
func (p *Palette) Len() int {
	return len(p.colors)
}

// At returns the name and color at index i.
func (p *Palette) At(i int) (string, color.RGBA) {
	return p.names[i], p.colors[i]
}

// Hex returns the color at index i as "#rrggbb".
func (p *Palette) Hex(i int) string {
	return Hex(p.colors[i])
}

// Hex formats an opaque color as "#rrggbb".
func Hex(c color.RGBA) string {
	cf, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	return cf.Hex()
}
