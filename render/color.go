package render

import (
	"crypto/sha256"
	"image/color"
	"math"
	"math/big"
	"strings"
)

// darkenAmount is the fraction of full intensity removed from every channel.
const darkenAmount = 0.2

// darkenStep is round(255 * darkenAmount) = 51.
var darkenStep = uint8(math.Round(255 * darkenAmount))

// Darken lowers every channel by 20% of full intensity, clamping at zero.
// Alpha is left untouched.
func Darken(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: darkenChannel(c.R),
		G: darkenChannel(c.G),
		B: darkenChannel(c.B),
		A: c.A,
	}
}

func darkenChannel(v uint8) uint8 {
	if v < darkenStep {
		return 0
	}
	return v - darkenStep
}

// Index maps a label onto a palette slot: the SHA-256 digest of the label,
// read as a big-endian unsigned integer, modulo the palette size. An empty
// palette always yields 0.
func (p *Palette) Index(label string) int {
	if p.Len() == 0 {
		return 0
	}
	sum := sha256.Sum256([]byte(label))
	v := new(big.Int).SetBytes(sum[:])
	return int(v.Mod(v, big.NewInt(int64(p.Len()))).Int64())
}

// ColorFor returns the darkened palette color for a label. The same label always
// yields the same color; different labels may collide. An empty palette draws
// everything in opaque black.
func (p *Palette) ColorFor(label string) color.RGBA {
	if p.Len() == 0 {
		return color.RGBA{A: 255}
	}
	_, c := p.At(p.Index(label))
	return Darken(c)
}

// ColorFor returns the darkened default palette color for a label.
func ColorFor(label string) color.RGBA {
	return defaultPalette.ColorFor(label)
}

// ColorHex returns ColorFor(label) formatted as "#rrggbb".
func ColorHex(label string) string {
	return Hex(ColorFor(label))
}

// CanonicalClass strips a display suffix from a label: it returns the text
// before the first ":" with surrounding whitespace removed.
//
//	CanonicalClass("Cat: 87%") == "Cat"
func CanonicalClass(label string) string {
	before, _, _ := strings.Cut(label, ":")
	return strings.TrimSpace(before)
}
