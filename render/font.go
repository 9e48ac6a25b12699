package render

import (
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrResourceUnavailable is returned when a font cannot be opened or parsed.
// No fallback font is substituted.
var ErrResourceUnavailable = errors.New("resource unavailable")

// FontSource produces font faces at a requested point size.
type FontSource interface {
	Face(size float64) (font.Face, error)
}

type trueTypeSource struct {
	mu   sync.Mutex
	path string
	data []byte
	font *truetype.Font
}

// FileFont returns a FontSource backed by a TrueType file on disk. The file is
// read and parsed on first use; a failed load is retried on the next call.
func FileFont(path string) FontSource {
	return &trueTypeSource{path: path}
}

// GoRegular returns a FontSource backed by the embedded Go Regular font.
func GoRegular() FontSource {
	return &trueTypeSource{path: "goregular", data: goregular.TTF}
}

func (s *trueTypeSource) load() (*truetype.Font, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.font != nil {
		return s.font, nil
	}

	data := s.data
	if data == nil {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return nil, errors.Wrapf(ErrResourceUnavailable, "read font %s: %v", s.path, err)
		}
		data = b
	}

	f, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(ErrResourceUnavailable, "parse font %s: %v", s.path, err)
	}
	s.font = f
	return f, nil
}

// Face returns a face of the given point size.
func (s *trueTypeSource) Face(size float64) (font.Face, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// Fit is the outcome of a font size search.
//
// Height spans the ascent and descent of the face, so text drawn with its
// baseline Ascent pixels below the top of a Width x Height box stays inside it.
type Fit struct {
	Face   font.Face
	Size   float64
	Width  float64
	Height float64
	Ascent float64
}

// measure returns the advance width of text, plus the ascent and descent of
// the face, in whole pixels.
func measure(face font.Face, text string) (width, ascent, descent float64) {
	adv := font.MeasureString(face, text)
	m := face.Metrics()
	return float64(adv >> 6), float64(m.Ascent.Ceil()), float64(m.Descent.Ceil())
}

// FitFont grows the point size from 1 until the rendered width of text reaches
// target, and returns the first face that does. The search stops after
// maxIterations sizes and then returns the largest size tried.
func FitFont(fonts FontSource, text string, target float64, maxIterations int) (Fit, error) {
	if maxIterations < 1 {
		maxIterations = 1
	}

	var fit Fit
	for size := 1; size <= maxIterations; size++ {
		face, err := fonts.Face(float64(size))
		if err != nil {
			return Fit{}, err
		}
		w, ascent, descent := measure(face, text)
		fit = Fit{Face: face, Size: float64(size), Width: w, Height: ascent + descent, Ascent: ascent}
		if w >= target {
			break
		}
	}
	return fit, nil
}
