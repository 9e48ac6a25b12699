package render

import (
	"fmt"
	"image"

	"github.com/nvr-ai/go-detect/models/postprocess"
)

// DisplayText formats a detection as "<entity>: <percent>%".
func DisplayText(d postprocess.Detection) string {
	return fmt.Sprintf("%s: %d%%", d.ClassEntity, int(d.Score*100))
}

// Annotate draws every detection in set onto a copy of img: first the box in the
// color of its class entity, then its display label. On a label error the
// partially annotated image is returned together with the error.
func Annotate(img image.Image, set postprocess.DetectionSet, fonts FontSource, thickness int, opts ...Option) (*image.RGBA, error) {
	r := NewRenderer(img, fonts, opts...)
	for _, d := range set {
		r.DrawBox(d.Box, d.ClassEntity, thickness)
		if err := r.DrawLabel(d.Box, DisplayText(d)); err != nil {
			return r.Image(), err
		}
	}
	return r.Image(), nil
}
