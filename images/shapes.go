package images

import (
	"encoding/json"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// NormalizedRect is a box expressed as fractions of the image height and width.
//
// Coordinates produced by a detection model lie in [0,1] with YMin <= YMax and
// XMin <= XMax. The field order follows the model output (y_min, x_min, y_max, x_max),
// and the JSON form is that four-element array.
type NormalizedRect struct {
	YMin float32 `yaml:"y_min"`
	XMin float32 `yaml:"x_min"`
	YMax float32 `yaml:"y_max"`
	XMax float32 `yaml:"x_max"`
}

// Array returns the rectangle as [y_min, x_min, y_max, x_max].
func (r NormalizedRect) Array() [4]float32 {
	return [4]float32{r.YMin, r.XMin, r.YMax, r.XMax}
}

// MarshalJSON encodes the rectangle as [y_min, x_min, y_max, x_max].
func (r NormalizedRect) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Array())
}

// UnmarshalJSON decodes a [y_min, x_min, y_max, x_max] array.
func (r *NormalizedRect) UnmarshalJSON(data []byte) error {
	var a []float32
	if err := json.Unmarshal(data, &a); err != nil {
		return errors.Wrap(err, "box must be [y_min, x_min, y_max, x_max]")
	}
	if len(a) != 4 {
		return errors.Errorf("box must have 4 coordinates, got %d", len(a))
	}
	*r = NormalizedRect{YMin: a[0], XMin: a[1], YMax: a[2], XMax: a[3]}
	return nil
}

// PixelRect is a box in absolute pixel units. Values may be fractional; rounding
// happens at draw time.
type PixelRect struct {
	YMin, XMin, YMax, XMax float64
}

// Width returns the horizontal extent of the rectangle.
func (r PixelRect) Width() float64 {
	return r.XMax - r.XMin
}

// Height returns the vertical extent of the rectangle.
func (r PixelRect) Height() float64 {
	return r.YMax - r.YMin
}

// Rescale converts a normalized rectangle into pixel coordinates for an image of
// the given size.
//
// No clamping is performed: coordinates outside [0,1] map outside the canvas and
// are clipped by the raster when drawn.
//
// Arguments:
//   - r: The normalized rectangle.
//   - width: The target image width in pixels.
//   - height: The target image height in pixels.
//
// Returns:
//   - PixelRect: The rectangle in pixels.
//
// Example:
//
// ```go
//
//	px := Rescale(NormalizedRect{YMin: 0.1, XMin: 0.2, YMax: 0.5, XMax: 0.6}, 640, 480)
//	// px == PixelRect{YMin: 48, XMin: 128, YMax: 240, XMax: 384}
//
// ```
func Rescale(r NormalizedRect, width, height int) PixelRect {
	w, h := float64(width), float64(height)
	return PixelRect{
		YMin: float64(r.YMin) * h,
		XMin: float64(r.XMin) * w,
		YMax: float64(r.YMax) * h,
		XMax: float64(r.XMax) * w,
	}
}

// CalculateIoU returns the intersection over union of two normalized rectangles,
// a value between 0 (disjoint) and 1 (identical).
func CalculateIoU(r, o NormalizedRect) float32 {
	ix1 := math32.Max(r.XMin, o.XMin)
	iy1 := math32.Max(r.YMin, o.YMin)
	ix2 := math32.Min(r.XMax, o.XMax)
	iy2 := math32.Min(r.YMax, o.YMax)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	// Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
	areaR := (r.XMax - r.XMin) * (r.YMax - r.YMin)
	areaO := (o.XMax - o.XMin) * (o.YMax - o.YMin)
	unionArea := areaR + areaO - interArea
	if unionArea <= 0 {
		return 0.0
	}
	return interArea / unionArea
}
