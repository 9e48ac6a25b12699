// Package model - The opaque detection model boundary.
package model

import (
	"context"
	"image"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// ErrMalformedOutput is returned when the parallel output arrays disagree in length.
var ErrMalformedOutput = errors.New("malformed model output")

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameSSDMobileNetV2 is the name of the SSD MobileNet v2 detector.
	ModelNameSSDMobileNetV2 Name = "ssd_mobilenet_v2"
)

// Model is a pretrained detector treated as a black box.
//
// Infer takes a float32 tensor of shape (1, H, W, 3) with values in [0,1] and
// performs a single forward pass. The returned arrays are expected to be
// ordered by descending score.
type Model interface {
	Infer(ctx context.Context, input *tensor.Dense) (*RawOutput, error)
	Close() error
}

// InputSizer is implemented by models that require a fixed input size. A zero
// size means any size is accepted.
type InputSizer interface {
	InputSize() image.Point
}

// RawOutput holds the per-candidate model output as parallel arrays.
type RawOutput struct {
	ClassEntities []string                `json:"detection_class_entities"`
	Scores        []float32               `json:"detection_scores"`
	Boxes         []images.NormalizedRect `json:"detection_boxes"`
	ClassNames    []string                `json:"detection_class_names"`
	ClassLabels   []int                   `json:"detection_class_labels"`
}

// Len returns the number of candidates, or ErrMalformedOutput when the arrays
// are not all the same length.
func (o *RawOutput) Len() (int, error) {
	n := len(o.Scores)
	if len(o.ClassEntities) != n || len(o.Boxes) != n || len(o.ClassNames) != n || len(o.ClassLabels) != n {
		return 0, errors.Wrapf(ErrMalformedOutput,
			"entities=%d scores=%d boxes=%d names=%d labels=%d",
			len(o.ClassEntities), n, len(o.Boxes), len(o.ClassNames), len(o.ClassLabels))
	}
	return n, nil
}

// Slice returns the first n candidates, slicing every array by the same range.
// n is clamped to [0, Len].
func (o *RawOutput) Slice(n int) (*RawOutput, error) {
	total, err := o.Len()
	if err != nil {
		return nil, err
	}
	n = max(0, min(n, total))
	return &RawOutput{
		ClassEntities: o.ClassEntities[:n:n],
		Scores:        o.Scores[:n:n],
		Boxes:         o.Boxes[:n:n],
		ClassNames:    o.ClassNames[:n:n],
		ClassLabels:   o.ClassLabels[:n:n],
	}, nil
}

// Detections zips the parallel arrays into a DetectionSet, keeping their order.
func (o *RawOutput) Detections() (postprocess.DetectionSet, error) {
	n, err := o.Len()
	if err != nil {
		return nil, err
	}
	set := make(postprocess.DetectionSet, n)
	for i := 0; i < n; i++ {
		set[i] = postprocess.Detection{
			ClassEntity: o.ClassEntities[i],
			ClassName:   o.ClassNames[i],
			ClassLabel:  o.ClassLabels[i],
			Score:       o.Scores[i],
			Box:         o.Boxes[i],
		}
	}
	return set, nil
}

// FromDetections splits a DetectionSet back into parallel arrays.
func FromDetections(set postprocess.DetectionSet) *RawOutput {
	out := &RawOutput{
		ClassEntities: make([]string, len(set)),
		Scores:        make([]float32, len(set)),
		Boxes:         make([]images.NormalizedRect, len(set)),
		ClassNames:    make([]string, len(set)),
		ClassLabels:   make([]int, len(set)),
	}
	for i, d := range set {
		out.ClassEntities[i] = d.ClassEntity
		out.Scores[i] = d.Score
		out.Boxes[i] = d.Box
		out.ClassNames[i] = d.ClassName
		out.ClassLabels[i] = d.ClassLabel
	}
	return out
}
