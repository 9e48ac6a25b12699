// Package postprocess - Postprocessing utilities for detection results.
package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-detect/images"
)

// Detection is a single detected object.
type Detection struct {
	// The human-readable class, e.g. "Cat".
	ClassEntity string `json:"class_entity" yaml:"class_entity"`
	// The class name as known by the model's label map.
	ClassName string `json:"class_name" yaml:"class_name"`
	// The class identifier returned by the model.
	ClassLabel int `json:"class_label" yaml:"class_label"`
	// The confidence score in [0,1].
	Score float32 `json:"score" yaml:"score"`
	// The normalized bounding box.
	Box images.NormalizedRect `json:"box" yaml:"box"`
}

// DetectionSet is an ordered sequence of detections, highest score first.
type DetectionSet []Detection

// Postprocessor filters or modifies a set of detections.
type Postprocessor func(DetectionSet) DetectionSet

// IsSorted reports whether the set is ordered by descending score.
func IsSorted(set DetectionSet) bool {
	return sort.SliceIsSorted(set, func(i, j int) bool {
		return set[i].Score > set[j].Score
	})
}

// SortByScore returns a copy of the set ordered by descending score. Entries with
// equal scores keep their relative order.
func SortByScore(set DetectionSet) DetectionSet {
	out := make(DetectionSet, len(set))
	copy(out, set)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Chain applies postprocessors in order. Nil entries are skipped.
func Chain(steps ...Postprocessor) Postprocessor {
	return func(set DetectionSet) DetectionSet {
		for _, step := range steps {
			if step != nil {
				set = step(set)
			}
		}
		return set
	}
}
