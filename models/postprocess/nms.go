package postprocess

import "github.com/nvr-ai/go-detect/images"

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"` // Overlap threshold for suppression.
	ClassAware   bool    `json:"class_aware" yaml:"class_aware"`     // If true, suppress only within same class.
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// Arguments:
//   - detections: Slice of detections sorted by descending confidence.
//   - config: NMS configuration. A threshold of zero or less disables suppression.
//
// Returns:
//   - Filtered detections, in their original order.
func ApplyGreedyNMS(detections DetectionSet, config NMSConfig) DetectionSet {
	n := len(detections)
	if n == 0 || config.IoUThreshold <= 0 {
		out := make(DetectionSet, n)
		copy(out, detections)
		return out
	}

	filtered := make(DetectionSet, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := detections[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if config.ClassAware && anchor.ClassLabel != detections[j].ClassLabel {
				continue
			}
			if images.CalculateIoU(anchor.Box, detections[j].Box) > config.IoUThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}

// NewNMS returns ApplyGreedyNMS as a Postprocessor.
func NewNMS(config NMSConfig) Postprocessor {
	return func(set DetectionSet) DetectionSet {
		return ApplyGreedyNMS(set, config)
	}
}
