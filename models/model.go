// Package models - Definitions for model output class families and label maps.
package models

// ModelFamily is the naming convention / dataset a model's class ids refer to.
type ModelFamily string

const (
	// ModelFamilyCOCO is the 80 COCO classes + background, contiguous ids.
	ModelFamilyCOCO ModelFamily = "coco"
	// ModelFamilyTF is the TensorFlow COCO label map (ids 1-90 with gaps).
	ModelFamilyTF ModelFamily = "tf"
	// ModelFamilyVOC is the 20 Pascal VOC classes + background.
	ModelFamilyVOC ModelFamily = "voc"
)
