package onnx

import (
	"image"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/models"
)

// Default tensor names of a TensorFlow object detection export converted with
// tf2onnx.
const (
	DefaultInputName   = "input_tensor"
	DefaultBoxesName   = "detection_boxes"
	DefaultScoresName  = "detection_scores"
	DefaultClassesName = "detection_classes"
)

// Config for an SSD-style ONNX detector.
type Config struct {
	// Path to the .onnx model file.
	ModelPath string
	// Path to the onnxruntime shared library. Empty selects a per-platform default.
	SharedLibraryPath string
	// Fixed input size (width, height) of the graph.
	InputShape image.Point
	// Number of candidates the graph emits per image.
	MaxDetections int
	// Label map used to name class ids.
	Family models.ModelFamily

	InputName   string
	BoxesName   string
	ScoresName  string
	ClassesName string

	// Threads used within and across graph nodes. Zero uses the runtime default.
	IntraOpThreads int
	InterOpThreads int
}

// DefaultConfig returns the settings for a 320x320 SSD MobileNet v2 export.
func DefaultConfig(modelPath string) Config {
	return Config{
		ModelPath:     modelPath,
		InputShape:    image.Point{X: 320, Y: 320},
		MaxDetections: 100,
		Family:        models.ModelFamilyTF,
		InputName:     DefaultInputName,
		BoxesName:     DefaultBoxesName,
		ScoresName:    DefaultScoresName,
		ClassesName:   DefaultClassesName,
	}
}

func (c *Config) setDefaults() {
	if c.InputName == "" {
		c.InputName = DefaultInputName
	}
	if c.BoxesName == "" {
		c.BoxesName = DefaultBoxesName
	}
	if c.ScoresName == "" {
		c.ScoresName = DefaultScoresName
	}
	if c.ClassesName == "" {
		c.ClassesName = DefaultClassesName
	}
	if c.SharedLibraryPath == "" {
		c.SharedLibraryPath = GetSharedLibPath()
	}
}

// Validate checks the fields needed to build a session.
func (c Config) Validate() error {
	if c.ModelPath == "" {
		return errors.New("model path is required")
	}
	if c.InputShape.X <= 0 || c.InputShape.Y <= 0 {
		return errors.Errorf("invalid input shape %dx%d", c.InputShape.X, c.InputShape.Y)
	}
	if c.MaxDetections <= 0 {
		return errors.Errorf("invalid max detections %d", c.MaxDetections)
	}
	if _, err := models.ClassSet(c.Family); err != nil {
		return err
	}
	return nil
}
