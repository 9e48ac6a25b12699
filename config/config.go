// Package config - YAML configuration for the detection service and CLI.
package config

import (
	"bytes"
	"image"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-detect/detector"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/nvr-ai/go-detect/onnx"
	"github.com/nvr-ai/go-detect/render"
)

// Config is the top-level configuration document.
type Config struct {
	Model  ModelConfig  `json:"model"  yaml:"model"`
	Detect DetectConfig `json:"detect" yaml:"detect"`
	Render RenderConfig `json:"render" yaml:"render"`
	Server ServerConfig `json:"server" yaml:"server"`
	Log    LogConfig    `json:"log"    yaml:"log"`
}

// ModelConfig describes the ONNX model.
type ModelConfig struct {
	Path              string             `json:"path"                yaml:"path"`
	SharedLibraryPath string             `json:"shared_library_path" yaml:"shared_library_path"`
	InputShape        []int              `json:"input_shape"         yaml:"input_shape"` // [width, height]
	MaxDetections     int                `json:"max_detections"      yaml:"max_detections"`
	LabelMap          models.ModelFamily `json:"label_map"           yaml:"label_map"`
	InputName         string             `json:"input_name"          yaml:"input_name"`
	IntraOpThreads    int                `json:"intra_op_threads"    yaml:"intra_op_threads"`
	InterOpThreads    int                `json:"inter_op_threads"    yaml:"inter_op_threads"`
}

// DetectConfig holds the result reduction defaults.
type DetectConfig struct {
	MaxNObject      int     `json:"max_n_object"      yaml:"max_n_object"`
	MinScore        float32 `json:"min_score"         yaml:"min_score"`
	NMSIoUThreshold float32 `json:"nms_iou_threshold" yaml:"nms_iou_threshold"`
	NMSClassAware   bool    `json:"nms_class_aware"   yaml:"nms_class_aware"`
}

// RenderConfig controls annotation.
type RenderConfig struct {
	// FontPath is a TrueType file. Empty selects the embedded Go Regular font.
	FontPath  string `json:"font_path" yaml:"font_path"`
	Thickness int    `json:"thickness" yaml:"thickness"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Address      string   `json:"address"        yaml:"address"`
	CORSOrigins  []string `json:"cors_origins"   yaml:"cors_origins"`
	MaxBodyBytes int64    `json:"max_body_bytes" yaml:"max_body_bytes"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level       string `json:"level"       yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// Default returns a configuration usable without a file, apart from the model path.
func Default() Config {
	return Config{
		Model: ModelConfig{
			InputShape:    []int{320, 320},
			MaxDetections: 100,
			LabelMap:      models.ModelFamilyTF,
		},
		Detect: DetectConfig{
			MaxNObject: detector.DefaultMaxObjects,
			MinScore:   detector.DefaultMinScore,
		},
		Render: RenderConfig{Thickness: 4},
		Server: ServerConfig{
			Address:      ":8080",
			CORSOrigins:  []string{"*"},
			MaxBodyBytes: 32 << 20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML file on top of Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges. A missing model path is allowed here; commands that
// need the model check for it.
func (c Config) Validate() error {
	if len(c.Model.InputShape) != 2 || c.Model.InputShape[0] <= 0 || c.Model.InputShape[1] <= 0 {
		return errors.Errorf("model.input_shape must be [width, height], got %v", c.Model.InputShape)
	}
	if c.Model.MaxDetections <= 0 {
		return errors.Errorf("model.max_detections must be positive, got %d", c.Model.MaxDetections)
	}
	if _, err := models.ClassSet(c.Model.LabelMap); err != nil {
		return errors.Wrap(err, "model.label_map")
	}
	if c.Detect.NMSIoUThreshold < 0 || c.Detect.NMSIoUThreshold > 1 {
		return errors.Errorf("detect.nms_iou_threshold must be in [0,1], got %v", c.Detect.NMSIoUThreshold)
	}
	if c.Render.Thickness < 0 {
		return errors.Errorf("render.thickness must not be negative, got %d", c.Render.Thickness)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	return nil
}

// ONNX converts the model section into an onnx.Config.
func (c Config) ONNX() onnx.Config {
	oc := onnx.DefaultConfig(c.Model.Path)
	oc.SharedLibraryPath = c.Model.SharedLibraryPath
	oc.InputShape = image.Point{X: c.Model.InputShape[0], Y: c.Model.InputShape[1]}
	oc.MaxDetections = c.Model.MaxDetections
	oc.Family = c.Model.LabelMap
	if c.Model.InputName != "" {
		oc.InputName = c.Model.InputName
	}
	oc.IntraOpThreads = c.Model.IntraOpThreads
	oc.InterOpThreads = c.Model.InterOpThreads
	return oc
}

// DetectorOptions converts the detect section into detector options.
func (c Config) DetectorOptions() []detector.Option {
	return []detector.Option{
		detector.WithMaxObjects(c.Detect.MaxNObject),
		detector.WithMinScore(c.Detect.MinScore),
		detector.WithNMS(postprocess.NMSConfig{
			IoUThreshold: c.Detect.NMSIoUThreshold,
			ClassAware:   c.Detect.NMSClassAware,
		}),
	}
}

// Fonts returns the configured label font.
func (c Config) Fonts() render.FontSource {
	if c.Render.FontPath == "" {
		return render.GoRegular()
	}
	return render.FileFont(c.Render.FontPath)
}
