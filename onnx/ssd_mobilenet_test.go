package onnx

import (
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/model"
)

func TestDecodeOutputs(t *testing.T) {
	boxes := []float32{
		0.1, 0.2, 0.5, 0.6,
		0.0, 0.0, 1.0, 1.0,
	}
	scores := []float32{0.9, 0.4}
	classes := []float32{17, 12}

	out, err := decodeOutputs(boxes, scores, classes, models.TFCOCOClasses)
	require.NoError(t, err)

	n, err := out.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, []string{"Cat", "class_12"}, out.ClassEntities)
	assert.Equal(t, []string{"cat", "class_12"}, out.ClassNames)
	assert.Equal(t, []int{17, 12}, out.ClassLabels)
	assert.Equal(t, []float32{0.9, 0.4}, out.Scores)
	assert.Equal(t, images.NormalizedRect{YMin: 0.1, XMin: 0.2, YMax: 0.5, XMax: 0.6}, out.Boxes[0])

	// Buffers are copied.
	scores[0] = 0
	assert.Equal(t, float32(0.9), out.Scores[0])
}

func TestDecodeOutputs_Malformed(t *testing.T) {
	tests := []struct {
		name                   string
		boxes, scores, classes []float32
	}{
		{"short boxes", []float32{0, 0, 1}, []float32{0.5}, []float32{1}},
		{"extra class", []float32{0, 0, 1, 1}, []float32{0.5}, []float32{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeOutputs(tt.boxes, tt.scores, tt.classes, models.COCOClasses)
			assert.True(t, errors.Is(err, model.ErrMalformedOutput))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig("model.onnx").Validate())

	bad := []Config{
		{},
		{ModelPath: "m.onnx", MaxDetections: 10},
		{ModelPath: "m.onnx", InputShape: image.Pt(320, 320)},
		{ModelPath: "m.onnx", InputShape: image.Pt(320, 320), MaxDetections: 10, Family: "imagenet"},
	}
	for i, c := range bad {
		assert.Error(t, c.Validate(), "config %d", i)
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	c := Config{SharedLibraryPath: "/opt/ort.so"}
	c.setDefaults()
	assert.Equal(t, DefaultInputName, c.InputName)
	assert.Equal(t, DefaultBoxesName, c.BoxesName)
	assert.Equal(t, DefaultScoresName, c.ScoresName)
	assert.Equal(t, DefaultClassesName, c.ClassesName)
	assert.Equal(t, "/opt/ort.so", c.SharedLibraryPath)
}

func TestSharedLibPath(t *testing.T) {
	assert.Equal(t, "./third_party/onnxruntime.so", sharedLibPath("linux", "amd64"))
	assert.Equal(t, "./third_party/onnxruntime_arm64.so", sharedLibPath("linux", "arm64"))
	assert.Equal(t, "./third_party/onnxruntime_arm64.dylib", sharedLibPath("darwin", "arm64"))
	assert.Equal(t, "", sharedLibPath("plan9", "386"))
}

func TestNewSSDModel_MissingModel(t *testing.T) {
	config := DefaultConfig(filepath.Join(t.TempDir(), "missing.onnx"))
	_, err := NewSSDModel(config, zaptest.NewLogger(t).Sugar())
	assert.Error(t, err)
}

func TestStats_AverageTime(t *testing.T) {
	assert.Equal(t, time.Duration(0), Stats{}.AverageTime())
	assert.Equal(t, 2*time.Second, Stats{InferenceCount: 3, TotalTime: 6 * time.Second}.AverageTime())
}
