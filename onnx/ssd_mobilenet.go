// Package onnx - SSD detector served by ONNX Runtime.
package onnx

import (
	"context"
	"image"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/model"
)

var envMu sync.Mutex

// initEnvironment loads the shared library once per process.
func initEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if _, err := os.Stat(libPath); err != nil {
		return errors.Wrapf(err, "onnxruntime library not found at %q", libPath)
	}
	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return errors.Wrap(err, "error initializing ORT environment")
	}
	return nil
}

// Stats summarizes the inference calls made on a model.
type Stats struct {
	InferenceCount int64
	TotalTime      time.Duration
}

// AverageTime returns the mean duration of one inference call.
func (s Stats) AverageTime() time.Duration {
	if s.InferenceCount == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.InferenceCount)
}

// SSDModel runs an SSD-style detection graph with inputs [1,H,W,3] and outputs
// detection_boxes [1,N,4], detection_scores [1,N] and detection_classes [1,N].
//
// The input and output tensors are allocated once and reused, so calls to Infer
// are serialized.
type SSDModel struct {
	mu sync.Mutex

	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	boxes   *ort.Tensor[float32]
	scores  *ort.Tensor[float32]
	classes *ort.Tensor[float32]

	inputShape image.Point
	labels     *models.OutputClassSet
	logger     *zap.SugaredLogger

	stats Stats
}

// NewSSDModel creates a session for the model described by config.
//
// Arguments:
//   - config: The model configuration.
//   - logger: The logger, or nil to discard logs.
//
// Returns:
//   - *SSDModel: The model, ready for inference.
//   - error: An error if the runtime or the session could not be created.
func NewSSDModel(config Config, logger *zap.SugaredLogger) (*SSDModel, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	config.setDefaults()
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid onnx config")
	}
	labels, err := models.ClassSet(config.Family)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file not found: %s", config.ModelPath)
	}
	if err := initEnvironment(config.SharedLibraryPath); err != nil {
		return nil, err
	}

	m := &SSDModel{inputShape: config.InputShape, labels: labels, logger: logger}
	if err := m.allocate(config); err != nil {
		m.release()
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		m.release()
		return nil, errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	if err := options.SetIntraOpNumThreads(config.IntraOpThreads); err != nil {
		m.release()
		return nil, errors.Wrap(err, "error setting intra-op threads")
	}
	if err := options.SetInterOpNumThreads(config.InterOpThreads); err != nil {
		m.release()
		return nil, errors.Wrap(err, "error setting inter-op threads")
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		m.release()
		return nil, errors.Wrap(err, "error setting graph optimization level")
	}

	session, err := ort.NewAdvancedSession(
		config.ModelPath,
		[]string{config.InputName},
		[]string{config.BoxesName, config.ScoresName, config.ClassesName},
		[]ort.ArbitraryTensor{m.input},
		[]ort.ArbitraryTensor{m.boxes, m.scores, m.classes},
		options,
	)
	if err != nil {
		m.release()
		return nil, errors.Wrap(err, "error creating ORT session")
	}
	m.session = session

	logger.Infow("onnx model loaded",
		"path", config.ModelPath,
		"input", config.InputShape,
		"max_detections", config.MaxDetections,
		"labels", config.Family,
	)
	return m, nil
}

func (m *SSDModel) allocate(config Config) error {
	var err error
	n := int64(config.MaxDetections)

	m.input, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(config.InputShape.Y), int64(config.InputShape.X), 3))
	if err != nil {
		return errors.Wrap(err, "error creating input tensor")
	}
	m.boxes, err = ort.NewEmptyTensor[float32](ort.NewShape(1, n, 4))
	if err != nil {
		return errors.Wrap(err, "error creating boxes tensor")
	}
	m.scores, err = ort.NewEmptyTensor[float32](ort.NewShape(1, n))
	if err != nil {
		return errors.Wrap(err, "error creating scores tensor")
	}
	m.classes, err = ort.NewEmptyTensor[float32](ort.NewShape(1, n))
	if err != nil {
		return errors.Wrap(err, "error creating classes tensor")
	}
	return nil
}

// InputSize returns the fixed (width, height) the graph expects.
func (m *SSDModel) InputSize() image.Point {
	return m.inputShape
}

// Infer copies input into the session, runs the graph once and decodes the
// outputs.
func (m *SSDModel) Infer(ctx context.Context, input *tensor.Dense) (*model.RawOutput, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	want := tensor.Shape{1, m.inputShape.Y, m.inputShape.X, 3}
	if !input.Shape().Eq(want) {
		return nil, errors.Errorf("input shape %v does not match model shape %v", input.Shape(), want)
	}
	data, ok := input.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("input tensor has dtype %v, want float32", input.Dtype())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, errors.New("model is closed")
	}

	copy(m.input.GetData(), data)

	start := time.Now()
	if err := m.session.Run(); err != nil {
		return nil, errors.Wrap(err, "failed to run inference")
	}
	elapsed := time.Since(start)
	m.stats.InferenceCount++
	m.stats.TotalTime += elapsed

	m.logger.Debugw("inference complete", "elapsed", elapsed)

	return decodeOutputs(m.boxes.GetData(), m.scores.GetData(), m.classes.GetData(), m.labels)
}

// Stats returns the inference counters.
func (m *SSDModel) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Close releases the session and its tensors.
func (m *SSDModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
	return nil
}

func (m *SSDModel) release() {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	for _, t := range []**ort.Tensor[float32]{&m.input, &m.boxes, &m.scores, &m.classes} {
		if *t != nil {
			(*t).Destroy()
			*t = nil
		}
	}
}

// decodeOutputs converts the flat output buffers into parallel arrays. Boxes are
// [y_min, x_min, y_max, x_max] quadruples. The buffers are copied so the
// session can reuse them.
func decodeOutputs(boxes, scores, classes []float32, labels *models.OutputClassSet) (*model.RawOutput, error) {
	n := len(scores)
	if len(classes) != n || len(boxes) != 4*n {
		return nil, errors.Wrapf(model.ErrMalformedOutput,
			"boxes=%d scores=%d classes=%d", len(boxes), n, len(classes))
	}

	out := &model.RawOutput{
		ClassEntities: make([]string, n),
		Scores:        make([]float32, n),
		Boxes:         make([]images.NormalizedRect, n),
		ClassNames:    make([]string, n),
		ClassLabels:   make([]int, n),
	}
	for i := 0; i < n; i++ {
		label := int(classes[i])
		name := labels.Name(label)
		b := boxes[4*i : 4*i+4]

		out.ClassEntities[i] = labels.Entity(label)
		out.ClassNames[i] = name
		out.ClassLabels[i] = label
		out.Scores[i] = scores[i]
		out.Boxes[i] = images.NormalizedRect{YMin: b[0], XMin: b[1], YMax: b[2], XMax: b[3]}
	}
	return out, nil
}
