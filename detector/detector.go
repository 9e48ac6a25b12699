// Package detector - Object detection on a single image.
//
// A Detector validates the declared image format, prepares the input tensor,
// runs the model once and reduces the raw candidates to a ranked, capped and
// thresholded DetectionSet.
package detector

import (
	"context"
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

const (
	// DefaultMaxObjects is the default cap on returned detections.
	DefaultMaxObjects = 5
	// DefaultMinScore is the default confidence threshold.
	DefaultMinScore float32 = 0.15
)

// Options control how raw candidates are reduced.
type Options struct {
	MaxObjects int
	MinScore   float32
	NMS        postprocess.NMSConfig
}

// DefaultOptions returns maxN=5, minScore=0.15 and no suppression.
func DefaultOptions() Options {
	return Options{MaxObjects: DefaultMaxObjects, MinScore: DefaultMinScore}
}

// Option overrides one field of Options.
type Option func(*Options)

// WithMaxObjects sets the maximum number of detections returned.
func WithMaxObjects(n int) Option {
	return func(o *Options) { o.MaxObjects = n }
}

// WithMinScore sets the minimum confidence of a returned detection.
func WithMinScore(s float32) Option {
	return func(o *Options) { o.MinScore = s }
}

// WithNMS enables greedy non-maximum suppression before filtering.
func WithNMS(config postprocess.NMSConfig) Option {
	return func(o *Options) { o.NMS = config }
}

// Detector runs a model over single images.
type Detector struct {
	model    model.Model
	logger   *zap.SugaredLogger
	defaults Options
}

// New creates a detector around m. The options given here become the defaults
// for every Detect call.
func New(m model.Model, logger *zap.SugaredLogger, opts ...Option) (*Detector, error) {
	if m == nil {
		return nil, errors.New("model is required")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	defaults := DefaultOptions()
	for _, opt := range opts {
		opt(&defaults)
	}
	return &Detector{model: m, logger: logger, defaults: defaults}, nil
}

// Options returns the detector defaults.
func (d *Detector) Options() Options {
	return d.defaults
}

// Detect finds objects in img.
//
// Arguments:
//   - ctx: Checked before the model is invoked.
//   - img: The decoded image and its declared format.
//   - opts: Per-call overrides of the detector defaults.
//
// Returns:
//   - postprocess.DetectionSet: At most MaxObjects detections scoring at least
//     MinScore, highest score first.
//   - error: images.ErrUnsupportedFormat before any inference, model.ErrMalformedOutput
//     for inconsistent model output, or the model's own error.
func (d *Detector) Detect(ctx context.Context, img images.Image, opts ...Option) (postprocess.DetectionSet, error) {
	o := d.defaults
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := images.ParseFormat(string(img.Format)); err != nil {
		return nil, err
	}

	pixels, err := images.Normalize(img)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare image")
	}
	pixels = d.fitInput(pixels)
	input := images.ToTensor(pixels)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := d.model.Infer(ctx, input)
	if err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}
	if raw == nil {
		return nil, errors.Wrap(model.ErrMalformedOutput, "model returned no output")
	}

	set, err := raw.Detections()
	if err != nil {
		return nil, err
	}

	if !postprocess.IsSorted(set) {
		d.logger.Warnw("model output is not sorted by score, sorting", "candidates", len(set))
		set = postprocess.SortByScore(set)
	}

	result := postprocess.Chain(
		postprocess.NewNMS(o.NMS),
		postprocess.NewFilter(o.MaxObjects, o.MinScore),
	)(set)

	d.logger.Debugw("detection complete",
		"candidates", len(set),
		"returned", len(result),
		"max_n", o.MaxObjects,
		"min_score", o.MinScore,
	)
	return result, nil
}

// fitInput resizes pixels to the model's fixed input size, if it has one.
// Box coordinates are normalized, so they stay valid for the original image.
func (d *Detector) fitInput(pixels image.Image) image.Image {
	sizer, ok := d.model.(model.InputSizer)
	if !ok {
		return pixels
	}
	size := sizer.InputSize()
	b := pixels.Bounds()
	if size.X <= 0 || size.Y <= 0 || (b.Dx() == size.X && b.Dy() == size.Y) {
		return pixels
	}
	return resize.Resize(uint(size.X), uint(size.Y), pixels, resize.Bilinear)
}

// Close releases the model.
func (d *Detector) Close() error {
	return d.model.Close()
}
