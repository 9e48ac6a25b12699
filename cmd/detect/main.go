// Command detect runs object detection on images, from the command line or as
// an HTTP service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detect/config"
	"github.com/nvr-ai/go-detect/detector"
	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/logging"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/onnx"
	"github.com/nvr-ai/go-detect/render"
	"github.com/nvr-ai/go-detect/server"
	"github.com/nvr-ai/go-detect/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "detect",
		Usage: "object detection and box annotation",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{"DETECT_CONFIG"}},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "ONNX model path (overrides model.path)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (overrides log.level)"},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve /detect_objects and /annotated_image over HTTP",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "address", Usage: "listen address (overrides server.address)"}},
				Action: serve,
			},
			{
				Name:      "detect",
				Usage:     "print detections for images or directories of images as JSON lines",
				ArgsUsage: "<path>...",
				Flags:     detectFlags(),
				Action:    detect,
			},
			{
				Name:      "annotate",
				Usage:     "draw detections onto an image",
				ArgsUsage: "<input> <output>",
				Flags:     detectFlags(),
				Action:    annotate,
			},
		},
	}
}

func detectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "max-n", Usage: "maximum detections per image (overrides detect.max_n_object)"},
		&cli.Float64Flag{Name: "min-score", Usage: "minimum score (overrides detect.min_score)"},
	}
}

// setup loads the configuration, applies flag overrides and builds the logger.
func setup(c *cli.Context) (config.Config, *zap.SugaredLogger, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, nil, err
		}
	}
	if v := c.String("model"); v != "" {
		cfg.Model.Path = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if c.IsSet("max-n") {
		cfg.Detect.MaxNObject = c.Int("max-n")
	}
	if c.IsSet("min-score") {
		cfg.Detect.MinScore = float32(c.Float64("min-score"))
	}
	if c.IsSet("address") {
		cfg.Server.Address = c.String("address")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	logger, err := logging.NewLogger("detect", cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

func newDetector(cfg config.Config, logger *zap.SugaredLogger) (*detector.Detector, error) {
	if cfg.Model.Path == "" {
		return nil, errors.New("no model configured: set model.path or pass --model")
	}
	m, err := onnx.NewSSDModel(cfg.ONNX(), logger.Named("onnx"))
	if err != nil {
		return nil, err
	}
	d, err := detector.New(m, logger.Named("detector"), cfg.DetectorOptions()...)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return d, nil
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	d, err := newDetector(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	s, err := server.New(server.Config{
		Address:      cfg.Server.Address,
		CORSOrigins:  cfg.Server.CORSOrigins,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Thickness:    cfg.Render.Thickness,
		Fonts:        cfg.Fonts(),
	}, d, logger.Named("server"))
	if err != nil {
		return err
	}
	return s.Run(c.Context)
}

type detectLine struct {
	Path string `json:"path"`
	*model.RawOutput
}

func detect(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowSubcommandHelp(c)
	}
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	files, err := util.ResolveInputs(c.Args().Slice())
	if err != nil {
		return err
	}

	d, err := newDetector(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	enc := json.NewEncoder(c.App.Writer)
	for _, f := range files {
		img, err := images.Load(f.Path)
		if err != nil {
			return err
		}
		set, err := d.Detect(c.Context, img)
		if err != nil {
			return errors.Wrapf(err, "detect %s", f.Path)
		}
		if err := enc.Encode(detectLine{Path: f.Path, RawOutput: model.FromDetections(set)}); err != nil {
			return err
		}
	}
	return nil
}

func annotate(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.ShowSubcommandHelp(c)
	}
	in, out := c.Args().Get(0), c.Args().Get(1)

	outFormat, err := images.FormatFromPath(out)
	if err != nil {
		return err
	}

	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	img, err := images.Load(in)
	if err != nil {
		return err
	}

	d, err := newDetector(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	set, err := d.Detect(c.Context, img)
	if err != nil {
		return errors.Wrapf(err, "detect %s", in)
	}

	annotated, annotateErr := render.Annotate(img.Pixels, set, cfg.Fonts(), cfg.Render.Thickness)
	if annotateErr != nil {
		logger.Warnw("labels missing from annotated image", "error", annotateErr)
	}

	w, err := os.Create(out)
	if err != nil {
		return errors.Wrapf(err, "create %s", out)
	}
	if err := images.Encode(w, annotated, outFormat); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "encode %s", out)
	}
	if err := w.Close(); err != nil {
		return err
	}

	logger.Infow("annotated", "input", in, "output", out, "detections", len(set))
	return annotateErr
}
