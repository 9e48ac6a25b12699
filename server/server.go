// Package server - HTTP endpoints for detection and annotation.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detect/detector"
	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/nvr-ai/go-detect/render"
)

// Detector finds objects in a single image.
type Detector interface {
	Detect(ctx context.Context, img images.Image, opts ...detector.Option) (postprocess.DetectionSet, error)
}

// Config for the HTTP server.
type Config struct {
	Address      string
	CORSOrigins  []string
	MaxBodyBytes int64
	Thickness    int
	Fonts        render.FontSource
}

// Server serves the detection endpoints.
type Server struct {
	config   Config
	detector Detector
	logger   *zap.SugaredLogger
	handler  http.Handler
}

// New wires the routes.
//
//	POST /detect_objects   image body -> JSON detection arrays
//	POST /annotated_image  image body -> annotated image in the same format
//	GET  /health
func New(config Config, det Detector, logger *zap.SugaredLogger) (*Server, error) {
	if det == nil {
		return nil, errors.New("detector is required")
	}
	if config.Fonts == nil {
		return nil, errors.New("font source is required")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 32 << 20
	}

	s := &Server{config: config, detector: det, logger: logger}

	router := mux.NewRouter()
	router.HandleFunc("/detect_objects", s.handleDetect).Methods(http.MethodPost)
	router.HandleFunc("/annotated_image", s.handleAnnotate).Methods(http.MethodPost)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = c.Handler(router)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is done, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Infow("listening", "address", s.config.Address)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	img, set, ok := s.detect(w, r)
	if !ok {
		return
	}
	s.logger.Debugw("detect_objects", "format", img.Format, "detections", len(set))
	writeJSON(w, http.StatusOK, model.FromDetections(set))
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	img, set, ok := s.detect(w, r)
	if !ok {
		return
	}

	out, err := render.Annotate(img.Pixels, set, s.config.Fonts, s.config.Thickness)
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", img.Format.ContentType())
	w.WriteHeader(http.StatusOK)
	if err := images.Encode(w, out, img.Format); err != nil {
		s.logger.Warnw("failed to write annotated image", "error", err)
	}
}

// detect reads the request image and options and runs the detector. On failure
// the response has already been written.
func (s *Server) detect(w http.ResponseWriter, r *http.Request) (images.Image, postprocess.DetectionSet, bool) {
	opts, err := queryOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return images.Image{}, nil, false
	}

	format, err := images.FormatFromContentType(r.Header.Get("Content-Type"))
	if err != nil {
		s.fail(w, err)
		return images.Image{}, nil, false
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
		} else {
			writeError(w, http.StatusBadRequest, err)
		}
		return images.Image{}, nil, false
	}

	img, err := images.Decode(data, format)
	if err != nil {
		if errors.Is(err, images.ErrUnsupportedFormat) {
			s.fail(w, err)
		} else {
			writeError(w, http.StatusBadRequest, err)
		}
		return images.Image{}, nil, false
	}

	set, err := s.detector.Detect(r.Context(), img, opts...)
	if err != nil {
		s.fail(w, err)
		return images.Image{}, nil, false
	}
	return img, set, true
}

// queryOptions reads the optional max_n and min_score parameters.
func queryOptions(r *http.Request) ([]detector.Option, error) {
	var opts []detector.Option
	q := r.URL.Query()
	if v := q.Get("max_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid max_n %q", v)
		}
		opts = append(opts, detector.WithMaxObjects(n))
	}
	if v := q.Get("min_score"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid min_score %q", v)
		}
		opts = append(opts, detector.WithMinScore(float32(f)))
	}
	return opts, nil
}

// fail maps a domain error onto a status code.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, images.ErrUnsupportedFormat):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, model.ErrMalformedOutput):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		s.logger.Errorw("request failed", "status", status, "error", err)
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
