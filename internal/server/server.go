// Package server exposes the watermark service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	watermark "github.com/yyyoichi/aethertag"
	"github.com/yyyoichi/aethertag/frame"
	"github.com/yyyoichi/aethertag/internal/auth"
	"github.com/yyyoichi/aethertag/internal/imagecodec"
	"github.com/yyyoichi/aethertag/payload"
)

const (
	APIKeyHeader  = "x-api-key"
	TraceIDHeader = "X-Aether-Trace-Id"

	imageField    = "image"
	metadataField = "metadata"
)

type Server struct {
	wm        *watermark.Watermark
	auth      auth.Authenticator
	maxUpload int64
	logger    *slog.Logger
	health    func(context.Context) error
}

type Option func(*Server)

// WithHealthCheck makes /healthz report 503 while check fails.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(s *Server) {
		s.health = check
	}
}

func New(wm *watermark.Watermark, authn auth.Authenticator, maxUpload int64, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		wm:        wm,
		auth:      authn,
		maxUpload: maxUpload,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/v1/inject", s.handleInject).Methods(http.MethodPost)
	r.HandleFunc("/v1/detect", s.handleDetect).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Use(s.logRequests)
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type detectResponse struct {
	Detected         bool     `json:"detected"`
	Signature        string   `json:"signature,omitempty"`
	Timestamp        *int64   `json:"timestamp,omitempty"`
	Meta             string   `json:"meta,omitempty"`
	Kind             string   `json:"kind,omitempty"`
	Version          int      `json:"version,omitempty"`
	FilenameVerified bool     `json:"filenameVerified"`
	Registered       bool     `json:"registered"`
	Related          []string `json:"related,omitempty"`
}

func (s *Server) handleInject(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(APIKeyHeader)
	if key == "" {
		s.writeError(w, http.StatusUnauthorized, "Missing API Key")
		return
	}
	if !s.auth.Validate(key) {
		s.writeError(w, http.StatusUnauthorized, "Invalid API Key")
		return
	}

	data, filename, ok := s.readImage(w, r)
	if !ok {
		return
	}
	res, err := s.wm.Protect(r.Context(), data, r.FormValue(metadataField))
	switch {
	case err == nil:
	case errors.Is(err, watermark.ErrTooSmallImage):
		s.writeError(w, http.StatusBadRequest, "Payload too large for image dimensions")
		return
	case errors.Is(err, imagecodec.ErrTooManyPixels):
		s.writeError(w, http.StatusBadRequest, "Image dimensions too large")
		return
	case errors.Is(err, watermark.ErrDecode):
		s.writeError(w, http.StatusBadRequest, "Unsupported image format")
		return
	case errors.Is(err, payload.ErrDelimiterInMeta):
		s.writeError(w, http.StatusBadRequest, "Metadata contains a reserved delimiter")
		return
	default:
		s.logger.ErrorContext(r.Context(), "protect failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	w.Header().Set("Content-Type", imagecodec.ContentType)
	w.Header().Set(TraceIDHeader, res.ID)
	w.Header().Set("Content-Disposition", `attachment; filename="`+watermark.ProtectedName(filename)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Image)
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readImage(w, r)
	if !ok {
		return
	}
	d, err := s.wm.Detect(r.Context(), data, filename)
	if errors.Is(err, imagecodec.ErrTooManyPixels) {
		s.writeError(w, http.StatusBadRequest, "Image dimensions too large")
		return
	}
	if errors.Is(err, watermark.ErrDecode) {
		s.writeError(w, http.StatusBadRequest, "Unsupported image format")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "detect failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	s.writeJSON(w, http.StatusOK, newDetectResponse(d))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.WarnContext(r.Context(), "health check failed", "error", err)
			s.writeError(w, http.StatusServiceUnavailable, "Service Unavailable")
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// readImage parses the multipart body and returns the image field.
// On failure the error response is already written.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, "", false
		}
		s.writeError(w, http.StatusBadRequest, "No image file provided")
		return nil, "", false
	}
	file, header, err := r.FormFile(imageField)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "No image file provided")
		return nil, "", false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "No image file provided")
		return nil, "", false
	}
	return data, header.Filename, true
}

func newDetectResponse(d *watermark.Detection) detectResponse {
	resp := detectResponse{
		Detected:         d.Detected,
		FilenameVerified: d.FilenameVerified,
		Registered:       d.Registered,
	}
	if !d.Detected {
		return resp
	}
	resp.Signature = d.Signature()
	resp.Meta = d.Meta()
	resp.Kind = d.Payload.Kind.String()
	resp.Version = frame.Version
	resp.Related = d.Related
	if ts, ok := d.Timestamp(); ok {
		ms := ts.UnixMilli()
		resp.Timestamp = &ms
	}
	return resp
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
