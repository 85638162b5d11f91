// Package server exposes sprite generation and palette management over HTTP.
//
// The API is deliberately small:
//
//	POST   /v1/sprites        generate a sprite, respond with PNG
//	GET    /v1/palettes       list registered palettes
//	POST   /v1/palettes       import custom palettes (registry record format)
//	DELETE /v1/palettes/{id}  remove a custom palette
//	GET    /healthz           liveness probe
//
// Generation runs through the same Runner as the CLI, so a request with a
// given seed and options returns byte-identical pixels in both.
package server

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pixelmill/pixelmill/pkg/errors"
	"github.com/pixelmill/pixelmill/pkg/palette"
	"github.com/pixelmill/pixelmill/pkg/params"
	"github.com/pixelmill/pixelmill/pkg/pipeline"
	"github.com/pixelmill/pixelmill/pkg/retro"
	"github.com/pixelmill/pixelmill/pkg/sprites"
	"github.com/pixelmill/pixelmill/pkg/store"
)

const (
	// maxScale bounds the nearest-neighbor upscale factor per request.
	maxScale = 16

	shutdownTimeout = 10 * time.Second
)

// Config holds server construction options.
type Config struct {
	Addr     string
	Registry *palette.Registry
	Runner   *pipeline.Runner
	Store    store.Store
	Logger   *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg    Config
	router chi.Router
	http   *http.Server
}

// New builds a server. Nil config fields get working defaults; a nil Store
// disables palette persistence but keeps the API functional.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Registry == nil {
		cfg.Registry = palette.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(cfg.Registry, nil, cfg.Logger)
	}

	s := &Server{cfg: cfg}
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/sprites", s.handleGenerate)
		r.Get("/palettes", s.handleListPalettes)
		r.Post("/palettes", s.handleImportPalettes)
		r.Delete("/palettes/{id}", s.handleDeletePalette)
	})

	s.router = r
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Serve runs the listener until ctx is canceled, then drains in-flight
// requests before returning.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	s.cfg.Logger.Info("server listening", "addr", s.cfg.Addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutCtx)
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey string

const requestIDKey ctxKey = "request_id"

// requestID assigns a UUID to every request and echoes it in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.cfg.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", r.Context().Value(requestIDKey))
	})
}

// =============================================================================
// Handlers
// =============================================================================

// generateRequest is the JSON body of POST /v1/sprites. It mirrors
// pipeline.Options with an open parameter table and an optional integer
// upscale factor for the returned PNG.
type generateRequest struct {
	Archetype string `json:"archetype"`
	Seed      uint32 `json:"seed"`
	Size      int    `json:"size,omitempty"`
	Palette   string `json:"palette,omitempty"`

	Dither    string `json:"dither,omitempty"`
	Quantizer string `json:"quantizer,omitempty"`
	Outline   int    `json:"outline,omitempty"`
	Jitter    bool   `json:"jitter,omitempty"`

	Guard bool `json:"guard,omitempty"`
	Scale int  `json:"scale,omitempty"`

	Params map[string]any `json:"params,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing request body"))
		return
	}
	if req.Scale < 0 || req.Scale > maxScale {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "scale %d out of range (0-%d)", req.Scale, maxScale))
		return
	}

	gen, err := sprites.New(req.Archetype)
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts := pipeline.Options{
		Archetype: req.Archetype,
		Seed:      req.Seed,
		Size:      req.Size,
		PaletteID: req.Palette,
		Dither:    retro.DitherMode(req.Dither),
		Quantizer: retro.QuantMode(req.Quantizer),
		Outline:   req.Outline,
		Jitter:    req.Jitter,
		UseGuard:  req.Guard,
		Logger:    s.cfg.Logger,
	}
	if len(req.Params) > 0 {
		opts.Params = make(params.Map, len(req.Params))
		for key, raw := range req.Params {
			switch v := raw.(type) {
			case float64:
				opts.Params[key] = params.Number(v)
			case bool:
				opts.Params[key] = params.Bool(v)
			case string:
				opts.Params[key] = params.Enum(v)
			default:
				s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "param %q has unsupported type", key))
				return
			}
		}
	}

	result, err := s.cfg.Runner.Generate(r.Context(), gen, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Run-Id", result.RunID.String())
	w.Header().Set("X-Attempts", strconv.Itoa(result.Attempts))
	if !result.Distinct {
		w.Header().Set("X-Distinct", "false")
	}
	if req.Scale > 1 {
		err = png.Encode(w, result.Buffer.Scale(req.Scale))
	} else {
		err = result.Buffer.EncodePNG(w)
	}
	if err != nil {
		s.cfg.Logger.Error("encoding response", "error", err)
	}
}

// paletteInfo is one entry of the GET /v1/palettes listing.
type paletteInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Colors  int    `json:"colors"`
	Builtin bool   `json:"builtin"`
}

func (s *Server) handleListPalettes(w http.ResponseWriter, _ *http.Request) {
	reg := s.cfg.Registry
	out := make([]paletteInfo, 0)
	for _, id := range reg.IDs() {
		p, _ := reg.Get(id)
		out = append(out, paletteInfo{
			ID:      id,
			Name:    p.Name,
			Colors:  len(p.Colors),
			Builtin: reg.IsBuiltin(id),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleImportPalettes(w http.ResponseWriter, r *http.Request) {
	var records map[string]palette.Record
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing palette records"))
		return
	}

	accepted, ok := s.cfg.Registry.ImportCustom(records)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeImportEmpty, "no palette record was accepted"))
		return
	}
	if s.cfg.Store != nil {
		if err := store.Flush(r.Context(), s.cfg.Store, s.cfg.Registry); err != nil {
			s.cfg.Logger.Error("persisting palettes", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"accepted": accepted})
}

func (s *Server) handleDeletePalette(w http.ResponseWriter, r *http.Request) {
	id := palette.SanitizeID(chi.URLParam(r, "id"))
	if s.cfg.Registry.IsBuiltin(id) {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "palette %q is builtin", id))
		return
	}
	if !s.cfg.Registry.Remove(id) {
		s.writeError(w, errors.New(errors.ErrCodePaletteNotFound, "palette not found: %q", id))
		return
	}
	if s.cfg.Store != nil {
		if err := store.Flush(r.Context(), s.cfg.Store, s.cfg.Registry); err != nil {
			s.cfg.Logger.Error("persisting palettes", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Response Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidArchetype,
		errors.ErrCodeInvalidPalette, errors.ErrCodeInvalidDither,
		errors.ErrCodeInvalidFormat, errors.ErrCodeImportEmpty:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodePaletteNotFound, errors.ErrCodePresetNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeUnsupported:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{
		"code":  string(code),
		"error": errors.UserMessage(err),
	})
}
