package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/driftml/lattice/internal/logging"
	"github.com/driftml/lattice/pkg/domain"
	"github.com/driftml/lattice/pkg/ports"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Engine defines the interface for the lattice search core.
type Engine interface {
	Decode(ctx context.Context, numSteps int) (*domain.Run, error)
	DecodeConstrained(ctx context.Context, numSteps int, constraint []int) (*domain.Run, error)
	Table() *domain.Table
}

// Server exposes the engine and run store as a JSON API.
type Server struct {
	engine   Engine
	store    ports.RunStore
	logger   *slog.Logger
	registry *prometheus.Registry
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger for request handling.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsRegistry exposes the given registry on /metrics.
func WithMetricsRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// NewHandler creates the HTTP handler for the engine. The embedded
// OpenAPI document is parsed and validated up front so a broken contract
// fails at startup, not at request time.
func NewHandler(engine Engine, store ports.RunStore, opts ...Option) (http.Handler, error) {
	s := &Server{
		engine: engine,
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
		r.Delete("/runs/{runID}", s.handleDeleteRun)
	})
	return enableCORS(r), nil
}

type searchRequest struct {
	NumSteps   int   `json:"num_steps"`
	Constraint []int `json:"constraint,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.NumSteps <= 0 {
		s.writeError(w, http.StatusBadRequest, "num_steps must be positive")
		return
	}

	var (
		run *domain.Run
		err error
	)
	if len(req.Constraint) > 0 {
		run, err = s.engine.DecodeConstrained(r.Context(), req.NumSteps, req.Constraint)
	} else {
		run, err = s.engine.Decode(r.Context(), req.NumSteps)
	}
	if err != nil {
		s.logger.Error("search failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	if err := s.store.Save(r.Context(), run); err != nil {
		s.logger.Error("failed to persist run", "run_id", run.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to persist run")
		return
	}

	s.logger.Info("search complete", "run_id", run.ID, "num_steps", req.NumSteps)
	s.writeJSON(w, http.StatusCreated, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"runs": ids})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")
	run, err := s.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, "run not found")
			return
		}
		s.logger.Error("failed to load run", "run_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.logger.Error("failed to delete run", "run_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete run")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"table":  s.engine.Table().Name(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
