// Package server exposes the analysis pipeline over HTTP: submit a
// directive, list and fetch reports, plus health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/aletheia-intel/aletheia/internal/memory"
	"github.com/aletheia-intel/aletheia/internal/metrics"
	"github.com/aletheia-intel/aletheia/models"
)

// Runner executes one directive end to end.
type Runner interface {
	Run(ctx context.Context, directive string) (*models.Report, error)
}

// ReportStore is the slice of the relational store the API reads from.
type ReportStore interface {
	ListReports(ctx context.Context, limit int) ([]*models.Report, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)
}

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

// analyzeTimeout bounds one full pipeline run. Collection and several
// LLM passes make these runs minutes long, not seconds.
const analyzeTimeout = 15 * time.Minute

// Server is the HTTP front of the service.
type Server struct {
	router  *mux.Router
	server  *http.Server
	runner  Runner
	reports ReportStore
	checks  map[string]HealthCheck
	metrics *metrics.Registry
}

// New wires the router. Runner is required; reports, checks and metrics
// may be nil and their endpoints degrade accordingly.
func New(addr string, runner Runner, reports ReportStore, checks map[string]HealthCheck, reg *metrics.Registry) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		runner:  runner,
		reports: reports,
		checks:  checks,
		metrics: reg,
	}
	s.routes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: analyzeTimeout + time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/analyze", s.handleAnalyze).Methods("POST")
	api.HandleFunc("/reports", s.handleListReports).Methods("GET")
	api.HandleFunc("/reports/{id}", s.handleGetReport).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "no such endpoint")
	})
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("http server shutting down")
	return s.server.Shutdown(ctx)
}

type analyzeRequest struct {
	Directive string `json:"directive"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Directive = strings.TrimSpace(req.Directive)
	if req.Directive == "" {
		s.writeError(w, http.StatusBadRequest, "directive is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), analyzeTimeout)
	defer cancel()

	started := time.Now()
	if s.metrics != nil {
		s.metrics.ActiveRuns.Inc()
		defer s.metrics.ActiveRuns.Dec()
	}

	report, err := s.runner.Run(ctx, req.Directive)
	if s.metrics != nil {
		s.metrics.ObserveRun(started, err)
	}
	if err != nil {
		log.Error().Err(err).Str("directive", req.Directive).Msg("analysis request failed")
		s.writeError(w, http.StatusInternalServerError, "analysis failed: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.writeError(w, http.StatusServiceUnavailable, "report store not configured")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	reports, err := s.reports.ListReports(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list reports failed")
		s.writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.writeError(w, http.StatusServiceUnavailable, "report store not configured")
		return
	}

	id := mux.Vars(r)["id"]
	report, err := s.reports.GetReport(r.Context(), id)
	if errors.Is(err, memory.ErrReportNotFound) {
		s.writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("report_id", id).Msg("get report failed")
		s.writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	services := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			services[name] = err.Error()
			status = "degraded"
			continue
		}
		services[name] = "ok"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"services":  services,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()[:8]
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
