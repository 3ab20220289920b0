package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aletheia-intel/aletheia/internal/memory"
	"github.com/aletheia-intel/aletheia/internal/metrics"
	"github.com/aletheia-intel/aletheia/models"
)

type stubRunner struct {
	report *models.Report
	err    error
	gotDir string
}

func (r *stubRunner) Run(_ context.Context, directive string) (*models.Report, error) {
	r.gotDir = directive
	return r.report, r.err
}

type stubReports struct {
	reports []*models.Report
	err     error
}

func (s *stubReports) ListReports(_ context.Context, limit int) ([]*models.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.reports) {
		return s.reports[:limit], nil
	}
	return s.reports, nil
}

func (s *stubReports) GetReport(_ context.Context, id string) (*models.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, r := range s.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("report %s: %w", id, memory.ErrReportNotFound)
}

func sampleReport(id string) *models.Report {
	return &models.Report{
		ID:         id,
		Title:      "Weekly Macro Review",
		Directive:  "review macro conditions",
		Content:    "## Executive Summary\nSteady.",
		ReportType: "market_analysis",
		CreatedAt:  time.Now().UTC(),
	}
}

func newTestServer(runner Runner, reports ReportStore, checks map[string]HealthCheck) *Server {
	return New(":0", runner, reports, checks, metrics.NewRegistry())
}

func TestAnalyzeEndpoint(t *testing.T) {
	runner := &stubRunner{report: sampleReport("r-1")}
	srv := newTestServer(runner, nil, nil)

	body := strings.NewReader(`{"directive": "assess chip sector"}`)
	req := httptest.NewRequest("POST", "/api/v1/analyze", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "assess chip sector", runner.gotDir)

	var got models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "r-1", got.ID)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	srv := newTestServer(&stubRunner{}, nil, nil)

	for name, body := range map[string]string{
		"empty directive": `{"directive": "  "}`,
		"not json":        `directive=x`,
	} {
		req := httptest.NewRequest("POST", "/api/v1/analyze", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestAnalyzeRunnerFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("model offline")}
	srv := newTestServer(runner, nil, nil)

	req := httptest.NewRequest("POST", "/api/v1/analyze", strings.NewReader(`{"directive": "x"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "model offline")
}

func TestListReports(t *testing.T) {
	store := &stubReports{reports: []*models.Report{sampleReport("a"), sampleReport("b")}}
	srv := newTestServer(&stubRunner{}, store, nil)

	req := httptest.NewRequest("GET", "/api/v1/reports?limit=1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Reports []*models.Report `json:"reports"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "a", resp.Reports[0].ID)
}

func TestListReportsBadLimit(t *testing.T) {
	srv := newTestServer(&stubRunner{}, &stubReports{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/reports?limit=zero", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReport(t *testing.T) {
	store := &stubReports{reports: []*models.Report{sampleReport("r-42")}}
	srv := newTestServer(&stubRunner{}, store, nil)

	req := httptest.NewRequest("GET", "/api/v1/reports/r-42", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("GET", "/api/v1/reports/missing", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportsWithoutStore(t *testing.T) {
	srv := newTestServer(&stubRunner{}, nil, nil)

	req := httptest.NewRequest("GET", "/api/v1/reports", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	checks := map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}
	srv := newTestServer(&stubRunner{}, nil, checks)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "ok", resp.Services["postgres"])
	assert.Contains(t, resp.Services["redis"], "connection refused")
}

func TestHealthAllGood(t *testing.T) {
	checks := map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	}
	srv := newTestServer(&stubRunner{}, nil, checks)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&stubRunner{report: sampleReport("m")}, nil, nil)

	// An analysis run populates the counters first.
	req := httptest.NewRequest("POST", "/api/v1/analyze", strings.NewReader(`{"directive": "x"}`))
	srv.Router().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aletheia_analysis_runs_total")
}

func TestUnknownEndpoint(t *testing.T) {
	srv := newTestServer(&stubRunner{}, nil, nil)

	req := httptest.NewRequest("GET", "/nope", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
