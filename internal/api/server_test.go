package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marketlens/marketlens/internal/artifact"
	"github.com/marketlens/marketlens/internal/report"
	"github.com/marketlens/marketlens/internal/sqlite"
)

type stubReportService struct {
	lastRequest report.Request
	response    *report.Response
}

func (s *stubReportService) GenerateInitialReport(ctx context.Context, req report.Request) *report.Response {
	s.lastRequest = req
	return s.response
}

func newTestServer(t *testing.T, svc ReportService) (*Server, *sqlite.Store, *artifact.Store) {
	t.Helper()
	store, err := sqlite.OpenWithConfig(sqlite.Config{
		Path:         filepath.Join(t.TempDir(), "workspace.db"),
		MaxOpenConns: 2,
		MaxIdleConns: 2,
		BusyTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	artifacts, err := artifact.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("artifact store: %v", err)
	}
	srv, err := NewServer(svc, store, artifacts)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, store, artifacts
}

func TestHandleInitialReportSuccess(t *testing.T) {
	svc := &stubReportService{response: &report.Response{
		Success: true,
		Status:  report.StatusCompleted,
		Report: &report.Report{
			ID: "rep-1", Title: "t", Content: "# body", Format: "markdown",
			Metadata: report.Metadata{ProjectID: "P1", AnalysisMethod: report.AnalysisAIPowered},
		},
	}}
	srv, _, _ := newTestServer(t, svc)

	body := `{"projectId":"P1","taskId":"task-1","options":{"fallbackToPartialData":true}}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/reports/initial", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastRequest.ProjectID != "P1" || svc.lastRequest.TaskID != "task-1" {
		t.Fatalf("request not decoded: %+v", svc.lastRequest)
	}
	if !svc.lastRequest.Options.FallbackToPartialData {
		t.Fatalf("fallback option not decoded")
	}
	var resp report.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Status != report.StatusCompleted || resp.Report == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleInitialReportStatusMapping(t *testing.T) {
	cases := []struct {
		name  string
		errMsg string
		want  int
	}{
		{"validation", "Project ID is required", http.StatusBadRequest},
		{"not found", "project P9 not found", http.StatusNotFound},
		{"ai unavailable", "AI analysis service unavailable: missing credentials", http.StatusServiceUnavailable},
		{"other", "persist report: disk full", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := &stubReportService{response: &report.Response{
			Success: false, Status: report.StatusFailed, Error: tc.errMsg,
		}}
		srv, _, _ := newTestServer(t, svc)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/reports/initial",
			strings.NewReader(`{"projectId":"x"}`)))
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
		var resp report.Response
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if resp.Status != report.StatusFailed {
			t.Fatalf("%s: body must carry failed status, got %q", tc.name, resp.Status)
		}
	}
}

func TestHandleListAndGetReports(t *testing.T) {
	svc := &stubReportService{response: &report.Response{Success: true, Status: report.StatusCompleted}}
	srv, store, _ := newTestServer(t, svc)
	ctx := context.Background()

	if err := store.InsertProject(ctx, sqlite.Project{ID: "P1", Name: "Acme", ProductName: "Acme Analytics"}); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	row := sqlite.ReportRow{
		ID: "rep-1", ProjectID: "P1", Title: "t", Status: "COMPLETED",
		ReportType: "INITIAL_COMPARATIVE", IsInitial: true,
		AnalysisMethod: "rule_based", CorrelationID: "c1", DataFreshness: "CURRENT",
	}
	if err := store.InsertReportWithVersion(ctx, row, `{"title":"t","content":"b"}`); err != nil {
		t.Fatalf("insert report: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports?project_id=P1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "rep-1") {
		t.Fatalf("list body missing report: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/rep-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"version":1`) {
		t.Fatalf("get body missing version: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/absent", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing report: expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/projects", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("projects: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"reports":1`) {
		t.Fatalf("projects body missing count: %s", rec.Body.String())
	}
}

func TestHandleDownloadReport(t *testing.T) {
	svc := &stubReportService{response: &report.Response{Success: true}}
	srv, _, artifacts := newTestServer(t, svc)

	if _, err := artifacts.WriteMarkdown("rep-1", []byte("# Report")); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/rep-1/download", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "# Report") {
		t.Fatalf("download body mismatch: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reports/absent/download", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing artifact: expected 404, got %d", rec.Code)
	}
}
