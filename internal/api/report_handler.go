package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/marketlens/marketlens/internal/artifact"
	"github.com/marketlens/marketlens/internal/report"
	"github.com/marketlens/marketlens/internal/sqlite"
)

func (s *Server) handleInitialReport(w http.ResponseWriter, r *http.Request) {
	var req report.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp := s.reports.GenerateInitialReport(r.Context(), req)
	writeJSON(w, statusForResponse(resp), resp)
}

// statusForResponse maps the pipeline outcome onto an HTTP status. Callers
// are expected to branch on the body's status field; the HTTP code is a
// convenience mirror.
func statusForResponse(resp *report.Response) int {
	if resp == nil {
		return http.StatusInternalServerError
	}
	if resp.Success {
		return http.StatusOK
	}
	switch {
	case strings.Contains(resp.Error, "required"):
		return http.StatusBadRequest
	case strings.Contains(resp.Error, "not found"):
		return http.StatusNotFound
	case strings.Contains(resp.Error, "unavailable"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	filter := sqlite.ReportFilter{
		ProjectID:      strings.TrimSpace(r.URL.Query().Get("project_id")),
		Status:         strings.TrimSpace(r.URL.Query().Get("status")),
		AnalysisMethod: strings.TrimSpace(r.URL.Query().Get("analysis_method")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		filter.Limit = parsed
	}
	reports, err := s.store.ListReports(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("list reports: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	reportID := strings.TrimSpace(chi.URLParam(r, "reportID"))
	if reportID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("report id required"))
		return
	}
	row, err := s.store.GetReport(r.Context(), reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, fmt.Errorf("report %s not found", reportID))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	version, err := s.store.LatestReportVersion(r.Context(), reportID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	payload := map[string]interface{}{"report": row}
	if version != nil {
		payload["version"] = version
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	reportID := strings.TrimSpace(chi.URLParam(r, "reportID"))
	if reportID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("report id required"))
		return
	}
	if s.artifacts == nil {
		writeError(w, http.StatusNotFound, artifact.ErrNotFound)
		return
	}
	path, err := s.artifacts.MarkdownPath(reportID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, artifact.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, artifact.ErrInvalid):
			status = http.StatusForbidden
		}
		writeError(w, status, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
