package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/marketlens/marketlens/internal/artifact"
	"github.com/marketlens/marketlens/internal/common"
	"github.com/marketlens/marketlens/internal/report"
	"github.com/marketlens/marketlens/internal/sqlite"
)

// ReportService is the inbound contract of the generation pipeline.
type ReportService interface {
	GenerateInitialReport(ctx context.Context, req report.Request) *report.Response
}

type Server struct {
	router    chi.Router
	reports   ReportService
	store     *sqlite.Store
	artifacts *artifact.Store
}

func NewServer(reports ReportService, store *sqlite.Store, artifacts *artifact.Store) (*Server, error) {
	if reports == nil {
		return nil, fmt.Errorf("report service required")
	}
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	srv := &Server{
		router:    chi.NewRouter(),
		reports:   reports,
		store:     store,
		artifacts: artifacts,
	}
	srv.routes()
	common.Logger().Info("api: server ready")
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Post("/v1/reports/initial", s.handleInitialReport)
	s.router.Get("/v1/reports", s.handleListReports)
	s.router.Get("/v1/reports/{reportID}", s.handleGetReport)
	s.router.Get("/v1/reports/{reportID}/download", s.handleDownloadReport)
	s.router.Get("/v1/projects", s.handleProjects)
	s.router.Get("/v1/logs", s.handleLogs)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": common.LogEntries()})
}
