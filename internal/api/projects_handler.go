package api

import (
	"fmt"
	"net/http"
)

type projectSummary struct {
	ID             string `json:"project_id"`
	Name           string `json:"name"`
	ProductName    string `json:"product_name"`
	ProductWebsite string `json:"product_website,omitempty"`
	Reports        int    `json:"reports"`
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ProjectSummaries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("list projects: %w", err))
		return
	}
	out := make([]projectSummary, 0, len(summaries))
	for _, row := range summaries {
		out = append(out, projectSummary{
			ID:             row.ID,
			Name:           row.Name,
			ProductName:    row.ProductName,
			ProductWebsite: row.ProductWebsite,
			Reports:        row.Reports,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": out})
}
