package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/marketlens/marketlens/internal/sqlite"
)

// ReportStore is the relational slice of persistence the pipeline needs.
// *sqlite.Store satisfies it.
type ReportStore interface {
	InsertReportWithVersion(ctx context.Context, report sqlite.ReportRow, versionContent string) error
}

// ArtifactWriter mirrors finished reports into a file content store.
type ArtifactWriter interface {
	WriteMarkdown(reportID string, body []byte) (string, error)
	WriteJSON(reportID string, payload []byte) (string, error)
}

// Persister records a generated report as one logical unit: the report row,
// its first version row, and a rendered file artifact. The database rows are
// the source of truth; artifact-write failures are logged and absorbed.
type Persister struct {
	store        ReportStore
	artifacts    ArtifactWriter
	markdownOnly bool
}

func NewPersister(store ReportStore, artifacts ArtifactWriter, markdownOnly bool) *Persister {
	return &Persister{store: store, artifacts: artifacts, markdownOnly: markdownOnly}
}

type versionPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Persist writes the report row and version row transactionally, then mirrors
// the rendered body to the artifact store.
func (p *Persister) Persist(ctx context.Context, logger *slog.Logger, rep *Report, snapshotsCaptured int) error {
	if p == nil || p.store == nil {
		return fmt.Errorf("persister not initialised")
	}
	if rep == nil {
		return fmt.Errorf("report required")
	}
	row := sqlite.ReportRow{
		ID:                          rep.ID,
		ProjectID:                   rep.Metadata.ProjectID,
		Title:                       rep.Title,
		Status:                      RowStatusCompleted,
		ReportType:                  TypeInitialComparative,
		IsInitial:                   true,
		AnalysisMethod:              rep.Metadata.AnalysisMethod,
		CorrelationID:               rep.Metadata.CorrelationID,
		CompletenessScore:           rep.Metadata.CompletenessScore,
		DataFreshness:               rep.Metadata.DataFreshness,
		CompetitorSnapshotsCaptured: snapshotsCaptured,
	}
	payload, err := json.Marshal(versionPayload{Title: rep.Title, Content: rep.Content})
	if err != nil {
		return fmt.Errorf("encode report version: %w", err)
	}
	if err := p.store.InsertReportWithVersion(ctx, row, string(payload)); err != nil {
		return err
	}
	logger.Info("report: persisted", "report_id", rep.ID, "project_id", rep.Metadata.ProjectID,
		"analysis_method", rep.Metadata.AnalysisMethod)

	if p.artifacts == nil {
		return nil
	}
	if _, err := p.artifacts.WriteMarkdown(rep.ID, []byte(rep.Content)); err != nil {
		logger.Warn("report: markdown artifact write failed", "report_id", rep.ID, "error", err)
	}
	if !p.markdownOnly {
		if mirror, err := json.Marshal(rep); err == nil {
			if _, err := p.artifacts.WriteJSON(rep.ID, mirror); err != nil {
				logger.Warn("report: json artifact write failed", "report_id", rep.ID, "error", err)
			}
		}
	}
	return nil
}
