package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// InsertProject creates a project row.
func (s *Store) InsertProject(ctx context.Context, project Project) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialised")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, product_name, product_website) VALUES (?, ?, ?, ?)`,
		project.ID, project.Name, project.ProductName, project.ProductWebsite)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// InsertCompetitor creates a competitor row attached to a project.
func (s *Store) InsertCompetitor(ctx context.Context, competitor Competitor) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialised")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO competitors (id, project_id, name, website) VALUES (?, ?, ?, ?)`,
		competitor.ID, competitor.ProjectID, competitor.Name, competitor.Website)
	if err != nil {
		return fmt.Errorf("insert competitor: %w", err)
	}
	return nil
}

// InsertSnapshot records a captured website snapshot for a competitor.
func (s *Store) InsertSnapshot(ctx context.Context, snapshot Snapshot) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialised")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (competitor_id, content, captured_at) VALUES (?, ?, ?)`,
		snapshot.CompetitorID, snapshot.Content, snapshot.CapturedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// GetProject retrieves a project by identifier. sql.ErrNoRows is returned
// unwrapped so callers can map it to a not-found condition.
func (s *Store) GetProject(ctx context.Context, projectID string) (*Project, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project id required")
	}
	var project Project
	if err := s.db.GetContext(ctx, &project, `SELECT * FROM projects WHERE id = ?`, projectID); err != nil {
		return nil, err
	}
	return &project, nil
}

// CompetitorsForProject lists a project's competitors ordered by name.
func (s *Store) CompetitorsForProject(ctx context.Context, projectID string) ([]Competitor, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	competitors := []Competitor{}
	if err := s.db.SelectContext(ctx, &competitors,
		`SELECT * FROM competitors WHERE project_id = ? ORDER BY name`, projectID); err != nil {
		return nil, fmt.Errorf("select competitors: %w", err)
	}
	return competitors, nil
}

// SnapshotsForCompetitor returns the most recent snapshots for a competitor,
// newest first, bounded by limit when positive.
func (s *Store) SnapshotsForCompetitor(ctx context.Context, competitorID string, limit int) ([]Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	query := `SELECT * FROM snapshots WHERE competitor_id = ? ORDER BY captured_at DESC`
	args := []interface{}{competitorID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	snapshots := []Snapshot{}
	if err := s.db.SelectContext(ctx, &snapshots, query, args...); err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	return snapshots, nil
}

// InsertReportWithVersion writes the report row and its first version as one
// transaction. The report row must exist before the version row references it.
func (s *Store) InsertReportWithVersion(ctx context.Context, report ReportRow, versionContent string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialised")
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin report tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO reports (id, project_id, title, status, report_type, is_initial, analysis_method,
                        correlation_id, completeness_score, data_freshness, competitor_snapshots_captured)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.ProjectID, report.Title, report.Status, report.ReportType, report.IsInitial,
		report.AnalysisMethod, report.CorrelationID, report.CompletenessScore, report.DataFreshness,
		report.CompetitorSnapshotsCaptured); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert report: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO report_versions (report_id, version, content) VALUES (?, 1, ?)`,
		report.ID, versionContent); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert report version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report tx: %w", err)
	}
	return nil
}

// GetReport retrieves a persisted report row by identifier.
func (s *Store) GetReport(ctx context.Context, reportID string) (*ReportRow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	var report ReportRow
	if err := s.db.GetContext(ctx, &report, `SELECT * FROM reports WHERE id = ?`, reportID); err != nil {
		return nil, err
	}
	return &report, nil
}

// LatestReportVersion returns the highest version row for a report.
func (s *Store) LatestReportVersion(ctx context.Context, reportID string) (*ReportVersion, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	var version ReportVersion
	if err := s.db.GetContext(ctx, &version,
		`SELECT * FROM report_versions WHERE report_id = ? ORDER BY version DESC LIMIT 1`, reportID); err != nil {
		return nil, err
	}
	return &version, nil
}

// ListReports returns report rows matching the filter, newest first.
func (s *Store) ListReports(ctx context.Context, filter ReportFilter) ([]ReportRow, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	builder := sq.Select("*").From("reports").OrderBy("created_at DESC", "id")
	if trimmed := strings.TrimSpace(filter.ProjectID); trimmed != "" {
		builder = builder.Where(sq.Eq{"project_id": trimmed})
	}
	if trimmed := strings.TrimSpace(filter.Status); trimmed != "" {
		builder = builder.Where(sq.Eq{"status": trimmed})
	}
	if trimmed := strings.TrimSpace(filter.AnalysisMethod); trimmed != "" {
		builder = builder.Where(sq.Eq{"analysis_method": trimmed})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build report query: %w", err)
	}
	reports := []ReportRow{}
	if err := s.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	return reports, nil
}

// ProjectSummaries lists all projects with their persisted report counts.
func (s *Store) ProjectSummaries(ctx context.Context) ([]ProjectSummary, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	summaries := []ProjectSummary{}
	if err := s.db.SelectContext(ctx, &summaries,
		`SELECT p.*, COUNT(r.id) AS reports
                FROM projects p
                LEFT JOIN reports r ON r.project_id = p.id
                GROUP BY p.id
                ORDER BY p.name`); err != nil {
		return nil, fmt.Errorf("select project summaries: %w", err)
	}
	return summaries, nil
}
