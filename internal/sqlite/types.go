package sqlite

import "time"

type Project struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	ProductName    string    `db:"product_name"`
	ProductWebsite string    `db:"product_website"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type Competitor struct {
	ID        string    `db:"id"`
	ProjectID string    `db:"project_id"`
	Name      string    `db:"name"`
	Website   string    `db:"website"`
	CreatedAt time.Time `db:"created_at"`
}

type Snapshot struct {
	ID           int64     `db:"id"`
	CompetitorID string    `db:"competitor_id"`
	Content      string    `db:"content"`
	CapturedAt   time.Time `db:"captured_at"`
}

type ReportRow struct {
	ID                          string    `db:"id"`
	ProjectID                   string    `db:"project_id"`
	Title                       string    `db:"title"`
	Status                      string    `db:"status"`
	ReportType                  string    `db:"report_type"`
	IsInitial                   bool      `db:"is_initial"`
	AnalysisMethod              string    `db:"analysis_method"`
	CorrelationID               string    `db:"correlation_id"`
	CompletenessScore           int       `db:"completeness_score"`
	DataFreshness               string    `db:"data_freshness"`
	CompetitorSnapshotsCaptured int       `db:"competitor_snapshots_captured"`
	CreatedAt                   time.Time `db:"created_at"`
}

type ReportVersion struct {
	ID        int64     `db:"id"`
	ReportID  string    `db:"report_id"`
	Version   int       `db:"version"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// ReportFilter narrows ListReports results. Zero-valued fields are ignored.
type ReportFilter struct {
	ProjectID      string
	Status         string
	AnalysisMethod string
	Limit          int
}

// ProjectSummary pairs a project with its persisted report count.
type ProjectSummary struct {
	Project
	Reports int `db:"reports"`
}
