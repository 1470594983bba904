package report

import (
	"context"
	"errors"
	"time"

	"github.com/marketlens/marketlens/internal/llm"
)

// Analysis methods recorded in report metadata.
const (
	AnalysisAIPowered = "ai_powered"
	AnalysisRuleBased = "rule_based"
)

// Data freshness classifications for the snapshots backing a report.
const (
	FreshnessCurrent = "CURRENT"
	FreshnessMixed   = "MIXED"
	FreshnessStale   = "STALE"
)

// Response statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Persisted report row constants.
const (
	RowStatusCompleted     = "COMPLETED"
	TypeInitialComparative = "INITIAL_COMPARATIVE"
)

var (
	// ErrProjectNotFound is returned by a DataCollector when the project does
	// not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrAITimeout indicates the AI call exceeded its wall-clock budget.
	ErrAITimeout = errors.New("ai analysis timed out")
)

// Request identifies one unit of report-generation work.
type Request struct {
	ProjectID string  `json:"projectId"`
	TaskID    string  `json:"taskId,omitempty"`
	Options   Options `json:"options"`
}

type Options struct {
	FallbackToPartialData bool `json:"fallbackToPartialData"`
}

// ProjectSnapshot is the aggregated view of a project's collected data,
// produced by a DataCollector.
type ProjectSnapshot struct {
	Product           Product      `json:"product"`
	Competitors       []Competitor `json:"competitors"`
	CompletenessScore int          `json:"dataCompletenessScore"`
	Freshness         string       `json:"dataFreshness"`
}

type Product struct {
	Name    string `json:"name"`
	Website string `json:"website"`
}

type Competitor struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Snapshots []SnapshotRecord `json:"snapshots"`
}

type SnapshotRecord struct {
	Content    string    `json:"content"`
	CapturedAt time.Time `json:"capturedAt"`
}

// SnapshotCount returns the total snapshots across all competitors.
func (p *ProjectSnapshot) SnapshotCount() int {
	if p == nil {
		return 0
	}
	total := 0
	for _, competitor := range p.Competitors {
		total += len(competitor.Snapshots)
	}
	return total
}

// Metadata carries the traceability fields persisted with every report.
type Metadata struct {
	ProjectID         string `json:"projectId"`
	CompetitorCount   int    `json:"competitorCount"`
	AnalysisMethod    string `json:"analysisMethod"`
	CorrelationID     string `json:"correlationId"`
	CompletenessScore int    `json:"dataCompletenessScore"`
	DataFreshness     string `json:"dataFreshness"`
}

// Report is the finished product of one successful pipeline run.
type Report struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Format   string   `json:"format"`
	Metadata Metadata `json:"metadata"`
}

// Response is the sole return value of the pipeline. Report is present iff
// Success is true.
type Response struct {
	Success        bool      `json:"success"`
	Status         string    `json:"status"`
	Report         *Report   `json:"report,omitempty"`
	Error          string    `json:"error,omitempty"`
	Message        string    `json:"message,omitempty"`
	ProcessingTime int64     `json:"processingTime"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

// DataCollector supplies the aggregated snapshot data for a project. The
// pipeline only consumes this contract; collection itself is an external
// concern.
type DataCollector interface {
	FetchProjectSnapshot(ctx context.Context, projectID string) (*ProjectSnapshot, error)
}

// ProviderFactory acquires an AI provider. Construction may fail, e.g. when
// credentials are missing; the orchestrator branches on that total result
// instead of recovering from a panicking constructor.
type ProviderFactory func() (llm.Provider, error)
