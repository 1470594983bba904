package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marketlens/marketlens/internal/common"
)

const fallbackMessage = "Fallback report generated without AI analysis"

// Generator orchestrates the initial-report pipeline: validation,
// per-project dedup, data collection, deadline-bounded AI analysis with
// rule-based fallback, and transactional persistence. GenerateInitialReport
// always returns a Response; no failure mode escapes as an error or panic.
type Generator struct {
	collector   DataCollector
	factory     ProviderFactory
	persister   *Persister
	coordinator *Coordinator
	guard       *TimeoutGuard
	composer    *FallbackComposer
	timeout     time.Duration
	now         func() time.Time
}

// Option customises a Generator.
type Option func(*Generator)

// WithTimeout overrides the default AI analysis budget.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

func NewGenerator(collector DataCollector, factory ProviderFactory, persister *Persister, opts ...Option) *Generator {
	gen := &Generator{
		collector:   collector,
		factory:     factory,
		persister:   persister,
		coordinator: NewCoordinator(),
		guard:       NewTimeoutGuard(),
		composer:    NewFallbackComposer(),
		timeout:     DefaultTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(gen)
	}
	return gen
}

// GenerateInitialReport runs the pipeline for one request. Concurrent calls
// for the same project share a single execution and receive the same
// response.
func (g *Generator) GenerateInitialReport(ctx context.Context, req Request) *Response {
	start := g.now()
	correlationID := strings.TrimSpace(req.TaskID)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	logger := common.WithCorrelation(common.Logger(), correlationID)

	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		logger.Warn("report: request rejected, missing project id")
		return g.failure(start, "Project ID is required")
	}

	logger.Info("report: initial report requested", "project_id", projectID,
		"fallback_allowed", req.Options.FallbackToPartialData)

	// Waiters joining an in-flight run must not inherit the initiating
	// caller's cancellation.
	runCtx := context.WithoutCancel(ctx)
	resp, shared := g.coordinator.RunExclusive(projectID, func() *Response {
		return g.run(runCtx, logger, projectID, req.Options, correlationID, start)
	})
	if shared {
		logger.Info("report: joined in-flight generation", "project_id", projectID)
	}
	return resp
}

func (g *Generator) run(ctx context.Context, logger *slog.Logger, projectID string, opts Options, correlationID string, start time.Time) *Response {
	snapshot, err := g.collector.FetchProjectSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			logger.Warn("report: project not found", "project_id", projectID)
			return g.failure(start, fmt.Sprintf("project %s not found", projectID))
		}
		logger.Error("report: data collection failed", "project_id", projectID, "error", err)
		return g.failure(start, fmt.Sprintf("collect project data: %v", err))
	}
	logger.Info("report: project data collected", "project_id", projectID,
		"competitors", len(snapshot.Competitors), "snapshots", snapshot.SnapshotCount(),
		"completeness", snapshot.CompletenessScore, "freshness", snapshot.Freshness)

	content, method, message, failed := g.analyze(ctx, logger, snapshot, opts)
	if failed != nil {
		return failed.finish(g.now(), start)
	}

	rep := &Report{
		ID:      uuid.NewString(),
		Title:   fmt.Sprintf("Initial Comparative Report: %s", snapshot.Product.Name),
		Content: content,
		Format:  "markdown",
		Metadata: Metadata{
			ProjectID:         projectID,
			CompetitorCount:   len(snapshot.Competitors),
			AnalysisMethod:    method,
			CorrelationID:     correlationID,
			CompletenessScore: snapshot.CompletenessScore,
			DataFreshness:     snapshot.Freshness,
		},
	}

	if err := g.persister.Persist(ctx, logger, rep, snapshot.SnapshotCount()); err != nil {
		logger.Error("report: persistence failed", "project_id", projectID, "error", err)
		return g.failure(start, fmt.Sprintf("persist report: %v", err))
	}

	completed := g.now()
	logger.Info("report: generation completed", "project_id", projectID,
		"report_id", rep.ID, "analysis_method", method,
		"processing_ms", completed.Sub(start).Milliseconds())
	return &Response{
		Success:        true,
		Status:         StatusCompleted,
		Report:         rep,
		Message:        message,
		ProcessingTime: completed.Sub(start).Milliseconds(),
		GeneratedAt:    completed,
	}
}

// analyze produces the report body. It returns either the content with its
// analysis method, or a terminal failure response when AI analysis failed and
// fallback is not permitted.
func (g *Generator) analyze(ctx context.Context, logger *slog.Logger, snapshot *ProjectSnapshot, opts Options) (content, method, message string, failed *Response) {
	provider, err := g.factory()
	if err != nil {
		logger.Warn("report: ai provider unavailable", "error", err)
		if !opts.FallbackToPartialData {
			return "", "", "", &Response{
				Success: false,
				Status:  StatusFailed,
				Error:   fmt.Sprintf("AI analysis service unavailable: %v", err),
			}
		}
		return g.composer.Compose(snapshot, "AI provider unavailable"),
			AnalysisRuleBased, fallbackMessage, nil
	}

	text, err := g.guard.Run(ctx, g.timeout, func(ctx context.Context) (string, error) {
		return provider.Chat(ctx, buildAnalysisMessages(snapshot))
	})
	switch {
	case err == nil:
		logger.Info("report: ai analysis succeeded", "provider", provider.Name())
		return text, AnalysisAIPowered, "", nil
	case errors.Is(err, ErrAITimeout):
		// A timeout never fails the pipeline: the user is not kept waiting
		// on AI latency regardless of the fallback option.
		logger.Warn("report: ai analysis timed out, composing fallback", "budget", g.timeout)
		return g.composer.Compose(snapshot, "AI analysis timed out"),
			AnalysisRuleBased, fallbackMessage, nil
	default:
		logger.Warn("report: ai analysis failed", "error", err)
		if !opts.FallbackToPartialData {
			return "", "", "", &Response{
				Success: false,
				Status:  StatusFailed,
				Error:   fmt.Sprintf("AI analysis failed: %v", err),
			}
		}
		return g.composer.Compose(snapshot, "AI analysis failed"),
			AnalysisRuleBased, fallbackMessage, nil
	}
}

func (g *Generator) failure(start time.Time, message string) *Response {
	resp := &Response{Success: false, Status: StatusFailed, Error: message}
	return resp.finish(g.now(), start)
}

func (r *Response) finish(completed, start time.Time) *Response {
	r.ProcessingTime = completed.Sub(start).Milliseconds()
	r.GeneratedAt = completed
	return r
}
