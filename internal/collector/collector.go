package collector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/marketlens/marketlens/internal/common"
	"github.com/marketlens/marketlens/internal/report"
	"github.com/marketlens/marketlens/internal/sqlite"
)

const (
	defaultSnapshotLimit  = 3
	defaultMaxConcurrency = 4

	currentWindow = 7 * 24 * time.Hour
	staleWindow   = 30 * 24 * time.Hour
)

// SnapshotStore is the slice of the workspace database the collector reads.
// *sqlite.Store satisfies it.
type SnapshotStore interface {
	GetProject(ctx context.Context, projectID string) (*sqlite.Project, error)
	CompetitorsForProject(ctx context.Context, projectID string) ([]sqlite.Competitor, error)
	SnapshotsForCompetitor(ctx context.Context, competitorID string, limit int) ([]sqlite.Snapshot, error)
}

// Collector aggregates a project's captured competitor snapshots into the
// view consumed by the report pipeline. It never scrapes; it only reads rows
// already captured by the collection jobs.
type Collector struct {
	store          SnapshotStore
	snapshotLimit  int
	maxConcurrency int
	now            func() time.Time
}

type Option func(*Collector)

// WithMaxConcurrency bounds how many competitors are loaded in parallel.
func WithMaxConcurrency(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

// WithSnapshotLimit caps the snapshots fetched per competitor.
func WithSnapshotLimit(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.snapshotLimit = n
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

func New(store SnapshotStore, opts ...Option) *Collector {
	c := &Collector{
		store:          store,
		snapshotLimit:  defaultSnapshotLimit,
		maxConcurrency: defaultMaxConcurrency,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchProjectSnapshot loads the aggregated snapshot view for a project.
// Returns report.ErrProjectNotFound when no such project exists.
func (c *Collector) FetchProjectSnapshot(ctx context.Context, projectID string) (*report.ProjectSnapshot, error) {
	logger := common.Logger()
	project, err := c.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", report.ErrProjectNotFound, projectID)
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	rows, err := c.store.CompetitorsForProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load competitors: %w", err)
	}

	competitors := make([]report.Competitor, len(rows))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			snapshots, err := c.store.SnapshotsForCompetitor(gCtx, row.ID, c.snapshotLimit)
			if err != nil {
				return fmt.Errorf("load snapshots for %s: %w", row.Name, err)
			}
			records := make([]report.SnapshotRecord, 0, len(snapshots))
			for _, snap := range snapshots {
				records = append(records, report.SnapshotRecord{
					Content:    ExtractText(snap.Content),
					CapturedAt: snap.CapturedAt.UTC(),
				})
			}
			competitors[i] = report.Competitor{ID: row.ID, Name: row.Name, Snapshots: records}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := &report.ProjectSnapshot{
		Product: report.Product{
			Name:    project.ProductName,
			Website: project.ProductWebsite,
		},
		Competitors: competitors,
	}
	snapshot.CompletenessScore = c.completeness(project, competitors)
	snapshot.Freshness = c.freshness(competitors)
	logger.Debug("collector: snapshot assembled", "project_id", projectID,
		"competitors", len(competitors), "completeness", snapshot.CompletenessScore)
	return snapshot, nil
}

// completeness scores the collected data 0-100: product website presence,
// competitor presence, and the share of competitors with at least one
// snapshot.
func (c *Collector) completeness(project *sqlite.Project, competitors []report.Competitor) int {
	score := 0
	if strings.TrimSpace(project.ProductWebsite) != "" {
		score += 20
	}
	if len(competitors) == 0 {
		return score
	}
	score += 20
	covered := 0
	for _, competitor := range competitors {
		if len(competitor.Snapshots) > 0 {
			covered++
		}
	}
	score += 60 * covered / len(competitors)
	if score > 100 {
		score = 100
	}
	return score
}

// freshness classifies the snapshot set: CURRENT when every competitor's
// latest snapshot is within seven days, STALE when all are older than thirty
// days (or nothing is captured), MIXED otherwise.
func (c *Collector) freshness(competitors []report.Competitor) string {
	now := c.now().UTC()
	hasCurrent := false
	hasStale := false
	seen := false
	for _, competitor := range competitors {
		for _, snap := range competitor.Snapshots {
			seen = true
			age := now.Sub(snap.CapturedAt)
			switch {
			case age <= currentWindow:
				hasCurrent = true
			case age > staleWindow:
				hasStale = true
			default:
				hasCurrent = true
				hasStale = true
			}
		}
	}
	switch {
	case !seen:
		return report.FreshnessStale
	case hasCurrent && hasStale:
		return report.FreshnessMixed
	case hasStale:
		return report.FreshnessStale
	default:
		return report.FreshnessCurrent
	}
}

// ExtractText reduces stored snapshot content to readable text. HTML payloads
// are parsed and stripped of markup; anything else passes through trimmed.
func ExtractText(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.Contains(trimmed, "<") || !strings.Contains(trimmed, ">") {
		return trimmed
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return trimmed
	}
	doc.Find("script, style, noscript").Remove()
	text := doc.Text()
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return trimmed
	}
	return strings.Join(fields, " ")
}
