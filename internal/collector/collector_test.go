package collector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/marketlens/marketlens/internal/report"
	"github.com/marketlens/marketlens/internal/sqlite"
)

func openTestStore(t *testing.T) *sqlite.Store {
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
	return store
}

func seedProject(t *testing.T, store *sqlite.Store, now time.Time) {
	t.Helper()
	ctx := context.Background()
	if err := store.InsertProject(ctx, sqlite.Project{
		ID: "P1", Name: "Acme", ProductName: "Acme Analytics", ProductWebsite: "https://acme.example",
	}); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	if err := store.InsertCompetitor(ctx, sqlite.Competitor{ID: "comp-a", ProjectID: "P1", Name: "Alpha"}); err != nil {
		t.Fatalf("insert competitor: %v", err)
	}
	if err := store.InsertCompetitor(ctx, sqlite.Competitor{ID: "comp-b", ProjectID: "P1", Name: "Beta"}); err != nil {
		t.Fatalf("insert competitor: %v", err)
	}
	if err := store.InsertSnapshot(ctx, sqlite.Snapshot{
		CompetitorID: "comp-a",
		Content:      "<html><head><style>p{}</style></head><body><p>Alpha pricing: $10</p></body></html>",
		CapturedAt:   now.Add(-48 * time.Hour),
	}); err != nil {
		t.Fatalf("insert snapshot: %v", err)
	}
}

func TestFetchProjectSnapshotAggregates(t *testing.T) {
	store := openTestStore(t)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	seedProject(t, store, now)

	coll := New(store, WithClock(func() time.Time { return now }))
	snapshot, err := coll.FetchProjectSnapshot(context.Background(), "P1")
	if err != nil {
		t.Fatalf("fetch snapshot: %v", err)
	}
	if snapshot.Product.Name != "Acme Analytics" {
		t.Fatalf("unexpected product: %+v", snapshot.Product)
	}
	if len(snapshot.Competitors) != 2 {
		t.Fatalf("expected 2 competitors, got %d", len(snapshot.Competitors))
	}
	if snapshot.Competitors[0].Name != "Alpha" || snapshot.Competitors[1].Name != "Beta" {
		t.Fatalf("expected name-ordered competitors, got %+v", snapshot.Competitors)
	}
	if len(snapshot.Competitors[0].Snapshots) != 1 {
		t.Fatalf("expected one snapshot for Alpha, got %d", len(snapshot.Competitors[0].Snapshots))
	}
	content := snapshot.Competitors[0].Snapshots[0].Content
	if content != "Alpha pricing: $10" {
		t.Fatalf("expected stripped HTML content, got %q", content)
	}
	// Website (20) + competitors present (20) + 1 of 2 covered (30).
	if snapshot.CompletenessScore != 70 {
		t.Fatalf("expected completeness 70, got %d", snapshot.CompletenessScore)
	}
	if snapshot.Freshness != report.FreshnessCurrent {
		t.Fatalf("expected CURRENT freshness, got %q", snapshot.Freshness)
	}
	if snapshot.SnapshotCount() != 1 {
		t.Fatalf("expected 1 total snapshot, got %d", snapshot.SnapshotCount())
	}
}

func TestFetchProjectSnapshotNotFound(t *testing.T) {
	store := openTestStore(t)
	coll := New(store)
	_, err := coll.FetchProjectSnapshot(context.Background(), "missing")
	if !errors.Is(err, report.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestFreshnessClassification(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	coll := New(nil, WithClock(func() time.Time { return now }))

	cases := []struct {
		name string
		ages []time.Duration
		want string
	}{
		{"no snapshots", nil, report.FreshnessStale},
		{"all recent", []time.Duration{24 * time.Hour, 3 * 24 * time.Hour}, report.FreshnessCurrent},
		{"all old", []time.Duration{40 * 24 * time.Hour}, report.FreshnessStale},
		{"mixed", []time.Duration{24 * time.Hour, 40 * 24 * time.Hour}, report.FreshnessMixed},
		{"mid-age", []time.Duration{14 * 24 * time.Hour}, report.FreshnessMixed},
	}
	for _, tc := range cases {
		records := make([]report.SnapshotRecord, 0, len(tc.ages))
		for _, age := range tc.ages {
			records = append(records, report.SnapshotRecord{CapturedAt: now.Add(-age)})
		}
		competitors := []report.Competitor{{ID: "c", Name: "C", Snapshots: records}}
		if got := coll.freshness(competitors); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestExtractTextPassesThroughPlainText(t *testing.T) {
	if got := ExtractText("  plain snapshot text  "); got != "plain snapshot text" {
		t.Fatalf("unexpected passthrough: %q", got)
	}
}

func TestExtractTextStripsMarkup(t *testing.T) {
	html := `<html><body><script>alert(1)</script><h1>Pricing</h1><p>From $5/mo</p></body></html>`
	got := ExtractText(html)
	if got != "Pricing From $5/mo" {
		t.Fatalf("unexpected extraction: %q", got)
	}
}
