package report

import (
	"fmt"
	"strings"
)

// FallbackMarker appears in every rule-based report body.
const FallbackMarker = "AI analysis is temporarily unavailable"

// FallbackComposer builds a deterministic, template-based report body used
// when AI analysis is unavailable or too slow. Given the same snapshot it
// always produces the same output, so it never needs an AI dependency and
// never fails.
type FallbackComposer struct{}

func NewFallbackComposer() *FallbackComposer {
	return &FallbackComposer{}
}

// Compose renders a markdown report from the collected snapshot data. The
// reason is included verbatim for traceability.
func (c *FallbackComposer) Compose(snapshot *ProjectSnapshot, reason string) string {
	var b strings.Builder

	productName := "Unknown product"
	if snapshot != nil && strings.TrimSpace(snapshot.Product.Name) != "" {
		productName = strings.TrimSpace(snapshot.Product.Name)
	}
	fmt.Fprintf(&b, "# Competitive Snapshot: %s\n\n", productName)
	fmt.Fprintf(&b, "> %s.", FallbackMarker)
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		fmt.Fprintf(&b, " Reason: %s.", trimmed)
	}
	b.WriteString(" This report was assembled from the captured data only.\n\n")

	b.WriteString("## Product\n\n")
	fmt.Fprintf(&b, "- Name: %s\n", productName)
	if snapshot != nil && strings.TrimSpace(snapshot.Product.Website) != "" {
		fmt.Fprintf(&b, "- Website: %s\n", strings.TrimSpace(snapshot.Product.Website))
	}
	b.WriteString("\n")

	if snapshot == nil || len(snapshot.Competitors) == 0 {
		b.WriteString("## Competitors\n\n")
		b.WriteString("No competitor data has been captured for this project yet.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "## Competitors (%d)\n\n", len(snapshot.Competitors))
	for _, competitor := range snapshot.Competitors {
		fmt.Fprintf(&b, "### %s\n\n", competitor.Name)
		fmt.Fprintf(&b, "- Snapshots captured: %d\n", len(competitor.Snapshots))
		if len(competitor.Snapshots) > 0 {
			latest := competitor.Snapshots[0]
			for _, snap := range competitor.Snapshots[1:] {
				if snap.CapturedAt.After(latest.CapturedAt) {
					latest = snap
				}
			}
			fmt.Fprintf(&b, "- Latest snapshot: %s\n", latest.CapturedAt.UTC().Format("2006-01-02"))
		} else {
			b.WriteString("- Latest snapshot: none\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Data Quality\n\n")
	fmt.Fprintf(&b, "- Completeness score: %d/100\n", snapshot.CompletenessScore)
	if snapshot.Freshness != "" {
		fmt.Fprintf(&b, "- Freshness: %s\n", snapshot.Freshness)
	}
	return b.String()
}
