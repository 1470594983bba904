package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/marketlens/marketlens/internal/llm"
)

const (
	analysisSystemPrompt = "You are a competitive-intelligence analyst. Produce a structured " +
		"markdown report comparing the product against its competitors using only the " +
		"supplied snapshot data. Cover positioning, feature gaps, and notable changes."

	maxSnapshotExcerpt = 2000
)

// buildAnalysisMessages renders the collected snapshot data into the chat
// messages sent to the AI provider. Output is deterministic for a given
// snapshot so prompts can be asserted in tests.
func buildAnalysisMessages(snapshot *ProjectSnapshot) []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s", snapshot.Product.Name)
	if strings.TrimSpace(snapshot.Product.Website) != "" {
		fmt.Fprintf(&b, " (%s)", strings.TrimSpace(snapshot.Product.Website))
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Competitors: %d\n\n", len(snapshot.Competitors))
	for _, competitor := range snapshot.Competitors {
		fmt.Fprintf(&b, "## %s\n", competitor.Name)
		if len(competitor.Snapshots) == 0 {
			b.WriteString("No snapshots captured.\n\n")
			continue
		}
		for i, snap := range competitor.Snapshots {
			fmt.Fprintf(&b, "Snapshot %d (captured %s):\n%s\n\n",
				i+1, snap.CapturedAt.UTC().Format("2006-01-02"), excerpt(snap.Content))
		}
	}
	fmt.Fprintf(&b, "Data completeness score: %d/100. Freshness: %s.\n",
		snapshot.CompletenessScore, snapshot.Freshness)

	return []llm.Message{
		{Role: "system", Content: analysisSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}

func excerpt(content string) string {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) <= maxSnapshotExcerpt {
		return trimmed
	}
	// Back off to a rune boundary so the cut never emits invalid UTF-8.
	cut := maxSnapshotExcerpt
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	return trimmed[:cut] + "…"
}
