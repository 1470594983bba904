package report

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExcerptShortContentUntouched(t *testing.T) {
	if got := excerpt("  pricing page  "); got != "pricing page" {
		t.Fatalf("expected trimmed content, got %q", got)
	}
}

func TestExcerptTruncatesOnRuneBoundary(t *testing.T) {
	// Fill up to just under the limit, then place a multi-byte rune
	// straddling it.
	content := strings.Repeat("a", maxSnapshotExcerpt-1) + "日本語"
	got := excerpt(content)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated excerpt is not valid UTF-8: %q", got[len(got)-8:])
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected truncation marker, got %q", got[len(got)-8:])
	}
	body := strings.TrimSuffix(got, "…")
	if len(body) > maxSnapshotExcerpt {
		t.Fatalf("excerpt body %d bytes exceeds limit %d", len(body), maxSnapshotExcerpt)
	}
	if !strings.HasPrefix(content, body) {
		t.Fatalf("excerpt body is not a prefix of the content")
	}
}

func TestExcerptMultiByteAtEveryOffset(t *testing.T) {
	for pad := maxSnapshotExcerpt - 3; pad <= maxSnapshotExcerpt; pad++ {
		content := strings.Repeat("a", pad) + strings.Repeat("é", 8)
		got := excerpt(content)
		if !utf8.ValidString(got) {
			t.Fatalf("pad %d produced invalid UTF-8", pad)
		}
	}
}
