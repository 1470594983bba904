package common

import (
	"testing"
)

func TestLogEntriesRetainCorrelation(t *testing.T) {
	logger := WithCorrelation(Logger(), "run-7f3a")
	logger.Info("correlated capture check", "project_id", "P1")

	entry, ok := findEntry("correlated capture check")
	if !ok {
		t.Fatalf("expected captured entry for logged message")
	}
	if entry.CorrelationID != "run-7f3a" {
		t.Fatalf("expected correlation id run-7f3a, got %q", entry.CorrelationID)
	}
	if got := entry.Attributes["project_id"]; got != "P1" {
		t.Fatalf("expected project_id attribute P1, got %v", got)
	}
	if _, present := entry.Attributes["correlation_id"]; present {
		t.Fatalf("correlation id should not be duplicated into attributes")
	}
}

func TestLogEntriesRecordAttrOverridesHandlerAttr(t *testing.T) {
	logger := WithCorrelation(Logger(), "run-outer")
	logger.Info("correlation override check", "correlation_id", "run-inner")

	entry, ok := findEntry("correlation override check")
	if !ok {
		t.Fatalf("expected captured entry for logged message")
	}
	if entry.CorrelationID != "run-inner" {
		t.Fatalf("expected record-level correlation id run-inner, got %q", entry.CorrelationID)
	}
}

func TestWithCorrelationBlankIDLeavesEntriesUnstamped(t *testing.T) {
	logger := WithCorrelation(Logger(), "   ")
	logger.Info("blank correlation check")

	entry, ok := findEntry("blank correlation check")
	if !ok {
		t.Fatalf("expected captured entry for logged message")
	}
	if entry.CorrelationID != "" {
		t.Fatalf("expected empty correlation id, got %q", entry.CorrelationID)
	}
}

func findEntry(message string) (LogEntry, bool) {
	entries := LogEntries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Message == message {
			return entries[i], true
		}
	}
	return LogEntry{}, false
}
