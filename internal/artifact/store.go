package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound indicates no artifact exists for the requested report.
	ErrNotFound = errors.New("artifact not available")
	// ErrInvalid indicates the resolved artifact path escapes the store root.
	ErrInvalid = errors.New("artifact invalid")
)

// Store is a filesystem content store for rendered report artifacts, keyed by
// report id. It is a convenience mirror of the database rows, not the source
// of truth.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		trimmed = filepath.Join(os.TempDir(), "marketlens_artifacts")
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve artifact root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute artifact root directory.
func (s *Store) Root() string {
	if s == nil {
		return ""
	}
	return s.root
}

// WriteMarkdown stores the rendered markdown body for a report and returns
// the artifact path.
func (s *Store) WriteMarkdown(reportID string, body []byte) (string, error) {
	return s.write(reportID, "md", body)
}

// WriteJSON stores a JSON mirror of the report payload.
func (s *Store) WriteJSON(reportID string, payload []byte) (string, error) {
	return s.write(reportID, "json", payload)
}

func (s *Store) write(reportID, ext string, data []byte) (string, error) {
	if s == nil || s.root == "" {
		return "", errors.New("artifact store not initialised")
	}
	id := strings.TrimSpace(reportID)
	if id == "" {
		return "", errors.New("report id required")
	}
	path := filepath.Join(s.root, fmt.Sprintf("%s.%s", id, ext))
	if err := s.validate(path); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// MarkdownPath resolves the stored markdown artifact for a report, verifying
// it still lives under the store root.
func (s *Store) MarkdownPath(reportID string) (string, error) {
	if s == nil || s.root == "" {
		return "", errors.New("artifact store not initialised")
	}
	id := strings.TrimSpace(reportID)
	if id == "" {
		return "", errors.New("report id required")
	}
	path := filepath.Join(s.root, id+".md")
	if err := s.validate(path); err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("stat artifact: %w", err)
	}
	return path, nil
}

func (s *Store) validate(path string) error {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return fmt.Errorf("resolve artifact path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ErrInvalid
	}
	return nil
}
