// Package artifact stores generated SRS documents as text files on disk.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Timestamp layout used in artifact filenames, e.g. srs_<session>_20260825_153000.txt
const stampLayout = "20060102_150405"

// Store writes and reads specification artifacts under a single directory.
type Store struct {
	dir string
}

// NewStore creates the artifact directory if needed and returns a store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the directory this store writes into.
func (s *Store) Dir() string { return s.dir }

// WriteSpecification saves an SRS document for a session and returns the
// filename (relative to the store directory).
func (s *Store) WriteSpecification(sessionID, content string) (string, error) {
	name := fmt.Sprintf("srs_%s_%s.txt", sessionID, time.Now().Format(stampLayout))

	if err := os.WriteFile(filepath.Join(s.dir, name), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write specification: %w", err)
	}

	return name, nil
}

// ListForSession returns the artifact filenames for a session, oldest first.
// The timestamped naming scheme makes lexical order chronological.
func (s *Store) ListForSession(sessionID string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read artifact directory: %w", err)
	}

	prefix := "srs_" + sessionID + "_"
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".txt") {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}

// Read returns the content of a named artifact. The name is flattened to its
// base so callers can't escape the artifact directory.
func (s *Store) Read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}

	return string(data), nil
}

// Latest returns the name and content of the most recent artifact for a
// session. Returns os.ErrNotExist when the session has none.
func (s *Store) Latest(sessionID string) (string, string, error) {
	names, err := s.ListForSession(sessionID)
	if err != nil {
		return "", "", err
	}
	if len(names) == 0 {
		return "", "", fmt.Errorf("no specification for session %s: %w", sessionID, os.ErrNotExist)
	}

	name := names[len(names)-1]
	content, err := s.Read(name)
	if err != nil {
		return "", "", err
	}

	return name, content, nil
}
