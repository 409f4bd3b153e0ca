package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const filePrefix = "conversation_"

// FileStore persists one JSON document per session under a data directory,
// mirroring the artifacts layout of the original MVP. Sessions are loaded
// lazily and every mutation rewrites the session's file.
type FileStore struct {
	dir   string
	mu    sync.Mutex
	cache map[string]*Session
}

// NewFileStore creates the data directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	return &FileStore{
		dir:   dir,
		cache: make(map[string]*Session),
	}, nil
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, filePrefix+id+".json")
}

func (f *FileStore) Create(ctx context.Context) (*Session, error) {
	session := NewSession()

	f.mu.Lock()
	defer f.mu.Unlock()

	f.cache[session.ID] = session
	if err := f.persist(session); err != nil {
		delete(f.cache, session.ID)
		return nil, err
	}

	return session.Clone(), nil
}

func (f *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, err := f.load(id)
	if err != nil {
		return nil, err
	}

	return session.Clone(), nil
}

func (f *FileStore) Append(ctx context.Context, id string, msg Message) error {
	return f.mutate(id, func(s *Session) {
		s.Messages = append(s.Messages, msg)
	})
}

func (f *FileStore) SetProject(ctx context.Context, id, name, description string) error {
	return f.mutate(id, func(s *Session) {
		s.Metadata.ProjectName = name
		s.Metadata.ProjectDescription = description
	})
}

func (f *FileStore) AddRequirement(ctx context.Context, id string, req Requirement) error {
	return f.mutate(id, func(s *Session) {
		s.Metadata.Requirements = append(s.Metadata.Requirements, req)
	})
}

func (f *FileStore) List(ctx context.Context) ([]Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}

		id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), ".json")
		session, err := f.load(id)
		if err != nil {
			// A malformed file shouldn't hide every other session
			continue
		}
		summaries = append(summaries, session.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	return summaries, nil
}

func (f *FileStore) Close() error {
	return nil
}

// mutate loads a session, applies fn, and rewrites its file. Caller must not
// hold the lock.
func (f *FileStore) mutate(id string, fn func(*Session)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, err := f.load(id)
	if err != nil {
		return err
	}

	fn(session)
	if err := f.persist(session); err != nil {
		// Drop the cache entry so reads fall back to what disk actually has
		delete(f.cache, id)
		return err
	}

	return nil
}

// load returns the cached session or reads it from disk. Caller holds the lock.
func (f *FileStore) load(id string) (*Session, error) {
	if session, ok := f.cache[id]; ok {
		return session, nil
	}

	// Session ids are UUIDs; reject anything else before touching the path
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound{ID: id}
	}

	data, err := os.ReadFile(f.path(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}

	f.cache[id] = &session
	return &session, nil
}

// persist writes the session JSON atomically via a temp file rename.
// Caller holds the lock.
func (f *FileStore) persist(session *Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	tmp := f.path(session.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	if err := os.Rename(tmp, f.path(session.ID)); err != nil {
		return fmt.Errorf("rename session file: %w", err)
	}

	return nil
}
