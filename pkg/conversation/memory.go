package conversation

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps sessions in a map. Used in tests and as the default
// backend when no data directory or database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (m *MemoryStore) Create(ctx context.Context) (*Session, error) {
	session := NewSession()

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session.Clone(), nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound{ID: id}
	}

	return session.Clone(), nil
}

func (m *MemoryStore) Append(ctx context.Context, id string, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return ErrNotFound{ID: id}
	}

	session.Messages = append(session.Messages, msg)
	return nil
}

func (m *MemoryStore) SetProject(ctx context.Context, id, name, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return ErrNotFound{ID: id}
	}

	session.Metadata.ProjectName = name
	session.Metadata.ProjectDescription = description
	return nil
}

func (m *MemoryStore) AddRequirement(ctx context.Context, id string, req Requirement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return ErrNotFound{ID: id}
	}

	session.Metadata.Requirements = append(session.Metadata.Requirements, req)
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]Summary, 0, len(m.sessions))
	for _, session := range m.sessions {
		summaries = append(summaries, session.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	return summaries, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
