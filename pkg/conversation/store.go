package conversation

import "context"

// Store defines the interface for persisting and retrieving sessions.
// Sessions are create-once/read-many: turns are only ever appended, and a
// session's transcript is never rewritten.
type Store interface {
	// Create makes a new empty session and persists it.
	Create(ctx context.Context) (*Session, error)

	// Get retrieves a session by id. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*Session, error)

	// Append adds a message to the session transcript and persists it.
	Append(ctx context.Context, id string, msg Message) error

	// SetProject records the project name and description in session metadata.
	SetProject(ctx context.Context, id, name, description string) error

	// AddRequirement records an elicited requirement in session metadata.
	AddRequirement(ctx context.Context, id string, req Requirement) error

	// List returns summaries for all known sessions, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Close releases any resources held by the store.
	Close() error
}

// ErrNotFound is returned when a session doesn't exist in the store.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	if e.ID == "" {
		return "session not found"
	}

	return "session not found: " + e.ID
}
