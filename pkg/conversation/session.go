// Package conversation manages elicitation sessions and their transcripts.
package conversation

import (
	"time"

	"github.com/google/uuid"

	"elicit/pkg/llm"
)

// Message is a single role-tagged turn in a session transcript.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Requirement is a single elicited requirement captured in session metadata.
type Requirement struct {
	Text  string `json:"text"`
	Kind  string `json:"kind,omitempty"` // "functional" or "non-functional"
	Notes string `json:"notes,omitempty"`
}

// Metadata holds project context gathered during elicitation.
type Metadata struct {
	ProjectName        string        `json:"project_name,omitempty"`
	ProjectDescription string        `json:"project_description,omitempty"`
	Requirements       []Requirement `json:"elicited_requirements"`
}

// Session is an append-only conversation record.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
	Metadata  Metadata  `json:"metadata"`
}

// NewSession creates an empty session with a fresh UUID.
func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Messages:  []Message{},
		Metadata:  Metadata{Requirements: []Requirement{}},
	}
}

// Summary is the compact listing view of a session.
type Summary struct {
	SessionID         string    `json:"session_id"`
	CreatedAt         time.Time `json:"created_at"`
	MessageCount      int       `json:"message_count"`
	ProjectName       string    `json:"project_name,omitempty"`
	RequirementsCount int       `json:"requirements_count"`
}

// Summary returns the compact view of the session.
func (s *Session) Summary() Summary {
	return Summary{
		SessionID:         s.ID,
		CreatedAt:         s.CreatedAt,
		MessageCount:      len(s.Messages),
		ProjectName:       s.Metadata.ProjectName,
		RequirementsCount: len(s.Metadata.Requirements),
	}
}

// History converts the transcript to LLM messages, dropping timestamps.
func (s *Session) History() []llm.Message {
	history := make([]llm.Message, len(s.Messages))
	for i, msg := range s.Messages {
		history[i] = llm.Message{Role: msg.Role, Content: msg.Content}
	}
	return history
}

// Clone returns a deep copy, so callers can't mutate store-owned state.
func (s *Session) Clone() *Session {
	out := &Session{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Messages:  make([]Message, len(s.Messages)),
		Metadata: Metadata{
			ProjectName:        s.Metadata.ProjectName,
			ProjectDescription: s.Metadata.ProjectDescription,
			Requirements:       make([]Requirement, len(s.Metadata.Requirements)),
		},
	}
	copy(out.Messages, s.Messages)
	copy(out.Metadata.Requirements, s.Metadata.Requirements)
	return out
}
