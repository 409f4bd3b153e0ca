// Package llm provides Ollama-compatible chat types and a client for talking
// to a locally hosted model endpoint.
package llm

// Roles a transcript turn can carry.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged turn of a chat exchange, in the shape the
// Ollama chat endpoint expects.
type Message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64-encoded, multimodal models only
}
