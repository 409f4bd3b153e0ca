// Package elicitation implements the conversational requirements elicitation
// logic: prompting, ambiguity heuristics, and SRS generation.
package elicitation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"elicit/pkg/llm"
)

// Sampling temperatures. Elicitation stays conversational; specification
// generation wants consistent output.
const (
	chatTemperature = 0.7
	specTemperature = 0.3
)

// Chatter is the slice of the LLM client the engine needs.
type Chatter interface {
	ChatWithSystem(ctx context.Context, system, user string, history []llm.Message, temperature float64) (string, error)
}

// Engine drives requirements elicitation over an LLM.
type Engine struct {
	client  Chatter
	lexicon *Holder
	logger  *zap.Logger
}

// NewEngine creates an engine around the given chat client and lexicon holder.
func NewEngine(client Chatter, lexicon *Holder, logger *zap.Logger) *Engine {
	return &Engine{
		client:  client,
		lexicon: lexicon,
		logger:  logger,
	}
}

// ProcessMessage generates the assistant's next elicitation turn. history is
// the transcript before the current user message.
func (e *Engine) ProcessMessage(ctx context.Context, userMessage string, history []llm.Message) (string, error) {
	response, err := e.client.ChatWithSystem(ctx, systemPrompt, userMessage, history, chatTemperature)
	if err != nil {
		return "", fmt.Errorf("elicitation turn: %w", err)
	}

	return response, nil
}

// PromptMessages assembles the full prompt for a single elicitation turn
// (system prompt, prior history, current user message) along with the
// sampling options. Streaming callers drive the LLM client directly with it.
func (e *Engine) PromptMessages(userMessage string, history []llm.Message) ([]llm.Message, *llm.Options) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})

	return messages, llm.WithTemperature(chatTemperature)
}

// GenerateSpecification produces an IEEE-830 SRS document from the full
// conversation transcript.
func (e *Engine) GenerateSpecification(ctx context.Context, history []llm.Message) (string, error) {
	transcript := FormatTranscript(history)

	prompt := fmt.Sprintf("%s\n\n## CONVERSATION HISTORY:\n\n%s\n\nNow generate the complete SRS document:",
		specTemplatePrompt, transcript)

	e.logger.Debug("generating specification",
		zap.Int("history_len", len(history)),
		zap.Int("transcript_bytes", len(transcript)),
	)

	specification, err := e.client.ChatWithSystem(ctx, specWriterPrompt, prompt, nil, specTemperature)
	if err != nil {
		return "", fmt.Errorf("specification generation: %w", err)
	}

	return specification, nil
}

// DetectAmbiguity runs the vague-term and weak-phrase heuristics over text
// using the current lexicon.
func (e *Engine) DetectAmbiguity(text string) []Finding {
	return e.lexicon.Current().Detect(text)
}

// FormatTranscript renders history as "ROLE: content" blocks separated by
// blank lines, the shape the specification prompt expects.
func FormatTranscript(history []llm.Message) string {
	blocks := make([]string, len(history))
	for i, msg := range history {
		blocks[i] = fmt.Sprintf("%s: %s", strings.ToUpper(msg.Role), msg.Content)
	}

	return strings.Join(blocks, "\n\n")
}
