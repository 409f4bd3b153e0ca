package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"elicit/pkg/conversation"
	"elicit/pkg/elicitation"
	"elicit/pkg/llm"
)

// User-facing messages, kept stable so clients can rely on them.
const (
	msgEmptyMessage    = "Please provide a message."
	msgChatFailed      = "An error occurred processing your message. Please try again."
	msgLLMUnreachable  = "I apologize, but I'm having trouble connecting to the language model. Please ensure Ollama is running."
	msgNoSession       = "No active conversation session found."
	msgNotEnoughData   = "Not enough conversation data to generate specification."
	msgSpecFailed      = "An error occurred generating the specification."
	msgSessionStarted  = "New session started successfully."
	msgNewSessionError = "An error occurred creating a new session."
)

type chatRequest struct {
	Message string `json:"message"`
	Stream  bool   `json:"stream,omitempty"`
}

type chatResponse struct {
	Status    string `json:"status"`
	Response  string `json:"response"`
	SessionID string `json:"session_id,omitempty"`
}

// handleChat appends the user's turn, runs the elicitation engine, appends
// the assistant's reply, and persists the session. A storage failure is
// logged but does not fail the request.
func (s *Server) handleChat(c *fiber.Ctx) error {
	startTime := time.Now()

	var req chatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(chatResponse{Status: "error", Response: msgEmptyMessage})
	}

	userMessage := strings.TrimSpace(req.Message)
	if userMessage == "" {
		return c.Status(fiber.StatusBadRequest).JSON(chatResponse{Status: "error", Response: msgEmptyMessage})
	}

	session, err := s.resolveSession(c)
	if err != nil {
		s.logger.Error("failed to resolve session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(chatResponse{Status: "error", Response: msgChatFailed})
	}

	// History before the current message; the engine adds the current turn
	history := session.History()

	if err := s.store.Append(c.Context(), session.ID, conversation.Message{
		Role:      llm.RoleUser,
		Content:   userMessage,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		// Continue - don't fail the request just because storage failed
		s.logger.Error("failed to store user turn", zap.Error(err))
	}

	if req.Stream {
		return s.streamChat(c, session.ID, userMessage, history)
	}

	response, err := s.engine.ProcessMessage(c.Context(), userMessage, history)
	if err != nil {
		var unreachable *llm.UnreachableError
		if errors.As(err, &unreachable) {
			s.logger.Error("llm endpoint unreachable", zap.Error(err))
			return c.Status(fiber.StatusBadGateway).JSON(chatResponse{Status: "error", Response: msgLLMUnreachable})
		}

		s.logger.Error("elicitation turn failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(chatResponse{Status: "error", Response: msgChatFailed})
	}

	s.logger.Debug("elicitation turn complete",
		zap.String("session", session.ID),
		zap.String("response_preview", truncate(response, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	if err := s.store.Append(c.Context(), session.ID, conversation.Message{
		Role:      llm.RoleAssistant,
		Content:   response,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("failed to store assistant turn", zap.Error(err))
	}

	return c.JSON(chatResponse{Status: "success", Response: response, SessionID: session.ID})
}

// streamChat relays NDJSON chunks from the upstream model to the client and
// appends the accumulated reply to the session once the final chunk arrives.
func (s *Server) streamChat(c *fiber.Ctx, sessionID, userMessage string, history []llm.Message) error {
	messages, opts := s.engine.PromptMessages(userMessage, history)

	body, err := s.llm.Stream(c.Context(), messages, opts)
	if err != nil {
		var unreachable *llm.UnreachableError
		if errors.As(err, &unreachable) {
			s.logger.Error("llm endpoint unreachable", zap.Error(err))
			return c.Status(fiber.StatusBadGateway).JSON(chatResponse{Status: "error", Response: msgLLMUnreachable})
		}

		s.logger.Error("failed to open stream", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(chatResponse{Status: "error", Response: msgChatFailed})
	}

	c.Set("Content-Type", "application/x-ndjson")
	c.Set("Transfer-Encoding", "chunked")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer body.Close()

		var fullContent strings.Builder
		done := false

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var chunk llm.StreamChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				s.logger.Warn("failed to parse chunk", zap.Error(err), zap.String("line", string(line)))
				continue
			}

			fullContent.WriteString(chunk.Message.Content)
			if chunk.Done {
				done = true
			}

			w.Write(line)
			w.Write([]byte("\n"))
			w.Flush()
		}

		if err := scanner.Err(); err != nil {
			s.logger.Error("error reading stream", zap.Error(err))
		}

		if done {
			// The request context is gone once streaming ends
			if err := s.store.Append(context.Background(), sessionID, conversation.Message{
				Role:      llm.RoleAssistant,
				Content:   fullContent.String(),
				Timestamp: time.Now().UTC(),
			}); err != nil {
				s.logger.Error("failed to store assistant turn", zap.Error(err))
			}
		}
	}))

	return nil
}

type specResponse struct {
	Status        string `json:"status"`
	Specification string `json:"specification,omitempty"`
	Filename      string `json:"filename,omitempty"`
	Message       string `json:"message,omitempty"`
}

// handleGenerateSpec turns the session transcript into an IEEE-830 SRS
// document and saves it as an artifact.
func (s *Server) handleGenerateSpec(c *fiber.Ctx) error {
	sessionID := c.Cookies(sessionCookie)
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(specResponse{Status: "error", Message: msgNoSession})
	}

	session, err := s.store.Get(c.Context(), sessionID)
	if err != nil {
		var notFound conversation.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusBadRequest).JSON(specResponse{Status: "error", Message: msgNoSession})
		}

		s.logger.Error("failed to load session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(specResponse{Status: "error", Message: msgSpecFailed})
	}

	if len(session.Messages) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(specResponse{Status: "error", Message: msgNotEnoughData})
	}

	specification, err := s.engine.GenerateSpecification(c.Context(), session.History())
	if err != nil {
		var unreachable *llm.UnreachableError
		if errors.As(err, &unreachable) {
			return c.Status(fiber.StatusBadGateway).JSON(specResponse{Status: "error", Message: msgLLMUnreachable})
		}

		s.logger.Error("specification generation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(specResponse{Status: "error", Message: msgSpecFailed})
	}

	filename, err := s.artifacts.WriteSpecification(session.ID, specification)
	if err != nil {
		s.logger.Error("failed to write specification artifact", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(specResponse{Status: "error", Message: msgSpecFailed})
	}

	s.logger.Info("specification generated",
		zap.String("session", session.ID),
		zap.String("filename", filename),
	)

	return c.JSON(specResponse{Status: "success", Specification: specification, Filename: filename})
}

// handleNewSession rotates the session cookie to a fresh session.
func (s *Server) handleNewSession(c *fiber.Ctx) error {
	session, err := s.store.Create(c.Context())
	if err != nil {
		s.logger.Error("failed to create session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": msgNewSessionError,
		})
	}

	s.setSessionCookie(c, session.ID)

	return c.JSON(fiber.Map{
		"status":     "success",
		"session_id": session.ID,
		"message":    msgSessionStarted,
	})
}

// handleHealth reports server liveness and whether the model endpoint answers.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	llmStatus := "ok"
	if err := s.llm.Ping(c.Context()); err != nil {
		llmStatus = "unreachable"
	}

	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"llm":       llmStatus,
	})
}

func (s *Server) handleListSessions(c *fiber.Ctx) error {
	summaries, err := s.store.List(c.Context())
	if err != nil {
		s.logger.Error("failed to list sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list sessions"})
	}

	return c.JSON(fiber.Map{
		"count":    len(summaries),
		"sessions": summaries,
	})
}

func (s *Server) handleGetSession(c *fiber.Ctx) error {
	session, err := s.store.Get(c.Context(), c.Params("id"))
	if err != nil {
		var notFound conversation.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "session not found"})
		}

		s.logger.Error("failed to load session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to load session"})
	}

	return c.JSON(session)
}

type analyzeRequest struct {
	Requirement string `json:"requirement"`
}

// handleAnalyze runs the ambiguity and 4W heuristics over a requirement
// statement and records it in the session's metadata.
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	requirement := strings.TrimSpace(req.Requirement)
	if requirement == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "requirement text required"})
	}

	sessionID := c.Params("id")
	if err := s.store.AddRequirement(c.Context(), sessionID, conversation.Requirement{Text: requirement}); err != nil {
		var notFound conversation.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "session not found"})
		}

		s.logger.Error("failed to record requirement", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to record requirement"})
	}

	findings := s.engine.DetectAmbiguity(requirement)
	labels := make([]string, len(findings))
	for i, finding := range findings {
		labels[i] = finding.String()
	}

	return c.JSON(fiber.Map{
		"status":    "success",
		"ambiguous": len(findings) > 0,
		"findings":  findings,
		"labels":    labels,
		"four_w":    elicitation.AnalyzeFourW(requirement),
	})
}

// resolveSession returns the session named by the request cookie, creating a
// fresh one (and setting the cookie) when there is none or it is unknown.
func (s *Server) resolveSession(c *fiber.Ctx) (*conversation.Session, error) {
	if id := c.Cookies(sessionCookie); id != "" {
		session, err := s.store.Get(c.Context(), id)
		if err == nil {
			return session, nil
		}

		var notFound conversation.ErrNotFound
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	session, err := s.store.Create(c.Context())
	if err != nil {
		return nil, err
	}

	s.setSessionCookie(c, session.ID)
	return session, nil
}

func (s *Server) setSessionCookie(c *fiber.Ctx, id string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
