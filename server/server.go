// Package server exposes the requirements elicitation assistant over an HTTP
// JSON API, mediating between chat clients and a local LLM endpoint.
package server

import (
	"fmt"
	"net/http/pprof"
	"path/filepath"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"elicit/pkg/artifact"
	"elicit/pkg/conversation"
	"elicit/pkg/elicitation"
	"elicit/pkg/llm"
	"elicit/web"
)

// sessionCookie carries the active session id between requests.
const sessionCookie = "elicit_session"

// Server wires the conversation store, elicitation engine, and artifact store
// behind the HTTP API.
type Server struct {
	config    Config
	store     conversation.Store
	artifacts *artifact.Store
	engine    *elicitation.Engine
	llm       *llm.Client
	lexicon   *elicitation.Holder
	logger    *zap.Logger
	app       *fiber.App
}

// New creates a Server. Storage backend selection follows the config: SQLite
// when DBPath is set, per-session JSON files when DataDir is set, in-memory
// otherwise.
func New(config Config, logger *zap.Logger) (*Server, error) {
	store, err := newStore(config, logger)
	if err != nil {
		return nil, err
	}

	artifactDir := config.DataDir
	if artifactDir == "" {
		artifactDir = "artifacts"
	}
	artifacts, err := artifact.NewStore(filepath.Join(artifactDir, "specifications"))
	if err != nil {
		return nil, fmt.Errorf("create artifact store: %w", err)
	}

	client := llm.NewClient(config.UpstreamURL, config.Model, config.APIKey, logger)

	lexicon := elicitation.NewHolder(elicitation.DefaultLexicon(), logger)
	if config.LexiconPath != "" {
		if err := lexicon.Watch(config.LexiconPath); err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
	}

	engine := elicitation.NewEngine(client, lexicon, logger)

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		// Enable streaming
		StreamRequestBody: true,
	})

	s := &Server{
		config:    config,
		store:     store,
		artifacts: artifacts,
		engine:    engine,
		llm:       client,
		lexicon:   lexicon,
		logger:    logger,
		app:       app,
	}

	s.registerRoutes(app)

	return s, nil
}

func newStore(config Config, logger *zap.Logger) (conversation.Store, error) {
	switch {
	case config.DBPath != "":
		store, err := conversation.NewSQLiteStore(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("create SQLite store: %w", err)
		}
		logger.Info("using SQLite conversation storage", zap.String("path", config.DBPath))
		return store, nil

	case config.DataDir != "":
		store, err := conversation.NewFileStore(filepath.Join(config.DataDir, "conversations"))
		if err != nil {
			return nil, fmt.Errorf("create file store: %w", err)
		}
		logger.Info("using file conversation storage", zap.String("dir", config.DataDir))
		return store, nil

	default:
		logger.Info("using in-memory conversation storage")
		return conversation.NewMemoryStore(), nil
	}
}

func (s *Server) registerRoutes(app *fiber.App) {
	app.Post("/api/chat", s.handleChat)
	app.Post("/api/generate-spec", s.handleGenerateSpec)
	app.Post("/api/new-session", s.handleNewSession)
	app.Get("/api/health", s.handleHealth)
	app.Get("/api/sessions", s.handleListSessions)
	app.Get("/api/sessions/:id", s.handleGetSession)
	app.Post("/api/sessions/:id/analyze", s.handleAnalyze)

	// Embedded chat UI
	app.Get("/", s.handleIndex)

	// Profiling endpoints, served through the net/http adaptor
	app.Get("/debug/pprof/cmdline", adaptor.HTTPHandlerFunc(pprof.Cmdline))
	app.Get("/debug/pprof/profile", adaptor.HTTPHandlerFunc(pprof.Profile))
	app.Get("/debug/pprof/symbol", adaptor.HTTPHandlerFunc(pprof.Symbol))
	app.Get("/debug/pprof/trace", adaptor.HTTPHandlerFunc(pprof.Trace))
	app.Get("/debug/pprof/*", adaptor.HTTPHandlerFunc(pprof.Index))
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting elicitation server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("upstream", s.config.UpstreamURL),
		zap.String("model", s.config.Model),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// Close shuts down the server and releases resources.
func (s *Server) Close() error {
	if err := s.lexicon.Close(); err != nil {
		s.logger.Warn("closing lexicon watcher", zap.Error(err))
	}
	return s.store.Close()
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html")
	return c.Send(web.IndexHTML)
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
