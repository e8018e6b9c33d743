// Package stub is a local stand-in for the cosmo backend. It serves the
// full HTTP surface with canned data so the CLI can be exercised offline:
// chat streams a synthetic answer token by token, quizzes come from a
// small built-in catalog, and grading is string comparison.
package stub

import (
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/cosmohq/cosmo/pkg/api"
)

// Config holds stub server settings.
type Config struct {
	// ListenAddr is the address to listen on (e.g. ":5174").
	ListenAddr string
}

// Server is the stub cosmo backend.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App

	mu      sync.Mutex
	sources map[string]api.SourceInfo
	history int
	quizzes []api.Quiz
}

// NewServer creates a stub server with the built-in quiz catalog and an
// initial set of indexed sources.
func NewServer(config Config, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: logger,
		app:    app,
		sources: map[string]api.SourceInfo{
			"react-handbook.pdf": {Type: "pdf", Chunks: 42},
			"hooks-notes.md":     {Type: "markdown", Chunks: 7},
		},
		quizzes: cannedQuizzes(),
	}

	app.Post("/api/chat", s.handleChat)
	app.Get("/api/health", s.handleHealth)
	app.Get("/api/stats", s.handleStats)
	app.Post("/api/history/clear", s.handleClearHistory)
	app.Post("/api/ingest", s.handleIngest)
	app.Get("/api/quizzes", s.handleListQuizzes)
	app.Get("/api/quizzes/evaluate", s.handleMethodNotAllowed)
	app.Post("/api/quizzes/evaluate", s.handleEvaluate)
	app.Get("/api/quizzes/:id", s.handleGetQuiz)

	return s
}

// App exposes the underlying fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the stub server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting stub server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the stub server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) totals() (chunks, documents int) {
	for _, src := range s.sources {
		chunks += src.Chunks
		documents++
	}
	return chunks, documents
}
