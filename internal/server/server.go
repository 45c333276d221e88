package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/millwork/internal/engine"
	"github.com/roach88/millwork/internal/processor"
	"github.com/roach88/millwork/internal/store"
)

// World is the part of engine.World the API serves.
type World interface {
	Tick() int64
	Running() bool
	Status() []engine.ProcessorStatus
	ProcessorStatus(id string) (engine.ProcessorStatus, error)
	Snapshot(id string) (processor.Snapshot, error)
	QueryCompletions(ctx context.Context, q store.CompletionQuery) ([]store.CompletionRecord, error)
	Submit(c engine.Command) bool
	Apply(c engine.Command) engine.CommandResult
}

// DefaultCommandTimeout bounds how long a queued command may wait for its
// tick.
const DefaultCommandTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCommandTimeout sets how long a command waits for the world.
func WithCommandTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.commandTimeout = d
		}
	}
}

// Server serves a world's status API.
type Server struct {
	app            *fiber.App
	world          World
	logger         *slog.Logger
	commandTimeout time.Duration
}

// New builds the API for w.
func New(w World, opts ...Option) *Server {
	s := &Server{
		world:          w,
		logger:         slog.Default(),
		commandTimeout: DefaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(requestID())
	s.app.Use(s.observe)

	s.app.Get("/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	group := s.app.Group("/processors")
	group.Get("/", s.handleList)
	group.Get("/:id", s.handleGet)
	group.Get("/:id/snapshot", s.handleSnapshot)
	group.Get("/:id/completions", s.handleCompletions)
	group.Post("/:id/commands", s.handleCommand)
	return s
}

// App returns the underlying fiber app, for tests and embedding.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until ctx is cancelled, then shuts down.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

// handleError maps engine error codes to statuses.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		status = fe.Code
	case engine.CodeOf(err) == engine.ErrCodeUnknownProcessor:
		status = fiber.StatusNotFound
	case engine.CodeOf(err) != "":
		status = fiber.StatusBadRequest
	}
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "request_id", c.Locals(requestIDKey), "error", err)
	}
	body := fiber.Map{"error": err.Error()}
	if code := engine.CodeOf(err); code != "" {
		body["code"] = string(code)
	}
	return c.Status(status).JSON(body)
}
