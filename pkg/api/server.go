// Package api serves the editor over HTTP with fiber.
//
// Routes:
//
//	GET    /health/live
//	GET    /health/ready
//	GET    /api/v1/artifacts
//	POST   /api/v1/artifacts
//	GET    /api/v1/artifacts/:id
//	PUT    /api/v1/artifacts/:id
//	DELETE /api/v1/artifacts/:id
//	GET    /api/v1/artifacts/:id/versions
//	GET    /api/v1/artifacts/:id/versions/:version
//	POST   /api/v1/components/parse
//	POST   /api/v1/components/generate
//	POST   /api/v1/components/properties
//	POST   /api/v1/components/edit
//	GET    /api/v1/plugins
//	GET    /api/v1/samples
//	GET    /api/v1/samples/:name
//	POST   /api/v1/sessions
//	GET    /api/v1/sessions/:id
//	DELETE /api/v1/sessions/:id
//	...    /api/v1/sessions/:id/* (see sessions.go)
//
// Artifact routes are only mounted when a store is configured.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlog "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/gnana997/compedit/pkg/editor"
	"github.com/gnana997/compedit/pkg/parser"
	"github.com/gnana997/compedit/pkg/store"
)

// Config tunes the HTTP server.
type Config struct {
	AppName      string        `yaml:"app_name"`
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// AccessLog enables the per-request log line.
	AccessLog bool `yaml:"access_log"`

	// CORSOrigins lists allowed origins. Empty disables CORS handling.
	CORSOrigins []string `yaml:"cors_origins"`
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		AppName:      "compedit",
		Addr:         ":8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Server wires the editor packages to fiber routes.
type Server struct {
	app      *fiber.App
	cfg      Config
	sessions *editor.Manager
	store    store.Store
	logger   *slog.Logger
}

// New builds the fiber app. The manager's store, when not nil, backs the
// artifact routes and the session persistence routes.
func New(cfg Config, sessions *editor.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.AppName == "" {
		cfg.AppName = def.AppName
	}
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		store:    sessions.Store(),
		logger:   logger,
	}

	s.app = fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		AppName:      cfg.AppName,
		ErrorHandler: s.handleError,
	})

	s.app.Use(recover.New())
	if cfg.AccessLog {
		s.app.Use(fiberlog.New(fiberlog.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	if len(cfg.CORSOrigins) > 0 {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		}))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})
	s.app.Get("/health/ready", s.handleReady)

	api := s.app.Group("/api/v1")

	if s.store != nil {
		artifacts := api.Group("/artifacts")
		artifacts.Get("/", s.listArtifacts)
		artifacts.Post("/", s.createArtifact)
		artifacts.Get("/:id", s.getArtifact)
		artifacts.Put("/:id", s.updateArtifact)
		artifacts.Delete("/:id", s.deleteArtifact)
		artifacts.Get("/:id/versions", s.listVersions)
		artifacts.Get("/:id/versions/:version", s.getVersion)
	}

	components := api.Group("/components")
	components.Post("/parse", s.parseComponent)
	components.Post("/generate", s.generateCode)
	components.Post("/properties", s.listProperties)
	components.Post("/edit", s.editComponent)

	api.Get("/plugins", s.listPlugins)
	api.Get("/samples", s.listSamples)
	api.Get("/samples/:name", s.getSample)

	sessions := api.Group("/sessions")
	sessions.Post("/", s.openSession)
	sessions.Get("/:id", s.getSession)
	sessions.Delete("/:id", s.closeSession)
	sessions.Post("/:id/load", s.loadSession)
	sessions.Post("/:id/select", s.selectElement)
	sessions.Get("/:id/properties", s.sessionProperties)
	sessions.Patch("/:id/elements/:elementId", s.updateElement)
	sessions.Put("/:id/elements/:elementId/position", s.updatePosition)
	sessions.Post("/:id/reset", s.resetSession)
	sessions.Post("/:id/save", s.saveSession)
	sessions.Post("/:id/save-as", s.saveSessionAs)
	sessions.Post("/:id/open", s.openArtifact)
	sessions.Get("/:id/history/:artifactId", s.sessionHistory)
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the configured address until Shutdown.
func (s *Server) Listen() error {
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleReady(c fiber.Ctx) error {
	if s.store != nil {
		if err := s.store.Ping(c.Context()); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// handleError renders errors that escape a handler as {"error": msg}.
// Syntax errors become 422 with the failing position.
func (s *Server) handleError(c fiber.Ctx, err error) error {
	var se *parser.SyntaxError
	if errors.As(err, &se) {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  se.Error(),
			"line":   se.Line,
			"column": se.Column,
		})
	}

	status := http.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func fail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
