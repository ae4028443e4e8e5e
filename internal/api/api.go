// Package api provides the HTTP REST API server.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/aetheris-health/aetheris/internal/api/health"
	"github.com/aetheris-health/aetheris/internal/interactions"
	"github.com/aetheris-health/aetheris/internal/reports"
	"github.com/aetheris-health/aetheris/internal/storage"
	"github.com/aetheris-health/aetheris/internal/stream"
	"github.com/aetheris-health/aetheris/internal/vitals"
)

// Config contains HTTP API server configuration.
type Config struct {
	Address        string
	RateLimitPerIP int           // requests per minute per client IP
	QueryTimeout   time.Duration // timeout for storage-backed API calls
	HistoryLimit   int           // default page size for vitals history
	Verbose        bool
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.RateLimitPerIP == 0 {
		c.RateLimitPerIP = 300 // 300 requests per minute
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 10 * time.Second
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = 50
	}
}

// Server is the HTTP API server.
type Server struct {
	config        *Config
	storage       storage.Storage
	history       *storage.HistoryStore
	streams       *stream.Manager
	profiles      *vitals.Registry
	checker       *interactions.Checker
	generator     *reports.Generator
	server        *http.Server
	healthHandler *health.Handler
}

// Deps bundles the collaborators the route tree needs.
type Deps struct {
	Storage      storage.Storage
	History      *storage.HistoryStore
	Streams      *stream.Manager
	Profiles     *vitals.Registry
	Interactions *interactions.Checker
	Reports      *reports.Generator
}

// New creates a new API server.
func New(cfg *Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if deps.History == nil {
		return nil, fmt.Errorf("history store is required")
	}
	if deps.Streams == nil {
		return nil, fmt.Errorf("stream manager is required")
	}
	if deps.Profiles == nil {
		return nil, fmt.Errorf("threshold registry is required")
	}

	cfg.SetDefaults()

	s := &Server{
		config:        cfg,
		storage:       deps.Storage,
		history:       deps.History,
		streams:       deps.Streams,
		profiles:      deps.Profiles,
		checker:       deps.Interactions,
		generator:     deps.Reports,
		healthHandler: health.NewHandler(),
	}

	router := s.setupRouter()

	s.server = &http.Server{
		Addr:        cfg.Address,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout is intentionally 0 (disabled) because the server
		// carries long-lived vitals WebSocket streams. A global
		// WriteTimeout would kill those connections mid-surgery.
		// Non-streaming handlers bound their own work with context
		// deadlines instead.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		log.Printf("HTTP API listening on %s", s.config.Address)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutting down HTTP API server...")
		s.streams.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Address
}

// RegisterHealthChecker adds a health checker to the server.
func (s *Server) RegisterHealthChecker(c health.Checker) {
	if s.healthHandler != nil {
		s.healthHandler.RegisterChecker(c)
	}
}
