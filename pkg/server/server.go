// Package server exposes scraping and generation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/entrhq/sectionforge/pkg/config"
	"github.com/entrhq/sectionforge/pkg/generate"
	"github.com/entrhq/sectionforge/pkg/logging"
	"github.com/entrhq/sectionforge/pkg/types"
	"github.com/gin-gonic/gin"
)

// Scraper extracts sections from a URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) ([]types.Section, error)
}

// Generator produces component source from markup.
type Generator interface {
	Generate(ctx context.Context, req types.GenerateRequest) (*generate.Result, error)
	Refine(ctx context.Context, req types.GenerateRequest) (*generate.Result, error)
}

// Server is the HTTP front end.
type Server struct {
	cfg       config.ServerConfig
	scraper   Scraper
	generator Generator
	logger    *logging.Logger
	metrics   *Metrics
	engine    *gin.Engine
	httpSrv   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New creates a Server and registers its routes.
func New(cfg config.ServerConfig, scraper Scraper, generator Generator, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		scraper:   scraper,
		generator: generator,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	s.engine = s.routes()
	s.httpSrv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(s.logger.Zap()))
	r.Use(s.metrics.Middleware())
	r.Use(CORS(s.cfg.CORSOrigins, s.cfg.SecretHeader))
	r.Use(BodyLimit(s.cfg.MaxBodyBytes))

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	guard := AccessControl(s.cfg.Secret, s.cfg.SecretHeader, s.logger)
	for _, prefix := range []string{"", "/api"} {
		g := r.Group(prefix, guard)
		g.POST("/scrape", s.handleScrape)
		g.POST("/generate", s.handleGenerate)
		g.POST("/refine", s.handleRefine)
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpSrv.Addr
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	if s.cfg.AccessControlEnabled() {
		s.logger.Infof("Access control enabled (header %s)", s.cfg.SecretHeader)
	} else {
		s.logger.Warnf("API_SECRET not set: all requests are allowed")
	}
	s.logger.Infof("Server listening on %s", s.httpSrv.Addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
