// Package devserver is an in-memory implementation of the store admin REST API. It backs local
// development of the admin client and its integration tests.
package devserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-store-admin/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	logger   zerolog.Logger
	data     *Data
	tokens   *TokenIssuer
	refresh  *RefreshManager
	validate *validator.Validate
	seed     bool
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithData serves d instead of a fresh data set
func WithData(d *Data) Option {
	return func(s *Server) {
		if d != nil {
			s.data = d
		}
	}
}

// WithRefreshRepo keeps refresh tokens in repo instead of memory
func WithRefreshRepo(repo RefreshRepo) Option {
	return func(s *Server) {
		if repo != nil {
			s.refresh = NewRefreshManager(repo, s.config)
		}
	}
}

// WithoutSeed skips the demo products, orders and customers. The admin user is always created.
func WithoutSeed() Option {
	return func(s *Server) {
		s.seed = false
	}
}

func New(cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		logger:   log.Logger,
		data:     NewData(),
		tokens:   NewTokenIssuer(cfg),
		refresh:  NewRefreshManager(NewMemoryRefreshRepo(), cfg),
		validate: newValidator(),
		seed:     true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.InitialiseSystem(cfg); err != nil {
		return nil, fmt.Errorf("[Server New] failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Data exposes the collections served, for inspection in development and tests
func (s *Server) Data() *Data {
	return s.data
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		s.logger.Debug().Str("method", method).Str("path", path).Msg("route")
	}
}
