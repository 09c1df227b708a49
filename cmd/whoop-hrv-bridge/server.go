package main

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wrale/whoop-hrv-bridge/internal/authflow"
	"github.com/wrale/whoop-hrv-bridge/internal/recovery"
	"github.com/wrale/whoop-hrv-bridge/internal/tokens"
)

type server struct {
	cfg        Config
	router     *chi.Mux
	store      tokens.Store
	manager    *tokens.Manager
	flow       *authflow.Flow
	aggregator *recovery.Aggregator
}

func newServer(cfg Config, store tokens.Store, manager *tokens.Manager, flow *authflow.Flow, aggregator *recovery.Aggregator) *server {
	srv := &server{
		cfg:        cfg,
		router:     chi.NewRouter(),
		store:      store,
		manager:    manager,
		flow:       flow,
		aggregator: aggregator,
	}

	srv.router.Use(middleware.RequestID)
	srv.router.Use(middleware.RealIP)
	srv.router.Use(middleware.Logger)
	srv.router.Use(middleware.Recoverer)
	srv.router.Use(middleware.Timeout(cfg.RequestTimeout))

	srv.routes()

	return srv
}

func (s *server) routes() {
	s.router.Get("/", s.handleIndex())
	s.router.Get("/health", s.handleHealth())

	s.router.Get("/auth/start", s.handleAuthStart())
	s.router.Get("/auth/callback", s.handleAuthCallback())
	s.router.Get("/auth/status", s.handleAuthStatus())

	s.router.Get("/hrv", s.handleHRV())
}
