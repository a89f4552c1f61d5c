package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	apihandler "github.com/quaksai/marketsview/internal/api/handler/api"
	"github.com/quaksai/marketsview/internal/api/middleware"
	"github.com/quaksai/marketsview/internal/dashboard"
	"github.com/quaksai/marketsview/internal/metrics"
	"github.com/quaksai/marketsview/internal/page"
	"github.com/quaksai/marketsview/internal/viewstate"
	"go.uber.org/zap"
)

// Server represents the marketsview HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	deps       Dependencies
	apiKey     string
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	APIKey         string
	MetricsEnabled bool
	MetricsPath    string
}

// Dependencies are the components the routes are served from.
type Dependencies struct {
	Sessions   apihandler.SessionStore
	Descriptor *dashboard.Descriptor
	Deriver    viewstate.Deriver
	PageDeps   page.Deps
	Tickers    apihandler.TickerLookup // optional
	Metrics    *metrics.Registry       // optional
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if deps.Descriptor == nil {
		deps.Descriptor = dashboard.DefaultDescriptor()
	}
	if deps.Deriver.DefaultDays == 0 {
		deps.Deriver = viewstate.NewDeriver(deps.Deriver.DefaultIndex, 0)
	}

	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
		deps:   deps,
		apiKey: cfg.APIKey,
	}
	s.setupRoutes(cfg)

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	sessions := apihandler.NewSessionsHandler(s.deps.Sessions, s.logger)
	embed := apihandler.NewEmbedHandler(s.deps.Descriptor, s.deps.Deriver)
	share := apihandler.NewShareHandler(s.deps.PageDeps)

	s.handle("POST /api/v1/sessions", sessions.Create)
	s.handle("GET /api/v1/sessions", sessions.List)
	s.handleID("GET /api/v1/sessions/{id}", "id", sessions.Get)
	s.handleID("DELETE /api/v1/sessions/{id}", "id", sessions.Delete)
	s.handleID("POST /api/v1/sessions/{id}/navigate", "id", sessions.Navigate)
	s.handleID("POST /api/v1/sessions/{id}/interval", "id", sessions.SetInterval)
	s.handleID("POST /api/v1/sessions/{id}/tab", "id", sessions.SetTab)
	s.handleID("POST /api/v1/sessions/{id}/news/next", "id", sessions.NextNews)
	s.handleID("POST /api/v1/sessions/{id}/embed/loaded", "id", sessions.EmbedLoaded)
	s.handleID("GET /api/v1/sessions/{id}/share", "id", sessions.Share)

	s.handle("GET /api/v1/embed", embed.Get)
	s.handle("GET /api/v1/embed/tabs", embed.Tabs)
	s.handle("GET /api/v1/share", share.Get)

	if s.deps.Tickers != nil {
		tickers := apihandler.NewTickersHandler(s.deps.Tickers)
		s.handleID("GET /api/v1/tickers/{keyTicker}", "keyTicker", tickers.Get)
	}

	if cfg.MetricsEnabled && s.deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// handle registers an authenticated API route.
func (s *Server) handle(pattern string, fn http.HandlerFunc) {
	s.mux.Handle(pattern, middleware.APIKeyAuth(s.apiKey)(fn))
}

// handleID registers an authenticated API route whose handler takes one
// path value.
func (s *Server) handleID(pattern, name string, fn func(http.ResponseWriter, *http.Request, string)) {
	s.handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, r.PathValue(name))
	})
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
