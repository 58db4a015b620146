// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/carterperez-dev/nexus/internal/config"
	"github.com/carterperez-dev/nexus/internal/core"
)

// ShutdownNotifier is told when the server starts draining so readiness
// probes can fail before connections close.
type ShutdownNotifier interface {
	SetShutdown(shutdown bool)
}

type Config struct {
	ServerConfig  config.ServerConfig
	HealthHandler ShutdownNotifier
	Logger        *slog.Logger
	ServiceName   string
}

type Server struct {
	router  *chi.Mux
	http    *http.Server
	health  ShutdownNotifier
	logger  *slog.Logger
	address string
}

func New(cfg Config) *Server {
	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Use(chimw.RealIP)

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		core.JSONError(w, core.NotFoundError("route"))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		core.JSON(w, http.StatusMethodNotAllowed, core.Response{
			Success: false,
			Message: "Method not allowed",
			Code:    "METHOD_NOT_ALLOWED",
		})
	})

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "http.server"
	}

	addr := cfg.ServerConfig.Address()

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              addr,
			Handler:           core.InstrumentHandler(router, serviceName),
			ReadTimeout:       cfg.ServerConfig.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.ServerConfig.WriteTimeout,
			IdleTimeout:       cfg.ServerConfig.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		health:  cfg.HealthHandler,
		logger:  logger,
		address: addr,
	}
}

func (s *Server) Router() chi.Router {
	return s.router
}

// Handler exposes the instrumented root handler for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "address", s.address)

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown fails readiness, waits drain for load balancers to notice, then
// closes the listener and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context, drain time.Duration) error {
	if s.health != nil {
		s.health.SetShutdown(true)
	}

	if drain > 0 {
		s.logger.Info("draining connections", "delay", drain)
		select {
		case <-time.After(drain):
		case <-ctx.Done():
		}
	}

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}
