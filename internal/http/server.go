// Package http provides the operational HTTP surface of the device trust service:
// liveness, readiness and the Prometheus metrics endpoint.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/devicetrust/internal/config"
	"github.com/allisson/devicetrust/internal/metrics"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck probes one dependency. A nil error means the dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Server represents the health HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
	checks map[string]ReadinessCheck
}

// NewServer creates a new health server. Every entry of checks is reported as a
// component of the readiness response.
func NewServer(
	checks map[string]ReadinessCheck,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		logger: logger,
		checks: checks,
		server: newHTTPServer(host, port),
	}
}

func newHTTPServer(host string, port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// serve runs srv until it is shut down. Request contexts derive from ctx.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger, name string) error {
	srv.BaseContext = func(net.Listener) context.Context { return ctx }

	logger.Info("starting "+name, slog.String("addr", srv.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}

// SetupRouter builds the gin router. A nil metricsProvider disables request metrics.
func (s *Server) SetupRouter(cfg *config.Config, metricsProvider *metrics.Provider) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))
	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ready := true
	components := make(gin.H, len(names))
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			ready = false
			components[name] = "error"
			s.logger.Warn("readiness check failed",
				slog.String("component", name),
				slog.Any("error", err))
			continue
		}
		components[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router
	return serve(ctx, s.server, s.logger, "http server")
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
