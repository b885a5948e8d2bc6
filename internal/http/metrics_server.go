package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/devicetrust/internal/metrics"
)

// MetricsServer serves the Prometheus scrape endpoint on its own port, so the
// health API never exposes metrics.
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewMetricsServer routes GET /metrics to the provider's registry. Every other path is 404,
// as is /metrics itself when metricsProvider is nil.
func NewMetricsServer(
	host string,
	port int,
	logger *slog.Logger,
	metricsProvider *metrics.Provider,
) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))
	if metricsProvider != nil {
		router.GET("/metrics", gin.WrapH(metricsProvider.Handler()))
	}

	srv := newHTTPServer(host, port)
	srv.Handler = router

	return &MetricsServer{server: srv, logger: logger}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start serves scrapes until Shutdown is called.
func (s *MetricsServer) Start(ctx context.Context) error {
	return serve(ctx, s.server, s.logger, "metrics server")
}

// Shutdown gracefully shuts down the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
