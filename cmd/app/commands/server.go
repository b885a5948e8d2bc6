package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/devicetrust/internal/app"
	apphttp "github.com/allisson/devicetrust/internal/http"
	"github.com/allisson/devicetrust/internal/ratelimit"
)

const shutdownTimeout = 10 * time.Second

// RunServer starts the health server, the metrics server and the rate limiter sweeper.
// The device security facade is built first so bad key material or configuration
// fails the start. Blocks until SIGINT/SIGTERM or until any component fails, then
// shuts the servers down within shutdownTimeout.
func RunServer(ctx context.Context, container *app.Container, version string) error {
	cfg := container.Config()
	logger := container.Logger()

	gin.SetMode(cfg.GetGinMode())
	logger.Info("starting server", slog.String("version", version), slog.String("db_driver", cfg.DBDriver))

	if _, err := container.DeviceSecurity(); err != nil {
		return fmt.Errorf("failed to initialize device security: %w", err)
	}

	limiter, err := container.RateLimiter()
	if err != nil {
		return err
	}

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	var metricsServer *apphttp.MetricsServer
	if cfg.MetricsEnabled {
		metricsServer, err = container.MetricsServer()
		if err != nil {
			return fmt.Errorf("failed to initialize metrics server: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(gctx); err != nil {
			return fmt.Errorf("health server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(gctx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return ratelimit.RunSweeper(gctx, limiter, cfg.RateLimitWindow)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var shutdownErrors []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("health server shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}
