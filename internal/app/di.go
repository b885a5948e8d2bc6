// Package app provides the dependency injection container that assembles the device
// trust subsystem from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/devicetrust/internal/config"
	"github.com/allisson/devicetrust/internal/database"
	"github.com/allisson/devicetrust/internal/http"
	"github.com/allisson/devicetrust/internal/metrics"
)

// ErrNoDatabase is returned by DB when the memory driver is configured.
var ErrNoDatabase = errors.New("no database configured for the memory driver")

// lazy memoizes the first result of an initializer, error included, so a failed
// component reports the same error on every access.
type lazy[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (l *lazy[T]) get(init func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.val, l.err = init()
	})
	return l.val, l.err
}

// Container holds all application dependencies. Components are created on first
// access and shared afterwards.
type Container struct {
	config *config.Config

	// Infrastructure
	logger          lazy[*slog.Logger]
	db              lazy[*sql.DB]
	txManager       lazy[database.TxManager]
	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]

	// Crypto
	cryptoComponents

	// Auth
	authComponents

	// PKI
	pkiComponents

	// Audit
	auditComponents

	// Device security
	securityComponents

	// Servers
	httpServer    lazy[*http.Server]
	metricsServer lazy[*http.MetricsServer]

	mu sync.Mutex
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// usesDatabase reports whether stores are backed by a SQL database.
func (c *Container) usesDatabase() bool {
	return c.config.DBDriver != config.DriverMemory
}

// Logger returns the JSON logger configured from LOG_LEVEL.
func (c *Container) Logger() *slog.Logger {
	logger, _ := c.logger.get(func() (*slog.Logger, error) {
		return c.initLogger(), nil
	})
	return logger
}

// DB returns the database connection. It fails with ErrNoDatabase for the memory driver.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(c.initDB)
}

// TxManager returns the transaction manager. The memory driver gets a manager that
// runs the function directly.
func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(func() (database.TxManager, error) {
		if !c.usesDatabase() {
			return database.NewNoopTxManager(), nil
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		return database.NewTxManager(db), nil
	})
}

// MetricsProvider returns the Prometheus-backed provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return provider, nil
	})
}

// BusinessMetrics returns the operation metrics recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}
		bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create business metrics: %w", err)
		}
		return bm, nil
	})
}

// HTTPServer returns the health server with its readiness checks wired.
func (c *Container) HTTPServer() (*http.Server, error) {
	return c.httpServer.get(c.initHTTPServer)
}

// MetricsServer returns the Prometheus scrape server.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}

// Shutdown releases every initialized resource. Key material is zeroed last.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if server := c.httpServer.val; server != nil {
		if err := server.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if server := c.metricsServer.val; server != nil {
		if err := server.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if provider := c.metricsProvider.val; provider != nil {
		if err := provider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if db := c.db.val; db != nil {
		if err := db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	c.closeKeys()

	return errors.Join(shutdownErrors...)
}

// initLogger creates a JSON logger on stdout at the configured level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB opens and pings the configured SQL database.
func (c *Container) initDB() (*sql.DB, error) {
	if !c.usesDatabase() {
		return nil, ErrNoDatabase
	}

	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initHTTPServer creates the health server. Readiness covers the database, when one
// is configured, and the device registry.
func (c *Container) initHTTPServer() (*http.Server, error) {
	checks := map[string]http.ReadinessCheck{}

	if c.usesDatabase() {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for http server: %w", err)
		}
		checks["database"] = db.PingContext
	}

	registry, err := c.DeviceRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get device registry for http server: %w", err)
	}
	checks["device_registry"] = registryReadinessCheck(registry)

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(checks, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(c.config, provider)
	return server, nil
}
