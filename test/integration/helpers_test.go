// Package integration provides end-to-end tests of the device security facade against
// real PostgreSQL and MySQL databases.
package integration

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/allisson/devicetrust/internal/app"
	"github.com/allisson/devicetrust/internal/config"
	deviceDomain "github.com/allisson/devicetrust/internal/device/domain"
	"github.com/allisson/devicetrust/internal/testutil"
)

type dbConfig struct {
	name   string
	driver string
	dsn    string
	setup  func(t *testing.T) *sql.DB
	skip   func(t *testing.T)
}

func dbConfigs() []dbConfig {
	return []dbConfig{
		{
			name:   "PostgreSQL",
			driver: "postgres",
			dsn:    testutil.GetPostgresTestDSN(),
			setup:  testutil.SetupPostgresDB,
			skip:   testutil.SkipIfNoPostgres,
		},
		{
			name:   "MySQL",
			driver: "mysql",
			dsn:    testutil.GetMySQLTestDSN(),
			setup:  testutil.SetupMySQLDB,
			skip:   testutil.SkipIfNoMySQL,
		},
	}
}

// integrationTestContext holds a migrated database seeded with registry devices and a
// container wired against it.
type integrationTestContext struct {
	db        *sql.DB
	container *app.Container
}

var testDevices = []deviceDomain.Device{
	{ID: "lock-1", Type: deviceDomain.DeviceTypeSmartLock, Protocol: deviceDomain.ProtocolWiFi, PropertyID: "p1"},
	{ID: "cam-1", Type: deviceDomain.DeviceTypeSecurityCamera, Protocol: deviceDomain.ProtocolMQTT, PropertyID: "p1"},
	{ID: "thermo-1", Type: deviceDomain.DeviceTypeThermostat, Protocol: deviceDomain.ProtocolBLE, PropertyID: "p2"},
}

func generateMasterKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(key)
}

func setupIntegrationTestContext(t *testing.T, cfg dbConfig) *integrationTestContext {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	cfg.skip(t)

	db := cfg.setup(t)
	for _, device := range testDevices {
		testutil.CreateTestDevice(t, db, cfg.driver, device)
	}

	container := app.NewContainer(&config.Config{
		DBDriver:                         cfg.driver,
		DBConnectionString:               cfg.dsn,
		DBMaxOpenConnections:             10,
		DBMaxIdleConnections:             5,
		DBConnMaxLifetime:                time.Hour,
		RegistryTimeout:                  2 * time.Second,
		LogLevel:                         "error",
		MasterKey:                        generateMasterKey(t),
		EncryptionAlgorithm:              "chacha20-poly1305",
		AccessTokenTTL:                   time.Hour,
		RefreshTokenTTL:                  24 * time.Hour,
		CertificateValidity:              24 * time.Hour,
		RevocationInvalidatesCredentials: true,
		RateLimitStrategy:                "sliding-window",
		RateLimitMaxActions:              30,
		RateLimitWindow:                  time.Minute,
		RateLimitPolicies:                "control:lock=10/1m",
		AuditTimeout:                     2 * time.Second,
		AuditQueryMaxLimit:               1000,
		MetricsEnabled:                   false,
	})

	return &integrationTestContext{db: db, container: container}
}

func cleanupIntegrationTestContext(t *testing.T, testCtx *integrationTestContext) {
	t.Helper()
	require.NoError(t, testCtx.container.Shutdown(context.Background()))
}
