package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_Error(t *testing.T) {
	t.Run("Error_UnknownDriver", func(t *testing.T) {
		db, err := Connect(context.Background(), Config{
			Driver:             "invalid",
			ConnectionString:   "invalid",
			MaxOpenConnections: 10,
			MaxIdleConnections: 5,
			ConnMaxLifetime:    time.Hour,
		})
		assert.Error(t, err)
		assert.Nil(t, db)
		assert.Contains(t, err.Error(), "sql: unknown driver")
	})

	t.Run("Error_InvalidMySQLDSN", func(t *testing.T) {
		db, err := Connect(context.Background(), Config{
			Driver:           "mysql",
			ConnectionString: "not a dsn",
		})
		assert.Error(t, err)
		assert.Nil(t, db)
		assert.Contains(t, err.Error(), "invalid mysql connection string")
	})
}

func TestNormalizeMySQLDSN(t *testing.T) {
	t.Run("Success_AddsParseTime", func(t *testing.T) {
		dsn, err := normalizeMySQLDSN("user:pass@tcp(localhost:3306)/devicetrust")
		require.NoError(t, err)
		assert.Contains(t, dsn, "parseTime=true")
	})

	t.Run("Success_KeepsExistingParams", func(t *testing.T) {
		dsn, err := normalizeMySQLDSN("user:pass@tcp(localhost:3306)/devicetrust?parseTime=false&multiStatements=true")
		require.NoError(t, err)
		assert.Contains(t, dsn, "parseTime=true")
		assert.Contains(t, dsn, "multiStatements=true")
	})
}
