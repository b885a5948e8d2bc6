package repository

import (
	"context"
	"database/sql"

	deviceDomain "github.com/allisson/devicetrust/internal/device/domain"
)

// MySQLRegistry reads devices from the registry's devices table.
type MySQLRegistry struct {
	db *sql.DB
}

// NewMySQLRegistry creates a read-only MySQL registry.
func NewMySQLRegistry(db *sql.DB) *MySQLRegistry {
	return &MySQLRegistry{db: db}
}

// GetDevice implements deviceDomain.Registry.
func (m *MySQLRegistry) GetDevice(ctx context.Context, deviceID string) (*deviceDomain.Device, error) {
	query := `SELECT id, device_type, protocol, property_id FROM devices WHERE id = ?`
	return scanDevice(m.db.QueryRowContext(ctx, query, deviceID))
}
