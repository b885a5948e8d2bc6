package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	deviceDomain "github.com/allisson/devicetrust/internal/device/domain"
)

// PostgreSQLRegistry reads devices from the registry's devices table.
type PostgreSQLRegistry struct {
	db *sql.DB
}

// NewPostgreSQLRegistry creates a read-only PostgreSQL registry.
func NewPostgreSQLRegistry(db *sql.DB) *PostgreSQLRegistry {
	return &PostgreSQLRegistry{db: db}
}

// GetDevice implements deviceDomain.Registry.
func (p *PostgreSQLRegistry) GetDevice(ctx context.Context, deviceID string) (*deviceDomain.Device, error) {
	query := `SELECT id, device_type, protocol, property_id FROM devices WHERE id = $1`
	return scanDevice(p.db.QueryRowContext(ctx, query, deviceID))
}

func scanDevice(row *sql.Row) (*deviceDomain.Device, error) {
	var device deviceDomain.Device
	if err := row.Scan(&device.ID, &device.Type, &device.Protocol, &device.PropertyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, deviceDomain.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("%w: %v", deviceDomain.ErrRegistryUnavailable, err)
	}
	return &device, nil
}
