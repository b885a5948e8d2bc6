package repository

import (
	"context"
	"database/sql"
	"errors"

	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
	"github.com/allisson/devicetrust/internal/database"
	apperrors "github.com/allisson/devicetrust/internal/errors"
)

// MySQLPairingSecretRepository implements pairing secret persistence for MySQL.
type MySQLPairingSecretRepository struct {
	db *sql.DB
}

// Upsert stores or replaces the device's pairing secret hash.
func (m *MySQLPairingSecretRepository) Upsert(ctx context.Context, secret *authDomain.PairingSecret) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO device_pairing_secrets (device_id, secret_hash, created_at)
			  VALUES (?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  secret_hash = VALUES(secret_hash),
			  created_at = VALUES(created_at)`

	if _, err := querier.ExecContext(ctx, query, secret.DeviceID, secret.SecretHash, secret.CreatedAt); err != nil {
		return apperrors.Wrap(err, "failed to upsert pairing secret")
	}
	return nil
}

// Get retrieves the device's pairing secret. Returns ErrPairingSecretNotFound if none exists.
func (m *MySQLPairingSecretRepository) Get(
	ctx context.Context,
	deviceID string,
) (*authDomain.PairingSecret, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT device_id, secret_hash, created_at FROM device_pairing_secrets WHERE device_id = ?`

	var secret authDomain.PairingSecret
	err := querier.QueryRowContext(ctx, query, deviceID).Scan(
		&secret.DeviceID,
		&secret.SecretHash,
		&secret.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrPairingSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get pairing secret")
	}
	return &secret, nil
}

// NewMySQLPairingSecretRepository creates a new MySQL pairing secret repository.
func NewMySQLPairingSecretRepository(db *sql.DB) *MySQLPairingSecretRepository {
	return &MySQLPairingSecretRepository{db: db}
}
