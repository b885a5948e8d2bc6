package repository

import (
	"context"
	"database/sql"
	"errors"

	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
	"github.com/allisson/devicetrust/internal/database"
	apperrors "github.com/allisson/devicetrust/internal/errors"
)

// PostgreSQLPairingSecretRepository implements pairing secret persistence for PostgreSQL.
type PostgreSQLPairingSecretRepository struct {
	db *sql.DB
}

// Upsert stores or replaces the device's pairing secret hash.
func (p *PostgreSQLPairingSecretRepository) Upsert(ctx context.Context, secret *authDomain.PairingSecret) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO device_pairing_secrets (device_id, secret_hash, created_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (device_id) DO UPDATE SET
			  secret_hash = EXCLUDED.secret_hash,
			  created_at = EXCLUDED.created_at`

	if _, err := querier.ExecContext(ctx, query, secret.DeviceID, secret.SecretHash, secret.CreatedAt); err != nil {
		return apperrors.Wrap(err, "failed to upsert pairing secret")
	}
	return nil
}

// Get retrieves the device's pairing secret. Returns ErrPairingSecretNotFound if none exists.
func (p *PostgreSQLPairingSecretRepository) Get(
	ctx context.Context,
	deviceID string,
) (*authDomain.PairingSecret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT device_id, secret_hash, created_at FROM device_pairing_secrets WHERE device_id = $1`

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

// NewPostgreSQLPairingSecretRepository creates a new PostgreSQL pairing secret repository.
func NewPostgreSQLPairingSecretRepository(db *sql.DB) *PostgreSQLPairingSecretRepository {
	return &PostgreSQLPairingSecretRepository{db: db}
}
