package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
	"github.com/allisson/devicetrust/internal/database"
	apperrors "github.com/allisson/devicetrust/internal/errors"
)

// PostgreSQLCredentialRepository implements credential persistence for PostgreSQL.
// Uses transaction support via database.GetTx().
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// Get retrieves the device's credential record. Returns ErrCredentialsNotFound if none exists.
func (p *PostgreSQLCredentialRepository) Get(
	ctx context.Context,
	deviceID string,
) (*authDomain.CredentialRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT device_id, access_fingerprint, refresh_fingerprint, access_expires_at,
			  refresh_expires_at, permissions, version, updated_at
			  FROM device_credentials WHERE device_id = $1`

	var record authDomain.CredentialRecord
	var permissions []byte

	err := querier.QueryRowContext(ctx, query, deviceID).Scan(
		&record.DeviceID,
		&record.AccessFingerprint,
		&record.RefreshFingerprint,
		&record.AccessExpiresAt,
		&record.RefreshExpiresAt,
		&permissions,
		&record.Version,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrCredentialsNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get device credentials")
	}

	if err := json.Unmarshal(permissions, &record.Permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode permissions")
	}
	return &record, nil
}

// Replace upserts the device's credential record and bumps its version.
func (p *PostgreSQLCredentialRepository) Replace(
	ctx context.Context,
	record *authDomain.CredentialRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	permissions, err := json.Marshal(record.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode permissions")
	}

	query := `INSERT INTO device_credentials (device_id, access_fingerprint, refresh_fingerprint,
			  access_expires_at, refresh_expires_at, permissions, version, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, 1, $7)
			  ON CONFLICT (device_id) DO UPDATE SET
			  access_fingerprint = EXCLUDED.access_fingerprint,
			  refresh_fingerprint = EXCLUDED.refresh_fingerprint,
			  access_expires_at = EXCLUDED.access_expires_at,
			  refresh_expires_at = EXCLUDED.refresh_expires_at,
			  permissions = EXCLUDED.permissions,
			  version = device_credentials.version + 1,
			  updated_at = EXCLUDED.updated_at`

	_, err = querier.ExecContext(
		ctx,
		query,
		record.DeviceID,
		record.AccessFingerprint,
		record.RefreshFingerprint,
		record.AccessExpiresAt,
		record.RefreshExpiresAt,
		permissions,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to replace device credentials")
	}
	return nil
}

// CompareAndSwap updates the record only while it still holds expectedRefreshFingerprint.
// The conditional UPDATE makes the swap atomic without an explicit lock.
func (p *PostgreSQLCredentialRepository) CompareAndSwap(
	ctx context.Context,
	expectedRefreshFingerprint string,
	next *authDomain.CredentialRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	permissions, err := json.Marshal(next.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode permissions")
	}

	query := `UPDATE device_credentials
			  SET access_fingerprint = $1,
				  refresh_fingerprint = $2,
				  access_expires_at = $3,
				  refresh_expires_at = $4,
				  permissions = $5,
				  version = version + 1,
				  updated_at = $6
			  WHERE device_id = $7 AND refresh_fingerprint = $8`

	result, err := querier.ExecContext(
		ctx,
		query,
		next.AccessFingerprint,
		next.RefreshFingerprint,
		next.AccessExpiresAt,
		next.RefreshExpiresAt,
		permissions,
		next.UpdatedAt,
		next.DeviceID,
		expectedRefreshFingerprint,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to swap device credentials")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return authDomain.ErrCredentialsConflict
	}
	return nil
}

// Delete removes the device's credential record.
func (p *PostgreSQLCredentialRepository) Delete(ctx context.Context, deviceID string) error {
	querier := database.GetTx(ctx, p.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM device_credentials WHERE device_id = $1`, deviceID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete device credentials")
	}
	return nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL credential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}
