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

// MySQLCredentialRepository implements credential persistence for MySQL.
// Uses transaction support via database.GetTx(). Requires parseTime=true in the DSN.
type MySQLCredentialRepository struct {
	db *sql.DB
}

// Get retrieves the device's credential record. Returns ErrCredentialsNotFound if none exists.
func (m *MySQLCredentialRepository) Get(
	ctx context.Context,
	deviceID string,
) (*authDomain.CredentialRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT device_id, access_fingerprint, refresh_fingerprint, access_expires_at,
			  refresh_expires_at, permissions, version, updated_at
			  FROM device_credentials WHERE device_id = ?`

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
func (m *MySQLCredentialRepository) Replace(
	ctx context.Context,
	record *authDomain.CredentialRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	permissions, err := json.Marshal(record.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode permissions")
	}

	query := `INSERT INTO device_credentials (device_id, access_fingerprint, refresh_fingerprint,
			  access_expires_at, refresh_expires_at, permissions, version, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, 1, ?)
			  ON DUPLICATE KEY UPDATE
			  access_fingerprint = VALUES(access_fingerprint),
			  refresh_fingerprint = VALUES(refresh_fingerprint),
			  access_expires_at = VALUES(access_expires_at),
			  refresh_expires_at = VALUES(refresh_expires_at),
			  permissions = VALUES(permissions),
			  version = version + 1,
			  updated_at = VALUES(updated_at)`

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
func (m *MySQLCredentialRepository) CompareAndSwap(
	ctx context.Context,
	expectedRefreshFingerprint string,
	next *authDomain.CredentialRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	permissions, err := json.Marshal(next.Permissions)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode permissions")
	}

	query := `UPDATE device_credentials
			  SET access_fingerprint = ?,
				  refresh_fingerprint = ?,
				  access_expires_at = ?,
				  refresh_expires_at = ?,
				  permissions = ?,
				  version = version + 1,
				  updated_at = ?
			  WHERE device_id = ? AND refresh_fingerprint = ?`

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
func (m *MySQLCredentialRepository) Delete(ctx context.Context, deviceID string) error {
	querier := database.GetTx(ctx, m.db)

	_, err := querier.ExecContext(ctx, `DELETE FROM device_credentials WHERE device_id = ?`, deviceID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete device credentials")
	}
	return nil
}

// NewMySQLCredentialRepository creates a new MySQL credential repository.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
