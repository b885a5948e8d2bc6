package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/devicetrust/internal/database"
	apperrors "github.com/allisson/devicetrust/internal/errors"
	pkiDomain "github.com/allisson/devicetrust/internal/pki/domain"
)

// MySQLCertificateRepository implements certificate persistence for MySQL.
type MySQLCertificateRepository struct {
	db *sql.DB
}

// NewMySQLCertificateRepository creates a new MySQL certificate repository.
func NewMySQLCertificateRepository(db *sql.DB) *MySQLCertificateRepository {
	return &MySQLCertificateRepository{db: db}
}

// Get retrieves the device's certificate record.
func (m *MySQLCertificateRepository) Get(
	ctx context.Context,
	deviceID string,
) (*pkiDomain.DeviceCertificate, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT device_id, serial_number, certificate, public_key, issued_at, expires_at, revoked_at
			  FROM device_certificates WHERE device_id = ?`

	var cert pkiDomain.DeviceCertificate
	var revokedAt sql.NullTime

	err := querier.QueryRowContext(ctx, query, deviceID).Scan(
		&cert.DeviceID,
		&cert.SerialNumber,
		&cert.Certificate,
		&cert.PublicKey,
		&cert.IssuedAt,
		&cert.ExpiresAt,
		&revokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkiDomain.ErrCertificateNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get device certificate")
	}

	if revokedAt.Valid {
		cert.RevokedAt = &revokedAt.Time
	}
	return &cert, nil
}

// Upsert inserts or replaces the device's certificate. A revoked row keeps its columns,
// so the stored certificate is read back to tell a replacement from a refusal.
func (m *MySQLCertificateRepository) Upsert(ctx context.Context, cert *pkiDomain.DeviceCertificate) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO device_certificates (device_id, serial_number, certificate, public_key,
			  issued_at, expires_at, revoked_at)
			  VALUES (?, ?, ?, ?, ?, ?, NULL)
			  ON DUPLICATE KEY UPDATE
			  serial_number = IF(revoked_at IS NULL, VALUES(serial_number), serial_number),
			  certificate = IF(revoked_at IS NULL, VALUES(certificate), certificate),
			  public_key = IF(revoked_at IS NULL, VALUES(public_key), public_key),
			  issued_at = IF(revoked_at IS NULL, VALUES(issued_at), issued_at),
			  expires_at = IF(revoked_at IS NULL, VALUES(expires_at), expires_at)`

	_, err := querier.ExecContext(
		ctx,
		query,
		cert.DeviceID,
		cert.SerialNumber,
		cert.Certificate,
		cert.PublicKey,
		cert.IssuedAt,
		cert.ExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to store device certificate")
	}

	stored, err := m.Get(ctx, cert.DeviceID)
	if err != nil {
		return err
	}
	if stored.Revoked() {
		return pkiDomain.ErrCertificateRevoked
	}
	return nil
}

// Revoke sets revoked_at once. It reports false when the certificate was already revoked.
func (m *MySQLCertificateRepository) Revoke(
	ctx context.Context,
	deviceID string,
	revokedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(
		ctx,
		`UPDATE device_certificates SET revoked_at = ? WHERE device_id = ? AND revoked_at IS NULL`,
		revokedAt,
		deviceID,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to revoke device certificate")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows > 0 {
		return true, nil
	}

	if _, err := m.Get(ctx, deviceID); err != nil {
		return false, err
	}
	return false, nil
}
