package repository

import (
	"context"
	"database/sql"
	"time"

	auditDomain "github.com/allisson/devicetrust/internal/audit/domain"
	"github.com/allisson/devicetrust/internal/database"
	apperrors "github.com/allisson/devicetrust/internal/errors"
)

// MySQLSecurityEventRepository implements security event persistence for MySQL.
// Event ids are stored as BINARY(16).
type MySQLSecurityEventRepository struct {
	db *sql.DB
}

// NewMySQLSecurityEventRepository creates a new MySQL security event repository.
func NewMySQLSecurityEventRepository(db *sql.DB) *MySQLSecurityEventRepository {
	return &MySQLSecurityEventRepository{db: db}
}

// Append inserts a security event. Nil details are stored as NULL.
func (m *MySQLSecurityEventRepository) Append(ctx context.Context, event *auditDomain.SecurityEvent) error {
	querier := database.GetTx(ctx, m.db)

	details, err := marshalDetails(event.Details)
	if err != nil {
		return err
	}

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal security event id")
	}

	query := `INSERT INTO security_events (id, event_type, device_id, details, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		string(event.EventType),
		event.DeviceID,
		details,
		event.Signature,
		event.Timestamp,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to append security event")
	}
	return nil
}

// List returns events newest first, optionally filtered by device.
func (m *MySQLSecurityEventRepository) List(
	ctx context.Context,
	deviceID string,
	offset, limit int,
) ([]*auditDomain.SecurityEvent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, event_type, device_id, details, signature, created_at
			  FROM security_events
			  WHERE (? = '' OR device_id = ?)
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, deviceID, deviceID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security events")
	}
	return scanEvents(rows)
}

// DeleteOlderThan removes events created before the cutoff. With dryRun it only counts them.
func (m *MySQLSecurityEventRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM security_events WHERE created_at < ?`, before).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count security events")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM security_events WHERE created_at < ?`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete security events")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return count, nil
}
