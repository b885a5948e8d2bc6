package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	auditDomain "github.com/allisson/devicetrust/internal/audit/domain"
	"github.com/allisson/devicetrust/internal/database"
	apperrors "github.com/allisson/devicetrust/internal/errors"
)

// PostgreSQLSecurityEventRepository implements security event persistence for PostgreSQL.
type PostgreSQLSecurityEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLSecurityEventRepository creates a new PostgreSQL security event repository.
func NewPostgreSQLSecurityEventRepository(db *sql.DB) *PostgreSQLSecurityEventRepository {
	return &PostgreSQLSecurityEventRepository{db: db}
}

func marshalDetails(details map[string]any) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal security event details")
	}
	return data, nil
}

// Append inserts a security event. Nil details are stored as NULL.
func (p *PostgreSQLSecurityEventRepository) Append(ctx context.Context, event *auditDomain.SecurityEvent) error {
	querier := database.GetTx(ctx, p.db)

	details, err := marshalDetails(event.Details)
	if err != nil {
		return err
	}

	query := `INSERT INTO security_events (id, event_type, device_id, details, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = querier.ExecContext(
		ctx,
		query,
		event.ID,
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
func (p *PostgreSQLSecurityEventRepository) List(
	ctx context.Context,
	deviceID string,
	offset, limit int,
) ([]*auditDomain.SecurityEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, event_type, device_id, details, signature, created_at
			  FROM security_events
			  WHERE ($1 = '' OR device_id = $1)
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, deviceID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security events")
	}
	return scanEvents(rows)
}

// DeleteOlderThan removes events created before the cutoff. With dryRun it only counts them.
func (p *PostgreSQLSecurityEventRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM security_events WHERE created_at < $1`, before).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count security events")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM security_events WHERE created_at < $1`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete security events")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return count, nil
}

func scanEvents(rows *sql.Rows) ([]*auditDomain.SecurityEvent, error) {
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.SecurityEvent, 0)
	for rows.Next() {
		var event auditDomain.SecurityEvent
		var eventType string
		var details []byte

		err := rows.Scan(
			&event.ID,
			&eventType,
			&event.DeviceID,
			&details,
			&event.Signature,
			&event.Timestamp,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan security event")
		}

		event.EventType = auditDomain.EventType(eventType)
		event.Timestamp = event.Timestamp.UTC()
		if details != nil {
			if err := json.Unmarshal(details, &event.Details); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal security event details")
			}
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate security events")
	}
	return events, nil
}
