package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/devicetrust/internal/audit/domain"
	auditService "github.com/allisson/devicetrust/internal/audit/service"
	"github.com/allisson/devicetrust/internal/config"
	apperrors "github.com/allisson/devicetrust/internal/errors"
	"github.com/allisson/devicetrust/internal/metrics"
)

// sensitiveDetailKeys never reach the audit store.
var sensitiveDetailKeys = map[string]struct{}{
	"token":         {},
	"access_token":  {},
	"refresh_token": {},
	"secret":        {},
	"private_key":   {},
	"plaintext":     {},
	"key":           {},
	"payload":       {},
}

type auditUseCase struct {
	eventRepo SecurityEventRepository
	signer    auditService.EventSigner
	metrics   metrics.BusinessMetrics
	logger    *slog.Logger
	timeout   time.Duration
	maxLimit  int
	now       func() time.Time
}

// NewAuditUseCase creates an AuditUseCase.
func NewAuditUseCase(
	cfg *config.Config,
	eventRepo SecurityEventRepository,
	signer auditService.EventSigner,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) AuditUseCase {
	return &auditUseCase{
		eventRepo: eventRepo,
		signer:    signer,
		metrics:   businessMetrics,
		logger:    logger,
		timeout:   cfg.AuditTimeout,
		maxLimit:  cfg.AuditQueryMaxLimit,
		now:       time.Now,
	}
}

func scrubDetails(details map[string]any) map[string]any {
	if len(details) == 0 {
		return nil
	}
	scrubbed := make(map[string]any, len(details))
	for k, v := range details {
		if _, sensitive := sensitiveDetailKeys[k]; sensitive {
			continue
		}
		scrubbed[k] = v
	}
	return scrubbed
}

// Log implements AuditUseCase.
func (a *auditUseCase) Log(
	ctx context.Context,
	eventType auditDomain.EventType,
	deviceID string,
	details map[string]any,
) error {
	start := time.Now()
	event := &auditDomain.SecurityEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		DeviceID:  deviceID,
		Details:   scrubDetails(details),
		Timestamp: a.now().UTC().Truncate(time.Microsecond),
	}

	err := a.write(ctx, event)

	status := "success"
	if err != nil {
		status = "error"
		a.logger.Error("failed to write security event",
			slog.String("device_id", deviceID),
			slog.String("event_type", string(eventType)),
			slog.Any("error", err))
	}
	a.metrics.RecordOperation(ctx, "audit", "event_write", status)
	a.metrics.RecordDuration(ctx, "audit", "event_write", time.Since(start), status)

	if err != nil {
		return fmt.Errorf("%w: %v", auditDomain.ErrAuditUnavailable, err)
	}
	return nil
}

func (a *auditUseCase) write(ctx context.Context, event *auditDomain.SecurityEvent) error {
	signature, err := a.signer.Sign(event)
	if err != nil {
		return err
	}
	event.Signature = signature

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.eventRepo.Append(ctx, event)
}

// clamp caps limit at the configured maximum. Non-positive limits are rejected.
func (a *auditUseCase) clamp(limit int) (int, error) {
	if limit < 1 {
		return 0, auditDomain.ErrInvalidLimit
	}
	return min(limit, a.maxLimit), nil
}

// Query implements AuditUseCase.
func (a *auditUseCase) Query(
	ctx context.Context,
	deviceID string,
	limit int,
) ([]*auditDomain.SecurityEvent, error) {
	limit, err := a.clamp(limit)
	if err != nil {
		return nil, err
	}
	events, err := a.eventRepo.List(ctx, deviceID, 0, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query security events")
	}
	return events, nil
}

// Verify implements AuditUseCase.
func (a *auditUseCase) Verify(ctx context.Context, offset, limit int) (*auditDomain.VerificationReport, error) {
	limit, err := a.clamp(limit)
	if err != nil {
		return nil, err
	}
	events, err := a.eventRepo.List(ctx, "", offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security events")
	}

	report := &auditDomain.VerificationReport{Total: len(events)}
	for _, event := range events {
		if err := a.signer.Verify(event); err != nil {
			report.Invalid++
			report.InvalidIDs = append(report.InvalidIDs, event.ID)
			continue
		}
		report.Valid++
	}
	return report, nil
}

// DeleteOlderThan implements AuditUseCase.
func (a *auditUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be zero or positive")
	}

	before := a.now().UTC().AddDate(0, 0, -days)
	count, err := a.eventRepo.DeleteOlderThan(ctx, before, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete security events")
	}
	return count, nil
}
