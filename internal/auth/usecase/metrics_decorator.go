package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
	"github.com/allisson/devicetrust/internal/metrics"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, failed bool) {
	status := "success"
	if failed {
		status = "error"
	}
	t.metrics.RecordOperation(ctx, "auth", operation, status)
	t.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// IssueCredentials records metrics for credential issuance.
func (t *tokenUseCaseWithMetrics) IssueCredentials(
	ctx context.Context,
	deviceID string,
	permissions []string,
) (*authDomain.DeviceCredentials, error) {
	start := time.Now()
	creds, err := t.next.IssueCredentials(ctx, deviceID, permissions)
	t.record(ctx, "token_issue", start, err != nil)
	return creds, err
}

// VerifyAccessToken records metrics for token verification. A rejected token counts as an error.
func (t *tokenUseCaseWithMetrics) VerifyAccessToken(ctx context.Context, deviceID, token string) bool {
	start := time.Now()
	ok := t.next.VerifyAccessToken(ctx, deviceID, token)
	t.record(ctx, "token_verify", start, !ok)
	return ok
}

// Refresh records metrics for token refresh.
func (t *tokenUseCaseWithMetrics) Refresh(
	ctx context.Context,
	deviceID, refreshToken string,
) (*authDomain.DeviceCredentials, error) {
	start := time.Now()
	creds, err := t.next.Refresh(ctx, deviceID, refreshToken)
	t.record(ctx, "token_refresh", start, err != nil)
	return creds, err
}

// Revoke records metrics for credential revocation.
func (t *tokenUseCaseWithMetrics) Revoke(ctx context.Context, deviceID string) error {
	start := time.Now()
	err := t.next.Revoke(ctx, deviceID)
	t.record(ctx, "token_revoke", start, err != nil)
	return err
}
