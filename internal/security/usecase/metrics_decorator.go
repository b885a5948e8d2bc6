package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/devicetrust/internal/audit/domain"
	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
	"github.com/allisson/devicetrust/internal/metrics"
	pkiDomain "github.com/allisson/devicetrust/internal/pki/domain"
)

const metricsDomain = "device_security"

// deviceSecurityWithMetrics decorates DeviceSecurity with metrics instrumentation.
type deviceSecurityWithMetrics struct {
	next    DeviceSecurity
	metrics metrics.BusinessMetrics
}

// NewDeviceSecurityWithMetrics wraps a DeviceSecurity with metrics recording.
// Negative boolean decisions are recorded with metrics.StatusDenied.
func NewDeviceSecurityWithMetrics(next DeviceSecurity, m metrics.BusinessMetrics) DeviceSecurity {
	return &deviceSecurityWithMetrics{next: next, metrics: m}
}

func (d *deviceSecurityWithMetrics) record(ctx context.Context, operation, status string, start time.Time) {
	metrics.Observe(ctx, d.metrics, metricsDomain, operation, status, start)
}

func (d *deviceSecurityWithMetrics) AuthenticateDevice(
	ctx context.Context,
	deviceID string,
	creds authDomain.DeviceAuthCredentials,
	authCtx authDomain.AuthContext,
) (*authDomain.DeviceCredentials, error) {
	start := time.Now()
	issued, err := d.next.AuthenticateDevice(ctx, deviceID, creds, authCtx)
	d.record(ctx, "authenticate", metrics.StatusOf(err), start)
	return issued, err
}

func (d *deviceSecurityWithMetrics) VerifyAccessToken(ctx context.Context, deviceID, token string) bool {
	start := time.Now()
	ok := d.next.VerifyAccessToken(ctx, deviceID, token)
	d.record(ctx, "verify_access_token", metrics.DecisionStatus(ok), start)
	return ok
}

func (d *deviceSecurityWithMetrics) RefreshDeviceToken(
	ctx context.Context,
	deviceID, refreshToken string,
) (*authDomain.DeviceCredentials, error) {
	start := time.Now()
	issued, err := d.next.RefreshDeviceToken(ctx, deviceID, refreshToken)
	d.record(ctx, "refresh_token", metrics.StatusOf(err), start)
	return issued, err
}

func (d *deviceSecurityWithMetrics) EncryptMessage(
	ctx context.Context,
	payload []byte,
	deviceID string,
) (*cryptoDomain.EncryptedMessage, error) {
	start := time.Now()
	msg, err := d.next.EncryptMessage(ctx, payload, deviceID)
	d.record(ctx, "encrypt_message", metrics.StatusOf(err), start)
	return msg, err
}

func (d *deviceSecurityWithMetrics) DecryptMessage(
	ctx context.Context,
	msg *cryptoDomain.EncryptedMessage,
	deviceID string,
) ([]byte, error) {
	start := time.Now()
	plaintext, err := d.next.DecryptMessage(ctx, msg, deviceID)
	d.record(ctx, "decrypt_message", metrics.StatusOf(err), start)
	return plaintext, err
}

func (d *deviceSecurityWithMetrics) GenerateDeviceCertificate(
	ctx context.Context,
	deviceID string,
) (*pkiDomain.DeviceCertificate, error) {
	start := time.Now()
	cert, err := d.next.GenerateDeviceCertificate(ctx, deviceID)
	d.record(ctx, "certificate_issue", metrics.StatusOf(err), start)
	return cert, err
}

func (d *deviceSecurityWithMetrics) VerifyDeviceCertificate(
	ctx context.Context,
	deviceID string,
	certificate []byte,
) bool {
	start := time.Now()
	ok := d.next.VerifyDeviceCertificate(ctx, deviceID, certificate)
	d.record(ctx, "certificate_verify", metrics.DecisionStatus(ok), start)
	return ok
}

func (d *deviceSecurityWithMetrics) RevokeDeviceCertificate(ctx context.Context, deviceID string) error {
	start := time.Now()
	err := d.next.RevokeDeviceCertificate(ctx, deviceID)
	d.record(ctx, "certificate_revoke", metrics.StatusOf(err), start)
	return err
}

func (d *deviceSecurityWithMetrics) CheckDevicePermission(
	ctx context.Context,
	deviceID, permission, resource string,
) bool {
	start := time.Now()
	ok := d.next.CheckDevicePermission(ctx, deviceID, permission, resource)
	d.record(ctx, "permission_check", metrics.DecisionStatus(ok), start)
	return ok
}

func (d *deviceSecurityWithMetrics) AuthorizeDeviceAction(
	ctx context.Context,
	deviceID, action string,
	params map[string]any,
) bool {
	start := time.Now()
	ok := d.next.AuthorizeDeviceAction(ctx, deviceID, action, params)
	d.record(ctx, "action_authorize", metrics.DecisionStatus(ok), start)
	return ok
}

func (d *deviceSecurityWithMetrics) GetSecurityEvents(
	ctx context.Context,
	deviceID string,
	limit int,
) ([]*auditDomain.SecurityEvent, error) {
	start := time.Now()
	events, err := d.next.GetSecurityEvents(ctx, deviceID, limit)
	d.record(ctx, "security_events_query", metrics.StatusOf(err), start)
	return events, err
}
