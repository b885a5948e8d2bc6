// Package usecase implements the device security facade: the single entry point the
// device gateway uses for authentication, tokens, message encryption, certificates,
// permission checks, action authorization and the security event trail.
package usecase

import (
	"context"

	auditDomain "github.com/allisson/devicetrust/internal/audit/domain"
	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
	deviceDomain "github.com/allisson/devicetrust/internal/device/domain"
	pkiDomain "github.com/allisson/devicetrust/internal/pki/domain"
)

// PermissionResolver maps device types to capabilities and checks resource scope.
type PermissionResolver interface {
	PermissionsFor(deviceType deviceDomain.DeviceType) []string
	Check(ctx context.Context, device *deviceDomain.Device, permission, resource string) bool
}

// DeviceSecurity is the device trust and access-control facade.
//
// Boolean operations never fail: malformed input, unknown devices and unavailable
// dependencies all yield false. Operations returning an error distinguish
// authentication failures from unavailable dependencies through the wrapped sentinel.
type DeviceSecurity interface {
	// AuthenticateDevice checks the presented certificate and pairing secret and
	// issues a fresh credential set, replacing any previous one.
	AuthenticateDevice(
		ctx context.Context,
		deviceID string,
		creds authDomain.DeviceAuthCredentials,
		authCtx authDomain.AuthContext,
	) (*authDomain.DeviceCredentials, error)

	// VerifyAccessToken reports whether token is the device's current, unexpired access token.
	VerifyAccessToken(ctx context.Context, deviceID, token string) bool

	// RefreshDeviceToken exchanges the current refresh token for a new credential set.
	RefreshDeviceToken(ctx context.Context, deviceID, refreshToken string) (*authDomain.DeviceCredentials, error)

	// EncryptMessage seals payload for the device.
	EncryptMessage(ctx context.Context, payload []byte, deviceID string) (*cryptoDomain.EncryptedMessage, error)

	// DecryptMessage opens msg for the device and fails closed.
	DecryptMessage(ctx context.Context, msg *cryptoDomain.EncryptedMessage, deviceID string) ([]byte, error)

	// GenerateDeviceCertificate issues a certificate for a registered device. The
	// private key in the result is not retained.
	GenerateDeviceCertificate(ctx context.Context, deviceID string) (*pkiDomain.DeviceCertificate, error)

	// VerifyDeviceCertificate reports whether certificate is the device's current valid certificate.
	VerifyDeviceCertificate(ctx context.Context, deviceID string, certificate []byte) bool

	// RevokeDeviceCertificate permanently revokes the device's certificate. Revoking
	// twice is not an error.
	RevokeDeviceCertificate(ctx context.Context, deviceID string) error

	// CheckDevicePermission reports whether the device holds permission, scoped to
	// resource when resource is not empty.
	CheckDevicePermission(ctx context.Context, deviceID, permission, resource string) bool

	// AuthorizeDeviceAction runs the rate, permission and parameter checks in that
	// order. Every call records exactly one security event.
	AuthorizeDeviceAction(ctx context.Context, deviceID, action string, params map[string]any) bool

	// GetSecurityEvents returns recent security events, newest first. An empty
	// deviceID returns events of every device.
	GetSecurityEvents(ctx context.Context, deviceID string, limit int) ([]*auditDomain.SecurityEvent, error)
}
