package usecase

import (
	"context"
	"fmt"
	"log/slog"

	auditDomain "github.com/allisson/devicetrust/internal/audit/domain"
	auditUseCase "github.com/allisson/devicetrust/internal/audit/usecase"
	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
	authUseCase "github.com/allisson/devicetrust/internal/auth/usecase"
	"github.com/allisson/devicetrust/internal/config"
	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/devicetrust/internal/crypto/usecase"
	"github.com/allisson/devicetrust/internal/database"
	deviceDomain "github.com/allisson/devicetrust/internal/device/domain"
	apperrors "github.com/allisson/devicetrust/internal/errors"
	pkiDomain "github.com/allisson/devicetrust/internal/pki/domain"
	pkiUseCase "github.com/allisson/devicetrust/internal/pki/usecase"
	"github.com/allisson/devicetrust/internal/ratelimit"
	"github.com/allisson/devicetrust/internal/validation"
)

// Dependencies are the collaborators of the facade.
type Dependencies struct {
	Config       *config.Config
	TxManager    database.TxManager
	Registry     deviceDomain.Registry
	Tokens       authUseCase.TokenUseCase
	Pairing      authUseCase.PairingUseCase
	Encryption   cryptoUseCase.EncryptionUseCase
	Certificates pkiUseCase.CertificateUseCase
	Resolver     PermissionResolver
	Limiter      ratelimit.Limiter
	Audit        auditUseCase.AuditUseCase
	Logger       *slog.Logger
}

type deviceSecurity struct {
	Dependencies
}

// NewDeviceSecurity creates the DeviceSecurity facade.
func NewDeviceSecurity(deps Dependencies) DeviceSecurity {
	return &deviceSecurity{Dependencies: deps}
}

// record writes a security event. The error is only returned for callers that
// honour AUDIT_FAIL_CLOSED; the audit sink has already logged and counted it.
func (s *deviceSecurity) record(
	ctx context.Context,
	eventType auditDomain.EventType,
	deviceID string,
	details map[string]any,
) error {
	return s.Audit.Log(ctx, eventType, deviceID, details)
}

// permitRecorded records a permit and reports whether the permit stands.
func (s *deviceSecurity) permitRecorded(
	ctx context.Context,
	eventType auditDomain.EventType,
	deviceID string,
	details map[string]any,
) bool {
	if err := s.record(ctx, eventType, deviceID, details); err != nil && s.Config.AuditFailClosed {
		return false
	}
	return true
}

func (s *deviceSecurity) lookupDevice(ctx context.Context, deviceID string) (*deviceDomain.Device, error) {
	if s.Config.RegistryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Config.RegistryTimeout)
		defer cancel()
	}

	device, err := s.Registry.GetDevice(ctx, deviceID)
	if err != nil {
		if apperrors.Is(err, deviceDomain.ErrDeviceNotFound) || apperrors.Is(err, deviceDomain.ErrRegistryUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", deviceDomain.ErrRegistryUnavailable, err)
	}
	return device, nil
}

func lookupFailureReason(err error) string {
	if apperrors.Is(err, deviceDomain.ErrDeviceNotFound) {
		return "unknown_device"
	}
	return "registry_unavailable"
}

// AuthenticateDevice implements DeviceSecurity.
func (s *deviceSecurity) AuthenticateDevice(
	ctx context.Context,
	deviceID string,
	creds authDomain.DeviceAuthCredentials,
	authCtx authDomain.AuthContext,
) (*authDomain.DeviceCredentials, error) {
	details := map[string]any{}
	if authCtx.Protocol != "" {
		details["protocol"] = authCtx.Protocol
	}
	if authCtx.RemoteAddr != "" {
		details["remote_addr"] = authCtx.RemoteAddr
	}
	if authCtx.RequestID != "" {
		details["request_id"] = authCtx.RequestID
	}

	fail := func(reason string, err error) (*authDomain.DeviceCredentials, error) {
		details["reason"] = reason
		_ = s.record(ctx, auditDomain.EventAuthenticationFailure, deviceID, details)
		s.Logger.Debug("device authentication failed",
			slog.String("device_id", deviceID),
			slog.String("reason", reason))
		return nil, err
	}

	if err := validation.ValidateDeviceID(deviceID); err != nil {
		return fail("invalid_device_id", authDomain.ErrAuthenticationFailed)
	}

	device, err := s.lookupDevice(ctx, deviceID)
	if err != nil {
		if apperrors.Is(err, deviceDomain.ErrDeviceNotFound) {
			return fail("unknown_device", authDomain.ErrAuthenticationFailed)
		}
		return fail("registry_unavailable", err)
	}

	if authCtx.Protocol != "" && authCtx.Protocol != string(device.Protocol) {
		return fail("protocol_mismatch", authDomain.ErrAuthenticationFailed)
	}

	status, err := s.Certificates.Status(ctx, deviceID)
	if err != nil {
		return fail("certificate_store_unavailable", err)
	}
	certificateRequired := status != pkiDomain.StatusNonExistent || s.Config.RequireDeviceCertificate
	if certificateRequired {
		if len(creds.Certificate) == 0 {
			return fail("certificate_missing", authDomain.ErrAuthenticationFailed)
		}
		if err := s.Certificates.Verify(ctx, deviceID, creds.Certificate); err != nil {
			_ = s.record(ctx, auditDomain.EventCertificateInvalid, deviceID, map[string]any{
				"status": string(status),
				"stage":  "authentication",
			})
			return fail("certificate_invalid",
				fmt.Errorf("%w: %w", authDomain.ErrAuthenticationFailed, pkiDomain.ErrCertificateInvalid))
		}
	}

	pairing, err := s.Pairing.Check(ctx, deviceID, creds.PairingSecret)
	if err != nil {
		return fail("pairing_store_unavailable", err)
	}
	switch pairing {
	case authDomain.PairingMismatch:
		return fail("pairing_mismatch", authDomain.ErrAuthenticationFailed)
	case authDomain.PairingNotProvisioned:
		if !certificateRequired {
			return fail("not_provisioned", authDomain.ErrAuthenticationFailed)
		}
	}

	permissions := s.Resolver.PermissionsFor(device.Type)
	issued, err := s.Tokens.IssueCredentials(ctx, deviceID, permissions)
	if err != nil {
		return fail("credential_store_unavailable", err)
	}

	details["device_type"] = string(device.Type)
	details["certificate"] = certificateRequired
	if err := s.record(ctx, auditDomain.EventAuthenticationSuccess, deviceID, details); err != nil &&
		s.Config.AuditFailClosed {
		_ = s.Tokens.Revoke(ctx, deviceID)
		return nil, err
	}
	return issued, nil
}

// VerifyAccessToken implements DeviceSecurity.
func (s *deviceSecurity) VerifyAccessToken(ctx context.Context, deviceID, token string) bool {
	if validation.ValidateDeviceID(deviceID) != nil {
		return false
	}
	return s.Tokens.VerifyAccessToken(ctx, deviceID, token)
}

// RefreshDeviceToken implements DeviceSecurity.
func (s *deviceSecurity) RefreshDeviceToken(
	ctx context.Context,
	deviceID, refreshToken string,
) (*authDomain.DeviceCredentials, error) {
	if err := validation.ValidateDeviceID(deviceID); err != nil {
		_ = s.record(ctx, auditDomain.EventTokenRefreshFailed, deviceID, map[string]any{"reason": "invalid_device_id"})
		return nil, authDomain.ErrTokenInvalid
	}

	issued, err := s.Tokens.Refresh(ctx, deviceID, refreshToken)
	if err != nil {
		reason := "token_invalid"
		if !apperrors.Is(err, authDomain.ErrTokenInvalid) {
			reason = "credential_store_unavailable"
		}
		_ = s.record(ctx, auditDomain.EventTokenRefreshFailed, deviceID, map[string]any{"reason": reason})
		return nil, err
	}

	if err := s.record(ctx, auditDomain.EventTokenRefreshed, deviceID, nil); err != nil && s.Config.AuditFailClosed {
		_ = s.Tokens.Revoke(ctx, deviceID)
		return nil, err
	}
	return issued, nil
}

// EncryptMessage implements DeviceSecurity.
func (s *deviceSecurity) EncryptMessage(
	ctx context.Context,
	payload []byte,
	deviceID string,
) (*cryptoDomain.EncryptedMessage, error) {
	if err := validation.ValidateDeviceID(deviceID); err != nil {
		return nil, err
	}
	return s.Encryption.Encrypt(ctx, payload, deviceID)
}

// DecryptMessage implements DeviceSecurity.
func (s *deviceSecurity) DecryptMessage(
	ctx context.Context,
	msg *cryptoDomain.EncryptedMessage,
	deviceID string,
) ([]byte, error) {
	if validation.ValidateDeviceID(deviceID) != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := s.Encryption.Decrypt(ctx, msg, deviceID)
	if err != nil {
		_ = s.record(ctx, auditDomain.EventDecryptionFailed, deviceID, nil)
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

// GenerateDeviceCertificate implements DeviceSecurity.
func (s *deviceSecurity) GenerateDeviceCertificate(
	ctx context.Context,
	deviceID string,
) (*pkiDomain.DeviceCertificate, error) {
	if err := validation.ValidateDeviceID(deviceID); err != nil {
		return nil, err
	}
	if _, err := s.lookupDevice(ctx, deviceID); err != nil {
		return nil, err
	}

	cert, err := s.Certificates.Issue(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	_ = s.record(ctx, auditDomain.EventCertificateIssued, deviceID, map[string]any{
		"serial_number": cert.SerialNumber,
		"expires_at":    cert.ExpiresAt.Unix(),
	})
	return cert, nil
}

// VerifyDeviceCertificate implements DeviceSecurity.
func (s *deviceSecurity) VerifyDeviceCertificate(ctx context.Context, deviceID string, certificate []byte) bool {
	if validation.ValidateDeviceID(deviceID) != nil {
		return false
	}

	if err := s.Certificates.Verify(ctx, deviceID, certificate); err != nil {
		reason := "invalid"
		if apperrors.Is(err, pkiDomain.ErrCertificateNotFound) {
			reason = "not_found"
		} else if !apperrors.Is(err, pkiDomain.ErrCertificateInvalid) {
			reason = "certificate_store_unavailable"
		}
		_ = s.record(ctx, auditDomain.EventCertificateInvalid, deviceID, map[string]any{
			"reason": reason,
			"stage":  "verification",
		})
		return false
	}
	return true
}

// RevokeDeviceCertificate implements DeviceSecurity. When configured, the device's
// live credential set is dropped in the same transaction.
func (s *deviceSecurity) RevokeDeviceCertificate(ctx context.Context, deviceID string) error {
	if err := validation.ValidateDeviceID(deviceID); err != nil {
		return err
	}

	var changed bool
	err := s.TxManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		changed, err = s.Certificates.Revoke(ctx, deviceID)
		if err != nil {
			return err
		}
		if s.Config.RevocationInvalidatesCredentials {
			return s.Tokens.Revoke(ctx, deviceID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.record(ctx, auditDomain.EventCertificateRevoked, deviceID, map[string]any{
		"already_revoked":     !changed,
		"credentials_revoked": s.Config.RevocationInvalidatesCredentials,
	})
	return nil
}

// CheckDevicePermission implements DeviceSecurity.
func (s *deviceSecurity) CheckDevicePermission(ctx context.Context, deviceID, permission, resource string) bool {
	details := map[string]any{"permission": permission}
	if resource != "" {
		details["resource"] = resource
	}

	if validation.ValidateDeviceID(deviceID) != nil {
		details["reason"] = "invalid_device_id"
		_ = s.record(ctx, auditDomain.EventPermissionDenied, deviceID, details)
		return false
	}

	if reason, ok := s.checkPermission(ctx, deviceID, permission, resource); !ok {
		details["reason"] = reason
		_ = s.record(ctx, auditDomain.EventPermissionDenied, deviceID, details)
		return false
	}
	return s.permitRecorded(ctx, auditDomain.EventPermissionGranted, deviceID, details)
}

// checkPermission resolves the device and applies the resolver without recording anything.
func (s *deviceSecurity) checkPermission(ctx context.Context, deviceID, permission, resource string) (string, bool) {
	device, err := s.lookupDevice(ctx, deviceID)
	if err != nil {
		return lookupFailureReason(err), false
	}
	if !s.Resolver.Check(ctx, device, permission, "") {
		return "capability", false
	}
	if resource != "" && !s.Resolver.Check(ctx, device, permission, resource) {
		return "resource_scope", false
	}
	return "", true
}

// AuthorizeDeviceAction implements DeviceSecurity.
func (s *deviceSecurity) AuthorizeDeviceAction(
	ctx context.Context,
	deviceID, action string,
	params map[string]any,
) bool {
	details := map[string]any{"action": action}

	if validation.ValidateDeviceID(deviceID) != nil {
		details["reason"] = "invalid_device_id"
		_ = s.record(ctx, auditDomain.EventInvalidParameters, deviceID, details)
		return false
	}

	if !s.Limiter.Allow(deviceID, action) {
		details["reason"] = ratelimit.ErrRateLimitExceeded.Error()
		_ = s.record(ctx, auditDomain.EventRateLimitExceeded, deviceID, details)
		return false
	}

	if reason, ok := s.checkPermission(ctx, deviceID, action, ""); !ok {
		details["reason"] = reason
		_ = s.record(ctx, auditDomain.EventPermissionDenied, deviceID, details)
		return false
	}

	if err := validation.ValidateActionParameters(action, params); err != nil {
		details["reason"] = err.Error()
		_ = s.record(ctx, auditDomain.EventInvalidParameters, deviceID, details)
		return false
	}

	return s.permitRecorded(ctx, auditDomain.EventActionAuthorized, deviceID, details)
}

// GetSecurityEvents implements DeviceSecurity.
func (s *deviceSecurity) GetSecurityEvents(
	ctx context.Context,
	deviceID string,
	limit int,
) ([]*auditDomain.SecurityEvent, error) {
	if deviceID != "" {
		if err := validation.ValidateDeviceID(deviceID); err != nil {
			return nil, err
		}
	}
	return s.Audit.Query(ctx, deviceID, limit)
}
