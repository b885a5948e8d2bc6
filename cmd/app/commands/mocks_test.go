package commands

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/devicetrust/internal/audit/domain"
	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
	deviceDomain "github.com/allisson/devicetrust/internal/device/domain"
	pkiDomain "github.com/allisson/devicetrust/internal/pki/domain"
	securityUseCase "github.com/allisson/devicetrust/internal/security/usecase"
)

type MockAuditUseCase struct {
	mock.Mock
}

func (m *MockAuditUseCase) Log(
	ctx context.Context,
	eventType auditDomain.EventType,
	deviceID string,
	details map[string]any,
) error {
	return m.Called(ctx, eventType, deviceID, details).Error(0)
}

func (m *MockAuditUseCase) Query(ctx context.Context, deviceID string, limit int) ([]*auditDomain.SecurityEvent, error) {
	args := m.Called(ctx, deviceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.SecurityEvent), args.Error(1)
}

func (m *MockAuditUseCase) Verify(ctx context.Context, offset, limit int) (*auditDomain.VerificationReport, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.VerificationReport), args.Error(1)
}

func (m *MockAuditUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

type MockPairingUseCase struct {
	mock.Mock
}

func (m *MockPairingUseCase) SetSecret(ctx context.Context, deviceID string) (string, error) {
	args := m.Called(ctx, deviceID)
	return args.String(0), args.Error(1)
}

func (m *MockPairingUseCase) Check(ctx context.Context, deviceID, secret string) (authDomain.PairingResult, error) {
	args := m.Called(ctx, deviceID, secret)
	return args.Get(0).(authDomain.PairingResult), args.Error(1)
}

type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) GetDevice(ctx context.Context, deviceID string) (*deviceDomain.Device, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deviceDomain.Device), args.Error(1)
}

// MockDeviceSecurity mocks the certificate operations used by the CLI. Any other
// method panics through the nil embedded interface.
type MockDeviceSecurity struct {
	securityUseCase.DeviceSecurity
	mock.Mock
}

func (m *MockDeviceSecurity) GenerateDeviceCertificate(
	ctx context.Context,
	deviceID string,
) (*pkiDomain.DeviceCertificate, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pkiDomain.DeviceCertificate), args.Error(1)
}

func (m *MockDeviceSecurity) RevokeDeviceCertificate(ctx context.Context, deviceID string) error {
	return m.Called(ctx, deviceID).Error(0)
}
