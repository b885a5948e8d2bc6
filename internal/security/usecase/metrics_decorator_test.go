package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

type stubDeviceSecurity struct {
	DeviceSecurity
	allow   bool
	authErr error
}

func (s *stubDeviceSecurity) AuthorizeDeviceAction(context.Context, string, string, map[string]any) bool {
	return s.allow
}

func (s *stubDeviceSecurity) AuthenticateDevice(
	context.Context,
	string,
	authDomain.DeviceAuthCredentials,
	authDomain.AuthContext,
) (*authDomain.DeviceCredentials, error) {
	if s.authErr != nil {
		return nil, s.authErr
	}
	return &authDomain.DeviceCredentials{DeviceID: "lock-1"}, nil
}

func TestDeviceSecurityWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RecordsDecision", func(t *testing.T) {
		m := &mockBusinessMetrics{}
		m.On("RecordOperation", ctx, "device_security", "action_authorize", "success").Return()
		m.On("RecordDuration", ctx, "device_security", "action_authorize", mock.AnythingOfType("time.Duration"), "success").
			Return()

		decorated := NewDeviceSecurityWithMetrics(&stubDeviceSecurity{allow: true}, m)
		assert.True(t, decorated.AuthorizeDeviceAction(ctx, "lock-1", "control:lock", nil))
		m.AssertExpectations(t)
	})

	t.Run("Success_RecordsDenial", func(t *testing.T) {
		m := &mockBusinessMetrics{}
		m.On("RecordOperation", ctx, "device_security", "action_authorize", "denied").Return()
		m.On("RecordDuration", ctx, "device_security", "action_authorize", mock.AnythingOfType("time.Duration"), "denied").
			Return()

		decorated := NewDeviceSecurityWithMetrics(&stubDeviceSecurity{}, m)
		assert.False(t, decorated.AuthorizeDeviceAction(ctx, "lock-1", "control:lock", nil))
		m.AssertExpectations(t)
	})

	t.Run("Error_RecordsFailedAuthentication", func(t *testing.T) {
		m := &mockBusinessMetrics{}
		m.On("RecordOperation", ctx, "device_security", "authenticate", "error").Return()
		m.On("RecordDuration", ctx, "device_security", "authenticate", mock.AnythingOfType("time.Duration"), "error").
			Return()

		decorated := NewDeviceSecurityWithMetrics(&stubDeviceSecurity{authErr: errors.New("boom")}, m)
		_, err := decorated.AuthenticateDevice(ctx, "lock-1", authDomain.DeviceAuthCredentials{}, authDomain.AuthContext{})
		assert.Error(t, err)
		m.AssertExpectations(t)
	})
}
