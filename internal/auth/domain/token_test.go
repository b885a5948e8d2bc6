package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClaims_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name      string
		expiresAt int64
		want      bool
	}{
		{"future", now.Unix() + 60, false},
		{"exactly now", now.Unix(), true},
		{"past", now.Unix() - 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Claims{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, c.Expired(now))
		})
	}
}

func TestDeviceCredentials_HasPermission(t *testing.T) {
	creds := &DeviceCredentials{Permissions: []string{"read:sensor", "control:lock"}}

	assert.True(t, creds.HasPermission("control:lock"))
	assert.False(t, creds.HasPermission("read:video"))
}
