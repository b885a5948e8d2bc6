package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registryError struct {
	DeviceID string
}

func (e registryError) Error() string { return "registry lookup failed for " + e.DeviceID }

func TestWrap(t *testing.T) {
	t.Run("Success_PreservesChain", func(t *testing.T) {
		wrapped := Wrap(ErrNotFound, "device lock-1")

		require.Error(t, wrapped)
		assert.Equal(t, "device lock-1: not found", wrapped.Error())
		assert.ErrorIs(t, wrapped, ErrNotFound)
	})

	t.Run("Success_DomainErrorOverSentinel", func(t *testing.T) {
		domainErr := Wrap(ErrUnavailable, "registry unavailable")
		wrapped := Wrap(domainErr, "authenticate device")

		assert.ErrorIs(t, wrapped, domainErr)
		assert.ErrorIs(t, wrapped, ErrUnavailable)
		assert.NotErrorIs(t, wrapped, ErrNotFound)
	})

	t.Run("Success_NilStaysNil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
	})
}

func TestWrapf(t *testing.T) {
	t.Run("Success_FormatsMessage", func(t *testing.T) {
		wrapped := Wrapf(ErrTooManyRequests, "action %s for %s", "control:lock", "lock-1")

		assert.Equal(t, "action control:lock for lock-1: too many requests", wrapped.Error())
		assert.ErrorIs(t, wrapped, ErrTooManyRequests)
	})

	t.Run("Success_NilStaysNil", func(t *testing.T) {
		assert.NoError(t, Wrapf(nil, "action %s", "control:lock"))
	})
}

func TestIsAndAs(t *testing.T) {
	wrapped := Wrap(registryError{DeviceID: "cam-1"}, "lookup")

	var target registryError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "cam-1", target.DeviceID)

	assert.True(t, Is(Wrap(ErrForbidden, "control:ptz"), ErrForbidden))
	assert.False(t, Is(ErrForbidden, ErrUnauthorized))
}

func TestNew(t *testing.T) {
	err := New("certificate mismatch")

	assert.EqualError(t, err, "certificate mismatch")
	assert.False(t, errors.Is(err, New("certificate mismatch")))
}

func TestStandardErrors(t *testing.T) {
	tests := []struct {
		err  error
		text string
	}{
		{ErrNotFound, "not found"},
		{ErrConflict, "conflict"},
		{ErrInvalidInput, "invalid input"},
		{ErrUnauthorized, "unauthorized"},
		{ErrForbidden, "forbidden"},
		{ErrTooManyRequests, "too many requests"},
		{ErrUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.text)
		})
	}
}
