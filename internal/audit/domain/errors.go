package domain

import (
	"github.com/allisson/devicetrust/internal/errors"
)

// Audit errors.
var (
	// ErrAuditUnavailable indicates a security event could not be persisted.
	ErrAuditUnavailable = errors.Wrap(errors.ErrUnavailable, "audit store unavailable")

	// ErrSignatureInvalid indicates a stored event does not match its signature.
	ErrSignatureInvalid = errors.Wrap(errors.ErrInvalidInput, "security event signature invalid")

	// ErrInvalidLimit indicates a query limit below 1.
	ErrInvalidLimit = errors.Wrap(errors.ErrInvalidInput, "limit must be at least 1")
)
