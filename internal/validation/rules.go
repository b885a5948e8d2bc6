// Package validation provides validation rules for device ids and action parameters.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/devicetrust/internal/errors"
)

// deviceIDRegex allows opaque registry ids such as "lock-1", "cam.lobby" or "urn:x:42".
var deviceIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,127}$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// DeviceID validates the shape of a device identifier.
var DeviceID = validation.NewStringRuleWithError(
	func(s string) bool {
		return deviceIDRegex.MatchString(s)
	},
	validation.NewError(
		"validation_device_id",
		"must start with a letter or digit and contain only letters, digits, '.', '_', ':' or '-' (max 128)",
	),
)

// ValidateDeviceID returns ErrInvalidInput unless id is a well-formed device id.
func ValidateDeviceID(id string) error {
	return WrapValidationError(validation.Validate(id, validation.Required, DeviceID))
}

// NumberBetween validates that a value is a number within [minValue, maxValue].
// Integer and floating point kinds are accepted, since parameters may come from JSON
// or from Go callers.
func NumberBetween(minValue, maxValue float64) validation.Rule {
	return validation.By(func(value any) error {
		f, ok := toFloat(value)
		if !ok {
			return validation.NewError("validation_number_type", "must be a number")
		}
		if f < minValue || f > maxValue {
			return validation.NewError(
				"validation_number_range",
				fmt.Sprintf("must be between %g and %g", minValue, maxValue),
			)
		}
		return nil
	})
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// String validates that a value is a string.
var String = validation.By(func(value any) error {
	if _, ok := value.(string); !ok {
		return validation.NewError("validation_string_type", "must be a string")
	}
	return nil
})
