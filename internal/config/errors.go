package config

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch is wrapped when a value cannot be decoded into its setting.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed matches every *ValidationError.
	ErrValidationFailed = errors.New("validation failed")

	// ErrFileNotFound is wrapped when a file named with --config is missing.
	ErrFileNotFound = errors.New("config file not found")
)

// ValidationErrorCode classifies a ValidationError.
type ValidationErrorCode uint8

const (
	ErrCodeUnknownSetting ValidationErrorCode = iota
	ErrCodeOutOfRange
	ErrCodeInvalidEnum
	ErrCodeRequiredMissing
)

var validationCodeNames = [...]string{
	ErrCodeUnknownSetting:  "unknown_setting",
	ErrCodeOutOfRange:      "out_of_range",
	ErrCodeInvalidEnum:     "invalid_enum",
	ErrCodeRequiredMissing: "required_missing",
}

func (c ValidationErrorCode) String() string {
	if int(c) < len(validationCodeNames) {
		return validationCodeNames[c]
	}
	return "unknown"
}

// ValidationError reports one rejected setting.
type ValidationError struct {
	Path    string // dotted setting path, e.g. "view.tabWidth"
	Message string
	Value   any // nil when the setting has no meaningful value
	Code    ValidationErrorCode
}

func (e *ValidationError) Error() string {
	msg := e.Path + ": " + e.Message
	if e.Value != nil {
		msg += fmt.Sprintf(" (got %v)", e.Value)
	}
	return msg
}

// Is reports whether target is ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
