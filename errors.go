package picodb

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for connection setup.
var (
	// ErrUnknownDriver is returned when the settings name a driver that is not registered.
	ErrUnknownDriver = errors.New("picodb: unknown driver")

	// ErrMissingSetting is matched by every MissingSettingError.
	ErrMissingSetting = errors.New("picodb: missing setting")
)

// MissingSettingError is returned by Open when required settings are absent.
type MissingSettingError struct {
	Driver string
	Keys   []string
}

// Error returns the error string.
func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("picodb: %s driver requires settings: %s", e.Driver, strings.Join(e.Keys, ", "))
}

// Is reports whether the target error matches MissingSettingError.
// This allows errors.Is(err, ErrMissingSetting) to return true.
func (e *MissingSettingError) Is(err error) bool {
	return err == ErrMissingSetting
}

// IsMissingSetting returns true if the error is a MissingSettingError or ErrMissingSetting.
func IsMissingSetting(err error) bool {
	return errors.Is(err, ErrMissingSetting)
}

// InvalidSettingError represents a setting whose value cannot be parsed.
type InvalidSettingError struct {
	Key   string // Setting name
	Value string // Raw value
	Err   error  // Underlying parse error
}

// Error returns the error string.
func (e *InvalidSettingError) Error() string {
	return fmt.Sprintf("picodb: invalid setting %s=%q: %v", e.Key, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *InvalidSettingError) Unwrap() error {
	return e.Err
}

// IsInvalidSetting returns true if the error is an InvalidSettingError.
func IsInvalidSetting(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidSettingError
	return errors.As(err, &e)
}
