package prob

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid probability configuration. Line is 1-based
// and 0 when the error is not tied to a file line.
type ConfigError struct {
	Line    int
	Text    string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("probabilities line %d: %s: %q", e.Line, e.Message, e.Text)
	}
	return "probabilities: " + e.Message
}

// UnknownNameError reports a name the table does not define.
type UnknownNameError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("unknown probability %q", e.Name)
}

// IsConfigError returns true if err wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsUnknownName returns true if err wraps an UnknownNameError.
func IsUnknownName(err error) bool {
	var ue *UnknownNameError
	return errors.As(err, &ue)
}
