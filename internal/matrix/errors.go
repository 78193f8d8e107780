package matrix

import "fmt"

// ConfigurationError reports malformed run configuration: duplicate dimension
// values, unknown dimension names in rules, empty or partial rules, and so
// on. It always fails the whole run before any job is dispatched.
type ConfigurationError struct {
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// configErrorf builds a ConfigurationError from a format string.
func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
