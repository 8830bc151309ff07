package sweep

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid scan or job configuration. It is always
// fatal and is raised before any job is submitted.
type ConfigError struct {
	// Param is the offending parameter or key, if there is one.
	Param string
	Msg   string
}

// NewConfigError returns a ConfigError for the given parameter.
func NewConfigError(param string, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Param: param, Msg: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	if e.Param == "" {
		return "configuration error: " + e.Msg
	}
	return fmt.Sprintf("configuration error: %q: %s", e.Param, e.Msg)
}

// IsConfigError reports whether err wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
