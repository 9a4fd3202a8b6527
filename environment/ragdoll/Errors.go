package ragdoll

import (
	"errors"
	"fmt"
)

// ConfigurationError is a setup-time contract violation, such as an
// action vector of the wrong length or a missing segment. It is fatal:
// the ragdoll cannot be initialized or driven until the configuration
// is fixed.
type ConfigurationError struct {
	Op     string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: configuration error: %v", e.Op, e.Reason)
}

func configErrorf(op, format string, args ...interface{}) error {
	return &ConfigurationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError returns whether err wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}

// ErrPlacementExhausted is reported when target placement could not
// find a free position within its attempt budget. Placement still
// succeeds with a best-effort position.
var ErrPlacementExhausted = errors.New("target placement exhausted")
