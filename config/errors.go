package config

import (
	"errors"
	"fmt"

	"github.com/ridoystarlord/fixturegen/schema"
)

// ErrConfiguration matches every *ConfigurationError with errors.Is.
var ErrConfiguration = errors.New("fixturegen: configuration error")

// ConfigurationError reports a generation config that cannot serve a
// request: a semantic type without a registered strategy, an unknown
// strategy or post-processor, or an out-of-range option. It is never retried.
type ConfigurationError struct {
	Type     schema.SemanticType
	Strategy string
	Reason   string
}

// Error returns the error string.
func (e *ConfigurationError) Error() string {
	switch {
	case e.Type != "" && e.Strategy != "":
		return fmt.Sprintf("fixturegen: type %q (strategy %q): %s", e.Type, e.Strategy, e.Reason)
	case e.Type != "":
		return fmt.Sprintf("fixturegen: type %q: %s", e.Type, e.Reason)
	default:
		return "fixturegen: " + e.Reason
	}
}

// Is reports whether the target error matches ErrConfiguration.
func (e *ConfigurationError) Is(err error) bool {
	return err == ErrConfiguration
}

// NewUnregisteredTypeError returns the error for a type with no strategy.
func NewUnregisteredTypeError(t schema.SemanticType) *ConfigurationError {
	return &ConfigurationError{Type: t, Reason: "no synthesis strategy registered"}
}

// IsConfigurationError returns true if the error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigurationError
	return errors.As(err, &e) || errors.Is(err, ErrConfiguration)
}
