package core

import (
	"errors"
	"fmt"
)

// NoState marks a configuration error that is not tied to one table row
const NoState StateID = -1

// ConfigurationError reports a malformed transition table. It is always
// raised before a controller starts.
type ConfigurationError struct {
	Component string
	State     StateID
	Issue     string
}

func (e *ConfigurationError) Error() string {
	if e.State == NoState {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
	}
	return fmt.Sprintf("configuration error in %s, state %d: %s", e.Component, e.State, e.Issue)
}

// NewConfigurationError creates a configuration error for one state
func NewConfigurationError(component string, state StateID, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		State:     state,
		Issue:     issue,
	}
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ErrAlreadyRunning is returned when a second loop tries to drive a
// controller that already has one.
var ErrAlreadyRunning = errors.New("controller already running")
