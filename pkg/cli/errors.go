package cli

import (
	"errors"
	"fmt"

	"collectionbuilder/querybuilder/pkg/query"
	"collectionbuilder/querybuilder/pkg/session"
	"collectionbuilder/querybuilder/pkg/store"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitUsage    = 2
	ExitNotFound = 3
	ExitRejected = 4
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config error: " + e.Message
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	var configErr *ConfigError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &configErr), errors.Is(err, store.ErrInvalidName):
		return ExitUsage
	case errors.Is(err, store.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, session.ErrRejected),
		errors.Is(err, session.ErrExists),
		errors.Is(err, query.ErrInconsistentOperator),
		errors.Is(err, query.ErrInvalidOperator):
		return ExitRejected
	default:
		return ExitError
	}
}
