package cli

import "fmt"

// CommandError wraps a failure from one callisto subcommand so the
// top-level error output names the command that failed. Configuration
// field problems use config.FieldError instead.
type CommandError struct {
	// Command is the subcommand that failed ("run", "validate").
	Command string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("callisto %s: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError wraps err as a CommandError for the named subcommand.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}
