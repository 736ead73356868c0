// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols used by alerts.
const (
	// Success represents successful completion of an operation.
	Success = "✓"

	// Error represents a failed run.
	Error = "✗"

	// Warning represents a non-fatal issue, such as a dry run.
	Warning = "!"

	// Info represents general information.
	Info = "i"
)
