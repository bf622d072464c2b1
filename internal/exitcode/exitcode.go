// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, out of range, missing title).
	UserError = 1

	// AuthError indicates a rejected login, a missing session or an expired one.
	AuthError = 2

	// BackendError indicates a failed request to the task service.
	BackendError = 3
)
