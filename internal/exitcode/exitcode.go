// Package exitcode defines process exit codes.
package exitcode

const (
	// Success indicates the command completed successfully.
	Success = 0

	// UserError indicates invalid usage: unknown command, bad flags,
	// missing arguments.
	UserError = 1

	// AuthError indicates an authentication or credential failure.
	AuthError = 2

	// BackendError indicates the todo service rejected or failed a request.
	BackendError = 3
)
