package auth

import "errors"

// Sentinel errors for the authentication flows. Callers classify failures
// with errors.Is rather than matching message text.
var (
	// ErrInvalidCredentials indicates a rejected username/password pair.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrLoginFailed indicates a login failure other than bad credentials.
	ErrLoginFailed = errors.New("login failed")

	// ErrRegistrationConflict indicates the username or email is taken.
	ErrRegistrationConflict = errors.New("user already exists")

	// ErrRefreshFailed indicates the refresh token was rejected. This is
	// fatal for the session: stored tokens are cleared and the user must
	// log in again. It is never retried.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrAuthInit indicates the startup code exchange or profile fetch
	// failed.
	ErrAuthInit = errors.New("authentication initialization failed")

	// ErrNotAuthenticated indicates an operation that requires a session.
	ErrNotAuthenticated = errors.New("not logged in")
)
