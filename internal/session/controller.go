// Package session holds the process-wide authentication state machine.
// Exactly one Controller exists per process; it is created explicitly and
// injected, never reached through a package-level singleton.
package session

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"

	"ktodo/internal/auth"
)

// Status is the session state.
type Status int

const (
	// Anonymous means no user is signed in.
	Anonymous Status = iota

	// Authenticating means an auth operation is in progress.
	Authenticating

	// Authenticated means a user is signed in and a profile is loaded.
	Authenticated

	// Failed means startup authentication failed; Err carries the reason.
	Failed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Identity is the part of the identity client the controller uses.
type Identity interface {
	LoginWithPassword(ctx context.Context, username, password string) (*auth.Credentials, error)
	ExchangeAuthorizationCode(ctx context.Context, code string) (*auth.Credentials, error)
	UserInfo(ctx context.Context, accessToken string) (*auth.UserProfile, error)
	Register(ctx context.Context, reg auth.Registration) error
	Logout(ctx context.Context, refreshToken string) error
	FederatedLoginURL(state string) string
	LogoutURL() string
}

// Controller drives the session state machine:
//
//	Anonymous -> Authenticating on init, login or register-then-login
//	Authenticating -> Authenticated on success
//	Authenticating -> Failed on startup failure (login failures return to
//	  the previous state so the caller can retry)
//	Authenticated -> Anonymous on logout or fatal refresh failure
type Controller struct {
	mu       sync.Mutex
	status   Status
	user     *auth.UserProfile
	lastErr  error
	identity Identity
	store    auth.TokenStore
}

// New creates a session controller in the Anonymous state.
func New(identity Identity, store auth.TokenStore) *Controller {
	return &Controller{
		status:   Anonymous,
		identity: identity,
		store:    store,
	}
}

// Status returns the current session state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// User returns the signed-in user's profile, or nil.
func (c *Controller) User() *auth.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Err returns the most recent authentication error, or nil.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SetUser replaces the cached profile without re-authenticating. Used by
// profile-completion flows whose API response supersedes the cached copy.
func (c *Controller) SetUser(user *auth.UserProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
}

// FederatedLoginURL returns the provider authorization URL for the federated
// login flow.
func (c *Controller) FederatedLoginURL(state string) string {
	return c.identity.FederatedLoginURL(state)
}

// Init establishes the session at startup.
//
// If callback carries an authorization code, the code is exchanged once, the
// profile fetched and the session becomes Authenticated; the returned URL
// has the auth parameters stripped so a repeated Init with it does not
// re-exchange. Otherwise, if stored credentials look locally valid, the
// profile is fetched and the session becomes Authenticated optimistically;
// the server remains the authority and any later 401 forces logout.
// Otherwise the session is Anonymous.
func (c *Controller) Init(ctx context.Context, callback *url.URL) (*url.URL, error) {
	if callback != nil && callback.Query().Get("code") != "" {
		code := callback.Query().Get("code")
		stripped := stripAuthParams(callback)

		c.setStatus(Authenticating, nil)

		cred, err := c.identity.ExchangeAuthorizationCode(ctx, code)
		if err != nil {
			err = fmt.Errorf("%w: %v", auth.ErrAuthInit, err)
			c.setStatus(Failed, err)
			return stripped, err
		}
		if err := c.store.Save(cred); err != nil {
			err = fmt.Errorf("%w: %v", auth.ErrAuthInit, err)
			c.setStatus(Failed, err)
			return stripped, err
		}

		user, err := c.identity.UserInfo(ctx, cred.AccessToken)
		if err != nil {
			err = fmt.Errorf("%w: %v", auth.ErrAuthInit, err)
			c.setStatus(Failed, err)
			return stripped, err
		}

		c.setAuthenticated(user)
		return stripped, nil
	}

	cred, err := c.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load stored credentials")
	}
	if cred != nil && auth.LooksValid(cred.AccessToken) {
		c.setStatus(Authenticating, nil)
		user, err := c.identity.UserInfo(ctx, cred.AccessToken)
		if err != nil {
			err = fmt.Errorf("%w: %v", auth.ErrAuthInit, err)
			c.setStatus(Failed, err)
			return callback, err
		}
		c.setAuthenticated(user)
		return callback, nil
	}

	c.setStatus(Anonymous, nil)
	return callback, nil
}

// Login signs in with the resource-owner-password grant. On failure the
// session returns to Anonymous and the error is reported; the caller may
// retry.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	c.setStatus(Authenticating, nil)

	cred, err := c.identity.LoginWithPassword(ctx, username, password)
	if err != nil {
		c.setStatus(Anonymous, err)
		return err
	}
	if err := c.store.Save(cred); err != nil {
		c.setStatus(Anonymous, err)
		return err
	}

	user, err := c.identity.UserInfo(ctx, cred.AccessToken)
	if err != nil {
		c.setStatus(Anonymous, err)
		return err
	}

	c.setAuthenticated(user)
	return nil
}

// Register creates the user and then logs in with the same credentials.
func (c *Controller) Register(ctx context.Context, reg auth.Registration) error {
	c.setStatus(Authenticating, nil)

	if err := c.identity.Register(ctx, reg); err != nil {
		c.setStatus(Anonymous, err)
		return err
	}
	return c.Login(ctx, reg.Username, reg.Password)
}

// Logout revokes the refresh token (best effort), clears stored tokens and
// resets the session to Anonymous. It returns the provider logout URL the
// user agent should visit to end the provider-side session.
func (c *Controller) Logout(ctx context.Context) (string, error) {
	cred, err := c.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load stored credentials")
	}
	if cred != nil {
		// Revocation failures are logged inside the identity client,
		// never propagated.
		_ = c.identity.Logout(ctx, cred.RefreshToken)
	}

	if err := c.store.Clear(); err != nil {
		return "", err
	}

	c.setStatus(Anonymous, nil)
	return c.identity.LogoutURL(), nil
}

// HandleAuthExpired resets the session after a fatal refresh failure. The
// authenticated transport already cleared the stored tokens.
func (c *Controller) HandleAuthExpired() {
	c.setStatus(Anonymous, auth.ErrRefreshFailed)
}

func (c *Controller) setStatus(status Status, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	c.lastErr = err
	if status != Authenticated {
		c.user = nil
	}
}

func (c *Controller) setAuthenticated(user *auth.UserProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = Authenticated
	c.user = user
	c.lastErr = nil
}

// stripAuthParams returns a copy of u without the OAuth response
// parameters, so the URL can be reused without replaying the code.
func stripAuthParams(u *url.URL) *url.URL {
	stripped := *u
	q := stripped.Query()
	for _, p := range []string{"code", "state", "session_state", "iss"} {
		q.Del(p)
	}
	stripped.RawQuery = q.Encode()
	return &stripped
}
