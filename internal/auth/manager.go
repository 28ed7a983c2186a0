package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Refresher is the part of the identity client the manager needs.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Credentials, error)
}

// Manager owns the access token lifecycle for outbound requests. At most one
// refresh runs at a time: concurrent triggers collapse onto the same
// in-flight exchange and share its outcome. Refresh tokens rotate server
// side, so a duplicate concurrent refresh would invalidate the first.
type Manager struct {
	identity Refresher
	store    TokenStore
	group    singleflight.Group
}

// NewManager creates a token manager over the given identity client and
// store.
func NewManager(identity Refresher, store TokenStore) *Manager {
	return &Manager{identity: identity, store: store}
}

// AccessToken returns the stored access token, if any. The token is returned
// even when locally expired: the server is the authority and a 401 drives
// the refresh path.
func (m *Manager) AccessToken() (string, bool) {
	cred, err := m.store.Load()
	if err != nil || cred == nil {
		return "", false
	}
	return cred.AccessToken, true
}

// Refresh exchanges the stored refresh token for a new pair and returns the
// new access token. staleToken is the token the caller saw rejected; if the
// store already holds a different, unexpired token by the time this caller
// enters the flight, that token is reused instead of refreshing again.
//
// On ErrRefreshFailed the store is cleared; the session cannot be recovered
// without a new login.
func (m *Manager) Refresh(ctx context.Context, staleToken string) (string, error) {
	token, err, _ := m.group.Do("refresh", func() (any, error) {
		cred, err := m.store.Load()
		if err != nil {
			return "", err
		}
		if cred == nil || !cred.RefreshUsable() {
			return "", fmt.Errorf("%w: no usable refresh token", ErrRefreshFailed)
		}

		// A refresh that completed while this caller was waiting
		// already rotated the pair.
		if cred.AccessToken != staleToken && !cred.IsExpired() {
			return cred.AccessToken, nil
		}

		newCred, err := m.identity.Refresh(ctx, cred.RefreshToken)
		if err != nil {
			if clearErr := m.store.Clear(); clearErr != nil {
				log.Warn().Err(clearErr).Msg("failed to clear credentials after refresh failure")
			}
			return "", err
		}

		// Providers that do not rotate refresh tokens omit them from
		// the refresh response.
		if newCred.RefreshToken == "" {
			newCred.RefreshToken = cred.RefreshToken
			newCred.RefreshExpiresAt = cred.RefreshExpiresAt
		}

		if err := m.store.Save(newCred); err != nil {
			return "", fmt.Errorf("failed to store refreshed credentials: %w", err)
		}

		log.Debug().Time("expires_at", newCred.ExpiresAt).Msg("access token refreshed")
		return newCred.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

// Clear removes the stored credentials.
func (m *Manager) Clear() error {
	return m.store.Clear()
}
