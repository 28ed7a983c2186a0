// Package auth implements the token lifecycle for the todo service:
// credential storage, the identity provider client, and the authenticated
// HTTP transport with single-flight refresh.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// ExpiryMargin is the margin applied when checking access token
	// expiry. This accounts for clock skew and network latency.
	ExpiryMargin = 30 * time.Second

	// RefreshRetention is how long a stored refresh token is kept before
	// it is considered stale and discarded locally.
	RefreshRetention = 30 * 24 * time.Hour
)

// Credentials is the token pair issued by the identity provider, together
// with expiry metadata so staleness can be checked without a network call.
// The token store owns the only persistent copy.
type Credentials struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token,omitempty"`
	TokenType        string    `json:"token_type,omitempty"`
	Scope            string    `json:"scope,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// IsExpired returns true if the access token has expired or expires within
// the margin.
func (c *Credentials) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(ExpiryMargin).After(c.ExpiresAt)
}

// HasRefreshToken returns true if a refresh token is available.
func (c *Credentials) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// RefreshUsable returns true if the refresh token exists and is still inside
// its retention window.
func (c *Credentials) RefreshUsable() bool {
	if !c.HasRefreshToken() {
		return false
	}
	if c.RefreshExpiresAt.IsZero() {
		return true
	}
	return time.Now().Before(c.RefreshExpiresAt)
}

// LooksValid reports whether the access token decodes as a JWT whose exp
// claim is in the future. It is a local check only and is never proof of
// validity: the server remains the source of truth. Any parse failure is
// treated as not valid.
func LooksValid(accessToken string) bool {
	if accessToken == "" {
		return false
	}
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(time.Now())
}
