package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ktodo/internal/auth"
)

// FakeIdentity is an in-memory identity provider for testing. It records
// exchanged codes so single-use semantics can be asserted.
type FakeIdentity struct {
	mu             sync.Mutex
	exchangedCodes []string
	registered     []auth.Registration
	revoked        []string

	// Password is the accepted password for LoginWithPassword; anything
	// else fails with ErrInvalidCredentials.
	Password string

	// Profile is returned by UserInfo. Defaults to a fixed user.
	Profile *auth.UserProfile

	// Error injection for testing
	LoginErr    error
	ExchangeErr error
	UserInfoErr error
	RegisterErr error
	LogoutErr   error
}

// NewFakeIdentity creates a FakeIdentity accepting the given password.
func NewFakeIdentity(password string) *FakeIdentity {
	return &FakeIdentity{
		Password: password,
		Profile: &auth.UserProfile{
			ID:       "user-1",
			Username: "alice",
			Email:    "alice@example.com",
		},
	}
}

func (f *FakeIdentity) credentials() *auth.Credentials {
	now := time.Now()
	return &auth.Credentials{
		AccessToken:      TestJWT(5 * time.Minute),
		RefreshToken:     "fake-refresh-token",
		TokenType:        "Bearer",
		ExpiresAt:        now.Add(5 * time.Minute),
		RefreshExpiresAt: now.Add(auth.RefreshRetention),
		CreatedAt:        now,
	}
}

// TestJWT returns a signed token whose exp claim lies ttl from now. The
// signature is throwaway; only local expiry inspection looks at the token.
func TestJWT(ttl time.Duration) string {
	claims := jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return token
}

// LoginWithPassword implements session.Identity.
func (f *FakeIdentity) LoginWithPassword(ctx context.Context, username, password string) (*auth.Credentials, error) {
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	if password != f.Password {
		return nil, auth.ErrInvalidCredentials
	}
	return f.credentials(), nil
}

// ExchangeAuthorizationCode implements session.Identity.
func (f *FakeIdentity) ExchangeAuthorizationCode(ctx context.Context, code string) (*auth.Credentials, error) {
	if f.ExchangeErr != nil {
		return nil, f.ExchangeErr
	}
	f.mu.Lock()
	f.exchangedCodes = append(f.exchangedCodes, code)
	f.mu.Unlock()
	return f.credentials(), nil
}

// ExchangedCodes returns the codes exchanged so far.
func (f *FakeIdentity) ExchangedCodes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.exchangedCodes...)
}

// UserInfo implements session.Identity.
func (f *FakeIdentity) UserInfo(ctx context.Context, accessToken string) (*auth.UserProfile, error) {
	if f.UserInfoErr != nil {
		return nil, f.UserInfoErr
	}
	copy := *f.Profile
	return &copy, nil
}

// Register implements session.Identity.
func (f *FakeIdentity) Register(ctx context.Context, reg auth.Registration) error {
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	f.registered = append(f.registered, reg)
	f.mu.Unlock()
	return nil
}

// Registered returns registrations received so far.
func (f *FakeIdentity) Registered() []auth.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]auth.Registration(nil), f.registered...)
}

// Logout implements session.Identity.
func (f *FakeIdentity) Logout(ctx context.Context, refreshToken string) error {
	if f.LogoutErr != nil {
		return f.LogoutErr
	}
	f.mu.Lock()
	f.revoked = append(f.revoked, refreshToken)
	f.mu.Unlock()
	return nil
}

// Revoked returns the refresh tokens revoked so far.
func (f *FakeIdentity) Revoked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.revoked...)
}

// FederatedLoginURL implements session.Identity.
func (f *FakeIdentity) FederatedLoginURL(state string) string {
	return "http://idp.test/auth?state=" + state
}

// LogoutURL implements session.Identity.
func (f *FakeIdentity) LogoutURL() string {
	return "http://idp.test/logout"
}
