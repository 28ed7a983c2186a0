package session_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ktodo/internal/auth"
	"ktodo/internal/session"
	"ktodo/internal/testutil"
)

func newController(t *testing.T) (*session.Controller, *testutil.FakeIdentity, *auth.MemoryStore) {
	t.Helper()
	identity := testutil.NewFakeIdentity("secret")
	store := auth.NewMemoryStore()
	return session.New(identity, store), identity, store
}

func callbackURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestInitWithoutCredentials(t *testing.T) {
	ctrl, _, _ := newController(t)

	_, err := ctrl.Init(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, session.Anonymous, ctrl.Status())
	assert.Nil(t, ctrl.User())
}

func TestInitWithCallbackCode(t *testing.T) {
	ctrl, identity, store := newController(t)

	callback := callbackURL(t, "http://localhost:8085/callback?code=abc&state=s1&session_state=ss&iss=http%3A%2F%2Fidp")
	stripped, err := ctrl.Init(context.Background(), callback)
	require.NoError(t, err)

	assert.Equal(t, session.Authenticated, ctrl.Status())
	require.NotNil(t, ctrl.User())
	assert.Equal(t, "alice", ctrl.User().Username)
	assert.Equal(t, []string{"abc"}, identity.ExchangedCodes())

	// The returned URL no longer carries auth parameters.
	q := stripped.Query()
	assert.Empty(t, q.Get("code"))
	assert.Empty(t, q.Get("state"))
	assert.Empty(t, q.Get("session_state"))
	assert.Empty(t, q.Get("iss"))

	cred, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.True(t, cred.HasRefreshToken())

	// Re-initializing with the stripped URL does not exchange again: the
	// stored token carries the session.
	_, err = ctrl.Init(context.Background(), stripped)
	require.NoError(t, err)
	assert.Equal(t, session.Authenticated, ctrl.Status())
	assert.Len(t, identity.ExchangedCodes(), 1)
}

func TestInitExchangeFailure(t *testing.T) {
	ctrl, identity, _ := newController(t)
	identity.ExchangeErr = errors.New("code not valid")

	callback := callbackURL(t, "http://localhost:8085/callback?code=bad&state=s1")
	stripped, err := ctrl.Init(context.Background(), callback)

	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrAuthInit)
	assert.Equal(t, session.Failed, ctrl.Status())
	assert.Empty(t, stripped.Query().Get("code"))
}

func TestInitWithStoredValidToken(t *testing.T) {
	ctrl, _, store := newController(t)

	require.NoError(t, store.Save(&auth.Credentials{
		AccessToken: testutil.TestJWT(time.Hour),
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	_, err := ctrl.Init(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, session.Authenticated, ctrl.Status())
	require.NotNil(t, ctrl.User())
}

func TestInitWithStoredExpiredToken(t *testing.T) {
	ctrl, _, store := newController(t)

	// A locally expired token is not trusted for optimistic auth.
	require.NoError(t, store.Save(&auth.Credentials{
		AccessToken:      testutil.TestJWT(-time.Hour),
		RefreshToken:     "r",
		ExpiresAt:        time.Now().Add(-time.Hour),
		RefreshExpiresAt: time.Now().Add(auth.RefreshRetention),
	}))

	_, err := ctrl.Init(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, session.Anonymous, ctrl.Status())
}

func TestInitProfileFetchFailure(t *testing.T) {
	ctrl, identity, store := newController(t)
	identity.UserInfoErr = errors.New("provider unavailable")

	require.NoError(t, store.Save(&auth.Credentials{
		AccessToken: testutil.TestJWT(time.Hour),
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	_, err := ctrl.Init(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrAuthInit)
	assert.Equal(t, session.Failed, ctrl.Status())
	assert.Error(t, ctrl.Err())
}

func TestLoginSuccess(t *testing.T) {
	ctrl, _, store := newController(t)

	require.NoError(t, ctrl.Login(context.Background(), "alice", "secret"))
	assert.Equal(t, session.Authenticated, ctrl.Status())
	require.NotNil(t, ctrl.User())
	assert.Equal(t, "alice", ctrl.User().Username)

	cred, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, cred)
}

func TestLoginWrongPassword(t *testing.T) {
	ctrl, _, store := newController(t)

	err := ctrl.Login(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// A failed login is retryable: the session is back to Anonymous, not
	// stuck in Failed.
	assert.Equal(t, session.Anonymous, ctrl.Status())
	assert.Nil(t, ctrl.User())

	cred, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Nil(t, cred)

	// And a retry with the right password works.
	require.NoError(t, ctrl.Login(context.Background(), "alice", "secret"))
	assert.Equal(t, session.Authenticated, ctrl.Status())
}

func TestRegisterThenLogin(t *testing.T) {
	ctrl, identity, _ := newController(t)

	err := ctrl.Register(context.Background(), auth.Registration{
		Username: "alice",
		Password: "secret",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, session.Authenticated, ctrl.Status())
	require.Len(t, identity.Registered(), 1)
	assert.Equal(t, "alice", identity.Registered()[0].Username)
}

func TestRegisterConflict(t *testing.T) {
	ctrl, identity, _ := newController(t)
	identity.RegisterErr = auth.ErrRegistrationConflict

	err := ctrl.Register(context.Background(), auth.Registration{Username: "alice"})
	assert.ErrorIs(t, err, auth.ErrRegistrationConflict)
	assert.Equal(t, session.Anonymous, ctrl.Status())
}

func TestLogout(t *testing.T) {
	ctrl, identity, store := newController(t)
	require.NoError(t, ctrl.Login(context.Background(), "alice", "secret"))

	logoutURL, err := ctrl.Logout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://idp.test/logout", logoutURL)
	assert.Equal(t, session.Anonymous, ctrl.Status())
	assert.Nil(t, ctrl.User())

	// The refresh token was revoked and local credentials removed.
	assert.Equal(t, []string{"fake-refresh-token"}, identity.Revoked())
	cred, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Nil(t, cred)
}

func TestLogoutRevocationFailureStillClears(t *testing.T) {
	ctrl, identity, store := newController(t)
	require.NoError(t, ctrl.Login(context.Background(), "alice", "secret"))
	identity.LogoutErr = errors.New("provider unavailable")

	_, err := ctrl.Logout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.Anonymous, ctrl.Status())

	cred, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Nil(t, cred)
}

func TestHandleAuthExpired(t *testing.T) {
	ctrl, _, _ := newController(t)
	require.NoError(t, ctrl.Login(context.Background(), "alice", "secret"))

	ctrl.HandleAuthExpired()
	assert.Equal(t, session.Anonymous, ctrl.Status())
	assert.Nil(t, ctrl.User())
	assert.ErrorIs(t, ctrl.Err(), auth.ErrRefreshFailed)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "anonymous", session.Anonymous.String())
	assert.Equal(t, "authenticating", session.Authenticating.String())
	assert.Equal(t, "authenticated", session.Authenticated.String())
	assert.Equal(t, "failed", session.Failed.String())
}
