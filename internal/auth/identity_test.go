package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ktodo/internal/config"
)

// fakeProvider is a minimal identity provider for tests. It speaks just
// enough of the realm endpoint layout to exercise the client.
type fakeProvider struct {
	t *testing.T

	// password accepted by the password grant
	password string

	// codes still valid for the authorization-code grant
	codes map[string]bool

	// refreshFails makes the refresh grant return invalid_grant
	refreshFails bool

	// registerStatus is returned by the admin users endpoint
	registerStatus int

	tokenRequests []url.Values
}

func (p *fakeProvider) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/realms/test-realm/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(p.t, r.ParseForm())
		p.tokenRequests = append(p.tokenRequests, r.PostForm)

		switch r.PostForm.Get("grant_type") {
		case "password":
			if r.PostForm.Get("password") != p.password {
				writeTokenError(w, http.StatusUnauthorized, "invalid_grant", "Invalid user credentials")
				return
			}
		case "authorization_code":
			code := r.PostForm.Get("code")
			if !p.codes[code] {
				writeTokenError(w, http.StatusBadRequest, "invalid_grant", "Code not valid")
				return
			}
			delete(p.codes, code)
		case "refresh_token":
			if p.refreshFails {
				writeTokenError(w, http.StatusBadRequest, "invalid_grant", "Session not active")
				return
			}
		default:
			writeTokenError(w, http.StatusBadRequest, "unsupported_grant_type", "")
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "issued-access",
			"refresh_token": "issued-refresh",
			"token_type":    "Bearer",
			"expires_in":    300,
		})
	})

	// Admin token for registration
	mux.HandleFunc("/realms/master/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "admin-access",
			"token_type":   "Bearer",
			"expires_in":   60,
		})
	})

	mux.HandleFunc("/admin/realms/test-realm/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(p.t, "Bearer admin-access", r.Header.Get("Authorization"))
		status := p.registerStatus
		if status == 0 {
			status = http.StatusCreated
		}
		w.WriteHeader(status)
	})

	mux.HandleFunc("/realms/test-realm/protocol/openid-connect/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer issued-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"sub":                "user-1",
			"preferred_username": "alice",
			"email":              "alice@example.com",
			"name":               "Alice Example",
		})
	})

	mux.HandleFunc("/realms/test-realm/protocol/openid-connect/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func writeTokenError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": desc,
	})
}

func newTestIdentity(t *testing.T, p *fakeProvider) (*IdentityClient, *httptest.Server) {
	t.Helper()
	p.t = t
	srv := httptest.NewServer(p.handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		IssuerURL:   srv.URL,
		Realm:       "test-realm",
		ClientID:    "test-client",
		RedirectURI: "http://localhost:9999/callback",
	}
	return NewIdentityClient(cfg, WithHTTPClient(srv.Client())), srv
}

func TestLoginWithPassword(t *testing.T) {
	p := &fakeProvider{password: "secret"}
	client, _ := newTestIdentity(t, p)

	cred, err := client.LoginWithPassword(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "issued-access", cred.AccessToken)
	assert.Equal(t, "issued-refresh", cred.RefreshToken)
	assert.True(t, cred.ExpiresAt.After(time.Now()))
	assert.True(t, cred.RefreshExpiresAt.After(time.Now().Add(29*24*time.Hour)))

	require.Len(t, p.tokenRequests, 1)
	form := p.tokenRequests[0]
	assert.Equal(t, "password", form.Get("grant_type"))
	assert.Equal(t, "test-client", form.Get("client_id"))
	assert.Equal(t, "alice", form.Get("username"))
}

func TestLoginWithPasswordRejected(t *testing.T) {
	client, _ := newTestIdentity(t, &fakeProvider{password: "secret"})

	_, err := client.LoginWithPassword(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestExchangeAuthorizationCodeSingleUse(t *testing.T) {
	p := &fakeProvider{codes: map[string]bool{"the-code": true}}
	client, _ := newTestIdentity(t, p)

	cred, err := client.ExchangeAuthorizationCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "issued-access", cred.AccessToken)

	form := p.tokenRequests[0]
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "http://localhost:9999/callback", form.Get("redirect_uri"))

	// A second exchange of the same code is rejected by the provider.
	_, err = client.ExchangeAuthorizationCode(context.Background(), "the-code")
	assert.Error(t, err)
}

func TestRefreshFailureWrapsSentinel(t *testing.T) {
	client, _ := newTestIdentity(t, &fakeProvider{refreshFails: true})

	_, err := client.Refresh(context.Background(), "some-refresh")
	assert.ErrorIs(t, err, ErrRefreshFailed)
}

func TestUserInfo(t *testing.T) {
	client, _ := newTestIdentity(t, &fakeProvider{})

	profile, err := client.UserInfo(context.Background(), "issued-access")
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.ID)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "Alice Example", profile.DisplayName)

	_, err = client.UserInfo(context.Background(), "bogus")
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	client, _ := newTestIdentity(t, &fakeProvider{})

	err := client.Register(context.Background(), Registration{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "pw",
	})
	assert.NoError(t, err)
}

func TestRegisterConflict(t *testing.T) {
	client, _ := newTestIdentity(t, &fakeProvider{registerStatus: http.StatusConflict})

	err := client.Register(context.Background(), Registration{Username: "bob"})
	assert.ErrorIs(t, err, ErrRegistrationConflict)
}

func TestLogoutBestEffort(t *testing.T) {
	client, srv := newTestIdentity(t, &fakeProvider{})

	assert.NoError(t, client.Logout(context.Background(), "some-refresh"))
	assert.NoError(t, client.Logout(context.Background(), ""))

	// Even with the provider gone, logout does not fail.
	srv.Close()
	assert.NoError(t, client.Logout(context.Background(), "some-refresh"))
}

func TestFederatedLoginURL(t *testing.T) {
	client, srv := newTestIdentity(t, &fakeProvider{})

	rawURL := client.FederatedLoginURL("state-123")
	u, err := url.Parse(rawURL)
	require.NoError(t, err)

	assert.Contains(t, rawURL, srv.URL)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "test-client", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "google", q.Get("kc_idp_hint"))
}
