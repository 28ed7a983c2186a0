package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"ktodo/internal/config"
)

const (
	// DefaultHTTPTimeout bounds every identity provider call.
	DefaultHTTPTimeout = 30 * time.Second

	// defaultScope is requested on every interactive grant.
	defaultScope = "openid email profile"

	// defaultProviderHint directs the provider login page straight to the
	// federated identity provider.
	defaultProviderHint = "google"
)

// UserProfile is the read-only identity projection returned by the provider's
// userinfo endpoint and by the task API's profile endpoints.
type UserProfile struct {
	ID            string `json:"sub"`
	Email         string `json:"email"`
	DisplayName   string `json:"name"`
	Username      string `json:"preferred_username"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	PictureURL    string `json:"picture,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
}

// Registration is the data required to create a new user.
type Registration struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// tokenResponse is the token endpoint response body.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorDesc    string `json:"error_description,omitempty"`
}

// tokenError is a non-2xx response from the token endpoint.
type tokenError struct {
	Status int
	Code   string
	Desc   string
}

func (e *tokenError) Error() string {
	if e.Desc != "" {
		return fmt.Sprintf("token request failed: %s", e.Desc)
	}
	if e.Code != "" {
		return fmt.Sprintf("token request failed: %s", e.Code)
	}
	return fmt.Sprintf("token request failed with status %d", e.Status)
}

// IdentityClient performs the OAuth2 grants against the identity provider.
// Endpoints follow the {base}/realms/{realm}/protocol/openid-connect layout;
// the token endpoint takes form-encoded bodies.
type IdentityClient struct {
	baseURL      string
	realm        string
	clientID     string
	redirectURI  string
	providerHint string
	httpClient   *http.Client
	adminTokens  *clientcredentials.Config
}

// IdentityOption configures an IdentityClient.
type IdentityOption func(*IdentityClient)

// WithHTTPClient sets a custom HTTP client (for timeouts, TLS config, tests).
func WithHTTPClient(httpClient *http.Client) IdentityOption {
	return func(c *IdentityClient) {
		c.httpClient = httpClient
	}
}

// WithProviderHint overrides the federated provider hint.
func WithProviderHint(hint string) IdentityOption {
	return func(c *IdentityClient) {
		c.providerHint = hint
	}
}

// NewIdentityClient creates an identity provider client from config.
func NewIdentityClient(cfg *config.Config, opts ...IdentityOption) *IdentityClient {
	c := &IdentityClient{
		baseURL:      strings.TrimSuffix(cfg.IssuerURL, "/"),
		realm:        cfg.Realm,
		clientID:     cfg.ClientID,
		redirectURI:  cfg.RedirectURI,
		providerHint: defaultProviderHint,
		httpClient:   &http.Client{Timeout: DefaultHTTPTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	// Admin token source for user registration. The secret may be empty;
	// Register then fails with the provider's error.
	c.adminTokens = &clientcredentials.Config{
		ClientID:     "admin-cli",
		ClientSecret: cfg.AdminSecret,
		TokenURL:     fmt.Sprintf("%s/realms/master/protocol/openid-connect/token", c.baseURL),
	}

	return c
}

// endpoint returns the URL of a protocol endpoint within the realm.
func (c *IdentityClient) endpoint(name string) string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/%s", c.baseURL, c.realm, name)
}

// oauthConfig builds the oauth2 configuration for interactive flows.
func (c *IdentityClient) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:    c.clientID,
		RedirectURL: c.redirectURI,
		Scopes:      strings.Fields(defaultScope),
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.endpoint("auth"),
			TokenURL: c.endpoint("token"),
		},
	}
}

// FederatedLoginURL returns the authorization endpoint URL that sends the
// user agent to the federated provider. state must be verified on callback.
func (c *IdentityClient) FederatedLoginURL(state string) string {
	return c.oauthConfig().AuthCodeURL(state,
		oauth2.SetAuthURLParam("kc_idp_hint", c.providerHint))
}

// LoginWithPassword performs the resource-owner-password grant.
// A 401-equivalent rejection yields ErrInvalidCredentials; any other failure
// wraps ErrLoginFailed.
func (c *IdentityClient) LoginWithPassword(ctx context.Context, username, password string) (*Credentials, error) {
	cred, err := c.doTokenRequest(ctx, url.Values{
		"grant_type": {"password"},
		"client_id":  {c.clientID},
		"username":   {username},
		"password":   {password},
		"scope":      {defaultScope},
	})
	if err != nil {
		var te *tokenError
		if errors.As(err, &te) && te.Status == http.StatusUnauthorized {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	return cred, nil
}

// ExchangeAuthorizationCode performs the authorization-code grant. Codes are
// single-use; the caller must discard the code after one exchange.
func (c *IdentityClient) ExchangeAuthorizationCode(ctx context.Context, code string) (*Credentials, error) {
	return c.doTokenRequest(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"client_id":    {c.clientID},
		"code":         {code},
		"redirect_uri": {c.redirectURI},
	})
}

// Refresh performs the refresh-token grant. Failure wraps ErrRefreshFailed
// and is fatal for the session: the caller must clear stored tokens.
func (c *IdentityClient) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	cred, err := c.doTokenRequest(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.clientID},
		"refresh_token": {refreshToken},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	return cred, nil
}

// UserInfo fetches the user profile for an access token.
func (c *IdentityClient) UserInfo(ctx context.Context, accessToken string) (*UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("userinfo"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var profile UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo response: %w", err)
	}
	return &profile, nil
}

// Register creates a new user through the provider's admin API using a
// client-credentials admin token. A conflict yields ErrRegistrationConflict.
func (c *IdentityClient) Register(ctx context.Context, reg Registration) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	adminToken, err := c.adminTokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain admin token: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"username":      reg.Username,
		"email":         reg.Email,
		"firstName":     reg.FirstName,
		"lastName":      reg.LastName,
		"enabled":       true,
		"emailVerified": false,
		"credentials": []map[string]any{
			{"type": "password", "value": reg.Password, "temporary": false},
		},
	})
	if err != nil {
		return err
	}

	usersURL := fmt.Sprintf("%s/admin/realms/%s/users", c.baseURL, c.realm)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, usersURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registration request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return ErrRegistrationConflict
	case resp.StatusCode >= 300:
		return fmt.Errorf("registration failed with status %d", resp.StatusCode)
	}
	return nil
}

// Logout revokes the refresh token at the provider. Revocation is best
// effort: failures are logged, never propagated. Clearing local tokens is
// the caller's responsibility.
func (c *IdentityClient) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"refresh_token": {refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("logout"),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("token revocation failed")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Msg("token revocation rejected")
	}
	return nil
}

// LogoutURL returns the provider's end-session URL the user agent should
// visit to terminate the provider-side session.
func (c *IdentityClient) LogoutURL() string {
	return c.endpoint("logout") + "?redirect_uri=" + url.QueryEscape(c.redirectURI)
}

// doTokenRequest posts a form-encoded grant to the token endpoint and
// converts the response into Credentials.
func (c *IdentityClient) doTokenRequest(ctx context.Context, form url.Values) (*Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("token"),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	var tr tokenResponse
	if resp.StatusCode != http.StatusOK {
		// Error bodies are JSON when the provider produced them, but
		// proxies can return anything; classification only needs the
		// status and the error code when present.
		_ = json.Unmarshal(body, &tr)
		return nil, &tokenError{Status: resp.StatusCode, Code: tr.Error, Desc: tr.ErrorDesc}
	}

	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("invalid token response: %w", err)
	}

	now := time.Now()
	cred := &Credentials{
		AccessToken:      tr.AccessToken,
		RefreshToken:     tr.RefreshToken,
		TokenType:        tr.TokenType,
		Scope:            tr.Scope,
		ExpiresAt:        now.Add(time.Duration(tr.ExpiresIn) * time.Second),
		RefreshExpiresAt: now.Add(RefreshRetention),
		CreatedAt:        now,
	}
	return cred, nil
}
