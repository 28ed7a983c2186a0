// Package config handles environment configuration and XDG file paths.
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the application directory name.
	AppName = "ktodo"

	// CredentialsFile is the stored credential filename.
	CredentialsFile = "credentials.json"
)

// Recognized environment variables and their fallback defaults.
const (
	EnvIssuerURL   = "KTODO_ISSUER_URL"
	EnvRealm       = "KTODO_REALM"
	EnvClientID    = "KTODO_CLIENT_ID"
	EnvRedirectURI = "KTODO_REDIRECT_URI"
	EnvAPIURL      = "KTODO_API_URL"
	EnvAdminSecret = "KTODO_ADMIN_SECRET"

	DefaultIssuerURL   = "http://localhost:8081"
	DefaultRealm       = "todo-app"
	DefaultClientID    = "todo-cli"
	DefaultRedirectURI = "http://localhost:8085/callback"
	DefaultAPIURL      = "http://localhost:8080/api"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// IssuerURL is the identity provider base URL.
	IssuerURL string

	// Realm is the identity provider realm.
	Realm string

	// ClientID is the OAuth2 client identifier.
	ClientID string

	// RedirectURI receives the authorization code during federated login.
	RedirectURI string

	// APIBaseURL is the task API base URL.
	APIBaseURL string

	// AdminSecret authorizes the admin client used for registration.
	// Empty unless registration flows are needed.
	AdminSecret string
}

// New creates a new Config with the default or specified config directory.
// Provider and API settings come from the environment, falling back to the
// documented defaults. If configDir is empty, uses XDG_CONFIG_HOME/ktodo or
// $HOME/.config/ktodo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:         dir,
		IssuerURL:   envOr(EnvIssuerURL, DefaultIssuerURL),
		Realm:       envOr(EnvRealm, DefaultRealm),
		ClientID:    envOr(EnvClientID, DefaultClientID),
		RedirectURI: envOr(EnvRedirectURI, DefaultRedirectURI),
		APIBaseURL:  envOr(EnvAPIURL, DefaultAPIURL),
		AdminSecret: os.Getenv(EnvAdminSecret),
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// CredentialsPath returns the path to the stored credential file.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Dir, CredentialsFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
