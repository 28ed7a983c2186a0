package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New("/tmp/ktodo-test")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ktodo-test", cfg.Dir)
	assert.Equal(t, DefaultIssuerURL, cfg.IssuerURL)
	assert.Equal(t, DefaultRealm, cfg.Realm)
	assert.Equal(t, DefaultClientID, cfg.ClientID)
	assert.Equal(t, DefaultRedirectURI, cfg.RedirectURI)
	assert.Equal(t, DefaultAPIURL, cfg.APIBaseURL)
	assert.Empty(t, cfg.AdminSecret)
}

func TestNewEnvOverrides(t *testing.T) {
	t.Setenv(EnvIssuerURL, "https://idp.example.com")
	t.Setenv(EnvRealm, "prod")
	t.Setenv(EnvAPIURL, "https://api.example.com")
	t.Setenv(EnvAdminSecret, "s3cret")

	cfg, err := New("")
	require.NoError(t, err)

	assert.Equal(t, "https://idp.example.com", cfg.IssuerURL)
	assert.Equal(t, "prod", cfg.Realm)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, "s3cret", cfg.AdminSecret)
	assert.Equal(t, DefaultClientID, cfg.ClientID)
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", AppName), DefaultConfigDir())
}

func TestCredentialsPath(t *testing.T) {
	cfg := &Config{Dir: "/home/u/.config/ktodo"}
	assert.Equal(t, filepath.Join("/home/u/.config/ktodo", CredentialsFile), cfg.CredentialsPath())
}
