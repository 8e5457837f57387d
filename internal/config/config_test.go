package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func validConfig() *Config {
	return &Config{
		JWTSecret:       testSecret,
		DatabaseDriver:  DatabaseSQLite,
		AuthModes:       []string{AuthModeLocal},
		HTTPAPIAuthMode: "none",
		RateLimitStore:  RateLimitStoreMemory,
		EnableRateLimit: true,
		TokenRateLimit:  20,
		LogFormat:       "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:     "missing secret",
			mutate:   func(c *Config) { c.JWTSecret = "" },
			errorMsg: "JWT_SECRET is required",
		},
		{
			name:     "short secret",
			mutate:   func(c *Config) { c.JWTSecret = "too-short" },
			errorMsg: "JWT_SECRET must be at least 32 bytes",
		},
		{
			name:     "unknown database driver",
			mutate:   func(c *Config) { c.DatabaseDriver = "mysql" },
			errorMsg: `invalid DATABASE_DRIVER value: "mysql"`,
		},
		{
			name:     "empty auth mode",
			mutate:   func(c *Config) { c.AuthModes = nil },
			errorMsg: "AUTH_MODE must name at least one validator",
		},
		{
			name:     "unknown auth mode",
			mutate:   func(c *Config) { c.AuthModes = []string{"ldap"} },
			errorMsg: `invalid AUTH_MODE value: "ldap"`,
		},
		{
			name:     "duplicate auth mode",
			mutate:   func(c *Config) { c.AuthModes = []string{"local", "local"} },
			errorMsg: `AUTH_MODE lists "local" twice`,
		},
		{
			name: "http api without url",
			mutate: func(c *Config) {
				c.AuthModes = []string{AuthModeHTTPAPI, AuthModeLocal}
			},
			errorMsg: "HTTP_API_URL is required",
		},
		{
			name: "http api hmac without secret",
			mutate: func(c *Config) {
				c.AuthModes = []string{AuthModeHTTPAPI}
				c.HTTPAPIURL = "https://auth.example.com/verify"
				c.HTTPAPIAuthMode = "hmac"
			},
			errorMsg: "HTTP_API_SECRET is required for HTTP_API_AUTH_MODE=hmac",
		},
		{
			name: "partial google credentials",
			mutate: func(c *Config) {
				c.Google = Provider{ClientID: "id", ClientSecret: "secret"}
			},
			errorMsg: "GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URI must be set together",
		},
		{
			name: "oidc without issuer",
			mutate: func(c *Config) {
				c.OIDC = Provider{ClientID: "id", ClientSecret: "s", RedirectURI: "https://app/cb"}
				c.OIDCProviderName = "keycloak"
			},
			errorMsg: "OIDC_ISSUER_URL is required",
		},
		{
			name: "oidc reserved name",
			mutate: func(c *Config) {
				c.OIDC = Provider{ClientID: "id", ClientSecret: "s", RedirectURI: "https://app/cb"}
				c.OIDCIssuerURL = "https://idp.example.com"
				c.OIDCProviderName = "google"
			},
			errorMsg: `OIDC_PROVIDER_NAME "google" is reserved`,
		},
		{
			name:     "invalid store - typo",
			mutate:   func(c *Config) { c.RateLimitStore = "reddis" },
			errorMsg: `invalid RATE_LIMIT_STORE value: "reddis"`,
		},
		{
			name:     "invalid store - uppercase",
			mutate:   func(c *Config) { c.RateLimitStore = "MEMORY" },
			errorMsg: `invalid RATE_LIMIT_STORE value: "MEMORY"`,
		},
		{
			name:     "non-positive rate limit",
			mutate:   func(c *Config) { c.TokenRateLimit = 0 },
			errorMsg: "TOKEN_RATE_LIMIT must be positive",
		},
		{
			name:   "rate limit ignored when disabled",
			mutate: func(c *Config) { c.EnableRateLimit = false; c.TokenRateLimit = 0 },
		},
		{
			name:     "invalid log format",
			mutate:   func(c *Config) { c.LogFormat = "xml" },
			errorMsg: `invalid LOG_FORMAT value: "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestConfig_ValidateReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	cfg.RateLimitStore = "memcache"

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), `invalid RATE_LIMIT_STORE value: "memcache"`)
}

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("AUTH_MODE", "http_api, local")
	t.Setenv("ALLOWED_EMAIL_DOMAINS", "example.com,, example.org ")
	t.Setenv("TOKEN_RATE_LIMIT", "42")
	t.Setenv("PROVIDER_EXCHANGE_TIMEOUT", "3s")
	t.Setenv("OIDC_PROVIDER_NAME", "KeyCloak")
	t.Setenv("ALLOW_BASIC_AUTHENTICATION", "1")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, testSecret, cfg.JWTSecret)
	assert.Equal(t, []string{"http_api", "local"}, cfg.AuthModes)
	assert.Equal(t, []string{"example.com", "example.org"}, cfg.AllowedEmailDomains)
	assert.Equal(t, 42, cfg.TokenRateLimit)
	assert.Equal(t, "3s", cfg.ProviderExchangeTimeout.String())
	assert.Equal(t, "keycloak", cfg.OIDCProviderName)
	assert.True(t, cfg.AllowBasicAuthentication)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "common", cfg.OfficeTenant)
}

func Test_parseList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"whitespace only", "   ", []string{}},
		{"single value", "local", []string{"local"}},
		{"surrounding spaces", "  local  ", []string{"local"}},
		{"multiple values", "local,http_api", []string{"local", "http_api"}},
		{"blank entries", ",local,,http_api,", []string{"local", "http_api"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseList(tt.input))
		})
	}
}
