package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-authgate/tokengate/internal/httpclient"
	"github.com/go-authgate/tokengate/internal/token"

	"github.com/joho/godotenv"
)

// Rate limit stores
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Credential validators selectable through AUTH_MODE
const (
	AuthModeLocal   = "local"
	AuthModeHTTPAPI = "http_api"
)

// Database drivers
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

var reservedProviderNames = []string{
	"google", "office", "client_credentials", "authorization_code", "token", "authorization",
}

// Provider holds a client registration with an identity provider.
type Provider struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Enabled reports whether any credential is set.
func (p Provider) Enabled() bool {
	return p.ClientID != "" || p.ClientSecret != "" || p.RedirectURI != ""
}

func (p Provider) complete() bool {
	return p.ClientID != "" && p.ClientSecret != "" && p.RedirectURI != ""
}

type Config struct {
	// Server settings
	ServerAddr string

	// Token signing
	JWTSecret string

	// Database
	DatabaseDriver string
	DatabaseDSN    string

	// Authentication, in chain order
	AuthModes []string

	// HTTP API Authentication
	HTTPAPIURL                string
	HTTPAPITimeout            time.Duration
	HTTPAPIInsecureSkipVerify bool
	HTTPAPIAuthMode           string
	HTTPAPISecret             string

	// Identity providers
	AllowedEmailDomains     []string
	Google                  Provider
	Office                  Provider
	OfficeTenant            string
	OIDC                    Provider
	OIDCProviderName        string
	OIDCIssuerURL           string
	ProviderExchangeTimeout time.Duration

	// Accept Basic credentials on protected resources
	AllowBasicAuthentication bool

	// Rate limiting
	EnableRateLimit bool
	RateLimitStore  string
	TokenRateLimit  int // requests per minute per client IP

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Observability
	MetricsEnabled bool
	LogLevel       string
	LogFormat      string
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		JWTSecret:  os.Getenv("JWT_SECRET"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", DatabaseSQLite),
		DatabaseDSN:    getEnv("DATABASE_DSN", "tokengate.db"),

		AuthModes: parseList(getEnv("AUTH_MODE", AuthModeLocal)),

		HTTPAPIURL:                getEnv("HTTP_API_URL", ""),
		HTTPAPITimeout:            getEnvDuration("HTTP_API_TIMEOUT", 10*time.Second),
		HTTPAPIInsecureSkipVerify: getEnvBool("HTTP_API_INSECURE_SKIP_VERIFY", false),
		HTTPAPIAuthMode:           getEnv("HTTP_API_AUTH_MODE", httpclient.AuthModeNone),
		HTTPAPISecret:             getEnv("HTTP_API_SECRET", ""),

		AllowedEmailDomains: parseList(getEnv("ALLOWED_EMAIL_DOMAINS", "")),
		Google: Provider{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		},
		Office: Provider{
			ClientID:     getEnv("OFFICE_CLIENT_ID", ""),
			ClientSecret: getEnv("OFFICE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("OFFICE_REDIRECT_URI", ""),
		},
		OfficeTenant: getEnv("OFFICE_TENANT", "common"),
		OIDC: Provider{
			ClientID:     getEnv("OIDC_CLIENT_ID", ""),
			ClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("OIDC_REDIRECT_URI", ""),
		},
		OIDCProviderName:        strings.ToLower(getEnv("OIDC_PROVIDER_NAME", "")),
		OIDCIssuerURL:           getEnv("OIDC_ISSUER_URL", ""),
		ProviderExchangeTimeout: getEnvDuration("PROVIDER_EXCHANGE_TIMEOUT", 10*time.Second),

		AllowBasicAuthentication: getEnvBool("ALLOW_BASIC_AUTHENTICATION", false),

		EnableRateLimit: getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:  getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		TokenRateLimit:  getEnvInt("TOKEN_RATE_LIMIT", 20),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case c.JWTSecret == "":
		errs = append(errs, errors.New("JWT_SECRET is required"))
	case len(c.JWTSecret) < token.MinSecretLength:
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", token.MinSecretLength))
	}

	if c.DatabaseDriver != DatabaseSQLite && c.DatabaseDriver != DatabasePostgres {
		errs = append(errs, fmt.Errorf("invalid DATABASE_DRIVER value: %q", c.DatabaseDriver))
	}

	errs = append(errs, c.validateAuthModes()...)
	errs = append(errs, c.validateProviders()...)

	if c.RateLimitStore != RateLimitStoreMemory && c.RateLimitStore != RateLimitStoreRedis {
		errs = append(errs, fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis,
		))
	}
	if c.EnableRateLimit && c.TokenRateLimit <= 0 {
		errs = append(errs, errors.New("TOKEN_RATE_LIMIT must be positive"))
	}
	if c.EnableRateLimit && c.RateLimitStore == RateLimitStoreRedis && c.RedisAddr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required for the redis rate limit store"))
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT value: %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

func (c *Config) validateAuthModes() []error {
	var errs []error
	if len(c.AuthModes) == 0 {
		errs = append(errs, errors.New("AUTH_MODE must name at least one validator"))
	}

	seen := map[string]bool{}
	for _, mode := range c.AuthModes {
		if mode != AuthModeLocal && mode != AuthModeHTTPAPI {
			errs = append(errs, fmt.Errorf("invalid AUTH_MODE value: %q", mode))
		}
		if seen[mode] {
			errs = append(errs, fmt.Errorf("AUTH_MODE lists %q twice", mode))
		}
		seen[mode] = true
	}

	if !seen[AuthModeHTTPAPI] {
		return errs
	}
	if c.HTTPAPIURL == "" {
		errs = append(errs, errors.New("HTTP_API_URL is required when AUTH_MODE includes http_api"))
	}
	switch c.HTTPAPIAuthMode {
	case httpclient.AuthModeNone:
	case httpclient.AuthModeSimple, httpclient.AuthModeHMAC:
		if c.HTTPAPISecret == "" {
			errs = append(errs, fmt.Errorf("HTTP_API_SECRET is required for HTTP_API_AUTH_MODE=%s", c.HTTPAPIAuthMode))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid HTTP_API_AUTH_MODE value: %q", c.HTTPAPIAuthMode))
	}
	return errs
}

func (c *Config) validateProviders() []error {
	var errs []error
	for _, p := range []struct {
		prefix   string
		provider Provider
	}{
		{"GOOGLE", c.Google},
		{"OFFICE", c.Office},
		{"OIDC", c.OIDC},
	} {
		if p.provider.Enabled() && !p.provider.complete() {
			errs = append(errs, fmt.Errorf(
				"%[1]s_CLIENT_ID, %[1]s_CLIENT_SECRET and %[1]s_REDIRECT_URI must be set together",
				p.prefix,
			))
		}
	}

	if !c.OIDC.Enabled() {
		return errs
	}
	if c.OIDCIssuerURL == "" {
		errs = append(errs, errors.New("OIDC_ISSUER_URL is required when OIDC is configured"))
	}
	switch {
	case c.OIDCProviderName == "":
		errs = append(errs, errors.New("OIDC_PROVIDER_NAME is required when OIDC is configured"))
	case slices.Contains(reservedProviderNames, c.OIDCProviderName),
		strings.HasSuffix(c.OIDCProviderName, "_authorization_code"):
		errs = append(errs, fmt.Errorf("OIDC_PROVIDER_NAME %q is reserved", c.OIDCProviderName))
	}
	return errs
}

// parseList splits a comma separated value, dropping blanks.
func parseList(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
