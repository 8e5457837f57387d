package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultTimeout bounds a single provider call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Option configures an exchanger.
type Option func(*base)

// WithHTTPClient sets the client used for provider calls.
func WithHTTPClient(client *http.Client) Option {
	return func(b *base) {
		b.httpClient = client
	}
}

// WithTimeout bounds each Exchange or ResolveAccessToken call.
func WithTimeout(timeout time.Duration) Option {
	return func(b *base) {
		if timeout > 0 {
			b.timeout = timeout
		}
	}
}

// WithLogger sets the logger used to record failure causes.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type base struct {
	name       string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

func newBase(name string, opts []Option) base {
	b := base{
		name:       name,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) Name() string {
	return b.name
}

// callContext derives the per-call context: bounded by the timeout and
// carrying our HTTP client for golang.org/x/oauth2.
func (b *base) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	return context.WithValue(ctx, oauth2.HTTPClient, b.httpClient), cancel
}

// fail logs cause and returns ErrExchangeFailed with a fixed reason.
func (b *base) fail(ctx context.Context, reason string, cause error) error {
	attrs := []any{"provider", b.name, "reason", reason}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	b.logger.WarnContext(ctx, "identity exchange failed", attrs...)
	return fmt.Errorf("%w: %s", ErrExchangeFailed, reason)
}

func oauth2Config(cfg ProviderConfig, endpoint oauth2.Endpoint, defaultScopes []string) *oauth2.Config {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	// Auto-detection sends a failed exchange to the token endpoint twice.
	if endpoint.AuthStyle == oauth2.AuthStyleAutoDetect {
		endpoint.AuthStyle = oauth2.AuthStyleInParams
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}
}

// emailVerified reports false only when the provider explicitly says the
// address is unverified.
func emailVerified(v any) bool {
	switch verified := v.(type) {
	case bool:
		return verified
	case string:
		return !strings.EqualFold(verified, "false")
	default:
		return true
	}
}
