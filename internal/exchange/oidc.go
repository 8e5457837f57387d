package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-authgate/tokengate/internal/auth"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

var errNoIDToken = errors.New("token response has no id_token")

// OIDCExchanger exchanges the code and takes the email from the verified
// ID token, so no userinfo round trip is needed.
type OIDCExchanger struct {
	base
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

var _ Exchanger = (*OIDCExchanger)(nil)

// NewOIDC discovers issuer and builds an exchanger whose ID tokens must be
// issued by issuer for cfg.ClientID.
func NewOIDC(ctx context.Context, cfg ProviderConfig, issuer string, opts ...Option) (*OIDCExchanger, error) {
	b := newBase(cfg.Name, opts)

	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, b.httpClient), issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider %q: %w", cfg.Name, err)
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	return NewOIDCWithVerifier(cfg, provider.Endpoint(), verifier, opts...), nil
}

// NewOIDCWithVerifier builds an exchanger from an already known endpoint and
// verifier.
func NewOIDCWithVerifier(
	cfg ProviderConfig,
	endpoint oauth2.Endpoint,
	verifier *oidc.IDTokenVerifier,
	opts ...Option,
) *OIDCExchanger {
	return &OIDCExchanger{
		base:     newBase(cfg.Name, opts),
		config:   oauth2Config(cfg, endpoint, []string{oidc.ScopeOpenID, "email", "profile"}),
		verifier: verifier,
	}
}

func (e *OIDCExchanger) Exchange(ctx context.Context, code string) (*auth.Identity, error) {
	if code == "" {
		return nil, e.fail(ctx, "empty authorization code", nil)
	}

	ctx, cancel := e.callContext(ctx)
	defer cancel()
	ctx = oidc.ClientContext(ctx, e.httpClient)

	tok, err := e.config.Exchange(ctx, code)
	if err != nil {
		return nil, e.fail(ctx, "token endpoint rejected the code", err)
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, e.fail(ctx, "provider returned no id_token", errNoIDToken)
	}

	idToken, err := e.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, e.fail(ctx, "id_token verification failed", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified any    `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, e.fail(ctx, "invalid id_token claims", err)
	}
	if claims.Email == "" {
		return nil, e.fail(ctx, "could not obtain email from provider", nil)
	}
	if !emailVerified(claims.EmailVerified) {
		return nil, e.fail(ctx, "email not verified", nil)
	}

	return &auth.Identity{Provider: e.name, Email: claims.Email}, nil
}
