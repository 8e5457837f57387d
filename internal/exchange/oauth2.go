package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-authgate/tokengate/internal/auth"

	"golang.org/x/oauth2"
)

const maxUserInfoSize = 1 << 20

var errNoEmail = errors.New("no email in userinfo response")

// OAuth2Exchanger exchanges the code at the provider's token endpoint and
// reads the email from its userinfo endpoint.
type OAuth2Exchanger struct {
	base
	config      *oauth2.Config
	userInfoURL string
	emailFields []string
}

var (
	_ Exchanger           = (*OAuth2Exchanger)(nil)
	_ AccessTokenResolver = (*OAuth2Exchanger)(nil)
)

// NewOAuth2 builds an exchanger for a plain OAuth2 provider. emailFields are
// tried in order against the userinfo document; "email" is used when empty.
func NewOAuth2(
	cfg ProviderConfig,
	endpoint oauth2.Endpoint,
	userInfoURL string,
	emailFields []string,
	opts ...Option,
) *OAuth2Exchanger {
	if len(emailFields) == 0 {
		emailFields = []string{"email"}
	}
	return &OAuth2Exchanger{
		base:        newBase(cfg.Name, opts),
		config:      oauth2Config(cfg, endpoint, []string{"openid", "email", "profile"}),
		userInfoURL: userInfoURL,
		emailFields: emailFields,
	}
}

func (e *OAuth2Exchanger) Exchange(ctx context.Context, code string) (*auth.Identity, error) {
	if code == "" {
		return nil, e.fail(ctx, "empty authorization code", nil)
	}

	ctx, cancel := e.callContext(ctx)
	defer cancel()

	tok, err := e.config.Exchange(ctx, code)
	if err != nil {
		return nil, e.fail(ctx, "token endpoint rejected the code", err)
	}
	return e.userInfo(ctx, tok.AccessToken)
}

// ResolveAccessToken reads the identity behind an access token the client
// obtained from the provider directly.
func (e *OAuth2Exchanger) ResolveAccessToken(ctx context.Context, accessToken string) (*auth.Identity, error) {
	if accessToken == "" {
		return nil, e.fail(ctx, "empty access token", nil)
	}

	ctx, cancel := e.callContext(ctx)
	defer cancel()

	return e.userInfo(ctx, accessToken)
}

func (e *OAuth2Exchanger) userInfo(ctx context.Context, accessToken string) (*auth.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.userInfoURL, nil)
	if err != nil {
		return nil, e.fail(ctx, "invalid userinfo endpoint", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, e.fail(ctx, "userinfo request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, e.fail(ctx, "userinfo request rejected", fmt.Errorf("status %d", resp.StatusCode))
	}

	var info map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoSize)).Decode(&info); err != nil {
		return nil, e.fail(ctx, "invalid userinfo response", err)
	}

	if !emailVerified(info["email_verified"]) {
		return nil, e.fail(ctx, "email not verified", nil)
	}
	for _, field := range e.emailFields {
		if email, _ := info[field].(string); strings.Contains(email, "@") {
			return &auth.Identity{Provider: e.name, Email: email}, nil
		}
	}
	return nil, e.fail(ctx, "could not obtain email from provider", errNoEmail)
}
