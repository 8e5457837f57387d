package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-authgate/tokengate/internal/auth"
	"github.com/go-authgate/tokengate/internal/exchange"
	"github.com/go-authgate/tokengate/internal/metrics"
	"github.com/go-authgate/tokengate/internal/token"
)

const (
	GrantTypeClientCredentials = "client_credentials"
	GrantTypeAuthorizationCode = "authorization_code"

	// ProviderGrantSuffix turns a provider name into its code grant type,
	// e.g. "google" + ProviderGrantSuffix.
	ProviderGrantSuffix = "_" + GrantTypeAuthorizationCode
)

// GrantRequest carries the inputs of a token request.
type GrantRequest struct {
	GrantType     string
	Code          string
	AccessToken   string
	Authorization string
}

// GrantService routes token requests to the matching grant handler and
// issues a bearer token for the resolved claims.
type GrantService struct {
	codec       *token.Codec
	credentials *auth.CredentialChain
	identities  *auth.IdentityChain
	exchangers  *exchange.Registry
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewGrantService creates a GrantService. A nil logger discards output and a
// nil metrics records nothing.
func NewGrantService(
	codec *token.Codec,
	credentials *auth.CredentialChain,
	identities *auth.IdentityChain,
	exchangers *exchange.Registry,
	logger *slog.Logger,
	m *metrics.Metrics,
) *GrantService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if credentials == nil {
		credentials = auth.NewCredentialChain()
	}
	if identities == nil {
		identities = auth.NewIdentityChain()
	}
	return &GrantService{
		codec:       codec,
		credentials: credentials,
		identities:  identities,
		exchangers:  exchangers,
		logger:      logger,
		metrics:     m,
	}
}

// Dispatch handles a request on the token endpoint.
func (s *GrantService) Dispatch(ctx context.Context, req GrantRequest) (*token.Token, error) {
	grantType := strings.TrimSpace(req.GrantType)
	tok, err := s.dispatch(ctx, grantType, req)
	s.record(ctx, s.grantLabel(grantType), err)
	return tok, err
}

// IssueForProvider handles the dedicated per-provider endpoints, which only
// accept an authorization code.
func (s *GrantService) IssueForProvider(
	ctx context.Context,
	provider, code string,
) (*token.Token, error) {
	e, ok := s.exchangers.Get(provider)
	if !ok {
		err := invalidRequest("provider", MsgUnknownProvider)
		s.record(ctx, "unknown", err)
		return nil, err
	}
	tok, err := s.exchangeCode(ctx, e, code)
	s.record(ctx, provider+ProviderGrantSuffix, err)
	return tok, err
}

func (s *GrantService) dispatch(
	ctx context.Context,
	grantType string,
	req GrantRequest,
) (*token.Token, error) {
	switch grantType {
	case "":
		return nil, invalidRequest("grant_type", MsgNoGrantType)
	case GrantTypeClientCredentials:
		return s.clientCredentials(ctx, req.Authorization)
	case GrantTypeAuthorizationCode:
		return nil, invalidRequest("grant_type", MsgGrantNotSupported)
	}

	if provider, ok := strings.CutSuffix(grantType, ProviderGrantSuffix); ok {
		if e, found := s.exchangers.Get(provider); found {
			return s.exchangeCode(ctx, e, req.Code)
		}
	} else if e, found := s.exchangers.Get(grantType); found {
		return s.legacyProvider(ctx, e, req)
	}

	return nil, invalidRequest("grant_type", MsgUnknownGrantType)
}

func (s *GrantService) clientCredentials(ctx context.Context, header string) (*token.Token, error) {
	if strings.TrimSpace(header) == "" {
		return nil, invalidRequest("authorization", MsgNoAuthorization)
	}

	scheme, encoded := auth.SplitAuthorization(header)
	if scheme != "basic" {
		return nil, invalidRequest("authorization", MsgBasicRequired)
	}

	creds, err := auth.ParseBasic(encoded)
	if err != nil {
		return nil, basicParseError(err)
	}

	claims, err := s.credentials.Resolve(ctx, creds)
	if err != nil {
		return nil, resolveError(err)
	}
	return s.issue(claims)
}

// legacyProvider serves grant_type=<provider>, which takes either a code or a
// provider access token.
func (s *GrantService) legacyProvider(
	ctx context.Context,
	e exchange.Exchanger,
	req GrantRequest,
) (*token.Token, error) {
	if strings.TrimSpace(req.Code) != "" {
		return s.exchangeCode(ctx, e, req.Code)
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		return nil, invalidRequest("code", MsgNoCodeOrToken)
	}

	resolver, ok := e.(exchange.AccessTokenResolver)
	if !ok {
		return nil, invalidRequest("token", MsgAccessTokenRejected)
	}

	start := time.Now()
	identity, err := resolver.ResolveAccessToken(ctx, req.AccessToken)
	s.metrics.ObserveExchange(e.Name(), err == nil, time.Since(start))
	if err != nil {
		return nil, exchangeError("token", e.Name(), err)
	}
	return s.issueForIdentity(ctx, identity)
}

func (s *GrantService) exchangeCode(
	ctx context.Context,
	e exchange.Exchanger,
	code string,
) (*token.Token, error) {
	if strings.TrimSpace(code) == "" {
		return nil, invalidRequest("code", MsgNoCode)
	}

	start := time.Now()
	identity, err := e.Exchange(ctx, code)
	s.metrics.ObserveExchange(e.Name(), err == nil, time.Since(start))
	if err != nil {
		return nil, exchangeError("code", e.Name(), err)
	}
	return s.issueForIdentity(ctx, identity)
}

func (s *GrantService) issueForIdentity(
	ctx context.Context,
	identity *auth.Identity,
) (*token.Token, error) {
	if identity == nil {
		return nil, serverError(errors.New("exchanger returned no identity"))
	}
	claims, err := s.identities.Resolve(ctx, *identity)
	if err != nil {
		return nil, resolveError(err)
	}
	return s.issue(claims)
}

func (s *GrantService) issue(claims token.Claims) (*token.Token, error) {
	tok, err := s.codec.Issue(claims)
	if err != nil {
		return nil, serverError(err)
	}
	return tok, nil
}

func (s *GrantService) record(ctx context.Context, grant string, err error) {
	if err == nil {
		s.metrics.RecordIssued(grant)
		s.logger.InfoContext(ctx, "token issued", "grant_type", grant)
		return
	}

	kind := KindOf(err)
	s.metrics.RecordGrantFailure(grant, string(kind))
	if kind == KindServerError {
		s.logger.ErrorContext(ctx, "token request failed", "grant_type", grant, "error", err)
		return
	}
	s.logger.WarnContext(ctx, "token request rejected",
		"grant_type", grant, "kind", kind, "reason", err.Error())
}

// grantLabel bounds the metric label set to grant types the service knows.
func (s *GrantService) grantLabel(grantType string) string {
	switch grantType {
	case "":
		return "none"
	case GrantTypeClientCredentials, GrantTypeAuthorizationCode:
		return grantType
	}
	name := strings.TrimSuffix(grantType, ProviderGrantSuffix)
	if _, ok := s.exchangers.Get(name); ok {
		return grantType
	}
	return "unknown"
}

func exchangeError(field, provider string, cause error) *Error {
	return &Error{
		Kind:    KindInvalidRequest,
		Field:   field,
		Message: "could not obtain a verified identity from " + provider,
		Err:     cause,
	}
}

func basicParseError(err error) *Error {
	e := invalidRequest("authorization", MsgMalformedCredentials)
	if errors.Is(err, auth.ErrMalformedBasic) {
		e.Message = MsgMalformedBasic
	}
	e.Err = err
	return e
}

// resolveError maps a chain failure: rejection by every validator is a
// credentials error, anything else is a fault.
func resolveError(err error) *Error {
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return invalidCredentials(err)
	}
	return serverError(err)
}
