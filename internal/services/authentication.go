package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-authgate/tokengate/internal/auth"
	"github.com/go-authgate/tokengate/internal/metrics"
	"github.com/go-authgate/tokengate/internal/token"
)

// AuthService checks the Authorization header of requests to protected
// resources.
type AuthService struct {
	codec       *token.Codec
	credentials *auth.CredentialChain
	allowBasic  bool
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithBasicAuthentication lets Basic credentials authenticate directly
// against the credential chain.
func WithBasicAuthentication(credentials *auth.CredentialChain) AuthOption {
	return func(s *AuthService) {
		s.allowBasic = true
		s.credentials = credentials
	}
}

// WithAuthLogger sets the logger.
func WithAuthLogger(logger *slog.Logger) AuthOption {
	return func(s *AuthService) {
		s.logger = logger
	}
}

// WithAuthMetrics sets the metrics sink.
func WithAuthMetrics(m *metrics.Metrics) AuthOption {
	return func(s *AuthService) {
		s.metrics = m
	}
}

// NewAuthService creates an AuthService that accepts bearer tokens minted by codec.
func NewAuthService(codec *token.Codec, opts ...AuthOption) *AuthService {
	s := &AuthService{codec: codec}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.credentials == nil {
		s.credentials = auth.NewCredentialChain()
	}
	return s
}

// Authenticate returns the claims carried by header. An empty header yields
// nil claims and no error; whether anonymous access is allowed is up to the
// caller.
func (s *AuthService) Authenticate(ctx context.Context, header string) (token.Claims, error) {
	if strings.TrimSpace(header) == "" {
		s.metrics.RecordAuthentication("none", "anonymous")
		return nil, nil
	}

	scheme, credentials := auth.SplitAuthorization(header)
	switch {
	case scheme == "bearer":
		claims, err := s.codec.Decode(credentials)
		if err != nil {
			s.metrics.RecordAuthentication(scheme, "invalid")
			return nil, invalidToken(MsgInvalidToken, err)
		}
		s.metrics.RecordAuthentication(scheme, "valid")
		return claims, nil

	case scheme == "basic" && s.allowBasic:
		claims, err := s.basic(ctx, credentials)
		if err != nil {
			s.metrics.RecordAuthentication(scheme, "invalid")
			if KindOf(err) == KindServerError {
				s.logger.ErrorContext(ctx, "basic authentication failed", "error", err)
			}
			return nil, err
		}
		s.metrics.RecordAuthentication(scheme, "valid")
		return claims, nil
	}

	s.metrics.RecordAuthentication("other", "invalid")
	return nil, invalidToken(MsgUnrecognizedToken, nil)
}

func (s *AuthService) basic(ctx context.Context, encoded string) (token.Claims, error) {
	creds, err := auth.ParseBasic(encoded)
	if err != nil {
		return nil, basicParseError(err)
	}
	claims, err := s.credentials.Resolve(ctx, creds)
	if err != nil {
		return nil, resolveError(err)
	}
	return claims, nil
}
