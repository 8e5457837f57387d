package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-authgate/tokengate/internal/auth"
	"github.com/go-authgate/tokengate/internal/config"
	"github.com/go-authgate/tokengate/internal/exchange"
	"github.com/go-authgate/tokengate/internal/httpclient"
	"github.com/go-authgate/tokengate/internal/metrics"
	"github.com/go-authgate/tokengate/internal/middleware"
	"github.com/go-authgate/tokengate/internal/server"
	"github.com/go-authgate/tokengate/internal/services"
	"github.com/go-authgate/tokengate/internal/store"
	"github.com/go-authgate/tokengate/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type app struct {
	store       *store.Store
	credentials *auth.CredentialChain
	identities  *auth.IdentityChain
	exchangers  *exchange.Registry
	router      *gin.Engine
}

// newApp opens the store and builds the validator chains, the provider
// exchangers and the router from cfg. The store is closed on error.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	codec, err := token.NewCodec(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	s, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	credentials, err := newCredentialChain(cfg, s)
	if err != nil {
		return nil, err
	}
	identities := newIdentityChain(cfg, s)

	exchangers, err := newExchangers(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var (
		m    *metrics.Metrics
		opts = server.Options{Health: s, Logger: logger}
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(reg)
		opts.Metrics = reg
	}

	if cfg.EnableRateLimit {
		opts.RateLimiter, err = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.TokenRateLimit,
			StoreType:         middleware.RateLimitStoreType(cfg.RateLimitStore),
			RedisAddr:         cfg.RedisAddr,
			RedisPassword:     cfg.RedisPassword,
			RedisDB:           cfg.RedisDB,
			Logger:            logger,
		})
		if err != nil {
			return nil, err
		}
	}

	authOpts := []services.AuthOption{
		services.WithAuthLogger(logger),
		services.WithAuthMetrics(m),
	}
	if cfg.AllowBasicAuthentication {
		authOpts = append(authOpts, services.WithBasicAuthentication(credentials))
	}

	opts.GrantService = services.NewGrantService(codec, credentials, identities, exchangers, logger, m)
	opts.AuthService = services.NewAuthService(codec, authOpts...)

	return &app{
		store:       s,
		credentials: credentials,
		identities:  identities,
		exchangers:  exchangers,
		router:      server.NewRouter(opts),
	}, nil
}

// newCredentialChain registers the Basic credential validators in AUTH_MODE
// order.
func newCredentialChain(cfg *config.Config, s *store.Store) (*auth.CredentialChain, error) {
	chain := auth.NewCredentialChain()
	for _, mode := range cfg.AuthModes {
		switch mode {
		case config.AuthModeLocal:
			chain.Register(auth.NewLocalCredentialValidator(s))
		case config.AuthModeHTTPAPI:
			client, err := httpclient.New(httpclient.Config{
				AuthMode:           cfg.HTTPAPIAuthMode,
				Secret:             cfg.HTTPAPISecret,
				Timeout:            cfg.HTTPAPITimeout,
				InsecureSkipVerify: cfg.HTTPAPIInsecureSkipVerify,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to build HTTP API client: %w", err)
			}
			chain.Register(auth.NewHTTPAPIValidator(cfg.HTTPAPIURL, client))
		}
	}
	return chain, nil
}

// newIdentityChain accepts known users first, then allow-listed domains.
func newIdentityChain(cfg *config.Config, s *store.Store) *auth.IdentityChain {
	chain := auth.NewIdentityChain()
	chain.Register(auth.NewLocalIdentityValidator(s))
	if len(cfg.AllowedEmailDomains) > 0 {
		chain.Register(auth.NewEmailDomainValidator(cfg.AllowedEmailDomains))
	}
	return chain
}

func newExchangers(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*exchange.Registry, error) {
	opts := []exchange.Option{
		exchange.WithTimeout(cfg.ProviderExchangeTimeout),
		exchange.WithLogger(logger),
	}
	providerConfig := func(name string, p config.Provider) exchange.ProviderConfig {
		return exchange.ProviderConfig{
			Name:         name,
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			RedirectURI:  p.RedirectURI,
		}
	}

	var exchangers []exchange.Exchanger
	if cfg.Google.Enabled() {
		exchangers = append(exchangers,
			exchange.NewGoogle(providerConfig(exchange.ProviderGoogle, cfg.Google), opts...))
	}
	if cfg.Office.Enabled() {
		exchangers = append(exchangers,
			exchange.NewOffice(providerConfig(exchange.ProviderOffice, cfg.Office), cfg.OfficeTenant, opts...))
	}
	if cfg.OIDC.Enabled() {
		e, err := exchange.NewOIDC(ctx,
			providerConfig(cfg.OIDCProviderName, cfg.OIDC), cfg.OIDCIssuerURL, opts...)
		if err != nil {
			return nil, err
		}
		exchangers = append(exchangers, e)
	}

	return exchange.NewRegistry(exchangers...)
}
