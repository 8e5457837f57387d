package server

import (
	"log/slog"

	"github.com/go-authgate/tokengate/internal/handlers"
	"github.com/go-authgate/tokengate/internal/middleware"
	"github.com/go-authgate/tokengate/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options wires the HTTP surface. RateLimiter and Metrics are optional.
type Options struct {
	GrantService *services.GrantService
	AuthService  *services.AuthService
	Health       handlers.Pinger
	RateLimiter  gin.HandlerFunc
	Metrics      prometheus.Gatherer
	Logger       *slog.Logger
}

// NewRouter builds the gin engine serving the token endpoints.
func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger))

	r.GET("/healthz", handlers.NewHealthHandler(opts.Health).Health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{})))
	}

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if opts.RateLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{opts.RateLimiter, h}
	}

	tokenHandler := handlers.NewTokenHandler(opts.GrantService)

	oauth := r.Group("/oauth")
	{
		oauth.POST("/token", limited(tokenHandler.Token)...)
		oauth.POST("/authorization", handlers.Authorization)
		oauth.POST("/:provider", limited(tokenHandler.Provider)...)
		oauth.GET("/me",
			middleware.Authenticate(opts.AuthService),
			middleware.RequireAuth(),
			handlers.Me,
		)
	}

	return r
}
