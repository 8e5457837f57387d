package middleware

import (
	"context"
	"net/http"

	"github.com/go-authgate/tokengate/internal/services"
	"github.com/go-authgate/tokengate/internal/token"

	"github.com/gin-gonic/gin"
)

const (
	// ContextClaims is the gin context key holding the caller's token.Claims
	ContextClaims = "claims"

	bearerChallenge = `Bearer realm="tokengate"`
)

// Authenticator resolves an Authorization header to claims.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (token.Claims, error)
}

// Authenticate attaches the caller's claims to the context. Requests without
// an Authorization header pass through anonymously; invalid credentials abort
// the request.
func Authenticate(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticator.Authenticate(
			c.Request.Context(),
			c.GetHeader("Authorization"),
		)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		if claims != nil {
			c.Set(ContextClaims, claims)
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous requests. It must run after Authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ClaimsFromContext(c); !ok {
			c.Header("WWW-Authenticate", bearerChallenge)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"token": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// ClaimsFromContext returns the claims set by Authenticate.
func ClaimsFromContext(c *gin.Context) (token.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(token.Claims)
	return claims, ok
}

// AbortWithError writes the response for a service error and aborts the chain.
func AbortWithError(c *gin.Context, err error) {
	if services.KindOf(err) == services.KindInvalidToken {
		c.Header("WWW-Authenticate", bearerChallenge+`, error="invalid_token"`)
	}
	c.AbortWithStatusJSON(services.HTTPStatus(err), services.ErrorBody(err))
}
