package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-authgate/tokengate/internal/middleware"
	"github.com/go-authgate/tokengate/internal/services"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	GrantType string `form:"grant_type" json:"grant_type"`
	Code      string `form:"code"       json:"code"`
	Token     string `form:"token"      json:"token"`
}

type providerRequest struct {
	Code string `form:"code" json:"code"`
}

type TokenHandler struct {
	grantService *services.GrantService
}

func NewTokenHandler(gs *services.GrantService) *TokenHandler {
	return &TokenHandler{grantService: gs}
}

// Token handles POST /oauth/token. The body may be JSON or form encoded.
func (h *TokenHandler) Token(c *gin.Context) {
	var req tokenRequest
	if !bindOptional(c, &req) {
		return
	}

	tok, err := h.grantService.Dispatch(c.Request.Context(), services.GrantRequest{
		GrantType:     req.GrantType,
		Code:          req.Code,
		AccessToken:   req.Token,
		Authorization: c.GetHeader("Authorization"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusOK, tok)
}

// Provider handles POST /oauth/:provider, exchanging an authorization code
// issued by that provider.
func (h *TokenHandler) Provider(c *gin.Context) {
	var req providerRequest
	if !bindOptional(c, &req) {
		return
	}

	tok, err := h.grantService.IssueForProvider(c.Request.Context(), c.Param("provider"), req.Code)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusOK, tok)
}

// bindOptional binds the request body into obj. An empty body leaves obj
// zero-valued so the service can report which field is missing.
func bindOptional(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"request": "malformed request body",
		})
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}
