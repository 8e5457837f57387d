package handlers

import (
	"net/http"

	"github.com/go-authgate/tokengate/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Me returns the claims of the authenticated caller.
func Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"token": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, claims)
}
