package handlers

import (
	"net/http"

	"github.com/go-authgate/tokengate/internal/services"

	"github.com/gin-gonic/gin"
)

// authorizationRequest holds the RFC 6749 section 4.1.1 parameters.
type authorizationRequest struct {
	ResponseType string `form:"response_type" json:"response_type"`
	ClientID     string `form:"client_id"     json:"client_id"`
	RedirectURI  string `form:"redirect_uri"  json:"redirect_uri"`
	Scope        string `form:"scope"         json:"scope"`
	State        string `form:"state"         json:"state"`
}

func (r authorizationRequest) missing() map[string]string {
	errs := map[string]string{}
	for _, f := range []struct{ name, value string }{
		{"response_type", r.ResponseType},
		{"client_id", r.ClientID},
		{"redirect_uri", r.RedirectURI},
		{"scope", r.Scope},
		{"state", r.State},
	} {
		if f.value == "" {
			errs[f.name] = f.name + " is required"
		}
	}
	return errs
}

// Authorization handles POST /oauth/authorization. The request is validated
// but the authorization code flow is not offered.
func Authorization(c *gin.Context) {
	var req authorizationRequest
	if !bindOptional(c, &req) {
		return
	}

	if errs := req.missing(); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, errs)
		return
	}

	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"grant_type": services.MsgGrantNotSupported,
	})
}
