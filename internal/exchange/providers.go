package exchange

import (
	"golang.org/x/oauth2/endpoints"
)

const (
	ProviderGoogle = "google"
	ProviderOffice = "office"

	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	officeUserInfoURL = "https://graph.microsoft.com/v1.0/me"
)

// NewGoogle returns the Google exchanger.
func NewGoogle(cfg ProviderConfig, opts ...Option) *OAuth2Exchanger {
	if cfg.Name == "" {
		cfg.Name = ProviderGoogle
	}
	return NewOAuth2(cfg, endpoints.Google, googleUserInfoURL, []string{"email"}, opts...)
}

// NewOffice returns the Microsoft 365 exchanger for tenant ("common" when
// empty). Graph reports the address as mail, falling back to the UPN.
func NewOffice(cfg ProviderConfig, tenant string, opts ...Option) *OAuth2Exchanger {
	if cfg.Name == "" {
		cfg.Name = ProviderOffice
	}
	if tenant == "" {
		tenant = "common"
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "email", "profile", "User.Read"}
	}
	return NewOAuth2(cfg, endpoints.AzureAD(tenant), officeUserInfoURL, []string{"mail", "userPrincipalName"}, opts...)
}
