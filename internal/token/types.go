package token

// TypeBearer is the only token type issued.
const TypeBearer = "bearer"

// Claims is the application-defined payload embedded in an access token.
// The codec passes it through untouched and never reads specific keys.
type Claims map[string]any

// Token is the wire representation returned by the issuance endpoint.
// ExpiresIn, Scope and RefreshToken are reserved and currently always null.
type Token struct {
	TokenType    string  `json:"token_type"`
	AccessToken  string  `json:"access_token"`
	ExpiresIn    *int64  `json:"expires_in"`
	Scope        *string `json:"scope"`
	RefreshToken *string `json:"refresh_token"`
}
