package token

import (
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HS256 secret accepted by NewCodec.
const MinSecretLength = 32

var signingMethod = jwt.SigningMethodHS256

// timeClaims are checked by Decode, so they must hold NumericDate values.
var timeClaims = []string{"exp", "nbf", "iat"}

// Codec signs and verifies access tokens with a single shared secret.
// A Codec is immutable and safe for concurrent use. Rotating the secret
// requires a restart and invalidates every token issued before it.
type Codec struct {
	secret []byte
	parser *jwt.Parser
}

// NewCodec returns a codec for the given secret. It refuses empty or short
// secrets so a misconfigured process fails at startup.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinSecretLength)
	}

	return &Codec{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{signingMethod.Alg()}),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// ValidateClaims reports whether claims can be decoded once encoded. A
// present exp, nbf or iat must be a number.
func ValidateClaims(claims Claims) error {
	for _, name := range timeClaims {
		v, ok := claims[name]
		if !ok {
			continue
		}
		switch v.(type) {
		case float64, float32, int, int32, int64, uint, uint32, uint64, json.Number:
		default:
			return fmt.Errorf("%w: claim %q must be a number, got %T", ErrTokenGeneration, name, v)
		}
	}
	return nil
}

// Encode returns a signed access token carrying claims. Claims that Decode
// would reject are refused with ErrTokenGeneration.
func (c *Codec) Encode(claims Claims) (string, error) {
	if err := ValidateClaims(claims); err != nil {
		return "", err
	}

	payload := jwt.MapClaims{}
	for k, v := range claims {
		payload[k] = v
	}

	signed, err := jwt.NewWithClaims(signingMethod, payload).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return signed, nil
}

// Decode verifies accessToken and returns its claims. Every failure maps to
// ErrInvalidToken.
func (c *Codec) Decode(accessToken string) (Claims, error) {
	parsed, err := c.parser.Parse(accessToken, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return Claims(mapClaims), nil
}

// Issue encodes claims and wraps the result in a bearer Token.
func (c *Codec) Issue(claims Claims) (*Token, error) {
	accessToken, err := c.Encode(claims)
	if err != nil {
		return nil, err
	}
	return &Token{
		TokenType:   TypeBearer,
		AccessToken: accessToken,
	}, nil
}
