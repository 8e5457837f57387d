package services

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/go-authgate/tokengate/internal/auth"
	"github.com/go-authgate/tokengate/internal/token"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec(testSecret)
	require.NoError(t, err)
	return codec
}

func basicHeader(userpass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(userpass))
}

// staticCredentials accepts exactly one username/password pair.
func staticCredentials(username, password string, claims token.Claims) auth.Validator[auth.Credentials] {
	return auth.ValidatorFunc[auth.Credentials](
		func(_ context.Context, in auth.Credentials) (token.Claims, error) {
			if in.Username == username && in.Password == password {
				return claims, nil
			}
			return nil, auth.ErrNotApplicable
		},
	)
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, kind, e.Kind, "unexpected kind for %v", err)
	return e
}
