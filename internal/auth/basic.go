package auth

import (
	"encoding/base64"
	"strings"
)

// ParseBasic decodes the credentials part of a Basic Authorization header.
// The decoded value is split on the first colon, so passwords may contain
// colons but a value without one is rejected.
func ParseBasic(encoded string) (Credentials, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return Credentials{}, ErrMalformedBasic
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return Credentials{}, ErrMalformedCredentials
	}

	return Credentials{Username: username, Password: password}, nil
}

// SplitAuthorization splits an Authorization header into its scheme and
// credentials on the first space. The scheme is lower-cased.
func SplitAuthorization(header string) (scheme, credentials string) {
	scheme, credentials, _ = strings.Cut(strings.TrimSpace(header), " ")
	return strings.ToLower(scheme), strings.TrimSpace(credentials)
}
