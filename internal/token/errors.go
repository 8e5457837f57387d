package token

import "errors"

var (
	// ErrEmptySecret indicates the codec was built without a signing secret
	ErrEmptySecret = errors.New("signing secret is required")

	// ErrWeakSecret indicates the signing secret is shorter than MinSecretLength
	ErrWeakSecret = errors.New("signing secret is too short")

	// ErrTokenGeneration indicates token generation failed
	ErrTokenGeneration = errors.New("failed to generate token")

	// ErrInvalidToken indicates the token is malformed, was not signed with our
	// secret, or has expired. Callers never learn which.
	ErrInvalidToken = errors.New("invalid token")
)
