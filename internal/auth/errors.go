package auth

import "errors"

var (
	// ErrNotApplicable is returned by a validator that does not recognise the
	// input. The chain moves on to the next validator.
	ErrNotApplicable = errors.New("validator not applicable")

	// ErrInvalidCredentials indicates no registered validator accepted the input
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidatorFault wraps an unexpected validator error. It stops the chain.
	ErrValidatorFault = errors.New("validator failed")

	// Basic header parsing errors

	// ErrMalformedBasic indicates the Basic credentials are not valid base64
	ErrMalformedBasic = errors.New("malformed basic credentials")

	// ErrMalformedCredentials indicates the decoded value is not user:pass
	ErrMalformedCredentials = errors.New("malformed credentials header")
)
