package services

import (
	"errors"
	"net/http"
)

// ErrorKind classifies a failure for the transport layer.
type ErrorKind string

const (
	KindInvalidRequest     ErrorKind = "invalid_request"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindInvalidToken       ErrorKind = "invalid_token"
	KindServerError        ErrorKind = "server_error"
)

const (
	MsgNoGrantType          = "no grant_type specified"
	MsgUnknownGrantType     = "unknown grant type"
	MsgGrantNotSupported    = "grant type not supported"
	MsgNoAuthorization      = "no authorization header set"
	MsgBasicRequired        = "authorization header must contain basic header credentials"
	MsgMalformedBasic       = "malformed basic credentials"
	MsgMalformedCredentials = "malformed credentials header"
	MsgNoCode               = "no code specified"
	MsgNoCodeOrToken        = "no code or token specified"
	MsgUnknownProvider      = "unknown provider"
	MsgAccessTokenRejected  = "provider does not accept access tokens"
	MsgInvalidCredentials   = "invalid credentials"
	MsgInvalidToken         = "invalid token"
	MsgUnrecognizedToken    = "unrecognized token format"
	MsgInternal             = "internal error"
)

// Error is the failure type returned by GrantService and AuthService.
// Message is safe to show to the caller; Err carries the internal cause.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidRequest(field, message string) *Error {
	return &Error{Kind: KindInvalidRequest, Field: field, Message: message}
}

func invalidCredentials(cause error) *Error {
	return &Error{
		Kind:    KindInvalidCredentials,
		Field:   "credentials",
		Message: MsgInvalidCredentials,
		Err:     cause,
	}
}

func invalidToken(message string, cause error) *Error {
	return &Error{Kind: KindInvalidToken, Field: "token", Message: message, Err: cause}
}

func serverError(cause error) *Error {
	return &Error{Kind: KindServerError, Field: "server", Message: MsgInternal, Err: cause}
}

// KindOf returns the kind of err. Errors that are not *Error are server errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServerError
}

// HTTPStatus maps err to its response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidRequest:
		return http.StatusUnprocessableEntity
	case KindInvalidCredentials, KindInvalidToken:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody renders err as a single-entry map from field to message.
// Internal causes never appear in the body.
func ErrorBody(err error) map[string]string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindServerError {
		return map[string]string{"server": MsgInternal}
	}
	return map[string]string{e.Field: e.Message}
}
