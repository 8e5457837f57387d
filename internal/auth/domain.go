package auth

import (
	"context"
	"strings"

	"github.com/go-authgate/tokengate/internal/token"
)

// EmailDomainValidator accepts any provider identity whose email domain is on
// the allow-list. Register it after the local validator so known users keep
// their stored claims.
type EmailDomainValidator struct {
	domains map[string]struct{}
}

func NewEmailDomainValidator(domains []string) *EmailDomainValidator {
	v := &EmailDomainValidator{domains: make(map[string]struct{}, len(domains))}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			v.domains[d] = struct{}{}
		}
	}
	return v
}

func (v *EmailDomainValidator) Validate(_ context.Context, in Identity) (token.Claims, error) {
	at := strings.LastIndexByte(in.Email, '@')
	if at <= 0 || at == len(in.Email)-1 {
		return nil, ErrNotApplicable
	}
	if _, ok := v.domains[strings.ToLower(in.Email[at+1:])]; !ok {
		return nil, ErrNotApplicable
	}

	email := strings.ToLower(in.Email)
	return token.Claims{
		"sub":      email,
		"email":    email,
		"provider": in.Provider,
	}, nil
}
