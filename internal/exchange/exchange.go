// Package exchange trades third-party authorization codes for verified
// identities. Each supported provider gets one Exchanger, built at startup.
//
// Every failure, whatever its cause, is reported as ErrExchangeFailed. The
// cause is logged and never returned so transport details do not leak to
// callers. Provider calls are never retried.
package exchange

//go:generate go tool mockgen -source=exchange.go -destination=mocks/mock_exchange.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-authgate/tokengate/internal/auth"
)

// ErrExchangeFailed indicates the provider did not yield a verified identity
var ErrExchangeFailed = errors.New("identity exchange failed")

// Exchanger trades an authorization code issued by a provider for the
// identity it asserts.
type Exchanger interface {
	Name() string
	Exchange(ctx context.Context, code string) (*auth.Identity, error)
}

// AccessTokenResolver is implemented by exchangers that can also resolve a
// provider access token the client obtained on its own.
type AccessTokenResolver interface {
	ResolveAccessToken(ctx context.Context, accessToken string) (*auth.Identity, error)
}

// ProviderConfig holds the client registration with a provider.
type ProviderConfig struct {
	Name         string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// Registry maps provider names to exchangers. It is read-only once built.
type Registry struct {
	exchangers map[string]Exchanger
}

// NewRegistry indexes exchangers by Name. Duplicate names are an error.
func NewRegistry(exchangers ...Exchanger) (*Registry, error) {
	r := &Registry{exchangers: make(map[string]Exchanger, len(exchangers))}
	for _, e := range exchangers {
		if _, dup := r.exchangers[e.Name()]; dup {
			return nil, fmt.Errorf("duplicate exchanger for provider %q", e.Name())
		}
		r.exchangers[e.Name()] = e
	}
	return r, nil
}

// Get returns the exchanger registered for provider.
func (r *Registry) Get(provider string) (Exchanger, bool) {
	if r == nil {
		return nil, false
	}
	e, ok := r.exchangers[provider]
	return e, ok
}

// Names lists the registered providers in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.exchangers))
	for name := range r.exchangers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
