package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-authgate/tokengate/internal/token"
)

// Validator turns an input into a claims payload. It returns ErrNotApplicable
// to decline; any other error is treated as a fault.
type Validator[In any] interface {
	Validate(ctx context.Context, in In) (token.Claims, error)
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc[In any] func(ctx context.Context, in In) (token.Claims, error)

// Validate calls f(ctx, in).
func (f ValidatorFunc[In]) Validate(ctx context.Context, in In) (token.Claims, error) {
	return f(ctx, in)
}

// Chain is an ordered, first-match-wins list of validators. Validators are
// meant to be registered at startup; Resolve works on a snapshot so a late
// Register never races an in-flight Resolve.
type Chain[In any] struct {
	mu         sync.RWMutex
	validators []Validator[In]
}

// CredentialChain resolves Basic credentials.
type CredentialChain = Chain[Credentials]

// IdentityChain resolves provider-asserted identities.
type IdentityChain = Chain[Identity]

// NewChain returns an empty chain.
func NewChain[In any]() *Chain[In] {
	return &Chain[In]{}
}

// NewCredentialChain returns an empty credential chain.
func NewCredentialChain() *CredentialChain {
	return NewChain[Credentials]()
}

// NewIdentityChain returns an empty identity chain.
func NewIdentityChain() *IdentityChain {
	return NewChain[Identity]()
}

// Register appends v. Duplicates are not detected.
func (c *Chain[In]) Register(v Validator[In]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Copy on write: snapshots handed out by Resolve stay untouched.
	next := make([]Validator[In], len(c.validators), len(c.validators)+1)
	copy(next, c.validators)
	c.validators = append(next, v)
}

// RegisterFunc appends a function validator.
func (c *Chain[In]) RegisterFunc(fn func(ctx context.Context, in In) (token.Claims, error)) {
	c.Register(ValidatorFunc[In](fn))
}

// Len reports the number of registered validators.
func (c *Chain[In]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.validators)
}

// Resolve runs the validators in registration order and returns the claims of
// the first one that accepts in.
func (c *Chain[In]) Resolve(ctx context.Context, in In) (token.Claims, error) {
	c.mu.RLock()
	validators := c.validators
	c.mu.RUnlock()

	for i, v := range validators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		claims, err := v.Validate(ctx, in)
		switch {
		case err == nil:
			if claims == nil {
				claims = token.Claims{}
			}
			return claims, nil
		case errors.Is(err, ErrNotApplicable):
			continue
		default:
			return nil, fmt.Errorf("%w: validator %d: %w", ErrValidatorFault, i, err)
		}
	}

	return nil, ErrInvalidCredentials
}
