package auth

import (
	"context"
	"errors"

	"github.com/go-authgate/tokengate/internal/models"
	"github.com/go-authgate/tokengate/internal/store"
	"github.com/go-authgate/tokengate/internal/token"

	"golang.org/x/crypto/bcrypt"
)

// UserStore is the subset of the store used by the local validators.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// dummyHash keeps the response time of unknown usernames close to that of
// wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("tokengate-dummy-password"), bcrypt.DefaultCost)

// LocalCredentialValidator checks Basic credentials against bcrypt hashes in
// the user store.
type LocalCredentialValidator struct {
	users UserStore
}

func NewLocalCredentialValidator(users UserStore) *LocalCredentialValidator {
	return &LocalCredentialValidator{users: users}
}

func (v *LocalCredentialValidator) Validate(ctx context.Context, in Credentials) (token.Claims, error) {
	user, err := v.users.GetUserByUsername(ctx, in.Username)
	if errors.Is(err, store.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
		return nil, ErrNotApplicable
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, ErrNotApplicable
	}
	if !user.IsActive {
		return nil, ErrNotApplicable
	}
	return user.Claims(), nil
}

// LocalIdentityValidator accepts provider identities whose email belongs to
// an active local user.
type LocalIdentityValidator struct {
	users UserStore
}

func NewLocalIdentityValidator(users UserStore) *LocalIdentityValidator {
	return &LocalIdentityValidator{users: users}
}

func (v *LocalIdentityValidator) Validate(ctx context.Context, in Identity) (token.Claims, error) {
	user, err := v.users.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, ErrNotApplicable
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrNotApplicable
	}
	return user.Claims(), nil
}

// HashPassword returns the bcrypt hash stored for a new user.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
