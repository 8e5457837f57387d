package models

import (
	"time"

	"github.com/go-authgate/tokengate/internal/token"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account that can obtain tokens with Basic credentials or,
// through an identity provider, with its email address.
type User struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FullName     string
	Role         string         `gorm:"not null;default:'user'"`
	IsActive     bool           `gorm:"not null"`
	ExtraClaims  map[string]any `gorm:"serializer:json"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Claims builds the token payload for u. ExtraClaims are copied first so the
// identity fields always win.
func (u *User) Claims() token.Claims {
	claims := make(token.Claims, len(u.ExtraClaims)+4)
	for k, v := range u.ExtraClaims {
		claims[k] = v
	}
	claims["sub"] = u.ID
	claims["username"] = u.Username
	claims["email"] = u.Email
	claims["role"] = u.Role
	if u.FullName != "" {
		claims["name"] = u.FullName
	}
	return claims
}
