package auth

import (
	"time"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

// Token types carried in the "typ" claim.
const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the decrypted contents of an issued token.
type Claims struct {
	UserID int64     `json:"user_id"`
	Type   TokenType `json:"typ"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// IssuedToken is a freshly signed token together with the facts needed to revoke it.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}
