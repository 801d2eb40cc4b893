package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/lifocus/lifocus-server/internal/id"
)

const (
	tokenIssuer   = "lifocus-server"
	tokenAudience = "lifocus-client"
)

// ErrWrongTokenType is returned when a refresh token is presented as an access token or vice versa.
var ErrWrongTokenType = errors.New("wrong token type")

// TokenService issues and verifies PASETO v4.local tokens.
// Access and refresh tokens share the key and differ by the "typ" claim and lifetime.
type TokenService struct {
	symmetricKey         paseto.V4SymmetricKey
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
	now                  func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, accessDuration, refreshDuration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:         symmetricKey,
		accessTokenDuration:  accessDuration,
		refreshTokenDuration: refreshDuration,
		now:                  time.Now,
	}, nil
}

// GenerateAccessToken issues a short-lived access token for userID.
func (s *TokenService) GenerateAccessToken(userID int64) (*IssuedToken, error) {
	return s.issue(userID, TokenTypeAccess, s.accessTokenDuration)
}

// GenerateRefreshToken issues a long-lived refresh token for userID.
func (s *TokenService) GenerateRefreshToken(userID int64) (*IssuedToken, error) {
	return s.issue(userID, TokenTypeRefresh, s.refreshTokenDuration)
}

func (s *TokenService) issue(userID int64, typ TokenType, ttl time.Duration) (*IssuedToken, error) {
	now := s.now()
	expires := now.Add(ttl)

	tokenID, err := id.Generate("token")
	if err != nil {
		return nil, fmt.Errorf("generate token ID: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(strconv.FormatInt(userID, 10))
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)
	token.SetJti(tokenID)

	//nolint:errcheck // Token.Set only errors on unmarshalable values
	_ = token.Set("user_id", userID)
	//nolint:errcheck // Token.Set only errors on unmarshalable values
	_ = token.Set("typ", string(typ))

	return &IssuedToken{
		Token:     token.V4Encrypt(s.symmetricKey, nil),
		TokenID:   tokenID,
		ExpiresAt: expires,
	}, nil
}

// VerifyAccessToken decrypts and validates an access token.
func (s *TokenService) VerifyAccessToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, TokenTypeAccess)
}

// VerifyRefreshToken decrypts and validates a refresh token.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return s.verify(tokenString, TokenTypeRefresh)
}

func (s *TokenService) verify(tokenString string, want TokenType) (*Claims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	if claims.Type != want {
		return nil, ErrWrongTokenType
	}

	return &claims, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessTokenDuration
}

// RefreshTokenDuration returns the configured refresh token lifetime.
func (s *TokenService) RefreshTokenDuration() time.Duration {
	return s.refreshTokenDuration
}
