package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lifocus/lifocus-server/internal/auth"
	"github.com/lifocus/lifocus-server/internal/domain"
	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/store"
)

// TokenBlocklist records revoked token IDs.
type TokenBlocklist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthService handles registration, login, token refresh and logout.
type AuthService struct {
	users     store.UserStore
	tokens    *auth.TokenService
	blocklist TokenBlocklist
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users store.UserStore, tokens *auth.TokenService, blocklist TokenBlocklist, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		blocklist: blocklist,
		logger:    logger,
	}
}

// RegisterRequest contains the data for a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,max=64"`
	Password string `json:"password" validate:"required,min=6,max=1024"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// LoginRequest contains credentials. Either username or email identifies the user.
type LoginRequest struct {
	Username string `json:"username,omitempty" validate:"required_without=Email"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries a token pair. ExpireTime is the access token expiry
// in unix milliseconds.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpireTime   int64        `json:"expire_time"`
	User         *domain.User `json:"user"`
}

// RefreshRequest contains the refresh token to exchange.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse carries a new access token.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpireTime  int64  `json:"expire_time"`
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("username or email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and issues an access and refresh token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	var (
		user *domain.User
		err  error
	)
	if req.Username != "" {
		user, err = s.users.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	} else {
		user, err = s.users.GetUserByEmail(ctx, req.Email)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the account exists
			return nil, domainerrors.InvalidCredentials("invalid username or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}

	access, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &LoginResponse{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		ExpireTime:   access.ExpiresAt.UnixMilli(),
		User:         user,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	claims, err := s.verify(ctx, req.RefreshToken, s.tokens.VerifyRefreshToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetUser(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	access, err := s.tokens.GenerateAccessToken(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &RefreshResponse{
		AccessToken: access.Token,
		ExpireTime:  access.ExpiresAt.UnixMilli(),
	}, nil
}

// Authenticate verifies an access token and checks it has not been revoked.
// Used by the authentication middleware.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	return s.verify(ctx, token, s.tokens.VerifyAccessToken)
}

// Logout revokes the presented access token and, when given, the refresh
// token. An invalid refresh token is ignored.
func (s *AuthService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if err := s.blocklist.Revoke(ctx, access.TokenID, access.Expiration); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}

	if refreshToken != "" {
		claims, err := s.tokens.VerifyRefreshToken(refreshToken)
		if err == nil && claims.UserID == access.UserID {
			if err := s.blocklist.Revoke(ctx, claims.TokenID, claims.Expiration); err != nil {
				return fmt.Errorf("revoke refresh token: %w", err)
			}
		}
	}

	s.logger.Info("user logged out", "user_id", access.UserID)
	return nil
}

func (s *AuthService) verify(ctx context.Context, token string, verify func(string) (*auth.Claims, error)) (*auth.Claims, error) {
	claims, err := verify(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}

	revoked, err := s.blocklist.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, domainerrors.ErrTokenRevoked
	}
	return claims, nil
}
