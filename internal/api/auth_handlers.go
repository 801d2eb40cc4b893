package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lifocus/lifocus-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register",
		Description: "Creates a new account",
		Tags:        []string{"Auth"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Login",
		Description: "Authenticates with username or email and returns a token pair",
		Tags:        []string{"Auth"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshToken",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh access token",
		Description: "Exchanges a refresh token for a new access token",
		Tags:        []string{"Auth"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the presented access token and, when given, the refresh token",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLogout)
}

// === DTOs ===

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Username string `json:"username" doc:"Unique username, 1 to 64 characters"`
	Password string `json:"password" doc:"Password, at least 6 characters"`
	Email    string `json:"email,omitempty" doc:"Optional unique email address"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Username string `json:"username,omitempty" doc:"Username; required when email is absent"`
	Email    string `json:"email,omitempty" doc:"Email address"`
	Password string `json:"password" doc:"Password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// LoginOutput wraps the token pair for Huma.
type LoginOutput struct {
	Body *service.LoginResponse
}

// RefreshRequest is the request body for refreshing an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" doc:"Refresh token issued at login"`
}

// RefreshInput wraps the refresh request for Huma.
type RefreshInput struct {
	Body RefreshRequest
}

// RefreshOutput wraps the new access token for Huma.
type RefreshOutput struct {
	Body *service.RefreshResponse
}

// LogoutRequest optionally names the refresh token to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty" doc:"Refresh token to revoke as well"`
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Body *LogoutRequest `required:"false"`
}

// MessageOutput wraps a message-only response for Huma.
type MessageOutput struct {
	Body MessageBody
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*UserOutput, error) {
	user, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
		Email:    input.Body.Email,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Username: input.Body.Username,
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &LoginOutput{Body: resp}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
	resp, err := s.services.Auth.Refresh(ctx, service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
	})
	if err != nil {
		return nil, err
	}
	return &RefreshOutput{Body: resp}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}

	var refreshToken string
	if input.Body != nil {
		refreshToken = input.Body.RefreshToken
	}

	if err := s.services.Auth.Logout(ctx, claims, refreshToken); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageBody{Message: "logged out"}}, nil
}
