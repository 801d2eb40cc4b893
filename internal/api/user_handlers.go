package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lifocus/lifocus-server/internal/domain"
	"github.com/lifocus/lifocus-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's account",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentUser",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/me",
		Summary:     "Update current user",
		Description: "Partially updates the authenticated user's account",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCurrentUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/me",
		Summary:     "Delete current user",
		Description: "Deletes the account with its projects and notes and revokes the current token",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCurrentUser)
}

// === DTOs ===

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body *domain.User
}

// UpdateUserRequest is the request body for a partial account update.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" doc:"New username"`
	Email    *string `json:"email,omitempty" doc:"New email address"`
	Avatar   *string `json:"avatar,omitempty" doc:"Avatar URL"`
	Password *string `json:"password,omitempty" doc:"New password"`
}

// UpdateUserInput wraps the update request for Huma.
type UpdateUserInput struct {
	Body UpdateUserRequest
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleUpdateCurrentUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.Update(ctx, userID, service.UpdateUserRequest{
		Username: input.Body.Username,
		Email:    input.Body.Email,
		Avatar:   input.Body.Avatar,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleDeleteCurrentUser(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	claims, err := GetClaims(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.User.Delete(ctx, claims.UserID); err != nil {
		return nil, err
	}

	if err := s.services.Auth.Logout(ctx, claims, ""); err != nil {
		s.logger.Warn("failed to revoke token of deleted user", "user_id", claims.UserID, "error", err)
	}

	return &MessageOutput{Body: MessageBody{Message: "user deleted"}}, nil
}
