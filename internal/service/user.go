package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lifocus/lifocus-server/internal/auth"
	"github.com/lifocus/lifocus-server/internal/domain"
	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/store"
)

// UserService manages the current user's account.
type UserService struct {
	users  store.UserStore
	notes  *NoteService
	logger *slog.Logger
}

// NewUserService creates a new user service. notes may be nil, in which
// case note observers are not told about notes removed with the account.
func NewUserService(users store.UserStore, notes *NoteService, logger *slog.Logger) *UserService {
	return &UserService{users: users, notes: notes, logger: logger}
}

// UpdateUserRequest is a partial account update. Nil fields are unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,notblank,max=64"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Avatar   *string `json:"avatar,omitempty" validate:"omitempty,max=2048"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=1024"`
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

// Update applies a partial update to the user.
func (s *UserService) Update(ctx context.Context, userID int64, req UpdateUserRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.Touch()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("username or email already in use")
		}
		return nil, storeError(err)
	}

	s.logger.Info("user updated", "user_id", user.ID)
	return user, nil
}

// Delete removes the user together with their projects and notes.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	notifyDeleted := func() {}
	if s.notes != nil {
		var err error
		if notifyDeleted, err = s.notes.PrepareUserDelete(ctx, userID); err != nil {
			return err
		}
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return storeError(err)
	}
	s.logger.Info("user deleted", "user_id", userID)
	notifyDeleted()
	return nil
}
