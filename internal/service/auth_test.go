package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifocus/lifocus-server/internal/auth"
	"github.com/lifocus/lifocus-server/internal/blocklist"
	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/logger"
	"github.com/lifocus/lifocus-server/internal/store/sqlite"
)

func newAuthService(t *testing.T) (*AuthService, *UserService) {
	t.Helper()
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "auth.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	bl, err := blocklist.OpenInMemory(logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { bl.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour, 24*time.Hour)
	require.NoError(t, err)

	return NewAuthService(st, tokens, bl, logger.Discard()), NewUserService(st, nil, logger.Discard())
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: " alice ", Password: "secret1", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	res, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, user.ID, res.User.ID)
	assert.InDelta(t, time.Now().Add(time.Hour).UnixMilli(), res.ExpireTime, float64(time.Minute.Milliseconds()))

	byEmail, err := svc.Login(ctx, LoginRequest{Email: "ALICE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.User.ID)

	claims, err := svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "  ", Password: "secret1"})
	assertCode(t, err, domainerrors.ErrValidation)

	_, err = svc.Register(ctx, RegisterRequest{Username: "bob", Password: "short"})
	assertCode(t, err, domainerrors.ErrValidation)

	_, err = svc.Register(ctx, RegisterRequest{Username: "bob", Password: "secret1", Email: "not-an-email"})
	assertCode(t, err, domainerrors.ErrValidation)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "alice", Password: "secret2"})
	assertCode(t, err, domainerrors.ErrAlreadyExists)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "alice", Password: "wrong!!"})
	assertCode(t, err, domainerrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Username: "nobody", Password: "secret1"})
	assertCode(t, err, domainerrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Password: "secret1"})
	assertCode(t, err, domainerrors.ErrValidation)
}

func TestRefresh(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	res, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)

	// An access token is not a refresh token.
	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: login.AccessToken})
	assertCode(t, err, domainerrors.ErrUnauthorized)
}

func TestLogout_RevokesBothTokens(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	claims, err := svc.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims, login.RefreshToken))

	_, err = svc.Authenticate(ctx, login.AccessToken)
	assertCode(t, err, domainerrors.ErrTokenRevoked)

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	assertCode(t, err, domainerrors.ErrTokenRevoked)
}

func TestRefresh_DeletedUser(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, user.ID))

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	assertCode(t, err, domainerrors.ErrUnauthorized)
}

func TestUserService_Update(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{Username: "bob", Password: "secret1"})
	require.NoError(t, err)

	avatar := "https://example.com/a.png"
	password := "newsecret"
	updated, err := users.Update(ctx, alice.ID, UpdateUserRequest{Avatar: &avatar, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, avatar, updated.Avatar)

	_, err = svc.Login(ctx, LoginRequest{Username: "alice", Password: "newsecret"})
	require.NoError(t, err)

	taken := "bob"
	_, err = users.Update(ctx, alice.ID, UpdateUserRequest{Username: &taken})
	assertCode(t, err, domainerrors.ErrAlreadyExists)

	_, err = users.Get(ctx, 999)
	assertCode(t, err, domainerrors.ErrNotFound)
}
