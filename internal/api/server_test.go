package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifocus/lifocus-server/internal/archive"
	"github.com/lifocus/lifocus-server/internal/auth"
	"github.com/lifocus/lifocus-server/internal/blocklist"
	"github.com/lifocus/lifocus-server/internal/logger"
	"github.com/lifocus/lifocus-server/internal/mirror"
	"github.com/lifocus/lifocus-server/internal/search"
	"github.com/lifocus/lifocus-server/internal/service"
	"github.com/lifocus/lifocus-server/internal/store/sqlite"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api        humatest.TestAPI
	store      *sqlite.Store
	mirrorRoot string
}

// testEnvelope mirrors the JSON response envelope.
type testEnvelope[T any] struct {
	Code     int             `json:"code"`
	Message  string          `json:"message"`
	Data     T               `json:"data"`
	PageData T               `json:"page_data"`
	Error    string          `json:"error"`
	Details  json.RawMessage `json:"details"`
}

func decodeEnvelope[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func setupTestServer(t *testing.T, opts ...func(*Options)) *testServer {
	t.Helper()
	dir := t.TempDir()
	log := logger.Discard()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	bl, err := blocklist.OpenInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bl.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: filepath.Join(dir, "search"), Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour, 24*time.Hour)
	require.NoError(t, err)

	mirrorRoot := filepath.Join(dir, "mirror")
	scratch := filepath.Join(dir, "scratch")

	notes := service.NewNoteService(st, st, st, index, log,
		mirror.New(mirrorRoot, log),
		search.NewNoteIndexer(index),
	)
	services := &Services{
		Auth:    service.NewAuthService(st, tokens, bl, log),
		User:    service.NewUserService(st, notes, log),
		Project: service.NewProjectService(st, notes, log),
		Note:    notes,
		Import:  service.NewImportService(notes, st, archive.NewExtractor(archive.DefaultLimits(), log), scratch, log),
		Export:  service.NewExportService(st, st, scratch, log),
	}

	options := Options{
		MaxUploadSize:     1 << 20,
		AuthRatePerMinute: 6000,
		AuthBurst:         1000,
		HealthChecks: map[string]HealthCheck{
			"database": st.Ping,
			"search": func(context.Context) error {
				_, err := index.DocumentCount()
				return err
			},
		},
	}
	for _, opt := range opts {
		opt(&options)
	}

	s := NewServer(services, options, log)
	t.Cleanup(s.Close)

	return &testServer{
		Server:     s,
		api:        humatest.Wrap(t, s.api),
		store:      st,
		mirrorRoot: mirrorRoot,
	}
}

// register creates an account and logs in, returning the access token.
func (ts *testServer) register(t *testing.T, username string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": username,
		"password": "secret1",
		"email":    username + "@example.com",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"username": username,
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[service.LoginResponse](t, resp)
	require.NotEmpty(t, env.Data.AccessToken)
	return env.Data.AccessToken
}

// createProject creates a project and returns its id.
func (ts *testServer) createProject(t *testing.T, token, name string) int64 {
	t.Helper()
	resp := ts.api.Post("/api/v1/projects", bearer(token), map[string]any{"name": name})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decodeEnvelope[projectJSON](t, resp).Data.ID
}

// createNote creates a note and returns its id.
func (ts *testServer) createNote(t *testing.T, token string, projectID int64, title, content string) int64 {
	t.Helper()
	resp := ts.api.Post("/api/v1/notes", bearer(token), projectHeaderArg(projectID), map[string]any{
		"title":   title,
		"content": content,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decodeEnvelope[noteJSON](t, resp).Data.ID
}

type projectJSON struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Folder string `json:"folder"`
	Status string `json:"status"`
}

type noteJSON struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Folder    string `json:"folder"`
	IsRecycle bool   `json:"is_recycle"`
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func projectHeaderArg(id int64) string {
	return fmt.Sprintf("%s: %d", projectHeader, id)
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[HealthResponse](t, resp)
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Equal(t, "healthy", env.Data.Components["search"].Status)
}

func TestHealthCheck_UnhealthyComponent(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) {
		o.HealthChecks["mirror"] = func(context.Context) error { return errors.New("read-only file system") }
	})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[HealthResponse](t, resp)
	assert.Equal(t, "unhealthy", env.Data.Status)
	assert.Equal(t, "read-only file system", env.Data.Components["mirror"].Message)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/users/me")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	env := decodeEnvelope[any](t, resp)
	assert.Equal(t, 401, env.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error)

	resp = ts.api.Get("/api/v1/users/me", bearer("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) {
		o.AuthRatePerMinute = 1
		o.AuthBurst = 2
	})

	body := map[string]any{"username": "nobody", "password": "secret1"}
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/auth/login", body).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/auth/login", body).Code)

	resp := ts.api.Post("/api/v1/auth/login", body)
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decodeEnvelope[any](t, resp).Error)

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, ts.api.Get("/health").Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/notes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, X-Project-Id")
	w := httptest.NewRecorder()

	ts.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Project-Id")
}
