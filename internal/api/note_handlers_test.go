package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifocus/lifocus-server/internal/search"
)

func TestCreateNote(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "alice")
	projectID := ts.createProject(t, token, "Work")

	resp := ts.api.Post("/api/v1/notes", bearer(token), projectHeaderArg(projectID), map[string]any{
		"title":          "Plan",
		"content":        "# Plan\n\nship it",
		"is_share":       true,
		"share_password": "hunter2",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[noteJSON](t, resp)
	assert.Equal(t, "Plan", env.Data.Title)
	assert.Equal(t, projectID, env.Data.ProjectID)
	assert.Equal(t, "default", env.Data.Folder)
	assert.NotContains(t, resp.Body.String(), "hunter2")

	content, err := os.ReadFile(filepath.Join(ts.mirrorRoot, "alice", "Work", "Plan.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Plan\n\nship it", string(content))
}

func TestCreateNote_RequiresProject(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "alice")

	resp := ts.api.Post("/api/v1/notes", bearer(token), map[string]any{"title": "Plan"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "project id required", decodeEnvelope[any](t, resp).Message)
}

func TestCreateNote_ForeignProject(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	projectID := ts.createProject(t, alice, "Work")

	resp := ts.api.Post("/api/v1/notes", bearer(bob), projectHeaderArg(projectID), map[string]any{"title": "Plan"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestGetUpdateDeleteNote(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	projectID := ts.createProject(t, alice, "Work")
	noteID := ts.createNote(t, alice, projectID, "Plan", "v1")
	path := fmt.Sprintf("/api/v1/notes/%d", noteID)

	resp := ts.api.Get(path, bearer(alice))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "v1", decodeEnvelope[noteJSON](t, resp).Data.Content)

	assert.Equal(t, http.StatusForbidden, ts.api.Get(path, bearer(bob)).Code)
	assert.Equal(t, http.StatusNotFound, ts.api.Get("/api/v1/notes/9999", bearer(alice)).Code)

	// Empty strings leave fields unchanged.
	resp = ts.api.Put(path, bearer(alice), map[string]any{"title": "", "content": "v2"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeEnvelope[noteJSON](t, resp).Data
	assert.Equal(t, "Plan", updated.Title)
	assert.Equal(t, "v2", updated.Content)

	resp = ts.api.Put(path, bearer(alice), map[string]any{"title": "Roadmap"})
	require.Equal(t, http.StatusOK, resp.Code)
	_, err := os.Stat(filepath.Join(ts.mirrorRoot, "alice", "Work", "Plan.md"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(ts.mirrorRoot, "alice", "Work", "Roadmap.md"))
	assert.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, ts.api.Delete(path, bearer(bob)).Code)

	resp = ts.api.Delete(path, bearer(alice))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "note deleted", decodeEnvelope[any](t, resp).Message)

	resp = ts.api.Get(path, bearer(alice))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, decodeEnvelope[noteJSON](t, resp).Data.IsRecycle)
}

func TestListProjectNotes(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "alice")
	projectID := ts.createProject(t, token, "Work")
	ts.createNote(t, token, projectID, "Plan A", "")
	ts.createNote(t, token, projectID, "Plan B", "")
	recycled := ts.createNote(t, token, projectID, "Plan C", "")
	ts.createNote(t, token, projectID, "Groceries", "")
	require.Equal(t, http.StatusOK, ts.api.Delete(fmt.Sprintf("/api/v1/notes/%d", recycled), bearer(token)).Code)

	resp := ts.api.Get(fmt.Sprintf("/api/v1/notes/project?projectId=%d&title=Plan", projectID), bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Len(t, decodeEnvelope[[]noteJSON](t, resp).Data, 2)

	// The header is used when the query parameter is absent.
	resp = ts.api.Get("/api/v1/notes/project?isRecent=true", bearer(token), projectHeaderArg(projectID))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Len(t, decodeEnvelope[[]noteJSON](t, resp).Data, 3)
}

func TestListAllNotes(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	work := ts.createProject(t, alice, "Work")
	home := ts.createProject(t, alice, "Home")
	ts.createNote(t, alice, work, "Plan", "")
	ts.createNote(t, alice, home, "Chores", "")
	ts.createNote(t, bob, ts.createProject(t, bob, "Work"), "Secret", "")

	resp := ts.api.Get("/api/v1/notes/all", bearer(alice))
	require.Equal(t, http.StatusOK, resp.Code)

	notes := decodeEnvelope[[]noteJSON](t, resp).Data
	require.Len(t, notes, 2)
	for _, n := range notes {
		assert.NotEqual(t, "Secret", n.Title)
	}
}

func TestPageNotes(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "alice")
	projectID := ts.createProject(t, token, "Work")
	for i := range 5 {
		ts.createNote(t, token, projectID, fmt.Sprintf("Note %d", i), "")
	}

	resp := ts.api.Post("/api/v1/notes/page", bearer(token), projectHeaderArg(projectID), map[string]any{
		"page_no":   2,
		"page_size": 2,
		"query": map[string]any{
			"title":            "Note",
			"is_recycle":       false,
			"created_end_time": "2999-01-01",
			"unknown":          42,
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[PageData[noteJSON]](t, resp)
	assert.Equal(t, 5, env.PageData.Total)
	assert.Equal(t, 3, env.PageData.Pages)
	assert.Equal(t, 2, env.PageData.PageNo)
	assert.Len(t, env.PageData.Data, 2)

	resp = ts.api.Post("/api/v1/notes/page", bearer(token), projectHeaderArg(projectID), map[string]any{
		"query": map[string]any{"created_end_time": "2000-01-01"},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, decodeEnvelope[PageData[noteJSON]](t, resp).PageData.Total)
}

func TestSearchNotes(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	projectID := ts.createProject(t, alice, "Work")
	noteID := ts.createNote(t, alice, projectID, "Quarterly plan", "budget review with finance")
	ts.createNote(t, bob, ts.createProject(t, bob, "Work"), "Budget", "budget for bob")

	resp := ts.api.Get("/api/v1/notes/search?q=budget", bearer(alice))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decodeEnvelope[search.SearchResult](t, resp).Data
	require.Len(t, result.Hits, 1)
	assert.Equal(t, noteID, result.Hits[0].NoteID)

	assert.Equal(t, http.StatusBadRequest, ts.api.Get("/api/v1/notes/search", bearer(alice)).Code)
	assert.Equal(t, http.StatusForbidden,
		ts.api.Get(fmt.Sprintf("/api/v1/notes/search?q=budget&projectId=%d", projectID), bearer(bob)).Code)
}
