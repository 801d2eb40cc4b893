package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
)

func TestProjectService_CreateDefaults(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")

	p, err := h.projects.Create(context.Background(), alice.ID, CreateProjectRequest{Name: "  Work  "})
	require.NoError(t, err)
	assert.Equal(t, "Work", p.Name)
	assert.Equal(t, alice.ID, p.AccountID)
	assert.Equal(t, "note", p.Type)
	assert.Equal(t, "default", p.Folder)
	assert.Equal(t, "active", p.Status)
}

func TestProjectService_DuplicateName(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")

	h.project(t, alice, "Work")

	_, err := h.projects.Create(ctx, alice.ID, CreateProjectRequest{Name: "Work"})
	assertCode(t, err, domainerrors.ErrValidation)
	assert.Contains(t, err.Error(), "project already exists")

	// Names are unique per owner only.
	_, err = h.projects.Create(ctx, bob.ID, CreateProjectRequest{Name: "Work"})
	require.NoError(t, err)
}

func TestProjectService_Ownership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	p := h.project(t, alice, "Work")

	_, err := h.projects.Get(ctx, bob.ID, p.ID)
	assertCode(t, err, domainerrors.ErrForbidden)

	name := "Stolen"
	_, err = h.projects.Update(ctx, bob.ID, p.ID, UpdateProjectRequest{Name: &name})
	assertCode(t, err, domainerrors.ErrForbidden)

	assertCode(t, h.projects.Delete(ctx, bob.ID, p.ID), domainerrors.ErrForbidden)

	_, err = h.projects.Get(ctx, alice.ID, 999)
	assertCode(t, err, domainerrors.ErrNotFound)
}

func TestProjectService_Update(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "alice")
	p := h.project(t, alice, "Work")
	h.project(t, alice, "Home")

	fav := true
	desc := "day job"
	updated, err := h.projects.Update(ctx, alice.ID, p.ID, UpdateProjectRequest{IsFavor: &fav, Description: &desc})
	require.NoError(t, err)
	assert.True(t, updated.IsFavor)
	assert.Equal(t, "day job", updated.Description)
	assert.Equal(t, "Work", updated.Name)

	same := "Work"
	_, err = h.projects.Update(ctx, alice.ID, p.ID, UpdateProjectRequest{Name: &same})
	require.NoError(t, err)

	taken := "Home"
	_, err = h.projects.Update(ctx, alice.ID, p.ID, UpdateProjectRequest{Name: &taken})
	assertCode(t, err, domainerrors.ErrValidation)
}

func TestProjectService_DeleteRemovesNotes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "alice")
	p := h.project(t, alice, "Work")
	n := h.note(t, alice, p, "Plan", "x")

	require.NoError(t, h.projects.Delete(ctx, alice.ID, p.ID))

	_, err := h.notes.Get(ctx, alice.ID, n.ID)
	assertCode(t, err, domainerrors.ErrNotFound)
}

func TestProjectService_List(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")

	work := h.project(t, alice, "Work")
	h.project(t, alice, "Home")
	h.project(t, bob, "Bob's")

	done := "done"
	_, err := h.projects.Update(ctx, alice.ID, work.ID, UpdateProjectRequest{Status: &done})
	require.NoError(t, err)

	all, err := h.projects.List(ctx, alice.ID, ListProjectsParams{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	finished, err := h.projects.List(ctx, alice.ID, ListProjectsParams{Statuses: []string{"done", "archived"}})
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, "Work", finished[0].Name)

	h.projects.now = func() time.Time { return time.Now().Add(40 * 24 * time.Hour) }
	recent, err := h.projects.List(ctx, alice.ID, ListProjectsParams{IsRecent: true})
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestProjectService_Page(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "alice")

	for _, name := range []string{"alpha", "beta", "gamma", "alphabet"} {
		h.project(t, alice, name)
	}

	res, err := h.projects.Page(ctx, alice.ID, PageRequest{
		PageNo:     1,
		PageSize:   10,
		Conditions: map[string]any{"name": "alpha", "ignored": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Pages)

	res, err = h.projects.Page(ctx, alice.ID, PageRequest{PageNo: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Pages)
	assert.Len(t, res.Items, 1)

	_, err = h.projects.Page(ctx, alice.ID, PageRequest{Conditions: map[string]any{"is_favor": "perhaps"}})
	assertCode(t, err, domainerrors.ErrValidation)
}
