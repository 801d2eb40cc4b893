package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifocus/lifocus-server/internal/archive"
	"github.com/lifocus/lifocus-server/internal/domain"
	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/logger"
	"github.com/lifocus/lifocus-server/internal/mirror"
	"github.com/lifocus/lifocus-server/internal/search"
	"github.com/lifocus/lifocus-server/internal/store/sqlite"
)

// recorder captures observer callbacks as "<kind>:<note id>".
type recorder struct {
	mu     sync.Mutex
	events []string
	last   domain.NoteEvent
}

func (r *recorder) add(kind string, ev domain.NoteEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+ev.Note.Title)
	r.last = ev
}

func (r *recorder) NoteCreated(_ context.Context, ev domain.NoteEvent)  { r.add("created", ev) }
func (r *recorder) NoteUpdated(_ context.Context, ev domain.NoteEvent)  { r.add("updated", ev) }
func (r *recorder) NoteRecycled(_ context.Context, ev domain.NoteEvent) { r.add("recycled", ev) }
func (r *recorder) NoteDeleted(_ context.Context, ev domain.NoteEvent)  { r.add("deleted", ev) }

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type panicObserver struct{}

func (panicObserver) NoteCreated(context.Context, domain.NoteEvent)  { panic("boom") }
func (panicObserver) NoteUpdated(context.Context, domain.NoteEvent)  { panic("boom") }
func (panicObserver) NoteRecycled(context.Context, domain.NoteEvent) { panic("boom") }
func (panicObserver) NoteDeleted(context.Context, domain.NoteEvent)  { panic("boom") }

type harness struct {
	store    *sqlite.Store
	mirror   *mirror.Mirror
	index    *search.SearchIndex
	recorder *recorder
	scratch  string

	projects *ProjectService
	users    *UserService
	notes    *NoteService
	imports  *ImportService
	exports  *ExportService
}

func newHarness(t *testing.T, extra ...NoteObserver) *harness {
	t.Helper()
	dir := t.TempDir()
	log := logger.Discard()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: filepath.Join(dir, "search"), Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	h := &harness{
		store:    st,
		mirror:   mirror.New(filepath.Join(dir, "mirror"), log),
		index:    index,
		recorder: &recorder{},
		scratch:  filepath.Join(dir, "scratch"),
	}

	observers := append([]NoteObserver{h.recorder, h.mirror, search.NewNoteIndexer(index)}, extra...)
	h.notes = NewNoteService(st, st, st, index, log, observers...)
	h.projects = NewProjectService(st, h.notes, log)
	h.users = NewUserService(st, h.notes, log)
	h.imports = NewImportService(h.notes, st, archive.NewExtractor(archive.DefaultLimits(), log), h.scratch, log)
	h.exports = NewExportService(st, st, h.scratch, log)
	return h
}

func (h *harness) user(t *testing.T, username string) *domain.User {
	t.Helper()
	now := time.Now()
	u := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, h.store.CreateUser(context.Background(), u))
	return u
}

func (h *harness) project(t *testing.T, owner *domain.User, name string) *domain.Project {
	t.Helper()
	p, err := h.projects.Create(context.Background(), owner.ID, CreateProjectRequest{Name: name})
	require.NoError(t, err)
	return p
}

func (h *harness) note(t *testing.T, owner *domain.User, project *domain.Project, title, content string) *domain.Note {
	t.Helper()
	n, err := h.notes.Create(context.Background(), owner.ID, project.ID, CreateNoteRequest{Title: title, Content: content})
	require.NoError(t, err)
	return n
}

func assertCode(t *testing.T, err error, want *domainerrors.Error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, want), "want %s, got %v", want.Code, err)
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		in      string
		want    []int64
		wantErr bool
	}{
		{in: "5", want: []int64{5}},
		{in: "5,6", want: []int64{5, 6}},
		{in: " 6 , ,5,", want: []int64{6, 5}},
		{in: "", want: nil},
		{in: "5,x", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIDList(tt.in)
			if tt.wantErr {
				assertCode(t, err, domainerrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCSV(t *testing.T) {
	assert.Equal(t, []string{"active", "done"}, ParseCSV(" active, ,done"))
	assert.Nil(t, ParseCSV(""))
}

func TestConditionBool(t *testing.T) {
	for _, v := range []any{true, float64(1), "true", "1"} {
		b, err := conditionBool("is_share", v)
		require.NoError(t, err)
		assert.True(t, *b)
	}
	for _, v := range []any{false, float64(0), "false", "0"} {
		b, err := conditionBool("is_share", v)
		require.NoError(t, err)
		assert.False(t, *b)
	}

	_, err := conditionBool("is_share", "maybe")
	assertCode(t, err, domainerrors.ErrValidation)
	_, err = conditionBool("is_share", []any{})
	assertCode(t, err, domainerrors.ErrValidation)
}

func TestConditionTime(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	for _, v := range []any{
		"2024-03-01T12:30:00Z",
		"2024-03-01 12:30:00",
		"2024-03-01T12:30:00",
		float64(want.UnixMilli()),
	} {
		got, err := conditionTime("created_start_time", v)
		require.NoError(t, err)
		assert.True(t, want.Equal(*got), "%v parsed as %v", v, got)
	}

	day, err := conditionTime("created_start_time", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *day)

	_, err = conditionTime("created_start_time", "yesterday")
	assertCode(t, err, domainerrors.ErrValidation)
}
