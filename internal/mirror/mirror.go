// Package mirror keeps a plain-file copy of every note under
// <root>/<username>/<project name>/<note title>.md.
//
// Mirroring is best effort. Failures are logged and never returned, so a
// mirror problem cannot fail the note mutation that triggered it. There is no
// locking; concurrent writers to the same path race and the last one wins.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lifocus/lifocus-server/internal/domain"
	"github.com/lifocus/lifocus-server/internal/notefile"
)

// DefaultDir is the mirror root relative to the user's home directory.
var DefaultDir = filepath.Join("lifocus_data", "notes")

// Mirror writes note content to the filesystem.
type Mirror struct {
	root   string
	logger *slog.Logger
}

// New creates a Mirror rooted at root.
func New(root string, logger *slog.Logger) *Mirror {
	return &Mirror{root: filepath.Clean(root), logger: logger}
}

// Root returns the mirror root directory.
func (m *Mirror) Root() string {
	return m.root
}

// Path returns the mirror file for a note. Each segment is sanitized; empty
// and dot-only segments are replaced by an id-based name.
func (m *Mirror) Path(user *domain.User, project *domain.Project, title string, noteID int64) (string, error) {
	userDir := segment(user.Username, "user_", user.ID)
	projectDir := segment(project.Name, "project_", project.ID)
	file := segment(title, "note_", noteID) + notefile.Extension

	p := filepath.Join(m.root, userDir, projectDir, file)

	rel, err := filepath.Rel(m.root, p)
	if err != nil || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("mirror path %q escapes root", p)
	}
	return p, nil
}

func segment(name, fallbackPrefix string, id int64) string {
	s := notefile.Sanitize(name)
	if strings.Trim(s, ". ") == "" {
		return fallbackPrefix + strconv.FormatInt(id, 10)
	}
	return s
}

// Save writes the note's markdown to its mirror path, creating directories
// as needed. It reports whether the file was written.
func (m *Mirror) Save(ctx context.Context, user *domain.User, project *domain.Project, note *domain.Note) bool {
	p, err := m.Path(user, project, note.Title, note.ID)
	if err != nil {
		m.logger.Warn("mirror save skipped", "note_id", note.ID, "error", err)
		return false
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		m.logger.Warn("mirror mkdir failed", "note_id", note.ID, "path", p, "error", err)
		return false
	}
	if err := os.WriteFile(p, []byte(notefile.ToMarkdown(note)), 0o644); err != nil {
		m.logger.Warn("mirror write failed", "note_id", note.ID, "path", p, "error", err)
		return false
	}

	m.logger.Debug("note mirrored", "note_id", note.ID, "path", p)
	return true
}

// Delete removes the mirror file for a note under its current title.
// A missing file counts as success.
func (m *Mirror) Delete(ctx context.Context, user *domain.User, project *domain.Project, note *domain.Note) bool {
	p, err := m.Path(user, project, note.Title, note.ID)
	if err != nil {
		m.logger.Warn("mirror delete skipped", "note_id", note.ID, "error", err)
		return false
	}

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("mirror delete failed", "note_id", note.ID, "path", p, "error", err)
		return false
	}
	return true
}

// NoteCreated mirrors a new note.
func (m *Mirror) NoteCreated(ctx context.Context, ev domain.NoteEvent) {
	m.Save(ctx, ev.User, ev.Project, ev.Note)
}

// NoteUpdated drops the old file when the title changed and rewrites the
// file when the content changed or the note left the recycle bin. A
// title-only change therefore leaves no file until the content is next
// edited. Recycled notes are never written.
func (m *Mirror) NoteUpdated(ctx context.Context, ev domain.NoteEvent) {
	prev := ev.Previous
	if prev == nil {
		if !ev.Note.IsRecycle {
			m.Save(ctx, ev.User, ev.Project, ev.Note)
		}
		return
	}
	if prev.Title != ev.Note.Title {
		m.Delete(ctx, ev.User, ev.Project, prev)
	}
	if ev.Note.IsRecycle {
		return
	}
	if prev.Content != ev.Note.Content || prev.IsRecycle {
		m.Save(ctx, ev.User, ev.Project, ev.Note)
	}
}

// NoteDeleted removes the mirror file of a note deleted with its project or owner.
func (m *Mirror) NoteDeleted(ctx context.Context, ev domain.NoteEvent) {
	m.Delete(ctx, ev.User, ev.Project, ev.Note)
}

// NoteRecycled removes the mirror file of a soft-deleted note.
func (m *Mirror) NoteRecycled(ctx context.Context, ev domain.NoteEvent) {
	m.Delete(ctx, ev.User, ev.Project, ev.Note)
}
