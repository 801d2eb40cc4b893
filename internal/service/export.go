package service

import (
	"archive/zip"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/lifocus/lifocus-server/internal/archive"
	"github.com/lifocus/lifocus-server/internal/domain"
	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/notefile"
	"github.com/lifocus/lifocus-server/internal/store"
)

// Content types of export bundles.
const (
	ContentTypeMarkdown = "text/markdown; charset=utf-8"
	ContentTypeZip      = "application/zip"
)

const exportTimeLayout = "20060102_150405"

// ExportBundle is a rendered export waiting to be streamed. It lives in a
// temporary directory that Close removes.
type ExportBundle struct {
	Filename    string
	ContentType string
	Path        string
	Size        int64
	NoteCount   int

	scratch *archive.Scratch
}

// Open opens the bundle file for reading.
func (b *ExportBundle) Open() (*os.File, error) {
	return os.Open(b.Path)
}

// Close removes the bundle's temporary directory.
func (b *ExportBundle) Close() error {
	if b.scratch == nil {
		return nil
	}
	return b.scratch.Close()
}

// ExportService renders notes as markdown files.
type ExportService struct {
	notes      store.NoteStore
	projects   store.ProjectStore
	scratchDir string
	logger     *slog.Logger
	now        func() time.Time
}

// NewExportService creates a new export service. Bundles are built under
// scratchDir, or the system temp directory when it is empty.
func NewExportService(notes store.NoteStore, projects store.ProjectStore, scratchDir string, logger *slog.Logger) *ExportService {
	return &ExportService{
		notes:      notes,
		projects:   projects,
		scratchDir: scratchDir,
		logger:     logger,
		now:        time.Now,
	}
}

// Export renders the notes in order. One note becomes "<title>.md"; more
// become a zip archive with one entry per note. Every note must belong to a
// project owned by userID; the first failing id aborts the export.
func (s *ExportService) Export(ctx context.Context, userID int64, noteIDs []int64) (*ExportBundle, error) {
	if len(noteIDs) == 0 {
		return nil, domainerrors.Validation("note ids required")
	}

	notes := make([]*domain.Note, 0, len(noteIDs))
	for _, noteID := range noteIDs {
		note, err := s.authorize(ctx, userID, noteID)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	scratch, err := archive.NewScratch(s.scratchDir, "export")
	if err != nil {
		return nil, err
	}

	var bundle *ExportBundle
	if len(notes) == 1 {
		bundle, err = s.writeSingle(scratch, notes[0])
	} else {
		bundle, err = s.writeArchive(ctx, scratch, notes)
	}
	if err != nil {
		if cerr := scratch.Close(); cerr != nil {
			s.logger.Warn("failed to remove export scratch dir", "dir", scratch.Dir, "error", cerr)
		}
		return nil, err
	}

	s.logger.Info("notes exported", "user_id", userID, "notes", len(notes), "file", bundle.Filename)
	return bundle, nil
}

// authorize loads a note and checks the owner of its project. A note whose
// project is missing is reported as forbidden.
func (s *ExportService) authorize(ctx context.Context, userID, noteID int64) (*domain.Note, error) {
	note, err := s.notes.GetNote(ctx, noteID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("note %d not found", noteID)
		}
		return nil, err
	}

	project, err := s.projects.GetProject(ctx, note.ProjectID)
	if err != nil && !domainerrors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if !project.OwnedBy(userID) {
		return nil, domainerrors.Forbiddenf("no access to note %d", noteID)
	}
	return note, nil
}

func (s *ExportService) writeSingle(scratch *archive.Scratch, note *domain.Note) (*ExportBundle, error) {
	path := scratch.Path("export" + notefile.Extension)
	content := notefile.ToMarkdown(note)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return nil, fmt.Errorf("write export file: %w", err)
	}
	return &ExportBundle{
		Filename:    entryName(note),
		ContentType: ContentTypeMarkdown,
		Path:        path,
		Size:        int64(len(content)),
		NoteCount:   1,
		scratch:     scratch,
	}, nil
}

func (s *ExportService) writeArchive(ctx context.Context, scratch *archive.Scratch, notes []*domain.Note) (*ExportBundle, error) {
	path := scratch.Path("export.zip")
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("create export archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	used := make(map[string]struct{}, len(notes))
	for i, note := range notes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := uniqueEntryName(note, i, used)
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: note.UpdatedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("add %s to archive: %w", name, err)
		}
		if _, err := w.Write([]byte(notefile.ToMarkdown(note))); err != nil {
			return nil, fmt.Errorf("write %s to archive: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish export archive: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat export archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close export archive: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return nil, fmt.Errorf("finalize export archive: %w", err)
	}

	return &ExportBundle{
		Filename:    "notes_export_" + s.now().Format(exportTimeLayout) + ".zip",
		ContentType: ContentTypeZip,
		Path:        path,
		Size:        info.Size(),
		NoteCount:   len(notes),
		scratch:     scratch,
	}, nil
}

// entryName is "<title>.md" with the title passed through the strict
// sanitizer, or "note_<id>.md" when nothing is left of it.
func entryName(note *domain.Note) string {
	return notefile.FileName(notefile.SanitizeStrict(note.Title), note.FallbackName())
}

// uniqueEntryName returns entryName, or "<title>_<index>.md" when that name
// is already in the archive, and records the result in used.
func uniqueEntryName(note *domain.Note, index int, used map[string]struct{}) string {
	name := entryName(note)
	if _, taken := used[name]; taken {
		stem := notefile.SanitizeStrict(note.Title)
		if stem == "" {
			stem = note.FallbackName()
		}
		base := stem + "_" + strconv.Itoa(index)
		name = base + notefile.Extension
		for n := 1; ; n++ {
			if _, taken := used[name]; !taken {
				break
			}
			name = base + "_" + strconv.Itoa(n) + notefile.Extension
		}
	}
	used[name] = struct{}{}
	return name
}
