package service

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lifocus/lifocus-server/internal/archive"
	"github.com/lifocus/lifocus-server/internal/domain"
	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/notefile"
	"github.com/lifocus/lifocus-server/internal/store"
)

// ImportService turns uploaded markdown, HTML and zip files into notes.
type ImportService struct {
	notes      *NoteService
	projects   store.ProjectStore
	extractor  *archive.Extractor
	scratchDir string
	logger     *slog.Logger
	now        func() time.Time
}

// NewImportService creates a new import service. Archives are extracted
// under scratchDir, or the system temp directory when it is empty.
func NewImportService(notes *NoteService, projects store.ProjectStore, extractor *archive.Extractor, scratchDir string, logger *slog.Logger) *ImportService {
	return &ImportService{
		notes:      notes,
		projects:   projects,
		extractor:  extractor,
		scratchDir: scratchDir,
		logger:     logger,
		now:        time.Now,
	}
}

// Import creates notes in projectID from one uploaded file.
//
// A .md file becomes one note, as does an .html or .htm file after
// conversion to markdown. A .zip file becomes one note per .md member.
// A member that is not valid UTF-8 aborts the call; notes created before it
// are kept.
func (s *ImportService) Import(ctx context.Context, userID, projectID int64, filename string, r io.Reader, size int64) (*domain.ImportResult, error) {
	if projectID <= 0 {
		return nil, domainerrors.Validation("project id required")
	}

	user, err := s.notes.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Only existence is checked; ownership of the target project is not required.
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, storeError(err)
	}

	var result *domain.ImportResult
	switch {
	case notefile.HasExtension(filename, notefile.Extension):
		result, err = s.importSingle(ctx, user, project, filename, r, notefile.DecodeMarkdown)
	case notefile.HasExtension(filename, ".html"), notefile.HasExtension(filename, ".htm"):
		result, err = s.importSingle(ctx, user, project, filename, r, notefile.HTMLToMarkdown)
	case notefile.HasExtension(filename, ".zip"):
		result, err = s.importArchive(ctx, user, project, r, size)
	default:
		return nil, domainerrors.Validation("only .md or .zip files are supported")
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("notes imported",
		"user_id", userID,
		"project_id", projectID,
		"file", filename,
		"created", result.Count(),
		"skipped", result.Skipped,
	)
	return result, nil
}

func (s *ImportService) importSingle(
	ctx context.Context,
	user *domain.User,
	project *domain.Project,
	filename string,
	r io.Reader,
	decode func([]byte) (string, error),
) (*domain.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	content, err := decode(data)
	if err != nil {
		return nil, err
	}

	note, err := s.create(ctx, user, project, notefile.TitleFromFilename(filename, s.now()), content)
	if err != nil {
		return nil, err
	}
	return &domain.ImportResult{
		Notes:  []domain.ImportedNote{{ID: note.ID, Title: note.Title}},
		Single: true,
	}, nil
}

func (s *ImportService) importArchive(ctx context.Context, user *domain.User, project *domain.Project, r io.Reader, size int64) (*domain.ImportResult, error) {
	scratch, err := archive.NewScratch(s.scratchDir, "import")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := scratch.Close(); err != nil {
			s.logger.Warn("failed to remove import scratch dir", "dir", scratch.Dir, "error", err)
		}
	}()

	spool, err := os.Create(scratch.Path("upload.zip"))
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	defer spool.Close()

	written, err := io.Copy(spool, r)
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	if size > 0 && written != size {
		s.logger.Debug("upload size differs from declared size", "declared", size, "written", written)
	}

	filesDir := scratch.Path("files")
	if err := os.Mkdir(filesDir, 0o700); err != nil {
		return nil, fmt.Errorf("create extract dir: %w", err)
	}
	report, err := s.extractor.Extract(ctx, spool, written, filesDir)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.WalkDir(filesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && notefile.HasExtension(d.Name(), notefile.Extension) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk extracted files: %w", err)
	}

	result := &domain.ImportResult{Notes: []domain.ImportedNote{}, Skipped: report.Skipped()}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rel, _ := filepath.Rel(filesDir, path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		content, err := notefile.DecodeMarkdown(data)
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeDecode, fmt.Sprintf("%s is not valid UTF-8", filepath.ToSlash(rel)))
		}

		note, err := s.create(ctx, user, project, notefile.TitleFromFilename(path, s.now()), content)
		if err != nil {
			return nil, err
		}
		result.Notes = append(result.Notes, domain.ImportedNote{ID: note.ID, Title: note.Title})
	}
	return result, nil
}

func (s *ImportService) create(ctx context.Context, user *domain.User, project *domain.Project, title, content string) (*domain.Note, error) {
	note := &domain.Note{
		Type:    domain.DefaultType,
		Title:   title,
		Content: content,
		Folder:  domain.ImportedFolder,
		Status:  domain.DefaultStatus,
	}
	if err := s.notes.insert(ctx, user, project, note); err != nil {
		return nil, err
	}
	return note, nil
}
