package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lifocus/lifocus-server/internal/domain"
	"github.com/lifocus/lifocus-server/internal/store"
)

// noteColumns is the ordered list of columns selected in note queries.
// Must match the scan order in scanNote. Columns are qualified because
// owner-scoped queries join projects.
const noteColumns = `n.id, n.project_id, n.type, n.title, n.content, n.folder, n.status,
	n.is_archived, n.is_recycle, n.is_share, n.share_password, n.created_at, n.updated_at`

// scanNote scans a sql.Row (or sql.Rows via its Scan method) into a domain.Note.
func scanNote(scanner interface{ Scan(dest ...any) error }) (*domain.Note, error) {
	var (
		n          domain.Note
		isArchived int
		isRecycle  int
		isShare    int
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&n.ID,
		&n.ProjectID,
		&n.Type,
		&n.Title,
		&n.Content,
		&n.Folder,
		&n.Status,
		&isArchived,
		&isRecycle,
		&isShare,
		&n.SharePassword,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.IsArchived = isArchived != 0
	n.IsRecycle = isRecycle != 0
	n.IsShare = isShare != 0

	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &n, nil
}

// CreateNote inserts a note and sets note.ID.
// Returns store.ErrNotFound when the project does not exist.
func (s *Store) CreateNote(ctx context.Context, n *domain.Note) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (
			project_id, type, title, content, folder, status,
			is_archived, is_recycle, is_share, share_password, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ProjectID,
		n.Type,
		n.Title,
		n.Content,
		n.Folder,
		n.Status,
		boolToInt(n.IsArchived),
		boolToInt(n.IsRecycle),
		boolToInt(n.IsShare),
		n.SharePassword,
		formatTime(n.CreatedAt),
		formatTime(n.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound.WithMessage("project not found")
		}
		return err
	}

	n.ID, err = res.LastInsertId()
	return err
}

// GetNote retrieves a note by ID, including recycled notes.
func (s *Store) GetNote(ctx context.Context, id int64) (*domain.Note, error) {
	n, err := scanNote(s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes n WHERE n.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("note not found")
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// UpdateNote writes every mutable note column.
func (s *Store) UpdateNote(ctx context.Context, n *domain.Note) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes SET
			project_id = ?, type = ?, title = ?, content = ?, folder = ?, status = ?,
			is_archived = ?, is_recycle = ?, is_share = ?, share_password = ?, updated_at = ?
		WHERE id = ?`,
		n.ProjectID,
		n.Type,
		n.Title,
		n.Content,
		n.Folder,
		n.Status,
		boolToInt(n.IsArchived),
		boolToInt(n.IsRecycle),
		boolToInt(n.IsShare),
		n.SharePassword,
		formatTime(n.UpdatedAt),
		n.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound.WithMessage("project not found")
		}
		return err
	}
	return expectOneRow(res, "note not found")
}

// noteQuery builds the FROM clause and conditions for a filter.
func noteQuery(f domain.NoteFilter) (string, *where) {
	from := ` FROM notes n`
	w := &where{}

	if f.OwnerID != 0 {
		from += ` JOIN projects p ON p.id = n.project_id`
		w.add("p.account_id = ?", f.OwnerID)
	}
	if f.ProjectID != 0 {
		w.add("n.project_id = ?", f.ProjectID)
	}
	if f.Type != "" {
		w.add("n.type = ?", f.Type)
	}
	if f.Title != "" {
		w.add(`n.title LIKE ? ESCAPE '\'`, escapeLike(f.Title))
	}
	if f.Folder != "" {
		w.add(`n.folder LIKE ? ESCAPE '\'`, escapeLike(f.Folder))
	}
	if f.Status != "" {
		w.add("n.status = ?", f.Status)
	}
	if f.IsArchived != nil {
		w.add("n.is_archived = ?", boolToInt(*f.IsArchived))
	}
	if f.IsRecycle != nil {
		w.add("n.is_recycle = ?", boolToInt(*f.IsRecycle))
	} else if f.ExcludeRecycle {
		w.add("n.is_recycle = 0")
	}
	if f.IsShare != nil {
		w.add("n.is_share = ?", boolToInt(*f.IsShare))
	}
	if f.CreatedAfter != nil {
		w.add("n.created_at >= ?", formatTime(*f.CreatedAfter))
	}
	if f.CreatedBefore != nil {
		w.add("n.created_at <= ?", formatTime(*f.CreatedBefore))
	}
	if f.UpdatedAfter != nil {
		w.add("n.updated_at >= ?", formatTime(*f.UpdatedAfter))
	}
	if f.UpdatedBefore != nil {
		w.add("n.updated_at <= ?", formatTime(*f.UpdatedBefore))
	}
	return from, w
}

const noteOrder = ` ORDER BY n.updated_at DESC, n.id DESC`

// ListNotes returns every note matching the filter, most recently updated first.
func (s *Store) ListNotes(ctx context.Context, f domain.NoteFilter) ([]*domain.Note, error) {
	from, w := noteQuery(f)
	rows, err := s.db.QueryContext(ctx, `SELECT `+noteColumns+from+w.sql()+noteOrder, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	return collectRows(rows, scanNote)
}

// PageNotes returns one page of matching notes plus the total count.
func (s *Store) PageNotes(ctx context.Context, f domain.NoteFilter, page domain.Page) (domain.PageResult[*domain.Note], error) {
	page = page.Normalize()
	from, w := noteQuery(f)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from+w.sql(), w.args...).Scan(&total); err != nil {
		return domain.PageResult[*domain.Note]{}, fmt.Errorf("count notes: %w", err)
	}

	args := append(w.args, page.Size, page.Offset())
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noteColumns+from+w.sql()+noteOrder+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return domain.PageResult[*domain.Note]{}, fmt.Errorf("page notes: %w", err)
	}
	defer rows.Close()

	items, err := collectRows(rows, scanNote)
	if err != nil {
		return domain.PageResult[*domain.Note]{}, err
	}
	return domain.NewPageResult(items, total, page), nil
}
