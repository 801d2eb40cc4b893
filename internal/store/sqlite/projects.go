package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lifocus/lifocus-server/internal/domain"
	"github.com/lifocus/lifocus-server/internal/store"
)

// projectColumns is the ordered list of columns selected in project queries.
// Must match the scan order in scanProject.
const projectColumns = `id, account_id, type, name, icon, description, folder, status,
	is_archived, is_recycle, is_favor, created_at, updated_at`

// scanProject scans a sql.Row (or sql.Rows via its Scan method) into a domain.Project.
func scanProject(scanner interface{ Scan(dest ...any) error }) (*domain.Project, error) {
	var (
		p          domain.Project
		isArchived int
		isRecycle  int
		isFavor    int
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&p.ID,
		&p.AccountID,
		&p.Type,
		&p.Name,
		&p.Icon,
		&p.Description,
		&p.Folder,
		&p.Status,
		&isArchived,
		&isRecycle,
		&isFavor,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.IsArchived = isArchived != 0
	p.IsRecycle = isRecycle != 0
	p.IsFavor = isFavor != 0

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

// CreateProject inserts a project and sets project.ID.
// Returns store.ErrAlreadyExists when the owner already has a project with that name.
func (s *Store) CreateProject(ctx context.Context, p *domain.Project) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (
			account_id, type, name, icon, description, folder, status,
			is_archived, is_recycle, is_favor, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.AccountID,
		p.Type,
		p.Name,
		p.Icon,
		p.Description,
		p.Folder,
		p.Status,
		boolToInt(p.IsArchived),
		boolToInt(p.IsRecycle),
		boolToInt(p.IsFavor),
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("project already exists")
		}
		if isForeignKeyViolation(err) {
			return store.ErrNotFound.WithMessage("user not found")
		}
		return err
	}

	p.ID, err = res.LastInsertId()
	return err
}

// GetProject retrieves a project by ID.
// Returns store.ErrNotFound if the project does not exist.
func (s *Store) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return getProject(row)
}

// GetProjectByName retrieves the owner's project with the exact name.
func (s *Store) GetProjectByName(ctx context.Context, name string, ownerID int64) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE name = ? AND account_id = ?`, name, ownerID)
	return getProject(row)
}

func getProject(row *sql.Row) (*domain.Project, error) {
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("project not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProject writes every mutable project column.
func (s *Store) UpdateProject(ctx context.Context, p *domain.Project) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET
			type = ?, name = ?, icon = ?, description = ?, folder = ?, status = ?,
			is_archived = ?, is_recycle = ?, is_favor = ?, updated_at = ?
		WHERE id = ?`,
		p.Type,
		p.Name,
		p.Icon,
		p.Description,
		p.Folder,
		p.Status,
		boolToInt(p.IsArchived),
		boolToInt(p.IsRecycle),
		boolToInt(p.IsFavor),
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("project already exists")
		}
		return err
	}
	return expectOneRow(res, "project not found")
}

// DeleteProject removes a project and, through the foreign key, its notes.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, "project not found")
}

// projectWhere translates a filter into SQL conditions.
func projectWhere(f domain.ProjectFilter) *where {
	w := &where{}
	if f.AccountID != 0 {
		w.add("account_id = ?", f.AccountID)
	}
	if f.Type != "" {
		w.add("type = ?", f.Type)
	}
	if f.Name != "" {
		w.add(`name LIKE ? ESCAPE '\'`, escapeLike(f.Name))
	}
	if f.Folder != "" {
		w.add(`folder LIKE ? ESCAPE '\'`, escapeLike(f.Folder))
	}
	if len(f.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Statuses)), ",")
		args := make([]any, len(f.Statuses))
		for i, st := range f.Statuses {
			args[i] = st
		}
		w.add("status IN ("+placeholders+")", args...)
	}
	if f.IsArchived != nil {
		w.add("is_archived = ?", boolToInt(*f.IsArchived))
	}
	if f.IsRecycle != nil {
		w.add("is_recycle = ?", boolToInt(*f.IsRecycle))
	}
	if f.IsFavor != nil {
		w.add("is_favor = ?", boolToInt(*f.IsFavor))
	}
	if f.UpdatedAfter != nil {
		w.add("updated_at > ?", formatTime(*f.UpdatedAfter))
	}
	return w
}

// ListProjects returns every project matching the filter, oldest first.
func (s *Store) ListProjects(ctx context.Context, f domain.ProjectFilter) ([]*domain.Project, error) {
	w := projectWhere(f)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects`+w.sql()+` ORDER BY id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	return collectRows(rows, scanProject)
}

// PageProjects returns one page of matching projects plus the total count.
func (s *Store) PageProjects(ctx context.Context, f domain.ProjectFilter, page domain.Page) (domain.PageResult[*domain.Project], error) {
	page = page.Normalize()
	w := projectWhere(f)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`+w.sql(), w.args...).Scan(&total); err != nil {
		return domain.PageResult[*domain.Project]{}, fmt.Errorf("count projects: %w", err)
	}

	args := append(w.args, page.Size, page.Offset())
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects`+w.sql()+` ORDER BY id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return domain.PageResult[*domain.Project]{}, fmt.Errorf("page projects: %w", err)
	}
	defer rows.Close()

	items, err := collectRows(rows, scanProject)
	if err != nil {
		return domain.PageResult[*domain.Project]{}, err
	}
	return domain.NewPageResult(items, total, page), nil
}

// collectRows scans every row with scan.
func collectRows[T any](rows *sql.Rows, scan func(interface{ Scan(dest ...any) error }) (T, error)) ([]T, error) {
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
