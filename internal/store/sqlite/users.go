package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lifocus/lifocus-server/internal/domain"
	"github.com/lifocus/lifocus-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, username, email, password_hash, avatar, created_at, updated_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u         domain.User
		email     sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&u.ID,
		&u.Username,
		&email,
		&u.PasswordHash,
		&u.Avatar,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Email = email.String

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &u, nil
}

// emailKey returns the case-folded email used for uniqueness, NULL when absent.
func emailKey(email string) sql.NullString {
	return nullString(strings.ToLower(strings.TrimSpace(email)))
}

// CreateUser inserts a new user and sets user.ID.
// Returns store.ErrAlreadyExists if the username or email is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, email_lower, password_hash, avatar, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		nullString(user.Email),
		emailKey(user.Email),
		user.PasswordHash,
		user.Avatar,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("username or email already exists")
		}
		return err
	}

	user.ID, err = res.LastInsertId()
	return err
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUserWhere(ctx, `id = ?`, id)
}

// GetUserByUsername retrieves a user by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUserWhere(ctx, `username = ?`, username)
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	key := emailKey(email)
	if !key.Valid {
		return nil, store.ErrNotFound.WithMessage("user not found")
	}
	return s.getUserWhere(ctx, `email_lower = ?`, key.String)
}

func (s *Store) getUserWhere(ctx context.Context, cond string, arg any) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+cond, arg)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("user not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser writes every mutable user column.
// Returns store.ErrNotFound if the user is gone and store.ErrAlreadyExists on a
// username or email collision.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			username = ?, email = ?, email_lower = ?, password_hash = ?, avatar = ?, updated_at = ?
		WHERE id = ?`,
		user.Username,
		nullString(user.Email),
		emailKey(user.Email),
		user.PasswordHash,
		user.Avatar,
		formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("username or email already exists")
		}
		return err
	}
	return expectOneRow(res, "user not found")
}

// DeleteUser removes a user. Projects and notes cascade.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, "user not found")
}

// expectOneRow maps a zero-row update or delete to store.ErrNotFound.
func expectOneRow(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage(notFoundMsg)
	}
	return nil
}
