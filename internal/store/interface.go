// Package store defines the persistence interfaces for the LiFocus server.
// Each entity gets its own repository so services depend only on what they use
// and tests can substitute in-memory fakes.
package store

import (
	"context"

	"github.com/lifocus/lifocus-server/internal/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// ProjectStore persists projects.
type ProjectStore interface {
	CreateProject(ctx context.Context, project *domain.Project) error
	GetProject(ctx context.Context, id int64) (*domain.Project, error)
	GetProjectByName(ctx context.Context, name string, ownerID int64) (*domain.Project, error)
	UpdateProject(ctx context.Context, project *domain.Project) error
	DeleteProject(ctx context.Context, id int64) error
	ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error)
	PageProjects(ctx context.Context, filter domain.ProjectFilter, page domain.Page) (domain.PageResult[*domain.Project], error)
}

// NoteStore persists notes.
type NoteStore interface {
	CreateNote(ctx context.Context, note *domain.Note) error
	GetNote(ctx context.Context, id int64) (*domain.Note, error)
	UpdateNote(ctx context.Context, note *domain.Note) error
	ListNotes(ctx context.Context, filter domain.NoteFilter) ([]*domain.Note, error)
	PageNotes(ctx context.Context, filter domain.NoteFilter, page domain.Page) (domain.PageResult[*domain.Note], error)
}

// Store is the full persistence surface implemented by the sqlite backend.
type Store interface {
	UserStore
	ProjectStore
	NoteStore
	Close() error
}
