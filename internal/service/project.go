package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lifocus/lifocus-server/internal/domain"
	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/store"
)

// ProjectService manages projects owned by the requesting user.
type ProjectService struct {
	projects store.ProjectStore
	notes    *NoteService
	logger   *slog.Logger
	now      func() time.Time
}

// NewProjectService creates a new project service. notes may be nil, in
// which case note observers are not told about notes removed with a project.
func NewProjectService(projects store.ProjectStore, notes *NoteService, logger *slog.Logger) *ProjectService {
	return &ProjectService{projects: projects, notes: notes, logger: logger, now: time.Now}
}

// CreateProjectRequest contains the fields of a new project.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=255"`
	Type        string `json:"type,omitempty" validate:"max=64"`
	Icon        string `json:"icon,omitempty" validate:"max=255"`
	Description string `json:"description,omitempty" validate:"max=4096"`
	Folder      string `json:"folder,omitempty" validate:"max=255"`
	Status      string `json:"status,omitempty" validate:"max=64"`
}

// UpdateProjectRequest is a partial project update. Nil fields are unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	Type        *string `json:"type,omitempty" validate:"omitempty,max=64"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=4096"`
	Folder      *string `json:"folder,omitempty" validate:"omitempty,max=255"`
	Status      *string `json:"status,omitempty" validate:"omitempty,max=64"`
	IsArchived  *bool   `json:"is_archived,omitempty"`
	IsRecycle   *bool   `json:"is_recycle,omitempty"`
	IsFavor     *bool   `json:"is_favor,omitempty"`
}

// ListProjectsParams narrows a project listing.
type ListProjectsParams struct {
	// IsRecent keeps projects updated within domain.RecentWindow.
	IsRecent bool
	// Statuses keeps projects whose status is listed. Empty means any.
	Statuses []string
}

var errProjectExists = domainerrors.Validation("project already exists")

// Create creates a project owned by userID. Names are unique per owner.
func (s *ProjectService) Create(ctx context.Context, userID int64, req CreateProjectRequest) (*domain.Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.projects.GetProjectByName(ctx, req.Name, userID); err == nil {
		return nil, errProjectExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup project: %w", err)
	}

	now := s.now()
	project := &domain.Project{
		AccountID:   userID,
		Type:        req.Type,
		Name:        req.Name,
		Icon:        req.Icon,
		Description: req.Description,
		Folder:      req.Folder,
		Status:      req.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	project.ApplyDefaults()

	if err := s.projects.CreateProject(ctx, project); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, errProjectExists
		}
		return nil, storeError(err)
	}

	s.logger.Info("project created", "project_id", project.ID, "user_id", userID)
	return project, nil
}

// Get returns a project owned by userID.
func (s *ProjectService) Get(ctx context.Context, userID, projectID int64) (*domain.Project, error) {
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, storeError(err)
	}
	if !project.OwnedBy(userID) {
		return nil, domainerrors.Forbiddenf("no access to project %d", projectID)
	}
	return project, nil
}

// Update applies a partial update to a project owned by userID.
func (s *ProjectService) Update(ctx context.Context, userID, projectID int64, req UpdateProjectRequest) (*domain.Project, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	project, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != project.Name {
			if _, err := s.projects.GetProjectByName(ctx, name, userID); err == nil {
				return nil, errProjectExists
			} else if !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("lookup project: %w", err)
			}
		}
		project.Name = name
	}
	setString(&project.Type, req.Type)
	setString(&project.Icon, req.Icon)
	setString(&project.Description, req.Description)
	setString(&project.Folder, req.Folder)
	setString(&project.Status, req.Status)
	setBool(&project.IsArchived, req.IsArchived)
	setBool(&project.IsRecycle, req.IsRecycle)
	setBool(&project.IsFavor, req.IsFavor)
	project.UpdatedAt = s.now()

	if err := s.projects.UpdateProject(ctx, project); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, errProjectExists
		}
		return nil, storeError(err)
	}
	return project, nil
}

// Delete removes a project owned by userID and all of its notes.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID int64) error {
	project, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return err
	}

	notifyDeleted := func() {}
	if s.notes != nil {
		if notifyDeleted, err = s.notes.PrepareProjectDelete(ctx, userID, project); err != nil {
			return err
		}
	}

	if err := s.projects.DeleteProject(ctx, projectID); err != nil {
		return storeError(err)
	}
	s.logger.Info("project deleted", "project_id", projectID, "user_id", userID)
	notifyDeleted()
	return nil
}

// List returns the user's projects.
func (s *ProjectService) List(ctx context.Context, userID int64, params ListProjectsParams) ([]*domain.Project, error) {
	filter := domain.ProjectFilter{AccountID: userID, Statuses: params.Statuses}
	if params.IsRecent {
		since := s.now().Add(-domain.RecentWindow)
		filter.UpdatedAfter = &since
	}

	projects, err := s.projects.ListProjects(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if projects == nil {
		projects = []*domain.Project{}
	}
	return projects, nil
}

// Page returns one page of the user's projects. Condition keys are
// type, name, folder, status, is_archived, is_recycle and is_favor;
// name and folder match substrings.
func (s *ProjectService) Page(ctx context.Context, userID int64, req PageRequest) (domain.PageResult[*domain.Project], error) {
	filter := domain.ProjectFilter{AccountID: userID}

	for key, value := range req.Conditions {
		var err error
		switch key {
		case "type":
			filter.Type, _ = conditionString(value)
		case "name":
			filter.Name, _ = conditionString(value)
		case "folder":
			filter.Folder, _ = conditionString(value)
		case "status":
			if st, ok := conditionString(value); ok && st != "" {
				filter.Statuses = []string{st}
			}
		case "is_archived":
			filter.IsArchived, err = conditionBool(key, value)
		case "is_recycle":
			filter.IsRecycle, err = conditionBool(key, value)
		case "is_favor":
			filter.IsFavor, err = conditionBool(key, value)
		}
		if err != nil {
			return domain.PageResult[*domain.Project]{}, err
		}
	}

	res, err := s.projects.PageProjects(ctx, filter, domain.Page{No: req.PageNo, Size: req.PageSize})
	if err != nil {
		return domain.PageResult[*domain.Project]{}, fmt.Errorf("page projects: %w", err)
	}
	return res, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
