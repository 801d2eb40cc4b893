package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lifocus/lifocus-server/internal/domain"
	"github.com/lifocus/lifocus-server/internal/service"
)

func (s *Server) registerProjectRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProjects",
		Method:      http.MethodGet,
		Path:        "/api/v1/projects",
		Summary:     "List projects",
		Description: "Returns the current user's projects, optionally only recent ones or those in given statuses",
		Tags:        []string{"Projects"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListProjects)

	huma.Register(s.api, huma.Operation{
		OperationID: "createProject",
		Method:      http.MethodPost,
		Path:        "/api/v1/projects",
		Summary:     "Create project",
		Description: "Creates a project; names are unique per user",
		Tags:        []string{"Projects"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "pageProjects",
		Method:      http.MethodPost,
		Path:        "/api/v1/projects/page",
		Summary:     "Page projects",
		Description: "Returns one page of projects filtered by type, name, folder, status, is_archived, is_recycle and is_favor",
		Tags:        []string{"Projects"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePageProjects)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProject",
		Method:      http.MethodGet,
		Path:        "/api/v1/projects/{id}",
		Summary:     "Get project",
		Description: "Returns a project by ID",
		Tags:        []string{"Projects"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProject",
		Method:      http.MethodPut,
		Path:        "/api/v1/projects/{id}",
		Summary:     "Update project",
		Description: "Partially updates a project",
		Tags:        []string{"Projects"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProject",
		Method:      http.MethodDelete,
		Path:        "/api/v1/projects/{id}",
		Summary:     "Delete project",
		Description: "Deletes a project and its notes",
		Tags:        []string{"Projects"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteProject)
}

// === DTOs ===

// PageRequest is the request body of the paginated listings.
type PageRequest struct {
	PageNo   int            `json:"page_no,omitempty" minimum:"0" doc:"Page number, default 1"`
	PageSize int            `json:"page_size,omitempty" minimum:"0" doc:"Page size, default 10"`
	Query    map[string]any `json:"query,omitempty" doc:"Filter conditions; unknown keys are ignored"`
}

func (r PageRequest) toService() service.PageRequest {
	return service.PageRequest{PageNo: r.PageNo, PageSize: r.PageSize, Conditions: r.Query}
}

// ListProjectsInput contains parameters for listing projects.
type ListProjectsInput struct {
	IsRecent bool   `query:"isRecent" doc:"Only projects updated in the last 30 days"`
	Status   string `query:"status" doc:"Comma-separated statuses to keep"`
}

// ProjectListOutput wraps a list of projects for Huma.
type ProjectListOutput struct {
	Body []*domain.Project
}

// CreateProjectInput wraps the create project request for Huma.
type CreateProjectInput struct {
	Body service.CreateProjectRequest
}

// ProjectOutput wraps a project for Huma.
type ProjectOutput struct {
	Body *domain.Project
}

// PageProjectsInput wraps the page request for Huma.
type PageProjectsInput struct {
	Body PageRequest
}

// ProjectPageOutput wraps a page of projects for Huma.
type ProjectPageOutput struct {
	Body PageData[*domain.Project]
}

// ProjectIDInput identifies a project by path.
type ProjectIDInput struct {
	ID int64 `path:"id" doc:"Project ID"`
}

// UpdateProjectInput wraps the update project request for Huma.
type UpdateProjectInput struct {
	ID   int64 `path:"id" doc:"Project ID"`
	Body service.UpdateProjectRequest
}

// === Handlers ===

func (s *Server) handleListProjects(ctx context.Context, input *ListProjectsInput) (*ProjectListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	projects, err := s.services.Project.List(ctx, userID, service.ListProjectsParams{
		IsRecent: input.IsRecent,
		Statuses: service.ParseCSV(input.Status),
	})
	if err != nil {
		return nil, err
	}
	return &ProjectListOutput{Body: projects}, nil
}

func (s *Server) handleCreateProject(ctx context.Context, input *CreateProjectInput) (*ProjectOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	project, err := s.services.Project.Create(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ProjectOutput{Body: project}, nil
}

func (s *Server) handlePageProjects(ctx context.Context, input *PageProjectsInput) (*ProjectPageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Project.Page(ctx, userID, input.Body.toService())
	if err != nil {
		return nil, err
	}
	return &ProjectPageOutput{Body: newPageData(page)}, nil
}

func (s *Server) handleGetProject(ctx context.Context, input *ProjectIDInput) (*ProjectOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	project, err := s.services.Project.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &ProjectOutput{Body: project}, nil
}

func (s *Server) handleUpdateProject(ctx context.Context, input *UpdateProjectInput) (*ProjectOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	project, err := s.services.Project.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ProjectOutput{Body: project}, nil
}

func (s *Server) handleDeleteProject(ctx context.Context, input *ProjectIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Project.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageBody{Message: "project deleted"}}, nil
}
