package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lifocus/lifocus-server/internal/domain"
	"github.com/lifocus/lifocus-server/internal/search"
	"github.com/lifocus/lifocus-server/internal/service"
)

// projectHeader names the project a note request targets.
const projectHeader = "X-Project-Id"

func (s *Server) registerNoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createNote",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes",
		Summary:     "Create note",
		Description: "Creates a note in the project named by the X-Project-Id header",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "listProjectNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/project",
		Summary:     "List project notes",
		Description: "Returns the live notes of a project, optionally filtered by title or recency",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListProjectNotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAllNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/all",
		Summary:     "List all notes",
		Description: "Returns every live note of the current user across projects",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListAllNotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "pageNotes",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes/page",
		Summary:     "Page notes",
		Description: "Returns one page of notes in the project named by the X-Project-Id header",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePageNotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/search",
		Summary:     "Search notes",
		Description: "Full-text search over the current user's live notes",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchNotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNote",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Get note",
		Description: "Returns a note by ID",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateNote",
		Method:      http.MethodPut,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Update note",
		Description: "Partially updates a note; empty strings leave fields unchanged",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteNote",
		Method:      http.MethodDelete,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Delete note",
		Description: "Moves a note to the recycle bin",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteNote)
}

// === DTOs ===

// CreateNoteInput wraps the create note request for Huma.
type CreateNoteInput struct {
	ProjectID int64 `header:"X-Project-Id" doc:"Target project ID"`
	Body      service.CreateNoteRequest
}

// NoteOutput wraps a note for Huma.
type NoteOutput struct {
	Body *domain.Note
}

// NoteListOutput wraps a list of notes for Huma.
type NoteListOutput struct {
	Body []*domain.Note
}

// ListProjectNotesInput contains parameters for listing a project's notes.
type ListProjectNotesInput struct {
	ProjectID       int64  `query:"projectId" doc:"Project ID; defaults to the X-Project-Id header"`
	HeaderProjectID int64  `header:"X-Project-Id" doc:"Project ID fallback"`
	Title           string `query:"title" doc:"Substring to match in titles"`
	IsRecent        bool   `query:"isRecent" doc:"Only notes updated in the last 30 days"`
}

// ListAllNotesInput contains parameters for listing every note.
type ListAllNotesInput struct {
	IsRecent bool `query:"isRecent" doc:"Only notes updated in the last 30 days"`
}

// PageNotesInput wraps the page request for Huma.
type PageNotesInput struct {
	ProjectID int64 `header:"X-Project-Id" doc:"Project ID"`
	Body      PageRequest
}

// NotePageOutput wraps a page of notes for Huma.
type NotePageOutput struct {
	Body PageData[*domain.Note]
}

// SearchNotesInput contains parameters for searching notes.
type SearchNotesInput struct {
	Query     string `query:"q" required:"true" minLength:"1" doc:"Search query"`
	ProjectID int64  `query:"projectId" doc:"Restrict to one project"`
	Limit     int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum results"`
}

// SearchNotesOutput wraps search results for Huma.
type SearchNotesOutput struct {
	Body *search.SearchResult
}

// NoteIDInput identifies a note by path.
type NoteIDInput struct {
	ID int64 `path:"id" doc:"Note ID"`
}

// UpdateNoteInput wraps the update note request for Huma.
type UpdateNoteInput struct {
	ID   int64 `path:"id" doc:"Note ID"`
	Body service.UpdateNoteRequest
}

// === Handlers ===

func (s *Server) handleCreateNote(ctx context.Context, input *CreateNoteInput) (*NoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Note.Create(ctx, userID, input.ProjectID, input.Body)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: note}, nil
}

func (s *Server) handleListProjectNotes(ctx context.Context, input *ListProjectNotesInput) (*NoteListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	projectID := input.ProjectID
	if projectID == 0 {
		projectID = input.HeaderProjectID
	}

	notes, err := s.services.Note.ListByProject(ctx, userID, projectID, service.ListNotesParams{
		Title:    input.Title,
		IsRecent: input.IsRecent,
	})
	if err != nil {
		return nil, err
	}
	return &NoteListOutput{Body: notes}, nil
}

func (s *Server) handleListAllNotes(ctx context.Context, input *ListAllNotesInput) (*NoteListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	notes, err := s.services.Note.ListAll(ctx, userID, input.IsRecent)
	if err != nil {
		return nil, err
	}
	return &NoteListOutput{Body: notes}, nil
}

func (s *Server) handlePageNotes(ctx context.Context, input *PageNotesInput) (*NotePageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Note.Page(ctx, userID, input.ProjectID, input.Body.toService())
	if err != nil {
		return nil, err
	}
	return &NotePageOutput{Body: newPageData(page)}, nil
}

func (s *Server) handleSearchNotes(ctx context.Context, input *SearchNotesInput) (*SearchNotesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Note.Search(ctx, userID, input.Query, input.ProjectID, input.Limit)
	if err != nil {
		return nil, err
	}
	return &SearchNotesOutput{Body: result}, nil
}

func (s *Server) handleGetNote(ctx context.Context, input *NoteIDInput) (*NoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Note.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: note}, nil
}

func (s *Server) handleUpdateNote(ctx context.Context, input *UpdateNoteInput) (*NoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Note.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: note}, nil
}

func (s *Server) handleDeleteNote(ctx context.Context, input *NoteIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Note.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageBody{Message: "note deleted"}}, nil
}
