package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lifocus/lifocus-server/internal/auth"
	"github.com/lifocus/lifocus-server/internal/domain"
	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/search"
	"github.com/lifocus/lifocus-server/internal/store"
)

// NoteObserver is told about committed note mutations. Implementations must
// not block for long; failures are theirs to log.
type NoteObserver interface {
	NoteCreated(ctx context.Context, ev domain.NoteEvent)
	NoteUpdated(ctx context.Context, ev domain.NoteEvent)
	NoteRecycled(ctx context.Context, ev domain.NoteEvent)
	// NoteDeleted reports a note removed together with its project or account.
	NoteDeleted(ctx context.Context, ev domain.NoteEvent)
}

// NoteIndex is the full-text index used for note search.
type NoteIndex interface {
	Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error)
	IndexDocuments(docs []*search.NoteDocument) error
	DocumentCount() (uint64, error)
}

// NoteService manages notes inside the requesting user's projects.
type NoteService struct {
	notes     store.NoteStore
	projects  store.ProjectStore
	users     store.UserStore
	index     NoteIndex
	observers []NoteObserver
	logger    *slog.Logger
	now       func() time.Time
}

// NewNoteService creates a new note service. index may be nil, in which case
// Search reports that search is unavailable.
func NewNoteService(
	notes store.NoteStore,
	projects store.ProjectStore,
	users store.UserStore,
	index NoteIndex,
	logger *slog.Logger,
	observers ...NoteObserver,
) *NoteService {
	return &NoteService{
		notes:     notes,
		projects:  projects,
		users:     users,
		index:     index,
		observers: observers,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateNoteRequest contains the fields of a new note.
type CreateNoteRequest struct {
	Title         string `json:"title" validate:"required,notblank,max=255"`
	Content       string `json:"content,omitempty"`
	Type          string `json:"type,omitempty" validate:"max=64"`
	Folder        string `json:"folder,omitempty" validate:"max=255"`
	Status        string `json:"status,omitempty" validate:"max=64"`
	IsArchived    bool   `json:"is_archived,omitempty"`
	IsRecycle     bool   `json:"is_recycle,omitempty"`
	IsShare       bool   `json:"is_share,omitempty"`
	SharePassword string `json:"share_password,omitempty" validate:"max=1024"`
}

// UpdateNoteRequest is a partial note update. Nil and empty strings leave
// the field unchanged; nil flags leave the flag unchanged.
type UpdateNoteRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Content       *string `json:"content,omitempty"`
	Type          *string `json:"type,omitempty" validate:"omitempty,max=64"`
	Folder        *string `json:"folder,omitempty" validate:"omitempty,max=255"`
	Status        *string `json:"status,omitempty" validate:"omitempty,max=64"`
	IsArchived    *bool   `json:"is_archived,omitempty"`
	IsRecycle     *bool   `json:"is_recycle,omitempty"`
	IsShare       *bool   `json:"is_share,omitempty"`
	SharePassword *string `json:"share_password,omitempty" validate:"omitempty,max=1024"`
}

// ListNotesParams narrows a note listing.
type ListNotesParams struct {
	Title    string
	IsRecent bool
}

// Create adds a note to a project owned by userID.
func (s *NoteService) Create(ctx context.Context, userID, projectID int64, req CreateNoteRequest) (*domain.Note, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	project, err := s.ownedProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	note := &domain.Note{
		ProjectID:  project.ID,
		Type:       req.Type,
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		Folder:     req.Folder,
		Status:     req.Status,
		IsArchived: req.IsArchived,
		IsRecycle:  req.IsRecycle,
		IsShare:    req.IsShare,
	}
	if req.SharePassword != "" {
		if note.SharePassword, err = auth.HashPassword(req.SharePassword); err != nil {
			return nil, fmt.Errorf("hash share password: %w", err)
		}
	}

	if err := s.insert(ctx, user, project, note); err != nil {
		return nil, err
	}
	return note, nil
}

// insert stores a note and notifies observers.
func (s *NoteService) insert(ctx context.Context, user *domain.User, project *domain.Project, note *domain.Note) error {
	now := s.now()
	note.ProjectID = project.ID
	note.CreatedAt = now
	note.UpdatedAt = now
	note.ApplyDefaults()

	if err := s.notes.CreateNote(ctx, note); err != nil {
		return storeError(err)
	}

	s.logger.Debug("note created", "note_id", note.ID, "project_id", project.ID, "user_id", user.ID)
	s.notify(ctx, func(o NoteObserver) {
		o.NoteCreated(ctx, domain.NoteEvent{User: user, Project: project, Note: note})
	})
	return nil
}

// Get returns a note from a project owned by userID.
func (s *NoteService) Get(ctx context.Context, userID, noteID int64) (*domain.Note, error) {
	note, _, err := s.ownedNote(ctx, userID, noteID)
	return note, err
}

// Update applies a partial update to a note owned by userID.
func (s *NoteService) Update(ctx context.Context, userID, noteID int64, req UpdateNoteRequest) (*domain.Note, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	note, project, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	previous := *note

	setNonEmpty(&note.Title, req.Title)
	setNonEmpty(&note.Content, req.Content)
	setNonEmpty(&note.Type, req.Type)
	setNonEmpty(&note.Folder, req.Folder)
	setNonEmpty(&note.Status, req.Status)
	setBool(&note.IsArchived, req.IsArchived)
	setBool(&note.IsRecycle, req.IsRecycle)
	setBool(&note.IsShare, req.IsShare)
	if req.SharePassword != nil && *req.SharePassword != "" {
		if note.SharePassword, err = auth.HashPassword(*req.SharePassword); err != nil {
			return nil, fmt.Errorf("hash share password: %w", err)
		}
	}
	note.Title = strings.TrimSpace(note.Title)
	if note.Title == "" {
		note.Title = previous.Title
	}
	note.UpdatedAt = s.now()

	if err := s.notes.UpdateNote(ctx, note); err != nil {
		return nil, storeError(err)
	}

	ev := domain.NoteEvent{User: user, Project: project, Note: note, Previous: &previous}
	if note.IsRecycle && !previous.IsRecycle {
		s.notify(ctx, func(o NoteObserver) { o.NoteRecycled(ctx, ev) })
	} else {
		s.notify(ctx, func(o NoteObserver) { o.NoteUpdated(ctx, ev) })
	}
	return note, nil
}

// Delete moves a note owned by userID to the recycle bin.
func (s *NoteService) Delete(ctx context.Context, userID, noteID int64) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	note, project, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return err
	}

	note.IsRecycle = true
	note.UpdatedAt = s.now()
	if err := s.notes.UpdateNote(ctx, note); err != nil {
		return storeError(err)
	}

	s.logger.Info("note recycled", "note_id", note.ID, "user_id", userID)
	s.notify(ctx, func(o NoteObserver) {
		o.NoteRecycled(ctx, domain.NoteEvent{User: user, Project: project, Note: note})
	})
	return nil
}

// ListByProject returns the live notes of a project owned by userID.
func (s *NoteService) ListByProject(ctx context.Context, userID, projectID int64, params ListNotesParams) ([]*domain.Note, error) {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	filter := domain.NoteFilter{
		ProjectID:      projectID,
		Title:          params.Title,
		ExcludeRecycle: true,
	}
	s.applyRecent(&filter, params.IsRecent)
	return s.list(ctx, filter)
}

// ListAll returns every live note across the user's projects.
func (s *NoteService) ListAll(ctx context.Context, userID int64, isRecent bool) ([]*domain.Note, error) {
	filter := domain.NoteFilter{OwnerID: userID, ExcludeRecycle: true}
	s.applyRecent(&filter, isRecent)
	return s.list(ctx, filter)
}

func (s *NoteService) applyRecent(filter *domain.NoteFilter, isRecent bool) {
	if isRecent {
		since := s.now().Add(-domain.RecentWindow)
		filter.UpdatedAfter = &since
	}
}

func (s *NoteService) list(ctx context.Context, filter domain.NoteFilter) ([]*domain.Note, error) {
	notes, err := s.notes.ListNotes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if notes == nil {
		notes = []*domain.Note{}
	}
	return notes, nil
}

// Page returns one page of notes in a project owned by userID. Condition
// keys are type, title, folder, status, is_archived, is_recycle, is_share,
// created_start_time, created_end_time, updated_start_time and
// updated_end_time; title and folder match substrings.
func (s *NoteService) Page(ctx context.Context, userID, projectID int64, req PageRequest) (domain.PageResult[*domain.Note], error) {
	var empty domain.PageResult[*domain.Note]

	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return empty, err
	}

	filter := domain.NoteFilter{ProjectID: projectID, OwnerID: userID}
	for key, value := range req.Conditions {
		var err error
		switch key {
		case "type":
			filter.Type, _ = conditionString(value)
		case "title":
			filter.Title, _ = conditionString(value)
		case "folder":
			filter.Folder, _ = conditionString(value)
		case "status":
			filter.Status, _ = conditionString(value)
		case "is_archived":
			filter.IsArchived, err = conditionBool(key, value)
		case "is_recycle":
			filter.IsRecycle, err = conditionBool(key, value)
		case "is_share":
			filter.IsShare, err = conditionBool(key, value)
		case "created_start_time":
			filter.CreatedAfter, err = conditionTime(key, value)
		case "created_end_time":
			filter.CreatedBefore, err = conditionTime(key, value)
		case "updated_start_time":
			filter.UpdatedAfter, err = conditionTime(key, value)
		case "updated_end_time":
			filter.UpdatedBefore, err = conditionTime(key, value)
		}
		if err != nil {
			return empty, err
		}
	}

	res, err := s.notes.PageNotes(ctx, filter, domain.Page{No: req.PageNo, Size: req.PageSize})
	if err != nil {
		return empty, fmt.Errorf("page notes: %w", err)
	}
	return res, nil
}

// Search runs a full-text query over the user's live notes. projectID 0
// searches every project.
func (s *NoteService) Search(ctx context.Context, userID int64, q string, projectID int64, limit int) (*search.SearchResult, error) {
	if s.index == nil {
		return nil, domainerrors.Internal("search is not available")
	}
	if projectID != 0 {
		if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
			return nil, err
		}
	}

	res, err := s.index.Search(ctx, search.SearchParams{
		OwnerID:   userID,
		Query:     strings.TrimSpace(q),
		ProjectID: projectID,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	return res, nil
}

// ReindexIfEmpty fills an empty search index from the store. It is run at
// startup so a fresh or rebuilt index catches up with existing notes.
func (s *NoteService) ReindexIfEmpty(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}
	count, err := s.index.DocumentCount()
	if err != nil {
		return 0, fmt.Errorf("count indexed notes: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	projects, err := s.projects.ListProjects(ctx, domain.ProjectFilter{})
	if err != nil {
		return 0, fmt.Errorf("list projects: %w", err)
	}

	total := 0
	for _, project := range projects {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		notes, err := s.notes.ListNotes(ctx, domain.NoteFilter{ProjectID: project.ID, ExcludeRecycle: true})
		if err != nil {
			return total, fmt.Errorf("list notes of project %d: %w", project.ID, err)
		}
		if len(notes) == 0 {
			continue
		}
		docs := make([]*search.NoteDocument, 0, len(notes))
		for _, note := range notes {
			docs = append(docs, search.NoteToDocument(note, project.AccountID))
		}
		if err := s.index.IndexDocuments(docs); err != nil {
			return total, fmt.Errorf("index notes of project %d: %w", project.ID, err)
		}
		total += len(docs)
	}

	s.logger.Info("search index rebuilt", "notes", total)
	return total, nil
}

// PrepareProjectDelete snapshots the notes of project before it is deleted.
// The returned function tells observers about each of them and must be
// called once the delete has committed.
func (s *NoteService) PrepareProjectDelete(ctx context.Context, userID int64, project *domain.Project) (func(), error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.prepareCascade(ctx, user, []*domain.Project{project})
}

// PrepareUserDelete is PrepareProjectDelete for every project of userID.
func (s *NoteService) PrepareUserDelete(ctx context.Context, userID int64) (func(), error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.ListProjects(ctx, domain.ProjectFilter{AccountID: userID})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return s.prepareCascade(ctx, user, projects)
}

func (s *NoteService) prepareCascade(ctx context.Context, user *domain.User, projects []*domain.Project) (func(), error) {
	var events []domain.NoteEvent
	for _, project := range projects {
		notes, err := s.notes.ListNotes(ctx, domain.NoteFilter{ProjectID: project.ID})
		if err != nil {
			return nil, fmt.Errorf("list notes of project %d: %w", project.ID, err)
		}
		for _, note := range notes {
			events = append(events, domain.NoteEvent{User: user, Project: project, Note: note})
		}
	}

	return func() {
		for _, ev := range events {
			s.notify(ctx, func(o NoteObserver) { o.NoteDeleted(ctx, ev) })
		}
	}, nil
}

// notify calls fn for every observer. A panicking observer is logged and
// does not affect the others or the caller.
func (s *NoteService) notify(ctx context.Context, fn func(NoteObserver)) {
	for _, o := range s.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.ErrorContext(ctx, "note observer panicked", "observer", fmt.Sprintf("%T", o), "panic", r)
				}
			}()
			fn(o)
		}()
	}
}

func (s *NoteService) user(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

// ownedProject loads a project and checks that userID owns it.
func (s *NoteService) ownedProject(ctx context.Context, userID, projectID int64) (*domain.Project, error) {
	if projectID <= 0 {
		return nil, domainerrors.Validation("project id required")
	}
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, storeError(err)
	}
	if !project.OwnedBy(userID) {
		return nil, domainerrors.Forbiddenf("no access to project %d", projectID)
	}
	return project, nil
}

// ownedNote loads a note and its project and checks that userID owns the
// project. A note whose project is gone is treated as not accessible.
func (s *NoteService) ownedNote(ctx context.Context, userID, noteID int64) (*domain.Note, *domain.Project, error) {
	note, err := s.notes.GetNote(ctx, noteID)
	if err != nil {
		return nil, nil, storeError(err)
	}
	project, err := s.projects.GetProject(ctx, note.ProjectID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Forbiddenf("no access to note %d", noteID)
		}
		return nil, nil, err
	}
	if !project.OwnedBy(userID) {
		return nil, nil, domainerrors.Forbiddenf("no access to note %d", noteID)
	}
	return note, project, nil
}

func setNonEmpty(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}
