package providers

import (
	"github.com/samber/do/v2"

	"github.com/lifocus/lifocus-server/internal/archive"
	"github.com/lifocus/lifocus-server/internal/auth"
	"github.com/lifocus/lifocus-server/internal/logger"
	"github.com/lifocus/lifocus-server/internal/mirror"
	"github.com/lifocus/lifocus-server/internal/search"
	"github.com/lifocus/lifocus-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	blocklistHandle := do.MustInvoke[*BlocklistHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, blocklistHandle.Blocklist, log.Logger), nil
}

// ProvideUserService provides the user profile service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	noteService := do.MustInvoke[*service.NoteService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, noteService, log.Logger), nil
}

// ProvideProjectService provides the project service.
func ProvideProjectService(i do.Injector) (*service.ProjectService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	noteService := do.MustInvoke[*service.NoteService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProjectService(storeHandle.Store, noteService, log.Logger), nil
}

// ProvideNoteService provides the note service with its write observers.
func ProvideNoteService(i do.Injector) (*service.NoteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	indexer := do.MustInvoke[*search.NoteIndexer](i)
	noteMirror := do.MustInvoke[*mirror.Mirror](i)
	log := do.MustInvoke[*logger.Logger](i)

	observers := []service.NoteObserver{indexer}
	if noteMirror != nil {
		observers = append(observers, noteMirror)
	}

	return service.NewNoteService(
		storeHandle.Store,
		storeHandle.Store,
		storeHandle.Store,
		indexHandle.SearchIndex,
		log.Logger,
		observers...,
	), nil
}

// ProvideImportService provides the markdown and archive importer.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	noteService := do.MustInvoke[*service.NoteService](i)
	extractor := do.MustInvoke[*archive.Extractor](i)
	scratch := do.MustInvoke[ScratchDir](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImportService(noteService, storeHandle.Store, extractor, string(scratch), log.Logger), nil
}

// ProvideExportService provides the note exporter.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	scratch := do.MustInvoke[ScratchDir](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExportService(storeHandle.Store, storeHandle.Store, string(scratch), log.Logger), nil
}
