// Package di provides dependency injection configuration for the LiFocus server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/lifocus/lifocus-server/internal/api"
	"github.com/lifocus/lifocus-server/internal/archive"
	"github.com/lifocus/lifocus-server/internal/auth"
	"github.com/lifocus/lifocus-server/internal/config"
	"github.com/lifocus/lifocus-server/internal/di/providers"
	"github.com/lifocus/lifocus-server/internal/logger"
	"github.com/lifocus/lifocus-server/internal/mirror"
	"github.com/lifocus/lifocus-server/internal/search"
	"github.com/lifocus/lifocus-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideBlocklist)
	do.Provide(injector, providers.ProvideScratchDir)
	do.Provide(injector, providers.ProvideMirror)
	do.Provide(injector, providers.ProvideExtractor)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideNoteIndexer)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideProjectService)
	do.Provide(injector, providers.ProvideNoteService)
	do.Provide(injector, providers.ProvideImportService)
	do.Provide(injector, providers.ProvideExportService)

	// Server
	do.Provide(injector, providers.ProvideAPIServices)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.BlocklistHandle](injector)
	_ = do.MustInvoke[providers.ScratchDir](injector)
	_ = do.MustInvoke[*mirror.Mirror](injector)
	_ = do.MustInvoke[*archive.Extractor](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*search.NoteIndexer](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.ProjectService](injector)
	_ = do.MustInvoke[*service.NoteService](injector)
	_ = do.MustInvoke[*service.ImportService](injector)
	_ = do.MustInvoke[*service.ExportService](injector)

	// Server
	_ = do.MustInvoke[*api.Services](injector)
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
