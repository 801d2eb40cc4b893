package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/lifocus/lifocus-server/internal/api"
	"github.com/lifocus/lifocus-server/internal/config"
	"github.com/lifocus/lifocus-server/internal/logger"
	"github.com/lifocus/lifocus-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideAPIServices collects the services exposed over HTTP.
func ProvideAPIServices(i do.Injector) (*api.Services, error) {
	return &api.Services{
		Auth:    do.MustInvoke[*service.AuthService](i),
		User:    do.MustInvoke[*service.UserService](i),
		Project: do.MustInvoke[*service.ProjectService](i),
		Note:    do.MustInvoke[*service.NoteService](i),
		Import:  do.MustInvoke[*service.ImportService](i),
		Export:  do.MustInvoke[*service.ExportService](i),
	}, nil
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	services := do.MustInvoke[*api.Services](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)

	opts := api.DefaultOptions()
	opts.AllowedOrigins = cfg.Server.AllowedOrigins
	opts.MaxUploadSize = cfg.Import.MaxUploadSize
	opts.HealthChecks = map[string]api.HealthCheck{
		"database": storeHandle.Ping,
		"search": func(context.Context) error {
			_, err := indexHandle.DocumentCount()
			return err
		},
	}

	handler := api.NewServer(services, opts, log.Logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
