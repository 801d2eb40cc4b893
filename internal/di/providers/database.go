package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/lifocus/lifocus-server/internal/blocklist"
	"github.com/lifocus/lifocus-server/internal/config"
	"github.com/lifocus/lifocus-server/internal/logger"
	"github.com/lifocus/lifocus-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the sqlite store holding users, projects and notes.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.DatabasePath()
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// BlocklistHandle wraps the revoked-token store and its GC loop.
type BlocklistHandle struct {
	*blocklist.Blocklist
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *BlocklistHandle) Shutdown() error {
	h.cancel()
	return h.Close()
}

// ProvideBlocklist provides the badger-backed token blocklist.
func ProvideBlocklist(i do.Injector) (*BlocklistHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.BlocklistPath()
	bl, err := blocklist.Open(path, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go bl.RunGC(ctx, blocklistGCInterval)

	log.Info("Token blocklist opened", "path", path)

	return &BlocklistHandle{Blocklist: bl, cancel: cancel}, nil
}
