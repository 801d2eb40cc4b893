package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/lifocus/lifocus-server/internal/config"
	"github.com/lifocus/lifocus-server/internal/logger"
	"github.com/lifocus/lifocus-server/internal/search"
	"github.com/lifocus/lifocus-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.SearchIndexPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideNoteIndexer provides the observer that keeps the index in step with note writes.
func ProvideNoteIndexer(i do.Injector) (*search.NoteIndexer, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	return search.NewNoteIndexer(indexHandle.SearchIndex), nil
}

// TriggerSearchReindexIfNeeded fills an empty index from the store in the background.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	noteService := do.MustInvoke[*service.NoteService](i)
	log := do.MustInvoke[*logger.Logger](i)

	go func() {
		count, err := noteService.ReindexIfEmpty(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err, "indexed", count)
			return
		}
		if count > 0 {
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}
