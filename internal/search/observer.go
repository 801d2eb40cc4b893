package search

import (
	"context"

	"github.com/lifocus/lifocus-server/internal/domain"
)

// NoteIndexer keeps the index in step with committed note mutations.
// Indexing failures are logged; the index can be rebuilt from the store.
type NoteIndexer struct {
	index *SearchIndex
}

// NewNoteIndexer creates a NoteIndexer for index.
func NewNoteIndexer(index *SearchIndex) *NoteIndexer {
	return &NoteIndexer{index: index}
}

// NoteCreated indexes a new note.
func (n *NoteIndexer) NoteCreated(_ context.Context, ev domain.NoteEvent) {
	n.put(ev)
}

// NoteUpdated reindexes an updated note.
func (n *NoteIndexer) NoteUpdated(_ context.Context, ev domain.NoteEvent) {
	n.put(ev)
}

// NoteRecycled removes a soft-deleted note from the index.
func (n *NoteIndexer) NoteRecycled(_ context.Context, ev domain.NoteEvent) {
	if err := n.index.DeleteDocument(DocID(ev.Note.ID)); err != nil {
		n.index.logger.Warn("failed to remove note from search index", "note_id", ev.Note.ID, "error", err)
	}
}

// NoteDeleted removes a note deleted along with its project or owner.
func (n *NoteIndexer) NoteDeleted(ctx context.Context, ev domain.NoteEvent) {
	n.NoteRecycled(ctx, ev)
}

func (n *NoteIndexer) put(ev domain.NoteEvent) {
	if err := n.index.IndexDocument(NoteToDocument(ev.Note, ev.Project.AccountID)); err != nil {
		n.index.logger.Warn("failed to index note", "note_id", ev.Note.ID, "error", err)
	}
}
