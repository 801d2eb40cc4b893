package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifocus/lifocus-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func note(id, projectID int64, title, content string) *domain.Note {
	return &domain.Note{ID: id, ProjectID: projectID, Title: title, Content: content, UpdatedAt: time.Now()}
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewSearchIndex_Reopen(t *testing.T) {
	dir := t.TempDir()

	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexDocument(NoteToDocument(note(1, 1, "kept", "body"), 1)))
	require.NoError(t, index.Close())

	index, err = NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer index.Close()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearch_ScopedToOwner(t *testing.T) {
	index := setupTestIndex(t)

	require.NoError(t, index.IndexDocuments([]*NoteDocument{
		NoteToDocument(note(1, 10, "Quarterly planning", "budget review"), 1),
		NoteToDocument(note(2, 10, "Groceries", "milk and eggs"), 1),
		NoteToDocument(note(3, 20, "Planning for bob", "secret"), 2),
	}))

	res, err := index.Search(context.Background(), SearchParams{OwnerID: 1, Query: "planning"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, int64(1), res.Hits[0].NoteID)
	assert.Equal(t, int64(10), res.Hits[0].ProjectID)
	assert.Equal(t, "Quarterly planning", res.Hits[0].Title)
}

func TestSearch_MatchesContent(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexDocument(NoteToDocument(note(5, 1, "Shopping", "remember the eggs"), 1)))

	res, err := index.Search(context.Background(), SearchParams{OwnerID: 1, Query: "eggs"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, int64(5), res.Hits[0].NoteID)
}

func TestSearch_ExcludesRecycled(t *testing.T) {
	index := setupTestIndex(t)

	recycled := note(7, 1, "old idea", "idea")
	recycled.IsRecycle = true
	require.NoError(t, index.IndexDocument(NoteToDocument(recycled, 1)))

	res, err := index.Search(context.Background(), SearchParams{OwnerID: 1, Query: "idea"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestSearch_ProjectFilterAndLimit(t *testing.T) {
	index := setupTestIndex(t)
	for i := int64(1); i <= 5; i++ {
		project := int64(1)
		if i > 3 {
			project = 2
		}
		require.NoError(t, index.IndexDocument(NoteToDocument(note(i, project, "daily log", "entry"), 1)))
	}

	res, err := index.Search(context.Background(), SearchParams{OwnerID: 1, Query: "log", ProjectID: 2})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 2)

	res, err = index.Search(context.Background(), SearchParams{OwnerID: 1, Query: "", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 2)
	assert.Equal(t, uint64(5), res.Total)
}

func TestNoteIndexer_FollowsEvents(t *testing.T) {
	index := setupTestIndex(t)
	indexer := NewNoteIndexer(index)
	ctx := context.Background()
	project := &domain.Project{ID: 3, AccountID: 9}

	n := note(11, 3, "draft", "first version")
	indexer.NoteCreated(ctx, domain.NoteEvent{Project: project, Note: n})

	updated := note(11, 3, "final", "second version")
	indexer.NoteUpdated(ctx, domain.NoteEvent{Project: project, Note: updated, Previous: n})

	res, err := index.Search(ctx, SearchParams{OwnerID: 9, Query: "final"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)

	indexer.NoteRecycled(ctx, domain.NoteEvent{Project: project, Note: updated})
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestRebuild_Empties(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.IndexDocument(NoteToDocument(note(1, 1, "x", "y"), 1)))

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
