// Package search provides full-text search over notes using Bleve.
// Every document carries its owner so a query never crosses accounts.
package search

import (
	"strconv"
	"time"

	"github.com/lifocus/lifocus-server/internal/domain"
)

// NoteDocument is the indexed form of a note.
type NoteDocument struct {
	ID        string    `json:"id"` // decimal note id
	NoteID    int64     `json:"note_id"`
	OwnerID   int64     `json:"owner_id"`
	ProjectID int64     `json:"project_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Folder    string    `json:"folder"`
	Recycled  bool      `json:"recycled"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToMap converts the document to a map for Bleve indexing.
// Field names must match the mapping.
func (d *NoteDocument) ToMap() map[string]any {
	return map[string]any{
		"id":         d.ID,
		"note_id":    float64(d.NoteID),
		"owner_id":   float64(d.OwnerID),
		"project_id": float64(d.ProjectID),
		"title":      d.Title,
		"content":    d.Content,
		"folder":     d.Folder,
		"recycled":   d.Recycled,
		"updated_at": d.UpdatedAt,
	}
}

// DocID returns the index key of a note.
func DocID(noteID int64) string {
	return strconv.FormatInt(noteID, 10)
}

// NoteToDocument converts a note owned by ownerID to a search document.
func NoteToDocument(note *domain.Note, ownerID int64) *NoteDocument {
	return &NoteDocument{
		ID:        DocID(note.ID),
		NoteID:    note.ID,
		OwnerID:   ownerID,
		ProjectID: note.ProjectID,
		Title:     note.Title,
		Content:   note.Content,
		Folder:    note.Folder,
		Recycled:  note.IsRecycle,
		UpdatedAt: note.UpdatedAt,
	}
}
