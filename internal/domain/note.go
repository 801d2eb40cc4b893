package domain

import (
	"strconv"
	"time"
)

// ImportedFolder is the folder assigned to every note created by an import.
const ImportedFolder = "imported"

// Note is a markdown document inside a project.
// Deleting a note sets IsRecycle; rows are never removed through the note API.
type Note struct {
	ID            int64     `json:"id"`
	ProjectID     int64     `json:"project_id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Folder        string    `json:"folder"`
	Status        string    `json:"status"`
	IsArchived    bool      `json:"is_archived"`
	IsRecycle     bool      `json:"is_recycle"`
	IsShare       bool      `json:"is_share"`
	SharePassword string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (n *Note) Touch() {
	n.UpdatedAt = time.Now()
}

// ApplyDefaults fills empty optional fields with their defaults.
func (n *Note) ApplyDefaults() {
	if n.Type == "" {
		n.Type = DefaultType
	}
	if n.Folder == "" {
		n.Folder = DefaultFolder
	}
	if n.Status == "" {
		n.Status = DefaultStatus
	}
}

// FallbackName is used wherever a file name is derived from an empty title.
func (n *Note) FallbackName() string {
	return "note_" + strconv.FormatInt(n.ID, 10)
}

// HasSharePassword reports whether a share password is set.
func (n *Note) HasSharePassword() bool {
	return n.SharePassword != ""
}

// ImportedNote identifies one note created by an import.
type ImportedNote struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// ImportResult lists the notes created by one import call.
type ImportResult struct {
	Notes []ImportedNote `json:"notes"`
	// Single is set when the upload was one document rather than an archive.
	Single bool `json:"-"`
	// Skipped counts archive members rejected by the extractor.
	Skipped int `json:"skipped"`
}

// Count returns the number of created notes.
func (r *ImportResult) Count() int {
	return len(r.Notes)
}
