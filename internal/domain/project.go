package domain

import "time"

// Default values applied to new projects and notes.
const (
	DefaultType   = "note"
	DefaultFolder = "default"
	DefaultStatus = "active"
)

// Project groups notes and belongs to exactly one user.
// Name is unique per owner.
type Project struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	Folder      string    `json:"folder"`
	Status      string    `json:"status"`
	IsArchived  bool      `json:"is_archived"`
	IsRecycle   bool      `json:"is_recycle"`
	IsFavor     bool      `json:"is_favor"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnedBy reports whether userID owns the project.
func (p *Project) OwnedBy(userID int64) bool {
	return p != nil && p.AccountID == userID
}

// Touch updates the UpdatedAt timestamp.
func (p *Project) Touch() {
	p.UpdatedAt = time.Now()
}

// ApplyDefaults fills empty optional fields with their defaults.
func (p *Project) ApplyDefaults() {
	if p.Type == "" {
		p.Type = DefaultType
	}
	if p.Folder == "" {
		p.Folder = DefaultFolder
	}
	if p.Status == "" {
		p.Status = DefaultStatus
	}
}
