package domain

import "time"

// RecentWindow is how far back "isRecent" listings look.
const RecentWindow = 30 * 24 * time.Hour

// Page describes a 1-based page request.
type Page struct {
	No   int
	Size int
}

// Default page values.
const (
	DefaultPageNo   = 1
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// Normalize clamps the page to valid values.
func (p Page) Normalize() Page {
	if p.No < 1 {
		p.No = DefaultPageNo
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	return (p.No - 1) * p.Size
}

// PageResult is one page of items plus totals.
type PageResult[T any] struct {
	Items    []T
	Total    int
	Pages    int
	PageNo   int
	PageSize int
}

// NewPageResult computes page counts for a total.
func NewPageResult[T any](items []T, total int, page Page) PageResult[T] {
	pages := 0
	if page.Size > 0 {
		pages = (total + page.Size - 1) / page.Size
	}
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:    items,
		Total:    total,
		Pages:    pages,
		PageNo:   page.No,
		PageSize: page.Size,
	}
}

// NoteFilter narrows note listings. Zero values mean "no constraint".
type NoteFilter struct {
	ProjectID      int64
	OwnerID        int64 // restricts to projects owned by this user
	Type           string
	Title          string // substring match
	Folder         string // substring match
	Status         string
	IsArchived     *bool
	IsRecycle      *bool
	IsShare        *bool
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	UpdatedAfter   *time.Time
	UpdatedBefore  *time.Time
	ExcludeRecycle bool
}

// ProjectFilter narrows project listings. Zero values mean "no constraint".
type ProjectFilter struct {
	AccountID     int64
	Type          string
	Name          string // substring match
	Folder        string // substring match
	Statuses      []string
	IsArchived    *bool
	IsRecycle     *bool
	IsFavor       *bool
	UpdatedAfter  *time.Time
}
