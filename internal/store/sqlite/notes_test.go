package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lifocus/lifocus-server/internal/domain"
	"github.com/lifocus/lifocus-server/internal/store"
)

func TestCreateAndGetNote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "alice")
	p := seedProject(t, s, owner.ID, "Work")

	n := seedNote(t, s, p.ID, "Meeting", time.Now())
	if n.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	got, err := s.GetNote(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Title != "Meeting" || got.Content != "# Meeting" || got.ProjectID != p.ID {
		t.Errorf("unexpected note: %+v", got)
	}

	if _, err := s.GetNote(ctx, 9999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateNote_UnknownProject(t *testing.T) {
	s := newTestStore(t)
	n := &domain.Note{ProjectID: 77, Title: "lost", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	n.ApplyDefaults()
	if err := s.CreateNote(context.Background(), n); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateNote_Recycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "alice")
	p := seedProject(t, s, owner.ID, "Work")
	n := seedNote(t, s, p.ID, "Old", time.Now())

	n.IsRecycle = true
	n.Touch()
	if err := s.UpdateNote(ctx, n); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}

	got, err := s.GetNote(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if !got.IsRecycle {
		t.Error("expected note to be recycled")
	}

	live, _ := s.ListNotes(ctx, domain.NoteFilter{ProjectID: p.ID, ExcludeRecycle: true})
	if len(live) != 0 {
		t.Errorf("recycled note still listed: %d", len(live))
	}
}

func TestListNotes_OwnerScopeAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	pa := seedProject(t, s, alice.ID, "A")
	pb := seedProject(t, s, bob.ID, "B")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := seedNote(t, s, pa.ID, "older", base)
	newer := seedNote(t, s, pa.ID, "newer", base.Add(time.Hour))
	seedNote(t, s, pb.ID, "bobs", base.Add(2*time.Hour))

	got, err := s.ListNotes(ctx, domain.NoteFilter{OwnerID: alice.ID})
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(got))
	}
	if got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Errorf("expected newest first, got %d then %d", got[0].ID, got[1].ID)
	}

	after := base.Add(30 * time.Minute)
	recent, _ := s.ListNotes(ctx, domain.NoteFilter{OwnerID: alice.ID, UpdatedAfter: &after})
	if len(recent) != 1 || recent[0].ID != newer.ID {
		t.Errorf("updated-after filter: got %d results", len(recent))
	}
}

func TestPageNotes_TitleAndTimeRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "alice")
	p := seedProject(t, s, owner.ID, "Work")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"plan 1", "plan 2", "plan 3", "retro"} {
		seedNote(t, s, p.ID, title, base.Add(time.Duration(i)*24*time.Hour))
	}

	res, err := s.PageNotes(ctx, domain.NoteFilter{ProjectID: p.ID, Title: "plan"}, domain.Page{No: 1, Size: 2})
	if err != nil {
		t.Fatalf("PageNotes: %v", err)
	}
	if res.Total != 3 || res.Pages != 2 || len(res.Items) != 2 {
		t.Errorf("unexpected page: total=%d pages=%d items=%d", res.Total, res.Pages, len(res.Items))
	}

	start := base.Add(24 * time.Hour)
	end := base.Add(2 * 24 * time.Hour)
	ranged, err := s.PageNotes(ctx, domain.NoteFilter{ProjectID: p.ID, CreatedAfter: &start, CreatedBefore: &end}, domain.Page{})
	if err != nil {
		t.Fatalf("PageNotes: %v", err)
	}
	if ranged.Total != 2 {
		t.Errorf("created range: got %d", ranged.Total)
	}
	if ranged.PageSize != domain.DefaultPageSize {
		t.Errorf("page size default: got %d", ranged.PageSize)
	}
}
