package services

import (
	"context"
	"errors"
	"testing"
)

func renInput(refugeID, start, end string) RenovationInput {
	return RenovationInput{
		RefugeID:      refugeID,
		StartDate:     start,
		EndDate:       end,
		Description:   "repintar el menjador",
		GroupChatLink: "https://chat.whatsapp.com/Abc123",
	}
}

func TestRenovationService_CreateValidation(t *testing.T) {
	db := newServiceDB(t)
	svc := NewRenovationService(db)
	ctx := context.Background()
	ref := seedRefuge(t, db, "Amitges", "Pallars", "")

	cases := []struct {
		name string
		in   RenovationInput
		want error
	}{
		{"bad start", renInput(ref.ID, "01-06-2026", "2026-06-10"), ErrInvalidDates},
		{"end before start", renInput(ref.ID, "2026-06-10", "2026-06-01"), ErrInvalidDates},
		{"missing refuge", renInput("missing", "2026-06-01", "2026-06-10"), ErrRefugeNotFound},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, "u1", tc.in); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v; want %v", tc.name, err, tc.want)
		}
	}

	in := renInput(ref.ID, "2026-06-01", "2026-06-10")
	in.Description = "  "
	if _, err := svc.Create(ctx, "u1", in); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank description: %v", err)
	}
	in = renInput(ref.ID, "2026-06-01", "2026-06-10")
	in.GroupChatLink = "https://example.com/group"
	if _, err := svc.Create(ctx, "u1", in); !errors.Is(err, ErrInvalidGroupChatLink) {
		t.Errorf("bad link: %v", err)
	}
	in.GroupChatLink = "https://t.me/refugi_amitges"
	if _, err := svc.Create(ctx, "u1", in); err != nil {
		t.Errorf("telegram link rejected: %v", err)
	}
}

func TestRenovationService_OverlapConflict(t *testing.T) {
	db := newServiceDB(t)
	svc := NewRenovationService(db)
	ctx := context.Background()
	ref := seedRefuge(t, db, "Amitges", "Pallars", "")
	other := seedRefuge(t, db, "Colomèrs", "Aran", "")

	first, err := svc.Create(ctx, "u1", renInput(ref.ID, "2026-06-01", "2026-06-10"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Create(ctx, "u2", renInput(ref.ID, "2026-06-10", "2026-06-15"))
	if !errors.Is(err, ErrOverlappingRenovation) {
		t.Fatalf("overlapping create = %v", err)
	}
	var oe *OverlapError
	if !errors.As(err, &oe) || oe.Overlapping.ID != first.ID {
		t.Fatalf("conflict does not carry the existing renovation: %v", err)
	}

	// Same dates on another refuge are fine.
	if _, err := svc.Create(ctx, "u2", renInput(other.ID, "2026-06-10", "2026-06-15")); err != nil {
		t.Fatalf("other refuge: %v", err)
	}
	// Disjoint range on the same refuge is fine.
	if _, err := svc.Create(ctx, "u2", renInput(ref.ID, "2026-06-11", "2026-06-15")); err != nil {
		t.Fatalf("disjoint range: %v", err)
	}
}

func TestRenovationService_UpdateExcludesSelf(t *testing.T) {
	db := newServiceDB(t)
	svc := NewRenovationService(db)
	ctx := context.Background()
	ref := seedRefuge(t, db, "Amitges", "Pallars", "")

	ren, err := svc.Create(ctx, "u1", renInput(ref.ID, "2026-06-01", "2026-06-10"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Narrowing the range overlaps only itself; must be allowed.
	upd, err := svc.Update(ctx, "u1", ren.ID, renInput(ref.ID, "2026-06-02", "2026-06-08"))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if upd.StartDate != "2026-06-02" || upd.EndDate != "2026-06-08" {
		t.Fatalf("updated range = %s..%s", upd.StartDate, upd.EndDate)
	}

	if _, err := svc.Update(ctx, "u2", ren.ID, renInput(ref.ID, "2026-06-02", "2026-06-08")); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("update by non-creator = %v", err)
	}
	if _, err := svc.Update(ctx, "u1", "missing", renInput(ref.ID, "2026-06-02", "2026-06-08")); !errors.Is(err, ErrRenovationNotFound) {
		t.Fatalf("update missing = %v", err)
	}
}

func TestRenovationService_Participation(t *testing.T) {
	db := newServiceDB(t)
	svc := NewRenovationService(db)
	ctx := context.Background()
	ref := seedRefuge(t, db, "Amitges", "Pallars", "")
	ren, err := svc.Create(ctx, "u1", renInput(ref.ID, "2026-06-01", "2026-06-10"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Join(ctx, ren.ID, "u2")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !got.HasParticipant("u2") {
		t.Fatalf("u2 not in %+v", got.ParticipantsUIDs)
	}

	// Joining twice and the creator joining are both no-ops.
	got, err = svc.Join(ctx, ren.ID, "u2")
	if err != nil || len(got.ParticipantsUIDs) != 1 {
		t.Fatalf("double join: %v %+v", err, got.ParticipantsUIDs)
	}
	got, err = svc.Join(ctx, ren.ID, "u1")
	if err != nil || got.HasParticipant("u1") {
		t.Fatalf("creator join: %v %+v", err, got.ParticipantsUIDs)
	}

	got, err = svc.Leave(ctx, ren.ID, "u2")
	if err != nil || got.HasParticipant("u2") {
		t.Fatalf("Leave: %v %+v", err, got.ParticipantsUIDs)
	}
	// Leaving when not a participant is a no-op too.
	if _, err := svc.Leave(ctx, ren.ID, "u3"); err != nil {
		t.Fatalf("leave by outsider: %v", err)
	}

	if _, err := svc.Join(ctx, "missing", "u2"); !errors.Is(err, ErrRenovationNotFound) {
		t.Fatalf("join missing = %v", err)
	}
}

func TestRenovationService_DeleteCreatorOnly(t *testing.T) {
	db := newServiceDB(t)
	svc := NewRenovationService(db)
	ctx := context.Background()
	ref := seedRefuge(t, db, "Amitges", "Pallars", "")
	ren, err := svc.Create(ctx, "u1", renInput(ref.ID, "2026-06-01", "2026-06-10"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Join(ctx, ren.ID, "u2"); err != nil {
		t.Fatalf("Join: %v", err)
	}

	if err := svc.Delete(ctx, "u2", ren.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("delete by participant = %v", err)
	}
	if err := svc.Delete(ctx, "u1", ren.ID); err != nil {
		t.Fatalf("delete by creator: %v", err)
	}
	if _, err := svc.Get(ctx, ren.ID); !errors.Is(err, ErrRenovationNotFound) {
		t.Fatalf("get after delete = %v", err)
	}

	list, err := svc.List(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("List after delete: %v %+v", err, list)
	}
}
