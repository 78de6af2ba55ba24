package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/mterrades/go-refuge-sync/internal/domain"
)

func TestCreateRefuge_GeneratesIDAndTimestamps(t *testing.T) {
	db := newRepoDB(t, &domain.Refuge{})

	r := domain.Refuge{Name: "Refugi de Colomers", Region: "Val d'Aran"}
	if err := CreateRefuge(context.Background(), db, &r); err != nil {
		t.Fatalf("CreateRefuge: %v", err)
	}
	if r.ID == "" || r.CreatedAt.IsZero() {
		t.Fatalf("identity not filled in: %+v", r)
	}

	got, err := GetRefuge(context.Background(), db, r.ID)
	if err != nil {
		t.Fatalf("GetRefuge: %v", err)
	}
	if got.Name != "Refugi de Colomers" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestListRefuges_OrderedByName(t *testing.T) {
	db := newRepoDB(t, &domain.Refuge{})
	for _, name := range []string{"Ventosa", "Amitges", "Colomers"} {
		if err := CreateRefuge(context.Background(), db, &domain.Refuge{Name: name}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	list, err := ListRefuges(context.Background(), db)
	if err != nil {
		t.Fatalf("ListRefuges: %v", err)
	}
	if len(list) != 3 || list[0].Name != "Amitges" || list[2].Name != "Ventosa" {
		t.Fatalf("unexpected order: %+v", list)
	}
}

func TestGetRefuge_NotFound(t *testing.T) {
	db := newRepoDB(t, &domain.Refuge{})
	if _, err := GetRefuge(context.Background(), db, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestRefugesStats(t *testing.T) {
	db := newRepoDB(t, &domain.Refuge{})

	count, max, err := RefugesStats(context.Background(), db)
	if err != nil || count != 0 || max != nil {
		t.Fatalf("empty stats = (%d, %v, %v)", count, max, err)
	}

	if err := CreateRefuge(context.Background(), db, &domain.Refuge{Name: "Amitges"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	count, max, err = RefugesStats(context.Background(), db)
	if err != nil {
		t.Fatalf("RefugesStats: %v", err)
	}
	if count != 1 || max == nil {
		t.Fatalf("stats = (%d, %v)", count, max)
	}
}
