package bindings

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mterrades/go-refuge-sync/internal/domain"
)

func TestVisits_CreateUpsertsRefugeSlotAndInvalidatesUserSlot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /refuges/r1/visits/2026-03-10", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"refuge_id":"r1","date":"2026-03-10","total_visitors":5,"is_visitor":true,"num_visitors":3}`))
	})
	store, client := newTestBindings(t, mux)
	v := NewVisits(store, client, zerolog.Nop())

	store.Set(RefugeVisitsKey("r1"), []domain.RefugeVisit{
		{RefugeID: "r1", Date: "2026-03-09", TotalVisitors: 2},
	})
	store.Set(UserVisitsKey("u1"), []domain.RefugeVisit{})

	out, err := v.Create().Do(context.Background(), VisitInput{RefugeID: "r1", Date: "2026-03-10", NumVisitors: 3, UserUID: "u1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !out.IsVisitor || out.NumVisitors != 3 {
		t.Fatalf("aggregate = %+v", out)
	}

	snap, _ := store.Get(RefugeVisitsKey("r1"))
	list := snap.Data.([]domain.RefugeVisit)
	if len(list) != 2 || list[0].Date != "2026-03-10" {
		t.Fatalf("refuge slot after upsert = %+v", list)
	}

	user, _ := store.Get(UserVisitsKey("u1"))
	if !user.Stale {
		t.Fatalf("user slot not invalidated")
	}
}

func TestVisits_UpdateReplacesExistingDateRow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /refuges/r1/visits/2026-03-10", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"refuge_id":"r1","date":"2026-03-10","total_visitors":4,"is_visitor":true,"num_visitors":2}`))
	})
	store, client := newTestBindings(t, mux)
	v := NewVisits(store, client, zerolog.Nop())

	store.Set(RefugeVisitsKey("r1"), []domain.RefugeVisit{
		{RefugeID: "r1", Date: "2026-03-10", TotalVisitors: 5, IsVisitor: true, NumVisitors: 3},
	})

	if _, err := v.Update().Do(context.Background(), VisitInput{RefugeID: "r1", Date: "2026-03-10", NumVisitors: 2, UserUID: "u1"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	snap, _ := store.Get(RefugeVisitsKey("r1"))
	list := snap.Data.([]domain.RefugeVisit)
	if len(list) != 1 || list[0].NumVisitors != 2 || list[0].TotalVisitors != 4 {
		t.Fatalf("refuge slot after update = %+v", list)
	}
}

func TestVisits_DeleteInvalidatesBothViews(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /refuges/r1/visits/2026-03-10", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"visit removed"}`))
	})
	store, client := newTestBindings(t, mux)
	v := NewVisits(store, client, zerolog.Nop())

	store.Set(RefugeVisitsKey("r1"), []domain.RefugeVisit{
		{RefugeID: "r1", Date: "2026-03-10", TotalVisitors: 5, IsVisitor: true, NumVisitors: 3},
	})
	store.Set(UserVisitsKey("u1"), []domain.RefugeVisit{
		{RefugeID: "r1", Date: "2026-03-10", TotalVisitors: 5, IsVisitor: true, NumVisitors: 3},
	})

	out, err := v.Delete().Do(context.Background(), DeleteVisitInput{RefugeID: "r1", Date: "2026-03-10", UserUID: "u1"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if out.Message == "" {
		t.Fatalf("message response empty")
	}

	refuge, _ := store.Get(RefugeVisitsKey("r1"))
	user, _ := store.Get(UserVisitsKey("u1"))
	if !refuge.Stale || !user.Stale {
		t.Fatalf("delete must invalidate both views: refuge=%v user=%v", refuge.Stale, user.Stale)
	}
	// Data keeps being served until the refetch lands.
	if refuge.Data == nil || user.Data == nil {
		t.Fatalf("invalidation dropped data")
	}
}
