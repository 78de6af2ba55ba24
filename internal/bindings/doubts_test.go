package bindings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mterrades/go-refuge-sync/internal/cache"
	"github.com/mterrades/go-refuge-sync/internal/remote"
)

// newTestBindings spins up a fake backend and returns a store plus a client
// pointed at it.
func newTestBindings(t *testing.T, handler http.Handler) (*cache.Store, *remote.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store := cache.New(cache.Options{Now: func() time.Time { return now }})
	client := remote.NewClient(srv.URL, "u1", time.Second)
	return store, client
}

func TestDoubts_CreateThenListShowsNewDoubtFirst(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /refuges/r1/doubts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"d1","refuge_id":"r1","creator_uid":"u2","message":"old","answers_count":0,"created_at":"2026-02-01T10:00:00Z","answers":[]}]`))
	})
	mux.HandleFunc("POST /refuges/r1/doubts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"d2","refuge_id":"r1","creator_uid":"u1","message":"new","answers_count":0,"created_at":"2026-03-01T08:00:00Z","answers":[]}`))
	})
	store, client := newTestBindings(t, mux)
	d := NewDoubts(store, client, zerolog.Nop())

	q := d.ListQuery(func() string { return "r1" })
	if err := q.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if _, err := d.CreateDoubt().Do(context.Background(), CreateDoubtInput{RefugeID: "r1", Message: "new"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	snap := q.Snapshot()
	if !snap.HasData || len(snap.Data) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Data[0].ID != "d2" || snap.Data[1].ID != "d1" {
		t.Fatalf("new doubt not first: %v %v", snap.Data[0].ID, snap.Data[1].ID)
	}
}

func TestDoubts_CreateBeforeFirstFetchDoesNotFabricateList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /refuges/r1/doubts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"d2","refuge_id":"r1","creator_uid":"u1","message":"new","answers":[]}`))
	})
	store, client := newTestBindings(t, mux)
	d := NewDoubts(store, client, zerolog.Nop())

	if _, err := d.CreateDoubt().Do(context.Background(), CreateDoubtInput{RefugeID: "r1", Message: "new"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := store.Get(DoubtsKey("r1")); ok {
		t.Fatalf("prepend fabricated a slot that was never fetched")
	}
}

func TestDoubts_AnswerLifecycleKeepsCounterConsistent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /doubts/d1/answers", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"a1","doubt_id":"d1","creator_uid":"u1","message":"try the north trail","created_at":"2026-03-01T08:00:00Z"}`))
	})
	mux.HandleFunc("DELETE /doubts/d1/answers/a1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	store, client := newTestBindings(t, mux)
	d := NewDoubts(store, client, zerolog.Nop())

	seedDoubts(store, "r1", "d1")

	if _, err := d.CreateAnswer().Do(context.Background(), CreateAnswerInput{RefugeID: "r1", DoubtID: "d1", Message: "try the north trail"}); err != nil {
		t.Fatalf("create answer: %v", err)
	}
	if got := doubtAt(t, store, "r1", 0); got.AnswersCount != 1 || len(got.Answers) != 1 {
		t.Fatalf("after create: count=%d answers=%d", got.AnswersCount, len(got.Answers))
	}

	if _, err := d.DeleteAnswer().Do(context.Background(), DeleteAnswerInput{RefugeID: "r1", DoubtID: "d1", AnswerID: "a1"}); err != nil {
		t.Fatalf("delete answer: %v", err)
	}
	if got := doubtAt(t, store, "r1", 0); got.AnswersCount != 0 || len(got.Answers) != 0 {
		t.Fatalf("after delete: count=%d answers=%d", got.AnswersCount, len(got.Answers))
	}
}

func TestDoubts_DeleteRemovesDoubtAndItsAnswers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /doubts/d1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	store, client := newTestBindings(t, mux)
	d := NewDoubts(store, client, zerolog.Nop())

	seedDoubts(store, "r1", "d1", "d2")

	if _, err := d.DeleteDoubt().Do(context.Background(), DeleteDoubtInput{RefugeID: "r1", DoubtID: "d1"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := doubtAt(t, store, "r1", 0); got.ID != "d2" {
		t.Fatalf("doubt not removed: %+v", got)
	}
}
