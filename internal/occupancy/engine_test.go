package occupancy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mterrades/go-refuge-sync/internal/bindings"
	"github.com/mterrades/go-refuge-sync/internal/cache"
	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/remote"
)

func fixedToday() Date { return Date{Year: 2026, Month: time.January, Day: 15} }

// newTestEngine builds an engine against a fake backend, with the refuge
// visits slot pre-seeded.
func newTestEngine(t *testing.T, handler http.Handler, capacity *int, seed []domain.RefugeVisit) (*Engine, *cache.Store) {
	t.Helper()
	if handler == nil {
		handler = http.NewServeMux()
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	now := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	store := cache.New(cache.Options{Now: func() time.Time { return now }})
	client := remote.NewClient(srv.URL, "u1", time.Second)
	visits := bindings.NewVisits(store, client, zerolog.Nop())
	if seed != nil {
		store.Set(bindings.RefugeVisitsKey("r1"), seed)
	}
	return NewEngine(visits, "r1", "u1", capacity, fixedToday, zerolog.Nop()), store
}

func TestEngine_PastDateNeverReachesAddOrEdit(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil, []domain.RefugeVisit{})

	day := Date{Year: 2026, Month: time.January, Day: 14}
	if err := e.Select(day); !errors.Is(err, ErrPastDate) {
		t.Fatalf("select past day: %v", err)
	}
	if err := e.OpenAdd(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("openAdd after rejected select: %v", err)
	}
	if err := e.OpenEdit(); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("openEdit after rejected select: %v", err)
	}
	if e.Mode() != ModeNone {
		t.Fatalf("mode = %v; want none", e.Mode())
	}
}

func TestEngine_TodayIsSelectable(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil, []domain.RefugeVisit{})
	if err := e.Select(fixedToday()); err != nil {
		t.Fatalf("today must be selectable: %v", err)
	}
}

func TestEngine_DisclaimerGatesAddOncePerSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /refuges/r1/visits/2026-01-20", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"refuge_id":"r1","date":"2026-01-20","total_visitors":2,"is_visitor":true,"num_visitors":2}`))
	})
	mux.HandleFunc("POST /refuges/r1/visits/2026-01-21", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"refuge_id":"r1","date":"2026-01-21","total_visitors":1,"is_visitor":true,"num_visitors":1}`))
	})
	e, _ := newTestEngine(t, mux, nil, []domain.RefugeVisit{})

	if err := e.Select(Date{2026, time.January, 20}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := e.OpenAdd(); !errors.Is(err, ErrDisclaimerRequired) {
		t.Fatalf("add without disclaimer: %v", err)
	}
	e.ConfirmDisclaimer()
	if err := e.OpenAdd(); err != nil {
		t.Fatalf("add after disclaimer: %v", err)
	}
	if _, err := e.Submit(context.Background(), 2); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The gate stays open for the rest of the session.
	if err := e.Select(Date{2026, time.January, 21}); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if err := e.OpenAdd(); err != nil {
		t.Fatalf("second add must not re-prompt: %v", err)
	}
}

func TestEngine_SubmitRejectsNonPositiveCountAndStaysInForm(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil, []domain.RefugeVisit{})

	if err := e.Select(Date{2026, time.January, 20}); err != nil {
		t.Fatalf("select: %v", err)
	}
	e.ConfirmDisclaimer()
	if err := e.OpenAdd(); err != nil {
		t.Fatalf("openAdd: %v", err)
	}

	for _, count := range []int{0, -3} {
		if _, err := e.Submit(context.Background(), count); !errors.Is(err, ErrInvalidCount) {
			t.Fatalf("submit(%d): %v", count, err)
		}
		if e.Mode() != ModeAdd {
			t.Fatalf("validation failure must keep the form open")
		}
		if e.ValidationErr() == nil {
			t.Fatalf("validation error not recorded")
		}
	}
}

func TestEngine_CapacityWarningIsNonBlocking(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /refuges/r1/visits/2026-01-20", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"refuge_id":"r1","date":"2026-01-20","total_visitors":6,"is_visitor":true,"num_visitors":3}`))
	})
	capacity := 4
	e, store := newTestEngine(t, mux, &capacity, []domain.RefugeVisit{})

	if err := e.Select(Date{2026, time.January, 20}); err != nil {
		t.Fatalf("select: %v", err)
	}
	e.ConfirmDisclaimer()
	if err := e.OpenAdd(); err != nil {
		t.Fatalf("openAdd: %v", err)
	}

	warn, err := e.Submit(context.Background(), 3)
	if err != nil {
		t.Fatalf("over-capacity write must still succeed: %v", err)
	}
	if warn == nil || warn.TotalVisitors != 6 || warn.Capacity != 4 {
		t.Fatalf("warning = %+v", warn)
	}

	// The cache patch happened normally: the record is not rejected.
	snap, _ := store.Get(bindings.RefugeVisitsKey("r1"))
	list := snap.Data.([]domain.RefugeVisit)
	if len(list) != 1 || list[0].TotalVisitors != 6 {
		t.Fatalf("slot after over-capacity write = %+v", list)
	}
	if e.Mode() != ModeNone {
		t.Fatalf("mode = %v; want none after submit", e.Mode())
	}
}

func TestEngine_EditRequiresRegistrationAndSkipsDisclaimer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /refuges/r1/visits/2026-01-20", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"refuge_id":"r1","date":"2026-01-20","total_visitors":3,"is_visitor":true,"num_visitors":1}`))
	})
	seed := []domain.RefugeVisit{
		{RefugeID: "r1", Date: "2026-01-20", TotalVisitors: 4, IsVisitor: true, NumVisitors: 2},
	}
	e, _ := newTestEngine(t, mux, nil, seed)

	if err := e.Select(Date{2026, time.January, 20}); err != nil {
		t.Fatalf("select: %v", err)
	}
	// Registered day: add is the wrong door, edit is open without disclaimer.
	if err := e.OpenAdd(); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("openAdd on registered day: %v", err)
	}
	if err := e.OpenEdit(); err != nil {
		t.Fatalf("openEdit: %v", err)
	}
	if _, err := e.Submit(context.Background(), 1); err != nil {
		t.Fatalf("submit edit: %v", err)
	}

	// Unregistered day: edit is closed.
	if err := e.Select(Date{2026, time.January, 21}); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if err := e.OpenEdit(); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("openEdit without registration: %v", err)
	}
}

func TestEngine_DeleteIsGatedAndClearsSelection(t *testing.T) {
	deleted := false
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /refuges/r1/visits/2026-01-20", func(w http.ResponseWriter, r *http.Request) {
		deleted = true
		w.Write([]byte(`{"message":"visit removed"}`))
	})
	seed := []domain.RefugeVisit{
		{RefugeID: "r1", Date: "2026-01-20", TotalVisitors: 4, IsVisitor: true, NumVisitors: 2},
	}
	e, _ := newTestEngine(t, mux, nil, seed)

	if err := e.Select(Date{2026, time.January, 20}); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := e.ConfirmDelete(context.Background()); !errors.Is(err, ErrNoPendingDelete) {
		t.Fatalf("confirm without request: %v", err)
	}
	if err := e.RequestDelete(); err != nil {
		t.Fatalf("requestDelete: %v", err)
	}
	if deleted {
		t.Fatalf("mutation ran before confirmation")
	}

	// Cancel disarms; the row survives.
	e.Cancel()
	if err := e.ConfirmDelete(context.Background()); !errors.Is(err, ErrNoPendingDelete) {
		t.Fatalf("confirm after cancel: %v", err)
	}

	if err := e.RequestDelete(); err != nil {
		t.Fatalf("re-arm: %v", err)
	}
	if err := e.ConfirmDelete(context.Background()); err != nil {
		t.Fatalf("confirmDelete: %v", err)
	}
	if !deleted {
		t.Fatalf("mutation did not run")
	}
	if _, ok := e.Selected(); ok {
		t.Fatalf("selection must be cleared after delete")
	}
}

func TestEngine_ReselectionClearsFormAndError(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil, []domain.RefugeVisit{})

	if err := e.Select(Date{2026, time.January, 20}); err != nil {
		t.Fatalf("select: %v", err)
	}
	e.ConfirmDisclaimer()
	if err := e.OpenAdd(); err != nil {
		t.Fatalf("openAdd: %v", err)
	}
	if _, err := e.Submit(context.Background(), 0); !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("submit: %v", err)
	}

	if err := e.Select(Date{2026, time.January, 22}); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if e.Mode() != ModeNone || e.ValidationErr() != nil {
		t.Fatalf("reselection must clear form and error: mode=%v err=%v", e.Mode(), e.ValidationErr())
	}
}

func TestEngine_DayOccupancyReadsSlot(t *testing.T) {
	seed := []domain.RefugeVisit{
		{RefugeID: "r1", Date: "2026-01-20", TotalVisitors: 4, IsVisitor: true, NumVisitors: 2},
	}
	e, _ := newTestEngine(t, nil, nil, seed)

	agg, ok := e.DayOccupancy(Date{2026, time.January, 20})
	if !ok || agg.TotalVisitors != 4 || !agg.IsVisitor {
		t.Fatalf("aggregate = %+v ok=%v", agg, ok)
	}
	if _, ok := e.DayOccupancy(Date{2026, time.January, 21}); ok {
		t.Fatalf("day without visits must report ok=false")
	}
}

func TestDate_ParseCompareRender(t *testing.T) {
	d, err := ParseDate("2026-01-15")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d != fixedToday() {
		t.Fatalf("parsed = %+v", d)
	}
	if d.String() != "2026-01-15" {
		t.Fatalf("rendered = %q", d.String())
	}
	if !(Date{2025, time.December, 31}).Before(d) {
		t.Fatalf("year comparison wrong")
	}
	if !(Date{2026, time.January, 14}).Before(d) || d.Before(d) {
		t.Fatalf("day comparison wrong")
	}
	if _, err := ParseDate("15/01/2026"); err == nil {
		t.Fatalf("bad layout accepted")
	}
}
