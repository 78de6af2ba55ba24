package mapper

import (
	"testing"

	"github.com/mterrades/go-refuge-sync/internal/remote"
)

func TestDoubt_RestoresChronologicalOrderAndCount(t *testing.T) {
	rec := remote.DoubtRecord{
		ID:           "d1",
		RefugeID:     "r1",
		CreatorUID:   "u1",
		Message:      "is the spring still running?",
		AnswersCount: 7, // wire counter drifted; the collection wins
		CreatedAt:    "2026-01-10T09:00:00Z",
		Answers: []remote.AnswerRecord{
			{ID: "a2", DoubtID: "d1", CreatedAt: "2026-01-12T10:00:00Z"},
			{ID: "a1", DoubtID: "d1", CreatedAt: "2026-01-11T10:00:00Z"},
			{ID: "a3", DoubtID: "d1", CreatedAt: "2026-01-13T10:00:00Z"},
		},
	}

	d := Doubt(rec)
	if d.AnswersCount != 3 || len(d.Answers) != 3 {
		t.Fatalf("counter not reconciled: count=%d answers=%d", d.AnswersCount, len(d.Answers))
	}
	if d.Answers[0].ID != "a1" || d.Answers[1].ID != "a2" || d.Answers[2].ID != "a3" {
		t.Fatalf("answers not chronological: %+v", d.Answers)
	}
	if d.CreatedAt.IsZero() {
		t.Fatalf("created_at not parsed")
	}
}

func TestAnswer_KeepsReplyParent(t *testing.T) {
	parent := "a1"
	a := Answer(remote.AnswerRecord{ID: "a2", ParentAnswerID: &parent})
	if a.ParentAnswerID == nil || *a.ParentAnswerID != "a1" {
		t.Fatalf("parent lost: %+v", a)
	}
	top := Answer(remote.AnswerRecord{ID: "a3"})
	if top.ParentAnswerID != nil {
		t.Fatalf("top-level answer must have nil parent")
	}
}

func TestVisit_InvariantDerivedFromOwnCount(t *testing.T) {
	// Wire flag contradicts the count; the count wins.
	v := Visit(remote.VisitAggregateRecord{Date: "2026-02-01", NumVisitors: 2, IsVisitor: false, TotalVisitors: 5})
	if !v.IsVisitor {
		t.Fatalf("num_visitors > 0 must imply is_visitor")
	}
	empty := Visit(remote.VisitAggregateRecord{Date: "2026-02-02", NumVisitors: 0, IsVisitor: true, TotalVisitors: 0})
	if empty.IsVisitor {
		t.Fatalf("num_visitors == 0 must imply !is_visitor")
	}
	// total_visitors == 0 is "no visits", not an error.
	if empty.TotalVisitors != 0 || empty.Date != "2026-02-02" {
		t.Fatalf("zero aggregate mangled: %+v", empty)
	}
}

func TestRenovation_ParticipantsDedupedAndCreatorStripped(t *testing.T) {
	rec := remote.RenovationRecord{
		ID:               "ren1",
		CreatorUID:       "creator",
		ParticipantsUIDs: []string{"u1", "creator", "u2", "u1", ""},
	}
	r := Renovation(rec)
	if len(r.ParticipantsUIDs) != 2 || r.ParticipantsUIDs[0] != "u1" || r.ParticipantsUIDs[1] != "u2" {
		t.Fatalf("participants = %+v; want [u1 u2]", r.ParticipantsUIDs)
	}
}

func TestParseTime_ToleratesGarbage(t *testing.T) {
	r := Refuge(remote.RefugeRecord{ID: "r1", CreatedAt: "not-a-date"})
	if !r.CreatedAt.IsZero() {
		t.Fatalf("garbage timestamp should map to zero time")
	}
}

func TestSliceMappers_PreserveOrderAndLength(t *testing.T) {
	ds := Doubts([]remote.DoubtRecord{{ID: "d2"}, {ID: "d1"}})
	if len(ds) != 2 || ds[0].ID != "d2" {
		t.Fatalf("doubt list order changed: %+v", ds)
	}
	vs := Visits(nil)
	if len(vs) != 0 {
		t.Fatalf("nil in, empty out")
	}
}
