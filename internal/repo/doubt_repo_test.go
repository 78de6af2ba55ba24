package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/mterrades/go-refuge-sync/internal/domain"
)

func TestCreateDoubt_Error_NoTable(t *testing.T) {
	db := newRepoDB(t /* no migrations */)
	d, err := CreateDoubt(context.Background(), db, "r1", "u1", "m")
	if err == nil || d != nil {
		t.Fatalf("expected error creating without table, got doubt=%v err=%v", d, err)
	}
}

func TestCreateDoubt_Success_PersistsAndSetsFields(t *testing.T) {
	db := newRepoDB(t, &domain.Doubt{}, &domain.Answer{})

	start := time.Now().UTC().Add(-time.Minute)
	d, err := CreateDoubt(context.Background(), db, "r1", "u1", "is there water?")
	if err != nil {
		t.Fatalf("CreateDoubt: %v", err)
	}
	if d.ID == "" || d.RefugeID != "r1" || d.CreatorUID != "u1" || d.AnswersCount != 0 {
		t.Fatalf("unexpected Doubt fields: %+v", d)
	}
	if d.CreatedAt.Before(start) {
		t.Fatalf("CreatedAt seems unset/really old: %v", d.CreatedAt)
	}
}

func TestListDoubtsByRefuge_OrderAndPreload(t *testing.T) {
	db := newRepoDB(t, &domain.Doubt{}, &domain.Answer{})

	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	seed := []domain.Doubt{
		{ID: "d1", RefugeID: "r1", CreatorUID: "u1", Message: "old", CreatedAt: t1},
		{ID: "d2", RefugeID: "r1", CreatorUID: "u2", Message: "new", CreatedAt: t2},
		{ID: "dx", RefugeID: "r2", CreatorUID: "u1", Message: "other refuge", CreatedAt: t2},
	}
	for _, d := range seed {
		if err := db.Create(&d).Error; err != nil {
			t.Fatalf("seed %s: %v", d.ID, err)
		}
	}
	// Answers of d1 inserted out of order; the preload must sort them.
	answers := []domain.Answer{
		{ID: "a2", DoubtID: "d1", CreatorUID: "u2", Message: "later", CreatedAt: t2},
		{ID: "a1", DoubtID: "d1", CreatorUID: "u2", Message: "earlier", CreatedAt: t1},
	}
	for _, a := range answers {
		if err := db.Create(&a).Error; err != nil {
			t.Fatalf("seed %s: %v", a.ID, err)
		}
	}

	list, err := ListDoubtsByRefuge(context.Background(), db, "r1")
	if err != nil {
		t.Fatalf("ListDoubtsByRefuge: %v", err)
	}
	if len(list) != 2 || list[0].ID != "d2" || list[1].ID != "d1" {
		t.Fatalf("unexpected order: %#v", list)
	}
	got := list[1].Answers
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a2" {
		t.Fatalf("answers not chronological: %#v", got)
	}
}

func TestCreateAnswer_IncrementsCounterAtomically(t *testing.T) {
	db := newRepoDB(t, &domain.Doubt{}, &domain.Answer{})
	if err := db.Create(&domain.Doubt{ID: "d1", RefugeID: "r1", CreatorUID: "u1", Message: "m"}).Error; err != nil {
		t.Fatalf("seed doubt: %v", err)
	}

	a, err := CreateAnswer(context.Background(), db, "d1", "u2", "answer", nil)
	if err != nil {
		t.Fatalf("CreateAnswer: %v", err)
	}
	if a.ID == "" || a.DoubtID != "d1" || a.ParentAnswerID != nil {
		t.Fatalf("unexpected Answer fields: %+v", a)
	}

	parent := a.ID
	if _, err := CreateAnswer(context.Background(), db, "d1", "u3", "reply", &parent); err != nil {
		t.Fatalf("CreateAnswer reply: %v", err)
	}

	d, err := GetDoubt(context.Background(), db, "d1")
	if err != nil {
		t.Fatalf("GetDoubt: %v", err)
	}
	if d.AnswersCount != 2 || len(d.Answers) != 2 {
		t.Fatalf("counter drifted: count=%d answers=%d", d.AnswersCount, len(d.Answers))
	}
}

func TestCreateAnswer_MissingDoubtRollsBack(t *testing.T) {
	db := newRepoDB(t, &domain.Doubt{}, &domain.Answer{})

	if _, err := CreateAnswer(context.Background(), db, "missing", "u1", "m", nil); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	var n int64
	if err := db.Model(&domain.Answer{}).Count(&n).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if n != 0 {
		t.Fatalf("orphan answer row survived the rollback")
	}
}

func TestDeleteAnswer_DecrementsCounter(t *testing.T) {
	db := newRepoDB(t, &domain.Doubt{}, &domain.Answer{})
	if err := db.Create(&domain.Doubt{ID: "d1", RefugeID: "r1", CreatorUID: "u1", Message: "m"}).Error; err != nil {
		t.Fatalf("seed doubt: %v", err)
	}
	a1, err := CreateAnswer(context.Background(), db, "d1", "u2", "a1", nil)
	if err != nil {
		t.Fatalf("seed a1: %v", err)
	}
	if _, err := CreateAnswer(context.Background(), db, "d1", "u3", "a2", nil); err != nil {
		t.Fatalf("seed a2: %v", err)
	}

	if err := DeleteAnswer(context.Background(), db, "d1", a1.ID); err != nil {
		t.Fatalf("DeleteAnswer: %v", err)
	}
	d, _ := GetDoubt(context.Background(), db, "d1")
	if d.AnswersCount != 1 || len(d.Answers) != 1 {
		t.Fatalf("counter drifted after delete: count=%d answers=%d", d.AnswersCount, len(d.Answers))
	}

	if err := DeleteAnswer(context.Background(), db, "d1", "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestDeleteDoubt_CascadesAnswers(t *testing.T) {
	db := newRepoDB(t, &domain.Doubt{}, &domain.Answer{})
	if err := db.Create(&domain.Doubt{ID: "d1", RefugeID: "r1", CreatorUID: "u1", Message: "m"}).Error; err != nil {
		t.Fatalf("seed doubt: %v", err)
	}
	if _, err := CreateAnswer(context.Background(), db, "d1", "u2", "a", nil); err != nil {
		t.Fatalf("seed answer: %v", err)
	}

	if err := DeleteDoubt(context.Background(), db, "d1"); err != nil {
		t.Fatalf("DeleteDoubt: %v", err)
	}
	var n int64
	if err := db.Model(&domain.Answer{}).Where("doubt_id = ?", "d1").Count(&n).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if n != 0 {
		t.Fatalf("answers survived the doubt delete")
	}
	if err := DeleteDoubt(context.Background(), db, "d1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}
