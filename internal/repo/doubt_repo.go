// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Doubt and
// Answer models.
//
// The denormalized answers_count column is maintained here, in the same
// transaction as the answer row, so readers never observe a torn state
// between the counter and the collection.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mterrades/go-refuge-sync/internal/domain"
)

// CreateDoubt inserts a new doubt on a refuge with a zero answer count.
func CreateDoubt(ctx context.Context, db *gorm.DB, refugeID, creatorUID, message string) (*domain.Doubt, error) {
	d := &domain.Doubt{
		ID:         uuid.NewString(),
		RefugeID:   refugeID,
		CreatorUID: creatorUID,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
		Answers:    []domain.Answer{},
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// ListDoubtsByRefuge returns the doubts of a refuge newest first, each with
// its full answer collection in chronological order.
func ListDoubtsByRefuge(ctx context.Context, db *gorm.DB, refugeID string) ([]domain.Doubt, error) {
	var out []domain.Doubt
	err := db.WithContext(ctx).
		Where("refuge_id = ?", refugeID).
		Order("created_at desc").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Find(&out).Error
	return out, err
}

// GetDoubt fetches a doubt by ID with its answers, or ErrNotFound.
func GetDoubt(ctx context.Context, db *gorm.DB, id string) (*domain.Doubt, error) {
	var d domain.Doubt
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDoubt removes a doubt and its answers. Ownership is enforced by the
// service layer; here a missing row is ErrNotFound.
func DeleteDoubt(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doubt_id = ?", id).Delete(&domain.Answer{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Doubt{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CreateAnswer inserts an answer row and increments the parent doubt's
// answers_count in the same transaction.
func CreateAnswer(ctx context.Context, db *gorm.DB, doubtID, creatorUID, message string, parentAnswerID *string) (*domain.Answer, error) {
	a := &domain.Answer{
		ID:             uuid.NewString(),
		DoubtID:        doubtID,
		CreatorUID:     creatorUID,
		Message:        message,
		ParentAnswerID: parentAnswerID,
		CreatedAt:      time.Now().UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.Doubt{}).
			Where("id = ?", doubtID).
			UpdateColumn("answers_count", gorm.Expr("answers_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAnswer fetches an answer by ID, or ErrNotFound.
func GetAnswer(ctx context.Context, db *gorm.DB, id string) (*domain.Answer, error) {
	var a domain.Answer
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAnswer removes an answer row and decrements the parent doubt's
// answers_count in the same transaction.
func DeleteAnswer(ctx context.Context, db *gorm.DB, doubtID, answerID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND doubt_id = ?", answerID, doubtID).Delete(&domain.Answer{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&domain.Doubt{}).
			Where("id = ? AND answers_count > 0", doubtID).
			UpdateColumn("answers_count", gorm.Expr("answers_count - 1")).Error
	})
}
