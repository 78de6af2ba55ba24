// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Renovation
// model and its participant join table.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mterrades/go-refuge-sync/internal/domain"
)

// CreateRenovation inserts a renovation row. Participants start empty.
func CreateRenovation(ctx context.Context, db *gorm.DB, r *domain.Renovation) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(r).Error
}

// ListRenovations returns all renovations newest first, participant sets
// loaded.
func ListRenovations(ctx context.Context, db *gorm.DB) ([]domain.Renovation, error) {
	var out []domain.Renovation
	if err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	for i := range out {
		uids, err := ListParticipants(ctx, db, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].ParticipantsUIDs = uids
	}
	return out, nil
}

// GetRenovation fetches one renovation with its participant set, or
// ErrNotFound.
func GetRenovation(ctx context.Context, db *gorm.DB, id string) (*domain.Renovation, error) {
	var r domain.Renovation
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	uids, err := ListParticipants(ctx, db, id)
	if err != nil {
		return nil, err
	}
	r.ParticipantsUIDs = uids
	return &r, nil
}

// UpdateRenovation rewrites the editable columns of a renovation.
func UpdateRenovation(ctx context.Context, db *gorm.DB, r *domain.Renovation) error {
	res := db.WithContext(ctx).
		Model(&domain.Renovation{}).
		Where("id = ?", r.ID).
		Updates(map[string]any{
			"refuge_id":       r.RefugeID,
			"start_date":      r.StartDate,
			"end_date":        r.EndDate,
			"description":     r.Description,
			"materials":       r.Materials,
			"group_chat_link": r.GroupChatLink,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRenovation removes a renovation and its participant rows.
func DeleteRenovation(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("renovation_id = ?", id).Delete(&domain.RenovationParticipant{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Renovation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// FindOverlapping returns the first renovation on refugeID whose inclusive
// date range intersects [start, end], excluding excludeID (the renovation
// being edited). ok=false when there is no overlap.
func FindOverlapping(ctx context.Context, db *gorm.DB, refugeID, start, end, excludeID string) (*domain.Renovation, bool, error) {
	var r domain.Renovation
	q := db.WithContext(ctx).
		Where("refuge_id = ? AND start_date <= ? AND end_date >= ?", refugeID, end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Order("start_date asc").First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	uids, err := ListParticipants(ctx, db, r.ID)
	if err != nil {
		return nil, false, err
	}
	r.ParticipantsUIDs = uids
	return &r, true, nil
}

// ListParticipants returns the participant uids of a renovation in join
// order.
func ListParticipants(ctx context.Context, db *gorm.DB, renovationID string) ([]string, error) {
	var uids []string
	err := db.WithContext(ctx).
		Model(&domain.RenovationParticipant{}).
		Where("renovation_id = ?", renovationID).
		Order("created_at asc").
		Pluck("uid", &uids).Error
	return uids, err
}

// AddParticipant inserts a participant row. A uid already present is a
// no-op, which makes join idempotent at the storage level.
func AddParticipant(ctx context.Context, db *gorm.DB, renovationID, uid string) error {
	err := db.WithContext(ctx).Create(&domain.RenovationParticipant{
		RenovationID: renovationID,
		UID:          uid,
	}).Error
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

// RemoveParticipant deletes a participant row, or ErrNotFound when the uid
// was not in the set.
func RemoveParticipant(ctx context.Context, db *gorm.DB, renovationID, uid string) error {
	res := db.WithContext(ctx).
		Where("renovation_id = ? AND uid = ?", renovationID, uid).
		Delete(&domain.RenovationParticipant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
