// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for visit
// registrations and their per-date aggregation.
//
// Storage is one row per (user, refuge, date); the client-facing aggregate
// (total across users plus the caller's own count) is computed with a SUM
// query, never denormalized.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mterrades/go-refuge-sync/internal/domain"
)

// ErrVisitExists indicates a create for a (user, refuge, date) that already
// has a row; callers should update instead.
var ErrVisitExists = errors.New("visit already registered")

// GetVisit fetches the caller's registration row, or ErrNotFound.
func GetVisit(ctx context.Context, db *gorm.DB, userID, refugeID, date string) (*domain.VisitRecord, error) {
	var v domain.VisitRecord
	err := db.WithContext(ctx).
		Where("user_id = ? AND refuge_id = ? AND date = ?", userID, refugeID, date).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVisit inserts the caller's registration. A row already present for
// the tuple returns ErrVisitExists.
func CreateVisit(ctx context.Context, db *gorm.DB, userID, refugeID, date string, numVisitors int) (*domain.VisitRecord, error) {
	v := &domain.VisitRecord{
		ID:          uuid.NewString(),
		RefugeID:    refugeID,
		UserID:      userID,
		Date:        date,
		NumVisitors: numVisitors,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrVisitExists
		}
		return nil, err
	}
	return v, nil
}

// UpdateVisit changes the caller's visitor count on an existing row, or
// ErrNotFound when there is nothing to update.
func UpdateVisit(ctx context.Context, db *gorm.DB, userID, refugeID, date string, numVisitors int) error {
	res := db.WithContext(ctx).
		Model(&domain.VisitRecord{}).
		Where("user_id = ? AND refuge_id = ? AND date = ?", userID, refugeID, date).
		Update("num_visitors", numVisitors)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteVisit removes the caller's registration row, or ErrNotFound.
func DeleteVisit(ctx context.Context, db *gorm.DB, userID, refugeID, date string) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND refuge_id = ? AND date = ?", userID, refugeID, date).
		Delete(&domain.VisitRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// visitAggRow is the scan target for the aggregation queries.
type visitAggRow struct {
	RefugeID      string
	Date          string
	TotalVisitors int
	NumVisitors   int
}

// AggregateRefugeVisits returns one aggregate per date with at least one
// registration on refugeID, ordered by date ascending. NumVisitors and
// IsVisitor reflect userID's own row on that date.
func AggregateRefugeVisits(ctx context.Context, db *gorm.DB, refugeID, userID string) ([]domain.RefugeVisit, error) {
	var rows []visitAggRow
	err := db.WithContext(ctx).Raw(`
		SELECT refuge_id,
		       date,
		       SUM(num_visitors) AS total_visitors,
		       COALESCE(SUM(CASE WHEN user_id = ? THEN num_visitors END), 0) AS num_visitors
		FROM visit_records
		WHERE refuge_id = ?
		GROUP BY refuge_id, date
		ORDER BY date ASC`, userID, refugeID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return aggToVisits(rows), nil
}

// AggregateUserVisits returns the aggregate for every (refuge, date) the
// user is registered on, across refuges, ordered by date then refuge.
func AggregateUserVisits(ctx context.Context, db *gorm.DB, userID string) ([]domain.RefugeVisit, error) {
	var rows []visitAggRow
	err := db.WithContext(ctx).Raw(`
		SELECT v.refuge_id,
		       v.date,
		       SUM(v.num_visitors) AS total_visitors,
		       COALESCE(SUM(CASE WHEN v.user_id = ? THEN v.num_visitors END), 0) AS num_visitors
		FROM visit_records v
		WHERE EXISTS (
		    SELECT 1 FROM visit_records own
		    WHERE own.user_id = ? AND own.refuge_id = v.refuge_id AND own.date = v.date
		)
		GROUP BY v.refuge_id, v.date
		ORDER BY v.date ASC, v.refuge_id ASC`, userID, userID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return aggToVisits(rows), nil
}

func aggToVisits(rows []visitAggRow) []domain.RefugeVisit {
	out := make([]domain.RefugeVisit, len(rows))
	for i, r := range rows {
		out[i] = domain.RefugeVisit{
			RefugeID:      r.RefugeID,
			Date:          r.Date,
			TotalVisitors: r.TotalVisitors,
			IsVisitor:     r.NumVisitors > 0,
			NumVisitors:   r.NumVisitors,
		}
	}
	return out
}
