// Package services – VisitService
//
// This file implements VisitService, the business logic for visit
// registrations. A registration is one row per (user, refuge, date); what
// callers read back is always the per-date aggregate for that refuge, so the
// client can patch its occupancy views from a single write response.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/repo"
)

// VisitService provides operations on visit registrations.
type VisitService struct {
	DB *gorm.DB
}

// NewVisitService constructs a VisitService.
func NewVisitService(db *gorm.DB) *VisitService {
	return &VisitService{DB: db}
}

// ListByRefuge returns one aggregate per date with registrations on the
// refuge, ordered by date. A refuge with no visits yields an empty slice.
func (s *VisitService) ListByRefuge(ctx context.Context, refugeID, callerUID string) ([]domain.RefugeVisit, error) {
	if _, err := repo.GetRefuge(ctx, s.DB, refugeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefugeNotFound
		}
		return nil, err
	}
	out, err := repo.AggregateRefugeVisits(ctx, s.DB, refugeID, callerUID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.RefugeVisit{}
	}
	return out, nil
}

// ListByUser returns the aggregate for every (refuge, date) the user is
// registered on, across refuges.
func (s *VisitService) ListByUser(ctx context.Context, userUID string) ([]domain.RefugeVisit, error) {
	out, err := repo.AggregateUserVisits(ctx, s.DB, userUID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.RefugeVisit{}
	}
	return out, nil
}

// Create registers the caller on (refuge, date) and returns the updated
// aggregate for that date. A second create on the same tuple is
// ErrVisitExists.
func (s *VisitService) Create(ctx context.Context, callerUID, refugeID, date string, numVisitors int) (*domain.RefugeVisit, error) {
	if err := s.validate(ctx, refugeID, date, numVisitors); err != nil {
		return nil, err
	}
	if _, err := repo.CreateVisit(ctx, s.DB, callerUID, refugeID, date, numVisitors); err != nil {
		if errors.Is(err, repo.ErrVisitExists) {
			return nil, ErrVisitExists
		}
		return nil, err
	}
	return s.aggregate(ctx, callerUID, refugeID, date)
}

// Update changes the caller's visitor count on an existing registration and
// returns the updated aggregate.
func (s *VisitService) Update(ctx context.Context, callerUID, refugeID, date string, numVisitors int) (*domain.RefugeVisit, error) {
	if err := s.validate(ctx, refugeID, date, numVisitors); err != nil {
		return nil, err
	}
	if err := repo.UpdateVisit(ctx, s.DB, callerUID, refugeID, date, numVisitors); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitNotFound
		}
		return nil, err
	}
	return s.aggregate(ctx, callerUID, refugeID, date)
}

// Delete removes the caller's registration on (refuge, date).
func (s *VisitService) Delete(ctx context.Context, callerUID, refugeID, date string) error {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return ErrInvalidDates
	}
	if err := repo.DeleteVisit(ctx, s.DB, callerUID, refugeID, date); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVisitNotFound
		}
		return err
	}
	return nil
}

// validate checks the refuge exists, the date parses, and the count is
// positive. Past dates are not rejected here; the client gates those.
func (s *VisitService) validate(ctx context.Context, refugeID, date string, numVisitors int) error {
	if numVisitors < 1 {
		return ErrInvalidVisitors
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return ErrInvalidDates
	}
	if _, err := repo.GetRefuge(ctx, s.DB, refugeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRefugeNotFound
		}
		return err
	}
	return nil
}

// aggregate recomputes the caller-facing row for one date after a write.
func (s *VisitService) aggregate(ctx context.Context, callerUID, refugeID, date string) (*domain.RefugeVisit, error) {
	rows, err := repo.AggregateRefugeVisits(ctx, s.DB, refugeID, callerUID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Date == date {
			return &rows[i], nil
		}
	}
	// No row means the write raced a delete of every registration; report
	// an empty aggregate rather than an error.
	return &domain.RefugeVisit{RefugeID: refugeID, Date: date}, nil
}
