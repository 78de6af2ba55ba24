// Package services – RenovationService
//
// This file implements RenovationService, the business logic for volunteer
// renovations: create/update with date-range and overlap validation,
// creator-only edit and delete, and participant join/leave. A date overlap is
// reported as *OverlapError so the handler can embed the conflicting
// renovation in the 409 body.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/repo"
)

// RenovationInput carries the caller-editable fields of a renovation.
type RenovationInput struct {
	RefugeID      string
	StartDate     string
	EndDate       string
	Description   string
	Materials     *string
	GroupChatLink string
}

// RenovationService provides operations on renovations and participation.
type RenovationService struct {
	DB *gorm.DB
}

// NewRenovationService constructs a RenovationService.
func NewRenovationService(db *gorm.DB) *RenovationService {
	return &RenovationService{DB: db}
}

// List returns all renovations newest first, participant sets loaded.
func (s *RenovationService) List(ctx context.Context) ([]domain.Renovation, error) {
	out, err := repo.ListRenovations(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Renovation{}
	}
	return out, nil
}

// Get fetches one renovation with its participants.
func (s *RenovationService) Get(ctx context.Context, id string) (*domain.Renovation, error) {
	r, err := repo.GetRenovation(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRenovationNotFound
	}
	return r, err
}

// Create validates the input, rejects date overlaps on the same refuge, and
// inserts the renovation with the caller as creator.
func (s *RenovationService) Create(ctx context.Context, callerUID string, in RenovationInput) (*domain.Renovation, error) {
	if err := s.validate(ctx, in, ""); err != nil {
		return nil, err
	}
	r := &domain.Renovation{
		RefugeID:         in.RefugeID,
		StartDate:        in.StartDate,
		EndDate:          in.EndDate,
		Description:      strings.TrimSpace(in.Description),
		Materials:        in.Materials,
		GroupChatLink:    in.GroupChatLink,
		CreatorUID:       callerUID,
		ParticipantsUIDs: []string{},
	}
	if err := repo.CreateRenovation(ctx, s.DB, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update rewrites the editable fields of a renovation. Only the creator may
// update; the renovation itself is excluded from the overlap check so the
// dates can be narrowed in place.
func (s *RenovationService) Update(ctx context.Context, callerUID, id string, in RenovationInput) (*domain.Renovation, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.CreatorUID != callerUID {
		return nil, ErrNotOwner
	}
	if err := s.validate(ctx, in, id); err != nil {
		return nil, err
	}
	cur.RefugeID = in.RefugeID
	cur.StartDate = in.StartDate
	cur.EndDate = in.EndDate
	cur.Description = strings.TrimSpace(in.Description)
	cur.Materials = in.Materials
	cur.GroupChatLink = in.GroupChatLink
	if err := repo.UpdateRenovation(ctx, s.DB, cur); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRenovationNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a renovation and its participants. Creator only.
func (s *RenovationService) Delete(ctx context.Context, callerUID, id string) error {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if cur.CreatorUID != callerUID {
		return ErrNotOwner
	}
	if err := repo.DeleteRenovation(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRenovationNotFound
		}
		return err
	}
	return nil
}

// Join adds uid to the participant set and returns the updated renovation.
// Joining twice is a no-op; the creator is never added as a participant.
func (s *RenovationService) Join(ctx context.Context, id, uid string) (*domain.Renovation, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.CreatorUID != uid {
		if err := repo.AddParticipant(ctx, s.DB, id, uid); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Leave removes uid from the participant set. A uid not in the set leaves
// the renovation unchanged.
func (s *RenovationService) Leave(ctx context.Context, id, uid string) (*domain.Renovation, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	err := repo.RemoveParticipant(ctx, s.DB, id, uid)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.Get(ctx, id)
}

// validate checks the refuge, the date range, the group chat link, and the
// absence of an overlapping renovation on the same refuge.
func (s *RenovationService) validate(ctx context.Context, in RenovationInput, excludeID string) error {
	start, err := time.Parse(domain.DateLayout, in.StartDate)
	if err != nil {
		return ErrInvalidDates
	}
	end, err := time.Parse(domain.DateLayout, in.EndDate)
	if err != nil {
		return ErrInvalidDates
	}
	if end.Before(start) {
		return ErrInvalidDates
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyMessage
	}
	if !domain.ValidGroupChatLink(in.GroupChatLink) {
		return ErrInvalidGroupChatLink
	}
	if _, err := repo.GetRefuge(ctx, s.DB, in.RefugeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRefugeNotFound
		}
		return err
	}
	overlapping, ok, err := repo.FindOverlapping(ctx, s.DB, in.RefugeID, in.StartDate, in.EndDate, excludeID)
	if err != nil {
		return err
	}
	if ok {
		return &OverlapError{Overlapping: overlapping}
	}
	return nil
}
