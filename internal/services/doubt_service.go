// Package services – DoubtService
//
// This file implements DoubtService, the business logic for the question
// board: posting and deleting doubts, answering (including replies), and
// deleting answers. Validation and ownership checks live here; the repo layer
// only persists.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/repo"
)

// DoubtService provides operations on doubts and answers.
type DoubtService struct {
	DB *gorm.DB
}

// NewDoubtService constructs a DoubtService.
func NewDoubtService(db *gorm.DB) *DoubtService {
	return &DoubtService{DB: db}
}

// List returns a refuge's doubts newest first, answers preloaded in
// chronological order. A refuge with no doubts yields an empty slice.
func (s *DoubtService) List(ctx context.Context, refugeID string) ([]domain.Doubt, error) {
	if _, err := repo.GetRefuge(ctx, s.DB, refugeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefugeNotFound
		}
		return nil, err
	}
	out, err := repo.ListDoubtsByRefuge(ctx, s.DB, refugeID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Doubt{}
	}
	return out, nil
}

// Create posts a doubt on a refuge. The message must be non-blank.
func (s *DoubtService) Create(ctx context.Context, refugeID, creatorUID, message string) (*domain.Doubt, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := repo.GetRefuge(ctx, s.DB, refugeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefugeNotFound
		}
		return nil, err
	}
	return repo.CreateDoubt(ctx, s.DB, refugeID, creatorUID, message)
}

// Delete removes a doubt and its answers. Only the creator may delete.
func (s *DoubtService) Delete(ctx context.Context, doubtID, callerUID string) error {
	d, err := repo.GetDoubt(ctx, s.DB, doubtID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrDoubtNotFound
	}
	if err != nil {
		return err
	}
	if d.CreatorUID != callerUID {
		return ErrNotOwner
	}
	if err := repo.DeleteDoubt(ctx, s.DB, doubtID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDoubtNotFound
		}
		return err
	}
	return nil
}

// CreateAnswer posts an answer on a doubt. parentAnswerID, when set, must
// reference an answer of the same doubt; reply depth is unlimited.
func (s *DoubtService) CreateAnswer(ctx context.Context, doubtID, creatorUID, message string, parentAnswerID *string) (*domain.Answer, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if parentAnswerID != nil {
		parent, err := repo.GetAnswer(ctx, s.DB, *parentAnswerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerNotFound
		}
		if err != nil {
			return nil, err
		}
		if parent.DoubtID != doubtID {
			return nil, ErrAnswerNotFound
		}
	}
	a, err := repo.CreateAnswer(ctx, s.DB, doubtID, creatorUID, message, parentAnswerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDoubtNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAnswer removes one answer. Only the answer's creator may delete;
// replies to the removed answer stay, their parent reference dangling.
func (s *DoubtService) DeleteAnswer(ctx context.Context, doubtID, answerID, callerUID string) error {
	a, err := repo.GetAnswer(ctx, s.DB, answerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAnswerNotFound
	}
	if err != nil {
		return err
	}
	if a.DoubtID != doubtID {
		return ErrAnswerNotFound
	}
	if a.CreatorUID != callerUID {
		return ErrNotOwner
	}
	if err := repo.DeleteAnswer(ctx, s.DB, doubtID, answerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnswerNotFound
		}
		return err
	}
	return nil
}
