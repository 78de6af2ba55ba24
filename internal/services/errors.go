// Package services defines the business logic for refuges, doubts, visits,
// and renovations. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import (
	"errors"
	"fmt"

	"github.com/mterrades/go-refuge-sync/internal/domain"
)

var (
	// ErrRefugeNotFound indicates that the requested refuge does not exist.
	ErrRefugeNotFound = errors.New("refuge not found")

	// ErrDoubtNotFound indicates that the requested doubt does not exist.
	ErrDoubtNotFound = errors.New("doubt not found")

	// ErrAnswerNotFound indicates that the requested answer does not exist.
	ErrAnswerNotFound = errors.New("answer not found")

	// ErrVisitNotFound indicates the caller has no registration on the
	// requested (refuge, date).
	ErrVisitNotFound = errors.New("visit not found")

	// ErrVisitExists is returned when creating a registration for a
	// (refuge, date) the caller is already registered on.
	ErrVisitExists = errors.New("visit already registered for this date")

	// ErrRenovationNotFound indicates that the requested renovation does not
	// exist.
	ErrRenovationNotFound = errors.New("renovation not found")

	// ErrNotOwner is returned when a caller acts on a resource created by
	// someone else.
	ErrNotOwner = errors.New("resource belongs to another user")

	// ErrEmptyMessage is returned when a doubt or answer body is blank.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrInvalidVisitors is returned when a registration carries a
	// non-positive visitor count.
	ErrInvalidVisitors = errors.New("num_visitors must be a positive integer")

	// ErrInvalidDates is returned when a date is not YYYY-MM-DD or a range
	// has start after end.
	ErrInvalidDates = errors.New("invalid date or date range")

	// ErrInvalidGroupChatLink is returned when a renovation's group chat link
	// is not a WhatsApp or Telegram invite URL.
	ErrInvalidGroupChatLink = errors.New("group chat link must be a WhatsApp or Telegram invite")

	// ErrOverlappingRenovation is the sentinel matched by errors.Is for date
	// overlaps. The returned error is an *OverlapError carrying the entity.
	ErrOverlappingRenovation = errors.New("renovation dates overlap an existing renovation")
)

// OverlapError reports a renovation date conflict and carries the existing
// renovation so the handler can embed it in the conflict response.
type OverlapError struct {
	Overlapping *domain.Renovation
}

// Error implements the error interface.
func (e *OverlapError) Error() string {
	return fmt.Sprintf("%v: %s", ErrOverlappingRenovation, e.Overlapping.ID)
}

// Unwrap makes errors.Is(err, ErrOverlappingRenovation) hold.
func (e *OverlapError) Unwrap() error { return ErrOverlappingRenovation }
