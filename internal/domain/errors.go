// Package domain – error taxonomy.
//
// This file defines the typed failure surface shared by the remote access
// layer and the sync bindings. The remote layer maps HTTP status codes into
// these kinds exactly once, at the service boundary; everything above works
// with kinds and never inspects raw transport errors.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a remote failure into the small set of cases the app
// distinguishes.
type Kind int

const (
	// KindUnknown covers transport failures and any status >= 500.
	KindUnknown Kind = iota
	// KindNotFound maps 404: the refuge/visit/doubt/renovation is missing.
	KindNotFound
	// KindUnauthenticated maps 401.
	KindUnauthenticated
	// KindForbidden maps 403: acting on another user's resource.
	KindForbidden
	// KindValidationFailed maps 400 and carries the remote message verbatim.
	KindValidationFailed
	// KindConflict is the one domain-specific case: overlapping renovation
	// dates. The error carries the conflicting entity so callers can offer
	// "view the conflicting renovation" as a recovery action.
	KindConflict
)

// String returns the stable snake_case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindValidationFailed:
		return "validation_failed"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by the remote access layer.
//
// Message holds the remote side's human-readable message when present;
// callers render it verbatim and fall back to a generic localized string
// only when it is empty. Overlapping is non-nil only for KindConflict.
type Error struct {
	Kind        Kind
	Status      int
	Message     string
	Overlapping *Renovation
	cause       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error { return e.cause }

// NewError builds a typed error for the given kind and message.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WrapUnknown wraps a transport-level failure as KindUnknown.
func WrapUnknown(err error) *Error {
	return &Error{Kind: KindUnknown, Message: err.Error(), cause: err}
}

// ErrorFromStatus maps an HTTP status code and remote message to a typed
// error. Conflict detection is the caller's job since it requires decoding
// the overlapping entity from the response body.
func ErrorFromStatus(status int, msg string) *Error {
	e := &Error{Status: status, Message: msg}
	switch status {
	case http.StatusNotFound:
		e.Kind = KindNotFound
	case http.StatusUnauthorized:
		e.Kind = KindUnauthenticated
	case http.StatusForbidden:
		e.Kind = KindForbidden
	case http.StatusBadRequest:
		e.Kind = KindValidationFailed
	case http.StatusConflict:
		e.Kind = KindConflict
	default:
		e.Kind = KindUnknown
	}
	return e
}

// KindOf extracts the Kind from err, or KindUnknown when err is not a
// *domain.Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is a *domain.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}
