// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints,
// including structured error envelopes, consistent JSON serialization, and
// helpers for common HTTP patterns. The goal is to guarantee uniform responses
// for both success and failure cases, making the API predictable and
// machine-friendly.
//
// Conventions:
//   - All error responses must return an ErrorResponse with a stable `code`.
//   - `fail()` centralizes error logging and formatting, ensuring 5xx responses
//     are logged with request context for observability.
//   - Renovation date conflicts use `failOverlap()`, which embeds the existing
//     renovation so clients can present it without a second request.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "refuge not found"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/http/middleware"
	"github.com/mterrades/go-refuge-sync/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// Fields:
//   - RequestID: Optional correlation ID, echoed from X-Request-ID header, used
//     to correlate server logs with client-side errors.
//   - Code: A stable, machine-readable string (see errors.go constants).
//   - Message: A human-readable error description, safe for display to users.
//   - Overlapping: set only on renovation date conflicts (HTTP 409); carries
//     the renovation the submitted dates collide with.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"refuge not found"`
	// The conflicting renovation, on overlap conflicts only
	Overlapping *domain.Renovation `json:"overlapping_renovation,omitempty"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, ErrorResponse{Code: code, Message: msg})
}

// failOverlap aborts with 409 and embeds the conflicting renovation.
func failOverlap(c *gin.Context, msg string, overlapping *domain.Renovation) {
	failWith(c, http.StatusConflict, ErrorResponse{
		Code:        ErrCodeOverlap,
		Message:     msg,
		Overlapping: overlapping,
	})
}

func failWith(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = c.Writer.Header().Get("X-Request-ID")

	// Log 5xx (server-side) with request-scoped logger
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failService translates a service-layer error into the envelope. Sentinel
// messages are sent verbatim; the client surfaces them unchanged.
func failService(c *gin.Context, err error) {
	var oe *services.OverlapError
	if errors.As(err, &oe) {
		failOverlap(c, err.Error(), oe.Overlapping)
		return
	}
	switch {
	case errors.Is(err, services.ErrRefugeNotFound),
		errors.Is(err, services.ErrDoubtNotFound),
		errors.Is(err, services.ErrAnswerNotFound),
		errors.Is(err, services.ErrVisitNotFound),
		errors.Is(err, services.ErrRenovationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrNotOwner):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrVisitExists):
		fail(c, http.StatusConflict, ErrCodeVisitExists, err.Error())
	case errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrInvalidVisitors),
		errors.Is(err, services.ErrInvalidDates),
		errors.Is(err, services.ErrInvalidGroupChatLink):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
