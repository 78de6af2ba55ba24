// Visit HTTP handlers.
//
// This file exposes REST endpoints for visit registrations:
//   - GET    /refuges/{id}/visits        (per-date aggregates for a refuge)
//   - GET    /users/{uid}/visits         (aggregates for the caller's dates)
//   - POST   /refuges/{id}/visits/{date} (register)
//   - PUT    /refuges/{id}/visits/{date} (change visitor count)
//   - DELETE /refuges/{id}/visits/{date} (unregister)
//
// Visit creation honors the Idempotency-Key header: a replayed create serves
// the current aggregate instead of inserting a second row, so a client retry
// after a lost response cannot double-register.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mterrades/go-refuge-sync/internal/http/middleware"
)

// IdempotencyRecorder persists a completed visit write keyed by
// (user, refuge, Idempotency-Key) so later replays can be detected. Wired by
// the router; nil disables recording.
type IdempotencyRecorder func(ctx context.Context, userID, refugeID, key string, status int) error

// VisitRequest is the JSON payload for visit create and update.
type VisitRequest struct {
	// NumVisitors is the caller's party size; must be >= 1.
	NumVisitors int `json:"num_visitors" binding:"required" example:"2"`
}

// DeleteVisitResponse confirms an unregistration.
type DeleteVisitResponse struct {
	Message string `json:"message" example:"visit deleted"`
}

// ListRefugeVisits godoc
// @ID          listRefugeVisits
// @Summary     List a refuge's per-date occupancy aggregates
// @Description Totals are across all users; is_visitor/num_visitors reflect the caller.
// @Tags        Visits
// @Produce     json
// @Param       X-User-ID header string false "Caller UID"
// @Param       id        path   string true  "Refuge ID (UUID)"
// @Success     200 {array}  domain.RefugeVisit
// @Failure     404 {object} handlers.ErrorResponse "Refuge not found"
// @Router      /refuges/{id}/visits [get]
func (h *Handlers) ListRefugeVisits(c *gin.Context) {
	out, err := h.visitSvc.ListByRefuge(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// ListUserVisits godoc
// @ID          listUserVisits
// @Summary     List the aggregates for every date a user is registered on
// @Tags        Visits
// @Produce     json
// @Param       uid path string true "User UID"
// @Success     200 {array} domain.RefugeVisit
// @Router      /users/{uid}/visits [get]
func (h *Handlers) ListUserVisits(c *gin.Context) {
	out, err := h.visitSvc.ListByUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// CreateVisit godoc
// @ID          createVisit
// @Summary     Register the caller on (refuge, date)
// @Description Returns the updated per-date aggregate. Supports Idempotency-Key replay.
// @Tags        Visits
// @Accept      json
// @Produce     json
// @Param       X-User-ID       header string true  "Caller UID"
// @Param       Idempotency-Key header string false "Safe-retry key"
// @Param       id              path   string true  "Refuge ID (UUID)"
// @Param       date            path   string true  "Date (YYYY-MM-DD)"
// @Param       body            body   handlers.VisitRequest true "Visitor count"
// @Success     200 {object} domain.RefugeVisit "Replayed request"
// @Success     201 {object} domain.RefugeVisit
// @Failure     400 {object} handlers.ErrorResponse "Bad request"
// @Failure     409 {object} handlers.ErrorResponse "Already registered"
// @Router      /refuges/{id}/visits/{date} [post]
func (h *Handlers) CreateVisit(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	refugeID, date := c.Param("id"), c.Param("date")

	// A detected replay serves the stored outcome: the current aggregate.
	if middleware.IsReplay(c) {
		out, err := h.currentAggregate(c, uid, refugeID, date)
		if err != nil {
			failService(c, err)
			return
		}
		ok(c, http.StatusOK, out)
		return
	}

	var req VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	out, err := h.visitSvc.Create(c.Request.Context(), uid, refugeID, date, req.NumVisitors)
	if err != nil {
		failService(c, err)
		return
	}

	if h.recordIdem != nil {
		if key, present := middleware.GetIdempotencyKey(c); present {
			// Recording failure is not the client's problem; the write landed.
			_ = h.recordIdem(c.Request.Context(), uid, refugeID, key, http.StatusCreated)
		}
	}
	ok(c, http.StatusCreated, out)
}

// UpdateVisit godoc
// @ID          updateVisit
// @Summary     Change the caller's visitor count on (refuge, date)
// @Tags        Visits
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "Caller UID"
// @Param       id        path   string true "Refuge ID (UUID)"
// @Param       date      path   string true "Date (YYYY-MM-DD)"
// @Param       body      body   handlers.VisitRequest true "Visitor count"
// @Success     200 {object} domain.RefugeVisit
// @Failure     404 {object} handlers.ErrorResponse "No registration"
// @Router      /refuges/{id}/visits/{date} [put]
func (h *Handlers) UpdateVisit(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	var req VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	out, err := h.visitSvc.Update(c.Request.Context(), uid, c.Param("id"), c.Param("date"), req.NumVisitors)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// DeleteVisit godoc
// @ID          deleteVisit
// @Summary     Remove the caller's registration on (refuge, date)
// @Tags        Visits
// @Produce     json
// @Param       X-User-ID header string true "Caller UID"
// @Param       id        path   string true "Refuge ID (UUID)"
// @Param       date      path   string true "Date (YYYY-MM-DD)"
// @Success     200 {object} handlers.DeleteVisitResponse
// @Failure     404 {object} handlers.ErrorResponse "No registration"
// @Router      /refuges/{id}/visits/{date} [delete]
func (h *Handlers) DeleteVisit(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	if err := h.visitSvc.Delete(c.Request.Context(), uid, c.Param("id"), c.Param("date")); err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, DeleteVisitResponse{Message: "visit deleted"})
}

// currentAggregate returns the caller-facing row for one date, zero-valued
// when no registrations exist.
func (h *Handlers) currentAggregate(c *gin.Context, uid, refugeID, date string) (any, error) {
	rows, err := h.visitSvc.ListByRefuge(c.Request.Context(), refugeID, uid)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Date == date {
			return rows[i], nil
		}
	}
	return gin.H{"refuge_id": refugeID, "date": date, "total_visitors": 0, "is_visitor": false, "num_visitors": 0}, nil
}
