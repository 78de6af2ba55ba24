// Renovation HTTP handlers.
//
// This file exposes REST endpoints for volunteer renovations:
//   - GET    /renovations                          (list)
//   - GET    /renovations/{id}                     (detail)
//   - POST   /renovations                          (announce)
//   - PUT    /renovations/{id}                     (creator only)
//   - DELETE /renovations/{id}                     (creator only)
//   - POST   /renovations/{id}/participants        (caller joins)
//   - DELETE /renovations/{id}/participants/{uid}  (leave, or creator removes)
//
// Date conflicts come back as HTTP 409 with the conflicting renovation
// embedded in the error envelope (overlapping_renovation).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mterrades/go-refuge-sync/internal/services"
)

// RenovationRequest is the JSON payload for announcing or editing a
// renovation.
type RenovationRequest struct {
	RefugeID      string  `json:"refuge_id" binding:"required"`
	StartDate     string  `json:"start_date" binding:"required" example:"2026-06-01"`
	EndDate       string  `json:"end_date" binding:"required" example:"2026-06-10"`
	Description   string  `json:"description" binding:"required"`
	Materials     *string `json:"materials,omitempty"`
	GroupChatLink string  `json:"group_chat_link" binding:"required" example:"https://chat.whatsapp.com/Abc123"`
}

// DeleteRenovationResponse confirms a removal.
type DeleteRenovationResponse struct {
	Message string `json:"message" example:"renovation deleted"`
}

func (r RenovationRequest) input() services.RenovationInput {
	return services.RenovationInput{
		RefugeID:      r.RefugeID,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Description:   r.Description,
		Materials:     r.Materials,
		GroupChatLink: r.GroupChatLink,
	}
}

// ListRenovations godoc
// @ID          listRenovations
// @Summary     List all renovations, newest first
// @Tags        Renovations
// @Produce     json
// @Success     200 {array} domain.Renovation
// @Router      /renovations [get]
func (h *Handlers) ListRenovations(c *gin.Context) {
	out, err := h.renovationSvc.List(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// GetRenovation godoc
// @ID          getRenovation
// @Summary     Fetch one renovation with its participants
// @Tags        Renovations
// @Produce     json
// @Param       id path string true "Renovation ID (UUID)"
// @Success     200 {object} domain.Renovation
// @Failure     404 {object} handlers.ErrorResponse "Renovation not found"
// @Router      /renovations/{id} [get]
func (h *Handlers) GetRenovation(c *gin.Context) {
	out, err := h.renovationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// CreateRenovation godoc
// @ID          createRenovation
// @Summary     Announce a renovation
// @Tags        Renovations
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "Caller UID"
// @Param       body      body   handlers.RenovationRequest true "Renovation payload"
// @Success     201 {object} domain.Renovation
// @Failure     400 {object} handlers.ErrorResponse "Bad request"
// @Failure     409 {object} handlers.ErrorResponse "Dates overlap an existing renovation"
// @Router      /renovations [post]
func (h *Handlers) CreateRenovation(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	var req RenovationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	out, err := h.renovationSvc.Create(c.Request.Context(), uid, req.input())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

// UpdateRenovation godoc
// @ID          updateRenovation
// @Summary     Edit a renovation (creator only)
// @Tags        Renovations
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true "Caller UID"
// @Param       id        path   string true "Renovation ID (UUID)"
// @Param       body      body   handlers.RenovationRequest true "Renovation payload"
// @Success     200 {object} domain.Renovation
// @Failure     403 {object} handlers.ErrorResponse "Not the creator"
// @Failure     409 {object} handlers.ErrorResponse "Dates overlap an existing renovation"
// @Router      /renovations/{id} [put]
func (h *Handlers) UpdateRenovation(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	var req RenovationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	out, err := h.renovationSvc.Update(c.Request.Context(), uid, c.Param("id"), req.input())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// DeleteRenovation godoc
// @ID          deleteRenovation
// @Summary     Remove a renovation (creator only)
// @Tags        Renovations
// @Produce     json
// @Param       X-User-ID header string true "Caller UID"
// @Param       id        path   string true "Renovation ID (UUID)"
// @Success     200 {object} handlers.DeleteRenovationResponse
// @Failure     403 {object} handlers.ErrorResponse "Not the creator"
// @Failure     404 {object} handlers.ErrorResponse "Renovation not found"
// @Router      /renovations/{id} [delete]
func (h *Handlers) DeleteRenovation(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	if err := h.renovationSvc.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, DeleteRenovationResponse{Message: "renovation deleted"})
}

// JoinRenovation godoc
// @ID          joinRenovation
// @Summary     Join a renovation's participant set
// @Description Idempotent: joining twice returns the same set.
// @Tags        Renovations
// @Produce     json
// @Param       X-User-ID header string true "Caller UID"
// @Param       id        path   string true "Renovation ID (UUID)"
// @Success     200 {object} domain.Renovation
// @Failure     404 {object} handlers.ErrorResponse "Renovation not found"
// @Router      /renovations/{id}/participants [post]
func (h *Handlers) JoinRenovation(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	out, err := h.renovationSvc.Join(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// LeaveRenovation godoc
// @ID          leaveRenovation
// @Summary     Remove a participant
// @Description Callers remove themselves; the creator may remove anyone.
// @Tags        Renovations
// @Produce     json
// @Param       X-User-ID header string true "Caller UID"
// @Param       id        path   string true "Renovation ID (UUID)"
// @Param       uid       path   string true "Participant UID"
// @Success     200 {object} domain.Renovation
// @Failure     403 {object} handlers.ErrorResponse "Removing someone else without being the creator"
// @Failure     404 {object} handlers.ErrorResponse "Renovation not found"
// @Router      /renovations/{id}/participants/{uid} [delete]
func (h *Handlers) LeaveRenovation(c *gin.Context) {
	caller, authed := requireUser(c)
	if !authed {
		return
	}
	target := c.Param("uid")

	// Removing another uid is a creator-only moderation action.
	if target != caller {
		ren, err := h.renovationSvc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			failService(c, err)
			return
		}
		if ren.CreatorUID != caller {
			fail(c, http.StatusForbidden, ErrCodeForbidden, "only the creator can remove other participants")
			return
		}
	}

	out, err := h.renovationSvc.Leave(c.Request.Context(), c.Param("id"), target)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}
