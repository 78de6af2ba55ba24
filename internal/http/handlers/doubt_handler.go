// Doubt HTTP handlers.
//
// This file exposes REST endpoints for the question board:
//   - GET    /refuges/{id}/doubts            (list, newest first, answers inline)
//   - POST   /refuges/{id}/doubts            (post a doubt)
//   - DELETE /doubts/{id}                    (creator only)
//   - POST   /doubts/{id}/answers            (answer or reply)
//   - DELETE /doubts/{id}/answers/{answerID} (creator of the answer only)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateDoubtRequest is the JSON payload for posting a doubt.
type CreateDoubtRequest struct {
	// Message is the question text; must be non-blank.
	Message string `json:"message" binding:"required" example:"Is there firewood left in the shed?"`
}

// CreateAnswerRequest is the JSON payload for answering a doubt. Setting
// ParentAnswerID makes the answer a reply to another answer on the same doubt.
type CreateAnswerRequest struct {
	Message        string  `json:"message" binding:"required" example:"Yes, restocked last weekend."`
	ParentAnswerID *string `json:"parent_answer_id,omitempty"`
}

// ListDoubts godoc
// @ID          listDoubts
// @Summary     List a refuge's doubts
// @Description Newest first; every doubt carries its full answer collection.
// @Tags        Doubts
// @Produce     json
// @Param       id path string true "Refuge ID (UUID)"
// @Success     200 {array}  domain.Doubt
// @Failure     404 {object} handlers.ErrorResponse "Refuge not found"
// @Router      /refuges/{id}/doubts [get]
func (h *Handlers) ListDoubts(c *gin.Context) {
	out, err := h.doubtSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// CreateDoubt godoc
// @ID          createDoubt
// @Summary     Post a doubt on a refuge
// @Tags        Doubts
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true  "Caller UID"
// @Param       id        path   string true  "Refuge ID (UUID)"
// @Param       body      body   handlers.CreateDoubtRequest true "Doubt payload"
// @Success     201 {object} domain.Doubt
// @Failure     400 {object} handlers.ErrorResponse "Bad request"
// @Failure     404 {object} handlers.ErrorResponse "Refuge not found"
// @Router      /refuges/{id}/doubts [post]
func (h *Handlers) CreateDoubt(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	var req CreateDoubtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	d, err := h.doubtSvc.Create(c.Request.Context(), c.Param("id"), uid, req.Message)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, d)
}

// DeleteDoubt godoc
// @ID          deleteDoubt
// @Summary     Delete a doubt and all its answers
// @Tags        Doubts
// @Param       X-User-ID header string true "Caller UID"
// @Param       id        path   string true "Doubt ID (UUID)"
// @Success     204 {string} string "No Content"
// @Failure     403 {object} handlers.ErrorResponse "Not the creator"
// @Failure     404 {object} handlers.ErrorResponse "Doubt not found"
// @Router      /doubts/{id} [delete]
func (h *Handlers) DeleteDoubt(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	if err := h.doubtSvc.Delete(c.Request.Context(), c.Param("id"), uid); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// CreateAnswer godoc
// @ID          createAnswer
// @Summary     Answer a doubt, or reply to an answer
// @Tags        Doubts
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string true  "Caller UID"
// @Param       id        path   string true  "Doubt ID (UUID)"
// @Param       body      body   handlers.CreateAnswerRequest true "Answer payload"
// @Success     201 {object} domain.Answer
// @Failure     400 {object} handlers.ErrorResponse "Bad request"
// @Failure     404 {object} handlers.ErrorResponse "Doubt or parent answer not found"
// @Router      /doubts/{id}/answers [post]
func (h *Handlers) CreateAnswer(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	var req CreateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	a, err := h.doubtSvc.CreateAnswer(c.Request.Context(), c.Param("id"), uid, req.Message, req.ParentAnswerID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, a)
}

// DeleteAnswer godoc
// @ID          deleteAnswer
// @Summary     Delete one answer
// @Description Replies to the removed answer are kept.
// @Tags        Doubts
// @Param       X-User-ID header string true "Caller UID"
// @Param       id        path   string true "Doubt ID (UUID)"
// @Param       answerID  path   string true "Answer ID (UUID)"
// @Success     204 {string} string "No Content"
// @Failure     403 {object} handlers.ErrorResponse "Not the creator"
// @Failure     404 {object} handlers.ErrorResponse "Answer not found"
// @Router      /doubts/{id}/answers/{answerID} [delete]
func (h *Handlers) DeleteAnswer(c *gin.Context) {
	uid, authed := requireUser(c)
	if !authed {
		return
	}
	if err := h.doubtSvc.DeleteAnswer(c.Request.Context(), c.Param("id"), c.Param("answerID"), uid); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
