// Refuge HTTP handlers.
//
// This file exposes REST endpoints for the refuge directory:
//   - GET /refuges             (list, name order)
//   - GET /refuges/search?q=   (diacritic-insensitive search)
//   - GET /refuges/{id}        (detail)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. The caller's identity arrives in
// the X-User-ID header; session management is out of scope and the header is
// trusted the way the original app trusted its auth middleware.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/services"
	"github.com/mterrades/go-refuge-sync/internal/utils"
)

//
// Service contracts (context-aware)
//

// RefugeService defines directory operations consumed by HTTP handlers.
type RefugeService interface {
	List(ctx context.Context) ([]domain.Refuge, error)
	Get(ctx context.Context, id string) (*domain.Refuge, error)
	Search(ctx context.Context, q string, limit int) ([]domain.Refuge, error)
}

// DoubtService defines question-board operations consumed by HTTP handlers.
type DoubtService interface {
	List(ctx context.Context, refugeID string) ([]domain.Doubt, error)
	Create(ctx context.Context, refugeID, creatorUID, message string) (*domain.Doubt, error)
	Delete(ctx context.Context, doubtID, callerUID string) error
	CreateAnswer(ctx context.Context, doubtID, creatorUID, message string, parentAnswerID *string) (*domain.Answer, error)
	DeleteAnswer(ctx context.Context, doubtID, answerID, callerUID string) error
}

// VisitService defines visit registration operations consumed by HTTP handlers.
type VisitService interface {
	ListByRefuge(ctx context.Context, refugeID, callerUID string) ([]domain.RefugeVisit, error)
	ListByUser(ctx context.Context, userUID string) ([]domain.RefugeVisit, error)
	Create(ctx context.Context, callerUID, refugeID, date string, numVisitors int) (*domain.RefugeVisit, error)
	Update(ctx context.Context, callerUID, refugeID, date string, numVisitors int) (*domain.RefugeVisit, error)
	Delete(ctx context.Context, callerUID, refugeID, date string) error
}

// RenovationService defines renovation operations consumed by HTTP handlers.
type RenovationService interface {
	List(ctx context.Context) ([]domain.Renovation, error)
	Get(ctx context.Context, id string) (*domain.Renovation, error)
	Create(ctx context.Context, callerUID string, in services.RenovationInput) (*domain.Renovation, error)
	Update(ctx context.Context, callerUID, id string, in services.RenovationInput) (*domain.Renovation, error)
	Delete(ctx context.Context, callerUID, id string) error
	Join(ctx context.Context, id, uid string) (*domain.Renovation, error)
	Leave(ctx context.Context, id, uid string) (*domain.Renovation, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for refuges, doubts, visits, and renovations.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	refugeSvc     RefugeService
	doubtSvc      DoubtService
	visitSvc      VisitService
	renovationSvc RenovationService
	recordIdem    IdempotencyRecorder
}

// New constructs and returns a Handlers instance bound to the given services.
func New(refugeSvc RefugeService, doubtSvc DoubtService, visitSvc VisitService, renovationSvc RenovationService) *Handlers {
	return &Handlers{
		refugeSvc:     refugeSvc,
		doubtSvc:      doubtSvc,
		visitSvc:      visitSvc,
		renovationSvc: renovationSvc,
	}
}

// WithIdempotencyRecorder enables replay detection for visit creates by
// persisting completed writes through rec. Returns h for chaining.
func (h *Handlers) WithIdempotencyRecorder(rec IdempotencyRecorder) *Handlers {
	h.recordIdem = rec
	return h
}

// userID extracts the caller identity from Gin context (set by upstream
// middleware). If absent, it falls back to the "X-User-ID" header, and
// finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// requireUser is userID without the fallback: writes need a real identity.
// It fails the request with 401 and returns false when none is present.
func requireUser(c *gin.Context) (string, bool) {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}
	if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
		return h, true
	}
	fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
	return "", false
}

//
// Handlers
//

// ListRefuges godoc
// @ID          listRefuges
// @Summary     List the refuge directory
// @Tags        Refuges
// @Produce     json
// @Success     200 {array}  domain.Refuge
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /refuges [get]
func (h *Handlers) ListRefuges(c *gin.Context) {
	out, err := h.refugeSvc.List(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// SearchRefuges godoc
// @ID          searchRefuges
// @Summary     Search refuges by name, region, or description
// @Description Diacritic-insensitive: "colomers" matches "Colomèrs".
// @Tags        Refuges
// @Produce     json
// @Param       q     query string true  "Search terms"
// @Param       limit query int    false "Maximum results" minimum(1) maximum(10) default(10)
// @Success     200 {array}  domain.Refuge
// @Failure     500 {object} handlers.ErrorResponse "Internal error"
// @Router      /refuges/search [get]
func (h *Handlers) SearchRefuges(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	out, err := h.refugeSvc.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// GetRefuge godoc
// @ID          getRefuge
// @Summary     Fetch one refuge
// @Tags        Refuges
// @Produce     json
// @Param       id path string true "Refuge ID (UUID)"
// @Success     200 {object} domain.Refuge
// @Failure     404 {object} handlers.ErrorResponse "Refuge not found"
// @Router      /refuges/{id} [get]
func (h *Handlers) GetRefuge(c *gin.Context) {
	out, err := h.refugeSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}
