package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mterrades/go-refuge-sync/internal/domain"
)

// HeaderUserID carries the caller's identity. Session management is outside
// this module; the backend trusts the header the same way the original app
// trusted its auth middleware.
const HeaderUserID = "X-User-ID"

// Client is the typed REST client for the refuge API. All methods are
// context-aware and return a *domain.Error for any non-2xx response; the
// status-to-kind mapping happens here and nowhere else.
//
// The transport is a plain *http.Client: no automatic retries live at this
// layer. Read retry policy belongs to the query bindings, and writes are
// never retried at all.
type Client struct {
	BaseURL string
	UserID  string
	HTTP    *http.Client
	Log     zerolog.Logger
}

// NewClient builds a client for baseURL acting as userID.
func NewClient(baseURL, userID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		UserID:  userID,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// ---- Refuges ----

// ListRefuges returns the full refuge directory.
func (c *Client) ListRefuges(ctx context.Context) ([]RefugeRecord, error) {
	var out []RefugeRecord
	err := c.do(ctx, http.MethodGet, "/refuges", nil, &out)
	return out, err
}

// SearchRefuges returns refuges matching q by name or description.
func (c *Client) SearchRefuges(ctx context.Context, q string) ([]RefugeRecord, error) {
	var out []RefugeRecord
	err := c.do(ctx, http.MethodGet, "/refuges/search?q="+url.QueryEscape(q), nil, &out)
	return out, err
}

// GetRefuge returns one refuge by id.
func (c *Client) GetRefuge(ctx context.Context, refugeID string) (RefugeRecord, error) {
	var out RefugeRecord
	err := c.do(ctx, http.MethodGet, "/refuges/"+url.PathEscape(refugeID), nil, &out)
	return out, err
}

// ---- Doubts ----

// ListDoubts returns the doubts of a refuge, answers included, newest first.
func (c *Client) ListDoubts(ctx context.Context, refugeID string) ([]DoubtRecord, error) {
	var out []DoubtRecord
	err := c.do(ctx, http.MethodGet, "/refuges/"+url.PathEscape(refugeID)+"/doubts", nil, &out)
	return out, err
}

// CreateDoubt posts a new doubt on a refuge and returns the stored record.
func (c *Client) CreateDoubt(ctx context.Context, refugeID, message string) (DoubtRecord, error) {
	var out DoubtRecord
	err := c.do(ctx, http.MethodPost, "/refuges/"+url.PathEscape(refugeID)+"/doubts",
		CreateDoubtRequest{Message: message}, &out)
	return out, err
}

// DeleteDoubt removes a doubt owned by the caller.
func (c *Client) DeleteDoubt(ctx context.Context, doubtID string) error {
	return c.do(ctx, http.MethodDelete, "/doubts/"+url.PathEscape(doubtID), nil, nil)
}

// CreateAnswer posts an answer (or a reply, when parentAnswerID is non-nil)
// on a doubt.
func (c *Client) CreateAnswer(ctx context.Context, doubtID, message string, parentAnswerID *string) (AnswerRecord, error) {
	var out AnswerRecord
	err := c.do(ctx, http.MethodPost, "/doubts/"+url.PathEscape(doubtID)+"/answers",
		CreateAnswerRequest{Message: message, ParentAnswerID: parentAnswerID}, &out)
	return out, err
}

// DeleteAnswer removes an answer owned by the caller.
func (c *Client) DeleteAnswer(ctx context.Context, doubtID, answerID string) error {
	return c.do(ctx, http.MethodDelete,
		"/doubts/"+url.PathEscape(doubtID)+"/answers/"+url.PathEscape(answerID), nil, nil)
}

// ---- Visits ----

// ListRefugeVisits returns the per-date aggregates of a refuge.
func (c *Client) ListRefugeVisits(ctx context.Context, refugeID string) ([]VisitAggregateRecord, error) {
	var out []VisitAggregateRecord
	err := c.do(ctx, http.MethodGet, "/refuges/"+url.PathEscape(refugeID)+"/visits", nil, &out)
	return out, err
}

// ListUserVisits returns the aggregates for every date the user is
// registered on, across refuges.
func (c *Client) ListUserVisits(ctx context.Context, uid string) ([]VisitAggregateRecord, error) {
	var out []VisitAggregateRecord
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(uid)+"/visits", nil, &out)
	return out, err
}

// CreateVisit registers numVisitors for the caller on (refuge, date) and
// returns the updated aggregate. date uses domain.DateLayout.
func (c *Client) CreateVisit(ctx context.Context, refugeID, date string, numVisitors int) (VisitAggregateRecord, error) {
	var out VisitAggregateRecord
	err := c.do(ctx, http.MethodPost, c.visitPath(refugeID, date), VisitRequest{NumVisitors: numVisitors}, &out)
	return out, err
}

// UpdateVisit changes the caller's registration on (refuge, date) and
// returns the updated aggregate.
func (c *Client) UpdateVisit(ctx context.Context, refugeID, date string, numVisitors int) (VisitAggregateRecord, error) {
	var out VisitAggregateRecord
	err := c.do(ctx, http.MethodPut, c.visitPath(refugeID, date), VisitRequest{NumVisitors: numVisitors}, &out)
	return out, err
}

// DeleteVisit removes the caller's registration on (refuge, date). The
// response carries only a message, so callers must invalidate rather than
// patch from it.
func (c *Client) DeleteVisit(ctx context.Context, refugeID, date string) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, http.MethodDelete, c.visitPath(refugeID, date), nil, &out)
	return out, err
}

func (c *Client) visitPath(refugeID, date string) string {
	return "/refuges/" + url.PathEscape(refugeID) + "/visits/" + url.PathEscape(date)
}

// ---- Renovations ----

// ListRenovations returns all announced renovations.
func (c *Client) ListRenovations(ctx context.Context) ([]RenovationRecord, error) {
	var out []RenovationRecord
	err := c.do(ctx, http.MethodGet, "/renovations", nil, &out)
	return out, err
}

// GetRenovation returns one renovation by id.
func (c *Client) GetRenovation(ctx context.Context, id string) (RenovationRecord, error) {
	var out RenovationRecord
	err := c.do(ctx, http.MethodGet, "/renovations/"+url.PathEscape(id), nil, &out)
	return out, err
}

// CreateRenovation announces a renovation. Overlapping dates on the same
// refuge surface as a KindConflict error carrying the existing renovation.
func (c *Client) CreateRenovation(ctx context.Context, in RenovationInput) (RenovationRecord, error) {
	var out RenovationRecord
	err := c.do(ctx, http.MethodPost, "/renovations", in, &out)
	return out, err
}

// UpdateRenovation edits a renovation (creator only).
func (c *Client) UpdateRenovation(ctx context.Context, id string, in RenovationInput) (RenovationRecord, error) {
	var out RenovationRecord
	err := c.do(ctx, http.MethodPut, "/renovations/"+url.PathEscape(id), in, &out)
	return out, err
}

// DeleteRenovation removes a renovation (creator only).
func (c *Client) DeleteRenovation(ctx context.Context, id string) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, http.MethodDelete, "/renovations/"+url.PathEscape(id), nil, &out)
	return out, err
}

// JoinRenovation adds the caller to the participant set and returns the
// updated renovation.
func (c *Client) JoinRenovation(ctx context.Context, id string) (RenovationRecord, error) {
	var out RenovationRecord
	err := c.do(ctx, http.MethodPost, "/renovations/"+url.PathEscape(id)+"/participants", nil, &out)
	return out, err
}

// LeaveRenovation removes uid from the participant set (self, or any
// participant when the caller is the creator) and returns the updated
// renovation.
func (c *Client) LeaveRenovation(ctx context.Context, id, uid string) (RenovationRecord, error) {
	var out RenovationRecord
	err := c.do(ctx, http.MethodDelete,
		"/renovations/"+url.PathEscape(id)+"/participants/"+url.PathEscape(uid), nil, &out)
	return out, err
}

// ---- transport ----

// do performs one HTTP round trip. body is JSON-encoded when non-nil; out is
// JSON-decoded from a 2xx response when non-nil. Non-2xx responses decode
// the backend's error envelope and come back as *domain.Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return domain.WrapUnknown(err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return domain.WrapUnknown(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserID != "" {
		req.Header.Set(HeaderUserID, c.UserID)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return domain.WrapUnknown(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.WrapUnknown(fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

// decodeError maps a non-2xx response to a typed error. Bodies that are not
// the standard envelope still map by status, with an empty message.
func (c *Client) decodeError(resp *http.Response) error {
	var env errorEnvelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(raw, &env)

	e := domain.ErrorFromStatus(resp.StatusCode, env.Message)
	if env.Overlapping != nil {
		e.Overlapping = overlapRenovation(*env.Overlapping)
	}
	c.Log.Debug().Int("status", resp.StatusCode).Str("code", env.Code).Msg("remote error")
	return e
}

// overlapRenovation converts the conflict payload. Only the fields needed to
// present and navigate to the conflicting renovation are carried; the full
// normalization lives in the mapper package.
func overlapRenovation(rec RenovationRecord) *domain.Renovation {
	return &domain.Renovation{
		ID:            rec.ID,
		RefugeID:      rec.RefugeID,
		StartDate:     rec.StartDate,
		EndDate:       rec.EndDate,
		Description:   rec.Description,
		GroupChatLink: rec.GroupChatLink,
		CreatorUID:    rec.CreatorUID,
	}
}
