// Package remote implements the remote access layer: a typed REST client for
// the refuge API. Every entry point returns either the decoded payload or a
// typed *domain.Error; nothing above this package ever inspects an HTTP
// status or a transport error directly.
package remote

// RefugeRecord is the wire shape of a refuge.
type RefugeRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Region      string `json:"region"`
	Description string `json:"description"`
	Places      *int   `json:"places,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// AnswerRecord is the wire shape of an answer on a doubt.
type AnswerRecord struct {
	ID             string  `json:"id"`
	DoubtID        string  `json:"doubt_id"`
	CreatorUID     string  `json:"creator_uid"`
	Message        string  `json:"message"`
	ParentAnswerID *string `json:"parent_answer_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// DoubtRecord is the wire shape of a doubt, answers included.
type DoubtRecord struct {
	ID           string         `json:"id"`
	RefugeID     string         `json:"refuge_id"`
	CreatorUID   string         `json:"creator_uid"`
	Message      string         `json:"message"`
	AnswersCount int            `json:"answers_count"`
	CreatedAt    string         `json:"created_at"`
	Answers      []AnswerRecord `json:"answers"`
}

// VisitAggregateRecord is the wire shape of the per-date occupancy aggregate
// returned by the visit endpoints.
type VisitAggregateRecord struct {
	RefugeID      string `json:"refuge_id"`
	Date          string `json:"date"`
	TotalVisitors int    `json:"total_visitors"`
	IsVisitor     bool   `json:"is_visitor"`
	NumVisitors   int    `json:"num_visitors"`
}

// RenovationRecord is the wire shape of a renovation.
type RenovationRecord struct {
	ID               string   `json:"id"`
	RefugeID         string   `json:"refuge_id"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	Description      string   `json:"description"`
	Materials        *string  `json:"materials,omitempty"`
	GroupChatLink    string   `json:"group_chat_link"`
	CreatorUID       string   `json:"creator_uid"`
	CreatedAt        string   `json:"created_at"`
	ParticipantsUIDs []string `json:"participants_uids"`
}

// MessageResponse is the body of endpoints that confirm an action without
// returning an entity (visit delete, renovation delete).
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateDoubtRequest is the body of POST /refuges/:id/doubts.
type CreateDoubtRequest struct {
	Message string `json:"message"`
}

// CreateAnswerRequest is the body of POST /doubts/:id/answers.
type CreateAnswerRequest struct {
	Message        string  `json:"message"`
	ParentAnswerID *string `json:"parent_answer_id,omitempty"`
}

// VisitRequest is the body of visit create/update.
type VisitRequest struct {
	NumVisitors int `json:"num_visitors"`
}

// RenovationInput is the body of renovation create/update.
type RenovationInput struct {
	RefugeID      string  `json:"refuge_id"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Description   string  `json:"description"`
	Materials     *string `json:"materials,omitempty"`
	GroupChatLink string  `json:"group_chat_link"`
}

// errorEnvelope mirrors the backend's error response shape. For overlap
// conflicts the envelope carries the conflicting renovation.
type errorEnvelope struct {
	RequestID   string            `json:"request_id,omitempty"`
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	Overlapping *RenovationRecord `json:"overlapping_renovation,omitempty"`
}
