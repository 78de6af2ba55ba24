// Package domain defines the entities shared by the sync core and the
// reference backend: refuges, doubts and their answers, visit registrations,
// and renovations. The structs carry both JSON and GORM tags so the backend
// persists exactly the shapes the client caches.
package domain

import (
	"regexp"
	"time"

	"gorm.io/gorm"
)

// DateLayout is the wire format for calendar dates ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

// Refuge represents a mountain refuge in the directory.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name / Region / Description: directory metadata shown on detail screens.
//   - Places: sleeping capacity; nil when unknown. Occupancy warnings compare
//     against this value and are informational only.
//   - ImageURL: pre-signed image URL; refreshed on every fetch.
type Refuge struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name"        gorm:"type:varchar(255);not null;index"`
	Region      string         `json:"region"      gorm:"type:varchar(128)"`
	Description string         `json:"description" gorm:"type:text"`
	Places      *int           `json:"places,omitempty"`
	ImageURL    string         `json:"image_url,omitempty" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Refuge.
func (Refuge) TableName() string { return "refuges" }

// EntityID returns the cache identity of the refuge.
func (r Refuge) EntityID() string { return r.ID }

// Doubt is a question posted on a refuge's board. Answers are ordered by
// creation time (insertion order is chronological) and AnswersCount is a
// denormalized counter over the whole answer collection, replies included.
//
// Invariant: after any local cache patch AnswersCount == len(Answers).
type Doubt struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	RefugeID     string         `json:"refuge_id"     gorm:"type:char(36);not null;index:idx_refuge_doubts"`
	CreatorUID   string         `json:"creator_uid"   gorm:"type:varchar(64);not null;index"`
	Message      string         `json:"message"       gorm:"type:text;not null"`
	AnswersCount int            `json:"answers_count" gorm:"not null;default:0"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Answers holds the full collection, top-level and replies alike.
	Answers []Answer `json:"answers" gorm:"foreignKey:DoubtID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Doubt.
func (Doubt) TableName() string { return "doubts" }

// EntityID returns the cache identity of the doubt.
func (d Doubt) EntityID() string { return d.ID }

// Answer is a reply on a doubt. ParentAnswerID is nil for a top-level answer
// and references another answer when replying to it. The model places no
// limit on reply depth.
type Answer struct {
	ID             string         `json:"id"          gorm:"type:char(36);primaryKey"`
	DoubtID        string         `json:"doubt_id"    gorm:"type:char(36);not null;index:idx_doubt_answers,priority:1"`
	CreatorUID     string         `json:"creator_uid" gorm:"type:varchar(64);not null"`
	Message        string         `json:"message"     gorm:"type:text;not null"`
	ParentAnswerID *string        `json:"parent_answer_id,omitempty" gorm:"type:char(36);index"`
	CreatedAt      time.Time      `json:"created_at"  gorm:"index:idx_doubt_answers,priority:2"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Answer.
func (Answer) TableName() string { return "answers" }

// EntityID returns the cache identity of the answer.
func (a Answer) EntityID() string { return a.ID }

// VisitRecord is one user's registration for one refuge on one date. It is
// the persistence row behind the aggregate RefugeVisit view; the client never
// sees it directly.
type VisitRecord struct {
	ID          string    `json:"-"            gorm:"type:char(36);primaryKey"`
	RefugeID    string    `json:"refuge_id"    gorm:"type:char(36);not null;uniqueIndex:ux_visit_user_refuge_date,priority:1"`
	UserID      string    `json:"-"            gorm:"type:varchar(64);not null;uniqueIndex:ux_visit_user_refuge_date,priority:2"`
	Date        string    `json:"date"         gorm:"type:char(10);not null;uniqueIndex:ux_visit_user_refuge_date,priority:3;index"`
	NumVisitors int       `json:"num_visitors" gorm:"not null;check:num_visitors > 0"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// TableName returns the database table name for VisitRecord.
func (VisitRecord) TableName() string { return "visit_records" }

// RefugeVisit is the per-date occupancy aggregate as seen by one caller:
// the total across all users plus the caller's own registration state.
//
// Invariant: NumVisitors > 0 exactly when IsVisitor is true. A row with
// TotalVisitors == 0 means "no visits", not an error.
type RefugeVisit struct {
	RefugeID      string `json:"refuge_id"`
	Date          string `json:"date"` // DateLayout
	TotalVisitors int    `json:"total_visitors"`
	IsVisitor     bool   `json:"is_visitor"`
	NumVisitors   int    `json:"num_visitors"`
}

// EntityID returns the cache identity of the aggregate within a refuge's
// visit list: the date, since (refuge, date) keys the aggregate and the list
// is already scoped to one refuge.
func (v RefugeVisit) EntityID() string { return v.Date }

// Renovation is a volunteer work session on a refuge over a date range.
// The creator is never duplicated into ParticipantsUIDs: for any renovation a
// user is exactly one of creator, participant, or outsider.
type Renovation struct {
	ID            string         `json:"id"              gorm:"type:char(36);primaryKey"`
	RefugeID      string         `json:"refuge_id"       gorm:"type:char(36);not null;index:idx_refuge_renovations"`
	StartDate     string         `json:"start_date"      gorm:"type:char(10);not null"` // DateLayout, StartDate <= EndDate
	EndDate       string         `json:"end_date"        gorm:"type:char(10);not null"`
	Description   string         `json:"description"     gorm:"type:text;not null"`
	Materials     *string        `json:"materials,omitempty" gorm:"type:text"`
	GroupChatLink string         `json:"group_chat_link" gorm:"type:text;not null"`
	CreatorUID    string         `json:"creator_uid"     gorm:"type:varchar(64);not null;index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// ParticipantsUIDs is serialized on the wire; persistence goes through
	// the renovation_participants join table.
	ParticipantsUIDs []string `json:"participants_uids" gorm:"-"`
}

// TableName returns the database table name for Renovation.
func (Renovation) TableName() string { return "renovations" }

// EntityID returns the cache identity of the renovation.
func (r Renovation) EntityID() string { return r.ID }

// Overlaps reports whether the date ranges of r and other intersect on the
// same refuge. Ranges are inclusive on both ends; lexicographic comparison is
// correct for DateLayout strings.
func (r Renovation) Overlaps(other Renovation) bool {
	if r.RefugeID != other.RefugeID {
		return false
	}
	return r.StartDate <= other.EndDate && other.StartDate <= r.EndDate
}

// HasParticipant reports whether uid is in the participant set.
func (r Renovation) HasParticipant(uid string) bool {
	for _, p := range r.ParticipantsUIDs {
		if p == uid {
			return true
		}
	}
	return false
}

// RenovationParticipant is the join row backing Renovation.ParticipantsUIDs.
type RenovationParticipant struct {
	RenovationID string    `gorm:"type:char(36);not null;uniqueIndex:ux_renovation_participant,priority:1"`
	UID          string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_renovation_participant,priority:2"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for RenovationParticipant.
func (RenovationParticipant) TableName() string { return "renovation_participants" }

// groupChatRE accepts WhatsApp and Telegram group invite links.
var groupChatRE = regexp.MustCompile(`^https://(chat\.whatsapp\.com/|(t\.me|telegram\.me)/)[A-Za-z0-9_+\-/]+$`)

// ValidGroupChatLink reports whether s looks like a WhatsApp or Telegram
// group invite URL.
func ValidGroupChatLink(s string) bool { return groupChatRE.MatchString(s) }
