// Package mapper converts wire-format records into the internal entity
// shapes the cache stores. Mappers are pure and side-effect free: they parse
// dates, restore chronological answer order, reconcile denormalized
// counters, and de-duplicate participant sets, and never touch the network
// or the cache.
package mapper

import (
	"sort"
	"time"

	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/remote"
)

// parseTime decodes an RFC 3339 timestamp, returning the zero time for
// anything unparsable; a missing timestamp is not worth failing a whole
// payload over.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Refuge maps a wire refuge record.
func Refuge(rec remote.RefugeRecord) domain.Refuge {
	return domain.Refuge{
		ID:          rec.ID,
		Name:        rec.Name,
		Region:      rec.Region,
		Description: rec.Description,
		Places:      rec.Places,
		ImageURL:    rec.ImageURL,
		CreatedAt:   parseTime(rec.CreatedAt),
	}
}

// Refuges maps a refuge list.
func Refuges(recs []remote.RefugeRecord) []domain.Refuge {
	out := make([]domain.Refuge, len(recs))
	for i, r := range recs {
		out[i] = Refuge(r)
	}
	return out
}

// Answer maps a wire answer record.
func Answer(rec remote.AnswerRecord) domain.Answer {
	return domain.Answer{
		ID:             rec.ID,
		DoubtID:        rec.DoubtID,
		CreatorUID:     rec.CreatorUID,
		Message:        rec.Message,
		ParentAnswerID: rec.ParentAnswerID,
		CreatedAt:      parseTime(rec.CreatedAt),
	}
}

// Doubt maps a wire doubt record. Answers are restored to chronological
// order and AnswersCount is reconciled against the actual collection, so
// the counter/collection invariant holds from the moment the entity enters
// the cache.
func Doubt(rec remote.DoubtRecord) domain.Doubt {
	answers := make([]domain.Answer, len(rec.Answers))
	for i, a := range rec.Answers {
		answers[i] = Answer(a)
	}
	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].CreatedAt.Before(answers[j].CreatedAt)
	})
	return domain.Doubt{
		ID:           rec.ID,
		RefugeID:     rec.RefugeID,
		CreatorUID:   rec.CreatorUID,
		Message:      rec.Message,
		AnswersCount: len(answers),
		CreatedAt:    parseTime(rec.CreatedAt),
		Answers:      answers,
	}
}

// Doubts maps a doubt list, preserving the wire order (newest first).
func Doubts(recs []remote.DoubtRecord) []domain.Doubt {
	out := make([]domain.Doubt, len(recs))
	for i, r := range recs {
		out[i] = Doubt(r)
	}
	return out
}

// Visit maps a wire visit aggregate. The registration invariant is enforced
// here: IsVisitor is derived from the caller's own count, whatever the wire
// flag said. A zero TotalVisitors row is a valid "no visits" aggregate.
func Visit(rec remote.VisitAggregateRecord) domain.RefugeVisit {
	return domain.RefugeVisit{
		RefugeID:      rec.RefugeID,
		Date:          rec.Date,
		TotalVisitors: rec.TotalVisitors,
		IsVisitor:     rec.NumVisitors > 0,
		NumVisitors:   rec.NumVisitors,
	}
}

// Visits maps a visit aggregate list.
func Visits(recs []remote.VisitAggregateRecord) []domain.RefugeVisit {
	out := make([]domain.RefugeVisit, len(recs))
	for i, r := range recs {
		out[i] = Visit(r)
	}
	return out
}

// Renovation maps a wire renovation record. The participant set is
// de-duplicated and the creator is stripped from it: a user is exactly one
// of creator, participant, or outsider.
func Renovation(rec remote.RenovationRecord) domain.Renovation {
	seen := make(map[string]struct{}, len(rec.ParticipantsUIDs))
	participants := make([]string, 0, len(rec.ParticipantsUIDs))
	for _, uid := range rec.ParticipantsUIDs {
		if uid == "" || uid == rec.CreatorUID {
			continue
		}
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		participants = append(participants, uid)
	}
	return domain.Renovation{
		ID:               rec.ID,
		RefugeID:         rec.RefugeID,
		StartDate:        rec.StartDate,
		EndDate:          rec.EndDate,
		Description:      rec.Description,
		Materials:        rec.Materials,
		GroupChatLink:    rec.GroupChatLink,
		CreatorUID:       rec.CreatorUID,
		CreatedAt:        parseTime(rec.CreatedAt),
		ParticipantsUIDs: participants,
	}
}

// Renovations maps a renovation list.
func Renovations(recs []remote.RenovationRecord) []domain.Renovation {
	out := make([]domain.Renovation, len(recs))
	for i, r := range recs {
		out[i] = Renovation(r)
	}
	return out
}
