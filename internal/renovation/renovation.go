// Package renovation implements the participation logic over the renovation
// bindings: pure role derivation, join/leave, creator-gated edit and delete,
// and the conflict branch that carries the overlapping renovation.
package renovation

import (
	"context"
	"errors"

	"github.com/mterrades/go-refuge-sync/internal/bindings"
	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/remote"
)

// Role is a user's relationship to one renovation.
type Role int

const (
	RoleOutsider Role = iota
	RoleParticipant
	RoleCreator
)

// String returns the stable name of the role.
func (r Role) String() string {
	switch r {
	case RoleParticipant:
		return "participant"
	case RoleCreator:
		return "creator"
	default:
		return "outsider"
	}
}

// RoleOf derives uid's role from the renovation itself. It is recomputed on
// every call and never cached, so a join/leave patch is reflected on the
// next read of the slot.
func RoleOf(ren domain.Renovation, uid string) Role {
	if uid == "" {
		return RoleOutsider
	}
	if uid == ren.CreatorUID {
		return RoleCreator
	}
	if ren.HasParticipant(uid) {
		return RoleParticipant
	}
	return RoleOutsider
}

// Overlap extracts the conflicting renovation from a KindConflict error.
// ok=false for any other error shape.
func Overlap(err error) (*domain.Renovation, bool) {
	var de *domain.Error
	if errors.As(err, &de) && de.Kind == domain.KindConflict && de.Overlapping != nil {
		return de.Overlapping, true
	}
	return nil, false
}

// Participation wraps the renovation bindings with role gating for one user.
type Participation struct {
	renovations *bindings.Renovations
	userUID     string
}

// NewParticipation builds the participation wrapper for userUID.
func NewParticipation(renovations *bindings.Renovations, userUID string) *Participation {
	return &Participation{renovations: renovations, userUID: userUID}
}

// Join adds the user to the renovation. Joining one already joined is a
// server-side no-op and the idempotent patch leaves the participant set
// unchanged.
func (p *Participation) Join(ctx context.Context, renovationID string) (domain.Renovation, error) {
	return p.renovations.Join().Do(ctx, bindings.ParticipationInput{
		RenovationID: renovationID,
		UserUID:      p.userUID,
	})
}

// Leave removes the user from the renovation.
func (p *Participation) Leave(ctx context.Context, renovationID string) (domain.Renovation, error) {
	return p.renovations.Leave().Do(ctx, bindings.ParticipationInput{
		RenovationID: renovationID,
		UserUID:      p.userUID,
	})
}

// RemoveParticipant is the creator expelling another participant. The gate
// is pure role derivation on the renovation in hand; no permission fetch.
func (p *Participation) RemoveParticipant(ctx context.Context, ren domain.Renovation, uid string) (domain.Renovation, error) {
	if RoleOf(ren, p.userUID) != RoleCreator {
		return domain.Renovation{}, domain.NewError(domain.KindForbidden, "only the creator can remove participants")
	}
	return p.renovations.Leave().Do(ctx, bindings.ParticipationInput{
		RenovationID: ren.ID,
		UserUID:      uid,
	})
}

// Update edits the renovation, creator only. A date overlap with another
// renovation on the same refuge comes back as a KindConflict error carrying
// the overlapping entity; use Overlap to branch on it.
func (p *Participation) Update(ctx context.Context, ren domain.Renovation, in remote.RenovationInput) (domain.Renovation, error) {
	if RoleOf(ren, p.userUID) != RoleCreator {
		return domain.Renovation{}, domain.NewError(domain.KindForbidden, "only the creator can edit a renovation")
	}
	return p.renovations.Update().Do(ctx, bindings.UpdateInput{ID: ren.ID, Input: in})
}

// Delete removes the renovation, creator only.
func (p *Participation) Delete(ctx context.Context, ren domain.Renovation) error {
	if RoleOf(ren, p.userUID) != RoleCreator {
		return domain.NewError(domain.KindForbidden, "only the creator can delete a renovation")
	}
	_, err := p.renovations.Delete().Do(ctx, ren.ID)
	return err
}
