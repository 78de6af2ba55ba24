package bindings

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mterrades/go-refuge-sync/internal/cache"
	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/mapper"
	"github.com/mterrades/go-refuge-sync/internal/remote"
)

// Renovations exposes the renovation bindings: the global list, per-id
// detail, creator CRUD, and join/leave participation writes. List and detail
// slots are patched together on every write so the two views never disagree.
type Renovations struct {
	store  *cache.Store
	client *remote.Client
	log    zerolog.Logger
}

// NewRenovations wires the renovation bindings to a store and remote client.
func NewRenovations(store *cache.Store, client *remote.Client, log zerolog.Logger) *Renovations {
	return &Renovations{store: store, client: client, log: log}
}

// ListQuery binds the global renovation list.
func (r *Renovations) ListQuery() *Query[[]domain.Renovation] {
	return &Query[[]domain.Renovation]{
		Store: r.store,
		KeyFn: func() (cache.Key, bool) { return RenovationListKey(), true },
		FetchFn: func(ctx context.Context) ([]domain.Renovation, error) {
			recs, err := r.client.ListRenovations(ctx)
			if err != nil {
				return nil, err
			}
			return mapper.Renovations(recs), nil
		},
		Log: r.log,
	}
}

// DetailQuery binds one renovation's detail slot.
func (r *Renovations) DetailQuery(id func() string) *Query[domain.Renovation] {
	return &Query[domain.Renovation]{
		Store: r.store,
		KeyFn: func() (cache.Key, bool) {
			v := id()
			if v == "" {
				return nil, false
			}
			return RenovationDetailKey(v), true
		},
		FetchFn: func(ctx context.Context) (domain.Renovation, error) {
			rec, err := r.client.GetRenovation(ctx, id())
			if err != nil {
				return domain.Renovation{}, err
			}
			return mapper.Renovation(rec), nil
		},
		Log: r.log,
	}
}

// Create announces a renovation. The stored entity prepends into the list
// and seeds the detail slot. An overlap on the same refuge fails with a
// KindConflict error carrying the existing renovation; no patch is applied.
func (r *Renovations) Create() *Mutation[remote.RenovationInput, domain.Renovation] {
	return &Mutation[remote.RenovationInput, domain.Renovation]{
		Store: r.store,
		RunFn: func(ctx context.Context, in remote.RenovationInput) (domain.Renovation, error) {
			rec, err := r.client.CreateRenovation(ctx, in)
			if err != nil {
				return domain.Renovation{}, err
			}
			return mapper.Renovation(rec), nil
		},
		PatchFn: func(_ remote.RenovationInput, out domain.Renovation) []cache.Patch {
			return []cache.Patch{
				{Op: cache.OpPrepend, Key: RenovationListKey(), Entity: out},
				{Op: cache.OpSet, Key: RenovationDetailKey(out.ID), Value: out},
			}
		},
		Log: r.log,
	}
}

// UpdateInput parameterizes a creator edit.
type UpdateInput struct {
	ID    string
	Input remote.RenovationInput
}

// Update edits a renovation (creator only), replacing it in both views.
func (r *Renovations) Update() *Mutation[UpdateInput, domain.Renovation] {
	return &Mutation[UpdateInput, domain.Renovation]{
		Store: r.store,
		RunFn: func(ctx context.Context, in UpdateInput) (domain.Renovation, error) {
			rec, err := r.client.UpdateRenovation(ctx, in.ID, in.Input)
			if err != nil {
				return domain.Renovation{}, err
			}
			return mapper.Renovation(rec), nil
		},
		PatchFn: func(in UpdateInput, out domain.Renovation) []cache.Patch {
			return []cache.Patch{
				{Op: cache.OpReplace, Key: RenovationListKey(), ID: in.ID, Entity: out},
				{Op: cache.OpSet, Key: RenovationDetailKey(in.ID), Value: out},
			}
		},
		Log: r.log,
	}
}

// Delete removes a renovation (creator only). The list drops the entry; the
// detail slot is invalidated so a screen still open on it refetches into a
// not-found state instead of showing a ghost.
func (r *Renovations) Delete() *Mutation[string, remote.MessageResponse] {
	return &Mutation[string, remote.MessageResponse]{
		Store: r.store,
		RunFn: func(ctx context.Context, id string) (remote.MessageResponse, error) {
			return r.client.DeleteRenovation(ctx, id)
		},
		PatchFn: func(id string, _ remote.MessageResponse) []cache.Patch {
			return []cache.Patch{
				{Op: cache.OpRemove, Key: RenovationListKey(), ID: id},
				{Op: cache.OpInvalidate, Key: RenovationDetailKey(id)},
			}
		},
		Log: r.log,
	}
}

// ParticipationInput parameterizes join and leave.
type ParticipationInput struct {
	RenovationID string
	UserUID      string
}

// Join adds the caller to the participant set. The patch rewrites whatever
// entity each slot holds at apply time, so it composes with concurrent
// refetches and re-applying it is a no-op.
func (r *Renovations) Join() *Mutation[ParticipationInput, domain.Renovation] {
	return &Mutation[ParticipationInput, domain.Renovation]{
		Store: r.store,
		RunFn: func(ctx context.Context, in ParticipationInput) (domain.Renovation, error) {
			rec, err := r.client.JoinRenovation(ctx, in.RenovationID)
			if err != nil {
				return domain.Renovation{}, err
			}
			return mapper.Renovation(rec), nil
		},
		PatchFn: func(in ParticipationInput, _ domain.Renovation) []cache.Patch {
			u := addParticipant{UID: in.UserUID}
			return []cache.Patch{
				{Op: cache.OpUpdateEntity, Key: RenovationListKey(), ID: in.RenovationID, Updater: u},
				{Op: cache.OpUpdateEntity, Key: RenovationDetailKey(in.RenovationID), ID: in.RenovationID, Updater: u},
			}
		},
		Log: r.log,
	}
}

// Leave removes UserUID from the participant set: the caller leaving, or the
// creator removing a participant.
func (r *Renovations) Leave() *Mutation[ParticipationInput, domain.Renovation] {
	return &Mutation[ParticipationInput, domain.Renovation]{
		Store: r.store,
		RunFn: func(ctx context.Context, in ParticipationInput) (domain.Renovation, error) {
			rec, err := r.client.LeaveRenovation(ctx, in.RenovationID, in.UserUID)
			if err != nil {
				return domain.Renovation{}, err
			}
			return mapper.Renovation(rec), nil
		},
		PatchFn: func(in ParticipationInput, _ domain.Renovation) []cache.Patch {
			u := removeParticipant{UID: in.UserUID}
			return []cache.Patch{
				{Op: cache.OpUpdateEntity, Key: RenovationListKey(), ID: in.RenovationID, Updater: u},
				{Op: cache.OpUpdateEntity, Key: RenovationDetailKey(in.RenovationID), ID: in.RenovationID, Updater: u},
			}
		},
		Log: r.log,
	}
}

// addParticipant appends one uid to a renovation's participant set. The
// creator never enters the set, and a uid already present changes nothing.
type addParticipant struct {
	UID string
}

func (u addParticipant) UpdateEntity(old cache.Entity) (cache.Entity, bool) {
	ren, ok := old.(domain.Renovation)
	if !ok || u.UID == "" || u.UID == ren.CreatorUID {
		return old, false
	}
	for _, p := range ren.ParticipantsUIDs {
		if p == u.UID {
			return old, false
		}
	}
	uids := make([]string, 0, len(ren.ParticipantsUIDs)+1)
	uids = append(uids, ren.ParticipantsUIDs...)
	uids = append(uids, u.UID)
	ren.ParticipantsUIDs = uids
	return ren, true
}

// removeParticipant drops one uid from a renovation's participant set.
type removeParticipant struct {
	UID string
}

func (u removeParticipant) UpdateEntity(old cache.Entity) (cache.Entity, bool) {
	ren, ok := old.(domain.Renovation)
	if !ok {
		return old, false
	}
	uids := make([]string, 0, len(ren.ParticipantsUIDs))
	for _, p := range ren.ParticipantsUIDs {
		if p != u.UID {
			uids = append(uids, p)
		}
	}
	if len(uids) == len(ren.ParticipantsUIDs) {
		return old, false
	}
	ren.ParticipantsUIDs = uids
	return ren, true
}
