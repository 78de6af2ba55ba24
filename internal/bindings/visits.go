package bindings

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mterrades/go-refuge-sync/internal/cache"
	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/mapper"
	"github.com/mterrades/go-refuge-sync/internal/remote"
)

// Visits exposes the occupancy bindings: the per-refuge aggregate list, the
// per-user visit list, and the three registration writes.
//
// The two read views are patched asymmetrically on purpose. The refuge list
// is exactly what the write endpoints return, so it is patched in place; the
// per-user list spans refuges and is shaped by server-side joins, so it is
// only invalidated and rebuilt on its next fetch.
type Visits struct {
	store  *cache.Store
	client *remote.Client
	log    zerolog.Logger
}

// NewVisits wires the visit bindings to a store and remote client.
func NewVisits(store *cache.Store, client *remote.Client, log zerolog.Logger) *Visits {
	return &Visits{store: store, client: client, log: log}
}

// RefugeQuery binds the per-date aggregates of one refuge.
func (v *Visits) RefugeQuery(refugeID func() string) *Query[[]domain.RefugeVisit] {
	return &Query[[]domain.RefugeVisit]{
		Store: v.store,
		KeyFn: func() (cache.Key, bool) {
			id := refugeID()
			if id == "" {
				return nil, false
			}
			return RefugeVisitsKey(id), true
		},
		FetchFn: func(ctx context.Context) ([]domain.RefugeVisit, error) {
			recs, err := v.client.ListRefugeVisits(ctx, refugeID())
			if err != nil {
				return nil, err
			}
			return mapper.Visits(recs), nil
		},
		Log: v.log,
	}
}

// UserQuery binds the visit list of one user across refuges.
func (v *Visits) UserQuery(uid func() string) *Query[[]domain.RefugeVisit] {
	return &Query[[]domain.RefugeVisit]{
		Store: v.store,
		KeyFn: func() (cache.Key, bool) {
			u := uid()
			if u == "" {
				return nil, false
			}
			return UserVisitsKey(u), true
		},
		FetchFn: func(ctx context.Context) ([]domain.RefugeVisit, error) {
			recs, err := v.client.ListUserVisits(ctx, uid())
			if err != nil {
				return nil, err
			}
			return mapper.Visits(recs), nil
		},
		Log: v.log,
	}
}

// VisitInput parameterizes a registration write. Date uses
// domain.DateLayout; UserUID addresses the caller's own visit list slot.
type VisitInput struct {
	RefugeID    string
	Date        string
	NumVisitors int
	UserUID     string
}

// Create registers the caller's group on a (refuge, date). The returned
// aggregate upserts into the refuge slot, keyed by date; the user slot is
// invalidated.
func (v *Visits) Create() *Mutation[VisitInput, domain.RefugeVisit] {
	return v.write(func(ctx context.Context, in VisitInput) (remote.VisitAggregateRecord, error) {
		return v.client.CreateVisit(ctx, in.RefugeID, in.Date, in.NumVisitors)
	})
}

// Update changes an existing registration. Same patch strategy as Create;
// upsert covers the case where the refuge slot was refetched without the
// caller's row in the meantime.
func (v *Visits) Update() *Mutation[VisitInput, domain.RefugeVisit] {
	return v.write(func(ctx context.Context, in VisitInput) (remote.VisitAggregateRecord, error) {
		return v.client.UpdateVisit(ctx, in.RefugeID, in.Date, in.NumVisitors)
	})
}

func (v *Visits) write(run func(context.Context, VisitInput) (remote.VisitAggregateRecord, error)) *Mutation[VisitInput, domain.RefugeVisit] {
	return &Mutation[VisitInput, domain.RefugeVisit]{
		Store: v.store,
		RunFn: func(ctx context.Context, in VisitInput) (domain.RefugeVisit, error) {
			rec, err := run(ctx, in)
			if err != nil {
				return domain.RefugeVisit{}, err
			}
			return mapper.Visit(rec), nil
		},
		PatchFn: func(in VisitInput, out domain.RefugeVisit) []cache.Patch {
			return []cache.Patch{
				{Op: cache.OpUpsert, Key: RefugeVisitsKey(in.RefugeID), ID: out.Date, Entity: out},
				{Op: cache.OpInvalidate, Key: UserVisitsKey(in.UserUID)},
			}
		},
		Log: v.log,
	}
}

// DeleteVisitInput parameterizes removing the caller's registration.
type DeleteVisitInput struct {
	RefugeID string
	Date     string
	UserUID  string
}

// Delete removes the caller's registration on (refuge, date). The response
// carries no aggregate (other parties may still be registered on the date),
// so both slots are invalidated instead of patched.
func (v *Visits) Delete() *Mutation[DeleteVisitInput, remote.MessageResponse] {
	return &Mutation[DeleteVisitInput, remote.MessageResponse]{
		Store: v.store,
		RunFn: func(ctx context.Context, in DeleteVisitInput) (remote.MessageResponse, error) {
			return v.client.DeleteVisit(ctx, in.RefugeID, in.Date)
		},
		PatchFn: func(in DeleteVisitInput, _ remote.MessageResponse) []cache.Patch {
			return []cache.Patch{
				{Op: cache.OpInvalidate, Key: RefugeVisitsKey(in.RefugeID)},
				{Op: cache.OpInvalidate, Key: UserVisitsKey(in.UserUID)},
			}
		},
		Log: v.log,
	}
}
