package bindings

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mterrades/go-refuge-sync/internal/cache"
	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/mapper"
	"github.com/mterrades/go-refuge-sync/internal/remote"
)

// Refuges exposes the read-only refuge directory bindings. Refuges have no
// client-side writes, so there are no mutations here; search bypasses the
// cache entirely because query strings make poor slot keys.
type Refuges struct {
	store  *cache.Store
	client *remote.Client
	log    zerolog.Logger
}

// NewRefuges wires the refuge bindings to a store and remote client.
func NewRefuges(store *cache.Store, client *remote.Client, log zerolog.Logger) *Refuges {
	return &Refuges{store: store, client: client, log: log}
}

// ListQuery binds the refuge directory.
func (r *Refuges) ListQuery() *Query[[]domain.Refuge] {
	return &Query[[]domain.Refuge]{
		Store: r.store,
		KeyFn: func() (cache.Key, bool) { return RefugeListKey(), true },
		FetchFn: func(ctx context.Context) ([]domain.Refuge, error) {
			recs, err := r.client.ListRefuges(ctx)
			if err != nil {
				return nil, err
			}
			return mapper.Refuges(recs), nil
		},
		Log: r.log,
	}
}

// DetailQuery binds one refuge's detail slot.
func (r *Refuges) DetailQuery(id func() string) *Query[domain.Refuge] {
	return &Query[domain.Refuge]{
		Store: r.store,
		KeyFn: func() (cache.Key, bool) {
			v := id()
			if v == "" {
				return nil, false
			}
			return RefugeDetailKey(v), true
		},
		FetchFn: func(ctx context.Context) (domain.Refuge, error) {
			rec, err := r.client.GetRefuge(ctx, id())
			if err != nil {
				return domain.Refuge{}, err
			}
			return mapper.Refuge(rec), nil
		},
		Log: r.log,
	}
}

// Search runs an uncached directory search.
func (r *Refuges) Search(ctx context.Context, q string) ([]domain.Refuge, error) {
	recs, err := r.client.SearchRefuges(ctx, q)
	if err != nil {
		return nil, err
	}
	return mapper.Refuges(recs), nil
}
