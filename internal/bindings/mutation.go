package bindings

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mterrades/go-refuge-sync/internal/cache"
)

// Mutation binds one write operation to the cache slots it affects. RunFn
// performs the remote call exactly once: writes are never retried, since a
// timed-out request may still have committed server-side and a retry would
// double-apply it.
//
// PatchFn derives the patch requests from the input and the server's
// response. Patches are applied only after RunFn succeeds; nothing is
// written optimistically, so a failed mutation leaves the cache exactly as
// it was and there is no rollback path.
type Mutation[In, Out any] struct {
	Store   *cache.Store
	RunFn   func(ctx context.Context, in In) (Out, error)
	PatchFn func(in In, out Out) []cache.Patch
	Log     zerolog.Logger
}

// Do executes the mutation and, on success, applies its patches in order.
func (m *Mutation[In, Out]) Do(ctx context.Context, in In) (Out, error) {
	out, err := m.RunFn(ctx, in)
	if err != nil {
		var zero Out
		return zero, err
	}
	if m.PatchFn != nil {
		for _, p := range m.PatchFn(in, out) {
			if !m.Store.ApplyPatch(p) {
				m.Log.Debug().Str("key", p.Key.String()).Int("op", int(p.Op)).Msg("mutation patch was a no-op")
			}
		}
	}
	return out, nil
}
