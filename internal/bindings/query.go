package bindings

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mterrades/go-refuge-sync/internal/cache"
)

// DefaultReadRetries is how many extra attempts a failed read gets before the
// error is surfaced. Writes are never retried.
const DefaultReadRetries = 2

// Snapshot is the typed view a query binding hands to its subscribers.
type Snapshot[T any] struct {
	Data        T
	HasData     bool
	IsLoading   bool
	IsError     bool
	Err         error
	FetchStatus cache.FetchStatus
	Stale       bool
}

// Query binds one parameterized read to a cache slot. KeyFn resolves the slot
// address from current parameters; returning ok=false disables the query
// (navigation parameter not known yet), which short-circuits fetching and
// discards any fetch already in flight.
type Query[T any] struct {
	Store   *cache.Store
	KeyFn   func() (cache.Key, bool)
	FetchFn func(ctx context.Context) (T, error)
	// Retries is the number of extra read attempts after a failure; negative
	// means none, zero means DefaultReadRetries.
	Retries int
	Log     zerolog.Logger

	handle   cache.FetchHandle
	inFlight bool
}

// Snapshot returns the typed view of the bound slot. A disabled or unknown
// slot yields a zero snapshot with HasData=false.
func (q *Query[T]) Snapshot() Snapshot[T] {
	key, ok := q.KeyFn()
	if !ok {
		return Snapshot[T]{}
	}
	raw, ok := q.Store.Get(key)
	if !ok {
		return Snapshot[T]{}
	}
	return typedSnapshot[T](raw)
}

// Subscribe registers fn for typed snapshots of the bound slot. fn runs
// immediately with the current state and again on every slot change. A
// disabled query invokes fn once with the zero snapshot and subscribes to
// nothing. The returned function unsubscribes; once the last subscriber of
// the slot detaches, the store's garbage-collection clock starts.
func (q *Query[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	key, ok := q.KeyFn()
	if !ok {
		if fn != nil {
			fn(Snapshot[T]{})
		}
		return func() {}
	}
	return q.Store.Subscribe(key, func(raw cache.Snapshot) {
		fn(typedSnapshot[T](raw))
	})
}

// Sync brings the bound slot up to date: a fresh slot is left alone, anything
// else (absent, stale, errored) triggers a fetch. Stale data keeps being
// served while the fetch runs. Sync blocks until the fetch settles; callers
// wanting background revalidation run it on their own goroutine.
//
// On a disabled query Sync cancels any in-flight fetch so a late result
// cannot land after the parameters changed away.
func (q *Query[T]) Sync(ctx context.Context) error {
	key, ok := q.KeyFn()
	if !ok {
		if q.inFlight {
			q.handle.Cancel()
			q.inFlight = false
		}
		return nil
	}
	if q.Store.Fresh(key) {
		return nil
	}
	return q.fetch(ctx, key)
}

// Refetch forces a fetch regardless of freshness.
func (q *Query[T]) Refetch(ctx context.Context) error {
	key, ok := q.KeyFn()
	if !ok {
		return nil
	}
	return q.fetch(ctx, key)
}

func (q *Query[T]) fetch(ctx context.Context, key cache.Key) error {
	h := q.Store.BeginFetch(key)
	q.handle = h
	q.inFlight = true
	defer func() { q.inFlight = false }()

	retries := q.Retries
	if retries == 0 {
		retries = DefaultReadRetries
	}
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		value, err := q.FetchFn(ctx)
		if err == nil {
			h.Resolve(value)
			return nil
		}
		lastErr = err
		q.Log.Debug().Err(err).Str("key", key.String()).Int("attempt", attempt+1).Msg("query fetch failed")
	}
	h.Fail(lastErr)
	return lastErr
}

// typedSnapshot narrows a raw slot snapshot to T. A slot holding a value of a
// different type (or nothing yet) reports HasData=false.
func typedSnapshot[T any](raw cache.Snapshot) Snapshot[T] {
	out := Snapshot[T]{
		IsLoading:   raw.Status == cache.StatusLoading,
		IsError:     raw.Status == cache.StatusError,
		Err:         raw.Err,
		FetchStatus: raw.FetchStatus,
		Stale:       raw.Stale,
	}
	if v, ok := raw.Data.(T); ok && raw.Status == cache.StatusSuccess {
		out.Data = v
		out.HasData = true
	}
	return out
}
