package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Status describes the lifecycle of a slot's data.
type Status int

const (
	// StatusIdle: slot exists (a subscriber arrived) but nothing was fetched.
	StatusIdle Status = iota
	// StatusLoading: first fetch in flight, no data to serve yet.
	StatusLoading
	// StatusSuccess: slot holds data from a resolved fetch or patch.
	StatusSuccess
	// StatusError: the last fetch failed and there is no data to fall back on.
	StatusError
)

// FetchStatus describes whether a fetch is currently in flight for the slot,
// independent of whether stale data is being served meanwhile.
type FetchStatus int

const (
	FetchIdle FetchStatus = iota
	FetchActive
)

// Snapshot is the read-only view of a slot handed to subscribers and
// callers. Data remains whatever the slot held last, even while stale or
// while a refetch is in flight (stale-while-revalidate).
type Snapshot struct {
	Key         Key
	Data        any
	Status      Status
	FetchStatus FetchStatus
	Err         error
	UpdatedAt   time.Time
	Stale       bool
}

type subscriberFn func(Snapshot)

// slot is one addressable unit of cached data plus fetch metadata.
type slot struct {
	key         Key
	data        any
	status      Status
	fetchStatus FetchStatus
	err         error
	updatedAt   time.Time
	stale       bool // forced stale by invalidation

	// gen tags the most recently initiated fetch; resolutions carrying an
	// older generation are discarded so a superseded fetch can never
	// overwrite a newer one's result.
	gen uint64

	subscribers map[int]subscriberFn
	nextSubID   int
	lastDetach  time.Time // when the subscriber count last hit zero
}

// Options configures a Store.
type Options struct {
	// StaleTTL is the freshness window: within it a slot is served without
	// triggering a background refetch.
	StaleTTL time.Duration
	// GCTTL is how long a slot with zero subscribers survives before the
	// janitor evicts it, regardless of freshness.
	GCTTL time.Duration
	// Now is the clock; defaults to time.Now. Injected for tests.
	Now func() time.Time
	// Logger receives debug-level store events.
	Logger zerolog.Logger
	// Metrics is optional; nil disables instrumentation.
	Metrics *Metrics
}

// Store is the process-wide reactive cache. It is explicitly constructed and
// passed by reference (never a package global) so tests can run isolated
// stores, and it is mutex-guarded: the mobile original relied on cooperative
// single-threaded scheduling, which Go code must not assume.
type Store struct {
	mu    sync.Mutex
	slots map[string]*slot
	index []string // sorted canonical keys, backs prefix invalidation

	staleTTL time.Duration
	gcTTL    time.Duration
	now      func() time.Time
	log      zerolog.Logger
	metrics  *Metrics
}

// New constructs a Store from options, applying defaults for zero values
// (9m staleness, 15m garbage collection).
func New(opts Options) *Store {
	if opts.StaleTTL <= 0 {
		opts.StaleTTL = 9 * time.Minute
	}
	if opts.GCTTL <= 0 {
		opts.GCTTL = 15 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		slots:    make(map[string]*slot),
		staleTTL: opts.StaleTTL,
		gcTTL:    opts.GCTTL,
		now:      opts.Now,
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
}

// Len returns the number of live slots.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Get returns the current snapshot for key. ok=false means no slot exists.
func (s *Store) Get(key Key) (Snapshot, bool) {
	s.mu.Lock()
	sl, ok := s.slots[key.String()]
	var snap Snapshot
	if ok {
		snap = s.snapshotLocked(sl)
	}
	s.mu.Unlock()

	if m := s.metrics; m != nil {
		if ok && snap.Status == StatusSuccess {
			m.Hits.Inc()
		} else {
			m.Misses.Inc()
		}
	}
	return snap, ok
}

// Set stores a literal value, creating the slot if needed, and marks it
// fresh as of now.
func (s *Store) Set(key Key, value any) {
	s.mu.Lock()
	sl := s.ensureLocked(key)
	sl.data = value
	sl.status = StatusSuccess
	sl.err = nil
	sl.stale = false
	sl.updatedAt = s.now()
	notify := s.collectNotifyLocked(sl)
	s.mu.Unlock()
	notify()
}

// Update applies a pure function to the slot's current value. The function
// always sees the value present at application time, which makes patches
// race-safe against concurrent refetches. Absent slots are not created and
// the update is a no-op on them.
func (s *Store) Update(key Key, fn func(old any) any) bool {
	s.mu.Lock()
	sl, ok := s.slots[key.String()]
	if !ok || fn == nil {
		s.mu.Unlock()
		return false
	}
	sl.data = fn(sl.data)
	sl.status = StatusSuccess
	sl.err = nil
	sl.stale = false
	sl.updatedAt = s.now()
	notify := s.collectNotifyLocked(sl)
	s.mu.Unlock()
	notify()
	return true
}

// ApplyPatch interprets a tagged patch request against the addressed slot.
// It returns whether the patch changed anything. OpInvalidate treats the key
// as a prefix; OpSet creates the slot when absent (the payload is the
// authoritative entity just returned by the remote); every other op is a
// no-op on absent slots.
func (s *Store) ApplyPatch(p Patch) bool {
	if p.Op == OpInvalidate {
		return s.Invalidate(p.Key) > 0
	}

	s.mu.Lock()
	keyStr := p.Key.String()
	sl, ok := s.slots[keyStr]
	if !ok {
		if p.Op != OpSet {
			s.mu.Unlock()
			return false
		}
		sl = s.ensureLocked(p.Key)
	}
	newValue, changed := p.applyToValue(sl.data)
	if !changed {
		s.mu.Unlock()
		return false
	}
	sl.data = newValue
	sl.status = StatusSuccess
	sl.err = nil
	sl.stale = false
	sl.updatedAt = s.now()
	notify := s.collectNotifyLocked(sl)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Patches.Inc()
	}
	s.log.Debug().Str("key", keyStr).Int("op", int(p.Op)).Msg("cache patch applied")
	notify()
	return true
}

// Invalidate marks every slot under prefix as stale. Data is kept and keeps
// being served; the next subscriber triggers a refetch. Returns the number
// of slots touched.
func (s *Store) Invalidate(prefix Key) int {
	pfx := prefix.String()
	var notifies []func()

	s.mu.Lock()
	n := 0
	start := sort.SearchStrings(s.index, pfx)
	for i := start; i < len(s.index) && strings.HasPrefix(s.index[i], pfx); i++ {
		k := s.index[i]
		// Segment boundary: "doubts" must not invalidate "doubtsX".
		if k != pfx && !strings.HasPrefix(k, pfx+"/") {
			continue
		}
		sl := s.slots[k]
		sl.stale = true
		notifies = append(notifies, s.collectNotifyLocked(sl))
		n++
	}
	s.mu.Unlock()

	for _, f := range notifies {
		f()
	}
	return n
}

// Fresh reports whether key holds successful data inside the staleness
// window and not forced stale by invalidation.
func (s *Store) Fresh(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[key.String()]
	if !ok {
		return false
	}
	return s.freshLocked(sl)
}

func (s *Store) freshLocked(sl *slot) bool {
	return sl.status == StatusSuccess && !sl.stale && s.now().Sub(sl.updatedAt) < s.staleTTL
}

// Subscribe registers fn for snapshots of key, creating an idle slot when
// none exists. fn is invoked immediately with the current snapshot and again
// on every change. The returned function unsubscribes; when the last
// subscriber detaches the garbage-collection clock starts.
func (s *Store) Subscribe(key Key, fn subscriberFn) (unsubscribe func()) {
	s.mu.Lock()
	sl := s.ensureLocked(key)
	id := sl.nextSubID
	sl.nextSubID++
	if fn != nil {
		sl.subscribers[id] = fn
	}
	snap := s.snapshotLocked(sl)
	s.mu.Unlock()

	if fn != nil {
		fn(snap)
	}

	keyStr := key.String()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if sl, ok := s.slots[keyStr]; ok {
				delete(sl.subscribers, id)
				if len(sl.subscribers) == 0 {
					sl.lastDetach = s.now()
				}
			}
			s.mu.Unlock()
		})
	}
}

// Subscribers returns the current subscriber count for key.
func (s *Store) Subscribers(key Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[key.String()]; ok {
		return len(sl.subscribers)
	}
	return 0
}

// FetchHandle tags one in-flight fetch. Resolve/Fail apply only while this
// handle is still the most recently initiated fetch for the key.
type FetchHandle struct {
	store  *Store
	keyStr string
	gen    uint64
}

// BeginFetch marks a fetch as in flight for key and returns its handle.
// Starting a newer fetch supersedes all earlier handles for the key.
func (s *Store) BeginFetch(key Key) FetchHandle {
	s.mu.Lock()
	sl := s.ensureLocked(key)
	sl.gen++
	gen := sl.gen
	sl.fetchStatus = FetchActive
	hadData := sl.status == StatusSuccess
	if sl.status == StatusIdle || sl.status == StatusError {
		sl.status = StatusLoading
	}
	notify := s.collectNotifyLocked(sl)
	s.mu.Unlock()

	if s.metrics != nil && hadData {
		s.metrics.Refetches.Inc()
	}
	notify()
	return FetchHandle{store: s, keyStr: sl.key.String(), gen: gen}
}

// Resolve commits the fetch result. It reports false when the handle was
// superseded or cancelled, in which case the result is discarded.
func (h FetchHandle) Resolve(value any) bool {
	s := h.store
	if s == nil {
		return false
	}
	s.mu.Lock()
	sl, ok := s.slots[h.keyStr]
	if !ok || sl.gen != h.gen {
		s.mu.Unlock()
		s.log.Debug().Str("key", h.keyStr).Msg("stale fetch result discarded")
		return false
	}
	sl.data = value
	sl.status = StatusSuccess
	sl.err = nil
	sl.stale = false
	sl.fetchStatus = FetchIdle
	sl.updatedAt = s.now()
	notify := s.collectNotifyLocked(sl)
	s.mu.Unlock()
	notify()
	return true
}

// Fail records the fetch failure on the slot's error field. Data already in
// the slot is kept and keeps being served; only a slot with nothing to serve
// transitions to StatusError.
func (h FetchHandle) Fail(err error) bool {
	s := h.store
	if s == nil {
		return false
	}
	s.mu.Lock()
	sl, ok := s.slots[h.keyStr]
	if !ok || sl.gen != h.gen {
		s.mu.Unlock()
		return false
	}
	sl.err = err
	sl.fetchStatus = FetchIdle
	if sl.status != StatusSuccess {
		sl.status = StatusError
	}
	notify := s.collectNotifyLocked(sl)
	s.mu.Unlock()
	notify()
	return true
}

// Cancel declares the handle's result no longer authoritative (the query
// became disabled). The network request itself is not aborted; its eventual
// resolution is simply discarded.
func (h FetchHandle) Cancel() {
	s := h.store
	if s == nil {
		return
	}
	s.mu.Lock()
	if sl, ok := s.slots[h.keyStr]; ok && sl.gen == h.gen {
		sl.gen++
		sl.fetchStatus = FetchIdle
	}
	s.mu.Unlock()
}

// Sweep evicts every slot that has had zero subscribers for at least the
// garbage-collection window, regardless of staleness. Returns the number of
// evicted slots.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	evicted := 0
	for keyStr, sl := range s.slots {
		if len(sl.subscribers) > 0 {
			continue
		}
		if now.Sub(sl.lastDetach) < s.gcTTL {
			continue
		}
		delete(s.slots, keyStr)
		s.dropFromIndexLocked(keyStr)
		evicted++
	}
	if s.metrics != nil {
		s.metrics.Slots.Set(float64(len(s.slots)))
	}
	s.mu.Unlock()

	if evicted > 0 {
		if s.metrics != nil {
			s.metrics.Evictions.Add(float64(evicted))
		}
		s.log.Debug().Int("evicted", evicted).Msg("cache sweep")
	}
	return evicted
}

// StartJanitor runs periodic sweeps until ctx is done.
func (s *Store) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				s.Sweep(now)
			}
		}
	}()
}

// ---- internals ----

// ensureLocked returns the slot for key, creating an idle one when absent.
func (s *Store) ensureLocked(key Key) *slot {
	keyStr := key.String()
	if sl, ok := s.slots[keyStr]; ok {
		return sl
	}
	sl := &slot{
		key:         key.Clone(),
		status:      StatusIdle,
		subscribers: make(map[int]subscriberFn),
		lastDetach:  s.now(),
	}
	s.slots[keyStr] = sl
	i := sort.SearchStrings(s.index, keyStr)
	s.index = append(s.index, "")
	copy(s.index[i+1:], s.index[i:])
	s.index[i] = keyStr
	if s.metrics != nil {
		s.metrics.Slots.Set(float64(len(s.slots)))
	}
	return sl
}

func (s *Store) dropFromIndexLocked(keyStr string) {
	i := sort.SearchStrings(s.index, keyStr)
	if i < len(s.index) && s.index[i] == keyStr {
		s.index = append(s.index[:i], s.index[i+1:]...)
	}
}

func (s *Store) snapshotLocked(sl *slot) Snapshot {
	return Snapshot{
		Key:         sl.key.Clone(),
		Data:        sl.data,
		Status:      sl.status,
		FetchStatus: sl.fetchStatus,
		Err:         sl.err,
		UpdatedAt:   sl.updatedAt,
		Stale:       sl.stale || (sl.status == StatusSuccess && s.now().Sub(sl.updatedAt) >= s.staleTTL),
	}
}

// collectNotifyLocked captures the subscriber callbacks and current snapshot
// while locked, returning a function to invoke them after unlock.
func (s *Store) collectNotifyLocked(sl *slot) func() {
	if len(sl.subscribers) == 0 {
		return func() {}
	}
	snap := s.snapshotLocked(sl)
	fns := make([]subscriberFn, 0, len(sl.subscribers))
	for _, fn := range sl.subscribers {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(snap)
		}
	}
}
