package occupancy

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/mterrades/go-refuge-sync/internal/bindings"
	"github.com/mterrades/go-refuge-sync/internal/domain"
)

// Mode is the engine's interaction state.
type Mode int

const (
	// ModeNone: browsing the calendar, no form open.
	ModeNone Mode = iota
	// ModeAdd: registration form open for a day without a self-registration.
	ModeAdd
	// ModeEdit: registration form open over the caller's existing row.
	ModeEdit
)

// Sentinel errors for rejected transitions.
var (
	ErrNoSelection        = errors.New("occupancy: no day selected")
	ErrPastDate           = errors.New("occupancy: day is before today")
	ErrDisclaimerRequired = errors.New("occupancy: disclaimer not yet confirmed")
	ErrAlreadyRegistered  = errors.New("occupancy: caller already registered on this day")
	ErrNotRegistered      = errors.New("occupancy: caller has no registration on this day")
	ErrInvalidCount       = errors.New("occupancy: visitor count must be a positive integer")
	ErrNoPendingDelete    = errors.New("occupancy: no delete awaiting confirmation")
	ErrFormOpen           = errors.New("occupancy: a form is already open")
)

// CapacityWarning flags a successful write that pushed a day's total above
// the refuge's known capacity. It is informational only: the registration
// stands and the cache was patched normally.
type CapacityWarning struct {
	Date          Date
	TotalVisitors int
	Capacity      int
}

// Engine drives one calendar session for one (refuge, user) pair. It is a
// single-session object meant to live as long as the calendar screen; it is
// not safe for concurrent use.
type Engine struct {
	visits   *bindings.Visits
	refugeID string
	userUID  string
	// capacity is the refuge's known bed count; nil disables the warning.
	capacity *int
	today    func() Date
	log      zerolog.Logger

	query *bindings.Query[[]domain.RefugeVisit]

	mode          Mode
	selected      Date
	hasSelection  bool
	disclaimerOK  bool
	pendingDelete bool
	validationErr error
}

// NewEngine builds an engine over the visit bindings. today is injected so
// the past-date rule is resolved by the calendar's own date computation.
func NewEngine(visits *bindings.Visits, refugeID, userUID string, capacity *int, today func() Date, log zerolog.Logger) *Engine {
	e := &Engine{
		visits:   visits,
		refugeID: refugeID,
		userUID:  userUID,
		capacity: capacity,
		today:    today,
		log:      log,
	}
	e.query = visits.RefugeQuery(func() string { return refugeID })
	return e
}

// Mode returns the current interaction state.
func (e *Engine) Mode() Mode { return e.mode }

// Selected returns the selected day, ok=false when nothing is selected.
func (e *Engine) Selected() (Date, bool) { return e.selected, e.hasSelection }

// ValidationErr returns the form error from the last rejected Submit, if the
// engine is still sitting in the form state.
func (e *Engine) ValidationErr() error { return e.validationErr }

// Sync brings the underlying refuge-visits slot up to date.
func (e *Engine) Sync(ctx context.Context) error {
	return e.query.Sync(ctx)
}

// DayOccupancy returns the aggregate for one day out of the refuge-visits
// slot. ok=false when the slot has no data or the day has no visits.
func (e *Engine) DayOccupancy(day Date) (domain.RefugeVisit, bool) {
	snap := e.query.Snapshot()
	if !snap.HasData {
		return domain.RefugeVisit{}, false
	}
	key := day.String()
	for _, v := range snap.Data {
		if v.Date == key {
			return v, true
		}
	}
	return domain.RefugeVisit{}, false
}

// Select picks a day. Re-selection always clears any in-progress form,
// pending delete, and error. Days strictly before today are never
// selectable.
func (e *Engine) Select(day Date) error {
	e.clearForm()
	if day.Before(e.today()) {
		e.hasSelection = false
		return ErrPastDate
	}
	e.selected = day
	e.hasSelection = true
	return nil
}

// ConfirmDisclaimer opens the one-way per-session gate in front of the add
// form. It is not persisted across sessions.
func (e *Engine) ConfirmDisclaimer() {
	e.disclaimerOK = true
}

// OpenAdd opens the registration form for the selected day. The day must
// have no self-registration and the session's disclaimer must have been
// confirmed first.
func (e *Engine) OpenAdd() error {
	if e.mode != ModeNone {
		return ErrFormOpen
	}
	if !e.hasSelection {
		return ErrNoSelection
	}
	if agg, ok := e.DayOccupancy(e.selected); ok && agg.IsVisitor {
		return ErrAlreadyRegistered
	}
	if !e.disclaimerOK {
		return ErrDisclaimerRequired
	}
	e.mode = ModeAdd
	e.validationErr = nil
	return nil
}

// OpenEdit opens the form over the caller's existing registration on the
// selected day, prefilled via DayOccupancy. No disclaimer applies to edits.
func (e *Engine) OpenEdit() error {
	if e.mode != ModeNone {
		return ErrFormOpen
	}
	if !e.hasSelection {
		return ErrNoSelection
	}
	if agg, ok := e.DayOccupancy(e.selected); !ok || !agg.IsVisitor {
		return ErrNotRegistered
	}
	e.mode = ModeEdit
	e.validationErr = nil
	return nil
}

// Submit runs the open form: create in add mode, update in edit mode. A
// non-positive count keeps the form open with a validation error. On success
// the engine returns to none and reports a capacity warning when the
// resulting total exceeds the known capacity; the warning never blocks or
// rolls back the write.
func (e *Engine) Submit(ctx context.Context, count int) (*CapacityWarning, error) {
	if e.mode != ModeAdd && e.mode != ModeEdit {
		return nil, ErrNoSelection
	}
	if count < 1 {
		e.validationErr = ErrInvalidCount
		return nil, ErrInvalidCount
	}

	in := bindings.VisitInput{
		RefugeID:    e.refugeID,
		Date:        e.selected.String(),
		NumVisitors: count,
		UserUID:     e.userUID,
	}
	var (
		out domain.RefugeVisit
		err error
	)
	if e.mode == ModeAdd {
		out, err = e.visits.Create().Do(ctx, in)
	} else {
		out, err = e.visits.Update().Do(ctx, in)
	}
	if err != nil {
		// Remote failure is not a form validation problem; the form closes
		// and the typed error is surfaced to the caller.
		e.clearForm()
		return nil, err
	}

	e.clearForm()
	if e.capacity != nil && out.TotalVisitors > *e.capacity {
		w := &CapacityWarning{Date: e.selected, TotalVisitors: out.TotalVisitors, Capacity: *e.capacity}
		e.log.Debug().Str("date", in.Date).Int("total", w.TotalVisitors).Int("capacity", w.Capacity).
			Msg("occupancy above capacity")
		return w, nil
	}
	return nil, nil
}

// RequestDelete arms the destructive confirmation for the caller's
// registration on the selected day. The mutation does not run until
// ConfirmDelete.
func (e *Engine) RequestDelete() error {
	if e.mode != ModeNone {
		return ErrFormOpen
	}
	if !e.hasSelection {
		return ErrNoSelection
	}
	if agg, ok := e.DayOccupancy(e.selected); !ok || !agg.IsVisitor {
		return ErrNotRegistered
	}
	e.pendingDelete = true
	return nil
}

// ConfirmDelete runs the armed delete. The selection is cleared regardless
// of outcome.
func (e *Engine) ConfirmDelete(ctx context.Context) error {
	if !e.pendingDelete {
		return ErrNoPendingDelete
	}
	in := bindings.DeleteVisitInput{
		RefugeID: e.refugeID,
		Date:     e.selected.String(),
		UserUID:  e.userUID,
	}
	_, err := e.visits.Delete().Do(ctx, in)
	e.clearForm()
	e.hasSelection = false
	return err
}

// Cancel abandons the open form or the pending delete and returns to none.
func (e *Engine) Cancel() {
	e.clearForm()
}

func (e *Engine) clearForm() {
	e.mode = ModeNone
	e.pendingDelete = false
	e.validationErr = nil
}
