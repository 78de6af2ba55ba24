package cache

import "reflect"

// Entity is implemented by cached values that carry a stable identity within
// a list-shaped slot. For most entities the identity is the record ID; for
// visit aggregates it is the date.
type Entity interface {
	EntityID() string
}

// EntityUpdater computes a new version of one list element. Implementations
// are small named structs carrying only the mutation's payload, so a patch
// stays data and cannot capture a stale copy of the slot: the old value is
// always the one present when the patch is applied.
type EntityUpdater interface {
	// UpdateEntity returns the replacement element. ok=false leaves the
	// element unchanged.
	UpdateEntity(old Entity) (updated Entity, ok bool)
}

// Op tags a patch request variant.
type Op int

const (
	// OpSet replaces the slot value wholesale (detail slots).
	OpSet Op = iota
	// OpPrepend inserts an entity at the head of a list-shaped slot. If the
	// slot does not exist the patch is a no-op: list ordering and filtering
	// semantics are unknown without a fetch, so no singleton is fabricated.
	OpPrepend
	// OpReplace swaps the element matching ID in place, preserving order.
	OpReplace
	// OpUpsert replaces the matching element, or prepends when absent.
	OpUpsert
	// OpRemove deletes the element matching ID.
	OpRemove
	// OpUpdateEntity applies an EntityUpdater to the element matching ID
	// (or to a non-list slot whose value matches ID). Used when a delete
	// must also adjust a denormalized counter in the same step.
	OpUpdateEntity
	// OpInvalidate marks every slot under Key (as a prefix) stale so the
	// next subscriber refetches.
	OpInvalidate
)

// Patch is a tagged patch request applied by the store after a mutation
// succeeds. It is data, not a closure: the store itself interprets the op
// against whatever the slot holds at application time.
type Patch struct {
	Op      Op
	Key     Key
	Value   any           // OpSet payload (any slot shape)
	Entity  Entity        // OpPrepend/OpReplace/OpUpsert payload
	ID      string        // OpReplace/OpUpsert/OpRemove/OpUpdateEntity target
	Updater EntityUpdater // OpUpdateEntity only
}

// applyToValue interprets a patch against the current slot value and returns
// the new value. changed=false means the patch did not apply (absent slot,
// no matching element) and the slot must be left untouched.
func (p Patch) applyToValue(old any) (newValue any, changed bool) {
	switch p.Op {
	case OpSet:
		return p.Value, true
	case OpPrepend:
		return prependToList(old, p.Entity)
	case OpReplace:
		return replaceInList(old, p.ID, p.Entity, false)
	case OpUpsert:
		return replaceInList(old, p.ID, p.Entity, true)
	case OpRemove:
		return removeFromList(old, p.ID)
	case OpUpdateEntity:
		return updateEntity(old, p.ID, p.Updater)
	default:
		return old, false
	}
}

// prependToList builds a new slice with entity at the head. The old value
// must be a slice whose element type matches entity.
func prependToList(old any, entity Entity) (any, bool) {
	lv := reflect.ValueOf(old)
	if !lv.IsValid() || lv.Kind() != reflect.Slice {
		return old, false
	}
	ev := reflect.ValueOf(entity)
	if !ev.Type().AssignableTo(lv.Type().Elem()) {
		return old, false
	}
	out := reflect.MakeSlice(lv.Type(), 0, lv.Len()+1)
	out = reflect.Append(out, ev)
	out = reflect.AppendSlice(out, lv)
	return out.Interface(), true
}

// replaceInList swaps the element whose EntityID matches id, preserving
// order. With upsert=true a missing element is prepended instead.
func replaceInList(old any, id string, entity Entity, upsert bool) (any, bool) {
	lv := reflect.ValueOf(old)
	if !lv.IsValid() || lv.Kind() != reflect.Slice {
		// Detail slot: replace when the current value matches.
		if cur, ok := old.(Entity); ok && cur.EntityID() == id {
			return entity, true
		}
		return old, false
	}
	idx := indexOf(lv, id)
	if idx < 0 {
		if upsert {
			return prependToList(old, entity)
		}
		return old, false
	}
	out := reflect.MakeSlice(lv.Type(), lv.Len(), lv.Len())
	reflect.Copy(out, lv)
	out.Index(idx).Set(reflect.ValueOf(entity))
	return out.Interface(), true
}

// removeFromList deletes the element whose EntityID matches id.
func removeFromList(old any, id string) (any, bool) {
	lv := reflect.ValueOf(old)
	if !lv.IsValid() || lv.Kind() != reflect.Slice {
		return old, false
	}
	idx := indexOf(lv, id)
	if idx < 0 {
		return old, false
	}
	out := reflect.MakeSlice(lv.Type(), 0, lv.Len()-1)
	out = reflect.AppendSlice(out, lv.Slice(0, idx))
	out = reflect.AppendSlice(out, lv.Slice(idx+1, lv.Len()))
	return out.Interface(), true
}

// updateEntity rewrites one element (or a matching scalar slot value) via
// the updater.
func updateEntity(old any, id string, updater EntityUpdater) (any, bool) {
	if updater == nil {
		return old, false
	}
	lv := reflect.ValueOf(old)
	if !lv.IsValid() || lv.Kind() != reflect.Slice {
		cur, ok := old.(Entity)
		if !ok || cur.EntityID() != id {
			return old, false
		}
		updated, ok := updater.UpdateEntity(cur)
		if !ok {
			return old, false
		}
		return updated, true
	}
	idx := indexOf(lv, id)
	if idx < 0 {
		return old, false
	}
	cur, ok := lv.Index(idx).Interface().(Entity)
	if !ok {
		return old, false
	}
	updated, ok := updater.UpdateEntity(cur)
	if !ok {
		return old, false
	}
	out := reflect.MakeSlice(lv.Type(), lv.Len(), lv.Len())
	reflect.Copy(out, lv)
	out.Index(idx).Set(reflect.ValueOf(updated))
	return out.Interface(), true
}

// indexOf finds the element of lv whose EntityID matches id, or -1.
func indexOf(lv reflect.Value, id string) int {
	for i := 0; i < lv.Len(); i++ {
		if e, ok := lv.Index(i).Interface().(Entity); ok && e.EntityID() == id {
			return i
		}
	}
	return -1
}
