package bindings

import (
	"testing"

	"github.com/mterrades/go-refuge-sync/internal/cache"
	"github.com/mterrades/go-refuge-sync/internal/domain"
)

// seedDoubts installs a fetched doubt list slot for refugeID.
func seedDoubts(store *cache.Store, refugeID string, doubtIDs ...string) {
	list := make([]domain.Doubt, len(doubtIDs))
	for i, id := range doubtIDs {
		list[i] = domain.Doubt{ID: id, RefugeID: refugeID}
	}
	store.Set(DoubtsKey(refugeID), list)
}

// doubtAt returns the doubt at index i of refugeID's list slot.
func doubtAt(t *testing.T, store *cache.Store, refugeID string, i int) domain.Doubt {
	t.Helper()
	snap, ok := store.Get(DoubtsKey(refugeID))
	if !ok {
		t.Fatalf("doubt slot missing")
	}
	list, ok := snap.Data.([]domain.Doubt)
	if !ok || i >= len(list) {
		t.Fatalf("doubt slot = %+v", snap.Data)
	}
	return list[i]
}
