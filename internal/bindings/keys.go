// Package bindings implements the per-entity query and mutation bindings:
// read accessors that subscribe a UI unit to a cache slot and refetch per
// the staleness policy, and write accessors that call the remote layer and
// apply patch requests to every affected slot on success.
package bindings

import "github.com/mterrades/go-refuge-sync/internal/cache"

// The cache key namespace. These shapes are part of the app's contract:
// every list/detail screen and every mutation patch addresses slots through
// these builders and nothing else.

// DoubtsKey addresses the doubt list of a refuge.
func DoubtsKey(refugeID string) cache.Key {
	return cache.Key{"doubts", "refuge", refugeID}
}

// RefugeVisitsKey addresses the per-date visit aggregates of a refuge.
func RefugeVisitsKey(refugeID string) cache.Key {
	return cache.Key{"refugeVisits", "refuge", refugeID}
}

// UserVisitsKey addresses the visit aggregates of one user across refuges.
func UserVisitsKey(uid string) cache.Key {
	return cache.Key{"refugeVisits", "user", uid}
}

// RenovationDetailKey addresses one renovation.
func RenovationDetailKey(id string) cache.Key {
	return cache.Key{"renovations", "detail", id}
}

// RenovationListKey addresses the global renovation list.
func RenovationListKey() cache.Key {
	return cache.Key{"renovations", "list"}
}

// RefugeDetailKey addresses one refuge.
func RefugeDetailKey(id string) cache.Key {
	return cache.Key{"refuges", "detail", id}
}

// RefugeListKey addresses the refuge directory.
func RefugeListKey() cache.Key {
	return cache.Key{"refuges", "list"}
}
