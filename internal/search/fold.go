// Package search provides a simple, deterministic, concurrency-safe in-memory
// search index over the refuge directory. It is intentionally small:
//
//   - No logging in the library (callers decide how/what to log)
//   - Unicode-aware, diacritic-insensitive tokenization ("Besiberri" matches
//     "Besibèrri", "refugi" matches "Refugí")
//   - Immutable, read-only index after construction (safe for concurrent use)
//   - Deterministic scoring and sorting (stable order for ties)
//
// Scoring uses Jaccard similarity between the query token set and each
// refuge's token set: score = |Q ∩ R| / |Q ∪ R|.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folder strips combining marks after canonical decomposition, which removes
// accents and diacritics without touching base letters.
var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and removes diacritics. Refuge names in the directory mix
// Catalan, Spanish, and French spellings; folding makes queries typed on any
// keyboard match all of them.
func Fold(s string) string {
	out, _, err := transform.String(folder, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}
