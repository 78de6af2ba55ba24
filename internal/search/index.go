package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mterrades/go-refuge-sync/internal/domain"
)

// Result is one ranked refuge with its similarity score.
type Result struct {
	RefugeID string
	Score    float64
}

// Index is the minimal interface implemented by all search indices.
type Index interface {
	Search(query string, k int) []Result
}

type doc struct {
	id     string
	tokens map[string]struct{}
	tLen   int
}

type index struct {
	docs []doc
}

// NewIndex builds an immutable index over the given refuges. Name, region,
// and description all contribute tokens.
func NewIndex(refuges []domain.Refuge) Index {
	docs := make([]doc, 0, len(refuges))
	for _, r := range refuges {
		toks := tokenize(r.Name + " " + r.Region + " " + r.Description)
		if len(toks) == 0 {
			continue
		}
		docs = append(docs, doc{id: r.ID, tokens: toks, tLen: len(toks)})
	}
	return &index{docs: docs}
}

// Search returns up to k best-matching refuges by Jaccard similarity. Ties
// break on refuge ID so the order is stable across calls.
func (i *index) Search(q string, k int) []Result {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 10
	}
	qTokens := tokenize(q)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	buf := make([]Result, 0, len(i.docs))
	for _, d := range i.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + d.tLen - over)
		if union <= 0 {
			continue
		}
		buf = append(buf, Result{RefugeID: d.id, Score: float64(over) / union})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].Score != buf[b].Score {
			return buf[a].Score > buf[b].Score
		}
		return buf[a].RefugeID < buf[b].RefugeID
	})
	if k > len(buf) {
		k = len(buf)
	}
	return buf[:k]
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

// tokenize folds s and splits it into a unique token set.
func tokenize(s string) map[string]struct{} {
	words := wordRE.FindAllString(Fold(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
