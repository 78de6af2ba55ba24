package search

import (
	"testing"

	"github.com/mterrades/go-refuge-sync/internal/domain"
)

func testRefuges() []domain.Refuge {
	return []domain.Refuge{
		{ID: "r1", Name: "Refugi de Colomèrs", Region: "Val d'Aran", Description: "circ de Colomèrs"},
		{ID: "r2", Name: "Refugi d'Amitges", Region: "Pallars Sobirà", Description: "sota les Agulles d'Amitges"},
		{ID: "r3", Name: "Refugio de Góriz", Region: "Ordesa", Description: "base del Monte Perdido"},
	}
}

func TestFold_StripsDiacritics(t *testing.T) {
	cases := map[string]string{
		"Colomèrs":  "colomers",
		"Góriz":     "goriz",
		"Sobirà":    "sobira",
		"refuge":    "refuge",
		"PERDIDO":   "perdido",
		"d'Amitges": "d'amitges",
	}
	for in, want := range cases {
		if got := Fold(in); got != want {
			t.Errorf("Fold(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestSearch_DiacriticInsensitive(t *testing.T) {
	idx := NewIndex(testRefuges())

	// Unaccented query must match the accented name, and vice versa.
	for _, q := range []string{"colomers", "Colomèrs", "COLOMERS"} {
		res := idx.Search(q, 5)
		if len(res) == 0 || res[0].RefugeID != "r1" {
			t.Fatalf("Search(%q) = %+v; want r1 first", q, res)
		}
	}
	res := idx.Search("góriz monte", 5)
	if len(res) == 0 || res[0].RefugeID != "r3" {
		t.Fatalf("Search(góriz monte) = %+v", res)
	}
}

func TestSearch_NoMatchAndEmptyQuery(t *testing.T) {
	idx := NewIndex(testRefuges())
	if res := idx.Search("zzz", 5); res != nil {
		t.Fatalf("no-match query returned %+v", res)
	}
	if res := idx.Search("   ", 5); res != nil {
		t.Fatalf("blank query returned %+v", res)
	}
	empty := NewIndex(nil)
	if res := empty.Search("colomers", 5); res != nil {
		t.Fatalf("empty index returned %+v", res)
	}
}

func TestSearch_DeterministicTieBreak(t *testing.T) {
	idx := NewIndex([]domain.Refuge{
		{ID: "b", Name: "Estany Llong"},
		{ID: "a", Name: "Estany Gento"},
	})
	res := idx.Search("estany", 5)
	if len(res) != 2 || res[0].RefugeID != "a" || res[1].RefugeID != "b" {
		t.Fatalf("tie order unstable: %+v", res)
	}
}

func TestSearch_CapsResults(t *testing.T) {
	idx := NewIndex(testRefuges())
	if res := idx.Search("refugi refugio", 1); len(res) != 1 {
		t.Fatalf("k=1 returned %d results", len(res))
	}
}
