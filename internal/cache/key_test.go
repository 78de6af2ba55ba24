package cache

import "testing"

func TestKeyString_Canonical(t *testing.T) {
	a := Key{"doubts", "refuge", "refuge-1"}
	b := Key{"doubts", "refuge", "refuge-1"}
	if a.String() != b.String() {
		t.Fatalf("same parameters must produce the same key: %q vs %q", a, b)
	}
	if a.String() != "doubts/refuge/refuge-1" {
		t.Fatalf("canonical form = %q", a.String())
	}
}

func TestKeyString_DistinctQueriesNeverCollide(t *testing.T) {
	// A segment containing the separator must not alias a deeper key.
	tricky := Key{"doubts", "refuge/refuge-1"}
	plain := Key{"doubts", "refuge", "refuge-1"}
	if tricky.String() == plain.String() {
		t.Fatalf("escaping failed: %q == %q", tricky.String(), plain.String())
	}
	// Percent round-trips through escaping too.
	pct := Key{"a%2Fb"}
	raw := Key{"a/b"}
	if pct.String() == raw.String() {
		t.Fatalf("percent escaping collides: %q", pct.String())
	}
}

func TestKeyHasPrefix(t *testing.T) {
	k := Key{"renovations", "detail", "ren-1"}
	cases := []struct {
		prefix Key
		want   bool
	}{
		{Key{}, true},
		{Key{"renovations"}, true},
		{Key{"renovations", "detail"}, true},
		{Key{"renovations", "detail", "ren-1"}, true},
		{Key{"renovations", "detail", "ren-1", "x"}, false},
		{Key{"renovations", "list"}, false},
		{Key{"refuges"}, false},
	}
	for _, tc := range cases {
		if got := k.HasPrefix(tc.prefix); got != tc.want {
			t.Errorf("HasPrefix(%v) = %v; want %v", tc.prefix, got, tc.want)
		}
	}
}

func TestKeyCloneIsIndependent(t *testing.T) {
	k := Key{"refuges", "detail", "r1"}
	c := k.Clone()
	c[2] = "r2"
	if k[2] != "r1" {
		t.Fatalf("Clone aliases the original")
	}
	if !k.Equal(Key{"refuges", "detail", "r1"}) {
		t.Fatalf("Equal broken")
	}
}
