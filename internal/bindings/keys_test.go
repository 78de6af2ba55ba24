package bindings

import "testing"

func TestKeyNamespace(t *testing.T) {
	cases := []struct {
		got  string
		want string
	}{
		{DoubtsKey("r1").String(), "doubts/refuge/r1"},
		{RefugeVisitsKey("r1").String(), "refugeVisits/refuge/r1"},
		{UserVisitsKey("u1").String(), "refugeVisits/user/u1"},
		{RenovationDetailKey("ren1").String(), "renovations/detail/ren1"},
		{RenovationListKey().String(), "renovations/list"},
		{RefugeDetailKey("r1").String(), "refuges/detail/r1"},
		{RefugeListKey().String(), "refuges/list"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("key = %q; want %q", c.got, c.want)
		}
	}
}

func TestKeyNamespace_ListAndDetailShareEntityPrefix(t *testing.T) {
	// Invalidating the renovations prefix must reach both views.
	pfx := RenovationListKey()[:1]
	if !RenovationListKey().HasPrefix(pfx) || !RenovationDetailKey("x").HasPrefix(pfx) {
		t.Fatalf("renovation keys do not share the entity prefix")
	}
}
