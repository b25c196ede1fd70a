package tablestate

import "testing"

func TestClampPageIndex(t *testing.T) {
	cases := []struct {
		name        string
		index       int
		total       int
		policy      ResetPolicy
		want        int
		wantChanged bool
	}{
		{"in range", 2, 3, ResetFirst, 2, false},
		{"past end to first", 5, 3, ResetFirst, 0, true},
		{"past end to last", 5, 3, ResetLast, 2, true},
		{"exactly at count", 3, 3, ResetFirst, 0, true},
		{"zero pages is a no-op", 7, 0, ResetFirst, 7, false},
	}
	for _, tc := range cases {
		got, changed := ClampPageIndex(tc.index, tc.total, tc.policy)
		if got != tc.want || changed != tc.wantChanged {
			t.Fatalf("%s: expected (%d, %v); got (%d, %v)", tc.name, tc.want, tc.wantChanged, got, changed)
		}
	}
}

func TestEnsurePageInRangeWritesExactlyOnce(t *testing.T) {
	mem := NewMemory(Address{"page": {"6"}})
	s := New(usersConfig(), mem)

	before := mem.Writes
	if !s.EnsurePageInRange(3, ResetFirst) {
		t.Fatal("expected a correction for page index 5 of 3 pages")
	}
	if s.EnsurePageInRange(3, ResetFirst) {
		t.Fatal("expected the corrected state to need no further write")
	}
	if s.EnsurePageInRange(3, ResetFirst) {
		t.Fatal("expected repeated calls to stay idempotent")
	}
	if got := mem.Writes - before; got != 1 {
		t.Fatalf("expected exactly one corrective write; got %d", got)
	}
	if got := s.State().Pagination.PageIndex; got != 0 {
		t.Fatalf("expected page index 0; got %d", got)
	}
	if _, ok := mem.Read()["page"]; ok {
		t.Fatal("expected the corrected first page to drop the page key")
	}
}

func TestEnsurePageInRangeResetLast(t *testing.T) {
	mem := NewMemory(Address{"page": {"6"}})
	s := New(usersConfig(), mem)

	if !s.EnsurePageInRange(3, ResetLast) {
		t.Fatal("expected a correction")
	}
	if got := s.State().Pagination.PageIndex; got != 2 {
		t.Fatalf("expected last page index 2; got %d", got)
	}
	if v, _ := mem.Read().Get("page"); v != "3" {
		t.Fatalf("expected page=3 in the address; got %q", v)
	}
}

func TestEnsurePageInRangeKeepsPageSize(t *testing.T) {
	mem := NewMemory(Address{"page": {"9"}, "pageSize": {"25"}})
	s := New(usersConfig(), mem)

	s.EnsurePageInRange(2, ResetFirst)
	st := s.State()
	if st.Pagination.PageSize != 25 {
		t.Fatalf("expected page size preserved; got %d", st.Pagination.PageSize)
	}
	if v, _ := mem.Read().Get("pageSize"); v != "25" {
		t.Fatalf("expected pageSize=25 kept in address; got %q", v)
	}
}
