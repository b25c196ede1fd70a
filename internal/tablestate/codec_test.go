package tablestate

import (
	"reflect"
	"testing"
)

func usersConfig() Config {
	return Config{
		Filters: []FilterConfig{
			{ColumnID: "username", SearchKey: "username", Kind: FilterString},
			{ColumnID: "status", SearchKey: "status", Kind: FilterArray},
			{ColumnID: "role", SearchKey: "role", Kind: FilterArray},
		},
		Sorting:                  SortingConfig{Enabled: true},
		PreserveSearchAfterQuery: true,
	}
}

func tasksConfig() Config {
	return Config{
		Filters: []FilterConfig{
			{ColumnID: "title", SearchKey: "title", Kind: FilterString},
			{ColumnID: "status", SearchKey: "status", Kind: FilterArray},
			{ColumnID: "priority", SearchKey: "priority", Kind: FilterArray},
		},
		Sorting: SortingConfig{
			Enabled:          true,
			DefaultSortBy:    "createdAt",
			DefaultSortOrder: "desc",
		},
		PreserveSearchAfterQuery: true,
	}
}

func TestDecodeArrayEncodingsEquivalent(t *testing.T) {
	want := []string{"a", "b", "c"}
	cases := []struct {
		name string
		vals []string
	}{
		{"comma separated", []string{"a,b,c"}},
		{"native list", []string{"a", "b", "c"}},
		{"json array string", []string{`["a","b","c"]`}},
	}
	cfg := Config{Filters: []FilterConfig{{ColumnID: "status", SearchKey: "status", Kind: FilterArray}}}
	for _, tc := range cases {
		st := Decode(Address{"status": tc.vals}, cfg)
		v, ok := st.Filter("status")
		if !ok {
			t.Fatalf("%s: expected a status filter", tc.name)
		}
		if !reflect.DeepEqual(v.Values(), want) {
			t.Fatalf("%s: expected %v; got %v", tc.name, want, v.Values())
		}
	}
}

func TestNormalizeListFallbacks(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"bare scalar", []string{"active"}, []string{"active"}},
		{"csv with blanks", []string{" a , ,b "}, []string{"a", "b"}},
		{"json numbers", []string{`[1,2]`}, []string{"1", "2"}},
		{"malformed json stays whole", []string{`[a,b]`}, []string{`[a,b]`}},
		{"empty string", []string{""}, nil},
		{"nothing", nil, nil},
	}
	for _, tc := range cases {
		if got := NormalizeList(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: expected %v; got %v", tc.name, tc.want, got)
		}
	}
}

func TestDecodePaginationDefaultsAndFailSoft(t *testing.T) {
	cfg := usersConfig()

	st := Decode(Address{}, cfg)
	if st.Pagination.PageIndex != 0 || st.Pagination.PageSize != 10 {
		t.Fatalf("expected defaults 0/10; got %+v", st.Pagination)
	}

	st = Decode(Address{"page": {"3"}, "pageSize": {"25"}}, cfg)
	if st.Pagination.PageIndex != 2 || st.Pagination.PageSize != 25 {
		t.Fatalf("expected 2/25; got %+v", st.Pagination)
	}

	// snake_case alias
	st = Decode(Address{"page_size": {"50"}}, cfg)
	if st.Pagination.PageSize != 50 {
		t.Fatalf("expected page_size alias to decode; got %+v", st.Pagination)
	}

	// malformed numerics fall back, never error
	st = Decode(Address{"page": {"banana"}, "pageSize": {"-1"}}, cfg)
	if st.Pagination.PageIndex != 0 || st.Pagination.PageSize != 10 {
		t.Fatalf("expected soft fallback 0/10; got %+v", st.Pagination)
	}
}

func TestDecodeSortDefaultOnlyWhenKeyAbsent(t *testing.T) {
	cfg := tasksConfig()

	st := Decode(Address{}, cfg)
	if len(st.Sorting) != 1 || st.Sorting[0].ColumnID != "createdAt" || !st.Sorting[0].Descending {
		t.Fatalf("expected default createdAt desc; got %+v", st.Sorting)
	}

	// present-but-empty means "no sort", not "default column"
	st = Decode(Address{"sortBy": {""}}, cfg)
	if len(st.Sorting) != 0 {
		t.Fatalf("expected no sort for empty sortBy; got %+v", st.Sorting)
	}

	st = Decode(Address{"sortBy": {"title"}}, cfg)
	if len(st.Sorting) != 1 || st.Sorting[0].ColumnID != "title" || st.Sorting[0].Descending {
		t.Fatalf("expected title asc via default order override; got %+v", st.Sorting)
	}

	// no default configured: absent means no sort
	st = Decode(Address{}, usersConfig())
	if len(st.Sorting) != 0 {
		t.Fatalf("expected no sort without default; got %+v", st.Sorting)
	}
}

func TestEncodeOmitsDefaultsAndEmpties(t *testing.T) {
	cfg := usersConfig()
	st := State{
		Pagination: PaginationState{PageIndex: 0, PageSize: 10},
		Filters:    []ColumnFilter{{ColumnID: "username", Value: Scalar("")}},
	}
	delta := Encode(st, cfg)
	for key, vs := range delta {
		if vs != nil {
			t.Fatalf("expected all-default state to clear every key; got %s=%v", key, vs)
		}
	}

	addr := Address{"page": {"4"}, "username": {"old"}, "other": {"keep"}}.Apply(delta, Merge)
	if _, ok := addr["page"]; ok {
		t.Fatal("expected default page to be removed from the address")
	}
	if _, ok := addr["username"]; ok {
		t.Fatal("expected empty filter to be removed from the address")
	}
	if v, _ := addr.Get("other"); v != "keep" {
		t.Fatalf("expected unrelated key to survive the merge; got %q", v)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cfg := usersConfig()
	orig := State{
		Pagination:   PaginationState{PageIndex: 2, PageSize: 25},
		Sorting:      []SortSpec{{ColumnID: "email", Descending: true}},
		Filters:      []ColumnFilter{{ColumnID: "status", Value: List("active", "invited")}, {ColumnID: "username", Value: Scalar("jo")}},
		GlobalFilter: "",
	}

	addr := Address{}.Apply(Encode(orig, cfg), Merge)
	got := Decode(addr, cfg)

	if got.Pagination != orig.Pagination {
		t.Fatalf("pagination mismatch: %+v vs %+v", got.Pagination, orig.Pagination)
	}
	if !reflect.DeepEqual(got.Sorting, orig.Sorting) {
		t.Fatalf("sorting mismatch: %+v vs %+v", got.Sorting, orig.Sorting)
	}
	if v, _ := got.Filter("status"); !v.Equal(List("active", "invited")) {
		t.Fatalf("status filter mismatch: %+v", v)
	}
	if v, _ := got.Filter("username"); v.Text() != "jo" {
		t.Fatalf("username filter mismatch: %+v", v)
	}

	// and the re-encoded address is identical
	again := Address{}.Apply(Encode(got, cfg), Merge)
	if addr.Encode() != again.Encode() {
		t.Fatalf("round trip drifted: %q vs %q", addr.Encode(), again.Encode())
	}
}

func TestEncodeDefaultSortDropsOut(t *testing.T) {
	cfg := tasksConfig()
	st := State{
		Pagination: PaginationState{PageIndex: 0, PageSize: 10},
		Sorting:    []SortSpec{{ColumnID: "createdAt", Descending: true}},
	}
	addr := Address{"sortBy": {"title"}, "sortOrder": {"asc"}}.Apply(Encode(st, cfg), Merge)
	if _, ok := addr["sortBy"]; ok {
		t.Fatal("expected default sort to clear sortBy")
	}
	if _, ok := addr["sortOrder"]; ok {
		t.Fatal("expected default sort to clear sortOrder")
	}
}

func TestEncodeExplicitNoSortWithDefault(t *testing.T) {
	cfg := tasksConfig()
	st := State{Pagination: PaginationState{PageIndex: 0, PageSize: 10}}

	addr := Address{"sortBy": {"title"}}.Apply(Encode(st, cfg), Merge)
	if v, ok := addr.Get("sortBy"); !ok || v != "" {
		t.Fatalf("expected present-but-empty sortBy; got %q ok=%v", v, ok)
	}

	// and it round-trips to no sort, not back to the default
	got := Decode(addr, cfg)
	if len(got.Sorting) != 0 {
		t.Fatalf("expected no sort after round trip; got %+v", got.Sorting)
	}
	again := Address{}.Apply(Encode(got, cfg), Merge)
	if addr.Encode() != again.Encode() {
		t.Fatalf("explicit no-sort drifted: %q vs %q", addr.Encode(), again.Encode())
	}
}

func TestEncodeOmitsDefaultSortOrder(t *testing.T) {
	cfg := usersConfig() // default order asc
	st := State{
		Pagination: PaginationState{PageIndex: 0, PageSize: 10},
		Sorting:    []SortSpec{{ColumnID: "username"}},
	}
	addr := Address{}.Apply(Encode(st, cfg), Merge)
	if v, _ := addr.Get("sortBy"); v != "username" {
		t.Fatalf("expected sortBy=username; got %q", v)
	}
	if _, ok := addr.Get("sortOrder"); ok {
		t.Fatal("ascending matches the default order and should not be written")
	}
	got := Decode(addr, cfg)
	if len(got.Sorting) != 1 || got.Sorting[0].Descending {
		t.Fatalf("expected username asc after round trip; got %+v", got.Sorting)
	}
}

func TestAddressParseAndPrint(t *testing.T) {
	addr, err := ParseQuery("status=active%2Cinvited&page=2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, _ := addr.Get("status"); v != "active,invited" {
		t.Fatalf("expected csv status; got %q", v)
	}
	if got := addr.Encode(); got != "page=2&status=active%2Cinvited" {
		t.Fatalf("expected sorted stable print; got %q", got)
	}

	if _, err := ParseQuery("%zz"); err == nil {
		t.Fatal("expected parse error for bad escape")
	}
}
