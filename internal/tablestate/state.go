package tablestate

import "sort"

// FilterKind selects how a column filter's value travels in the address.
type FilterKind int

const (
	// FilterString holds one free-text value compared by substring/equality.
	FilterString FilterKind = iota
	// FilterArray holds a set of values compared by membership.
	FilterArray
)

// FilterValue is a column filter's value: a scalar for string filters, a
// list for array filters. The shape is decided once at decode time so
// consumers never type-sniff.
type FilterValue struct {
	scalar string
	list   []string
	isList bool
}

func Scalar(s string) FilterValue {
	return FilterValue{scalar: s}
}

func List(vs ...string) FilterValue {
	return FilterValue{list: append([]string(nil), vs...), isList: true}
}

func (v FilterValue) Kind() FilterKind {
	if v.isList {
		return FilterArray
	}
	return FilterString
}

// Text returns the scalar value; empty for list values.
func (v FilterValue) Text() string {
	return v.scalar
}

// Values returns the list values; nil for scalar values.
func (v FilterValue) Values() []string {
	if !v.isList {
		return nil
	}
	return append([]string(nil), v.list...)
}

// IsZero reports whether the value is equivalent to no filter at all: an
// empty string or an empty list. Zero values are normalized to absence
// before they reach the address.
func (v FilterValue) IsZero() bool {
	if v.isList {
		return len(v.list) == 0
	}
	return v.scalar == ""
}

// Equal compares two values. Lists compare as sets, ignoring order.
func (v FilterValue) Equal(o FilterValue) bool {
	if v.isList != o.isList {
		return false
	}
	if !v.isList {
		return v.scalar == o.scalar
	}
	return equalSets(v.list, o.list)
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// ColumnFilter pairs a column with its active filter value.
type ColumnFilter struct {
	ColumnID string
	Value    FilterValue
}

// SortSpec is one sort instruction. Screens here sort by at most one
// column; if several are ever present the first wins.
type SortSpec struct {
	ColumnID   string
	Descending bool
}

// PaginationState is 0-based internally; the address carries a 1-based
// page number.
type PaginationState struct {
	PageIndex int
	PageSize  int
}

// State is the typed table state driving a grid: what the address encodes,
// plus selection and column visibility, which stay local to the screen.
type State struct {
	Pagination   PaginationState
	Sorting      []SortSpec
	Filters      []ColumnFilter
	GlobalFilter string

	Selection map[string]bool
	Hidden    map[string]bool
}

// Filter returns the active filter for a column.
func (s State) Filter(columnID string) (FilterValue, bool) {
	for _, f := range s.Filters {
		if f.ColumnID == columnID {
			return f.Value, true
		}
	}
	return FilterValue{}, false
}

func (s State) SelectionCount() int {
	n := 0
	for _, on := range s.Selection {
		if on {
			n++
		}
	}
	return n
}

// SelectedIDs returns the selected row identifiers in sorted order.
func (s State) SelectedIDs() []string {
	ids := make([]string, 0, len(s.Selection))
	for id, on := range s.Selection {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (s State) clone() State {
	out := s
	out.Sorting = append([]SortSpec(nil), s.Sorting...)
	out.Filters = append([]ColumnFilter(nil), s.Filters...)
	out.Selection = cloneSet(s.Selection)
	out.Hidden = cloneSet(s.Hidden)
	return out
}

func cloneSet(m map[string]bool) map[string]bool {
	if m == nil {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
