package tablestate

// Store owns one screen's table state and keeps the address in step with
// it. Construct one per screen and hand it to whichever components need it;
// there is no ambient instance.
//
// Every state-changing handler comes as a Set/Update pair: Set takes the
// literal next value, Update a function of the previous one. After either,
// the store encodes and merge-writes the address, so unrelated keys (other
// screens' parameters) survive. Handlers never trigger queries themselves;
// the data layer watches for changes.
//
// Selection and column visibility are screen-local: they pass through the
// same handler contract but are never written to the address.
type Store struct {
	cfg Config
	rw  AddressReadWriter
	st  State
}

// New decodes the current address into the store's initial state.
func New(cfg Config, rw AddressReadWriter) *Store {
	cfg = cfg.normalized()
	return &Store{cfg: cfg, rw: rw, st: Decode(rw.Read(), cfg)}
}

func (s *Store) Config() Config { return s.cfg }

// State returns a copy; mutate through the handlers.
func (s *Store) State() State { return s.st.clone() }

func (s *Store) SetPagination(p PaginationState) {
	s.UpdatePagination(func(PaginationState) PaginationState { return p })
}

func (s *Store) UpdatePagination(fn func(PaginationState) PaginationState) {
	next := fn(s.st.Pagination)
	if next.PageIndex < 0 {
		next.PageIndex = 0
	}
	if next.PageSize < 1 {
		next.PageSize = s.cfg.Pagination.DefaultPageSize
	}
	s.st.Pagination = next
	s.writeAddress()
}

func (s *Store) SetSorting(sorting []SortSpec) {
	s.UpdateSorting(func([]SortSpec) []SortSpec { return sorting })
}

func (s *Store) UpdateSorting(fn func([]SortSpec) []SortSpec) {
	s.st.Sorting = append([]SortSpec(nil), fn(append([]SortSpec(nil), s.st.Sorting...))...)
	s.writeAddress()
}

func (s *Store) SetFilters(filters []ColumnFilter) {
	s.UpdateFilters(func([]ColumnFilter) []ColumnFilter { return filters })
}

// UpdateFilters normalizes the result: zero-valued entries (empty string,
// empty list) drop out entirely, so they can never reach the address.
func (s *Store) UpdateFilters(fn func([]ColumnFilter) []ColumnFilter) {
	next := fn(append([]ColumnFilter(nil), s.st.Filters...))
	kept := make([]ColumnFilter, 0, len(next))
	for _, f := range next {
		if !f.Value.IsZero() {
			kept = append(kept, f)
		}
	}
	s.st.Filters = kept
	s.writeAddress()
}

// SetColumnFilter replaces one column's filter. A zero value removes it.
// Columns the config does not declare are ignored.
func (s *Store) SetColumnFilter(columnID string, v FilterValue) {
	if _, ok := s.cfg.filterFor(columnID); !ok {
		return
	}
	s.UpdateFilters(func(fs []ColumnFilter) []ColumnFilter {
		out := fs[:0]
		for _, f := range fs {
			if f.ColumnID != columnID {
				out = append(out, f)
			}
		}
		if !v.IsZero() {
			out = append(out, ColumnFilter{ColumnID: columnID, Value: v})
		}
		return out
	})
}

func (s *Store) SetGlobalFilter(v string) {
	s.UpdateGlobalFilter(func(string) string { return v })
}

func (s *Store) UpdateGlobalFilter(fn func(string) string) {
	s.st.GlobalFilter = fn(s.st.GlobalFilter)
	s.writeAddress()
}

func (s *Store) SetSelection(sel map[string]bool) {
	s.UpdateSelection(func(map[string]bool) map[string]bool { return sel })
}

func (s *Store) UpdateSelection(fn func(map[string]bool) map[string]bool) {
	s.st.Selection = pruneSet(fn(cloneSet(s.st.Selection)))
}

func (s *Store) ToggleSelected(id string) {
	s.UpdateSelection(func(sel map[string]bool) map[string]bool {
		if sel == nil {
			sel = map[string]bool{}
		}
		if sel[id] {
			delete(sel, id)
		} else {
			sel[id] = true
		}
		return sel
	})
}

// ClearSelection empties the selection. Safe to call repeatedly.
func (s *Store) ClearSelection() {
	s.UpdateSelection(func(map[string]bool) map[string]bool { return nil })
}

func (s *Store) SetHiddenColumns(hidden map[string]bool) {
	s.UpdateHiddenColumns(func(map[string]bool) map[string]bool { return hidden })
}

func (s *Store) UpdateHiddenColumns(fn func(map[string]bool) map[string]bool) {
	s.st.Hidden = pruneSet(fn(cloneSet(s.st.Hidden)))
}

func (s *Store) writeAddress() {
	s.rw.Write(Encode(s.st, s.cfg), Merge)
}

func pruneSet(m map[string]bool) map[string]bool {
	for k, on := range m {
		if !on {
			delete(m, k)
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
