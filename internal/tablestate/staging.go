package tablestate

// Staging holds filter edits that have not been applied yet, so a user can
// adjust several inputs and issue one query instead of one per keystroke.
// Edits are screen-local until Apply commits them through the store.
type Staging struct {
	store   *Store
	search  map[string]string
	filters map[string][]string
	refetch func()
}

// NewStaging seeds the buffer from the store's applied state, so a fresh
// buffer starts with nothing pending. refetch may be nil.
func NewStaging(store *Store, refetch func()) *Staging {
	g := &Staging{store: store, refetch: refetch}
	g.Reseed()
	return g
}

// Reseed resets the buffer to mirror the applied state.
func (g *Staging) Reseed() {
	g.search = map[string]string{}
	g.filters = map[string][]string{}
	st := g.store.State()
	for _, fc := range g.store.cfg.Filters {
		v, ok := st.Filter(fc.ColumnID)
		if !ok {
			continue
		}
		switch fc.Kind {
		case FilterArray:
			g.filters[fc.ColumnID] = v.Values()
		default:
			g.search[fc.ColumnID] = v.Text()
		}
	}
}

// SetSearch stages a text filter edit. No address or query effect.
func (g *Staging) SetSearch(columnID, text string) {
	g.search[columnID] = text
}

// SetFilter stages a multi-select filter edit. No address or query effect.
func (g *Staging) SetFilter(columnID string, values []string) {
	g.filters[columnID] = append([]string(nil), values...)
}

func (g *Staging) Search(columnID string) string {
	return g.search[columnID]
}

func (g *Staging) Filter(columnID string) []string {
	return append([]string(nil), g.filters[columnID]...)
}

// Pending reports whether any staged field differs from the applied state.
// Text compares exactly; lists compare as sets, ignoring order. A staged
// blank against an applied value counts (a clear is pending), as does the
// reverse.
func (g *Staging) Pending() bool {
	st := g.store.State()
	for _, fc := range g.store.cfg.Filters {
		applied, _ := st.Filter(fc.ColumnID)
		switch fc.Kind {
		case FilterArray:
			if !equalSets(g.filters[fc.ColumnID], applied.Values()) {
				return true
			}
		default:
			if g.search[fc.ColumnID] != applied.Text() {
				return true
			}
		}
	}
	return false
}

// Apply commits every staged field to the store in one filter write. Blank
// text and empty lists remove their filters outright; columns the screen no
// longer declares are skipped without aborting the rest. Afterwards the
// buffer is kept or cleared per PreserveSearchAfterQuery, pagination resets
// to the first page (the result set just changed shape), and the refetch
// callback, if any, runs.
func (g *Staging) Apply() {
	staged := make(map[string]FilterValue, len(g.search)+len(g.filters))
	for col, text := range g.search {
		if _, ok := g.store.cfg.filterFor(col); !ok {
			continue
		}
		staged[col] = Scalar(text)
	}
	for col, vals := range g.filters {
		if _, ok := g.store.cfg.filterFor(col); !ok {
			continue
		}
		staged[col] = List(vals...)
	}

	g.store.UpdateFilters(func(fs []ColumnFilter) []ColumnFilter {
		out := fs[:0]
		for _, f := range fs {
			if _, ok := staged[f.ColumnID]; !ok {
				out = append(out, f)
			}
		}
		for _, fc := range g.store.cfg.Filters {
			if v, ok := staged[fc.ColumnID]; ok && !v.IsZero() {
				out = append(out, ColumnFilter{ColumnID: fc.ColumnID, Value: v})
			}
		}
		return out
	})

	if !g.store.cfg.PreserveSearchAfterQuery {
		g.search = map[string]string{}
		g.filters = map[string][]string{}
	}

	g.store.UpdatePagination(func(p PaginationState) PaginationState {
		p.PageIndex = 0
		return p
	})

	if g.refetch != nil {
		g.refetch()
	}
}

// ClearAll empties the buffer and clears every applied column filter plus
// the global filter, then refetches. It discards edits rather than
// committing them.
func (g *Staging) ClearAll() {
	g.search = map[string]string{}
	g.filters = map[string][]string{}
	g.store.SetFilters(nil)
	g.store.SetGlobalFilter("")
	if g.refetch != nil {
		g.refetch()
	}
}
