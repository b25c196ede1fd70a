package tablestate

// ResetPolicy picks where an out-of-range page lands.
type ResetPolicy int

const (
	ResetFirst ResetPolicy = iota
	ResetLast
)

// ClampPageIndex returns the corrected page index and whether a correction
// is needed. A total of zero pages is a no-op: an empty result set is not
// an error state.
func ClampPageIndex(pageIndex, totalPages int, policy ResetPolicy) (int, bool) {
	if totalPages <= 0 {
		return pageIndex, false
	}
	if pageIndex >= 0 && pageIndex < totalPages {
		return pageIndex, false
	}
	if policy == ResetLast {
		return totalPages - 1, true
	}
	return 0, true
}

// EnsurePageInRange clamps the page after a query reports how many pages
// exist, issuing the same encode/write a pagination change would. It runs
// when a result arrives, never on raw user input, and is idempotent: once
// corrected, further calls write nothing. Reports whether it corrected.
func (s *Store) EnsurePageInRange(totalPages int, policy ResetPolicy) bool {
	next, changed := ClampPageIndex(s.st.Pagination.PageIndex, totalPages, policy)
	if !changed {
		return false
	}
	s.SetPagination(PaginationState{PageIndex: next, PageSize: s.st.Pagination.PageSize})
	return true
}
