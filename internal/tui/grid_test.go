package tui

import (
	"fmt"
	"testing"

	"steward-cli/internal/tablestate"

	tea "github.com/charmbracelet/bubbletea"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func fakeUserPage(n int) (ids []string, cells [][]string) {
	for i := 0; i < n; i++ {
		ids = append(ids, fmt.Sprintf("u%d", i))
		cells = append(cells, []string{
			fmt.Sprintf("user%d", i), "Some Name", "x@example.com", "active", "cashier", "2026-01-01",
		})
	}
	return ids, cells
}

func TestGridSortCycleWritesAddress(t *testing.T) {
	t.Parallel()

	mem := tablestate.NewMemory(nil)
	g := newGrid(usersGridSpec(), mem)

	// Cursor starts on the first sortable column (username).
	ev, _ := g.handleKey(keyRune('s'))
	if ev.kind != evRefetch {
		t.Fatalf("expected refetch after sort, got %v", ev.kind)
	}
	if v, ok := mem.Read().Get("sortBy"); !ok || v != "username" {
		t.Fatalf("expected sortBy=username, got %q ok=%v", v, ok)
	}
	if _, ok := mem.Read().Get("sortOrder"); ok {
		t.Fatalf("ascending is the default order; sortOrder should be absent")
	}

	g.handleKey(keyRune('s'))
	if v, _ := mem.Read().Get("sortOrder"); v != "desc" {
		t.Fatalf("expected sortOrder=desc, got %q", v)
	}

	// Third press clears the sort; users has no default sort column, so the
	// key disappears entirely.
	g.handleKey(keyRune('s'))
	if _, ok := mem.Read().Get("sortBy"); ok {
		t.Fatalf("expected sortBy removed after cycling back to none")
	}
}

func TestGridSortCursorMoves(t *testing.T) {
	t.Parallel()

	mem := tablestate.NewMemory(nil)
	g := newGrid(usersGridSpec(), mem)

	g.handleKey(keyRune('S'))
	ev, _ := g.handleKey(keyRune('s'))
	if ev.kind != evRefetch {
		t.Fatalf("expected refetch, got %v", ev.kind)
	}
	if v, _ := mem.Read().Get("sortBy"); v != "firstName" {
		t.Fatalf("expected sortBy=firstName after moving the cursor, got %q", v)
	}
}

func TestGridPagingStopsAtBounds(t *testing.T) {
	t.Parallel()

	mem := tablestate.NewMemory(nil)
	g := newGrid(usersGridSpec(), mem)
	ids, cells := fakeUserPage(10)
	g.setPage(ids, cells, 30, 3)

	ev, _ := g.handleKey(keyRune('p'))
	if ev.kind != evNone {
		t.Fatalf("prev on first page should be a no-op, got %v", ev.kind)
	}

	ev, _ = g.handleKey(keyRune('n'))
	if ev.kind != evRefetch {
		t.Fatalf("expected refetch on next page, got %v", ev.kind)
	}
	if v, _ := mem.Read().Get("page"); v != "2" {
		t.Fatalf("expected page=2 in address, got %q", v)
	}

	g.handleKey(keyRune('n'))
	ev, _ = g.handleKey(keyRune('n'))
	if ev.kind != evNone {
		t.Fatalf("next on last page should be a no-op, got %v", ev.kind)
	}
	if got := g.store.State().Pagination.PageIndex; got != 2 {
		t.Fatalf("expected pageIndex 2, got %d", got)
	}
}

func TestGridSelectionLifecycle(t *testing.T) {
	t.Parallel()

	mem := tablestate.NewMemory(nil)
	g := newGrid(usersGridSpec(), mem)
	ids, cells := fakeUserPage(3)
	g.setPage(ids, cells, 3, 1)

	ev, _ := g.handleKey(keyRune(' '))
	if ev.kind != evSelection || !ev.armed {
		t.Fatalf("expected armed selection event, got kind=%v armed=%v", ev.kind, ev.armed)
	}
	if ev.pending.Text != "1 selected" {
		t.Fatalf("expected announcement %q, got %q", "1 selected", ev.pending.Text)
	}
	if !g.bar.Visible() {
		t.Fatalf("toolbar should be visible with a selection")
	}

	// a completes the page selection.
	ev, _ = g.handleKey(keyRune('a'))
	if !ev.armed || ev.pending.Text != "3 selected" {
		t.Fatalf("expected %q, got %q (armed=%v)", "3 selected", ev.pending.Text, ev.armed)
	}

	// a again clears the fully selected page and hides the bar.
	ev, _ = g.handleKey(keyRune('a'))
	if ev.armed {
		t.Fatalf("hiding the bar must not arm an announcement")
	}
	if g.bar.Visible() {
		t.Fatalf("toolbar should hide when the selection empties")
	}

	// esc clears through the toolbar.
	g.handleKey(keyRune(' '))
	g.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if g.bar.Visible() || g.store.State().SelectionCount() != 0 {
		t.Fatalf("expected escape to clear the selection")
	}
}

func TestGridSelectionSurvivesPaging(t *testing.T) {
	t.Parallel()

	mem := tablestate.NewMemory(nil)
	g := newGrid(usersGridSpec(), mem)
	ids, cells := fakeUserPage(3)
	g.setPage(ids, cells, 6, 2)

	g.handleKey(keyRune(' '))
	g.handleKey(keyRune('n'))
	if got := g.store.State().SelectionCount(); got != 1 {
		t.Fatalf("selection should survive a page change, got %d", got)
	}
}

func TestGridSearchAppliesAndResetsPage(t *testing.T) {
	t.Parallel()

	mem := tablestate.NewMemory(nil)
	g := newGrid(usersGridSpec(), mem)
	ids, cells := fakeUserPage(10)
	g.setPage(ids, cells, 30, 3)
	g.handleKey(keyRune('n')) // page 2

	g.handleKey(keyRune('/'))
	if !g.searching {
		t.Fatalf("expected search mode after /")
	}
	for _, r := range "zhang" {
		g.handleKey(keyRune(r))
	}
	ev, _ := g.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if ev.kind != evRefetch {
		t.Fatalf("expected refetch after applying search, got %v", ev.kind)
	}
	if v, _ := mem.Read().Get("username"); v != "zhang" {
		t.Fatalf("expected username=zhang in address, got %q", v)
	}
	if _, ok := mem.Read().Get("page"); ok {
		t.Fatalf("applying a search must reset to the first page")
	}
}

func TestGridSearchEscKeepsApplied(t *testing.T) {
	t.Parallel()

	mem := tablestate.NewMemory(nil)
	g := newGrid(usersGridSpec(), mem)

	g.handleKey(keyRune('/'))
	for _, r := range "abc" {
		g.handleKey(keyRune(r))
	}
	ev, _ := g.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if ev.kind != evNone {
		t.Fatalf("esc should not refetch, got %v", ev.kind)
	}
	if g.searching {
		t.Fatalf("esc should leave search mode")
	}
	if _, ok := mem.Read().Get("username"); ok {
		t.Fatalf("abandoned edit must not reach the address")
	}
}

func TestGridClearAllDropsFilters(t *testing.T) {
	t.Parallel()

	mem := tablestate.NewMemory(nil)
	g := newGrid(usersGridSpec(), mem)
	g.staging.SetSearch("username", "zhang")
	g.staging.SetFilter("status", []string{"active"})
	g.staging.Apply()
	if _, ok := mem.Read().Get("status"); !ok {
		t.Fatalf("expected status filter in address before clear")
	}

	ev, _ := g.handleKey(keyRune('c'))
	if ev.kind != evRefetch {
		t.Fatalf("expected refetch after clear, got %v", ev.kind)
	}
	addr := mem.Read()
	if _, ok := addr.Get("status"); ok {
		t.Fatalf("expected status cleared")
	}
	if _, ok := addr.Get("username"); ok {
		t.Fatalf("expected search cleared")
	}
}

func TestTasksDefaultSortClearsToExplicitNone(t *testing.T) {
	t.Parallel()

	mem := tablestate.NewMemory(nil)
	g := newGrid(tasksGridSpec(), mem)

	// Fresh address: the createdAt default applies without being written.
	if _, ok := mem.Read().Get("sortBy"); ok {
		t.Fatalf("default sort must not appear in a fresh address")
	}

	g.handleKey(keyRune('s')) // title asc
	if v, _ := mem.Read().Get("sortBy"); v != "title" {
		t.Fatalf("expected sortBy=title, got %q", v)
	}
	g.handleKey(keyRune('s')) // title desc
	g.handleKey(keyRune('s')) // none

	// With a configured default, explicit no-sort is a present-but-empty
	// key, not an absent one.
	if v, ok := mem.Read().Get("sortBy"); !ok || v != "" {
		t.Fatalf("expected explicit empty sortBy, got %q ok=%v", v, ok)
	}
}
