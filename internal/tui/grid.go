package tui

import (
	"fmt"
	"strings"

	"steward-cli/internal/tablestate"
	"steward-cli/internal/toolbar"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// grid is the state shared by the two listing screens: the table-state
// store and its staging buffer, the selection toolbar, the rendered table
// and the staged search input. The screens own fetching and actions; the
// grid owns keys and layout.
type grid struct {
	spec    gridSpec
	store   *tablestate.Store
	staging *tablestate.Staging
	bar     *toolbar.Toolbar

	tbl       table.Model
	search    textinput.Model
	searching bool

	// ids and cells run parallel to the table rows; ids feed selection.
	ids        []string
	cells      [][]string
	total      int
	totalPages int

	querySeq int
	loading  bool

	// sortCursor indexes spec.columns; s cycles the sort on it, S moves it.
	sortCursor int

	width int
}

type gridSpec struct {
	noun        string // plural, for the footer
	searchCol   string // column id the staged search edits
	placeholder string
	columns     []gridColumn
	actions     []toolbar.Action
	config      tablestate.Config
}

type gridColumn struct {
	id       string
	title    string
	weight   int
	sortable bool
}

type gridEventKind int

const (
	evNone gridEventKind = iota
	evRefetch
	evRefresh // refetch plus stats
	evSelection
	evOpenDetail
	evRunAction
	evOpenFilter
	evCopyAddress
)

type gridEvent struct {
	kind    gridEventKind
	action  string
	pending toolbar.Pending
	armed   bool
}

func newGrid(spec gridSpec, rw tablestate.AddressReadWriter) *grid {
	st := tablestate.New(spec.config, rw)
	g := &grid{spec: spec, store: st}
	g.staging = tablestate.NewStaging(st, nil)
	g.bar = toolbar.New(spec.actions, st.ClearSelection)
	g.sortCursor = g.firstSortable()

	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = spec.placeholder
	in.CharLimit = 120
	g.search = in

	t := table.New(
		table.WithColumns(g.columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	// The grid pages server-side; the table only moves the cursor within
	// one page. Local page keys would collide with f (filter) and space
	// (select).
	t.KeyMap.PageUp.SetEnabled(false)
	t.KeyMap.PageDown.SetEnabled(false)
	t.KeyMap.HalfPageUp.SetEnabled(false)
	t.KeyMap.HalfPageDown.SetEnabled(false)
	st2 := table.DefaultStyles()
	st2.Header = st2.Header.Bold(true).Foreground(colorChromeFg)
	st2.Selected = st2.Selected.Bold(false).Foreground(colorSelectedFg).Background(colorSelectedBg)
	t.SetStyles(st2)
	g.tbl = t
	return g
}

func (g *grid) firstSortable() int {
	for i, c := range g.spec.columns {
		if c.sortable {
			return i
		}
	}
	return 0
}

// beginQuery bumps the seq and marks the grid loading. The returned seq
// travels with the fetch so late results can be recognized as stale.
func (g *grid) beginQuery() int {
	g.querySeq++
	g.loading = true
	return g.querySeq
}

func (g *grid) stale(seq int) bool { return seq != g.querySeq }

// setPage installs one page of results. ids and cells must run parallel.
func (g *grid) setPage(ids []string, cells [][]string, total, totalPages int) {
	g.loading = false
	g.ids = ids
	g.cells = cells
	g.total = total
	g.totalPages = totalPages
	g.rebuildRows()
	if c := g.tbl.Cursor(); c >= len(ids) && len(ids) > 0 {
		g.tbl.SetCursor(len(ids) - 1)
	}
}

// rebuildRows re-renders the marker column from the current selection.
func (g *grid) rebuildRows() {
	sel := g.store.State().Selection
	rows := make([]table.Row, len(g.cells))
	for i, cs := range g.cells {
		marker := " "
		if sel[g.ids[i]] {
			marker = "✓"
		}
		rows[i] = append(table.Row{marker}, cs...)
	}
	g.tbl.SetRows(rows)
	g.tbl.SetColumns(g.columns(g.width))
}

func (g *grid) currentID() string {
	c := g.tbl.Cursor()
	if c < 0 || c >= len(g.ids) {
		return ""
	}
	return g.ids[c]
}

func (g *grid) setSize(width, tableHeight int) {
	if width < 40 {
		width = 40
	}
	g.width = width
	g.search.Width = width - 6
	g.tbl.SetWidth(width)
	if tableHeight < 3 {
		tableHeight = 3
	}
	g.tbl.SetHeight(tableHeight)
	g.tbl.SetColumns(g.columns(width))
}

// columns distributes the width over the declared columns by weight, after
// a fixed two-cell marker column. Headers carry the sort cursor (›) and the
// applied direction arrow.
func (g *grid) columns(width int) []table.Column {
	totalWeight := 0
	for _, c := range g.spec.columns {
		totalWeight += c.weight
	}
	// Each column gets two cells of padding from the cell style.
	avail := width - 4 - 2*(len(g.spec.columns)+1)
	if avail < totalWeight {
		avail = totalWeight
	}
	sortBy, desc := g.appliedSort()
	cols := make([]table.Column, 0, len(g.spec.columns)+1)
	cols = append(cols, table.Column{Title: " ", Width: 1})
	for i, c := range g.spec.columns {
		title := c.title
		if c.id == sortBy {
			if desc {
				title += " ↓"
			} else {
				title += " ↑"
			}
		}
		if i == g.sortCursor && c.sortable {
			title = "›" + title
		}
		w := avail * c.weight / totalWeight
		if w < 4 {
			w = 4
		}
		cols = append(cols, table.Column{Title: title, Width: w})
	}
	return cols
}

func (g *grid) appliedSort() (string, bool) {
	st := g.store.State()
	if len(st.Sorting) == 0 {
		return "", false
	}
	return st.Sorting[0].ColumnID, st.Sorting[0].Descending
}

// handleKey routes one key press. The returned event tells the screen what
// to do next; most state changes happen here.
func (g *grid) handleKey(msg tea.KeyMsg) (gridEvent, tea.Cmd) {
	if g.searching {
		return g.handleSearchKey(msg)
	}

	key := msg.String()
	if g.bar.Visible() {
		switch key {
		case "left", "right", "home", "end":
			g.bar.HandleKey(key)
			return gridEvent{}, nil
		case "esc":
			if g.bar.HandleKey("esc") == toolbar.KeySelectionCleared {
				g.bar.SetSelectionCount(0)
				g.rebuildRows()
			}
			return gridEvent{}, nil
		case "enter":
			if a, ok := g.bar.FocusedAction(); ok {
				return gridEvent{kind: evRunAction, action: a.ID}, nil
			}
			return gridEvent{}, nil
		}
	}

	switch key {
	case "/":
		g.searching = true
		g.search.SetValue(g.staging.Search(g.spec.searchCol))
		cmd := g.search.Focus()
		g.search.CursorEnd()
		return gridEvent{}, cmd
	case "f":
		return gridEvent{kind: evOpenFilter}, nil
	case "enter":
		if g.currentID() != "" {
			return gridEvent{kind: evOpenDetail}, nil
		}
		return gridEvent{}, nil
	case "n", "right":
		if g.nextPage() {
			return gridEvent{kind: evRefetch}, nil
		}
		return gridEvent{}, nil
	case "p", "left":
		if g.prevPage() {
			return gridEvent{kind: evRefetch}, nil
		}
		return gridEvent{}, nil
	case "s":
		if g.cycleSort() {
			return gridEvent{kind: evRefetch}, nil
		}
		return gridEvent{}, nil
	case "S":
		g.moveSortCursor()
		g.tbl.SetColumns(g.columns(g.width))
		return gridEvent{}, nil
	case " ":
		return g.toggleCurrent(), nil
	case "a":
		return g.togglePage(), nil
	case "c":
		g.staging.ClearAll()
		g.search.SetValue("")
		return gridEvent{kind: evRefetch}, nil
	case "y":
		return gridEvent{kind: evCopyAddress}, nil
	case "r":
		return gridEvent{kind: evRefresh}, nil
	}

	var cmd tea.Cmd
	g.tbl, cmd = g.tbl.Update(msg)
	return gridEvent{}, cmd
}

func (g *grid) handleSearchKey(msg tea.KeyMsg) (gridEvent, tea.Cmd) {
	switch msg.String() {
	case "enter":
		g.staging.SetSearch(g.spec.searchCol, strings.TrimSpace(g.search.Value()))
		g.staging.Apply()
		g.searching = false
		g.search.Blur()
		return gridEvent{kind: evRefetch}, nil
	case "esc":
		g.staging.Reseed()
		g.search.SetValue(g.staging.Search(g.spec.searchCol))
		g.searching = false
		g.search.Blur()
		return gridEvent{}, nil
	}
	var cmd tea.Cmd
	g.search, cmd = g.search.Update(msg)
	return gridEvent{}, cmd
}

func (g *grid) nextPage() bool {
	if g.totalPages > 0 && g.store.State().Pagination.PageIndex+1 >= g.totalPages {
		return false
	}
	g.store.UpdatePagination(func(p tablestate.PaginationState) tablestate.PaginationState {
		p.PageIndex++
		return p
	})
	return true
}

func (g *grid) prevPage() bool {
	if g.store.State().Pagination.PageIndex == 0 {
		return false
	}
	g.store.UpdatePagination(func(p tablestate.PaginationState) tablestate.PaginationState {
		p.PageIndex--
		return p
	})
	return true
}

// cycleSort steps the cursor column none → asc → desc → none.
func (g *grid) cycleSort() bool {
	if !g.store.Config().Sorting.Enabled {
		return false
	}
	col := g.spec.columns[g.sortCursor]
	if !col.sortable {
		return false
	}
	st := g.store.State()
	var next []tablestate.SortSpec
	switch {
	case len(st.Sorting) == 0 || st.Sorting[0].ColumnID != col.id:
		next = []tablestate.SortSpec{{ColumnID: col.id}}
	case !st.Sorting[0].Descending:
		next = []tablestate.SortSpec{{ColumnID: col.id, Descending: true}}
	default:
		next = nil
	}
	g.store.SetSorting(next)
	g.tbl.SetColumns(g.columns(g.width))
	return true
}

func (g *grid) moveSortCursor() {
	n := len(g.spec.columns)
	for step := 1; step <= n; step++ {
		i := (g.sortCursor + step) % n
		if g.spec.columns[i].sortable {
			g.sortCursor = i
			return
		}
	}
}

func (g *grid) toggleCurrent() gridEvent {
	id := g.currentID()
	if id == "" {
		return gridEvent{}
	}
	g.store.ToggleSelected(id)
	return g.selectionChanged()
}

// togglePage selects every row on the page, or clears them when they are
// all selected already.
func (g *grid) togglePage() gridEvent {
	if len(g.ids) == 0 {
		return gridEvent{}
	}
	sel := g.store.State().Selection
	all := true
	for _, id := range g.ids {
		if !sel[id] {
			all = false
			break
		}
	}
	for _, id := range g.ids {
		if all == sel[id] {
			g.store.ToggleSelected(id)
		}
	}
	return g.selectionChanged()
}

func (g *grid) selectionChanged() gridEvent {
	p, armed := g.bar.SetSelectionCount(g.store.State().SelectionCount())
	g.rebuildRows()
	return gridEvent{kind: evSelection, pending: p, armed: armed}
}

func (g *grid) view() string {
	var b strings.Builder
	b.WriteString(g.searchView())
	b.WriteString("\n")
	b.WriteString(g.tbl.View())
	if bar := g.toolbarView(); bar != "" {
		b.WriteString("\n")
		b.WriteString(bar)
	}
	return b.String()
}

func (g *grid) searchView() string {
	if g.searching {
		return g.search.View()
	}
	applied := ""
	if f, ok := g.store.State().Filter(g.spec.searchCol); ok {
		applied = f.Text()
	}
	if applied == "" {
		return styleMuted().Render("/ " + g.spec.placeholder)
	}
	return styleMuted().Render("/ ") + applied
}

func (g *grid) toolbarView() string {
	if !g.bar.Visible() {
		return ""
	}
	focusStyle := lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1)
	idleStyle := lipgloss.NewStyle().Foreground(colorChromeFg).Padding(0, 1)
	parts := []string{fmt.Sprintf("%d selected", g.bar.SelectionCount())}
	for i, a := range g.bar.Actions() {
		if i == g.bar.FocusIndex() {
			parts = append(parts, focusStyle.Render(a.Label))
		} else {
			parts = append(parts, idleStyle.Render(a.Label))
		}
	}
	parts = append(parts, styleMuted().Render("←/→ focus · enter run · esc clear"))
	return strings.Join(parts, " ")
}

// footerView is the status line under the table: page position, result
// count, applied filters and sort, and the shareable address.
func (g *grid) footerView(encodedAddr string) string {
	st := g.store.State()
	page := fmt.Sprintf("page %d/%d", st.Pagination.PageIndex+1, max(g.totalPages, 1))
	parts := []string{page, fmt.Sprintf("%d %s", g.total, g.spec.noun)}
	if s := g.filterSummary(st); s != "" {
		parts = append(parts, s)
	}
	if by, desc := g.appliedSort(); by != "" {
		dir := "↑"
		if desc {
			dir = "↓"
		}
		parts = append(parts, "sort: "+by+" "+dir)
	}
	if g.loading {
		parts = append(parts, "loading…")
	}
	line := styleMuted().Render(strings.Join(parts, " · "))
	if encodedAddr != "" {
		// Long addresses would wrap and push the minibuffer off screen.
		line += "\n" + styleMuted().Render(truncateLine("addr: ?"+encodedAddr, g.width))
	}
	return line
}

// filterSummary lists the applied facet filters. The search column is
// omitted; the search line above the table already shows it.
func (g *grid) filterSummary(st tablestate.State) string {
	var parts []string
	for _, fc := range g.spec.config.Filters {
		if fc.ColumnID == g.spec.searchCol {
			continue
		}
		f, ok := st.Filter(fc.ColumnID)
		if !ok {
			continue
		}
		parts = append(parts, fc.ColumnID+"="+strings.Join(f.Values(), ","))
	}
	return strings.Join(parts, " ")
}
