package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// picker is a small option list with a typeahead filter, used for facet
// values in the filter modal and for the status/assignee overlays. In multi
// mode space toggles and enter confirms; in single mode enter chooses the
// option under the cursor.
type picker struct {
	title   string
	options []pickerOption
	filter  textinput.Model
	cursor  int
	multi   bool
}

type pickerOption struct {
	id       string
	label    string
	count    int // -1 hides the count
	selected bool
}

func newPicker(title string, multi bool, options []pickerOption) picker {
	in := textinput.New()
	in.Prompt = "filter: "
	in.CharLimit = 60
	in.Focus()
	return picker{title: title, multi: multi, options: options, filter: in}
}

// visible returns the options ranked against the filter text: substring
// matches first (earliest position wins), then by edit distance. An empty
// filter keeps the declared order.
func (p picker) visible() []int {
	q := strings.ToLower(strings.TrimSpace(p.filter.Value()))
	idx := make([]int, len(p.options))
	for i := range idx {
		idx[i] = i
	}
	if q == "" {
		return idx
	}
	type ranked struct {
		i, pos, dist int
	}
	rs := make([]ranked, 0, len(idx))
	for _, i := range idx {
		label := strings.ToLower(p.options[i].label)
		pos := strings.Index(label, q)
		rs = append(rs, ranked{i: i, pos: pos, dist: levenshtein.ComputeDistance(q, label)})
	}
	sort.SliceStable(rs, func(a, b int) bool {
		ra, rb := rs[a], rs[b]
		if (ra.pos >= 0) != (rb.pos >= 0) {
			return ra.pos >= 0
		}
		if ra.pos >= 0 && ra.pos != rb.pos {
			return ra.pos < rb.pos
		}
		return ra.dist < rb.dist
	})
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.i
	}
	return out
}

// update handles one key. done is true when the picker is finished: chosen
// holds the confirmed option id in single mode and is empty in multi mode
// (read selections from the options). canceled reports esc.
func (p picker) update(msg tea.KeyMsg) (next picker, done, canceled bool, chosen string) {
	vis := p.visible()
	switch msg.String() {
	case "esc":
		return p, true, true, ""
	case "up":
		if p.cursor > 0 {
			p.cursor--
		}
		return p, false, false, ""
	case "down":
		if p.cursor < len(vis)-1 {
			p.cursor++
		}
		return p, false, false, ""
	case " ":
		if p.multi && p.cursor < len(vis) {
			p.options[vis[p.cursor]].selected = !p.options[vis[p.cursor]].selected
			return p, false, false, ""
		}
	case "enter":
		if p.multi {
			return p, true, false, ""
		}
		if p.cursor < len(vis) {
			return p, true, false, p.options[vis[p.cursor]].id
		}
		return p, true, true, ""
	}
	p.filter, _ = p.filter.Update(msg)
	if p.cursor >= len(p.visible()) {
		p.cursor = 0
	}
	return p, false, false, ""
}

func (p picker) selectedIDs() []string {
	var out []string
	for _, o := range p.options {
		if o.selected {
			out = append(out, o.id)
		}
	}
	return out
}

func (p picker) view(width int) string {
	var b strings.Builder
	if p.title != "" {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(p.title))
		b.WriteString("\n")
	}
	b.WriteString(p.filter.View())
	b.WriteString("\n")
	vis := p.visible()
	shown := vis
	if len(shown) > 8 {
		shown = shown[:8]
	}
	cursorStyle := lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg)
	for row, i := range shown {
		o := p.options[i]
		mark := "  "
		if p.multi {
			mark = "[ ] "
			if o.selected {
				mark = "[x] "
			}
		}
		line := mark + o.label
		if o.count >= 0 {
			line += styleMuted().Render(fmt.Sprintf(" (%d)", o.count))
		}
		if row == p.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(truncateLine(line, width))
		b.WriteString("\n")
	}
	if len(vis) > len(shown) {
		b.WriteString(styleMuted().Render(fmt.Sprintf("… %d more", len(vis)-len(shown))))
		b.WriteString("\n")
	}
	return b.String()
}

// truncateLine fits a possibly styled line to width, ellipsis included.
func truncateLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	return xansi.Cut(s, 0, width-1) + "…"
}
