package tui

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func statusPicker(multi bool) picker {
	return newPicker("status", multi, []pickerOption{
		{id: "backlog", label: "backlog", count: 2},
		{id: "todo", label: "todo", count: 3},
		{id: "in progress", label: "in progress", count: 1},
		{id: "done", label: "done", count: 4},
		{id: "canceled", label: "canceled", count: 0},
	})
}

func TestPickerRanksSubstringMatchesFirst(t *testing.T) {
	t.Parallel()

	p := statusPicker(true)
	for _, r := range "do" {
		p, _, _, _ = p.update(keyRune(r))
	}
	vis := p.visible()
	if len(vis) != 5 {
		t.Fatalf("ranking must keep every option, got %d", len(vis))
	}
	// "done" matches at position 0, "todo" at position 2.
	if p.options[vis[0]].id != "done" || p.options[vis[1]].id != "todo" {
		t.Fatalf("expected done, todo first; got %q, %q", p.options[vis[0]].id, p.options[vis[1]].id)
	}
}

func TestPickerEmptyFilterKeepsDeclaredOrder(t *testing.T) {
	t.Parallel()

	p := statusPicker(true)
	if got := p.visible(); !reflect.DeepEqual(got, []int{0, 1, 2, 3, 4}) {
		t.Fatalf("expected declared order, got %v", got)
	}
}

func TestPickerMultiToggleAndConfirm(t *testing.T) {
	t.Parallel()

	p := statusPicker(true)
	p, _, _, _ = p.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	p, _, _, _ = p.update(tea.KeyMsg{Type: tea.KeyDown})
	p, _, _, _ = p.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})

	p, done, canceled, chosen := p.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !done || canceled || chosen != "" {
		t.Fatalf("expected multi confirm, got done=%v canceled=%v chosen=%q", done, canceled, chosen)
	}
	if got := p.selectedIDs(); !reflect.DeepEqual(got, []string{"backlog", "todo"}) {
		t.Fatalf("expected [backlog todo], got %v", got)
	}
}

func TestPickerSingleChoosesUnderCursor(t *testing.T) {
	t.Parallel()

	p := statusPicker(false)
	p, _, _, _ = p.update(tea.KeyMsg{Type: tea.KeyDown})
	p, _, _, _ = p.update(tea.KeyMsg{Type: tea.KeyDown})
	_, done, canceled, chosen := p.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !done || canceled {
		t.Fatalf("expected choice, got done=%v canceled=%v", done, canceled)
	}
	if chosen != "in progress" {
		t.Fatalf("expected %q, got %q", "in progress", chosen)
	}
}

func TestPickerEscCancels(t *testing.T) {
	t.Parallel()

	p := statusPicker(false)
	_, done, canceled, _ := p.update(tea.KeyMsg{Type: tea.KeyEsc})
	if !done || !canceled {
		t.Fatalf("expected cancel, got done=%v canceled=%v", done, canceled)
	}
}

func TestPickerViewShowsMarksAndCounts(t *testing.T) {
	t.Parallel()

	p := statusPicker(true)
	p, _, _, _ = p.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	out := p.view(60)
	if !strings.Contains(out, "[x] backlog") {
		t.Fatalf("expected selected mark in view:\n%s", out)
	}
	if !strings.Contains(out, "(3)") {
		t.Fatalf("expected counts in view:\n%s", out)
	}
}
