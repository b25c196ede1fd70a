// Package toolbar holds the bulk-selection toolbar's state machine: a bar
// that appears while rows are selected, with a roving focus ring over its
// action buttons and a deferred, auto-expiring announcement of the
// selection count for assistive output.
package toolbar

import (
	"fmt"
	"time"
)

// ClearAnnouncementAfter is how long a published announcement stays live.
// Expiring it re-arms duplicate-text detection, so announcing the same
// count twice is not silently swallowed.
const ClearAnnouncementAfter = 3 * time.Second

// Action is one toolbar button.
type Action struct {
	ID    string
	Label string
}

// Pending is an announcement that has been armed but not published yet.
// The host publishes it one cycle later and expires it after
// ClearAnnouncementAfter. Seq guards both steps: a stale publish or expire
// is a no-op, which is how superseded timers cancel.
type Pending struct {
	Seq  int
	Text string
}

// KeyResult says what HandleKey did with a key.
type KeyResult int

const (
	KeyIgnored KeyResult = iota
	KeyFocusMoved
	KeySelectionCleared
)

// Toolbar is visible exactly while the selection count is positive; there
// are no intermediate states. It never mutates the selection itself except
// through the clear callback (the grid's API).
type Toolbar struct {
	actions []Action
	clear   func()

	visible bool
	count   int
	focus   int

	overlays int

	announcement string
	seq          int
}

// New builds a toolbar over a fixed action set. clearSelection is the
// grid's clear API; it must be idempotent. It may be nil in tests.
func New(actions []Action, clearSelection func()) *Toolbar {
	return &Toolbar{actions: append([]Action(nil), actions...), clear: clearSelection}
}

// SetSelectionCount drives the hidden/visible machine. Entering visible or
// changing the count while visible arms a new announcement; the caller
// schedules its publish and expiry. Dropping to zero hides the bar and
// cancels anything in flight.
func (t *Toolbar) SetSelectionCount(n int) (Pending, bool) {
	if n < 0 {
		n = 0
	}
	wasVisible := t.visible
	prev := t.count
	t.count = n
	t.visible = n > 0

	if !t.visible {
		// Bump the token so a pending publish or expiry lands stale.
		if wasVisible {
			t.seq++
			t.announcement = ""
		}
		return Pending{}, false
	}
	if !wasVisible {
		t.focus = 0
	}
	if wasVisible && n == prev {
		return Pending{}, false
	}
	t.seq++
	return Pending{Seq: t.seq, Text: fmt.Sprintf("%d selected", n)}, true
}

func (t *Toolbar) Visible() bool        { return t.visible }
func (t *Toolbar) SelectionCount() int  { return t.count }
func (t *Toolbar) FocusIndex() int      { return t.focus }
func (t *Toolbar) Actions() []Action    { return append([]Action(nil), t.actions...) }
func (t *Toolbar) Announcement() string { return t.announcement }

// FocusedAction returns the button the roving focus is on.
func (t *Toolbar) FocusedAction() (Action, bool) {
	if !t.visible || t.focus < 0 || t.focus >= len(t.actions) {
		return Action{}, false
	}
	return t.actions[t.focus], true
}

// Publish makes a pending announcement live. Returns false if it was
// superseded in the meantime.
func (t *Toolbar) Publish(p Pending) bool {
	if p.Seq != t.seq || !t.visible {
		return false
	}
	t.announcement = p.Text
	return true
}

// Expire clears the live announcement if seq is still current.
func (t *Toolbar) Expire(seq int) bool {
	if seq != t.seq {
		return false
	}
	t.announcement = ""
	return true
}

// RegisterOverlay marks a nested transient overlay (a dropdown, a modal)
// owned by one of the toolbar's actions as open. While any registration is
// live, Escape is left for the overlay to handle instead of clearing the
// selection. The returned release is safe to call more than once.
func (t *Toolbar) RegisterOverlay() (release func()) {
	t.overlays++
	released := false
	return func() {
		if released {
			return
		}
		released = true
		t.overlays--
	}
}

func (t *Toolbar) OverlayActive() bool { return t.overlays > 0 }

// HandleKey processes a key while the bar is visible. Left/Right move the
// roving focus with wrap-around, Home/End jump to the ends, and Escape
// clears the whole selection unless an overlay is registered.
func (t *Toolbar) HandleKey(key string) KeyResult {
	if !t.visible {
		return KeyIgnored
	}
	switch key {
	case "right":
		return t.moveFocus(1)
	case "left":
		return t.moveFocus(-1)
	case "home":
		if len(t.actions) == 0 {
			return KeyIgnored
		}
		t.focus = 0
		return KeyFocusMoved
	case "end":
		if len(t.actions) == 0 {
			return KeyIgnored
		}
		t.focus = len(t.actions) - 1
		return KeyFocusMoved
	case "esc":
		if t.overlays > 0 {
			return KeyIgnored
		}
		t.ClearSelection()
		return KeySelectionCleared
	}
	return KeyIgnored
}

func (t *Toolbar) moveFocus(delta int) KeyResult {
	n := len(t.actions)
	if n == 0 {
		return KeyIgnored
	}
	t.focus = ((t.focus+delta)%n + n) % n
	return KeyFocusMoved
}

// ClearSelection empties the selection through the grid's API. Idempotent.
func (t *Toolbar) ClearSelection() {
	if t.clear != nil {
		t.clear()
	}
}
