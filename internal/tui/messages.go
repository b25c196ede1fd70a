package tui

import (
	"steward-cli/internal/model"
	"steward-cli/internal/toolbar"
)

// Messages delivered by commands. Every listing fetch carries the seq it
// was issued under; a result whose seq no longer matches the screen's
// current one is stale and dropped.

type usersPageMsg struct {
	seq  int
	page model.Page[model.User]
	err  error
}

type tasksPageMsg struct {
	seq  int
	page model.Page[model.Task]
	err  error
}

type userStatsMsg struct {
	stats model.UserStats
	err   error
}

type taskStatsMsg struct {
	stats model.TaskStats
	err   error
}

type dashboardMsg struct {
	seq  int
	dash model.Dashboard
	err  error
}

// assigneesMsg carries the user pool for the assignee facet and picker.
type assigneesMsg struct {
	users []model.User
	err   error
}

// announcePublishMsg publishes an armed selection announcement one cycle
// after the keypress that armed it.
type announcePublishMsg struct {
	screen  screenID
	pending toolbar.Pending
}

// announceExpireMsg retires a published announcement after
// toolbar.ClearAnnouncementAfter. Stale seqs are no-ops.
type announceExpireMsg struct {
	screen screenID
	seq    int
}

// actionDoneMsg reports a finished bulk action. text goes to the
// minibuffer; refetch reloads the screen the action ran on.
type actionDoneMsg struct {
	screen  screenID
	text    string
	err     error
	refetch bool
}

// minibufferClearMsg clears the minibuffer if seq is still current.
type minibufferClearMsg struct {
	seq int
}
