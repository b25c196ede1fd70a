// Package screens declares the table configuration for each listing
// surface and maps engine state to the typed list queries the API takes.
// Both the TUI and the CLI's --at flag go through these, so an address
// copied from one surface means the same thing on the other.
package screens

import (
	"strings"

	"steward-cli/internal/model"
	"steward-cli/internal/tablestate"
)

// Users is the users listing: a username search box plus status and role
// facets. No default sort column; until the user sorts, ordering is left
// to the server, which lists newest first.
func Users() tablestate.Config {
	return tablestate.Config{
		Filters: []tablestate.FilterConfig{
			{ColumnID: "username", SearchKey: "username", Kind: tablestate.FilterString},
			{ColumnID: "status", SearchKey: "status", Kind: tablestate.FilterArray},
			{ColumnID: "role", SearchKey: "role", Kind: tablestate.FilterArray},
		},
		Sorting:                  tablestate.SortingConfig{Enabled: true},
		PreserveSearchAfterQuery: true,
	}
}

// Tasks is the tasks listing: a title search box, the three facet columns,
// an assignee facet, and a createdAt-descending default sort.
func Tasks() tablestate.Config {
	return tablestate.Config{
		Filters: []tablestate.FilterConfig{
			{ColumnID: "title", SearchKey: "title", Kind: tablestate.FilterString},
			{ColumnID: "status", SearchKey: "status", Kind: tablestate.FilterArray},
			{ColumnID: "label", SearchKey: "label", Kind: tablestate.FilterArray},
			{ColumnID: "priority", SearchKey: "priority", Kind: tablestate.FilterArray},
			{ColumnID: "assignee", SearchKey: "assignee", Kind: tablestate.FilterArray},
		},
		Sorting: tablestate.SortingConfig{
			Enabled:          true,
			DefaultSortBy:    "createdAt",
			DefaultSortOrder: "desc",
		},
		PreserveSearchAfterQuery: true,
	}
}

// UserQuery maps engine state to the users list query. The username search
// column feeds the API's free-text search, which matches names, usernames,
// and emails server-side.
func UserQuery(st tablestate.State) model.UserListQuery {
	q := model.UserListQuery{
		Page:     st.Pagination.PageIndex + 1,
		PageSize: st.Pagination.PageSize,
	}
	if f, ok := st.Filter("username"); ok {
		q.Search = f.Text()
	}
	if f, ok := st.Filter("status"); ok {
		q.Status = model.StringList(f.Values())
	}
	if f, ok := st.Filter("role"); ok {
		q.Role = model.StringList(f.Values())
	}
	q.SortBy, q.SortOrder = firstSort(st)
	return q
}

// TaskQuery maps engine state to the tasks list query.
func TaskQuery(st tablestate.State) model.TaskListQuery {
	q := model.TaskListQuery{
		Page:     st.Pagination.PageIndex + 1,
		PageSize: st.Pagination.PageSize,
	}
	if f, ok := st.Filter("title"); ok {
		q.Search = f.Text()
	}
	if f, ok := st.Filter("status"); ok {
		q.Status = model.StringList(f.Values())
	}
	if f, ok := st.Filter("label"); ok {
		q.Label = model.StringList(f.Values())
	}
	if f, ok := st.Filter("priority"); ok {
		q.Priority = model.StringList(f.Values())
	}
	if f, ok := st.Filter("assignee"); ok {
		q.Assignee = model.StringList(f.Values())
	}
	q.SortBy, q.SortOrder = firstSort(st)
	return q
}

// firstSort takes the first sort entry; the engine supports a list but the
// API sorts by one column.
func firstSort(st tablestate.State) (by, order string) {
	if len(st.Sorting) == 0 {
		return "", ""
	}
	s := st.Sorting[0]
	order = "asc"
	if s.Descending {
		order = "desc"
	}
	return strings.TrimSpace(s.ColumnID), order
}
