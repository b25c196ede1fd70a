package apiclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"steward-cli/internal/model"
	"steward-cli/internal/server"
)

func sp(s string) *string { return &s }

func newClientServer(t *testing.T, seed bool) (*Client, *server.Store) {
	t.Helper()
	ctx := context.Background()
	st, err := server.Open(ctx, filepath.Join(t.TempDir(), "steward.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if seed {
		if err := server.Seed(ctx, st, server.SeedOptions{}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	ts := httptest.NewServer(server.NewServer(st).GenerateRoutes())
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, st
}

func TestNewAddsSchemeToBareHost(t *testing.T) {
	c, err := New("127.0.0.1:8000", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.base.Scheme != "http" || c.base.Host != "127.0.0.1:8000" {
		t.Fatalf("unexpected base: %v", c.base)
	}
}

func TestLoginAdoptsToken(t *testing.T) {
	c, _ := newClientServer(t, true)
	ctx := context.Background()

	tok, err := c.Login(ctx, "superadmin", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tok.AccessToken == "" || tok.TokenType != "bearer" {
		t.Fatalf("unexpected token: %+v", tok)
	}

	// The client should carry the fresh token without a SetToken call.
	p, err := c.Profile(ctx)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Username != "superadmin" {
		t.Fatalf("expected superadmin, got %+v", p)
	}
}

func TestUnauthorizedErrors(t *testing.T) {
	c, _ := newClientServer(t, true)
	ctx := context.Background()

	_, err := c.Login(ctx, "superadmin", "wrong")
	if err == nil {
		t.Fatalf("expected login failure")
	}
	if !IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
	if err.Error() != "incorrect username or password" {
		t.Fatalf("expected the server detail, got %q", err.Error())
	}

	if _, err := c.Profile(ctx); !IsUnauthorized(err) {
		t.Fatalf("expected 401 without token, got %v", err)
	}
}

func TestListUsersAppliesServerDefaultSort(t *testing.T) {
	c, _ := newClientServer(t, true)

	// An empty query must omit sort_by entirely so the server default
	// (createdAt desc) applies: the last seeded user comes back first.
	page, err := c.ListUsers(context.Background(), model.UserListQuery{})
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if page.Total != 6 || len(page.Data) != 6 {
		t.Fatalf("expected 6 users, got total=%d len=%d", page.Total, len(page.Data))
	}
	if page.Data[0].Username != "qianqi" {
		t.Fatalf("expected newest first, got %s", page.Data[0].Username)
	}
}

func TestUserRoundTrip(t *testing.T) {
	c, _ := newClientServer(t, false)
	ctx := context.Background()

	created, err := c.CreateUser(ctx, model.UserPatch{
		FirstName: sp("Grace"),
		LastName:  sp("Hopper"),
		Username:  sp("ghopper"),
		Email:     sp("ghopper@example.com"),
		Password:  sp("secret99"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != model.UserStatusActive || created.Role != model.RoleCashier {
		t.Fatalf("unexpected defaults: %+v", created)
	}

	updated, err := c.UpdateUser(ctx, created.ID, model.UserPatch{Email: sp("grace@example.com")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Email != "grace@example.com" || updated.Username != "ghopper" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if _, err := c.DeleteUser(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = c.GetUser(ctx, created.ID)
	var se StatusError
	if !errors.As(err, &se) || se.StatusCode != 404 {
		t.Fatalf("expected 404 after delete, got %v", err)
	}
}

func TestTaskFlow(t *testing.T) {
	c, _ := newClientServer(t, true)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, model.TaskPatch{Title: sp("Ship the exporter")})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.Status != model.TaskTodo || created.Priority != model.PriorityMedium {
		t.Fatalf("unexpected defaults: %+v", created)
	}

	if _, err := c.SetTaskStatus(ctx, created.ID, model.TaskDone); err != nil {
		t.Fatalf("set status: %v", err)
	}

	users, err := c.ListUsers(ctx, model.UserListQuery{Search: "superadmin"})
	if err != nil {
		t.Fatalf("find assignee: %v", err)
	}
	if _, err := c.AssignTask(ctx, created.ID, users.Data[0].ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	got, err := c.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != model.TaskDone || got.Assignee == nil {
		t.Fatalf("mutations did not land: %+v", got)
	}

	done, err := c.ExportTasks(ctx, model.StringList{"done"}, nil, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	// One staple task is done-high plus the one above.
	found := false
	for _, tk := range done {
		if tk.ID == created.ID {
			found = true
		}
		if tk.Status != model.TaskDone {
			t.Fatalf("export filter leaked %+v", tk)
		}
	}
	if !found {
		t.Fatalf("exported set misses the new task")
	}

	res, err := c.ImportTasks(ctx, []model.TaskPatch{
		{Title: sp("imported a")},
		{Title: sp("broken"), Status: taskStatusPtr("paused")},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.ImportedCount != 1 || res.FailedCount != 1 {
		t.Fatalf("unexpected import counts: %+v", res)
	}

	dash, err := c.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.RecentTasks) != 5 {
		t.Fatalf("expected 5 recent tasks, got %d", len(dash.RecentTasks))
	}
}

func taskStatusPtr(s model.TaskStatus) *model.TaskStatus { return &s }
