package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"steward-cli/internal/model"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "steward.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ts := httptest.NewServer(NewServer(st).GenerateRoutes())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { _ = st.Close() })
	return ts, st
}

func newSeededServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	ts, st := newTestServer(t)
	if err := Seed(context.Background(), st, SeedOptions{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return ts, st
}

// post sends a JSON body; a nil body sends no body at all.
func post(t *testing.T, url, token string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(http.MethodPost, url, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func unmarshal[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return v
}

func detailOf(t *testing.T, data []byte) string {
	t.Helper()
	return unmarshal[map[string]string](t, data)["detail"]
}

func TestRootAndHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get root: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	root := unmarshal[map[string]string](t, body)
	if root["message"] == "" {
		t.Fatalf("expected a banner message, got %s", body)
	}

	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	health := unmarshal[map[string]string](t, body)
	if health["status"] != "healthy" {
		t.Fatalf("expected healthy, got %s", body)
	}
}

func TestListUsersEnvelope(t *testing.T) {
	ts, _ := newSeededServer(t)

	status, data := post(t, ts.URL+"/api/users", "", map[string]any{})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}
	page := unmarshal[model.Page[model.User]](t, data)
	if page.Code != 200 || page.Message != "success" || !page.Success {
		t.Fatalf("unexpected envelope: %+v", page)
	}
	if page.Total != 6 || len(page.Data) != 6 {
		t.Fatalf("expected 6 seeded users, got total=%d len=%d", page.Total, len(page.Data))
	}
	if page.Page != 1 || page.PageSize != 10 {
		t.Fatalf("expected defaults 1/10, got %d/%d", page.Page, page.PageSize)
	}
}

func TestListUsersSortKeySemantics(t *testing.T) {
	ts, _ := newSeededServer(t)

	// Absent key: the server default createdAt desc applies, newest first.
	_, data := post(t, ts.URL+"/api/users", "", map[string]any{})
	page := unmarshal[model.Page[model.User]](t, data)
	if page.Data[0].Username != "qianqi" {
		t.Fatalf("expected newest user first, got %s", page.Data[0].Username)
	}

	// Present-but-empty key: no ordering at all, rows come back in rowid order.
	_, data = post(t, ts.URL+"/api/users", "", map[string]any{"sort_by": ""})
	page = unmarshal[model.Page[model.User]](t, data)
	if page.Data[0].Username != "superadmin" {
		t.Fatalf("expected insertion order, got %s first", page.Data[0].Username)
	}

	// Explicit key wins over the default.
	_, data = post(t, ts.URL+"/api/users", "", map[string]any{"sort_by": "username", "sort_order": "asc"})
	page = unmarshal[model.Page[model.User]](t, data)
	if page.Data[0].Username != "lisi" {
		t.Fatalf("expected lisi first, got %s", page.Data[0].Username)
	}
}

func TestListFiltersAcceptStringOrArray(t *testing.T) {
	ts, _ := newSeededServer(t)

	_, data := post(t, ts.URL+"/api/users", "", map[string]any{"status": []string{"active"}})
	asArray := unmarshal[model.Page[model.User]](t, data)

	_, data = post(t, ts.URL+"/api/users", "", map[string]any{"status": "active"})
	asString := unmarshal[model.Page[model.User]](t, data)

	_, data = post(t, ts.URL+"/api/users", "", map[string]any{"status": "active, active"})
	asCSV := unmarshal[model.Page[model.User]](t, data)

	if asArray.Total != 3 || asString.Total != asArray.Total || asCSV.Total != asArray.Total {
		t.Fatalf("expected equivalent filters, got %d/%d/%d",
			asArray.Total, asString.Total, asCSV.Total)
	}
}

func TestDetailRequiresBody(t *testing.T) {
	ts, _ := newSeededServer(t)

	status, data := post(t, ts.URL+"/api/users/detail", "", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", status, data)
	}
	if detailOf(t, data) != "missing request body" {
		t.Fatalf("unexpected detail: %s", data)
	}
}

func TestUserLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)

	status, data := post(t, ts.URL+"/api/users/create", "", map[string]any{
		"user_data": map[string]any{
			"firstName": "Grace",
			"lastName":  "Hopper",
			"username":  "ghopper",
			"email":     "ghopper@example.com",
			"password":  "secret99",
		},
	})
	if status != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", status, data)
	}
	created := unmarshal[model.User](t, data)
	if created.ID == "" || created.Username != "ghopper" {
		t.Fatalf("unexpected created user: %+v", created)
	}
	if created.Status != model.UserStatusActive || created.Role != model.RoleCashier {
		t.Fatalf("expected active cashier defaults, got %s/%s", created.Status, created.Role)
	}

	_, data = post(t, ts.URL+"/api/users/detail", "", map[string]any{"user_id": created.ID})
	got := unmarshal[model.User](t, data)
	if got.Email != "ghopper@example.com" {
		t.Fatalf("unexpected detail: %+v", got)
	}

	status, data = post(t, ts.URL+"/api/users/update", "", map[string]any{
		"user_id":   created.ID,
		"user_data": map[string]any{"role": "manager"},
	})
	if status != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", status, data)
	}
	if unmarshal[model.User](t, data).Role != model.RoleManager {
		t.Fatalf("role update did not apply: %s", data)
	}

	status, data = post(t, ts.URL+"/api/users/suspend", "", map[string]any{"user_id": created.ID})
	if status != http.StatusOK {
		t.Fatalf("suspend: expected 200, got %d: %s", status, data)
	}
	if msg := unmarshal[model.Ack](t, data); !msg.Success || msg.Message != "user suspended" {
		t.Fatalf("unexpected ack: %+v", msg)
	}

	status, _ = post(t, ts.URL+"/api/users/activate", "", map[string]any{"user_id": created.ID})
	if status != http.StatusOK {
		t.Fatalf("activate: expected 200, got %d", status)
	}

	status, data = post(t, ts.URL+"/api/users/delete", "", map[string]any{"user_id": created.ID})
	if status != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", status, data)
	}
	status, data = post(t, ts.URL+"/api/users/detail", "", map[string]any{"user_id": created.ID})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d: %s", status, data)
	}
	if detailOf(t, data) == "" {
		t.Fatalf("expected an error detail, got %s", data)
	}
}

func TestCreateUserRejectsBadRole(t *testing.T) {
	ts, _ := newTestServer(t)

	status, data := post(t, ts.URL+"/api/users/create", "", map[string]any{
		"user_data": map[string]any{"username": "x", "email": "x@example.com", "role": "wizard"},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", status, data)
	}
}

func TestBulkDeleteUsers(t *testing.T) {
	ts, st := newTestServer(t)
	a := mustCreateUser(t, st, "ada", model.UserStatusActive, model.RoleAdmin)
	b := mustCreateUser(t, st, "bob", model.UserStatusActive, model.RoleCashier)

	status, data := post(t, ts.URL+"/api/users/bulk-delete", "", map[string]any{
		"ids": []string{a.ID, "missing", b.ID},
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}
	res := unmarshal[model.BulkResult](t, data)
	if res.DeletedCount != 2 || res.FailedCount != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if len(res.FailedIDs) != 1 || res.FailedIDs[0] != "missing" {
		t.Fatalf("unexpected failed ids: %v", res.FailedIDs)
	}
}

func TestInviteUser(t *testing.T) {
	ts, _ := newSeededServer(t)

	status, data := post(t, ts.URL+"/api/users/invite", "", map[string]any{
		"email": "newhire@example.com",
	})
	if status != http.StatusOK {
		t.Fatalf("invite: expected 200, got %d: %s", status, data)
	}
	res := unmarshal[model.InviteResult](t, data)
	if len(res.InvitedUsers) != 1 || res.InvitedUsers[0] != "newhire@example.com" {
		t.Fatalf("unexpected invite result: %+v", res)
	}

	_, data = post(t, ts.URL+"/api/users", "", map[string]any{"search": "newhire"})
	page := unmarshal[model.Page[model.User]](t, data)
	if page.Total != 1 {
		t.Fatalf("expected the invited user, got %d", page.Total)
	}
	u := page.Data[0]
	if u.Username != "newhire" || u.Status != model.UserStatusInvited || u.Role != model.RoleCashier {
		t.Fatalf("unexpected invited user: %+v", u)
	}

	// Inviting the same address again trips the email uniqueness check.
	status, data = post(t, ts.URL+"/api/users/invite", "", map[string]any{"email": "newhire@example.com"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", status, data)
	}
	if detailOf(t, data) != "email already exists" {
		t.Fatalf("unexpected detail: %s", data)
	}
}

func TestAuthFlow(t *testing.T) {
	ts, _ := newSeededServer(t)

	status, data := post(t, ts.URL+"/api/auth/login", "", map[string]any{
		"username": "superadmin", "password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", status, data)
	}
	if detailOf(t, data) != "incorrect username or password" {
		t.Fatalf("unexpected detail: %s", data)
	}

	status, data = post(t, ts.URL+"/api/auth/login", "", map[string]any{
		"username": "superadmin", "password": "admin123",
	})
	if status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", status, data)
	}
	tok := unmarshal[model.Token](t, data)
	if tok.AccessToken == "" || tok.TokenType != "bearer" {
		t.Fatalf("unexpected token: %+v", tok)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d: %s", resp.StatusCode, body)
	}
	profile := unmarshal[model.Profile](t, body)
	if profile.Username != "superadmin" || profile.Role != model.RoleSuperadmin {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	// Without a token the guarded routes answer 401 and a challenge header.
	resp, err = http.Get(ts.URL + "/api/auth/profile")
	if err != nil {
		t.Fatalf("unauthenticated profile: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if resp.Header.Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("expected challenge header, got %q", resp.Header.Get("WWW-Authenticate"))
	}
	if detailOf(t, body) != "could not validate credentials" {
		t.Fatalf("unexpected detail: %s", body)
	}

	status, data = post(t, ts.URL+"/api/auth/logout", tok.AccessToken, map[string]any{})
	if status != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d: %s", status, data)
	}
	if msg := unmarshal[model.Ack](t, data); msg.Message != "logged out" {
		t.Fatalf("unexpected ack: %+v", msg)
	}
}

func TestDevTokenResolvesToFirstUser(t *testing.T) {
	ts, _ := newSeededServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+devToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if p := unmarshal[model.Profile](t, body); p.Username != "superadmin" {
		t.Fatalf("expected first seeded user, got %+v", p)
	}
}

func TestTaskCreateAppliesDefaults(t *testing.T) {
	ts, _ := newTestServer(t)

	status, data := post(t, ts.URL+"/api/tasks/create", "", map[string]any{
		"task_data": map[string]any{"title": "Ship it"},
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}
	tk := unmarshal[model.Task](t, data)
	if tk.Status != model.TaskTodo || tk.Label != model.LabelFeature || tk.Priority != model.PriorityMedium {
		t.Fatalf("unexpected defaults: %+v", tk)
	}
	if len(tk.ID) != 13 || tk.ID[:5] != "TASK-" {
		t.Fatalf("unexpected id: %q", tk.ID)
	}

	status, data = post(t, ts.URL+"/api/tasks/create", "", map[string]any{
		"task_data": map[string]any{"description": "no title"},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing title, got %d: %s", status, data)
	}

	status, data = post(t, ts.URL+"/api/tasks/create", "", map[string]any{
		"task_data": map[string]any{"title": "x", "assignee": "ghost"},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown assignee, got %d: %s", status, data)
	}
	if detailOf(t, data) != "assignee does not exist" {
		t.Fatalf("unexpected detail: %s", data)
	}
}

func TestTaskStatusAndAssignEndpoints(t *testing.T) {
	ts, st := newTestServer(t)
	ada := mustCreateUser(t, st, "ada", model.UserStatusActive, model.RoleAdmin)
	tk := mustCreateTask(t, st, "Fix it", model.TaskTodo, model.PriorityHigh)

	status, data := post(t, ts.URL+"/api/tasks/status", "", map[string]any{
		"task_id": tk.ID, "status": "paused",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %d: %s", status, data)
	}

	status, data = post(t, ts.URL+"/api/tasks/status", "", map[string]any{
		"task_id": tk.ID, "status": "in progress",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}
	if msg := unmarshal[model.Ack](t, data); msg.Message != "task status updated" {
		t.Fatalf("unexpected ack: %+v", msg)
	}

	status, data = post(t, ts.URL+"/api/tasks/assign", "", map[string]any{
		"task_id": tk.ID, "assignee_id": ada.ID,
	})
	if status != http.StatusOK {
		t.Fatalf("assign: expected 200, got %d: %s", status, data)
	}

	status, data = post(t, ts.URL+"/api/tasks/assign", "", map[string]any{
		"task_id": "TASK-MISSING1", "assignee_id": ada.ID,
	})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown task, got %d: %s", status, data)
	}

	got, err := st.GetTask(context.Background(), tk.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != model.TaskInProgress || got.Assignee == nil || *got.Assignee != ada.ID {
		t.Fatalf("endpoint effects missing: %+v", got)
	}
}

func TestImportTasksEndpoint(t *testing.T) {
	ts, st := newTestServer(t)
	ada := mustCreateUser(t, st, "ada", model.UserStatusActive, model.RoleAdmin)

	status, data := post(t, ts.URL+"/api/tasks/import", "", map[string]any{
		"tasks": []map[string]any{
			{"title": "good", "assignee": ada.ID},
			{"title": "bad status", "status": "paused"},
			{"title": "bad assignee", "assignee": "ghost"},
		},
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}
	res := unmarshal[model.ImportResult](t, data)
	if res.ImportedCount != 1 || res.FailedCount != 2 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if len(res.FailedTasks) != 2 || res.FailedTasks[0] != "bad status" || res.FailedTasks[1] != "bad assignee" {
		t.Fatalf("unexpected failed titles: %v", res.FailedTasks)
	}
}

func TestExportAndDashboardEnvelopes(t *testing.T) {
	ts, st := newTestServer(t)
	mustCreateTask(t, st, "a", model.TaskTodo, model.PriorityMedium)
	mustCreateTask(t, st, "b", model.TaskDone, model.PriorityHigh)

	status, data := post(t, ts.URL+"/api/tasks/export", "", map[string]any{"status": "done"})
	if status != http.StatusOK {
		t.Fatalf("export: expected 200, got %d: %s", status, data)
	}
	exp := unmarshal[model.Envelope[[]model.Task]](t, data)
	if !exp.Success || len(exp.Data) != 1 || exp.Data[0].Title != "b" {
		t.Fatalf("unexpected export: %+v", exp)
	}

	// No body at all is fine for export, stats and dashboard.
	status, data = post(t, ts.URL+"/api/tasks/export", "", nil)
	if status != http.StatusOK {
		t.Fatalf("bodyless export: expected 200, got %d: %s", status, data)
	}

	status, data = post(t, ts.URL+"/api/tasks/dashboard", "", nil)
	if status != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d: %s", status, data)
	}
	dash := unmarshal[model.Envelope[model.Dashboard]](t, data)
	if len(dash.Data.RecentTasks) != 2 {
		t.Fatalf("expected 2 recent tasks, got %d", len(dash.Data.RecentTasks))
	}
	if dash.Data.StatusDistribution["done"] != 1 {
		t.Fatalf("unexpected distribution: %+v", dash.Data.StatusDistribution)
	}

	status, data = post(t, ts.URL+"/api/tasks/stats", "", nil)
	if status != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d: %s", status, data)
	}
	stats := unmarshal[model.TaskStats](t, data)
	if stats.TotalTasks != 2 || stats.DoneTasks != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestListRoutesRejectOtherMethods(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/users")
	if err != nil {
		t.Fatalf("get users: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
