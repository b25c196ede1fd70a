package apiclient

import (
	"context"
	"net/http"

	"steward-cli/internal/model"
)

func (c *Client) ListTasks(ctx context.Context, q model.TaskListQuery) (model.Page[model.Task], error) {
	var page model.Page[model.Task]
	err := c.do(ctx, http.MethodPost, "/api/tasks", q, &page)
	return page, err
}

func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks/detail", idBody{TaskID: id}, &t)
	return t, err
}

func (c *Client) CreateTask(ctx context.Context, data model.TaskPatch) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks/create", map[string]any{"task_data": data}, &t)
	return t, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, data model.TaskPatch) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks/update", map[string]any{
		"task_id":   id,
		"task_data": data,
	}, &t)
	return t, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) (model.Ack, error) {
	var ack model.Ack
	err := c.do(ctx, http.MethodPost, "/api/tasks/delete", idBody{TaskID: id}, &ack)
	return ack, err
}

func (c *Client) BulkDeleteTasks(ctx context.Context, ids []string) (model.BulkResult, error) {
	var res model.BulkResult
	err := c.do(ctx, http.MethodPost, "/api/tasks/bulk-delete", idsBody{IDs: ids}, &res)
	return res, err
}

func (c *Client) SetTaskStatus(ctx context.Context, id string, status model.TaskStatus) (model.Ack, error) {
	var ack model.Ack
	err := c.do(ctx, http.MethodPost, "/api/tasks/status", map[string]any{
		"task_id": id,
		"status":  status,
	}, &ack)
	return ack, err
}

func (c *Client) AssignTask(ctx context.Context, id, assigneeID string) (model.Ack, error) {
	var ack model.Ack
	err := c.do(ctx, http.MethodPost, "/api/tasks/assign", map[string]any{
		"task_id":     id,
		"assignee_id": assigneeID,
	}, &ack)
	return ack, err
}

func (c *Client) ImportTasks(ctx context.Context, tasks []model.TaskPatch) (model.ImportResult, error) {
	var res model.ImportResult
	err := c.do(ctx, http.MethodPost, "/api/tasks/import", map[string]any{"tasks": tasks}, &res)
	return res, err
}

// ExportTasks fetches every matching task, unpaginated. Empty filters mean
// the whole table.
func (c *Client) ExportTasks(ctx context.Context, status, label, priority model.StringList) ([]model.Task, error) {
	var env model.Envelope[[]model.Task]
	err := c.do(ctx, http.MethodPost, "/api/tasks/export", map[string]any{
		"status":   status,
		"label":    label,
		"priority": priority,
	}, &env)
	return env.Data, err
}

func (c *Client) TaskStats(ctx context.Context) (model.TaskStats, error) {
	var stats model.TaskStats
	err := c.do(ctx, http.MethodPost, "/api/tasks/stats", nil, &stats)
	return stats, err
}

func (c *Client) Dashboard(ctx context.Context) (model.Dashboard, error) {
	var env model.Envelope[model.Dashboard]
	err := c.do(ctx, http.MethodPost, "/api/tasks/dashboard", nil, &env)
	return env.Data, err
}
