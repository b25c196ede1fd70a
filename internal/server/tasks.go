package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"steward-cli/internal/model"
)

var taskSortColumns = map[string]string{
	"id":          "id",
	"title":       "title",
	"description": "description",
	"status":      "status",
	"label":       "label",
	"priority":    "priority",
	"dueDate":     "due_date",
	"assignee":    "assignee",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

const taskCols = `id, title, description, status, label, priority, due_date, assignee, created_at, updated_at`

func scanTask(row rowScanner) (model.Task, error) {
	var t model.Task
	var desc, due, assignee sql.NullString
	var created, updated string
	if err := row.Scan(&t.ID, &t.Title, &desc, &t.Status, &t.Label, &t.Priority,
		&due, &assignee, &created, &updated); err != nil {
		return model.Task{}, err
	}
	t.Description = strPtr(desc)
	t.DueDate = timePtr(due)
	t.Assignee = strPtr(assignee)
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return t, nil
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	defer rows.Close()
	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func taskConds(q model.TaskListQuery) cond {
	var c cond
	if q.Search != "" {
		like := "%" + q.Search + "%"
		c.add(`(title LIKE ? OR description LIKE ? OR id LIKE ?)`, like, like, like)
	}
	c.in("status", q.Status)
	c.in("label", q.Label)
	c.in("priority", q.Priority)
	c.in("assignee", q.Assignee)
	return c
}

// ListTasks returns one page of tasks plus the total match count.
func (s *Store) ListTasks(ctx context.Context, q model.TaskListQuery) ([]model.Task, int, error) {
	c := taskConds(q)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+c.clause(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	page, size := clampPage(q.Page, q.PageSize)
	query := `SELECT ` + taskCols + ` FROM tasks` + c.clause() +
		orderBy(taskSortColumns, q.SortBy, q.SortOrder) + ` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(c.args, size, (page-1)*size)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// AllTasks returns every task matching the export filters, unpaginated.
func (s *Store) AllTasks(ctx context.Context, status, label, priority model.StringList) ([]model.Task, error) {
	var c cond
	c.in("status", status)
	c.in("label", label)
	c.in("priority", priority)
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskCols+` FROM tasks`+c.clause(), c.args...)
	if err != nil {
		return nil, fmt.Errorf("export tasks: %w", err)
	}
	return collectTasks(rows)
}

func (s *Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// CreateTask inserts t with server-assigned timestamps and returns the
// stored row.
func (s *Store) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, nullStr(t.Description), string(t.Status), string(t.Label),
		string(t.Priority), nullTime(t.DueDate), nullStr(t.Assignee), fmtTime(now), fmtTime(now))
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, id string, p model.TaskPatch) (model.Task, error) {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	p.Apply(&t)
	t.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, label = ?, priority = ?, due_date = ?, assignee = ?, updated_at = ? WHERE id = ?`,
		t.Title, nullStr(t.Description), string(t.Status), string(t.Label),
		string(t.Priority), nullTime(t.DueDate), nullStr(t.Assignee), fmtTime(t.UpdatedAt), id)
	if err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (s *Store) SetTaskStatus(ctx context.Context, id string, status model.TaskStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), fmtTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) SetTaskAssignee(ctx context.Context, id, assigneeID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET assignee = ?, updated_at = ? WHERE id = ?`,
		assigneeID, fmtTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("assign task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTasks removes ids one by one; per-id failures are counted in the
// result rather than aborting the batch.
func (s *Store) DeleteTasks(ctx context.Context, ids []string) (deleted int, failed []string) {
	for _, id := range ids {
		if err := s.DeleteTask(ctx, id); err != nil {
			failed = append(failed, id)
			continue
		}
		deleted++
	}
	return deleted, failed
}

// ImportTasks inserts tasks one by one. A task naming an unknown assignee
// fails; failures are reported by title.
func (s *Store) ImportTasks(ctx context.Context, tasks []model.Task) (imported int, failedTitles []string) {
	for _, t := range tasks {
		if t.Assignee != nil && *t.Assignee != "" {
			ok, err := s.UserExists(ctx, *t.Assignee)
			if err != nil || !ok {
				failedTitles = append(failedTitles, t.Title)
				continue
			}
		}
		if _, err := s.CreateTask(ctx, t); err != nil {
			failedTitles = append(failedTitles, t.Title)
			continue
		}
		imported++
	}
	return imported, failedTitles
}

func (s *Store) TaskStats(ctx context.Context) (model.TaskStats, error) {
	byStatus, err := s.countBy(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return model.TaskStats{}, fmt.Errorf("task stats: %w", err)
	}
	byPriority, err := s.countBy(ctx, `SELECT priority, COUNT(*) FROM tasks GROUP BY priority`)
	if err != nil {
		return model.TaskStats{}, fmt.Errorf("task stats: %w", err)
	}
	byLabel, err := s.countBy(ctx, `SELECT label, COUNT(*) FROM tasks GROUP BY label`)
	if err != nil {
		return model.TaskStats{}, fmt.Errorf("task stats: %w", err)
	}
	var total int
	for _, n := range byStatus {
		total += n
	}
	return model.TaskStats{
		TotalTasks:      total,
		BacklogTasks:    byStatus[string(model.TaskBacklog)],
		TodoTasks:       byStatus[string(model.TaskTodo)],
		InProgressTasks: byStatus[string(model.TaskInProgress)],
		DoneTasks:       byStatus[string(model.TaskDone)],
		CanceledTasks:   byStatus[string(model.TaskCanceled)],
		TasksByPriority: byPriority,
		TasksByLabel:    byLabel,
	}, nil
}

// Dashboard rolls up the five most recent tasks and the status/priority
// distributions.
func (s *Store) Dashboard(ctx context.Context) (model.Dashboard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskCols+` FROM tasks ORDER BY created_at DESC LIMIT 5`)
	if err != nil {
		return model.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	recent, err := collectTasks(rows)
	if err != nil {
		return model.Dashboard{}, err
	}
	byStatus, err := s.countBy(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return model.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	byPriority, err := s.countBy(ctx, `SELECT priority, COUNT(*) FROM tasks GROUP BY priority`)
	if err != nil {
		return model.Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	return model.Dashboard{
		RecentTasks:          recent,
		StatusDistribution:   byStatus,
		PriorityDistribution: byPriority,
	}, nil
}
