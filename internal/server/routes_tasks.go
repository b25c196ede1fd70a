package server

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"steward-cli/internal/model"
)

// newTaskID mints a display id: TASK- plus eight uppercase hex chars.
func newTaskID() string {
	u := uuid.New()
	return "TASK-" + strings.ToUpper(hex.EncodeToString(u[:4]))
}

type listTasksRequest struct {
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
	Search    string           `json:"search"`
	Status    model.StringList `json:"status"`
	Label     model.StringList `json:"label"`
	Priority  model.StringList `json:"priority"`
	Assignee  model.StringList `json:"assignee"`
	SortBy    *string          `json:"sort_by"`
	SortOrder *string          `json:"sort_order"`
}

type taskDataRequest struct {
	TaskID   string          `json:"task_id"`
	TaskData model.TaskPatch `json:"task_data"`
}

type taskIDRequest struct {
	TaskID string `json:"task_id"`
}

func (s *Server) ListTasksHandler(c *gin.Context) {
	var req listTasksRequest
	if !bindOptionalBody(c, &req) {
		return
	}

	q := model.TaskListQuery{
		Page:      req.Page,
		PageSize:  req.PageSize,
		Search:    req.Search,
		Status:    req.Status,
		Label:     req.Label,
		Priority:  req.Priority,
		Assignee:  req.Assignee,
		SortBy:    model.DefaultSortBy,
		SortOrder: model.DefaultSortOrder,
	}
	if req.SortBy != nil {
		q.SortBy = *req.SortBy
	}
	if req.SortOrder != nil {
		q.SortOrder = *req.SortOrder
	}

	tasks, total, err := s.store.ListTasks(c.Request.Context(), q)
	if err != nil {
		abortError(c, err)
		return
	}
	page, size := clampPage(req.Page, req.PageSize)
	c.JSON(http.StatusOK, model.Page[model.Task]{
		Code:     http.StatusOK,
		Message:  "success",
		Success:  true,
		Data:     tasks,
		Total:    total,
		Page:     page,
		PageSize: size,
	})
}

func (s *Server) TaskDetailHandler(c *gin.Context) {
	var req taskIDRequest
	if !bindBody(c, &req) {
		return
	}
	t, err := s.store.GetTask(c.Request.Context(), req.TaskID)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// buildTask applies a patch onto a zero task and fills the column defaults.
func buildTask(p model.TaskPatch) (model.Task, error) {
	var t model.Task
	p.Apply(&t)
	if t.Status == "" {
		t.Status = model.TaskTodo
	}
	if t.Label == "" {
		t.Label = model.LabelFeature
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Title == "" {
		return model.Task{}, fmt.Errorf("title is required")
	}
	if err := model.ValidateTask(t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *Server) CreateTaskHandler(c *gin.Context) {
	var req taskDataRequest
	if !bindBody(c, &req) {
		return
	}
	t, err := buildTask(req.TaskData)
	if err != nil {
		abortInvalid(c, err.Error())
		return
	}
	if t.Assignee != nil && *t.Assignee != "" {
		ok, err := s.store.UserExists(c.Request.Context(), *t.Assignee)
		if err != nil {
			abortError(c, err)
			return
		}
		if !ok {
			abortInvalid(c, "assignee does not exist")
			return
		}
	}
	t.ID = newTaskID()
	created, err := s.store.CreateTask(c.Request.Context(), t)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (s *Server) UpdateTaskHandler(c *gin.Context) {
	var req taskDataRequest
	if !bindBody(c, &req) {
		return
	}
	var probe model.Task
	req.TaskData.Apply(&probe)
	if err := model.ValidateTask(probe); err != nil {
		abortInvalid(c, err.Error())
		return
	}
	if req.TaskData.Assignee != nil && *req.TaskData.Assignee != "" {
		ok, err := s.store.UserExists(c.Request.Context(), *req.TaskData.Assignee)
		if err != nil {
			abortError(c, err)
			return
		}
		if !ok {
			abortInvalid(c, "assignee does not exist")
			return
		}
	}
	updated, err := s.store.UpdateTask(c.Request.Context(), req.TaskID, req.TaskData)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteTaskHandler(c *gin.Context) {
	var req taskIDRequest
	if !bindBody(c, &req) {
		return
	}
	if err := s.store.DeleteTask(c.Request.Context(), req.TaskID); err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, ack("task deleted"))
}

func (s *Server) BulkDeleteTasksHandler(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if !bindBody(c, &req) {
		return
	}
	deleted, failed := s.store.DeleteTasks(c.Request.Context(), req.IDs)
	if failed == nil {
		failed = []string{}
	}
	c.JSON(http.StatusOK, model.BulkResult{
		Code:         http.StatusOK,
		Message:      fmt.Sprintf("bulk delete finished: %d tasks deleted", deleted),
		Success:      true,
		DeletedCount: deleted,
		FailedCount:  len(failed),
		FailedIDs:    failed,
	})
}

func (s *Server) TaskStatusHandler(c *gin.Context) {
	var req struct {
		TaskID string           `json:"task_id"`
		Status model.TaskStatus `json:"status"`
	}
	if !bindBody(c, &req) {
		return
	}
	if !req.Status.Valid() {
		abortInvalid(c, fmt.Sprintf("unknown task status: %s", req.Status))
		return
	}
	if err := s.store.SetTaskStatus(c.Request.Context(), req.TaskID, req.Status); err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, ack("task status updated"))
}

func (s *Server) AssignTaskHandler(c *gin.Context) {
	var req struct {
		TaskID     string `json:"task_id"`
		AssigneeID string `json:"assignee_id"`
	}
	if !bindBody(c, &req) {
		return
	}
	if _, err := s.store.GetTask(c.Request.Context(), req.TaskID); err != nil {
		abortError(c, err)
		return
	}
	ok, err := s.store.UserExists(c.Request.Context(), req.AssigneeID)
	if err != nil {
		abortError(c, err)
		return
	}
	if !ok {
		abortInvalid(c, "assignee does not exist")
		return
	}
	if err := s.store.SetTaskAssignee(c.Request.Context(), req.TaskID, req.AssigneeID); err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, ack("task assigned"))
}

func (s *Server) ImportTasksHandler(c *gin.Context) {
	var req struct {
		Tasks []model.TaskPatch `json:"tasks"`
	}
	if !bindBody(c, &req) {
		return
	}

	// Invalid rows are counted per task, never aborting the batch.
	failed := []string{}
	toInsert := make([]model.Task, 0, len(req.Tasks))
	for _, p := range req.Tasks {
		t, err := buildTask(p)
		if err != nil {
			title := ""
			if p.Title != nil {
				title = *p.Title
			}
			failed = append(failed, title)
			continue
		}
		t.ID = newTaskID()
		toInsert = append(toInsert, t)
	}

	imported, storeFailed := s.store.ImportTasks(c.Request.Context(), toInsert)
	failed = append(failed, storeFailed...)
	c.JSON(http.StatusOK, model.ImportResult{
		Code:          http.StatusOK,
		Message:       fmt.Sprintf("import finished: %d tasks imported", imported),
		Success:       true,
		ImportedCount: imported,
		FailedCount:   len(failed),
		FailedTasks:   failed,
	})
}

func (s *Server) ExportTasksHandler(c *gin.Context) {
	var req struct {
		Status   model.StringList `json:"status"`
		Label    model.StringList `json:"label"`
		Priority model.StringList `json:"priority"`
	}
	if !bindOptionalBody(c, &req) {
		return
	}
	tasks, err := s.store.AllTasks(c.Request.Context(), req.Status, req.Label, req.Priority)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Envelope[[]model.Task]{
		Code:    http.StatusOK,
		Message: fmt.Sprintf("exported %d tasks", len(tasks)),
		Success: true,
		Data:    tasks,
	})
}

func (s *Server) TaskStatsHandler(c *gin.Context) {
	stats, err := s.store.TaskStats(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) DashboardHandler(c *gin.Context) {
	dash, err := s.store.Dashboard(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Envelope[model.Dashboard]{
		Code:    http.StatusOK,
		Message: "dashboard data ready",
		Success: true,
		Data:    dash,
	})
}
