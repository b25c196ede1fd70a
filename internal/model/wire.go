package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Wire shapes for the admin API. Request bodies use snake_case parameter
// names; entity payloads and list envelopes use camelCase. Both follow the
// backend this client/server pair mocks.

// StringList accepts a JSON array, a single string, or a comma-separated
// string. List endpoints receive filters this way because the transport may
// collapse multi-value parameters into one string.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = SplitList(s)
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(l))
}

// SplitList splits a comma-separated value, trimming whitespace and
// dropping empty segments. A plain value yields a one-element list.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	DefaultSortBy    = "createdAt"
	DefaultSortOrder = "desc"
)

type UserListQuery struct {
	Page      int        `json:"page,omitempty"`
	PageSize  int        `json:"page_size,omitempty"`
	Search    string     `json:"search,omitempty"`
	Status    StringList `json:"status,omitempty"`
	Role      StringList `json:"role,omitempty"`
	SortBy    string     `json:"sort_by,omitempty"`
	SortOrder string     `json:"sort_order,omitempty"`
}

type TaskListQuery struct {
	Page      int        `json:"page,omitempty"`
	PageSize  int        `json:"page_size,omitempty"`
	Search    string     `json:"search,omitempty"`
	Status    StringList `json:"status,omitempty"`
	Label     StringList `json:"label,omitempty"`
	Priority  StringList `json:"priority,omitempty"`
	Assignee  StringList `json:"assignee,omitempty"`
	SortBy    string     `json:"sort_by,omitempty"`
	SortOrder string     `json:"sort_order,omitempty"`
}

// UserPatch is the partial payload carried under user_data. Nil fields are
// left unchanged; the same shape serves create (applied to a zero User) and
// update. Password is consumed by the server and never stored on the entity.
type UserPatch struct {
	FirstName   *string     `json:"firstName,omitempty"`
	LastName    *string     `json:"lastName,omitempty"`
	Username    *string     `json:"username,omitempty"`
	Email       *string     `json:"email,omitempty"`
	PhoneNumber *string     `json:"phoneNumber,omitempty"`
	Status      *UserStatus `json:"status,omitempty"`
	Role        *UserRole   `json:"role,omitempty"`
	Password    *string     `json:"password,omitempty"`
}

// Apply copies the set fields onto u.
func (p UserPatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		v := *p.PhoneNumber
		u.PhoneNumber = &v
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}

// TaskPatch is the partial payload carried under task_data.
type TaskPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Label       *TaskLabel    `json:"label,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	Assignee    *string       `json:"assignee,omitempty"`
}

// Apply copies the set fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		v := *p.Description
		t.Description = &v
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Label != nil {
		t.Label = *p.Label
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		v := *p.DueDate
		t.DueDate = &v
	}
	if p.Assignee != nil {
		v := *p.Assignee
		t.Assignee = &v
	}
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Success  bool   `json:"success"`
	Data     []T    `json:"data"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// TotalPages derives the page count PageRangeGuard consumes.
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Ack is the message-only success payload (delete, activate, logout, ...).
type Ack struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Envelope wraps a single data payload in the standard response frame
// (task export, dashboard).
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
}

type BulkResult struct {
	Code         int      `json:"code"`
	Message      string   `json:"message"`
	Success      bool     `json:"success"`
	DeletedCount int      `json:"deleted_count"`
	FailedCount  int      `json:"failed_count"`
	FailedIDs    []string `json:"failed_ids"`
}

type ImportResult struct {
	Code          int      `json:"code"`
	Message       string   `json:"message"`
	Success       bool     `json:"success"`
	ImportedCount int      `json:"imported_count"`
	FailedCount   int      `json:"failed_count"`
	FailedTasks   []string `json:"failed_tasks"`
}

type InviteResult struct {
	Code         int      `json:"code"`
	Message      string   `json:"message"`
	Success      bool     `json:"success"`
	InvitedUsers []string `json:"invited_users"`
}

type UserStats struct {
	TotalUsers     int `json:"total_users"`
	ActiveUsers    int `json:"active_users"`
	InactiveUsers  int `json:"inactive_users"`
	InvitedUsers   int `json:"invited_users"`
	SuspendedUsers int `json:"suspended_users"`
}

type TaskStats struct {
	TotalTasks      int            `json:"total_tasks"`
	BacklogTasks    int            `json:"backlog_tasks"`
	TodoTasks       int            `json:"todo_tasks"`
	InProgressTasks int            `json:"in_progress_tasks"`
	DoneTasks       int            `json:"done_tasks"`
	CanceledTasks   int            `json:"canceled_tasks"`
	TasksByPriority map[string]int `json:"tasks_by_priority"`
	TasksByLabel    map[string]int `json:"tasks_by_label"`
}

type Dashboard struct {
	RecentTasks          []Task         `json:"recent_tasks"`
	StatusDistribution   map[string]int `json:"status_distribution"`
	PriorityDistribution map[string]int `json:"priority_distribution"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Profile struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      UserRole   `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}
