package model

import (
	"fmt"
	"time"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusInvited   UserStatus = "invited"
	UserStatusSuspended UserStatus = "suspended"
)

// UserStatuses lists all statuses in display order (used by filter facets
// and seeding).
func UserStatuses() []UserStatus {
	return []UserStatus{UserStatusActive, UserStatusInactive, UserStatusInvited, UserStatusSuspended}
}

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusInvited, UserStatusSuspended:
		return true
	}
	return false
}

type UserRole string

const (
	RoleSuperadmin UserRole = "superadmin"
	RoleAdmin      UserRole = "admin"
	RoleManager    UserRole = "manager"
	RoleCashier    UserRole = "cashier"
)

func UserRoles() []UserRole {
	return []UserRole{RoleSuperadmin, RoleAdmin, RoleManager, RoleCashier}
}

func (r UserRole) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleManager, RoleCashier:
		return true
	}
	return false
}

type User struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	PhoneNumber *string    `json:"phoneNumber,omitempty"`
	Status      UserStatus `json:"status"`
	Role        UserRole   `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type TaskStatus string

const (
	TaskBacklog    TaskStatus = "backlog"
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in progress"
	TaskDone       TaskStatus = "done"
	TaskCanceled   TaskStatus = "canceled"
)

// TaskStatuses lists statuses in workflow order. Next/Prev cycle through it.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskBacklog, TaskTodo, TaskInProgress, TaskDone, TaskCanceled}
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskBacklog, TaskTodo, TaskInProgress, TaskDone, TaskCanceled:
		return true
	}
	return false
}

// Next returns the status one step further along the workflow, stopping at
// the last entry.
func (s TaskStatus) Next() TaskStatus {
	all := TaskStatuses()
	for i, st := range all {
		if st == s && i+1 < len(all) {
			return all[i+1]
		}
	}
	return s
}

// IsEnd reports whether the status terminates the workflow (done or
// canceled).
func (s TaskStatus) IsEnd() bool {
	return s == TaskDone || s == TaskCanceled
}

type TaskLabel string

const (
	LabelBug           TaskLabel = "bug"
	LabelFeature       TaskLabel = "feature"
	LabelDocumentation TaskLabel = "documentation"
)

func TaskLabels() []TaskLabel {
	return []TaskLabel{LabelBug, LabelFeature, LabelDocumentation}
}

func (l TaskLabel) Valid() bool {
	switch l {
	case LabelBug, LabelFeature, LabelDocumentation:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

func TaskPriorities() []TaskPriority {
	return []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Label       TaskLabel    `json:"label"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Assignee    *string      `json:"assignee,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ValidateUser checks the fields create/update accept. Zero values pass so
// partial updates can reuse it.
func ValidateUser(u User) error {
	if u.Status != "" && !u.Status.Valid() {
		return fmt.Errorf("unknown user status: %s", u.Status)
	}
	if u.Role != "" && !u.Role.Valid() {
		return fmt.Errorf("unknown user role: %s", u.Role)
	}
	return nil
}

func ValidateTask(t Task) error {
	if t.Status != "" && !t.Status.Valid() {
		return fmt.Errorf("unknown task status: %s", t.Status)
	}
	if t.Label != "" && !t.Label.Valid() {
		return fmt.Errorf("unknown task label: %s", t.Label)
	}
	if t.Priority != "" && !t.Priority.Valid() {
		return fmt.Errorf("unknown task priority: %s", t.Priority)
	}
	return nil
}
