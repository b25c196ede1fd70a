package server

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"steward-cli/internal/model"
)

// SeedOptions controls Seed. Users and Tasks add randomized rows on top of
// the staple fixtures; Reset wipes both tables first.
type SeedOptions struct {
	Users int
	Tasks int
	Reset bool
}

// Seed loads the staple fixtures plus any requested bulk rows. A database
// that already holds users is left alone unless Reset is set.
func Seed(ctx context.Context, st *Store, opts SeedOptions) error {
	if opts.Reset {
		if err := st.wipe(ctx); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}

	n, err := st.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("seed skipped, database already has users", "users", n)
		return nil
	}

	ids, err := seedStapleUsers(ctx, st)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	if err := seedStapleTasks(ctx, st, ids); err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}
	slog.Info("seeded staple fixtures", "users", len(ids))

	if opts.Users > 0 || opts.Tasks > 0 {
		if err := seedBulk(ctx, st, opts, ids); err != nil {
			return fmt.Errorf("seed bulk: %w", err)
		}
	}
	return nil
}

func (s *Store) wipe(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM users`)
	return err
}

// seedStapleUsers inserts the six fixed accounts and returns their ids in
// insertion order; seedStapleTasks assigns by index into that slice.
func seedStapleUsers(ctx context.Context, st *Store) ([]string, error) {
	adminHash, err := hashPassword("admin123")
	if err != nil {
		return nil, err
	}
	userHash, err := hashPassword("user123")
	if err != nil {
		return nil, err
	}

	staples := []struct {
		first, last, username, phone, hash string

		status model.UserStatus
		role   model.UserRole
	}{
		{"Super", "Admin", "superadmin", "13900000001", adminHash, model.UserStatusActive, model.RoleSuperadmin},
		{"Zhang", "San", "zhangsan", "13900000002", userHash, model.UserStatusActive, model.RoleAdmin},
		{"Li", "Si", "lisi", "13900000003", userHash, model.UserStatusActive, model.RoleManager},
		{"Wang", "Wu", "wangwu", "13900000004", userHash, model.UserStatusInactive, model.RoleCashier},
		{"Zhao", "Liu", "zhaoliu", "13900000005", userHash, model.UserStatusInvited, model.RoleCashier},
		{"Qian", "Qi", "qianqi", "13900000006", userHash, model.UserStatusSuspended, model.RoleCashier},
	}

	ids := make([]string, 0, len(staples))
	for _, row := range staples {
		phone := row.phone
		u := model.User{
			ID:          uuid.NewString(),
			FirstName:   row.first,
			LastName:    row.last,
			Username:    row.username,
			Email:       row.username + "@example.com",
			PhoneNumber: &phone,
			Status:      row.status,
			Role:        row.role,
		}
		created, err := st.CreateUser(ctx, u, row.hash)
		if err != nil {
			return nil, err
		}
		ids = append(ids, created.ID)
	}
	return ids, nil
}

func seedStapleTasks(ctx context.Context, st *Store, userIDs []string) error {
	if len(userIDs) < 4 {
		return fmt.Errorf("staple tasks need 4 users, have %d", len(userIDs))
	}
	now := time.Now()
	due := func(days int) *time.Time {
		d := now.AddDate(0, 0, days)
		return &d
	}
	owner := func(i int) *string { return &userIDs[i] }
	str := func(s string) *string { return &s }

	staples := []model.Task{
		{
			Title:       "Finish the user management module",
			Description: str("User CRUD with pagination, search and filtering"),
			Status:      model.TaskDone,
			Label:       model.LabelFeature,
			Priority:    model.PriorityHigh,
			Assignee:    owner(1),
			DueDate:     due(7),
		},
		{
			Title:       "Fix responsive layout on the login page",
			Description: str("The login button renders off screen on mobile"),
			Status:      model.TaskTodo,
			Label:       model.LabelBug,
			Priority:    model.PriorityMedium,
			Assignee:    owner(2),
			DueDate:     due(3),
		},
		{
			Title:       "Write the API reference",
			Description: str("Document every endpoint, its parameters and response shape"),
			Status:      model.TaskInProgress,
			Label:       model.LabelDocumentation,
			Priority:    model.PriorityLow,
			Assignee:    owner(0),
		},
		{
			Title:       "Tune slow database queries",
			Description: str("Profile the slow queries and add the missing indexes"),
			Status:      model.TaskBacklog,
			Label:       model.LabelFeature,
			Priority:    model.PriorityCritical,
			Assignee:    owner(1),
		},
		{
			Title:       "Add task export",
			Description: str("Export the task list to Excel and PDF"),
			Status:      model.TaskTodo,
			Label:       model.LabelFeature,
			Priority:    model.PriorityMedium,
			Assignee:    owner(2),
		},
		{
			Title:       "Fix the permission check bypass",
			Description: str("Some users can reach resources they were never granted"),
			Status:      model.TaskDone,
			Label:       model.LabelBug,
			Priority:    model.PriorityHigh,
			Assignee:    owner(0),
		},
		{
			Title:       "Add unit tests",
			Description: str("Cover the core business logic"),
			Status:      model.TaskBacklog,
			Label:       model.LabelFeature,
			Priority:    model.PriorityLow,
		},
		{
			Title:       "Integrate third-party payments",
			Description: str("Wire up the Alipay and WeChat Pay providers"),
			Status:      model.TaskCanceled,
			Label:       model.LabelFeature,
			Priority:    model.PriorityHigh,
			Assignee:    owner(3),
		},
		{
			Title:       "Refresh the user handbook",
			Description: str("Bring the handbook up to date with the new release"),
			Status:      model.TaskTodo,
			Label:       model.LabelDocumentation,
			Priority:    model.PriorityLow,
			Assignee:    owner(2),
		},
		{
			Title:       "Automate database backups",
			Description: str("Back the database up to cloud storage on a schedule"),
			Status:      model.TaskInProgress,
			Label:       model.LabelFeature,
			Priority:    model.PriorityCritical,
			Assignee:    owner(1),
		},
	}

	for i := range staples {
		staples[i].ID = newTaskID()
		if _, err := st.CreateTask(ctx, staples[i]); err != nil {
			return err
		}
	}
	return nil
}

var (
	seedFirstNames = []string{
		"Alex", "Bella", "Carter", "Dana", "Eli", "Fiona", "Gabe", "Hana",
		"Ivan", "June", "Kira", "Liam", "Mona", "Nate", "Odell", "Pia",
		"Quinn", "Rosa", "Sam", "Tess",
	}
	seedLastNames = []string{
		"Archer", "Brooks", "Chen", "Diaz", "Evans", "Fry", "Gupta", "Hale",
		"Irwin", "Jones", "Khan", "Lopez", "Moss", "Ng", "Ortiz", "Park",
		"Reyes", "Shah", "Tran", "Voss",
	}
	seedTaskVerbs = []string{
		"Refactor", "Document", "Profile", "Migrate", "Review",
		"Stabilize", "Instrument", "Polish", "Benchmark", "Harden",
	}
	seedTaskAreas = []string{
		"the billing pipeline", "the session cache", "the import worker",
		"the audit trail", "the search index", "the webhook retries",
		"the onboarding flow", "the report generator", "the sync scheduler",
		"the export queue",
	}
)

// seedBulk fills the tables with deterministic random rows so pagination and
// filtering have something to chew on. The seed is fixed so repeated runs
// against a reset database produce the same data.
func seedBulk(ctx context.Context, st *Store, opts SeedOptions, userIDs []string) error {
	rng := rand.New(rand.NewSource(42))

	// MinCost keeps large seeds fast; these accounts only exist to fill pages.
	bulkHash, err := bcrypt.GenerateFromPassword([]byte("user123"), bcrypt.MinCost)
	if err != nil {
		return err
	}

	statuses := []model.UserStatus{
		model.UserStatusActive, model.UserStatusActive, model.UserStatusActive,
		model.UserStatusActive, model.UserStatusInactive, model.UserStatusInvited,
		model.UserStatusSuspended,
	}
	roles := []model.UserRole{
		model.RoleCashier, model.RoleCashier, model.RoleCashier,
		model.RoleManager, model.RoleManager, model.RoleAdmin,
	}

	ids := append([]string(nil), userIDs...)
	for i := 0; i < opts.Users; i++ {
		first := seedFirstNames[rng.Intn(len(seedFirstNames))]
		last := seedLastNames[rng.Intn(len(seedLastNames))]
		username := fmt.Sprintf("%s.%s%d", strings.ToLower(first), strings.ToLower(last), i)
		phone := fmt.Sprintf("138%08d", rng.Intn(100000000))
		u := model.User{
			ID:          uuid.NewString(),
			FirstName:   first,
			LastName:    last,
			Username:    username,
			Email:       username + "@example.com",
			PhoneNumber: &phone,
			Status:      statuses[rng.Intn(len(statuses))],
			Role:        roles[rng.Intn(len(roles))],
		}
		created, err := st.CreateUser(ctx, u, string(bulkHash))
		if err != nil {
			return err
		}
		ids = append(ids, created.ID)
	}
	if opts.Users > 0 {
		slog.Info("seeded bulk users", "count", opts.Users)
	}

	taskStatuses := []model.TaskStatus{
		model.TaskTodo, model.TaskTodo, model.TaskInProgress,
		model.TaskInProgress, model.TaskBacklog, model.TaskDone,
		model.TaskDone, model.TaskCanceled,
	}
	labels := []model.TaskLabel{
		model.LabelFeature, model.LabelFeature, model.LabelBug,
		model.LabelBug, model.LabelDocumentation,
	}
	priorities := []model.TaskPriority{
		model.PriorityMedium, model.PriorityMedium, model.PriorityLow,
		model.PriorityHigh, model.PriorityHigh, model.PriorityCritical,
	}

	for i := 0; i < opts.Tasks; i++ {
		t := model.Task{
			ID:       newTaskID(),
			Title:    fmt.Sprintf("%s %s", seedTaskVerbs[rng.Intn(len(seedTaskVerbs))], seedTaskAreas[rng.Intn(len(seedTaskAreas))]),
			Status:   taskStatuses[rng.Intn(len(taskStatuses))],
			Label:    labels[rng.Intn(len(labels))],
			Priority: priorities[rng.Intn(len(priorities))],
		}
		if rng.Intn(10) < 7 {
			id := ids[rng.Intn(len(ids))]
			t.Assignee = &id
		}
		if rng.Intn(10) < 6 {
			d := time.Now().AddDate(0, 0, rng.Intn(61)-30)
			t.DueDate = &d
		}
		if _, err := st.CreateTask(ctx, t); err != nil {
			return err
		}
	}
	if opts.Tasks > 0 {
		slog.Info("seeded bulk tasks", "count", opts.Tasks)
	}
	return nil
}
