package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"steward-cli/internal/model"
)

// Sortable user columns, keyed by the camelCase names the API accepts.
var userSortColumns = map[string]string{
	"id":          "id",
	"firstName":   "first_name",
	"lastName":    "last_name",
	"username":    "username",
	"email":       "email",
	"phoneNumber": "phone_number",
	"status":      "status",
	"role":        "role",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

const userCols = `id, first_name, last_name, username, email, phone_number, status, role, created_at, updated_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	var phone sql.NullString
	var created, updated string
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email,
		&phone, &u.Status, &u.Role, &created, &updated); err != nil {
		return model.User{}, err
	}
	u.PhoneNumber = strPtr(phone)
	u.CreatedAt = parseTime(created)
	u.UpdatedAt = parseTime(updated)
	return u, nil
}

func userConds(q model.UserListQuery) cond {
	var c cond
	if q.Search != "" {
		like := "%" + q.Search + "%"
		c.add(`(first_name LIKE ? OR last_name LIKE ? OR username LIKE ? OR email LIKE ? OR phone_number LIKE ?)`,
			like, like, like, like, like)
	}
	c.in("status", q.Status)
	c.in("role", q.Role)
	return c
}

// ListUsers returns one page of users plus the total match count.
func (s *Store) ListUsers(ctx context.Context, q model.UserListQuery) ([]model.User, int, error) {
	c := userConds(q)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+c.clause(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page, size := clampPage(q.Page, q.PageSize)
	query := `SELECT ` + userCols + ` FROM users` + c.clause() +
		orderBy(userSortColumns, q.SortBy, q.SortOrder) + ` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(c.args, size, (page-1)*size)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UserByUsername also returns the password hash, for login.
func (s *Store) UserByUsername(ctx context.Context, username string) (model.User, string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userCols+`, password_hash FROM users WHERE username = ?`, username)
	var u model.User
	var phone sql.NullString
	var created, updated, hash string
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email,
		&phone, &u.Status, &u.Role, &created, &updated, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, "", fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return model.User{}, "", fmt.Errorf("get user by username: %w", err)
	}
	u.PhoneNumber = strPtr(phone)
	u.CreatedAt = parseTime(created)
	u.UpdatedAt = parseTime(updated)
	return u, hash, nil
}

// FirstUser returns the oldest row. The development token resolves to it.
func (s *Store) FirstUser(ctx context.Context) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users ORDER BY rowid LIMIT 1`)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("first user: %w", err)
	}
	return u, nil
}

func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM users WHERE id = ?`, id)
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// CreateUser inserts u with server-assigned timestamps and returns the
// stored row. Username and email must be unique.
func (s *Store) CreateUser(ctx context.Context, u model.User, passwordHash string) (model.User, error) {
	if u.Username != "" {
		taken, err := s.exists(ctx, `SELECT 1 FROM users WHERE username = ?`, u.Username)
		if err != nil {
			return model.User{}, err
		}
		if taken {
			return model.User{}, ErrUsernameTaken
		}
	}
	if u.Email != "" {
		taken, err := s.exists(ctx, `SELECT 1 FROM users WHERE email = ?`, u.Email)
		if err != nil {
			return model.User{}, err
		}
		if taken {
			return model.User{}, ErrEmailTaken
		}
	}

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userCols+`, password_hash) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Username, u.Email, nullStr(u.PhoneNumber),
		string(u.Status), string(u.Role), fmtTime(now), fmtTime(now), passwordHash)
	if err != nil {
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// UpdateUser applies a partial patch. Uniqueness is re-checked only for
// fields that actually change.
func (s *Store) UpdateUser(ctx context.Context, id string, p model.UserPatch) (model.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if p.Username != nil && *p.Username != u.Username {
		taken, err := s.exists(ctx, `SELECT 1 FROM users WHERE username = ?`, *p.Username)
		if err != nil {
			return model.User{}, err
		}
		if taken {
			return model.User{}, ErrUsernameTaken
		}
	}
	if p.Email != nil && *p.Email != u.Email {
		taken, err := s.exists(ctx, `SELECT 1 FROM users WHERE email = ?`, *p.Email)
		if err != nil {
			return model.User{}, err
		}
		if taken {
			return model.User{}, ErrEmailTaken
		}
	}

	p.Apply(&u)
	u.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, username = ?, email = ?, phone_number = ?, status = ?, role = ?, updated_at = ? WHERE id = ?`,
		u.FirstName, u.LastName, u.Username, u.Email, nullStr(u.PhoneNumber),
		string(u.Status), string(u.Role), fmtTime(u.UpdatedAt), id)
	if err != nil {
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *Store) SetUserStatus(ctx context.Context, id string, status model.UserStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), fmtTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("set user status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteUsers removes ids one by one; per-id failures are counted in the
// result rather than aborting the batch.
func (s *Store) DeleteUsers(ctx context.Context, ids []string) (deleted int, failed []string) {
	for _, id := range ids {
		if err := s.DeleteUser(ctx, id); err != nil {
			failed = append(failed, id)
			continue
		}
		deleted++
	}
	return deleted, failed
}

func (s *Store) UserStats(ctx context.Context) (model.UserStats, error) {
	counts, err := s.countBy(ctx, `SELECT status, COUNT(*) FROM users GROUP BY status`)
	if err != nil {
		return model.UserStats{}, fmt.Errorf("user stats: %w", err)
	}
	var total int
	for _, n := range counts {
		total += n
	}
	return model.UserStats{
		TotalUsers:     total,
		ActiveUsers:    counts[string(model.UserStatusActive)],
		InactiveUsers:  counts[string(model.UserStatusInactive)],
		InvitedUsers:   counts[string(model.UserStatusInvited)],
		SuspendedUsers: counts[string(model.UserStatusSuspended)],
	}, nil
}
