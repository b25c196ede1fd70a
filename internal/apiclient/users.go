package apiclient

import (
	"context"
	"net/http"

	"steward-cli/internal/model"
)

func (c *Client) ListUsers(ctx context.Context, q model.UserListQuery) (model.Page[model.User], error) {
	var page model.Page[model.User]
	err := c.do(ctx, http.MethodPost, "/api/users", q, &page)
	return page, err
}

func (c *Client) GetUser(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodPost, "/api/users/detail", idBody{UserID: id}, &u)
	return u, err
}

func (c *Client) CreateUser(ctx context.Context, data model.UserPatch) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodPost, "/api/users/create", map[string]any{"user_data": data}, &u)
	return u, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, data model.UserPatch) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodPost, "/api/users/update", map[string]any{
		"user_id":   id,
		"user_data": data,
	}, &u)
	return u, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) (model.Ack, error) {
	var ack model.Ack
	err := c.do(ctx, http.MethodPost, "/api/users/delete", idBody{UserID: id}, &ack)
	return ack, err
}

func (c *Client) BulkDeleteUsers(ctx context.Context, ids []string) (model.BulkResult, error) {
	var res model.BulkResult
	err := c.do(ctx, http.MethodPost, "/api/users/bulk-delete", idsBody{IDs: ids}, &res)
	return res, err
}

// InviteUser creates an invited account from an email address. An empty
// role defaults server-side to cashier.
func (c *Client) InviteUser(ctx context.Context, email string, role model.UserRole) (model.InviteResult, error) {
	var res model.InviteResult
	err := c.do(ctx, http.MethodPost, "/api/users/invite", map[string]any{
		"email": email,
		"role":  role,
	}, &res)
	return res, err
}

func (c *Client) ActivateUser(ctx context.Context, id string) (model.Ack, error) {
	var ack model.Ack
	err := c.do(ctx, http.MethodPost, "/api/users/activate", idBody{UserID: id}, &ack)
	return ack, err
}

func (c *Client) SuspendUser(ctx context.Context, id string) (model.Ack, error) {
	var ack model.Ack
	err := c.do(ctx, http.MethodPost, "/api/users/suspend", idBody{UserID: id}, &ack)
	return ack, err
}

func (c *Client) UserStats(ctx context.Context) (model.UserStats, error) {
	var stats model.UserStats
	err := c.do(ctx, http.MethodPost, "/api/users/stats", nil, &stats)
	return stats, err
}
