package apiclient

import (
	"context"
	"net/http"

	"steward-cli/internal/model"
)

// Login exchanges credentials for a bearer token and adopts it on the
// client, so the caller can keep using the same instance.
func (c *Client) Login(ctx context.Context, username, password string) (model.Token, error) {
	var tok model.Token
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &tok)
	if err != nil {
		return model.Token{}, err
	}
	c.token = tok.AccessToken
	return tok, nil
}

func (c *Client) Profile(ctx context.Context) (model.Profile, error) {
	var p model.Profile
	err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &p)
	return p, err
}

func (c *Client) Logout(ctx context.Context) (model.Ack, error) {
	var ack model.Ack
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, &ack)
	return ack, err
}
