// Package apiclient implements the client side of the admin API. The CLI
// commands and the console screens both drive the server through [Client];
// it owns the bearer token, the wire envelopes and the error mapping.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
)

type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// New parses the server address and returns a client. A bare host:port gets
// an http scheme. The token may be empty; guarded endpoints then answer 401.
func New(base, token string) (*Client, error) {
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse server address: %w", err)
	}
	return &Client{base: u, http: http.DefaultClient, token: token}, nil
}

// SetToken swaps the bearer token for subsequent requests.
func (c *Client) SetToken(token string) { c.token = token }

// StatusError carries the API's {"detail": ...} error payload.
type StatusError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"detail"`
}

func (e StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsUnauthorized reports whether err is a 401 from the server, which the
// callers surface as "log in first" rather than a generic failure.
func IsUnauthorized(err error) bool {
	var se StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}

func checkError(resp *http.Response, body []byte) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	se := StatusError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, &se); err != nil {
		// Not the expected shape; use the raw body as the message.
		se.Detail = strings.TrimSpace(string(body))
	}
	return se
}

func (c *Client) do(ctx context.Context, method, path string, reqData, respData any) error {
	var reqBody io.Reader
	if reqData != nil {
		data, err := json.Marshal(reqData)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reqBody)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", fmt.Sprintf("steward-cli (%s %s) Go/%s", runtime.GOARCH, runtime.GOOS, runtime.Version()))
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := checkError(resp, body); err != nil {
		return err
	}
	if len(body) > 0 && respData != nil {
		return json.Unmarshal(body, respData)
	}
	return nil
}

// Health pings the unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

type idBody struct {
	UserID string `json:"user_id,omitempty"`
	TaskID string `json:"task_id,omitempty"`
}

type idsBody struct {
	IDs []string `json:"ids"`
}
