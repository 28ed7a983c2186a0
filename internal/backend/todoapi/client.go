// Package todoapi implements the service.Service interface against the
// remote todo REST API. Requests are routed through the authenticated
// transport, which handles bearer injection and the single 401
// refresh-and-retry.
package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ktodo/internal/auth"
	"ktodo/internal/config"
	"ktodo/internal/service"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 10 * time.Second
)

// Client implements service.Service over the todo REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a task API client. httpClient should carry the authenticated
// transport; pass nil to use http.DefaultClient (tests only).
func New(cfg *config.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.APIBaseURL, "/"),
		httpClient: httpClient,
	}
}

// ListTasks returns tasks matching the filters.
func (c *Client) ListTasks(ctx context.Context, filters service.Filters) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, http.MethodGet, "/todos", filters.Query(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task and returns the server's copy.
func (c *Client) CreateTask(ctx context.Context, draft service.Draft) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodPost, "/todos", nil, draft, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.Patch) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), nil, patch, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil, nil)
}

// ToggleTask flips completion on the server and returns the server's state.
func (c *Client) ToggleTask(ctx context.Context, id string) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, http.MethodPatch, "/todos/"+url.PathEscape(id)+"/toggle", nil, nil, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// Profile returns the current user's profile.
func (c *Client) Profile(ctx context.Context) (*auth.UserProfile, error) {
	var profile auth.UserProfile
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CompleteProfile submits onboarding info and returns the replacement
// profile.
func (c *Client) CompleteProfile(ctx context.Context, info service.Onboarding) (*auth.UserProfile, error) {
	var profile auth.UserProfile
	if err := c.do(ctx, http.MethodPost, "/users/complete", nil, info, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// do performs a JSON request against the API and decodes the response into
// out when non-nil. Non-2xx responses become *service.RequestError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &service.RequestError{Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from server: %w", err)
	}
	return nil
}
