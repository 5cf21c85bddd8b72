// Package todoist is the task-store gateway: a thin client for the
// Todoist REST v2 API scoped to the calls the mutation engine needs.
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.todoist.com/rest/v2"

// Todoist allows roughly 450 requests per 15 minutes per user token.
// Half a request per second with a small burst stays well inside that.
const (
	defaultRatePerSec = 0.5
	defaultBurst      = 5
)

// Gateway is the task-store surface consumed by the engine and the sweep.
// *Client implements it; tests substitute fakes.
type Gateway interface {
	GetTask(ctx context.Context, id string) (*Task, error)
	GetTasks(ctx context.Context) ([]Task, error)
	UpdateTask(ctx context.Context, id string, args UpdateTaskArgs) error
	GetLabels(ctx context.Context) ([]Label, error)
	CreateLabel(ctx context.Context, name, color string) (*Label, error)
	SetDuration(ctx context.Context, id string, minutes int, unit string) error
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests point this at httptest).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRate overrides the client-side request budget.
func WithRate(perSec float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSec), burst) }
}

func New(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(defaultRatePerSec), defaultBurst),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := c.do(ctx, "get task", http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) GetTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, "get tasks", http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, args UpdateTaskArgs) error {
	return c.do(ctx, "update task", http.MethodPost, "/tasks/"+url.PathEscape(id), args, nil)
}

func (c *Client) GetLabels(ctx context.Context) ([]Label, error) {
	var labels []Label
	if err := c.do(ctx, "get labels", http.MethodGet, "/labels", nil, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

func (c *Client) CreateLabel(ctx context.Context, name, color string) (*Label, error) {
	var l Label
	req := createLabelRequest{Name: name, Color: color}
	if err := c.do(ctx, "create label", http.MethodPost, "/labels", req, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) SetDuration(ctx context.Context, id string, minutes int, unit string) error {
	req := setDurationRequest{Duration: minutes, DurationUnit: unit}
	return c.do(ctx, "set duration", http.MethodPost, "/tasks/"+url.PathEscape(id), req, nil)
}

// do runs one API call: wait for the rate limiter, issue the request,
// decode into out (when non-nil). Every failure path returns *APIError.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return transportErr(op, err)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return transportErr(op, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return transportErr(op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ""
		if b, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
			var eb apiErrorBody
			if json.Unmarshal(b, &eb) == nil && eb.Error != "" {
				msg = eb.Error
			} else if len(b) > 0 {
				msg = string(bytes.TrimSpace(b))
			}
		}
		return statusErr(op, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	// 204 No Content on updates; nothing to decode.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportErr(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
