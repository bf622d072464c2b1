// Package restapi implements the service.Service interface against the
// task service's JSON HTTP API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"tasker/internal/config"
	"tasker/internal/logger"
	"tasker/internal/service"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
	tasksPath    = "/tasks"
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	anon    *http.Client // login and registration
	authed  *http.Client // everything else; carries the bearer token
	timeout time.Duration
	metrics *Metrics
	log     *slog.Logger
}

// New creates a client for cfg.APIURL. tokens supplies the session token
// for every authenticated request; it is consulted per request, so a
// login that happens after New is picked up.
func New(cfg *config.Config, tokens oauth2.TokenSource, metrics *Metrics) *Client {
	return NewWithHTTPClient(cfg.APIURL, http.DefaultClient, tokens, cfg.APITimeout, metrics)
}

// NewWithHTTPClient creates a client on top of a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, base *http.Client, tokens oauth2.TokenSource, timeout time.Duration, metrics *Metrics) *Client {
	if base == nil {
		base = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = config.DefaultAPITimeout
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	authed := &http.Client{
		Transport: &oauth2.Transport{
			Source: tokens,
			Base:   base.Transport,
		},
		Jar: base.Jar,
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anon:    base,
		authed:  authed,
		timeout: timeout,
		metrics: metrics,
		log:     logger.With("component", "restapi"),
	}
}

// Metrics returns the request metrics of this client.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.AuthResult, error) {
	var res service.AuthResult
	if err := c.do(ctx, "login", c.anon, http.MethodPost, loginPath, creds, &res); err != nil {
		return service.AuthResult{}, authError(err)
	}
	if res.Token == "" {
		return service.AuthResult{}, fmt.Errorf("%w: response carried no token", service.ErrAuthFailed)
	}
	return res, nil
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, profile service.Profile) (service.AuthResult, error) {
	var res service.AuthResult
	if err := c.do(ctx, "register", c.anon, http.MethodPost, registerPath, profile, &res); err != nil {
		return service.AuthResult{}, authError(err)
	}
	if res.Token == "" {
		return service.AuthResult{}, fmt.Errorf("%w: response carried no token", service.ErrAuthFailed)
	}
	return res, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, "list", c.authed, http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, fields service.Fields) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, "create", c.authed, http.MethodPost, tasksPath, fields, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id service.ID, fields service.Fields) (service.Task, error) {
	var task service.Task
	if err := c.do(ctx, "update", c.authed, http.MethodPut, taskPath(id), fields, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id service.ID) error {
	return c.do(ctx, "delete", c.authed, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id service.ID) string {
	return tasksPath + "/" + url.PathEscape(string(id))
}

// do issues one request and decodes a JSON body into out (if non-nil).
// Every failure is returned wrapping service.ErrRequestFailed.
func (c *Client) do(ctx context.Context, op string, hc *http.Client, method, path string, in, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.observe(op, start, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", service.ErrRequestFailed, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("request", "op", op, "method", method, "path", path)

	res, err := hc.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer res.Body.Close()

	if err := googleapi.CheckResponse(res); err != nil {
		return wrapError(err)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", service.ErrRequestFailed, err)
	}
	return nil
}

// wrapError folds transport and status errors into service.ErrRequestFailed,
// singling out 401 as service.ErrUnauthorized.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := serverMessage(apiErr.Body)
		if apiErr.Code == http.StatusUnauthorized {
			if msg == "" {
				return service.ErrUnauthorized
			}
			return fmt.Errorf("%w: %s", service.ErrUnauthorized, msg)
		}
		if msg == "" {
			msg = http.StatusText(apiErr.Code)
		}
		return &statusError{code: apiErr.Code, msg: msg}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", service.ErrRequestFailed)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: cancelled", service.ErrRequestFailed)
	}

	return fmt.Errorf("%w: %v", service.ErrRequestFailed, err)
}

// statusError is a non-success response from the service.
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", service.ErrRequestFailed, e.code, e.msg)
}

func (e *statusError) Is(target error) bool {
	return target == service.ErrRequestFailed
}

// authError turns a failed login/registration into service.ErrAuthFailed
// when the service answered, keeping the server's message.
func authError(err error) error {
	var se *statusError
	if errors.As(err, &se) && se.code < 500 {
		return fmt.Errorf("%w: %s", service.ErrAuthFailed, se.msg)
	}
	if errors.Is(err, service.ErrUnauthorized) {
		msg := strings.TrimPrefix(err.Error(), service.ErrUnauthorized.Error())
		msg = strings.TrimPrefix(msg, ": ")
		if msg == "" {
			msg = "invalid credentials"
		}
		return fmt.Errorf("%w: %s", service.ErrAuthFailed, msg)
	}
	return err
}

// serverMessage extracts a human message from an error body such as
// {"message": "..."} or {"error": "..."}.
func serverMessage(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		if len(body) > 200 {
			body = body[:200]
		}
		return body
	}
	for _, k := range []string{"message", "error", "detail"} {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

var _ service.Service = (*Client)(nil)
