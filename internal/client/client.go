// Package client talks to the timer server's HTTP API. Client satisfies
// reporter.Reporter so the terminal timer can record session history.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "kidtimer/internal/errors"
	"kidtimer/internal/model"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Token returns the bearer token used for authenticated calls.
func (c *Client) Token() string {
	return c.token
}

type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login exchanges credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/login", email, password)
}

// Register creates an account and keeps its token on the client.
func (c *Client) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/register", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*AuthResult, error) {
	var result AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// Begin records the start of a run and returns the server session id.
func (c *Client) Begin(ctx context.Context, presetID, presetLabel string, totalSeconds int) (string, error) {
	var resp struct {
		Session model.TimerSession `json:"session"`
	}
	body := map[string]interface{}{
		"presetId":      presetID,
		"presetLabel":   presetLabel,
		"totalDuration": totalSeconds,
	}
	if err := c.do(ctx, http.MethodPost, "/api/timer-sessions", body, &resp); err != nil {
		return "", err
	}
	return resp.Session.ID, nil
}

func (c *Client) Update(ctx context.Context, sessionID string, timeSpent int, completed bool) error {
	completedFlag := model.SessionInProgress
	if completed {
		completedFlag = model.SessionCompleted
	}
	body := map[string]int{
		"timeSpent": timeSpent,
		"completed": completedFlag,
	}
	return c.do(ctx, http.MethodPatch, "/api/timer-sessions/"+url.PathEscape(sessionID), body, nil)
}

func (c *Client) ListSessions(ctx context.Context, limit int) ([]model.TimerSession, error) {
	path := "/api/timer-sessions"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Sessions []model.TimerSession `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (c *Client) Summary(ctx context.Context) (*model.SessionSummary, error) {
	var resp struct {
		Summary model.SessionSummary `json:"summary"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/timer-sessions/summary", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Summary, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeError turns an error envelope into *apperrors.APIError. Bodies that
// are not envelopes still produce an APIError carrying the status.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope struct {
		Error *apperrors.APIError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil && envelope.Error.Code != "" {
		envelope.Error.Status = resp.StatusCode
		return envelope.Error
	}

	message := strings.TrimSpace(string(raw))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return apperrors.New(resp.StatusCode, "http_error", message)
}
