// Package client talks to the pomodorod control API.
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

	apperrors "pomodoro/desktop/internal/errors"
	"pomodoro/desktop/internal/model"
	"pomodoro/desktop/internal/service"
)

const maxResponseBytes = 1 << 20

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type ProfileUpdate struct {
	Name                      string `json:"name,omitempty"`
	WorkDurationSeconds       int    `json:"workDurationSeconds,omitempty"`
	ShortBreakDurationSeconds int    `json:"shortBreakDurationSeconds,omitempty"`
	LongBreakDurationSeconds  int    `json:"longBreakDurationSeconds,omitempty"`
	CyclesBeforeLongBreak     int    `json:"cyclesBeforeLongBreak,omitempty"`
	AutoStartNextPhase        *bool  `json:"autoStartNextPhase,omitempty"`
}

type errorEnvelope struct {
	Error *apperrors.APIError `json:"error"`
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) State(ctx context.Context) (*service.StateView, error) {
	var resp struct {
		State service.StateView `json:"state"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/pomodoro/state", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.State, nil
}

// Command sends a start, stop, pause, reset or skip command. baseVersion 0
// skips the version check.
func (c *Client) Command(ctx context.Context, name string, baseVersion int) (*service.CommandResult, error) {
	var body interface{}
	if baseVersion > 0 {
		body = map[string]int{"baseVersion": baseVersion}
	}
	var resp service.CommandResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/pomodoro/"+url.PathEscape(name), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Profiles(ctx context.Context) ([]service.ProfileView, error) {
	var resp struct {
		Profiles []service.ProfileView `json:"profiles"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/pomodoro/profiles", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Profiles, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*service.StateView, error) {
	var resp struct {
		State service.StateView `json:"state"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/api/pomodoro/profile", update, &resp); err != nil {
		return nil, err
	}
	return &resp.State, nil
}

func (c *Client) History(ctx context.Context, limit int) ([]model.PomodoroRecord, error) {
	var resp struct {
		Pomodoros []model.PomodoroRecord `json:"pomodoros"`
	}
	path := "/api/pomodoro/history?limit=" + strconv.Itoa(limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Pomodoros, nil
}

func (c *Client) Stats(ctx context.Context, days int) (*service.StatsView, error) {
	var resp struct {
		Stats service.StatsView `json:"stats"`
	}
	path := "/api/pomodoro/stats?days=" + strconv.Itoa(days)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

func (c *Client) Token(ctx context.Context, password string) (*service.AuthResult, error) {
	var resp service.AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token", map[string]string{"password": password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doJSON sends body as JSON and decodes the response into out. Error
// envelopes are returned as *apperrors.APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope errorEnvelope
		if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != nil {
			envelope.Error.Status = resp.StatusCode
			return envelope.Error
		}
		return apperrors.New(resp.StatusCode, "http_error", strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
