package taskstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/agrimitra/farmcal/internal/task"
)

// Client is the net/http implementation of Service against the task
// service REST contract. No explicit timeout is set; transport defaults
// apply and the UI keeps the triggering control disabled while a call is
// in flight.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

type tasksResponse struct {
	Tasks []task.Task `json:"tasks"`
}

type aiStatusResponse struct {
	Status string `json:"status"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type chatRequest struct {
	Message string         `json:"message"`
	Context map[string]any `json:"context"`
	History []ChatMessage  `json:"history"`
}

// errorBody is the shape services use for failure details. Any JSON body
// is acceptable; only detail is read.
type errorBody struct {
	Detail string `json:"detail"`
}

func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	var resp tasksResponse
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &resp); err != nil {
		return nil, err
	}
	tasks := make([]task.Task, 0, len(resp.Tasks))
	for _, t := range resp.Tasks {
		tasks = append(tasks, t.Normalized())
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, t task.Task) error {
	return c.do(ctx, http.MethodPost, "/add_task", t, nil)
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch task.Patch) error {
	return c.do(ctx, http.MethodPut, "/update_task/"+url.PathEscape(id), patch, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/delete_task/"+url.PathEscape(id), nil, nil)
}

func (c *Client) AIStatus(ctx context.Context) (bool, error) {
	var resp aiStatusResponse
	if err := c.do(ctx, http.MethodGet, "/ai_status", nil, &resp); err != nil {
		return false, err
	}
	return resp.Status == "active", nil
}

func (c *Client) GenerateSchedule(ctx context.Context, req ScheduleRequest) (ScheduleResult, error) {
	var resp ScheduleResult
	if err := c.do(ctx, http.MethodPost, "/generate_schedule", req, &resp); err != nil {
		return ScheduleResult{}, err
	}
	return resp, nil
}

func (c *Client) Chat(ctx context.Context, message string, payload map[string]any, history []ChatMessage) (string, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	if history == nil {
		history = []ChatMessage{}
	}
	req := chatRequest{Message: message, Context: payload, History: history}
	var resp chatResponse
	if err := c.do(ctx, http.MethodPost, "/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := "service request failed"
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && strings.TrimSpace(eb.Detail) != "" {
			detail = eb.Detail
		}
		return &RemoteError{Status: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	return nil
}
