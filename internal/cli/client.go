package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client talks to the worker HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 20 * time.Minute,
		},
	}
}

type JobInfo struct {
	ID        uuid.UUID       `json:"id"`
	JobType   string          `json:"job_type"`
	Status    string          `json:"status"`
	Progress  int             `json:"progress"`
	Params    json.RawMessage `json:"params"`
	OutputURL *string         `json:"output_url"`
	Logs      *string         `json:"logs,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

type RenderOutcome struct {
	OK      bool                    `json:"ok"`
	Message string                  `json:"message,omitempty"`
	Job     *uuid.UUID              `json:"job,omitempty"`
	Result  *RenderReport           `json:"result,omitempty"`
	Results map[string]RenderReport `json:"results,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

type RenderReport struct {
	JobType   string `json:"job_type"`
	Status    string `json:"status"`
	OutputURL string `json:"output_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (c *Client) Enqueue(ctx context.Context, jobType string, params any) (*JobInfo, error) {
	var resp struct {
		OK  bool    `json:"ok"`
		Job JobInfo `json:"job"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/jobs", map[string]any{
		"job_type": jobType,
		"params":   params,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Job, nil
}

func (c *Client) GetJob(ctx context.Context, id uuid.UUID) (*JobInfo, error) {
	var resp struct {
		OK  bool    `json:"ok"`
		Job JobInfo `json:"job"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/jobs/"+id.String(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Job, nil
}

// Render triggers a render pass. A 500 carrying a render outcome is a
// job failure, not a transport failure, so it is returned to the
// caller rather than as an error.
func (c *Client) Render(ctx context.Context, limit int) (*RenderOutcome, error) {
	body, err := json.Marshal(map[string]int{"limit": limit})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var outcome RenderOutcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		return nil, fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return &outcome, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error   string `json:"error"`
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (%d, %s): %s", resp.StatusCode, apiErr.Code, apiErr.Error)
		}
		return fmt.Errorf("api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if respBody != nil {
		return json.Unmarshal(data, respBody)
	}
	return nil
}
