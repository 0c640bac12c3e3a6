// Package replicate is a small client for the prediction API of the hosted
// media-generation provider.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Prediction states reported by the provider.
const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
)

type Prediction struct {
	ID      string          `json:"id"`
	Version string          `json:"version,omitempty"`
	Status  string          `json:"status"`
	Output  json.RawMessage `json:"output,omitempty"`
	Error   interface{}     `json:"error,omitempty"`
	Logs    string          `json:"logs,omitempty"`
	URLs    map[string]any  `json:"urls,omitempty"`
}

// IsTerminal reports whether the provider will not change the status again.
func (p *Prediction) IsTerminal() bool {
	return IsTerminal(p.Status)
}

func IsTerminal(status string) bool {
	switch status {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// OutputURL extracts the media URL from an output that is either a string or
// a list of strings.
func (p *Prediction) OutputURL() string {
	if len(p.Output) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(p.Output, &many); err == nil && len(many) > 0 {
		return many[0]
	}
	return ""
}

// ErrorMessage renders the provider's error field, whatever its shape.
func (p *Prediction) ErrorMessage() string {
	switch e := p.Error.(type) {
	case nil:
		return ""
	case string:
		return e
	default:
		b, _ := json.Marshal(e)
		return string(b)
	}
}

// APIError is a non-2xx answer from the provider. Body is kept for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("replicate error: status=%d body=%s", e.StatusCode, e.Body)
}

type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.replicate.com"
	}
	return &Client{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreatePrediction submits {version, input} and returns the new prediction.
func (c *Client) CreatePrediction(ctx context.Context, version string, input map[string]any) (*Prediction, error) {
	payload := map[string]any{
		"version": version,
		"input":   input,
	}
	var pred Prediction
	if err := c.do(ctx, http.MethodPost, "/v1/predictions", payload, &pred); err != nil {
		return nil, fmt.Errorf("create prediction: %w", err)
	}
	if pred.ID == "" {
		return nil, fmt.Errorf("create prediction: empty id in response")
	}
	log.Infof("Replicate prediction %s created (version=%s, status=%s)", pred.ID, version, pred.Status)
	return &pred, nil
}

func (c *Client) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	if id == "" {
		return nil, errors.New("prediction id is required")
	}
	var pred Prediction
	if err := c.do(ctx, http.MethodGet, "/v1/predictions/"+url.PathEscape(id), nil, &pred); err != nil {
		return nil, fmt.Errorf("get prediction %s: %w", id, err)
	}
	return &pred, nil
}

// WaitForPrediction polls until the prediction is terminal, ctx is done or
// maxAttempts polls have been made (0 means no limit).
func (c *Client) WaitForPrediction(ctx context.Context, id string, interval time.Duration, maxAttempts int) (*Prediction, error) {
	if interval <= 0 {
		interval = time.Second
	}
	for attempt := 1; maxAttempts <= 0 || attempt <= maxAttempts; attempt++ {
		pred, err := c.GetPrediction(ctx, id)
		if err != nil {
			return nil, err
		}
		if pred.IsTerminal() {
			return pred, nil
		}
		log.Debugf("Replicate prediction %s still %s (attempt %d)", id, pred.Status, attempt)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil, fmt.Errorf("prediction %s did not finish after %d attempts", id, maxAttempts)
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 300 {
		log.Errorf("Replicate %s %s failed: status=%d body=%s", method, path, resp.StatusCode, truncateBody(rawBody))
		return &APIError{StatusCode: resp.StatusCode, Body: truncateBody(rawBody)}
	}
	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("decode response: %w (body=%s)", err, truncateBody(rawBody))
	}
	return nil
}

func truncateBody(b []byte) string {
	const max = 1024
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
