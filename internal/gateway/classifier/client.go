// Package classifier talks to the remote sentiment classification service.
package classifier

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

	"sentidash/internal/config"
	"sentidash/internal/logger"
)

const maxResponseBytes = 1 << 20

// Client posts text to the classification service and returns raw bodies.
// It never retries; a failed call is reported once to the caller.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// PredictRequest is the wire body shared by every prediction endpoint.
type PredictRequest struct {
	Text string `json:"text"`
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("classifier %s returned %s", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("classifier %s returned %s: %s", e.Endpoint, e.Status, e.Body)
}

// NewClient builds a client from the service section of the config.
func NewClient(cfg config.ServiceConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("service.base_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse service.base_url failed: %w", err)
	}
	httpClient := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		httpClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{baseURL: parsed, httpClient: httpClient}, nil
}

// SetHTTPClient swaps the underlying HTTP client, mostly for tests.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Endpoint resolves path against the base URL.
func (c *Client) Endpoint(path string) (string, error) {
	u, err := c.resolveEndpoint(path)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Predict posts {"text": text} to path and returns the response body.
// traceID only tags the payload dump log.
func (c *Client) Predict(ctx context.Context, traceID, path, text string) ([]byte, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("classifier client not initialized")
	}
	endpoint, err := c.resolveEndpoint(path)
	if err != nil {
		return nil, err
	}
	buf, err := json.Marshal(PredictRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encode request failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	logger.LogPredictRequest(traceID, endpoint.Path, string(buf))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call classifier %s failed: %w", endpoint.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read classifier %s response failed: %w", endpoint.Path, err)
	}
	logger.LogPredictResponse(traceID, endpoint.Path, resp.StatusCode, string(data))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(data))
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, &StatusError{
			Endpoint:   endpoint.Path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       snippet,
		}
	}
	return data, nil
}

func (c *Client) resolveEndpoint(path string) (*url.URL, error) {
	if c.baseURL == nil {
		return nil, fmt.Errorf("classifier base URL not set")
	}
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = "/"
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	base := *c.baseURL
	base.Path = strings.TrimSuffix(base.Path, "/") + trimmed
	base.RawPath = ""
	base.RawQuery = ""
	base.Fragment = ""
	return &base, nil
}
