// Package mcp holds the client for the external model-invocation endpoint
// that serves the task-analyzer and workload-optimizer models.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// maxResponseSize caps the model response body.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Model names served by the endpoint.
const (
	ModelTaskAnalyzer      = "task-analyzer"
	ModelWorkloadOptimizer = "workload-optimizer"
)

// ErrModelUnavailable wraps transport-level failures (connection refused,
// timeout, open circuit) as opposed to application errors from the model.
var ErrModelUnavailable = errors.New("model endpoint unavailable")

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model invocation failed with status %d: %s", e.StatusCode, e.Body)
}

// Client invokes models on the MCP endpoint over HTTP. Calls are routed
// through a circuit breaker so a dead endpoint fails fast instead of eating
// the configured timeout on every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(baseURL string, timeout time.Duration, breaker *gobreaker.CircuitBreaker) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
	}
}

// InvokeModel POSTs the payload to the named model and returns the raw JSON
// result. Transport and timeout failures come back wrapped in
// ErrModelUnavailable; application failures as *StatusError.
func (c *Client) InvokeModel(ctx context.Context, model string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model payload: %v", err)
	}

	url := fmt.Sprintf("%s/api/models/%s/invoke", c.baseURL, model)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, fmt.Errorf("%w: reading response: %v", ErrModelUnavailable, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
		}
		return json.RawMessage(data), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		return nil, err
	}

	return result.(json.RawMessage), nil
}
