// Package engine submits workflow documents to the external execution
// engine and correlates the returned trace back onto the graph.
package engine

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/avi3tal/flowforge/internal/builder"
	"github.com/avi3tal/flowforge/internal/document"
)

// ErrSubmissionInFlight is returned when a submission is attempted while
// another one is still outstanding. One request at a time, no queueing.
var ErrSubmissionInFlight = errors.New("a workflow execution is already in flight")

// ExecutionError reports a failed run: either a failure payload from the
// engine or a transport error. Both look the same to the caller — the user
// edits and resubmits; there is no automatic retry.
type ExecutionError struct {
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	return "execution failed: " + e.Message
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Client submits workflows to the execution engine over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger

	mu      sync.Mutex
	running bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the engine at the given endpoint URL.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 5 * time.Minute},
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Running reports whether a submission is currently in flight.
func (c *Client) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Submit validates the workflow and, if sound, sends its document to the
// engine. Validation failures return a *builder.ValidationError without
// transmitting anything. At most one submission may be outstanding; a
// failed run never mutates the workflow.
func (c *Client) Submit(ctx context.Context, w *builder.Workflow) (*ExecutionResult, error) {
	if msgs := builder.Validate(w); len(msgs) > 0 {
		return nil, &builder.ValidationError{Messages: msgs}
	}

	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.release()

	body, err := json.Marshal(document.Snapshot(w))
	if err != nil {
		return nil, errors.Wrap(err, "encode execution request")
	}

	c.log.Info("submitting workflow",
		zap.String("workflow", w.Name),
		zap.Int("nodes", w.Len()),
		zap.Int("connections", len(w.Connections())))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build execution request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("engine request failed", zap.Error(err))
		return nil, &ExecutionError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExecutionError{Message: "request failed", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ExecutionError{Message: failureMessage(data, resp.StatusCode)}
	}

	var result ExecutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &ExecutionError{Message: "request failed", Err: err}
	}

	c.log.Info("workflow executed",
		zap.String("workflow", w.Name),
		zap.Int("nodes_executed", result.Stats.NodesExecuted),
		zap.Float64("total_time", result.Stats.TotalTime))
	return &result, nil
}

func (c *Client) acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrSubmissionInFlight
	}
	c.running = true
	return nil
}

func (c *Client) release() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// failureMessage extracts the engine's error text from a failure payload,
// falling back to the HTTP status.
func failureMessage(data []byte, status int) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return http.StatusText(status)
}
