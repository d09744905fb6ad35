package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"example.com/fleetcontrol/config"

	"github.com/pkg/errors"
)

// Resource names exposed by the upstream fleet API.
const (
	ResourceVehicles  = "vehicles"
	ResourceCheckouts = "checkout-events"
	ResourceCheckIns  = "checkin-events"
)

// FetchError reports a failed GET. The owning store keeps its last
// known-good collection when it receives one.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteError reports a failed POST, PUT or DELETE. The attempted mutation
// is never applied locally when one is returned.
type WriteError struct {
	Op       string
	Resource string
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Client is a JSON client for the upstream fleet REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the configured upstream API.
func NewClient(cfg config.UpstreamConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// List fetches the full collection of a resource into out.
func (c *Client) List(ctx context.Context, resource string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.collectionURL(resource), nil)
	if err != nil {
		return &FetchError{Resource: resource, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Resource: resource, Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return &FetchError{Resource: resource, Err: err}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Resource: resource, Err: errors.Wrap(err, "decode response")}
	}
	return nil
}

// Create posts a new record. The response body is not consumed beyond the
// status check; callers re-fetch to pick up server-assigned fields.
func (c *Client) Create(ctx context.Context, resource string, body interface{}) error {
	if err := c.write(ctx, http.MethodPost, c.collectionURL(resource), body); err != nil {
		return &WriteError{Op: "create", Resource: resource, Err: err}
	}
	return nil
}

// Update sends a partial update for one record.
func (c *Client) Update(ctx context.Context, resource string, id int64, body interface{}) error {
	if err := c.write(ctx, http.MethodPut, c.recordURL(resource, id), body); err != nil {
		return &WriteError{Op: "update", Resource: resource, Err: err}
	}
	return nil
}

// Delete removes one record.
func (c *Client) Delete(ctx context.Context, resource string, id int64) error {
	if err := c.write(ctx, http.MethodDelete, c.recordURL(resource, id), nil); err != nil {
		return &WriteError{Op: "delete", Resource: resource, Err: err}
	}
	return nil
}

func (c *Client) write(ctx context.Context, method, url string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

func (c *Client) collectionURL(resource string) string {
	return fmt.Sprintf("%s/api/%s", c.baseURL, resource)
}

func (c *Client) recordURL(resource string, id int64) string {
	return fmt.Sprintf("%s/api/%s/%d", c.baseURL, resource, id)
}

// checkStatus turns any non-2xx response into an error carrying the server's
// message when the body provides one.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var payload struct {
		Message string `json:"message"`
	}
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		_ = json.Unmarshal(body, &payload)
	}
	if payload.Message != "" {
		return errors.Errorf("unexpected status %d: %s", resp.StatusCode, payload.Message)
	}
	return errors.Errorf("unexpected status %d", resp.StatusCode)
}
