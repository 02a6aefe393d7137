// Package api is the HTTP client of the pin store REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/OCAP2/pinmap/pkg/core"
	"github.com/google/uuid"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 1 << 20

// Client talks to the pin store REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client. baseURL is the server root, e.g. http://localhost:5000.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Healthcheck checks if the pin store is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	resp, _, err := c.do(ctx, http.MethodGet, "/healthcheck", nil)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// ListPins fetches every pin in store order. An empty slice is a valid answer.
func (c *Client) ListPins(ctx context.Context) ([]core.Pin, error) {
	resp, body, err := c.do(ctx, http.MethodGet, "/api/pins", nil)
	if err != nil {
		return nil, transportError("list", err)
	}
	if !isSuccess(resp.StatusCode) {
		return nil, rejectedError("list", resp.StatusCode, string(body), nil)
	}

	var pins []core.Pin
	if err := json.Unmarshal(body, &pins); err != nil {
		return nil, rejectedError("list", resp.StatusCode, string(body), fmt.Errorf("decode pins: %w", err))
	}
	if pins == nil {
		pins = []core.Pin{}
	}
	return pins, nil
}

// CreatePin asks the store to create a pin at (x, y). The store assigns ID and name.
func (c *Client) CreatePin(ctx context.Context, x, y float64) (core.Pin, error) {
	resp, body, err := c.do(ctx, http.MethodPost, "/api/pins", core.CreatePinRequest{X: x, Y: y})
	if err != nil {
		return core.Pin{}, transportError("create", err)
	}
	if !isSuccess(resp.StatusCode) {
		return core.Pin{}, rejectedError("create", resp.StatusCode, string(body), nil)
	}

	var out core.CreatePinResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return core.Pin{}, rejectedError("create", resp.StatusCode, string(body), fmt.Errorf("decode response: %w", err))
	}
	if !out.OK || out.Pin == nil {
		return core.Pin{}, rejectedError("create", resp.StatusCode, string(body), nil)
	}
	return *out.Pin, nil
}

// RenamePin sets the name of pin id. Any non-2xx status is a rejection carrying the body.
func (c *Client) RenamePin(ctx context.Context, id int64, name string) error {
	path := fmt.Sprintf("/api/pins/%d", id)
	resp, body, err := c.do(ctx, http.MethodPatch, path, core.RenamePinRequest{Name: name})
	if err != nil {
		return transportError("rename", err)
	}
	if !isSuccess(resp.StatusCode) {
		return rejectedError("rename", resp.StatusCode, string(body), nil)
	}
	return nil
}

// do sends a JSON request and reads the whole response body.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
