// Package api is the HTTP client for the pin configuration resource at /api/fire/.
// Every call performs exactly one round trip and decides success purely on the
// response status. There are no retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sweeney/drpiro/internal/pins"
)

// BasePath is the resource path of the pin configuration.
const BasePath = "/api/fire/"

// Op names the remote operation that failed.
type Op string

const (
	OpRead     Op = "read pin config"
	OpDuration Op = "edit duration"
	OpFire     Op = "fire"
	OpEnable   Op = "enable"
	OpDisable  Op = "disable"
)

// Error is returned when the backend answers with a non-success status.
type Error struct {
	Op         Op
	Pin        int // zero for whole-config operations
	StatusCode int
	Detail     string // "detail" field of the error body, if any
}

func (e *Error) Error() string {
	var msg string
	switch e.Op {
	case OpFire, OpEnable, OpDisable:
		msg = fmt.Sprintf("failed to %s pin %d", e.Op, e.Pin)
	default:
		msg = fmt.Sprintf("failed to %s", e.Op)
	}
	msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Client talks to a pin server.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the server at baseURL (e.g. "http://pi.local:8000").
// If hc is nil, http.DefaultClient is used.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: hc,
	}
}

// GetPinConfig fetches the full pin configuration.
func (c *Client) GetPinConfig(ctx context.Context) (pins.Config, error) {
	var cfg pins.Config
	resp, err := c.do(ctx, http.MethodGet, BasePath, nil)
	if err != nil {
		return cfg, fmt.Errorf("failed to %s: %w", OpRead, err)
	}
	defer resp.Body.Close()

	if err := check(resp, OpRead, 0); err != nil {
		return cfg, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to %s: decode: %w", OpRead, err)
	}
	return cfg, nil
}

// SetDuration sends {"duration": seconds} as a partial update and returns the
// updated configuration.
func (c *Client) SetDuration(ctx context.Context, seconds float64) (pins.Config, error) {
	var cfg pins.Config
	body, err := json.Marshal(struct {
		Duration float64 `json:"duration"`
	}{seconds})
	if err != nil {
		return cfg, fmt.Errorf("failed to %s: %w", OpDuration, err)
	}

	resp, err := c.do(ctx, http.MethodPatch, BasePath, body)
	if err != nil {
		return cfg, fmt.Errorf("failed to %s: %w", OpDuration, err)
	}
	defer resp.Body.Close()

	if err := check(resp, OpDuration, 0); err != nil {
		return cfg, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to %s: decode: %w", OpDuration, err)
	}
	return cfg, nil
}

// FirePin asks the backend to fire pin.
func (c *Client) FirePin(ctx context.Context, pin int) error {
	return c.pinCall(ctx, http.MethodGet, OpFire, pin)
}

// EnablePin asks the backend to (re-)enable pin.
func (c *Client) EnablePin(ctx context.Context, pin int) error {
	return c.pinCall(ctx, http.MethodPut, OpEnable, pin)
}

// DisablePin asks the backend to disable pin.
func (c *Client) DisablePin(ctx context.Context, pin int) error {
	return c.pinCall(ctx, http.MethodDelete, OpDisable, pin)
}

func (c *Client) pinCall(ctx context.Context, method string, op Op, pin int) error {
	resp, err := c.do(ctx, method, BasePath+strconv.Itoa(pin), nil)
	if err != nil {
		return fmt.Errorf("failed to %s pin %d: %w", op, pin, err)
	}
	defer resp.Body.Close()

	if err := check(resp, op, pin); err != nil {
		return err
	}
	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

// check turns a non-2xx response into an *Error.
func check(resp *http.Response, op Op, pin int) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &Error{
		Op:         op,
		Pin:        pin,
		StatusCode: resp.StatusCode,
		Detail:     readDetail(resp.Body),
	}
}

func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &body) == nil {
		return body.Detail
	}
	return ""
}
