// Package layout reads and updates the landing page variant selection.
package layout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/leadcapture/pkg/logging"
)

const configPath = "/api/layout-config"

// Config is the stored layout selection.
type Config struct {
	ID        int64     `json:"id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Response is the envelope returned by the layout configuration endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    Config `json:"data"`
}

// Client talks to the layout configuration endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a layout client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches the current layout configuration.
func (c *Client) Get(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+configPath, nil)
	if err != nil {
		return nil, fmt.Errorf("layout: create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		c.logger.Error("erro ao buscar configuração do layout", "error", err)
		return nil, err
	}
	return resp, nil
}

// Update stores a new layout value.
func (c *Client) Update(ctx context.Context, value int) (*Response, error) {
	body, err := json.Marshal(map[string]int{"value": value})
	if err != nil {
		return nil, fmt.Errorf("layout: marshal update: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+configPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("layout: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		c.logger.Error("erro ao atualizar configuração do layout", "error", err, "value", value)
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(req *http.Request) (*Response, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("layout: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("layout: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("layout: decode response: %w", err)
	}
	return &out, nil
}
