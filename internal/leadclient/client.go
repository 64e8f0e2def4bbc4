// Package leadclient sends contact form submissions to the lead endpoint.
package leadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/leadcapture/internal/leads"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

// DefaultTimeout bounds a single submission. Slower requests are reported
// as connection failures.
const DefaultTimeout = 10 * time.Second

const leadsPath = "/api/leads"

// Client is an HTTP client for the lead endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *logging.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides DefaultTimeout. It applies to a copy of any client
// given with WithHTTPClient, whatever the option order.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
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

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.httpClient.Timeout != c.timeout {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// CreateLead prepares req and posts it once. It returns *leads.PrepareError
// when the request never left, *ConnectionError when no response arrived and
// *APIError for non-2xx responses.
func (c *Client) CreateLead(ctx context.Context, req leads.CreateLeadRequest) (*leads.Lead, error) {
	prepared, err := leads.PrepareForAPI(req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(prepared)
	if err != nil {
		return nil, fmt.Errorf("leadclient: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+leadsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("leadclient: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("leadclient: request failed", "error", err)
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		c.logger.Warn("leadclient: lead rejected", "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}

	var lead leads.Lead
	if err := json.NewDecoder(resp.Body).Decode(&lead); err != nil {
		return nil, fmt.Errorf("leadclient: decode response: %w", err)
	}
	return &lead, nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("Erro HTTP %d", resp.StatusCode)
	}
	return apiErr
}
