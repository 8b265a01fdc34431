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

	"github.com/google/uuid"
)

const (
	// DefaultDataPath is the path of the snapshot endpoint.
	DefaultDataPath = "/api/data"

	// DefaultKeyHeader is the header carrying the pre-shared API key.
	DefaultKeyHeader = "X-API-Key"

	// RequestIDHeader correlates client and service logs.
	RequestIDHeader = "X-Request-ID"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second
)

// Client talks to a LockieMedia data service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	dataPath   string
	keyHeader  string
	apiKey     string

	// onMalformed is called for every collection that could not be decoded.
	onMalformed func(collection string, err error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (useful for testing).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithDataPath overrides the snapshot endpoint path.
func WithDataPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.dataPath = "/" + strings.TrimPrefix(path, "/")
		}
	}
}

// WithKeyHeader overrides the header used to send the API key.
func WithKeyHeader(header string) Option {
	return func(c *Client) {
		if header != "" {
			c.keyHeader = header
		}
	}
}

// WithMalformedHandler registers a callback for collections that fail to decode.
func WithMalformedHandler(fn func(collection string, err error)) Option {
	return func(c *Client) { c.onMalformed = fn }
}

// NewClient creates a new data service client.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		dataPath:  DefaultDataPath,
		keyHeader: DefaultKeyHeader,
		apiKey:    apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs an HTTP request and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	reqURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(c.keyHeader, c.apiKey)
	req.Header.Set(RequestIDHeader, uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}
