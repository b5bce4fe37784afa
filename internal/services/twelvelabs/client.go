package twelvelabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.twelvelabs.io/v1.3"
	defaultHTTPTimeout = 60 * time.Second
	apiKeyHeader       = "x-api-key"
	maxErrorBodyBytes  = 4096
)

// Config captures the runtime settings required to talk to the service.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client wraps the TwelveLabs REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	// uploadClient has no overall timeout; uploads are bounded by the context.
	uploadClient *http.Client
	limiter      *RateLimiter
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client for all requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
			c.uploadClient = client
		}
	}
}

// WithRateLimiter overrides the request limiter.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// New constructs a client. An API key is required.
func New(cfg Config, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("twelvelabs: api key required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: timeout},
		uploadClient: &http.Client{},
		limiter:      NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// APIError reports a non-2xx response.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twelvelabs %s: http %d: %s", e.Op, e.StatusCode, strings.TrimSpace(e.Body))
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func (c *Client) endpoint(parts ...string) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, parts...)
	if err != nil {
		return "", fmt.Errorf("build url: %w", err)
	}
	return endpoint, nil
}

// doJSON issues a request and decodes a JSON response into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, op string, httpClient *http.Client, req *http.Request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("twelvelabs %s: rate limit wait: %w", op, err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twelvelabs %s: http error: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("twelvelabs %s: read body: %w", op, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.RecordRateLimitError(retryAfter)
		}
		return &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       truncateBody(body),
			RetryAfter: retryAfter,
		}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("twelvelabs %s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("twelvelabs %s: new request: %w", op, err)
	}
	return c.doJSON(ctx, op, c.httpClient, req, out)
}

func (c *Client) postJSON(ctx context.Context, op, endpoint string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("twelvelabs %s: encode body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("twelvelabs %s: new request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(ctx, op, c.httpClient, req, out)
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay
		}
	}
	return 0
}

func truncateBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > maxErrorBodyBytes {
		return trimmed[:maxErrorBodyBytes] + "..."
	}
	return trimmed
}
