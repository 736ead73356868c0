package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/agentstation/kgsync/pkg/constants"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication and retry.
type Client struct {
	http       *http.Client
	auth       Authenticator
	apiKey     string
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRetries sets how many times a retryable failure is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the initial and maximum delay between retries.
func WithBackoff(initial, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.backoff = initial
		c.maxBackoff = maxDelay
	}
}

// New creates a new transport client with the specified authenticator.
func New(auth Authenticator, apiKey string, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:       &http.Client{Timeout: DefaultHTTPTimeout},
		auth:       auth,
		apiKey:     apiKey,
		maxRetries: constants.MaxRetries,
		backoff:    constants.RetryBackoff,
		maxBackoff: constants.MaxRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs an HTTP request with authentication applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}

	// Set common headers
	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.http.Do(req)
}

// PostJSON posts body as JSON to url and decodes the response into target.
// Rate-limit, server and network failures are retried with exponential
// backoff; callers see only success or the final error.
func (c *Client) PostJSON(ctx context.Context, url string, body, target any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.WrapParse("json", "request", err)
	}

	delay := c.backoff
	for attempt := 0; ; attempt++ {
		err = c.post(ctx, url, payload, target)
		if err == nil || attempt >= c.maxRetries || !retryable(ctx, err) {
			return err
		}

		logging.Ctx(ctx).Debug().
			Err(err).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Str("url", url).
			Msg("Retrying request")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, c.maxBackoff)
	}
}

func (c *Client) post(ctx context.Context, url string, payload []byte, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.WrapResource("create", "request", "POST "+url, err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return &errors.APIError{Endpoint: url, Message: "request failed", Err: err}
	}
	return DecodeResponse(resp, url, target)
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *errors.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	// StatusCode 0 means the request never got a response.
	return apiErr.StatusCode == 0 || apiErr.Retryable()
}
