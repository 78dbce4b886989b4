package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/kilianp07/gridstatus/infra/logger"
)

// DefaultMaxRetries applies when max_retries is unset. A negative value
// disables retries.
const DefaultMaxRetries = 3

// Config tunes the shared HTTP client.
type Config struct {
	Timeout           time.Duration `json:"timeout"`
	UserAgent         string        `json:"user_agent"`
	RequestsPerSecond float64       `json:"requests_per_second"`
	Burst             int           `json:"burst"`
	MaxRetries        int           `json:"max_retries"`
	InitialBackoff    time.Duration `json:"initial_backoff"`
	MaxBackoff        time.Duration `json:"max_backoff"`
	MaxConcurrency    int           `json:"max_concurrency"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "gridstatus-go"
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 5
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 4
	}
}

// Authorizer decorates outgoing requests with credentials.
type Authorizer interface {
	Authorize(r *http.Request) error
}

// RequestObserver is notified after every HTTP attempt.
type RequestObserver interface {
	ObserveRequest(host string, status int, d time.Duration, err error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// Temporary reports whether retrying may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client performs rate limited GETs with retries.
type Client struct {
	http     *http.Client
	limiter  *rate.Limiter
	cfg      Config
	auth     Authorizer
	observer RequestObserver
	log      logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

func WithAuthorizer(a Authorizer) Option { return func(c *Client) { c.auth = a } }

func WithObserver(o RequestObserver) Option { return func(c *Client) { c.observer = o } }

func WithLogger(l logger.Logger) Option { return func(c *Client) { c.log = l } }

// WithHTTPClient replaces the underlying client; its transport is used as is.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// New creates a Client. The default transport is instrumented with
// OpenTelemetry.
func New(cfg Config, opts ...Option) *Client {
	cfg.SetDefaults()
	c := &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cfg:     cfg,
		log:     logger.NopLogger{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// MaxConcurrency exposes the configured fan-out bound for date ranges.
func (c *Client) MaxConcurrency() int { return c.cfg.MaxConcurrency }

// GetBytes downloads the body of rawURL.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.cfg.InitialBackoff
	exp.MaxInterval = c.cfg.MaxBackoff
	exp.MaxElapsedTime = 0
	retries := uint64(0)
	if c.cfg.MaxRetries > 0 {
		retries = uint64(c.cfg.MaxRetries)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, retries), ctx)

	attempt := 0
	body, err := backoff.RetryWithData(func() ([]byte, error) {
		attempt++
		b, err := c.do(ctx, rawURL)
		if err == nil {
			return b, nil
		}
		if !retryable(ctx, err) {
			return nil, backoff.Permanent(err)
		}
		c.log.Warnf("GET %s attempt %d failed: %v", rawURL, attempt, err)
		return nil, err
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	return body, nil
}

// GetJSON downloads rawURL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	body, err := c.GetBytes(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", rawURL, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.auth != nil {
		if err := c.auth.Authorize(req); err != nil {
			return nil, fmt.Errorf("failed to authorize request: %w", err)
		}
	}
	c.log.Debugf("GET %s", redact(req.URL))
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(req.URL.Host, 0, start, err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(req.URL.Host, resp.StatusCode, start, err)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{URL: redact(req.URL), StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
		c.observe(req.URL.Host, resp.StatusCode, start, serr)
		return nil, serr
	}
	c.observe(req.URL.Host, resp.StatusCode, start, nil)
	return body, nil
}

func (c *Client) observe(host string, status int, start time.Time, err error) {
	if c.observer != nil {
		c.observer.ObserveRequest(host, status, time.Since(start), err)
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.Temporary()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// redact hides credentials passed as query parameters.
func redact(u *url.URL) string {
	q := u.Query()
	changed := false
	for _, k := range []string{"api_key", "apikey", "token", "subscription-key"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return u.String()
	}
	cp := *u
	cp.RawQuery = q.Encode()
	return cp.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
