// Package eia is a client for the U.S. Energy Information Administration
// API v2 hourly electric grid data.
package eia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/gridstatus/auth"
	"github.com/kilianp07/gridstatus/infra/httpx"
	"github.com/kilianp07/gridstatus/infra/logger"
)

const (
	DefaultBaseURL  = "https://api.eia.gov/v2"
	DefaultPageSize = 5000

	regionDataRoute = "electricity/rto/region-data/data/"
	fuelTypeRoute   = "electricity/rto/fuel-type-data/data/"

	periodLayout = "2006-01-02T15"
)

// Config configures the EIA client. The key is usually supplied through the
// EIA_API_KEY environment variable.
type Config struct {
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"`
	PageSize int    `json:"page_size"`
}

func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
}

func (c Config) Validate() error {
	if c.PageSize > DefaultPageSize {
		return fmt.Errorf("eia page_size must be at most %d", DefaultPageSize)
	}
	return nil
}

// Client pages through EIA v2 data routes.
type Client struct {
	cfg  Config
	http *httpx.Client
	log  logger.Logger
}

// New returns a client authenticating with cfg.APIKey. It fails without a key
// so that no anonymous request is ever sent.
func New(cfg Config, httpCfg httpx.Config, opts ...httpx.Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("eia: %w", auth.ErrMissingKey)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("eia")
	opts = append([]httpx.Option{httpx.WithLogger(log)}, opts...)
	opts = append(opts, httpx.WithAuthorizer(auth.APIKeyQuery("api_key", cfg.APIKey)))
	return &Client{cfg: cfg, http: httpx.New(httpCfg, opts...), log: log}, nil
}

// APIError is an error payload returned with a successful HTTP status.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("eia api error %d: %s", e.Code, e.Message)
	}
	return "eia api error: " + e.Message
}

type page[T any] struct {
	Response struct {
		Total number `json:"total"`
		Data  []T    `json:"data"`
	} `json:"response"`
	Error json.RawMessage `json:"error"`
}

func apiError(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return &APIError{Message: msg}
	}
	var obj struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return &APIError{Code: obj.Code, Message: obj.Message}
	}
	return &APIError{Message: string(raw)}
}

type facets map[string][]string

func (c *Client) pageURL(route string, f facets, start, end time.Time, offset int) string {
	q := url.Values{}
	q.Set("frequency", "hourly")
	q.Set("data[0]", "value")
	for name, vals := range f {
		for _, v := range vals {
			q.Add("facets["+name+"][]", v)
		}
	}
	if !start.IsZero() {
		q.Set("start", start.UTC().Format(periodLayout))
	}
	if !end.IsZero() {
		q.Set("end", end.UTC().Format(periodLayout))
	}
	q.Set("sort[0][column]", "period")
	q.Set("sort[0][direction]", "asc")
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(c.cfg.PageSize))
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + route + "?" + q.Encode()
}

// fetchAll reads every page of route.
func fetchAll[T any](ctx context.Context, c *Client, route string, f facets, start, end time.Time) ([]T, error) {
	var out []T
	for offset := 0; ; {
		var p page[T]
		if err := c.http.GetJSON(ctx, c.pageURL(route, f, start, end, offset), &p); err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", route, err)
		}
		if err := apiError(p.Error); err != nil {
			return nil, err
		}
		out = append(out, p.Response.Data...)
		offset += len(p.Response.Data)
		total := float64(p.Response.Total)
		c.log.Debugf("eia %s: read %d of %v rows", route, offset, total)
		if len(p.Response.Data) == 0 || math.IsNaN(total) || float64(offset) >= total {
			return out, nil
		}
	}
}

// number decodes JSON numbers, numeric strings and null (NaN).
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = number(math.NaN())
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			f = math.NaN()
		}
		*n = number(f)
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", b, err)
	}
	*n = number(f)
	return nil
}

func parsePeriod(s string) (time.Time, error) {
	for _, layout := range []string{periodLayout, "2006-01-02T15:04", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized period %q", s)
}
