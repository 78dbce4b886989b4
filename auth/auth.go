package auth

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Authenticator decorates outgoing requests with credentials.
type Authenticator interface {
	Authorize(r *http.Request) error
}

// ErrMissingKey is returned when an API key authenticator has no key.
var ErrMissingKey = errors.New("api key not configured")

// APIKey adds a static key to each request.
type APIKey struct {
	name     string
	key      string
	inHeader bool
}

// APIKeyQuery sends the key as query parameter name.
func APIKeyQuery(name, key string) *APIKey { return &APIKey{name: name, key: key} }

// APIKeyHeader sends the key as header name.
func APIKeyHeader(name, key string) *APIKey {
	return &APIKey{name: name, key: key, inHeader: true}
}

func (a *APIKey) Authorize(r *http.Request) error {
	if a.key == "" {
		return ErrMissingKey
	}
	if a.inHeader {
		r.Header.Set(a.name, a.key)
		return nil
	}
	q := r.URL.Query()
	q.Set(a.name, a.key)
	r.URL.RawQuery = q.Encode()
	return nil
}

// ClientCred authenticates with OAuth2 client credentials and caches the
// token until it expires.
type ClientCred struct {
	mu    sync.Mutex
	conf  clientcredentials.Config
	token *oauth2.Token
}

func NewClientCred(conf Conf) *ClientCred {
	return &ClientCred{conf: conf.toOauth2Config()}
}

// GetToken returns the cached access token, requesting a new one when it is
// missing or expired.
func (c *ClientCred) GetToken(r *http.Request) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != nil && c.token.Valid() {
		return c.token, nil
	}
	tok, err := c.conf.Token(r.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	c.token = tok
	return tok, nil
}

// ForceRefresh drops the cached token so the next request fetches a new one.
func (c *ClientCred) ForceRefresh() {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

func (c *ClientCred) Authorize(r *http.Request) error {
	tok, err := c.GetToken(r)
	if err != nil {
		return err
	}
	tok.SetAuthHeader(r)
	return nil
}
