package auth

import (
	"fmt"

	"golang.org/x/oauth2/clientcredentials"
)

// Conf selects how requests to a data source are authenticated.
//
// Type "api_key" sends Key either as the query parameter Param or, when Header
// is set, as that header. Type "oauth2" uses the client credentials flow
// against TokenURL.
type Conf struct {
	Type         string   `json:"type"`
	Key          string   `json:"key"`
	Param        string   `json:"param"`
	Header       string   `json:"header"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	TokenURL     string   `json:"token_url"`
	Scopes       []string `json:"scopes"`
}

func (c *Conf) toOauth2Config() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
		Scopes:       c.Scopes,
	}
}

// New returns the authenticator described by c, or nil for an empty type.
func New(c Conf) (Authenticator, error) {
	switch c.Type {
	case "", "none":
		return nil, nil
	case "api_key":
		if c.Key == "" {
			return nil, fmt.Errorf("api_key auth requires key")
		}
		if c.Header != "" {
			return APIKeyHeader(c.Header, c.Key), nil
		}
		param := c.Param
		if param == "" {
			param = "api_key"
		}
		return APIKeyQuery(param, c.Key), nil
	case "oauth2":
		if c.ClientID == "" || c.TokenURL == "" {
			return nil, fmt.Errorf("oauth2 auth requires client_id and token_url")
		}
		return NewClientCred(c), nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", c.Type)
	}
}
