package auth

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCredCachesToken(t *testing.T) {
	var issued atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		issued.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	}))
	defer server.Close()

	a, err := New(Conf{Type: "oauth2", ClientID: "id", ClientSecret: "secret", TokenURL: server.URL})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
		require.NoError(t, a.Authorize(req))
		assert.Equal(t, "Bearer token123", req.Header.Get("Authorization"))
	}
	assert.EqualValues(t, 1, issued.Load())

	a.(*ClientCred).ForceRefresh()
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, a.Authorize(req))
	assert.EqualValues(t, 2, issued.Load())
}

func TestClientCredTokenError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClientCred(Conf{ClientID: "id", TokenURL: server.URL})
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	assert.ErrorContains(t, c.Authorize(req), "failed to get token")
}

func TestAPIKeyQueryAndHeader(t *testing.T) {
	q, err := New(Conf{Type: "api_key", Key: "k1"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "http://example.com/data?frequency=hourly", nil)
	require.NoError(t, q.Authorize(req))
	assert.Equal(t, "k1", req.URL.Query().Get("api_key"))
	assert.Equal(t, "hourly", req.URL.Query().Get("frequency"))

	h, err := New(Conf{Type: "api_key", Key: "k2", Header: "Ocp-Apim-Subscription-Key"})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, h.Authorize(req))
	assert.Equal(t, "k2", req.Header.Get("Ocp-Apim-Subscription-Key"))

	assert.ErrorIs(t, APIKeyQuery("api_key", "").Authorize(req), ErrMissingKey)
}

func TestNewValidation(t *testing.T) {
	a, err := New(Conf{})
	assert.NoError(t, err)
	assert.Nil(t, a)
	_, err = New(Conf{Type: "api_key"})
	assert.Error(t, err)
	_, err = New(Conf{Type: "oauth2"})
	assert.Error(t, err)
	_, err = New(Conf{Type: "kerberos"})
	assert.Error(t, err)
}
