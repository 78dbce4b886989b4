package monitoring

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridstatus/config"
	coremon "github.com/kilianp07/gridstatus/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestNewSentryMonitorInvalidDSN(t *testing.T) {
	_, err := NewSentryMonitor(config.SentryConfig{DSN: "not a dsn"})
	assert.Error(t, err)
}

func TestScrubEvent(t *testing.T) {
	ev := &sentry.Event{
		Message: "GET https://api.eia.gov/v2/x?api_key=abc123&length=5000 failed",
		Exception: []sentry.Exception{
			{Value: `unexpected status code 403 from https://api.eia.gov/v2/x?API_KEY=s3cr3t: {"error":"x"}`},
		},
	}
	out := scrubEvent(ev, nil)
	assert.Equal(t, "GET https://api.eia.gov/v2/x?api_key=REDACTED&length=5000 failed", out.Message)
	assert.NotContains(t, out.Exception[0].Value, "s3cr3t")
	assert.Nil(t, scrubEvent(nil, nil))
}
