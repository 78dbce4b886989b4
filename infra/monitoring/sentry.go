// Package monitoring implements the error monitor on top of Sentry.
package monitoring

import (
	"regexp"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/gridstatus/config"
	coremon "github.com/kilianp07/gridstatus/core/monitoring"
)

// NewSentryMonitor initializes Sentry using the provided configuration and
// returns a Monitor implementation.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		BeforeSend:       scrubEvent,
	})
	if err != nil {
		return nil, err
	}
	return &sentryMonitor{}, nil
}

// secretParam matches credentials embedded in request URLs.
var secretParam = regexp.MustCompile(`(?i)((?:api_key|apikey|token|subscription-key)=)[^&\s"]+`)

func scrub(s string) string { return secretParam.ReplaceAllString(s, "${1}REDACTED") }

// scrubEvent removes credentials from exception messages before upload.
func scrubEvent(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if ev == nil {
		return nil
	}
	ev.Message = scrub(ev.Message)
	for i := range ev.Exception {
		ev.Exception[i].Value = scrub(ev.Exception[i].Value)
	}
	return ev
}

type sentryMonitor struct{}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	if len(tags) == 0 {
		sentry.CaptureException(err)
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

func (s *sentryMonitor) Recover() {
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		sentry.Flush(2 * time.Second)
		panic(r)
	}
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
