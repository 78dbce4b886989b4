package events

import (
	"time"

	"github.com/kilianp07/gridstatus/core/model"
)

// FetchEvent is published after every poller fetch, successful or not.
type FetchEvent struct {
	RunID    string        `json:"run_id"`
	Job      string        `json:"job"`
	ISO      string        `json:"iso"`
	Dataset  model.Dataset `json:"dataset"`
	Market   string        `json:"market,omitempty"`
	Records  int           `json:"records"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	Time     time.Time     `json:"time"`

	Observations []model.Observation `json:"-"`
}

// Failed reports whether the fetch returned an error.
func (e FetchEvent) Failed() bool { return e.Error != "" }

// Status is "ok" or "error".
func (e FetchEvent) Status() string {
	if e.Failed() {
		return "error"
	}
	return "ok"
}
