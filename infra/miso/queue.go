package miso

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/gridstatus/core/model"
)

// queueExtras are the MISO specific columns appended after the standard ones,
// keyed by output column name with their source field.
var queueExtras = []struct{ column, field string }{
	{"facilityType", "facilityType"},
	{"Post Generator Interconnection Agreement Status", "postGIAStatus"},
	{"Interconnection Approval Date", "doneDate"},
	{"inService", "inService"},
	{"giaToExec", "giaToExec"},
	{"studyCycle", "studyCycle"},
	{"studyGroup", "studyGroup"},
	{"studyPhase", "studyPhase"},
	{"svcType", "svcType"},
	{"dp1ErisMw", "dp1ErisMw"},
	{"dp1NrisMw", "dp1NrisMw"},
	{"dp2ErisMw", "dp2ErisMw"},
	{"dp2NrisMw", "dp2NrisMw"},
	{"sisPhase1", "sisPhase1"},
}

// GetInterconnectionQueue returns every project in the generator
// interconnection queue.
func (m *MISO) GetInterconnectionQueue(ctx context.Context) ([]model.InterconnectionProject, error) {
	m.log.Debugf("Downloading interconnection queue from %s", m.endpoints.Queue)
	var raw []map[string]any
	if err := m.fetcher.GetJSON(ctx, m.endpoints.Queue, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch interconnection queue: %w", err)
	}

	out := make([]model.InterconnectionProject, 0, len(raw))
	for _, p := range raw {
		summer, winter := anyFloat(p["summerNetMW"]), anyFloat(p["winterNetMW"])
		proj := model.InterconnectionProject{
			QueueID:                 anyString(p["projectNumber"]),
			County:                  anyString(p["county"]),
			State:                   anyString(p["state"]),
			InterconnectionLocation: anyString(p["poiName"]),
			TransmissionOwner:       anyString(p["transmissionOwner"]),
			GenerationType:          anyString(p["fuelType"]),
			CapacityMW:              maxSkipNaN(summer, winter),
			SummerCapacityMW:        summer,
			WinterCapacityMW:        winter,
			QueueDate:               anyTime(p["queueDate"]),
			Status:                  anyString(p["applicationStatus"]),
			ProposedCompletionDate:  anyTime(p["negInService"]),
			WithdrawnDate:           anyTime(p["withdrawnDate"]),
		}
		for _, e := range queueExtras {
			proj.Extra = append(proj.Extra, model.Field{Name: e.column, Value: p[e.field]})
		}
		out = append(out, proj)
	}
	return out, nil
}

func maxSkipNaN(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	default:
		return math.Max(a, b)
	}
}

func anyString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func anyFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		return toFloat(t)
	default:
		return math.NaN()
	}
}

var queueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// anyTime parses queue dates; unparsable or missing values are zero.
func anyTime(v any) time.Time {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return time.Time{}
	}
	for _, layout := range queueDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	return time.Time{}
}
