package model

import "time"

// QueueColumns is the standard column set of an interconnection queue.
var QueueColumns = []string{
	"Queue ID",
	"Project Name",
	"Interconnecting Entity",
	"County",
	"State",
	"Interconnection Location",
	"Transmission Owner",
	"Generation Type",
	"Capacity (MW)",
	"Summer Capacity (MW)",
	"Winter Capacity (MW)",
	"Queue Date",
	"Status",
	"Proposed Completion Date",
	"Withdrawn Date",
	"Withdrawal Comment",
	"Actual Completion Date",
}

// Field is an ISO-specific queue attribute kept after the standard columns.
type Field struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// InterconnectionProject is one generator interconnection request. Capacities
// are NaN and dates zero when the ISO does not publish them.
type InterconnectionProject struct {
	QueueID                 string    `json:"queue_id"`
	ProjectName             string    `json:"project_name"`
	InterconnectingEntity   string    `json:"interconnecting_entity"`
	County                  string    `json:"county"`
	State                   string    `json:"state"`
	InterconnectionLocation string    `json:"interconnection_location"`
	TransmissionOwner       string    `json:"transmission_owner"`
	GenerationType          string    `json:"generation_type"`
	CapacityMW              float64   `json:"capacity_mw"`
	SummerCapacityMW        float64   `json:"summer_capacity_mw"`
	WinterCapacityMW        float64   `json:"winter_capacity_mw"`
	QueueDate               time.Time `json:"queue_date"`
	Status                  string    `json:"status"`
	ProposedCompletionDate  time.Time `json:"proposed_completion_date"`
	WithdrawnDate           time.Time `json:"withdrawn_date"`
	WithdrawalComment       string    `json:"withdrawal_comment"`
	ActualCompletionDate    time.Time `json:"actual_completion_date"`
	Extra                   []Field   `json:"extra"`
}

// ExtraValue returns an ISO-specific attribute by name.
func (p InterconnectionProject) ExtraValue(name string) (any, bool) {
	for _, f := range p.Extra {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func (p InterconnectionProject) Columns() []string {
	cols := append([]string{}, QueueColumns...)
	for _, f := range p.Extra {
		cols = append(cols, f.Name)
	}
	return cols
}

func (p InterconnectionProject) Values() []any {
	vals := []any{
		p.QueueID,
		p.ProjectName,
		p.InterconnectingEntity,
		p.County,
		p.State,
		p.InterconnectionLocation,
		p.TransmissionOwner,
		p.GenerationType,
		p.CapacityMW,
		p.SummerCapacityMW,
		p.WinterCapacityMW,
		optionalTime(p.QueueDate),
		p.Status,
		optionalTime(p.ProposedCompletionDate),
		optionalTime(p.WithdrawnDate),
		p.WithdrawalComment,
		optionalTime(p.ActualCompletionDate),
	}
	for _, f := range p.Extra {
		vals = append(vals, f.Value)
	}
	return vals
}

func optionalTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
