package engine

import (
	"github.com/hhafez300/thena-pagerduty-bridge/internal/models"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/routing"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/severity"
)

// Reason explains why an event did not trigger an incident
type Reason string

const (
	ReasonUnsupportedEventType Reason = "unsupported_event_type"
	ReasonAlreadyTriggered     Reason = "ticket_already_triggered"
	ReasonNoAssignee           Reason = "no_assignee"
	ReasonUnmappedAssignee     Reason = "unmapped_assignee"
)

type Action int

const (
	ActionIgnored Action = iota
	ActionTriggered
)

// Outcome is the decision for one ticket event
type Outcome struct {
	Action       Action
	Reason       Reason
	EventType    models.EventType
	TicketID     string
	Assignee     string
	ServiceGroup routing.Group
	Severity     severity.Level
	DedupKey     string
	Response     *models.AlertResponse
}

func (o Outcome) Ignored() bool {
	return o.Action == ActionIgnored
}

func ignore(ev models.TicketEvent, reason Reason) Outcome {
	return Outcome{
		Action:    ActionIgnored,
		Reason:    reason,
		EventType: ev.EventType,
		TicketID:  ev.TicketID,
	}
}
