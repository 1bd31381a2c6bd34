package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hhafez300/thena-pagerduty-bridge/internal/models"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/severity"
)

// ErrDispatchFailed wraps every failure to get an incident accepted by PagerDuty
var ErrDispatchFailed = errors.New("pagerduty dispatch failed")

// StatusError is returned when PagerDuty answered with anything but 202 Accepted
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: HTTP %d", ErrDispatchFailed, e.StatusCode)
	}
	return fmt.Sprintf("%v: HTTP %d: %s", ErrDispatchFailed, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrDispatchFailed
}

// Request carries everything needed to trigger one incident
type Request struct {
	RoutingKey string
	Ticket     models.TicketEvent
	Assignee   string
}

// Result describes a single delivery attempt. It is returned for failed attempts too.
type Result struct {
	Alert      models.AlertEvent
	Response   *models.AlertResponse
	HTTPStatus *int
	LatencyMs  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Dispatcher sends a trigger to the alert sink. Implementations must not retry.
type Dispatcher interface {
	Trigger(ctx context.Context, req Request) (*Result, error)
}

// BuildAlertEvent renders the PagerDuty trigger for a ticket
func BuildAlertEvent(routingKey string, ticket models.TicketEvent, assignee string) models.AlertEvent {
	return models.AlertEvent{
		RoutingKey:  routingKey,
		EventAction: models.EventActionTrigger,
		DedupKey:    models.DedupKeyFor(ticket.TicketID),
		Payload: models.AlertPayload{
			Summary:  fmt.Sprintf("[%s] %s", assignee, ticket.DisplayTitle()),
			Source:   models.AlertSource,
			Severity: string(severity.Map(ticket.PriorityLabel)),
			CustomDetails: models.AlertDetails{
				EventType:     ticket.EventType.String(),
				TicketID:      ticket.TicketID,
				Priority:      optional(ticket.PriorityLabel),
				Assignee:      assignee,
				Team:          optional(ticket.TeamName),
				CustomerEmail: optional(ticket.CustomerEmail),
			},
		},
		Client: models.AlertClient,
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
