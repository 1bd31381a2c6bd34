package models

import (
	"github.com/hhafez300/thena-pagerduty-bridge/internal/assignee"
)

// UnknownTicketID is used when neither the ticket nor the envelope carries an id
const UnknownTicketID = "unknown"

// WebhookEnvelope is the body Thena POSTs to the events endpoint
type WebhookEnvelope struct {
	Message WebhookMessage `json:"message"`
}

type WebhookMessage struct {
	EventType LooseString    `json:"eventType"`
	EventID   LooseString    `json:"eventId"`
	TeamID    LooseString    `json:"teamId"`
	Payload   WebhookPayload `json:"payload"`
}

type WebhookPayload struct {
	Ticket WebhookTicket `json:"ticket"`
}

type WebhookTicket struct {
	ID                   LooseString         `json:"id"`
	TicketID             LooseString         `json:"ticketId"`
	Title                LooseString         `json:"title"`
	PriorityName         LooseString         `json:"priorityName"`
	Priority             LooseString         `json:"priority"`
	TeamName             LooseString         `json:"teamName"`
	TeamID               LooseString         `json:"teamId"`
	CustomerContactEmail LooseString         `json:"customerContactEmail"`
	AssignedTo           assignee.AssignedTo `json:"assignedTo"`
}

// TicketEvent flattens the envelope into the fields routing cares about
func (e WebhookEnvelope) TicketEvent() TicketEvent {
	msg := e.Message
	ticket := msg.Payload.Ticket

	teamID := ticket.TeamID.String()
	if teamID == "" {
		teamID = msg.TeamID.String()
	}

	return TicketEvent{
		EventType:     EventType(msg.EventType),
		TicketID:      firstNonEmpty(ticket.ID.String(), ticket.TicketID.String(), msg.EventID.String(), UnknownTicketID),
		Title:         ticket.Title.String(),
		PriorityLabel: firstNonEmpty(ticket.PriorityName.String(), ticket.Priority.String()),
		TeamName:      ticket.TeamName.String(),
		TeamID:        teamID,
		CustomerEmail: ticket.CustomerContactEmail.String(),
		AssignedTo:    ticket.AssignedTo,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
