package models

import (
	"fmt"

	"github.com/hhafez300/thena-pagerduty-bridge/internal/assignee"
)

// TicketEvent is one inbound ticket notification. It is built per request and never stored.
type TicketEvent struct {
	EventType     EventType
	TicketID      string
	Title         string
	PriorityLabel string
	TeamName      string
	TeamID        string
	CustomerEmail string
	AssignedTo    assignee.AssignedTo
}

// DisplayTitle falls back to a generated title when the ticket has none
func (e TicketEvent) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	return fmt.Sprintf("Thena ticket %s", e.TicketID)
}
