package models

// EventType is the Thena webhook eventType value
type EventType string

const (
	TicketCreated EventType = "ticket:created"
	TicketUpdated EventType = "ticket:updated"
)

// IsTicketLifecycle reports whether the event can trigger an incident
func (t EventType) IsTicketLifecycle() bool {
	return t == TicketCreated || t == TicketUpdated
}

func (t EventType) String() string {
	return string(t)
}
