package models

// Values PagerDuty expects on every trigger this bridge sends
const (
	EventActionTrigger = "trigger"
	AlertSource        = "thena"
	AlertClient        = "Thena → PagerDuty Bridge"
	DedupKeyPrefix     = "thena-ticket-"
)

// AlertEvent is a PagerDuty Events API v2 enqueue request
type AlertEvent struct {
	RoutingKey  string       `json:"routing_key"`
	EventAction string       `json:"event_action"`
	DedupKey    string       `json:"dedup_key"`
	Payload     AlertPayload `json:"payload"`
	Client      string       `json:"client"`
}

type AlertPayload struct {
	Summary       string       `json:"summary"`
	Source        string       `json:"source"`
	Severity      string       `json:"severity"`
	CustomDetails AlertDetails `json:"custom_details"`
}

// AlertDetails is rendered with nulls for missing values, matching what PagerDuty shows in the incident
type AlertDetails struct {
	EventType     string  `json:"eventType"`
	TicketID      string  `json:"ticketId"`
	Priority      *string `json:"priority"`
	Assignee      string  `json:"assignee"`
	Team          *string `json:"team"`
	CustomerEmail *string `json:"customer_email"`
}

// AlertResponse is the body PagerDuty returns from the enqueue endpoint
type AlertResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	DedupKey string `json:"dedup_key"`
}

// DedupKeyFor derives the PagerDuty dedup key from a ticket id
func DedupKeyFor(ticketID string) string {
	return DedupKeyPrefix + ticketID
}
