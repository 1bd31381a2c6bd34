package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hhafez300/thena-pagerduty-bridge/internal/dispatcher"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/engine"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/models"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/routing"
)

// ReasonMalformedPayload is reported when the body names an event type but its payload
// cannot be decoded
const ReasonMalformedPayload = "malformed_payload"

type bodyKind int

const (
	bodyProbe bodyKind = iota
	bodyEvent
	bodyMalformed
)

// Decider is the part of the engine the transport needs
type Decider interface {
	Handle(ctx context.Context, ev models.TicketEvent) (engine.Outcome, error)
}

// EventsHandler serves the Thena events webhook
type EventsHandler struct {
	Engine Decider
	Logger *zap.Logger
}

// NewEventsHandler creates a new events handler with dependencies
func NewEventsHandler(decider Decider, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		Engine: decider,
		Logger: logger,
	}
}

// EventResponse is the body returned for every POST /thena/events
type EventResponse struct {
	OK           bool                  `json:"ok"`
	Probe        bool                  `json:"probe,omitempty"`
	Ignored      bool                  `json:"ignored,omitempty"`
	Reason       string                `json:"reason,omitempty"`
	EventType    string                `json:"eventType,omitempty"`
	TicketID     string                `json:"ticketId,omitempty"`
	Assignee     string                `json:"assignee,omitempty"`
	ServiceGroup string                `json:"serviceGroup,omitempty"`
	Severity     string                `json:"severity,omitempty"`
	DedupKey     string                `json:"dedupKey,omitempty"`
	PagerDuty    *models.AlertResponse `json:"pagerduty,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// Probe answers Thena's endpoint validation requests
func Probe(c *fiber.Ctx) error {
	return c.JSON(EventResponse{OK: true, Probe: true})
}

// HandleEvent handles POST /thena/events
// Empty or unparseable bodies without an event type are validation probes and get a 200 without side effects.
func (h *EventsHandler) HandleEvent(c *fiber.Ctx) error {
	envelope, kind := parseEnvelope(c.Body())
	switch kind {
	case bodyProbe:
		return Probe(c)
	case bodyMalformed:
		eventType := envelope.Message.EventType.String()
		h.Logger.Warn("Ticket event payload could not be decoded",
			zap.String("event_type", eventType),
		)
		return c.JSON(EventResponse{
			OK:        true,
			Ignored:   true,
			Reason:    ReasonMalformedPayload,
			EventType: eventType,
		})
	}

	ev := envelope.TicketEvent()
	out, err := h.Engine.Handle(c.UserContext(), ev)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, dispatcher.ErrDispatchFailed) {
			status = fiber.StatusBadGateway
		}
		h.Logger.Error("Failed to process ticket event",
			zap.String("ticket_id", ev.TicketID),
			zap.String("event_type", ev.EventType.String()),
			zap.Bool("config_error", errors.Is(err, routing.ErrMissingCredential)),
			zap.Error(err),
		)
		return c.Status(status).JSON(EventResponse{
			OK:       false,
			TicketID: ev.TicketID,
			Error:    err.Error(),
		})
	}

	if out.Ignored() {
		h.Logger.Debug("Ticket event ignored",
			zap.String("ticket_id", out.TicketID),
			zap.String("event_type", out.EventType.String()),
			zap.String("reason", string(out.Reason)),
		)
		resp := EventResponse{
			OK:        true,
			Ignored:   true,
			Reason:    string(out.Reason),
			EventType: out.EventType.String(),
			Assignee:  out.Assignee,
		}
		if out.Reason != engine.ReasonUnsupportedEventType {
			resp.TicketID = out.TicketID
		}
		return c.JSON(resp)
	}

	return c.JSON(EventResponse{
		OK:           true,
		EventType:    out.EventType.String(),
		TicketID:     out.TicketID,
		Assignee:     out.Assignee,
		ServiceGroup: string(out.ServiceGroup),
		Severity:     string(out.Severity),
		DedupKey:     out.DedupKey,
		PagerDuty:    out.Response,
	})
}

// parseEnvelope separates validation probes from events. A body that fails to decode
// but still carries message.eventType is a malformed event, not a probe.
func parseEnvelope(body []byte) (models.WebhookEnvelope, bodyKind) {
	var envelope models.WebhookEnvelope

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return envelope, bodyProbe
	}

	// an empty object is what the validator sends
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil || len(top) == 0 {
		return envelope, bodyProbe
	}

	if err := json.Unmarshal(body, &envelope); err == nil {
		return envelope, bodyEvent
	}

	var header struct {
		EventType models.LooseString `json:"eventType"`
	}
	envelope = models.WebhookEnvelope{}
	if err := json.Unmarshal(top["message"], &header); err != nil || header.EventType.String() == "" {
		return envelope, bodyProbe
	}
	envelope.Message.EventType = header.EventType
	return envelope, bodyMalformed
}
