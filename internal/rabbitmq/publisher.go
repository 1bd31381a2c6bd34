package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hhafez300/thena-pagerduty-bridge/internal/models"
)

type publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

// DeliveryMessage is published for every PagerDuty delivery attempt
type DeliveryMessage struct {
	Type   string                `json:"type"`
	SentAt time.Time             `json:"sent_at"`
	Record models.DeliveryRecord `json:"record"`
}

const (
	MessageTypeTriggered = "alert.triggered"
	MessageTypeFailed    = "alert.failed"
)

// DeliveryPublisher fans delivery attempts out to an exchange
type DeliveryPublisher struct {
	conn       publisher
	exchange   string
	routingKey string
}

func NewDeliveryPublisher(conn publisher, exchange, routingKey string) *DeliveryPublisher {
	return &DeliveryPublisher{
		conn:       conn,
		exchange:   exchange,
		routingKey: routingKey,
	}
}

func (p *DeliveryPublisher) ObserveDelivery(ctx context.Context, record models.DeliveryRecord) error {
	msg := DeliveryMessage{
		Type:   MessageTypeFailed,
		SentAt: time.Now().UTC(),
		Record: record,
	}
	if record.Succeeded {
		msg.Type = MessageTypeTriggered
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery message: %w", err)
	}
	return p.conn.Publish(ctx, p.exchange, p.routingKey, body)
}
