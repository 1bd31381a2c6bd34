package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryRecord describes one attempt to trigger a PagerDuty incident
type DeliveryRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TicketID     string    `gorm:"not null;index" json:"ticket_id"`
	DedupKey     string    `gorm:"not null" json:"dedup_key"`
	ServiceGroup string    `gorm:"not null" json:"service_group"`
	Assignee     string    `gorm:"not null" json:"assignee"`
	EventType    string    `gorm:"not null" json:"event_type"`
	Severity     string    `gorm:"not null" json:"severity"`
	Succeeded    bool      `gorm:"not null" json:"succeeded"`
	HTTPStatus   *int      `gorm:"type:integer" json:"http_status"`
	LatencyMs    int       `gorm:"not null" json:"latency_ms"`
	LastError    *string   `json:"last_error"`
	StartedAt    time.Time `gorm:"not null" json:"started_at"`
	FinishedAt   time.Time `gorm:"not null" json:"finished_at"`
	CreatedAt    time.Time `gorm:"default:now()" json:"created_at"`
}

func (DeliveryRecord) TableName() string {
	return "alert_delivery_log"
}
