package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hhafez300/thena-pagerduty-bridge/internal/models"
)

// AuditLog stores every PagerDuty delivery attempt in alert_delivery_log.
// It is write-only; trigger decisions never read from it.
type AuditLog struct {
	db *gorm.DB
}

func NewAuditLog(db *gorm.DB) *AuditLog {
	return &AuditLog{db: db}
}

func (a *AuditLog) ObserveDelivery(ctx context.Context, record models.DeliveryRecord) error {
	if err := a.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert delivery record for ticket %s: %w", record.TicketID, err)
	}
	return nil
}
