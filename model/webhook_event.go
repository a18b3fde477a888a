package model

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent is an audit record for a payment-processor callback the
// system has seen. It is not part of the enrollment state machine; the
// unique event id just lets operators trace duplicate deliveries and
// poison events (malformed metadata) without grepping request logs.
type WebhookEvent struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	StripeEventID string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"stripe_event_id"`
	Type          string         `gorm:"type:varchar(100);not null" json:"type"`
	Payload       datatypes.JSON `json:"payload"`
	ErrorMsg      string         `gorm:"type:text" json:"error_msg,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TableName specifies the table name for WebhookEvent
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
