package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/luma-learn/luma-api/model"
)

// Webhook event audit rows are kept long enough to investigate disputed
// payments, then dropped.
const webhookEventRetention = 90 * 24 * time.Hour

// PruneWebhookEvents deletes webhook event audit rows past the retention
// window. Runs daily.
func (m *CronManager) PruneWebhookEvents() {
	jobName := "prune_webhook_events"

	cutoff := time.Now().Add(-webhookEventRetention)
	result := m.db.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.WebhookEvent{})

	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to prune webhook events: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Pruned %d webhook events older than %s", result.RowsAffected, cutoff.Format(time.RFC3339)))
}

// ReportPoisonWebhookEvents surfaces callbacks that failed terminally
// (malformed correlation metadata) in the last day. The processor will
// have stopped retrying them; someone has to look. Runs daily.
func (m *CronManager) ReportPoisonWebhookEvents() {
	jobName := "report_poison_webhook_events"

	var events []model.WebhookEvent
	since := time.Now().Add(-24 * time.Hour)
	err := m.db.
		Where("error_msg <> '' AND created_at >= ?", since).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to query webhook events: %w", err))
		return
	}

	for _, event := range events {
		log.Printf("[CRON] Poison webhook event %s (%s): %s", event.StripeEventID, event.Type, event.ErrorMsg)
	}

	m.logJobComplete(jobName, fmt.Sprintf("Found %d poison webhook events since %s", len(events), since.Format(time.RFC3339)))
}
