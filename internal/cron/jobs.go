package cron

import (
	"context"

	"gorm.io/gorm"
)

// Job names are also the metric label values.
const (
	JobInvoiceOverdue        = "invoice_overdue"
	JobLowStock              = "low_stock"
	JobQuoteExpiry           = "quote_expiry"
	JobSubscriptionReconcile = "subscription_reconcile"
	JobAlertRetention        = "alert_retention"
	JobWebhookEventRetention = "webhook_event_retention"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
