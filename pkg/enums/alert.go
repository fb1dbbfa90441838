package enums

// AlertType maps to the alert_type column of in-app alerts.
type AlertType string

const (
	AlertTypePaymentReceived AlertType = "payment_received"
	AlertTypePaymentFailed   AlertType = "payment_failed"
	AlertTypePaymentRefunded AlertType = "payment_refunded"
	AlertTypePaymentDisputed AlertType = "payment_disputed"
	AlertTypeLowStock        AlertType = "low_stock"
	AlertTypeInvoiceOverdue  AlertType = "invoice_overdue"
	AlertTypeSubscription    AlertType = "subscription"
)

var validAlertTypes = []AlertType{
	AlertTypePaymentReceived,
	AlertTypePaymentFailed,
	AlertTypePaymentRefunded,
	AlertTypePaymentDisputed,
	AlertTypeLowStock,
	AlertTypeInvoiceOverdue,
	AlertTypeSubscription,
}

// IsValid checks whether the given type matches the canonical enum.
func (a AlertType) IsValid() bool {
	return contains(validAlertTypes, a)
}

// ParseAlertType converts raw strings into AlertType.
func ParseAlertType(value string) (AlertType, error) {
	return parse(validAlertTypes, value, "alert type")
}

// WebhookEventStatus records what happened to an inbound processor event.
type WebhookEventStatus string

const (
	WebhookEventProcessed WebhookEventStatus = "processed"
	WebhookEventIgnored   WebhookEventStatus = "ignored"
	WebhookEventFailed    WebhookEventStatus = "failed"
)
