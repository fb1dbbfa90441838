package stripewebhook

import (
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/thermolaq/atelier-backend/internal/invoices"
)

// invoiceSubscriptionID reads the SaaS subscription an invoice was billed
// for. Newer API versions nest it under parent.subscription_details.
func invoiceSubscriptionID(event *stripe.Event) string {
	return firstNonEmpty(
		event.GetObjectValue("parent", "subscription_details", "subscription"),
		event.GetObjectValue("subscription"),
	)
}

func paymentIntentID(event *stripe.Event) string {
	return firstNonEmpty(
		event.GetObjectValue("payment_intent"),
		event.GetObjectValue("payments", "data", "0", "payment", "payment_intent"),
	)
}

// paymentEventFrom extracts the invoice references carried by an invoice,
// charge or dispute object.
func paymentEventFrom(event *stripe.Event, kind invoices.PaymentEventKind) invoices.PaymentEvent {
	out := invoices.PaymentEvent{
		Kind:            kind,
		PaymentIntentID: paymentIntentID(event),
	}
	if event.Created > 0 {
		out.At = time.Unix(event.Created, 0).UTC()
	}
	switch event.Type {
	case stripe.EventTypeInvoicePaid, stripe.EventTypeInvoicePaymentFailed:
		out.StripeInvoiceID = event.GetObjectValue("id")
		out.AmountPaid = centsToUnits(event.GetObjectValue("amount_paid"))
	default:
		out.StripeInvoiceID = event.GetObjectValue("invoice")
	}
	return out
}

func centsToUnits(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v / 100
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
