package subscriptions

import (
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// MapStripeStatus folds the processor's subscription states onto the local
// lifecycle. The second return is false for states we do not act on.
func MapStripeStatus(status stripe.SubscriptionStatus) (enums.SubscriptionStatus, bool) {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return enums.SubscriptionStatusActive, true
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusIncomplete:
		return enums.SubscriptionStatusPastDue, true
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return enums.SubscriptionStatusCancelled, true
	default:
		return "", false
	}
}

var transitions = map[enums.SubscriptionStatus][]enums.SubscriptionStatus{
	enums.SubscriptionStatusNone:      {enums.SubscriptionStatusActive},
	enums.SubscriptionStatusActive:    {enums.SubscriptionStatusPastDue, enums.SubscriptionStatusCancelled},
	enums.SubscriptionStatusPastDue:   {enums.SubscriptionStatusActive, enums.SubscriptionStatusCancelled},
	enums.SubscriptionStatusCancelled: {enums.SubscriptionStatusActive},
}

// CanTransition reports whether from → to is a legal lifecycle move.
// Staying in place is always allowed.
func CanTransition(from, to enums.SubscriptionStatus) bool {
	if from == to {
		return true
	}
	if from == "" {
		from = enums.SubscriptionStatusNone
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PlanPrices maps configured price ids onto plan tiers.
type PlanPrices struct {
	Pro        string
	Enterprise string
}

// planFromSubscription resolves the tier from the first priced item: an
// explicit "plan" metadata entry wins, then the lookup key, then the
// configured price ids.
func planFromSubscription(sub *stripe.Subscription, prices PlanPrices) (enums.PlanTier, bool) {
	price := firstPrice(sub)
	if price == nil {
		return "", false
	}
	if tier, err := enums.ParsePlanTier(price.Metadata["plan"]); err == nil {
		return tier, true
	}
	if tier, err := enums.ParsePlanTier(strings.TrimSuffix(price.LookupKey, "_monthly")); err == nil {
		return tier, true
	}
	switch price.ID {
	case "":
	case prices.Pro:
		return enums.PlanTierPro, true
	case prices.Enterprise:
		return enums.PlanTierEnterprise, true
	}
	return "", false
}

func firstPrice(sub *stripe.Subscription) *stripe.Price {
	if sub == nil || sub.Items == nil {
		return nil
	}
	for _, item := range sub.Items.Data {
		if item != nil && item.Price != nil {
			return item.Price
		}
	}
	return nil
}

func periodEnd(sub *stripe.Subscription) *time.Time {
	if sub == nil || sub.Items == nil {
		return nil
	}
	for _, item := range sub.Items.Data {
		if item != nil && item.CurrentPeriodEnd > 0 {
			t := time.Unix(item.CurrentPeriodEnd, 0).UTC()
			return &t
		}
	}
	return nil
}

func customerID(sub *stripe.Subscription) string {
	if sub == nil || sub.Customer == nil {
		return ""
	}
	return strings.TrimSpace(sub.Customer.ID)
}

func trimmedPtr(value string) *string {
	if s := strings.TrimSpace(value); s != "" {
		return &s
	}
	return nil
}
