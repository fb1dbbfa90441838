package subscriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v84"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

func TestMapStripeStatus(t *testing.T) {
	cases := map[stripe.SubscriptionStatus]enums.SubscriptionStatus{
		stripe.SubscriptionStatusActive:            enums.SubscriptionStatusActive,
		stripe.SubscriptionStatusTrialing:          enums.SubscriptionStatusActive,
		stripe.SubscriptionStatusPastDue:           enums.SubscriptionStatusPastDue,
		stripe.SubscriptionStatusUnpaid:            enums.SubscriptionStatusPastDue,
		stripe.SubscriptionStatusIncomplete:        enums.SubscriptionStatusPastDue,
		stripe.SubscriptionStatusCanceled:          enums.SubscriptionStatusCancelled,
		stripe.SubscriptionStatusIncompleteExpired: enums.SubscriptionStatusCancelled,
	}
	for in, want := range cases {
		got, ok := MapStripeStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := MapStripeStatus(stripe.SubscriptionStatusPaused)
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(enums.SubscriptionStatusNone, enums.SubscriptionStatusActive))
	assert.True(t, CanTransition("", enums.SubscriptionStatusActive))
	assert.True(t, CanTransition(enums.SubscriptionStatusActive, enums.SubscriptionStatusPastDue))
	assert.True(t, CanTransition(enums.SubscriptionStatusPastDue, enums.SubscriptionStatusActive))
	assert.True(t, CanTransition(enums.SubscriptionStatusPastDue, enums.SubscriptionStatusCancelled))
	assert.True(t, CanTransition(enums.SubscriptionStatusCancelled, enums.SubscriptionStatusActive))
	assert.True(t, CanTransition(enums.SubscriptionStatusActive, enums.SubscriptionStatusActive))

	assert.False(t, CanTransition(enums.SubscriptionStatusNone, enums.SubscriptionStatusPastDue))
	assert.False(t, CanTransition(enums.SubscriptionStatusNone, enums.SubscriptionStatusCancelled))
	assert.False(t, CanTransition(enums.SubscriptionStatusCancelled, enums.SubscriptionStatusPastDue))
}

func TestPlanFromSubscription(t *testing.T) {
	prices := PlanPrices{Pro: "price_pro", Enterprise: "price_ent"}
	withPrice := func(p *stripe.Price) *stripe.Subscription {
		return &stripe.Subscription{Items: &stripe.SubscriptionItemList{Data: []*stripe.SubscriptionItem{{Price: p}}}}
	}

	plan, ok := planFromSubscription(withPrice(&stripe.Price{ID: "price_x", Metadata: map[string]string{"plan": "enterprise"}}), prices)
	assert.True(t, ok)
	assert.Equal(t, enums.PlanTierEnterprise, plan)

	plan, ok = planFromSubscription(withPrice(&stripe.Price{ID: "price_y", LookupKey: "pro_monthly"}), prices)
	assert.True(t, ok)
	assert.Equal(t, enums.PlanTierPro, plan)

	plan, ok = planFromSubscription(withPrice(&stripe.Price{ID: "price_ent"}), prices)
	assert.True(t, ok)
	assert.Equal(t, enums.PlanTierEnterprise, plan)

	_, ok = planFromSubscription(withPrice(&stripe.Price{ID: "price_unknown"}), prices)
	assert.False(t, ok)

	_, ok = planFromSubscription(&stripe.Subscription{}, prices)
	assert.False(t, ok)
}

func TestPeriodEnd(t *testing.T) {
	assert.Nil(t, periodEnd(nil))
	sub := &stripe.Subscription{Items: &stripe.SubscriptionItemList{Data: []*stripe.SubscriptionItem{{CurrentPeriodEnd: 1767225600}}}}
	end := periodEnd(sub)
	if assert.NotNil(t, end) {
		assert.Equal(t, 2026, end.Year())
	}
}
