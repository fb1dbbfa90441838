package subscriptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/alerts"
	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/pkg/db"
	"github.com/thermolaq/atelier-backend/pkg/db/dbtest"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

var now = time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc      Service
	conn     *gorm.DB
	dbClient *db.Client
	tenant   models.Tenant
	stripe   *stubStripe
}

func setup(t *testing.T) fixture {
	t.Helper()
	dbClient, conn := dbtest.Client(t)
	tenant, _ := dbtest.SeedTenant(t, conn, "Atelier Ocre")
	customer := "cus_123"
	require.NoError(t, conn.Model(&models.Tenant{}).Where("id = ?", tenant.ID).Update("stripe_customer_id", customer).Error)

	alertSvc, err := alerts.NewService(alerts.NewRepository(conn))
	require.NoError(t, err)
	stub := &stubStripe{}
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(conn),
		Stripe: stub,
		Prices: PlanPrices{Pro: "price_pro", Enterprise: "price_ent"},
		Alerts: alertSvc,
		Audit:  audit.NewRecorder(audit.NewRepository(conn), logger.Nop()),
		Logger: logger.Nop(),
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)
	return fixture{svc: svc, conn: conn, dbClient: dbClient, tenant: tenant, stripe: stub}
}

func (f fixture) apply(t *testing.T, sub *stripe.Subscription, eventType stripe.EventType) *models.Tenant {
	t.Helper()
	var out *models.Tenant
	require.NoError(t, f.dbClient.WithTx(context.Background(), func(tx *gorm.DB) error {
		var err error
		out, err = f.svc.ApplyStripeSubscription(context.Background(), tx, sub, eventType)
		return err
	}))
	return out
}

func (f fixture) outcome(t *testing.T, outcome InvoiceOutcome) *models.Tenant {
	t.Helper()
	var out *models.Tenant
	require.NoError(t, f.dbClient.WithTx(context.Background(), func(tx *gorm.DB) error {
		var err error
		out, err = f.svc.ApplyInvoiceOutcome(context.Background(), tx, outcome)
		return err
	}))
	return out
}

func (f fixture) reload(t *testing.T) models.Tenant {
	t.Helper()
	var tenant models.Tenant
	require.NoError(t, f.conn.First(&tenant, "id = ?", f.tenant.ID).Error)
	return tenant
}

func (f fixture) alertCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(&models.Alert{}).Where("tenant_id = ? AND type = ?", f.tenant.ID, enums.AlertTypeSubscription).Count(&n).Error)
	return n
}

func proSubscription(status stripe.SubscriptionStatus) *stripe.Subscription {
	return &stripe.Subscription{
		ID:       "sub_1",
		Status:   status,
		Customer: &stripe.Customer{ID: "cus_123"},
		Items: &stripe.SubscriptionItemList{Data: []*stripe.SubscriptionItem{{
			Price:            &stripe.Price{ID: "price_pro"},
			CurrentPeriodEnd: now.AddDate(0, 1, 0).Unix(),
		}}},
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	f := setup(t)

	tenant := f.apply(t, proSubscription(stripe.SubscriptionStatusIncomplete), stripe.EventTypeCustomerSubscriptionCreated)
	require.NotNil(t, tenant)
	stored := f.reload(t)
	assert.Equal(t, enums.SubscriptionStatusActive, stored.SubscriptionStatus, "created always activates")
	assert.Equal(t, enums.PlanTierPro, stored.Plan)
	require.NotNil(t, stored.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *stored.StripeSubscriptionID)
	require.NotNil(t, stored.CurrentPeriodEnd)

	f.apply(t, proSubscription(stripe.SubscriptionStatusPastDue), stripe.EventTypeCustomerSubscriptionUpdated)
	assert.Equal(t, enums.SubscriptionStatusPastDue, f.reload(t).SubscriptionStatus)

	f.outcome(t, InvoiceOutcome{SubscriptionID: "sub_1", Paid: true})
	assert.Equal(t, enums.SubscriptionStatusActive, f.reload(t).SubscriptionStatus)

	f.apply(t, proSubscription(stripe.SubscriptionStatusActive), stripe.EventTypeCustomerSubscriptionDeleted)
	stored = f.reload(t)
	assert.Equal(t, enums.SubscriptionStatusCancelled, stored.SubscriptionStatus)
	assert.Equal(t, enums.DefaultPlanTier, stored.Plan)
	assert.Nil(t, stored.StripeSubscriptionID)

	// activated, past due, restored, cancelled
	assert.Equal(t, int64(4), f.alertCount(t))

	var logs int64
	require.NoError(t, f.conn.Model(&models.AuditLog{}).Where("entity = ?", audit.EntitySubscription).Count(&logs).Error)
	assert.Equal(t, int64(4), logs)
}

func TestUpdatedCanceledDowngradesPlan(t *testing.T) {
	f := setup(t)
	f.apply(t, proSubscription(stripe.SubscriptionStatusActive), stripe.EventTypeCustomerSubscriptionCreated)

	f.apply(t, proSubscription(stripe.SubscriptionStatusCanceled), stripe.EventTypeCustomerSubscriptionUpdated)
	stored := f.reload(t)
	assert.Equal(t, enums.SubscriptionStatusCancelled, stored.SubscriptionStatus)
	assert.Equal(t, enums.PlanTierFree, stored.Plan)
	require.NotNil(t, stored.StripeSubscriptionID, "update keeps the reference until deletion")
}

func TestStaleTransitionIgnored(t *testing.T) {
	f := setup(t)

	tenant := f.apply(t, proSubscription(stripe.SubscriptionStatusPastDue), stripe.EventTypeCustomerSubscriptionUpdated)
	require.NotNil(t, tenant)
	stored := f.reload(t)
	assert.Equal(t, enums.SubscriptionStatusNone, stored.SubscriptionStatus)
	assert.Nil(t, stored.StripeSubscriptionID)
	assert.Zero(t, f.alertCount(t))
}

func TestUnmappedStatusIgnored(t *testing.T) {
	f := setup(t)
	f.apply(t, proSubscription(stripe.SubscriptionStatusActive), stripe.EventTypeCustomerSubscriptionCreated)

	f.apply(t, proSubscription(stripe.SubscriptionStatusPaused), stripe.EventTypeCustomerSubscriptionUpdated)
	assert.Equal(t, enums.SubscriptionStatusActive, f.reload(t).SubscriptionStatus)
}

func TestResolveByTenantMetadata(t *testing.T) {
	f := setup(t)
	sub := proSubscription(stripe.SubscriptionStatusActive)
	sub.Customer = &stripe.Customer{ID: "cus_other"}
	sub.Metadata = map[string]string{"tenant_id": f.tenant.ID.String()}

	tenant := f.apply(t, sub, stripe.EventTypeCustomerSubscriptionCreated)
	require.NotNil(t, tenant)
	assert.Equal(t, f.tenant.ID, tenant.ID)
	stored := f.reload(t)
	require.NotNil(t, stored.StripeCustomerID)
	assert.Equal(t, "cus_123", *stored.StripeCustomerID, "an existing customer id is kept")
}

func TestUnknownSubscriptionIsNoop(t *testing.T) {
	f := setup(t)
	sub := proSubscription(stripe.SubscriptionStatusActive)
	sub.ID = "sub_unknown"
	sub.Customer = &stripe.Customer{ID: "cus_unknown"}

	assert.Nil(t, f.apply(t, sub, stripe.EventTypeCustomerSubscriptionCreated))
	assert.Nil(t, f.outcome(t, InvoiceOutcome{SubscriptionID: "sub_unknown", Paid: false}))
	assert.Nil(t, f.outcome(t, InvoiceOutcome{}))
	assert.Equal(t, enums.SubscriptionStatusNone, f.reload(t).SubscriptionStatus)
}

func TestInvoiceOutcomeRefreshesPeriod(t *testing.T) {
	f := setup(t)
	f.apply(t, proSubscription(stripe.SubscriptionStatusActive), stripe.EventTypeCustomerSubscriptionCreated)
	f.outcome(t, InvoiceOutcome{SubscriptionID: "sub_1", Paid: false})
	assert.Equal(t, enums.SubscriptionStatusPastDue, f.reload(t).SubscriptionStatus)

	latest := proSubscription(stripe.SubscriptionStatusActive)
	latest.Items.Data[0].Price = &stripe.Price{ID: "price_ent"}
	latest.Items.Data[0].CurrentPeriodEnd = now.AddDate(0, 2, 0).Unix()
	f.outcome(t, InvoiceOutcome{SubscriptionID: "sub_1", Paid: true, Latest: latest})

	stored := f.reload(t)
	assert.Equal(t, enums.SubscriptionStatusActive, stored.SubscriptionStatus)
	assert.Equal(t, enums.PlanTierEnterprise, stored.Plan)
	require.NotNil(t, stored.CurrentPeriodEnd)
	assert.Equal(t, now.AddDate(0, 2, 0).Unix(), stored.CurrentPeriodEnd.Unix())
}

func TestInvoiceOutcomeDoesNotReviveCancelled(t *testing.T) {
	f := setup(t)
	f.apply(t, proSubscription(stripe.SubscriptionStatusActive), stripe.EventTypeCustomerSubscriptionCreated)
	f.apply(t, proSubscription(stripe.SubscriptionStatusCanceled), stripe.EventTypeCustomerSubscriptionUpdated)

	f.outcome(t, InvoiceOutcome{SubscriptionID: "sub_1", Paid: true})
	assert.Equal(t, enums.SubscriptionStatusCancelled, f.reload(t).SubscriptionStatus)
}

func TestApplyRequiresTransaction(t *testing.T) {
	f := setup(t)
	_, err := f.svc.ApplyStripeSubscription(context.Background(), nil, proSubscription(stripe.SubscriptionStatusActive), stripe.EventTypeCustomerSubscriptionCreated)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))

	_, err = f.svc.ApplyInvoiceOutcome(context.Background(), nil, InvoiceOutcome{SubscriptionID: "sub_1"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}

func TestCurrent(t *testing.T) {
	f := setup(t)
	view, err := f.svc.Current(context.Background(), f.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PlanTierFree, view.Plan)
	assert.Equal(t, enums.SubscriptionStatusNone, view.Status)
	assert.False(t, view.HasSubscription)

	f.apply(t, proSubscription(stripe.SubscriptionStatusActive), stripe.EventTypeCustomerSubscriptionCreated)
	view, err = f.svc.Current(context.Background(), f.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PlanTierPro, view.Plan)
	assert.True(t, view.HasSubscription)

	_, err = f.svc.Current(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestFetch(t *testing.T) {
	f := setup(t)
	f.stripe.sub = proSubscription(stripe.SubscriptionStatusActive)

	sub, err := f.svc.Fetch(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_1", sub.ID)

	sub, err = f.svc.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, sub)

	f.stripe.err = errors.New("stripe down")
	_, err = f.svc.Fetch(context.Background(), "sub_1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestFetchWebhookOnlyMode(t *testing.T) {
	_, conn := dbtest.Client(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	require.NoError(t, err)
	sub, err := svc.Fetch(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Nil(t, sub)

	assert.Nil(t, NewStripeClient(nil))
}

type stubStripe struct {
	sub *stripe.Subscription
	err error
}

func (s *stubStripe) Get(context.Context, string) (*stripe.Subscription, error) {
	return s.sub, s.err
}

func TestLinkedListsOnlyTenantsWithSubscription(t *testing.T) {
	f := setup(t)
	other, _ := dbtest.SeedTenant(t, f.conn, "Atelier Sans Abonnement")
	require.NoError(t, f.conn.Model(&models.Tenant{}).Where("id = ?", f.tenant.ID).Update("stripe_subscription_id", "sub_1").Error)

	tenants, err := f.svc.Linked(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, f.tenant.ID, tenants[0].ID)
	assert.NotEqual(t, other.ID, tenants[0].ID)
}
