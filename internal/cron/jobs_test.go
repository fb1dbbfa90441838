package cron

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
	"github.com/thermolaq/atelier-backend/internal/powders"
	"github.com/thermolaq/atelier-backend/pkg/db/dbtest"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

var fixedNow = time.Date(2026, time.April, 2, 6, 0, 0, 0, time.UTC)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeOverdue struct {
	at      time.Time
	changed int
	err     error
}

func (f *fakeOverdue) MarkOverdue(_ context.Context, now time.Time) (int, error) {
	f.at = now
	return f.changed, f.err
}

func TestInvoiceOverdueJob(t *testing.T) {
	invoices := &fakeOverdue{changed: 3}
	job, err := NewInvoiceOverdueJob(InvoiceOverdueJobParams{
		Logger:   logger.Nop(),
		Invoices: invoices,
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	assert.Equal(t, JobInvoiceOverdue, job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, fixedNow, invoices.at)

	invoices.err = errors.New("db down")
	assert.Error(t, job.Run(context.Background()))

	_, err = NewInvoiceOverdueJob(InvoiceOverdueJobParams{Logger: logger.Nop()})
	assert.Error(t, err)
}

type fakeExpirer struct {
	at  time.Time
	err error
}

func (f *fakeExpirer) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	f.at = now
	return 2, f.err
}

func TestQuoteExpiryJob(t *testing.T) {
	quotes := &fakeExpirer{}
	job, err := NewQuoteExpiryJob(QuoteExpiryJobParams{
		Logger: logger.Nop(),
		Quotes: quotes,
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, fixedNow, quotes.at)

	quotes.err = errors.New("boom")
	assert.Error(t, job.Run(context.Background()))
}

func TestLowStockJob_AlertsOncePerDay(t *testing.T) {
	_, conn := dbtest.Client(t)
	tenant, _ := dbtest.SeedTenant(t, conn, "Atelier Ocre")
	ral := "7016"
	low := models.Powder{TenantID: tenant.ID, Reference: "Sablé anthracite", RALCode: &ral, Finish: enums.PowderFinishMatt, StockKg: 1.5, MinStockKg: 5}
	fine := models.Powder{TenantID: tenant.ID, Reference: "Blanc", Finish: enums.PowderFinishGloss, StockKg: 40, MinStockKg: 5}
	untracked := models.Powder{TenantID: tenant.ID, Reference: "Vernis", Finish: enums.PowderFinishGloss, StockKg: 0}
	for _, p := range []*models.Powder{&low, &fine, &untracked} {
		require.NoError(t, conn.Create(p).Error)
	}

	alertRepo := alerts.NewRepository(conn)
	alertSvc, err := alerts.NewService(alertRepo)
	require.NoError(t, err)
	now := fixedNow
	job, err := NewLowStockJob(LowStockJobParams{
		Logger:  logger.Nop(),
		Powders: powders.NewRepository(conn),
		Alerts:  alertSvc,
		Now:     func() time.Time { return now },
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))
	count, err := alertRepo.CountUnread(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "second run on the same day is deduplicated")

	var alert models.Alert
	require.NoError(t, conn.Where("tenant_id = ?", tenant.ID).First(&alert).Error)
	assert.Equal(t, enums.AlertTypeLowStock, alert.Type)
	assert.Contains(t, alert.Title, "Sablé anthracite (RAL 7016)")

	now = now.Add(24 * time.Hour)
	require.NoError(t, job.Run(context.Background()))
	count, err = alertRepo.CountUnread(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "a new day raises a new alert")
}

type fakeSubscriptionSync struct {
	tenants  []models.Tenant
	remote   map[string]*stripe.Subscription
	fetchErr error
	applied  []string
}

func (f *fakeSubscriptionSync) Linked(context.Context, int) ([]models.Tenant, error) {
	return f.tenants, nil
}

func (f *fakeSubscriptionSync) Fetch(_ context.Context, id string) (*stripe.Subscription, error) {
	if f.fetchErr != nil && id == "sub_broken" {
		return nil, f.fetchErr
	}
	return f.remote[id], nil
}

func (f *fakeSubscriptionSync) ApplyStripeSubscription(_ context.Context, _ *gorm.DB, sub *stripe.Subscription, eventType stripe.EventType) (*models.Tenant, error) {
	if eventType != stripe.EventTypeCustomerSubscriptionUpdated {
		return nil, errors.New("unexpected event type")
	}
	f.applied = append(f.applied, sub.ID)
	return &models.Tenant{}, nil
}

func TestSubscriptionReconcileJob(t *testing.T) {
	ids := []string{"sub_ok", "sub_gone", "sub_broken"}
	var tenants []models.Tenant
	for i := range ids {
		tenants = append(tenants, models.Tenant{ID: uuid.New(), StripeSubscriptionID: &ids[i]})
	}
	tenants = append(tenants, models.Tenant{ID: uuid.New()})

	subs := &fakeSubscriptionSync{
		tenants:  tenants,
		remote:   map[string]*stripe.Subscription{"sub_ok": {ID: "sub_ok", Status: stripe.SubscriptionStatusActive}},
		fetchErr: errors.New("stripe unavailable"),
	}
	job, err := NewSubscriptionReconcileJob(SubscriptionReconcileJobParams{
		Logger:        logger.Nop(),
		DB:            fakeTxRunner{},
		Subscriptions: subs,
	})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err, "fetch failures are reported")
	assert.Contains(t, err.Error(), "stripe unavailable")
	assert.Equal(t, []string{"sub_ok"}, subs.applied, "other tenants still reconcile")
}

type fakePurge struct {
	cutoff time.Time
	rows   int64
	err    error
}

func (f *fakePurge) purge(_ context.Context, _ *gorm.DB, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.rows, f.err
}

func TestAlertRetentionJob(t *testing.T) {
	repo := &fakePurge{rows: 4}
	iface, err := NewAlertRetentionJob(logger.Nop(), fakeTxRunner{}, repo.purge, 0)
	require.NoError(t, err)
	job := iface.(*retentionJob)
	job.now = func() time.Time { return fixedNow }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, fixedNow.AddDate(0, 0, -alertRetentionDays), repo.cutoff)
	assert.Equal(t, JobAlertRetention, job.Name())

	repo.err = errors.New("boom")
	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), JobAlertRetention)
}

func TestWebhookEventRetentionJob(t *testing.T) {
	repo := &fakePurge{}
	iface, err := NewWebhookEventRetentionJob(logger.Nop(), fakeTxRunner{}, repo.purge, 7)
	require.NoError(t, err)
	job := iface.(*retentionJob)
	job.now = func() time.Time { return fixedNow }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, fixedNow.AddDate(0, 0, -7), repo.cutoff)
	assert.Equal(t, JobWebhookEventRetention, job.Name())
}

func TestNewRetentionJobValidation(t *testing.T) {
	purge := (&fakePurge{}).purge
	_, err := NewRetentionJob(RetentionJobParams{Logger: logger.Nop(), DB: fakeTxRunner{}, Purge: purge, Days: 1})
	assert.Error(t, err, "name required")
	_, err = NewRetentionJob(RetentionJobParams{Name: "x", Logger: logger.Nop(), DB: fakeTxRunner{}, Purge: purge})
	assert.Error(t, err, "window required")
	_, err = NewRetentionJob(RetentionJobParams{Name: "x", Logger: logger.Nop(), DB: fakeTxRunner{}, Days: 1})
	assert.Error(t, err, "purge required")
}

func TestAlertRepositoryDeleteReadBefore(t *testing.T) {
	_, conn := dbtest.Client(t)
	tenant, _ := dbtest.SeedTenant(t, conn, "Atelier")
	old := fixedNow.AddDate(0, -6, 0)
	recent := fixedNow.AddDate(0, 0, -1)
	rows := []models.Alert{
		{TenantID: tenant.ID, Type: enums.AlertTypeLowStock, Title: "old read", Message: "m", ReadAt: &old},
		{TenantID: tenant.ID, Type: enums.AlertTypeLowStock, Title: "recent read", Message: "m", ReadAt: &recent},
		{TenantID: tenant.ID, Type: enums.AlertTypeLowStock, Title: "unread", Message: "m"},
	}
	require.NoError(t, conn.Create(&rows).Error)

	deleted, err := alerts.NewRepository(conn).DeleteReadBefore(context.Background(), nil, fixedNow.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
