package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/pkg/config"
	"github.com/thermolaq/atelier-backend/pkg/db/dbtest"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

var testDefaults = config.PricingDefaults{
	LaborRatePerHour:     45,
	LaborHoursPerM2:      0.25,
	ConsumablesCostPerM2: 2.5,
	PowderMarginPct:      30,
	LaborMarginPct:       20,
	VATRatePct:           20,
	QuoteValidityDays:    30,
	PaymentTermsDays:     30,
}

func ptr[T any](v T) *T { return &v }

func TestGetFallsBackToDefaults(t *testing.T) {
	conn := dbtest.Open(t)
	tenant, _ := dbtest.SeedTenant(t, conn, "Atelier Rouge")
	svc, err := NewService(NewRepository(conn), testDefaults, nil)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 45.0, got.LaborRatePerHour)
	assert.Equal(t, enums.PDFTemplateClassic, got.PDFTemplate)
	assert.Equal(t, "DEV", got.QuotePrefix)

	rates, err := svc.Rates(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, rates.VATRatePct)
	assert.Equal(t, 0.25, rates.LaborHoursPerM2)
}

func TestUpdatePersistsAndAudits(t *testing.T) {
	conn := dbtest.Open(t)
	tenant, owner := dbtest.SeedTenant(t, conn, "Atelier Rouge")
	auditRepo := audit.NewRepository(conn)
	svc, err := NewService(NewRepository(conn), testDefaults, audit.NewRecorder(auditRepo, logger.Nop()))
	require.NoError(t, err)
	ctx := context.Background()

	iban := "FR7630006000011234567890189"
	updated, err := svc.Update(ctx, tenant.ID, &owner.ID, UpdateInput{
		LaborRatePerHour: ptr(52.0),
		PDFTemplate:      ptr("modern"),
		PrimaryColor:     ptr("#AABBCC"),
		QuotePrefix:      ptr(" dv "),
		IBAN:             types.Nullable[string]{Set: true, Value: &iban},
	})
	require.NoError(t, err)
	assert.Equal(t, 52.0, updated.LaborRatePerHour)
	assert.Equal(t, "#aabbcc", updated.PrimaryColor)
	assert.Equal(t, "DV", updated.QuotePrefix)

	again, err := svc.Get(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PDFTemplateModern, again.PDFTemplate)
	require.NotNil(t, again.IBAN)
	assert.Equal(t, iban, *again.IBAN)
	assert.Equal(t, 30.0, again.PowderMarginPct, "untouched fields keep their defaults")

	_, err = svc.Update(ctx, tenant.ID, &owner.ID, UpdateInput{IBAN: types.Nullable[string]{Set: true}})
	require.NoError(t, err)
	cleared, err := svc.Get(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.IBAN)

	entries, err := auditRepo.ListByEntity(ctx, tenant.ID, audit.EntitySettings, tenant.ID, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestUpdateRejectsBadColour(t *testing.T) {
	conn := dbtest.Open(t)
	tenant, _ := dbtest.SeedTenant(t, conn, "Atelier Rouge")
	svc, err := NewService(NewRepository(conn), testDefaults, nil)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), tenant.ID, nil, UpdateInput{AccentColor: ptr("orange")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Update(context.Background(), tenant.ID, nil, UpdateInput{PDFTemplate: ptr("baroque")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestValidColor(t *testing.T) {
	assert.True(t, ValidColor("#00ff00"))
	assert.False(t, ValidColor("00ff00"))
	assert.False(t, ValidColor("#0f0"))
}
