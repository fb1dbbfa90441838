package numbering

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/pkg/db/dbtest"
)

func TestNextIsSequentialPerKindAndYear(t *testing.T) {
	client, conn := dbtest.Client(t)
	tenant, _ := dbtest.SeedTenant(t, conn, "Atelier Noir")
	other, _ := dbtest.SeedTenant(t, conn, "Atelier Blanc")
	ctx := context.Background()

	next := func(tenantID uuid.UUID, kind string, year int) string {
		t.Helper()
		var number string
		require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			number, err = Next(ctx, tx, tenantID, kind, "dev", year)
			return err
		}))
		return number
	}

	assert.Equal(t, "DEV-2026-0001", next(tenant.ID, KindQuote, 2026))
	assert.Equal(t, "DEV-2026-0002", next(tenant.ID, KindQuote, 2026))
	assert.Equal(t, "DEV-2026-0001", next(tenant.ID, KindInvoice, 2026))
	assert.Equal(t, "DEV-2027-0001", next(tenant.ID, KindQuote, 2027))
	assert.Equal(t, "DEV-2026-0001", next(other.ID, KindQuote, 2026))
}

func TestRollbackReleasesNumber(t *testing.T) {
	client, conn := dbtest.Client(t)
	tenant, _ := dbtest.SeedTenant(t, conn, "Atelier Noir")
	ctx := context.Background()

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := Next(ctx, tx, tenant.ID, KindQuote, "DEV", 2026); err != nil {
			return err
		}
		return errors.New("insert failed")
	})
	require.Error(t, err)

	var number string
	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		number, err = Next(ctx, tx, tenant.ID, KindQuote, "DEV", 2026)
		return err
	}))
	assert.Equal(t, "DEV-2026-0001", number)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "FAC-2026-0042", Format(" fac ", 2026, 42))
	assert.Equal(t, "FAC-2026-12345", Format("FAC", 2026, 12345))
	assert.Equal(t, "2026-0003", Format("", 2026, 3))

	_, err := Next(context.Background(), nil, uuid.Nil, KindQuote, "X", 2026)
	assert.Error(t, err)
}
