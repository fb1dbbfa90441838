package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermolaq/atelier-backend/pkg/db/dbtest"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, uuid.UUID) {
	t.Helper()
	conn := dbtest.Open(t)
	tenant, _ := dbtest.SeedTenant(t, conn, "Atelier Bleu")
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, tenant.ID
}

func TestEmitDeduplicates(t *testing.T) {
	svc, tenantID := newTestService(t)
	ctx := context.Background()
	input := NewAlert{TenantID: tenantID, Type: enums.AlertTypeLowStock, Title: "Stock bas", Message: "RAL 9005", DedupeKey: "low_stock:abc:2026-10-16"}

	created, err := svc.Emit(ctx, nil, input)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Emit(ctx, nil, input)
	require.NoError(t, err)
	assert.False(t, created)

	count, err := svc.CountUnread(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestEmitRejectsUnknownType(t *testing.T) {
	svc, tenantID := newTestService(t)
	_, err := svc.Emit(context.Background(), nil, NewAlert{TenantID: tenantID, Type: "weather"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListPaginatesAndMarksRead(t *testing.T) {
	svc, tenantID := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Emit(ctx, nil, NewAlert{TenantID: tenantID, Type: enums.AlertTypePaymentReceived, Title: "Paiement", Message: "ok"})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	page, err := svc.List(ctx, tenantID, pagination.Params{Limit: 2}, false)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)
	assert.True(t, !page.Items[0].CreatedAt.Before(page.Items[1].CreatedAt))

	rest, err := svc.List(ctx, tenantID, pagination.Params{Limit: 2, Cursor: page.NextCursor}, false)
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)

	require.NoError(t, svc.MarkRead(ctx, tenantID, page.Items[0].ID))
	require.NoError(t, svc.MarkRead(ctx, tenantID, page.Items[0].ID), "marking twice is fine")
	err = svc.MarkRead(ctx, tenantID, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	unread, err := svc.List(ctx, tenantID, pagination.Params{}, true)
	require.NoError(t, err)
	assert.Len(t, unread.Items, 2)

	n, err := svc.MarkAllRead(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestListRejectsBadCursor(t *testing.T) {
	svc, tenantID := newTestService(t)
	_, err := svc.List(context.Background(), tenantID, pagination.Params{Cursor: "%%%"}, false)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
