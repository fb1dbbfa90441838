package tenants

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/pkg/db/dbtest"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

func TestGetAndUpdateProfile(t *testing.T) {
	conn := dbtest.Open(t)
	tenant, owner := dbtest.SeedTenant(t, conn, "Atelier Vert")
	svc, err := NewService(NewRepository(conn), nil)
	require.NoError(t, err)
	ctx := context.Background()

	got, err := svc.Get(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Atelier Vert", got.Name)

	name := "  Atelier Vert SARL "
	siret := "732 829 320 00074"
	locale := "en"
	updated, err := svc.Update(ctx, tenant.ID, &owner.ID, UpdateTenantInput{
		Name:   &name,
		SIRET:  types.Nullable[string]{Set: true, Value: &siret},
		Locale: &locale,
	})
	require.NoError(t, err)
	assert.Equal(t, "Atelier Vert SARL", updated.Name)
	require.NotNil(t, updated.SIRET)
	assert.Equal(t, "73282932000074", *updated.SIRET)
	assert.Equal(t, "en", updated.Locale)
}

func TestUpdateRejectsBadSIRET(t *testing.T) {
	conn := dbtest.Open(t)
	tenant, _ := dbtest.SeedTenant(t, conn, "Atelier Vert")
	svc, err := NewService(NewRepository(conn), nil)
	require.NoError(t, err)

	bad := "1234"
	_, err = svc.Update(context.Background(), tenant.ID, nil, UpdateTenantInput{SIRET: types.Nullable[string]{Set: true, Value: &bad}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetUnknownTenant(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)), nil)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestMembership(t *testing.T) {
	conn := dbtest.Open(t)
	tenant, owner := dbtest.SeedTenant(t, conn, "Atelier Vert")
	svc, err := NewService(NewRepository(conn), nil)
	require.NoError(t, err)

	m, err := svc.Membership(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, m.TenantID)
	assert.Equal(t, enums.MemberRoleOwner, m.Role)

	_, err = svc.Membership(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.Membership(context.Background(), uuid.Nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

type stubRepo struct {
	findUserErr error
}

func (s stubRepo) FindByID(context.Context, uuid.UUID) (*models.Tenant, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s stubRepo) Update(context.Context, *models.Tenant) error { return nil }
func (s stubRepo) FindUser(context.Context, uuid.UUID) (*models.User, error) {
	return nil, s.findUserErr
}

func TestMembershipDependencyError(t *testing.T) {
	svc, err := NewService(stubRepo{findUserErr: errors.New("conn reset")}, nil)
	require.NoError(t, err)
	_, err = svc.Membership(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
