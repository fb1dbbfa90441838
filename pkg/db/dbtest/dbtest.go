// Package dbtest opens throwaway sqlite databases carrying the full schema.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/thermolaq/atelier-backend/pkg/db"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// Open returns a migrated in-memory database private to the calling test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=off", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return conn
}

// Client wraps Open in the pkg/db client so services get a real WithTx.
func Client(t testing.TB) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.NewFromGorm(conn), conn
}

// SeedTenant inserts a workshop with one owner and returns both.
func SeedTenant(t testing.TB, conn *gorm.DB, name string) (models.Tenant, models.User) {
	t.Helper()
	tenant := models.Tenant{
		Name:               name,
		Locale:             "fr",
		Plan:               enums.PlanTierFree,
		SubscriptionStatus: enums.SubscriptionStatusNone,
	}
	if err := conn.Create(&tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	user := models.User{
		ID:       uuid.New(),
		TenantID: tenant.ID,
		Email:    fmt.Sprintf("owner+%s@example.test", tenant.ID.String()[:8]),
		Role:     enums.MemberRoleOwner,
	}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return tenant, user
}

// SeedClient inserts a company client for tenantID.
func SeedClient(t testing.TB, conn *gorm.DB, tenantID uuid.UUID, name string) models.Client {
	t.Helper()
	client := models.Client{TenantID: tenantID, Kind: enums.ClientKindCompany, Name: name}
	if err := conn.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return client
}
