package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base provides a shared foundation for tenant-scoped repositories.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to ctx (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Tenant returns a session restricted to rows owned by tenantID. Every
// workshop table carries tenant_id, so repositories start from here.
func (b Base) Tenant(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return b.DB(ctx).Where("tenant_id = ?", tenantID)
}

// WithTx rebinds the base to a transaction handle.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// IsNotFound reports whether err is gorm's missing-row sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
