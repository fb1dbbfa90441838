package exports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
)

// Row is an issued invoice with the client fields accounting exports need.
type Row struct {
	Invoice     models.Invoice
	ClientName  string
	ClientSIRET string
}

// Repository reads the issued documents of one period.
type Repository interface {
	Issued(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Row, error)
}

type repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn)}
}

// Issued returns documents issued in [from, to), oldest first. Drafts carry
// no issue date and never reach the books.
func (r *repository) Issued(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Row, error) {
	var invoices []models.Invoice
	err := r.Tenant(ctx, tenantID).
		Where("issued_at IS NOT NULL AND issued_at >= ? AND issued_at < ?", from, to).
		Order("issued_at ASC, number ASC").
		Find(&invoices).Error
	if err != nil || len(invoices) == 0 {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(invoices))
	seen := make(map[uuid.UUID]struct{}, len(invoices))
	for _, inv := range invoices {
		if _, ok := seen[inv.ClientID]; !ok {
			seen[inv.ClientID] = struct{}{}
			ids = append(ids, inv.ClientID)
		}
	}
	var clients []models.Client
	if err := r.Tenant(ctx, tenantID).Where("id IN ?", ids).Find(&clients).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}

	rows := make([]Row, 0, len(invoices))
	for _, inv := range invoices {
		row := Row{Invoice: inv}
		if c, ok := byID[inv.ClientID]; ok {
			row.ClientName = c.Name
			if c.SIRET != nil {
				row.ClientSIRET = *c.SIRET
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
