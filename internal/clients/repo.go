package clients

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
)

// ListFilter narrows a client listing.
type ListFilter struct {
	Search string
	Tag    string
}

// Repository handles client persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Client, error)
	Summary(ctx context.Context, tenantID, id uuid.UUID) (Summary, error)
}

type repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, client *models.Client) error {
	return r.DB(ctx).Create(client).Error
}

func (r *repository) Update(ctx context.Context, client *models.Client) error {
	return r.DB(ctx).Save(client).Error
}

func (r *repository) Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	res := r.Tenant(ctx, tenantID).Where("id = ?", id).Delete(&models.Client{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.Tenant(ctx, tenantID).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Client, error) {
	query := r.Tenant(ctx, tenantID).Model(&models.Client{})
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		like := "%" + term + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ?", like, like)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query = tagFilter(query, tag)
	}
	query, err := pagination.Apply(query, "", params)
	if err != nil {
		return nil, err
	}
	var rows []models.Client
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// tagFilter matches one tag. Postgres checks array membership; sqlite keeps
// the quoted array literal as text, so the match is on the quoted element.
func tagFilter(query *gorm.DB, tag string) *gorm.DB {
	if query.Dialector.Name() == db.DriverPostgres {
		return query.Where("? = ANY(tags)", tag)
	}
	return query.Where("tags LIKE ?", `%"`+tag+`"%`)
}

func (r *repository) Summary(ctx context.Context, tenantID, id uuid.UUID) (Summary, error) {
	out := Summary{ClientID: id}
	if err := r.Tenant(ctx, tenantID).Model(&models.Quote{}).
		Where("client_id = ?", id).
		Count(&out.QuoteCount).Error; err != nil {
		return out, err
	}
	if err := r.Tenant(ctx, tenantID).Model(&models.Quote{}).
		Where("client_id = ? AND status IN ?", id, []enums.QuoteStatus{enums.QuoteStatusAccepted, enums.QuoteStatusConverted}).
		Count(&out.AcceptedQuoteCount).Error; err != nil {
		return out, err
	}

	var agg struct {
		Count       int64
		Invoiced    float64
		Paid        float64
		Outstanding float64
	}
	err := r.Tenant(ctx, tenantID).Model(&models.Invoice{}).
		Select(`COUNT(*) AS count,
			COALESCE(SUM(total_ht), 0) AS invoiced,
			COALESCE(SUM(CASE WHEN status = ? THEN total_ht ELSE 0 END), 0) AS paid,
			COALESCE(SUM(CASE WHEN status IN ? THEN total_ttc - amount_paid ELSE 0 END), 0) AS outstanding`,
			enums.InvoiceStatusPaid,
			[]enums.InvoiceStatus{enums.InvoiceStatusSent, enums.InvoiceStatusOverdue}).
		Where("client_id = ? AND kind = ?", id, enums.InvoiceKindInvoice).
		Scan(&agg).Error
	if err != nil {
		return out, err
	}
	out.InvoiceCount = agg.Count
	out.InvoicedHT = agg.Invoiced
	out.RevenueHT = agg.Paid
	out.OutstandingTTC = agg.Outstanding
	return out, nil
}
