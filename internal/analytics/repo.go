package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// InvoiceFacts is the slice of an invoice row the KPIs read.
type InvoiceFacts struct {
	Kind       enums.InvoiceKind
	Status     enums.InvoiceStatus
	TotalHT    float64
	TotalTTC   float64
	AmountPaid float64
	IssuedAt   *time.Time
	PaidAt     *time.Time
	CreatedAt  time.Time
}

type QuoteFacts struct {
	Status    enums.QuoteStatus
	MarginPct float64
}

type StatusCount struct {
	Status enums.ProjectStatus
	Count  int
}

// Repository runs the read-only aggregates behind the dashboard. Grouping by
// month happens in Go so the same code runs on Postgres and sqlite.
type Repository interface {
	Invoices(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]InvoiceFacts, error)
	Quotes(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]QuoteFacts, error)
	ProjectsByStatus(ctx context.Context, tenantID uuid.UUID) ([]StatusCount, error)
	LowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
	UnreadAlerts(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn)}
}

// Invoices returns every issued document touching the period plus any that
// is still outstanding, whatever its age.
func (r *repository) Invoices(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]InvoiceFacts, error) {
	var rows []InvoiceFacts
	err := r.Tenant(ctx, tenantID).
		Table("invoices").
		Select("kind, status, total_ht, total_ttc, amount_paid, issued_at, paid_at, created_at").
		Where("status <> ?", enums.InvoiceStatusDraft).
		Where("(paid_at >= ? OR issued_at >= ? OR status IN ?)", since, since,
			[]enums.InvoiceStatus{enums.InvoiceStatusSent, enums.InvoiceStatusOverdue}).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) Quotes(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]QuoteFacts, error) {
	var rows []QuoteFacts
	err := r.Tenant(ctx, tenantID).
		Table("quotes").
		Select("status, margin_pct").
		Where("status <> ? AND created_at >= ?", enums.QuoteStatusDraft, since).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) ProjectsByStatus(ctx context.Context, tenantID uuid.UUID) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.Tenant(ctx, tenantID).
		Table("projects").
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) LowStockCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := r.Tenant(ctx, tenantID).
		Table("powders").
		Where("min_stock_kg > 0 AND stock_kg <= min_stock_kg").
		Count(&n).Error
	return n, err
}

func (r *repository) UnreadAlerts(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := r.Tenant(ctx, tenantID).
		Table("alerts").
		Where("read_at IS NULL").
		Count(&n).Error
	return n, err
}
