package invoices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
)

// Repository handles invoice, payment and quote-conversion persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) error
	Save(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	FindByStripeInvoiceID(ctx context.Context, stripeInvoiceID string) (*models.Invoice, error)
	FindByStripePaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Invoice, error)
	ListForExport(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.Invoice, error)
	ListOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]models.Payment, error)
	FindQuoteForUpdate(ctx context.Context, tenantID, quoteID uuid.UUID) (*models.Quote, error)
	SaveQuote(ctx context.Context, quote *models.Quote) error
	ClientExists(ctx context.Context, tenantID, clientID uuid.UUID) (bool, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.DB(ctx).Create(invoice).Error
}

func (r *repository) Save(ctx context.Context, invoice *models.Invoice) error {
	return r.DB(ctx).Save(invoice).Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.Tenant(ctx, tenantID).Where("id = ?", id).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.Tenant(ctx, tenantID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByStripeInvoiceID is not tenant scoped: processor ids are globally unique
// and the webhook learns the tenant from the row it finds.
func (r *repository) FindByStripeInvoiceID(ctx context.Context, stripeInvoiceID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("stripe_invoice_id = ?", stripeInvoiceID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindByStripePaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		Order("created_at DESC").
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Invoice, error) {
	query := r.Tenant(ctx, tenantID).Model(&models.Invoice{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.From != nil {
		query = query.Where("issued_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("issued_at < ?", *filter.To)
	}
	query, err := pagination.Apply(query, "", params)
	if err != nil {
		return nil, err
	}
	var rows []models.Invoice
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListForExport returns issued documents in [from, to), oldest first.
func (r *repository) ListForExport(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.Invoice, error) {
	var rows []models.Invoice
	err := r.Tenant(ctx, tenantID).
		Where("issued_at IS NOT NULL AND issued_at >= ? AND issued_at < ?", from, to).
		Order("issued_at ASC, number ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error) {
	var rows []models.Invoice
	err := r.DB(ctx).
		Where("status = ? AND kind = ? AND due_at IS NOT NULL AND due_at < ?", enums.InvoiceStatusSent, enums.InvoiceKindInvoice, now).
		Order("tenant_id, due_at").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.DB(ctx).Create(payment).Error
}

func (r *repository) ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.Tenant(ctx, tenantID).Where("invoice_id = ?", invoiceID).Order("paid_at ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindQuoteForUpdate(ctx context.Context, tenantID, quoteID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.Tenant(ctx, tenantID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", quoteID).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) SaveQuote(ctx context.Context, quote *models.Quote) error {
	return r.DB(ctx).Save(quote).Error
}

func (r *repository) ClientExists(ctx context.Context, tenantID, clientID uuid.UUID) (bool, error) {
	var count int64
	err := r.Tenant(ctx, tenantID).Model(&models.Client{}).Where("id = ?", clientID).Count(&count).Error
	return count > 0, err
}
