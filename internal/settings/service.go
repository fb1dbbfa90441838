// Package settings owns a workshop's rate card and document branding.
package settings

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/pricing"
	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/config"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Repository loads and upserts the single settings row of a tenant.
type Repository interface {
	Find(ctx context.Context, tenantID uuid.UUID) (*models.ShopSettings, error)
	Upsert(ctx context.Context, row *models.ShopSettings) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Find(ctx context.Context, tenantID uuid.UUID) (*models.ShopSettings, error) {
	var row models.ShopSettings
	if err := r.Tenant(ctx, tenantID).First(&row).Error; err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) Upsert(ctx context.Context, row *models.ShopSettings) error {
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		UpdateAll: true,
	}).Create(row).Error
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	LaborRatePerHour     *float64               `json:"labor_rate_per_hour" validate:"omitempty,gte=0"`
	LaborHoursPerM2      *float64               `json:"labor_hours_per_m2" validate:"omitempty,gte=0"`
	ConsumablesCostPerM2 *float64               `json:"consumables_cost_per_m2" validate:"omitempty,gte=0"`
	PowderMarginPct      *float64               `json:"powder_margin_pct" validate:"omitempty,gte=-100"`
	LaborMarginPct       *float64               `json:"labor_margin_pct" validate:"omitempty,gte=-100"`
	VATRatePct           *float64               `json:"vat_rate_pct" validate:"omitempty,gte=0,lte=100"`
	PDFTemplate          *string                `json:"pdf_template" validate:"omitempty,oneof=classic modern minimal"`
	PrimaryColor         *string                `json:"primary_color"`
	AccentColor          *string                `json:"accent_color"`
	QuotePrefix          *string                `json:"quote_prefix" validate:"omitempty,max=10"`
	InvoicePrefix        *string                `json:"invoice_prefix" validate:"omitempty,max=10"`
	QuoteValidityDays    *int                   `json:"quote_validity_days" validate:"omitempty,gte=1,lte=365"`
	PaymentTermsDays     *int                   `json:"payment_terms_days" validate:"omitempty,gte=0,lte=120"`
	LegalMentions        types.Nullable[string] `json:"legal_mentions"`
	IBAN                 types.Nullable[string] `json:"iban"`
}

// Service reads and writes shop settings.
type Service struct {
	repo     Repository
	defaults config.PricingDefaults
	audit    *audit.Recorder
}

func NewService(r Repository, defaults config.PricingDefaults, recorder *audit.Recorder) (*Service, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settings repository required")
	}
	return &Service{repo: r, defaults: defaults, audit: recorder}, nil
}

// Defaults builds an unsaved settings row from configuration.
func (s *Service) Defaults(tenantID uuid.UUID) models.ShopSettings {
	return models.ShopSettings{
		TenantID:             tenantID,
		LaborRatePerHour:     s.defaults.LaborRatePerHour,
		LaborHoursPerM2:      s.defaults.LaborHoursPerM2,
		ConsumablesCostPerM2: s.defaults.ConsumablesCostPerM2,
		PowderMarginPct:      s.defaults.PowderMarginPct,
		LaborMarginPct:       s.defaults.LaborMarginPct,
		VATRatePct:           s.defaults.VATRatePct,
		PDFTemplate:          enums.PDFTemplateClassic,
		PrimaryColor:         "#1f2937",
		AccentColor:          "#f97316",
		QuotePrefix:          "DEV",
		InvoicePrefix:        "FAC",
		QuoteValidityDays:    s.defaults.QuoteValidityDays,
		PaymentTermsDays:     s.defaults.PaymentTermsDays,
	}
}

// Get returns the saved settings, or configuration defaults when the tenant never saved any.
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID) (models.ShopSettings, error) {
	row, err := s.repo.Find(ctx, tenantID)
	if err != nil {
		return models.ShopSettings{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}
	if row == nil {
		return s.Defaults(tenantID), nil
	}
	return *row, nil
}

// Rates extracts the pricing rate card for a tenant.
func (s *Service) Rates(ctx context.Context, tenantID uuid.UUID) (pricing.Rates, error) {
	row, err := s.Get(ctx, tenantID)
	if err != nil {
		return pricing.Rates{}, err
	}
	return RatesOf(row), nil
}

// RatesOf maps a settings row onto the calculator's rate card.
func RatesOf(row models.ShopSettings) pricing.Rates {
	return pricing.Rates{
		LaborRatePerHour:     row.LaborRatePerHour,
		LaborHoursPerM2:      row.LaborHoursPerM2,
		ConsumablesCostPerM2: row.ConsumablesCostPerM2,
		PowderMarginPct:      row.PowderMarginPct,
		LaborMarginPct:       row.LaborMarginPct,
		VATRatePct:           row.VATRatePct,
	}
}

func (s *Service) Update(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input UpdateInput) (models.ShopSettings, error) {
	row, err := s.Get(ctx, tenantID)
	if err != nil {
		return models.ShopSettings{}, err
	}

	setFloat(&row.LaborRatePerHour, input.LaborRatePerHour)
	setFloat(&row.LaborHoursPerM2, input.LaborHoursPerM2)
	setFloat(&row.ConsumablesCostPerM2, input.ConsumablesCostPerM2)
	setFloat(&row.PowderMarginPct, input.PowderMarginPct)
	setFloat(&row.LaborMarginPct, input.LaborMarginPct)
	setFloat(&row.VATRatePct, input.VATRatePct)

	if input.PDFTemplate != nil {
		tpl, err := enums.ParsePDFTemplate(*input.PDFTemplate)
		if err != nil {
			return models.ShopSettings{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pdf template")
		}
		row.PDFTemplate = tpl
	}
	if input.PrimaryColor != nil {
		if !ValidColor(*input.PrimaryColor) {
			return models.ShopSettings{}, pkgerrors.New(pkgerrors.CodeValidation, "primary_color must be #RRGGBB")
		}
		row.PrimaryColor = strings.ToLower(*input.PrimaryColor)
	}
	if input.AccentColor != nil {
		if !ValidColor(*input.AccentColor) {
			return models.ShopSettings{}, pkgerrors.New(pkgerrors.CodeValidation, "accent_color must be #RRGGBB")
		}
		row.AccentColor = strings.ToLower(*input.AccentColor)
	}
	if input.QuotePrefix != nil && strings.TrimSpace(*input.QuotePrefix) != "" {
		row.QuotePrefix = strings.ToUpper(strings.TrimSpace(*input.QuotePrefix))
	}
	if input.InvoicePrefix != nil && strings.TrimSpace(*input.InvoicePrefix) != "" {
		row.InvoicePrefix = strings.ToUpper(strings.TrimSpace(*input.InvoicePrefix))
	}
	if input.QuoteValidityDays != nil {
		row.QuoteValidityDays = *input.QuoteValidityDays
	}
	if input.PaymentTermsDays != nil {
		row.PaymentTermsDays = *input.PaymentTermsDays
	}
	input.LegalMentions.Apply(&row.LegalMentions)
	input.IBAN.Apply(&row.IBAN)

	if err := s.repo.Upsert(ctx, &row); err != nil {
		return models.ShopSettings{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save settings")
	}
	s.audit.Record(ctx, nil, audit.Entry{
		TenantID: tenantID,
		UserID:   userID,
		Action:   "settings.updated",
		Entity:   audit.EntitySettings,
		EntityID: tenantID,
		Payload:  input,
	})
	return row, nil
}

// ValidColor reports whether v is a #RRGGBB colour.
func ValidColor(v string) bool {
	return hexColor.MatchString(v)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
