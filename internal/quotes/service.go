// Package quotes builds, prices and tracks devis.
package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/numbering"
	"github.com/thermolaq/atelier-backend/internal/pricing"
	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/internal/settings"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type settingsProvider interface {
	Get(ctx context.Context, tenantID uuid.UUID) (models.ShopSettings, error)
}

type powderSnapshots interface {
	Snapshots(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]types.PowderSnapshot, error)
}

// invoiceConverter turns an accepted quote into an invoice.
type invoiceConverter interface {
	CreateFromQuote(ctx context.Context, tenantID, quoteID uuid.UUID, userID *uuid.UUID) (*models.Invoice, error)
}

// Service exposes quote operations.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input QuoteInput) (*models.Quote, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input QuoteInput) (*models.Quote, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) (*types.Page[models.Quote], error)
	Delete(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error
	Recalculate(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.Quote, error)
	Transition(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, status string) (*models.Quote, error)
	ConvertToInvoice(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.Invoice, error)
	Price(ctx context.Context, tenantID uuid.UUID, input PriceInput) (*pricing.Result, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// ServiceParams groups the collaborators of the quote service.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Settings  settingsProvider
	Powders   powderSnapshots
	Converter invoiceConverter
	Audit     *audit.Recorder
	Now       func() time.Time
}

type service struct {
	repo      Repository
	tx        txRunner
	settings  settingsProvider
	powders   powderSnapshots
	converter invoiceConverter
	audit     *audit.Recorder
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "quotes repository required")
	case params.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	case params.Settings == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settings provider required")
	case params.Powders == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "powder snapshots required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		settings:  params.Settings,
		powders:   params.Powders,
		converter: params.Converter,
		audit:     params.Audit,
		now:       now,
	}, nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input QuoteInput) (*models.Quote, error) {
	if err := s.checkClient(ctx, tenantID, input.ClientID); err != nil {
		return nil, err
	}
	shop, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	discount, err := input.Discount.toPricing()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount")
	}
	items, err := s.buildItems(ctx, tenantID, input.Items)
	if err != nil {
		return nil, err
	}
	result := pricing.ComputeQuote(items, discount, settings.RatesOf(shop))

	now := s.now().UTC()
	quote := &models.Quote{
		TenantID:   tenantID,
		ClientID:   input.ClientID,
		Status:     enums.QuoteStatusDraft,
		Title:      cleanText(input.Title),
		Notes:      input.Notes,
		ValidUntil: input.ValidUntil,
		CreatedBy:  userID,
	}
	if quote.ValidUntil == nil && shop.QuoteValidityDays > 0 {
		until := now.AddDate(0, 0, shop.QuoteValidityDays)
		quote.ValidUntil = &until
	}
	applyResult(quote, result, discount)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		number, err := numbering.Next(ctx, tx, tenantID, numbering.KindQuote, shop.QuotePrefix, now.Year())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign quote number")
		}
		quote.Number = number
		if err := s.repo.WithTx(tx).Create(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
		}
		s.record(ctx, tx, quote, userID, "quote.created", totalsPayload(quote))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *service) Update(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input QuoteInput) (*models.Quote, error) {
	quote, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !quote.Status.Editable() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quote can no longer be edited").
			WithDetails(map[string]any{"status": quote.Status})
	}
	if input.ClientID != quote.ClientID {
		if err := s.checkClient(ctx, tenantID, input.ClientID); err != nil {
			return nil, err
		}
	}
	shop, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	discount, err := input.Discount.toPricing()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount")
	}
	items, err := s.buildItems(ctx, tenantID, input.Items)
	if err != nil {
		return nil, err
	}

	quote.ClientID = input.ClientID
	quote.Title = cleanText(input.Title)
	quote.Notes = input.Notes
	if input.ValidUntil != nil {
		quote.ValidUntil = input.ValidUntil
	}
	applyResult(quote, pricing.ComputeQuote(items, discount, settings.RatesOf(shop)), discount)

	if err := s.repo.Save(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote")
	}
	s.record(ctx, nil, quote, userID, "quote.updated", totalsPayload(quote))
	return quote, nil
}

func (s *service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Quote, error) {
	quote, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return quote, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) (*types.Page[models.Quote], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, tenantID, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	items, next := pagination.Trim(rows, params.Limit, func(q models.Quote) pagination.Cursor {
		return pagination.Cursor{CreatedAt: q.CreatedAt, ID: q.ID}
	})
	return &types.Page[models.Quote]{Items: items, NextCursor: next}, nil
}

// Delete removes a draft. Anything already shown to a client stays for the record.
func (s *service) Delete(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error {
	quote, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if quote.Status != enums.QuoteStatusDraft {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only draft quotes can be deleted")
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete quote")
	}
	s.record(ctx, nil, quote, userID, "quote.deleted", map[string]any{"number": quote.Number})
	return nil
}

// Recalculate reprices a quote with the current rate card and powder figures.
func (s *service) Recalculate(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.Quote, error) {
	quote, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !quote.Status.Editable() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quote can no longer be repriced")
	}
	shop, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items := []types.QuoteItem(quote.Items)
	if err := s.attachSnapshots(ctx, tenantID, items); err != nil {
		return nil, err
	}
	discount := discountOf(quote)
	applyResult(quote, pricing.ComputeQuote(items, discount, settings.RatesOf(shop)), discount)

	if err := s.repo.Save(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save quote")
	}
	s.record(ctx, nil, quote, userID, "quote.recalculated", totalsPayload(quote))
	return quote, nil
}

func (s *service) Transition(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, status string) (*models.Quote, error) {
	next, err := enums.ParseQuoteStatus(status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	if next == enums.QuoteStatusConverted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "convert the quote to an invoice instead")
	}
	quote, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !quote.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
			WithDetails(map[string]any{"from": quote.Status, "to": next})
	}
	from := quote.Status
	now := s.now().UTC()
	quote.Status = next
	switch next {
	case enums.QuoteStatusSent:
		quote.SentAt = &now
	case enums.QuoteStatusAccepted:
		quote.AcceptedAt = &now
	}
	if err := s.repo.Save(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote status")
	}
	s.record(ctx, nil, quote, userID, "quote.status_changed", map[string]any{"from": from, "to": next})
	return quote, nil
}

func (s *service) ConvertToInvoice(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.Invoice, error) {
	if s.converter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "invoice converter not wired")
	}
	return s.converter.CreateFromQuote(ctx, tenantID, id, userID)
}

// Price runs the calculator on unsaved input, for the live form preview.
func (s *service) Price(ctx context.Context, tenantID uuid.UUID, input PriceInput) (*pricing.Result, error) {
	shop, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	discount, err := input.Discount.toPricing()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount")
	}
	items, err := s.buildItems(ctx, tenantID, input.Items)
	if err != nil {
		return nil, err
	}
	result := pricing.ComputeQuote(items, discount, settings.RatesOf(shop))
	return &result, nil
}

// ExpireOverdue marks sent quotes past their validity date as expired, across tenants.
func (s *service) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.repo.ExpireSentBefore(ctx, now.UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire quotes")
	}
	return count, nil
}

func (s *service) checkClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	if clientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "client_id is required")
	}
	ok, err := s.repo.ClientExists(ctx, tenantID, clientID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check client")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown client")
	}
	return nil
}

func (s *service) buildItems(ctx context.Context, tenantID uuid.UUID, inputs []ItemInput) ([]types.QuoteItem, error) {
	items := make([]types.QuoteItem, len(inputs))
	for i, in := range inputs {
		designation := strings.TrimSpace(in.Designation)
		if designation == "" {
			return nil, itemError(i, "designation is required")
		}
		if in.LengthMM < 0 || in.WidthMM < 0 || (in.HeightMM != nil && *in.HeightMM < 0) {
			return nil, itemError(i, "dimensions cannot be negative")
		}
		if in.Quantity < 1 {
			return nil, itemError(i, "quantity must be at least 1")
		}
		layers := make([]types.Layer, len(in.Layers))
		for j, l := range in.Layers {
			layerType, err := enums.ParseLayerType(l.Type)
			if err != nil {
				return nil, itemError(i, fmt.Sprintf("layer %d: %v", j+1, err))
			}
			layers[j] = types.Layer{Type: layerType, PowderID: l.PowderID}
		}
		items[i] = types.QuoteItem{
			Designation: designation,
			LengthMM:    in.LengthMM,
			WidthMM:     in.WidthMM,
			HeightMM:    in.HeightMM,
			Quantity:    in.Quantity,
			Layers:      layers,
		}
	}
	if err := s.attachSnapshots(ctx, tenantID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// attachSnapshots refreshes the powder figures of every layer that names a powder.
func (s *service) attachSnapshots(ctx context.Context, tenantID uuid.UUID, items []types.QuoteItem) error {
	var ids []uuid.UUID
	for _, item := range items {
		for _, layer := range item.Layers {
			if layer.PowderID != nil {
				ids = append(ids, *layer.PowderID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	snaps, err := s.powders.Snapshots(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	for i := range items {
		for j := range items[i].Layers {
			id := items[i].Layers[j].PowderID
			if id == nil {
				continue
			}
			snap := snaps[*id]
			items[i].Layers[j].Powder = &snap
		}
	}
	return nil
}

func (s *service) record(ctx context.Context, tx *gorm.DB, quote *models.Quote, userID *uuid.UUID, action string, payload any) {
	s.audit.Record(ctx, tx, audit.Entry{
		TenantID: quote.TenantID,
		UserID:   userID,
		Action:   action,
		Entity:   audit.EntityQuote,
		EntityID: quote.ID,
		Payload:  payload,
	})
}

func applyResult(quote *models.Quote, result pricing.Result, discount *pricing.Discount) {
	quote.Items = result.Items
	quote.QuoteTotals = result.Totals
	if discount == nil {
		quote.DiscountKind = nil
		quote.DiscountValue = 0
		return
	}
	kind := discount.Kind
	quote.DiscountKind = &kind
	quote.DiscountValue = discount.Value
}

func discountOf(quote *models.Quote) *pricing.Discount {
	if quote.DiscountKind == nil {
		return nil
	}
	return &pricing.Discount{Kind: *quote.DiscountKind, Value: quote.DiscountValue}
}

func totalsPayload(quote *models.Quote) map[string]any {
	return map[string]any{
		"number":          quote.Number,
		"items":           len(quote.Items),
		"total_ht":        quote.TotalSaleHT,
		"total_ttc":       quote.TotalTTC,
		"margin_pct":      quote.MarginPct,
		"negative_margin": quote.NegativeMargin,
	}
}

func itemError(index int, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: %s", index+1, msg)).
		WithDetails(map[string]any{"item": index})
}

func cleanText(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
