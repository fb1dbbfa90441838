package clients

import (
	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/pkg/types"
)

// CreateClientInput is the payload for a new client.
type CreateClientInput struct {
	Kind        string   `json:"kind" validate:"omitempty,oneof=company individual"`
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	ContactName *string  `json:"contact_name" validate:"omitempty,max=200"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Phone       *string  `json:"phone" validate:"omitempty,max=40"`
	Address     *string  `json:"address"`
	PostalCode  *string  `json:"postal_code" validate:"omitempty,max=12"`
	City        *string  `json:"city" validate:"omitempty,max=120"`
	SIRET       *string  `json:"siret" validate:"omitempty,siret"`
	VATNumber   *string  `json:"vat_number" validate:"omitempty,max=20"`
	Notes       *string  `json:"notes"`
	Tags        []string `json:"tags" validate:"omitempty,dive,min=1,max=40"`
}

// UpdateClientInput is a partial update. Tags replace the whole set when present.
type UpdateClientInput struct {
	Kind        *string                `json:"kind" validate:"omitempty,oneof=company individual"`
	Name        *string                `json:"name" validate:"omitempty,min=1,max=200"`
	ContactName types.Nullable[string] `json:"contact_name"`
	Email       types.Nullable[string] `json:"email"`
	Phone       types.Nullable[string] `json:"phone"`
	Address     types.Nullable[string] `json:"address"`
	PostalCode  types.Nullable[string] `json:"postal_code"`
	City        types.Nullable[string] `json:"city"`
	SIRET       types.Nullable[string] `json:"siret"`
	VATNumber   types.Nullable[string] `json:"vat_number"`
	Notes       types.Nullable[string] `json:"notes"`
	Tags        *[]string              `json:"tags"`
}

// Summary aggregates a client's commercial history.
type Summary struct {
	ClientID           uuid.UUID `json:"client_id"`
	QuoteCount         int64     `json:"quote_count"`
	AcceptedQuoteCount int64     `json:"accepted_quote_count"`
	InvoiceCount       int64     `json:"invoice_count"`
	InvoicedHT         float64   `json:"invoiced_ht"`
	RevenueHT          float64   `json:"revenue_ht"`
	OutstandingTTC     float64   `json:"outstanding_ttc"`
}
