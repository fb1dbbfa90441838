package quotes

import (
	"time"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/internal/pricing"
	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// LayerInput is one coat as entered on the form.
type LayerInput struct {
	Type     string     `json:"layer_type" validate:"required,oneof=primer base varnish other"`
	PowderID *uuid.UUID `json:"powder_id"`
}

// ItemInput carries the raw, user-entered fields of a part. Derived figures
// are never accepted from the client.
type ItemInput struct {
	Designation string       `json:"designation" validate:"required,max=300"`
	LengthMM    float64      `json:"length_mm" validate:"gte=0"`
	WidthMM     float64      `json:"width_mm" validate:"gte=0"`
	HeightMM    *float64     `json:"height_mm" validate:"omitempty,gte=0"`
	Quantity    int          `json:"quantity" validate:"gte=1"`
	Layers      []LayerInput `json:"layers" validate:"dive"`
}

type DiscountInput struct {
	Kind  string  `json:"kind" validate:"required,oneof=percentage fixed_amount"`
	Value float64 `json:"value" validate:"gte=0"`
}

// QuoteInput is the body of create and full update.
type QuoteInput struct {
	ClientID   uuid.UUID      `json:"client_id" validate:"required"`
	Title      *string        `json:"title" validate:"omitempty,max=200"`
	Items      []ItemInput    `json:"items" validate:"dive"`
	Discount   *DiscountInput `json:"discount"`
	Notes      *string        `json:"notes"`
	ValidUntil *time.Time     `json:"valid_until"`
}

// PriceInput is the body of the stateless price preview.
type PriceInput struct {
	Items    []ItemInput    `json:"items" validate:"dive"`
	Discount *DiscountInput `json:"discount"`
}

type TransitionInput struct {
	Status string `json:"status" validate:"required"`
}

// ListFilter narrows a quote listing.
type ListFilter struct {
	Status   *enums.QuoteStatus
	ClientID *uuid.UUID
}

func (d *DiscountInput) toPricing() (*pricing.Discount, error) {
	if d == nil {
		return nil, nil
	}
	kind, err := enums.ParseDiscountKind(d.Kind)
	if err != nil {
		return nil, err
	}
	return &pricing.Discount{Kind: kind, Value: d.Value}, nil
}
