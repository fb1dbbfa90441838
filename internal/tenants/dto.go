package tenants

import (
	"time"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

// TenantDTO is the workshop profile returned to members.
type TenantDTO struct {
	ID                 uuid.UUID                `json:"id"`
	Name               string                   `json:"name"`
	LegalName          *string                  `json:"legal_name,omitempty"`
	SIRET              *string                  `json:"siret,omitempty"`
	VATNumber          *string                  `json:"vat_number,omitempty"`
	Address            *string                  `json:"address,omitempty"`
	Email              *string                  `json:"email,omitempty"`
	Phone              *string                  `json:"phone,omitempty"`
	Locale             string                   `json:"locale"`
	Plan               enums.PlanTier           `json:"plan"`
	SubscriptionStatus enums.SubscriptionStatus `json:"subscription_status"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

func FromModel(t models.Tenant) TenantDTO {
	return TenantDTO{
		ID:                 t.ID,
		Name:               t.Name,
		LegalName:          t.LegalName,
		SIRET:              t.SIRET,
		VATNumber:          t.VATNumber,
		Address:            t.Address,
		Email:              t.Email,
		Phone:              t.Phone,
		Locale:             t.Locale,
		Plan:               t.Plan,
		SubscriptionStatus: t.SubscriptionStatus,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// UpdateTenantInput is a partial profile update.
type UpdateTenantInput struct {
	Name      *string                `json:"name" validate:"omitempty,min=2,max=120"`
	LegalName types.Nullable[string] `json:"legal_name"`
	SIRET     types.Nullable[string] `json:"siret"`
	VATNumber types.Nullable[string] `json:"vat_number"`
	Address   types.Nullable[string] `json:"address"`
	Email     types.Nullable[string] `json:"email"`
	Phone     types.Nullable[string] `json:"phone"`
	Locale    *string                `json:"locale" validate:"omitempty,oneof=fr en"`
}

// Membership is what the auth middleware needs to know about a caller.
type Membership struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Email    string
	Role     enums.MemberRole
}
