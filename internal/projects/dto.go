package projects

import (
	"time"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

// CreateProjectInput opens a job. When QuoteID is set and SurfaceM2 is left
// at zero, the surface is taken from the quote's computed items.
type CreateProjectInput struct {
	ClientID  uuid.UUID  `json:"client_id" validate:"required"`
	QuoteID   *uuid.UUID `json:"quote_id"`
	Name      string     `json:"name" validate:"required,max=200"`
	SurfaceM2 float64    `json:"surface_m2" validate:"gte=0"`
	RALCode   *string    `json:"ral_code" validate:"omitempty,max=20"`
	DueDate   *time.Time `json:"due_date"`
	Notes     *string    `json:"notes"`
}

type UpdateProjectInput struct {
	Name      *string                   `json:"name" validate:"omitempty,min=1,max=200"`
	SurfaceM2 *float64                  `json:"surface_m2" validate:"omitempty,gte=0"`
	RALCode   types.Nullable[string]    `json:"ral_code"`
	DueDate   types.Nullable[time.Time] `json:"due_date"`
	Notes     types.Nullable[string]    `json:"notes"`
}

type TransitionInput struct {
	Status string `json:"status" validate:"required"`
}

type PhotoInput struct {
	URL     string  `json:"url" validate:"required,url,max=2048"`
	Caption *string `json:"caption" validate:"omitempty,max=300"`
	Stage   string  `json:"stage" validate:"omitempty,oneof=before after defect"`
}

type ListFilter struct {
	Status   *enums.ProjectStatus
	ClientID *uuid.UUID
}
