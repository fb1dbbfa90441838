package ovens

import (
	"time"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

type OvenInput struct {
	Name       string  `json:"name" validate:"required,max=120"`
	CapacityM2 float64 `json:"capacity_m2" validate:"gt=0"`
	MaxTempC   int     `json:"max_temp_c" validate:"omitempty,gt=0,lte=400"`
}

type UpdateOvenInput struct {
	Name       *string  `json:"name" validate:"omitempty,min=1,max=120"`
	CapacityM2 *float64 `json:"capacity_m2" validate:"omitempty,gt=0"`
	MaxTempC   *int     `json:"max_temp_c" validate:"omitempty,gt=0,lte=400"`
	Active     *bool    `json:"active"`
}

// BatchInput plans a curing run. The batch ends DurationMin after StartsAt.
type BatchInput struct {
	OvenID       uuid.UUID   `json:"oven_id" validate:"required"`
	ProjectIDs   []uuid.UUID `json:"project_ids" validate:"required,min=1"`
	StartsAt     time.Time   `json:"starts_at" validate:"required"`
	DurationMin  int         `json:"duration_min" validate:"gt=0,lte=1440"`
	TemperatureC int         `json:"temperature_c" validate:"gt=0"`
	Notes        *string     `json:"notes"`
}

// BatchFilter narrows batch listings. Day selects batches overlapping that
// calendar day in UTC.
type BatchFilter struct {
	OvenID *uuid.UUID
	Day    *time.Time
	Status *enums.BatchStatus
}

// Utilization summarises how busy an oven was over a window.
type Utilization struct {
	OvenID        uuid.UUID `json:"oven_id"`
	Name          string    `json:"name"`
	Batches       int       `json:"batches"`
	BookedMinutes int       `json:"booked_minutes"`
	WindowMinutes int       `json:"window_minutes"`
	TimePct       float64   `json:"time_pct"`
	AvgLoadPct    float64   `json:"avg_load_pct"`
}
