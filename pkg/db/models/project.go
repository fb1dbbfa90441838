package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/thermolaq/atelier-backend/pkg/db/types"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

// Project is a job on the shop floor, usually born from an accepted quote.
type Project struct {
	ID        uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ClientID  uuid.UUID           `gorm:"column:client_id;type:uuid;not null;index" json:"client_id"`
	QuoteID   *uuid.UUID          `gorm:"column:quote_id;type:uuid" json:"quote_id,omitempty"`
	Reference string              `gorm:"column:reference;not null" json:"reference"`
	Name      string              `gorm:"column:name;not null" json:"name"`
	Status    enums.ProjectStatus `gorm:"column:status;type:text;not null;default:'received'" json:"status"`
	SurfaceM2 float64             `gorm:"column:surface_m2;not null;default:0" json:"surface_m2"`
	RALCode   *string             `gorm:"column:ral_code" json:"ral_code,omitempty"`
	DueDate   *time.Time          `gorm:"column:due_date" json:"due_date,omitempty"`
	Notes     *string             `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// Photo references an image kept by the storage provider.
type Photo struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID uuid.UUID        `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	URL       string           `gorm:"column:url;not null" json:"url"`
	Caption   *string          `gorm:"column:caption" json:"caption,omitempty"`
	Stage     enums.PhotoStage `gorm:"column:stage;type:text;not null;default:'before'" json:"stage"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (p *Photo) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// Oven is a curing oven and its usable load surface.
type Oven struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	CapacityM2 float64   `gorm:"column:capacity_m2;not null" json:"capacity_m2"`
	MaxTempC   int       `gorm:"column:max_temp_c;not null;default:220" json:"max_temp_c"`
	Active     bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (o *Oven) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// CuringBatch is a planned or executed oven run grouping several projects.
type CuringBatch struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	OvenID       uuid.UUID         `gorm:"column:oven_id;type:uuid;not null;index" json:"oven_id"`
	ProjectIDs   dbtypes.UUIDArray `gorm:"column:project_ids;type:uuid[];not null" json:"project_ids"`
	StartsAt     time.Time         `gorm:"column:starts_at;not null" json:"starts_at"`
	EndsAt       time.Time         `gorm:"column:ends_at;not null" json:"ends_at"`
	TemperatureC int               `gorm:"column:temperature_c;not null" json:"temperature_c"`
	DurationMin  int               `gorm:"column:duration_min;not null" json:"duration_min"`
	LoadM2       float64           `gorm:"column:load_m2;not null" json:"load_m2"`
	Status       enums.BatchStatus `gorm:"column:status;type:text;not null;default:'planned'" json:"status"`
	Notes        *string           `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (b *CuringBatch) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// QualityCheck is a completed or pending inspection of a project.
type QualityCheck struct {
	ID               uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID         uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID        uuid.UUID            `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	Items            types.ChecklistItems `gorm:"column:items;type:jsonb;not null" json:"items"`
	ThicknessMicrons []float64            `gorm:"column:thickness_microns;type:jsonb;serializer:json" json:"thickness_microns"`
	MinThickness     float64              `gorm:"column:min_thickness;not null;default:60" json:"min_thickness"`
	MaxThickness     float64              `gorm:"column:max_thickness;not null;default:120" json:"max_thickness"`
	Status           enums.QualityStatus  `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	Inspector        *string              `gorm:"column:inspector" json:"inspector,omitempty"`
	CheckedAt        *time.Time           `gorm:"column:checked_at" json:"checked_at,omitempty"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (q *QualityCheck) BeforeCreate(*gorm.DB) error {
	ensureID(&q.ID)
	return nil
}
