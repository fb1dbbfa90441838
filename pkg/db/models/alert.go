package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// Alert stores in-app notifications scoped to a workshop.
type Alert struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	Type      enums.AlertType `gorm:"column:type;type:text;not null" json:"type"`
	Title     string          `gorm:"column:title;not null" json:"title"`
	Message   string          `gorm:"column:message;not null" json:"message"`
	Link      *string         `gorm:"column:link" json:"link,omitempty"`
	DedupeKey *string         `gorm:"column:dedupe_key;uniqueIndex" json:"-"`
	ReadAt    *time.Time      `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (a *Alert) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// AuditLog is an append-only trail of user and system mutations.
type AuditLog struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index:idx_audit_entity,priority:1" json:"tenant_id"`
	UserID    *uuid.UUID      `gorm:"column:user_id;type:uuid" json:"user_id,omitempty"`
	Action    string          `gorm:"column:action;not null" json:"action"`
	Entity    string          `gorm:"column:entity;not null;index:idx_audit_entity,priority:2" json:"entity"`
	EntityID  uuid.UUID       `gorm:"column:entity_id;type:uuid;not null;index:idx_audit_entity,priority:3" json:"entity_id"`
	Payload   json.RawMessage `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// WebhookEvent records every verified processor event and its outcome.
type WebhookEvent struct {
	ID         string                   `gorm:"column:id;primaryKey" json:"id"`
	Type       string                   `gorm:"column:type;not null" json:"type"`
	Status     enums.WebhookEventStatus `gorm:"column:status;type:text;not null" json:"status"`
	TenantID   *uuid.UUID               `gorm:"column:tenant_id;type:uuid" json:"tenant_id,omitempty"`
	Error      *string                  `gorm:"column:error" json:"error,omitempty"`
	Payload    json.RawMessage          `gorm:"column:payload;type:jsonb" json:"-"`
	ReceivedAt time.Time                `gorm:"column:received_at;autoCreateTime" json:"received_at"`
}
