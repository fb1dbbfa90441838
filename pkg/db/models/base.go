package models

import "github.com/google/uuid"

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model. Tests and the sqlite dev mode migrate from it.
func All() []any {
	return []any{
		&Tenant{},
		&User{},
		&ShopSettings{},
		&DocumentCounter{},
		&Client{},
		&Powder{},
		&StockMovement{},
		&Quote{},
		&Invoice{},
		&Payment{},
		&Project{},
		&Photo{},
		&Oven{},
		&CuringBatch{},
		&QualityCheck{},
		&Alert{},
		&AuditLog{},
		&WebhookEvent{},
	}
}
