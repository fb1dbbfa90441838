// Package numbering hands out gapless document numbers per tenant and year.
package numbering

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thermolaq/atelier-backend/pkg/db/models"
)

// Document kinds sharing the counter table.
const (
	KindQuote      = "quote"
	KindInvoice    = "invoice"
	KindCreditNote = "credit_note"
	KindProject    = "project"
)

// Next increments the counter for (tenant, kind, year) and formats the
// result as PREFIX-YYYY-NNNN. It must run inside the transaction that
// inserts the numbered document so a rollback also releases the number.
func Next(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, kind, prefix string, year int) (string, error) {
	if tx == nil {
		return "", fmt.Errorf("numbering requires a transaction")
	}
	row := models.DocumentCounter{TenantID: tenantID, Kind: kind, Year: year, LastValue: 1}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "kind"}, {Name: "year"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_value": gorm.Expr("document_counters.last_value + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return "", fmt.Errorf("bump %s counter: %w", kind, err)
	}

	var current models.DocumentCounter
	if err := tx.WithContext(ctx).
		Where("tenant_id = ? AND kind = ? AND year = ?", tenantID, kind, year).
		First(&current).Error; err != nil {
		return "", fmt.Errorf("read %s counter: %w", kind, err)
	}
	return Format(prefix, year, current.LastValue), nil
}

// Format renders a document number. Sequences past 9999 keep growing in width.
func Format(prefix string, year, seq int) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return fmt.Sprintf("%d-%04d", year, seq)
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
