package stripewebhook

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// EventRepository keeps the log of verified deliveries.
type EventRepository interface {
	Save(ctx context.Context, event *models.WebhookEvent) error
	FindByID(ctx context.Context, id string) (*models.WebhookEvent, error)
	DeleteBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type eventRepository struct {
	repo.Base
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{Base: repo.NewBase(db)}
}

// Save upserts on the event id; a manual resend overwrites the prior outcome.
func (r *eventRepository) Save(ctx context.Context, event *models.WebhookEvent) error {
	return r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "tenant_id", "error"}),
		}).
		Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := r.DB(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteBefore trims the delivery log; failed rows are kept for inspection.
func (r *eventRepository) DeleteBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := r.DB(ctx)
	if tx != nil {
		conn = tx.WithContext(ctx)
	}
	res := conn.
		Where("received_at < ? AND status <> ?", cutoff, enums.WebhookEventFailed).
		Delete(&models.WebhookEvent{})
	return res.RowsAffected, res.Error
}
