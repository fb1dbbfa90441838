package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/alerts"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

type lowStockLister interface {
	ListLowStockAll(ctx context.Context) ([]models.Powder, error)
}

type alertEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, input alerts.NewAlert) (bool, error)
}

type LowStockJobParams struct {
	Logger  *logger.Logger
	Powders lowStockLister
	Alerts  alertEmitter
	Now     func() time.Time
}

// NewLowStockJob raises one alert per powder under its threshold per day;
// the dedupe key carries the date so a rerun the same day is silent.
func NewLowStockJob(params LowStockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Powders == nil {
		return nil, fmt.Errorf("powder repository required")
	}
	if params.Alerts == nil {
		return nil, fmt.Errorf("alert service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &lowStockJob{logg: params.Logger, powders: params.Powders, alerts: params.Alerts, now: now}, nil
}

type lowStockJob struct {
	logg    *logger.Logger
	powders lowStockLister
	alerts  alertEmitter
	now     func() time.Time
}

func (j *lowStockJob) Name() string { return JobLowStock }

func (j *lowStockJob) Run(ctx context.Context) error {
	rows, err := j.powders.ListLowStockAll(ctx)
	if err != nil {
		return fmt.Errorf("list low stock powders: %w", err)
	}
	day := j.now().UTC().Format("2006-01-02")
	var errs error
	created := 0
	for _, p := range rows {
		ok, err := j.alerts.Emit(ctx, nil, alerts.NewAlert{
			TenantID:  p.TenantID,
			Type:      enums.AlertTypeLowStock,
			Title:     fmt.Sprintf("Stock bas : %s", powderLabel(p)),
			Message:   fmt.Sprintf("%.2f kg restants (seuil %.2f kg)", p.StockKg, p.MinStockKg),
			Link:      "/powders/" + p.ID.String(),
			DedupeKey: fmt.Sprintf("low_stock:%s:%s", p.ID, day),
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("powder %s: %w", p.ID, err))
			continue
		}
		if ok {
			created++
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates":     len(rows),
		"alerts_created": created,
	})
	j.logg.Info(logCtx, "low stock scan complete")
	return errs
}

func powderLabel(p models.Powder) string {
	label := p.Reference
	if p.RALCode != nil && strings.TrimSpace(*p.RALCode) != "" {
		label += " (RAL " + *p.RALCode + ")"
	}
	return label
}
