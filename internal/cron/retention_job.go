package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/pkg/logger"
)

const (
	alertRetentionDays        = 90
	webhookEventRetentionDays = 60
)

// PurgeFunc deletes rows older than cutoff and reports how many went.
type PurgeFunc func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)

// RetentionJobParams describes one table trimmed on a rolling window.
type RetentionJobParams struct {
	Name   string
	Logger *logger.Logger
	DB     txRunner
	Purge  PurgeFunc
	// Days <= 0 falls back to DefaultDays.
	Days        int
	DefaultDays int
}

type retentionJob struct {
	name  string
	logg  *logger.Logger
	db    txRunner
	purge PurgeFunc
	days  int
	now   func() time.Time
}

func NewRetentionJob(params RetentionJobParams) (Job, error) {
	switch {
	case params.Name == "":
		return nil, errors.New("retention job name required")
	case params.Logger == nil:
		return nil, fmt.Errorf("%s: logger required", params.Name)
	case params.DB == nil:
		return nil, fmt.Errorf("%s: db runner required", params.Name)
	case params.Purge == nil:
		return nil, fmt.Errorf("%s: purge func required", params.Name)
	}
	days := params.Days
	if days <= 0 {
		days = params.DefaultDays
	}
	if days <= 0 {
		return nil, fmt.Errorf("%s: retention window required", params.Name)
	}
	return &retentionJob{
		name:  params.Name,
		logg:  params.Logger,
		db:    params.DB,
		purge: params.Purge,
		days:  days,
		now:   time.Now,
	}, nil
}

// NewAlertRetentionJob drops alerts read more than days ago. Unread alerts stay.
func NewAlertRetentionJob(logg *logger.Logger, db txRunner, purge PurgeFunc, days int) (Job, error) {
	return NewRetentionJob(RetentionJobParams{
		Name: JobAlertRetention, Logger: logg, DB: db, Purge: purge,
		Days: days, DefaultDays: alertRetentionDays,
	})
}

// NewWebhookEventRetentionJob forgets processed Stripe event ids.
func NewWebhookEventRetentionJob(logg *logger.Logger, db txRunner, purge PurgeFunc, days int) (Job, error) {
	return NewRetentionJob(RetentionJobParams{
		Name: JobWebhookEventRetention, Logger: logg, DB: db, Purge: purge,
		Days: days, DefaultDays: webhookEventRetentionDays,
	})
}

func (j *retentionJob) Name() string { return j.name }

func (j *retentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.days)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) (err error) {
		deleted, err = j.purge(ctx, tx, cutoff)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"job":            j.name,
		"cutoff":         cutoff,
		"retention_days": j.days,
		"rows_deleted":   deleted,
	}), "cron.retention_done")
	return nil
}
