package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/thermolaq/atelier-backend/pkg/logger"
)

type quoteExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type QuoteExpiryJobParams struct {
	Logger *logger.Logger
	Quotes quoteExpirer
	Now    func() time.Time
}

func NewQuoteExpiryJob(params QuoteExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Quotes == nil {
		return nil, fmt.Errorf("quote service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &quoteExpiryJob{logg: params.Logger, quotes: params.Quotes, now: now}, nil
}

type quoteExpiryJob struct {
	logg   *logger.Logger
	quotes quoteExpirer
	now    func() time.Time
}

func (j *quoteExpiryJob) Name() string { return JobQuoteExpiry }

func (j *quoteExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	expired, err := j.quotes.ExpireOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("expire quotes: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       now,
		"rows_updated": expired,
	})
	j.logg.Info(logCtx, "quote expiry complete")
	return nil
}
