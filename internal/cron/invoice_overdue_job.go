package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/thermolaq/atelier-backend/pkg/logger"
)

type overdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

type InvoiceOverdueJobParams struct {
	Logger   *logger.Logger
	Invoices overdueMarker
	Now      func() time.Time
}

// NewInvoiceOverdueJob flips sent invoices past their due date to overdue;
// the invoice service raises one alert per invoice.
func NewInvoiceOverdueJob(params InvoiceOverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Invoices == nil {
		return nil, fmt.Errorf("invoice service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &invoiceOverdueJob{logg: params.Logger, invoices: params.Invoices, now: now}, nil
}

type invoiceOverdueJob struct {
	logg     *logger.Logger
	invoices overdueMarker
	now      func() time.Time
}

func (j *invoiceOverdueJob) Name() string { return JobInvoiceOverdue }

func (j *invoiceOverdueJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	changed, err := j.invoices.MarkOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("mark overdue invoices (%d updated before failure): %w", changed, err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       now,
		"rows_updated":   changed,
	})
	j.logg.Info(logCtx, "invoice overdue sweep complete")
	return nil
}
