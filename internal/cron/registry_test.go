package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	overdue := &stubJob{name: JobInvoiceOverdue}
	stock := &stubJob{name: JobLowStock}
	registry, err := NewRegistry(overdue, nil, stock)
	require.NoError(t, err)

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Same(t, overdue, jobs[0])
	assert.Same(t, stock, jobs[1])

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0], "internal slice leaked")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(&stubJob{name: JobLowStock}, &stubJob{name: JobLowStock})
	assert.Error(t, err)

	registry, err := NewRegistry()
	require.NoError(t, err)
	assert.Error(t, registry.Register(&stubJob{name: " "}))
}

func TestRegistryOnly(t *testing.T) {
	registry, err := NewRegistry(&stubJob{name: JobInvoiceOverdue}, &stubJob{name: JobQuoteExpiry}, &stubJob{name: JobAlertRetention})
	require.NoError(t, err)

	narrowed, err := registry.Only(JobAlertRetention, JobInvoiceOverdue)
	require.NoError(t, err)
	assert.Equal(t, []string{JobInvoiceOverdue, JobAlertRetention}, narrowed.Names())

	all, err := registry.Only()
	require.NoError(t, err)
	assert.Len(t, all.Jobs(), 3)

	_, err = registry.Only("vacuum")
	assert.ErrorContains(t, err, "unknown cron job")
}
