package exports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/pkg/db/models"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

// MaxPeriod bounds a single export; a fiscal year plus a grace quarter.
const MaxPeriod = 466 * 24 * time.Hour

// Period is the half-open [From, To) range of issue dates to export.
type Period struct {
	From time.Time
	To   time.Time
}

// ParsePeriod reads YYYY-MM-DD bounds; both are inclusive dates, so To is
// moved to the following midnight. Missing bounds default to the current
// calendar year.
func ParsePeriod(from, to string, now time.Time) (Period, error) {
	p := Period{
		From: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	if from = strings.TrimSpace(from); from != "" {
		t, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "from must be YYYY-MM-DD")
		}
		p.From = t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "to must be YYYY-MM-DD")
		}
		p.To = t.AddDate(0, 0, 1)
	}
	if !p.To.After(p.From) {
		return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
	}
	if p.To.Sub(p.From) > MaxPeriod {
		return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "export period too long").
			WithDetails(map[string]any{"max_days": int(MaxPeriod.Hours() / 24)})
	}
	return p, nil
}

// File is a generated export ready to be streamed.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeFEC  = "text/plain; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type tenantLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

type Service interface {
	InvoicesCSV(ctx context.Context, tenantID uuid.UUID, period Period) (*File, error)
	FEC(ctx context.Context, tenantID uuid.UUID, period Period) (*File, error)
	InvoicesXLSX(ctx context.Context, tenantID uuid.UUID, period Period) (*File, error)
}

type service struct {
	repo    Repository
	tenants tenantLookup
	logg    *logger.Logger
}

func NewService(repo Repository, tenants tenantLookup, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("exports repository required")
	}
	if tenants == nil {
		return nil, fmt.Errorf("tenant lookup required")
	}
	return &service{repo: repo, tenants: tenants, logg: logg}, nil
}

func (s *service) rows(ctx context.Context, tenantID uuid.UUID, period Period, format string) ([]Row, error) {
	rows, err := s.repo.Issued(ctx, tenantID, period.From, period.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load invoices for export")
	}
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"tenant_id": tenantID.String(),
			"format":    format,
			"rows":      len(rows),
			"from":      period.From.Format(time.DateOnly),
		})
		s.logg.Info(ctx, "exports.generated")
	}
	return rows, nil
}

func (s *service) InvoicesCSV(ctx context.Context, tenantID uuid.UUID, period Period) (*File, error) {
	rows, err := s.rows(ctx, tenantID, period, "csv")
	if err != nil {
		return nil, err
	}
	body, err := writeCSV(rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv")
	}
	return &File{Name: fileName("factures", period, "csv"), ContentType: ContentTypeCSV, Body: body}, nil
}

func (s *service) FEC(ctx context.Context, tenantID uuid.UUID, period Period) (*File, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "tenant not found")
	}
	rows, err := s.rows(ctx, tenantID, period, "fec")
	if err != nil {
		return nil, err
	}
	body := writeFEC(rows)
	closing := period.To.AddDate(0, 0, -1)
	return &File{
		Name:        siren(tenant) + "FEC" + closing.Format("20060102") + ".txt",
		ContentType: ContentTypeFEC,
		Body:        body,
	}, nil
}

func (s *service) InvoicesXLSX(ctx context.Context, tenantID uuid.UUID, period Period) (*File, error) {
	rows, err := s.rows(ctx, tenantID, period, "xlsx")
	if err != nil {
		return nil, err
	}
	body, err := writeXLSX(rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write xlsx")
	}
	return &File{Name: fileName("factures", period, "xlsx"), ContentType: ContentTypeXLSX, Body: body}, nil
}

func fileName(prefix string, period Period, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", prefix,
		period.From.Format("20060102"), period.To.AddDate(0, 0, -1).Format("20060102"), ext)
}

// siren is the first nine digits of the SIRET, as required in FEC file names.
func siren(t *models.Tenant) string {
	if t == nil || t.SIRET == nil {
		return "000000000"
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, *t.SIRET)
	if len(digits) < 9 {
		return "000000000"
	}
	return digits[:9]
}
