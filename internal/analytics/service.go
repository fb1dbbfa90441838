package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thermolaq/atelier-backend/internal/analytics/types"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/redis"
)

// CacheTTL keeps a computed dashboard around long enough to absorb page
// reloads without hiding a fresh payment for long.
const CacheTTL = time.Minute

// Service provides the dashboard KPIs of a workshop.
type Service interface {
	Dashboard(ctx context.Context, req types.DashboardRequest) (*types.Dashboard, error)
}

type service struct {
	repo  Repository
	cache redis.Cache
	logg  *logger.Logger
}

// NewService builds an analytics service over the primary database. cache
// may be nil.
func NewService(repo Repository, cache redis.Cache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo, cache: cache, logg: logg}, nil
}

func (s *service) Dashboard(ctx context.Context, req types.DashboardRequest) (*types.Dashboard, error) {
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	now := req.Now.UTC()

	var key string
	if s.cache != nil {
		key = s.cache.CacheKey("dashboard", req.TenantID.String(), now.Format("2006-01-02"))
		if cached, ok := s.fromCache(ctx, key); ok {
			return cached, nil
		}
	}

	yearStart := startOfYear(now)
	invoices, err := s.repo.Invoices(ctx, req.TenantID, yearStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load invoice facts")
	}
	quotes, err := s.repo.Quotes(ctx, req.TenantID, yearStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote facts")
	}
	projects, err := s.repo.ProjectsByStatus(ctx, req.TenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count projects")
	}
	lowStock, err := s.repo.LowStockCount(ctx, req.TenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count low stock")
	}
	unread, err := s.repo.UnreadAlerts(ctx, req.TenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count alerts")
	}

	out := &types.Dashboard{
		ProjectsByStatus: make(map[enums.ProjectStatus]int, len(projects)),
		LowStockPowders:  lowStock,
		UnreadAlerts:     unread,
		GeneratedAt:      now,
	}
	applyInvoices(out, invoices, now)
	applyQuotes(out, quotes)
	for _, p := range projects {
		out.ProjectsByStatus[p.Status] = p.Count
		if !p.Status.Terminal() {
			out.ActiveProjects += p.Count
		}
	}

	if key != "" {
		s.toCache(ctx, key, out)
	}
	return out, nil
}

// applyInvoices computes revenue from settled invoices and the outstanding
// balance of everything still expected.
func applyInvoices(out *types.Dashboard, rows []InvoiceFacts, now time.Time) {
	yearStart := startOfYear(now)
	current := monthKey(now)
	months := make(map[string]decimal.Decimal, 12)

	var month, year, outstanding decimal.Decimal
	for _, row := range rows {
		if row.Kind != enums.InvoiceKindInvoice {
			continue
		}
		if row.Status.Outstanding() {
			outstanding = outstanding.Add(decimal.NewFromFloat(row.TotalTTC - row.AmountPaid))
			if row.Status == enums.InvoiceStatusOverdue {
				out.OverdueInvoices++
			}
		}
		if row.Status != enums.InvoiceStatusPaid {
			continue
		}
		at := RevenueTimestamp(row.PaidAt, row.IssuedAt, row.CreatedAt)
		if at.Before(yearStart) || at.After(now) {
			continue
		}
		ht := decimal.NewFromFloat(row.TotalHT)
		year = year.Add(ht)
		key := monthKey(at)
		months[key] = months[key].Add(ht)
		if key == current {
			month = month.Add(ht)
		}
	}

	out.RevenueMonthHT = money(month)
	out.RevenueYearHT = money(year)
	out.OutstandingTTC = money(outstanding)
	for m := yearStart; !m.After(now); m = m.AddDate(0, 1, 0) {
		key := monthKey(m)
		out.MonthlyRevenue = append(out.MonthlyRevenue, types.TimeSeriesPoint{Month: key, Value: money(months[key])})
	}
}

// applyQuotes reports how many decided quotes were won and the average
// margin of those won.
func applyQuotes(out *types.Dashboard, rows []QuoteFacts) {
	var margin decimal.Decimal
	for _, q := range rows {
		out.QuotesSent++
		if q.Status == enums.QuoteStatusAccepted || q.Status == enums.QuoteStatusConverted {
			out.QuotesWon++
			margin = margin.Add(decimal.NewFromFloat(q.MarginPct))
		}
	}
	if out.QuotesSent > 0 {
		rate := decimal.NewFromInt(out.QuotesWon).Div(decimal.NewFromInt(out.QuotesSent)).Mul(decimal.NewFromInt(100))
		out.QuoteConversionRate = money(rate)
	}
	if out.QuotesWon > 0 {
		out.AverageMarginPct = money(margin.Div(decimal.NewFromInt(out.QuotesWon)))
	}
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func (s *service) fromCache(ctx context.Context, key string) (*types.Dashboard, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) && s.logg != nil {
			s.logg.Warn(ctx, "analytics.cache_read_failed")
		}
		return nil, false
	}
	var out types.Dashboard
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false
	}
	return &out, true
}

func (s *service) toCache(ctx context.Context, key string, d *types.Dashboard) {
	raw, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, CacheTTL); err != nil && s.logg != nil {
		s.logg.Error(ctx, "analytics.cache_write_failed", err)
	}
}
