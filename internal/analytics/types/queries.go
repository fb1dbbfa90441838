package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// DashboardRequest scopes the KPIs to one workshop at a reference instant;
// "this month" and "this year" are computed from Now.
type DashboardRequest struct {
	TenantID uuid.UUID
	Now      time.Time
}

// TimeSeriesPoint describes a single month/value pair.
type TimeSeriesPoint struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// Dashboard is the home screen of a workshop.
type Dashboard struct {
	RevenueMonthHT      float64                     `json:"revenue_month_ht"`
	RevenueYearHT       float64                     `json:"revenue_year_ht"`
	OutstandingTTC      float64                     `json:"outstanding_ttc"`
	OverdueInvoices     int64                       `json:"overdue_invoices"`
	QuotesSent          int64                       `json:"quotes_sent"`
	QuotesWon           int64                       `json:"quotes_won"`
	QuoteConversionRate float64                     `json:"quote_conversion_rate"`
	AverageMarginPct    float64                     `json:"average_margin_pct"`
	ProjectsByStatus    map[enums.ProjectStatus]int `json:"projects_by_status"`
	ActiveProjects      int                         `json:"active_projects"`
	LowStockPowders     int64                       `json:"low_stock_powders"`
	UnreadAlerts        int64                       `json:"unread_alerts"`
	MonthlyRevenue      []TimeSeriesPoint           `json:"monthly_revenue"`
	GeneratedAt         time.Time                   `json:"generated_at"`
}
