package controllers

import (
	"net/http"
	"time"

	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/internal/analytics"
	"github.com/thermolaq/atelier-backend/internal/analytics/types"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

func Dashboard(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "analytics service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		dashboard, err := svc.Dashboard(r.Context(), types.DashboardRequest{TenantID: tenantID, Now: time.Now()})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}

type revenueResponse struct {
	MonthHT float64                 `json:"month_ht"`
	YearHT  float64                 `json:"year_ht"`
	Monthly []types.TimeSeriesPoint `json:"monthly"`
}

// Revenue is the chart slice of the dashboard: paid revenue HT per month of
// the current year.
func Revenue(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "analytics service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		dashboard, err := svc.Dashboard(r.Context(), types.DashboardRequest{TenantID: tenantID, Now: time.Now()})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, revenueResponse{
			MonthHT: dashboard.RevenueMonthHT,
			YearHT:  dashboard.RevenueYearHT,
			Monthly: dashboard.MonthlyRevenue,
		})
	}
}
