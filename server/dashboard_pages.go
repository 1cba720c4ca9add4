package server

import (
	"net/http"

	"github.com/jrsteele09/acservice-dashboard/resources"
)

// DashboardData is the overview page model
type DashboardData struct {
	Stats    *resources.DashboardStats
	Period   resources.RevenuePeriod
	Periods  []resources.RevenuePeriod
	Revenue  []resources.RevenuePoint
	Services []resources.ServiceShare
}

// DashboardHandler shows the stat tiles and both charts (GET /dashboard)
func (s *Server) DashboardHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("dashboard.html")
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		data := DashboardData{
			Period:  resources.ParsePeriod(r.URL.Query().Get("period")),
			Periods: []resources.RevenuePeriod{resources.PeriodWeek, resources.PeriodMonth, resources.PeriodYear},
		}

		var err error
		data.Stats, err = s.api.DashboardStats(ctx)
		if err == nil {
			data.Revenue, err = s.api.RevenueChart(ctx, data.Period)
		}
		if err == nil {
			data.Services, err = s.api.ServicesChart(ctx)
		}
		s.renderPage(w, r, tmpl, RouteDashboard, data, err)
	}
}
