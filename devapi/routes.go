package devapi

import (
	"net/http"
	"time"

	"github.com/jrsteele09/acservice-dashboard/users"
	"github.com/rs/zerolog/log"
)

const (
	RouteAuthLogin     = BasePath + "/auth/login"
	RouteAuthRegister  = BasePath + "/auth/register"
	RouteAuthRefresh   = BasePath + "/auth/refresh"
	RouteAuthLogout    = BasePath + "/auth/logout"
	RouteAuthMe        = BasePath + "/auth/me"
	RouteStats         = BasePath + "/dashboard/stats"
	RouteRevenue       = BasePath + "/dashboard/revenue"
	RouteServicesChart = BasePath + "/dashboard/services-chart"
	RouteCustomers     = BasePath + "/customers"
	RouteCustomer      = BasePath + "/customers/{id}"
	RouteTechnicians   = BasePath + "/technicians"
	RouteTechnician    = BasePath + "/technicians/{id}"
	RouteServices      = BasePath + "/services"
	RouteSchedules     = BasePath + "/schedules"
	RouteInvoices      = BasePath + "/invoices"
	RouteInvoice       = BasePath + "/invoices/{id}"
)

var (
	staffRoles = []users.RoleType{users.RoleAdmin, users.RoleTechnician}
	adminOnly  = []users.RoleType{users.RoleAdmin}
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("POST "+RouteAuthLogin, chain(s.LoginHandler(), s.logRequest))
	s.RegisterRouteFunc("POST "+RouteAuthRegister, chain(s.RegisterHandler(), s.logRequest))
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, chain(s.RefreshHandler(), s.logRequest))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, chain(s.LogoutHandler(), s.logRequest))
	s.RegisterRouteFunc("GET "+RouteAuthMe, chain(s.MeHandler(), s.logRequest, s.RequireAuth()))

	s.RegisterRouteFunc("GET "+RouteStats, chain(s.StatsHandler(), s.logRequest, s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteRevenue, chain(s.RevenueHandler(), s.logRequest, s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteServicesChart, chain(s.ServicesChartHandler(), s.logRequest, s.RequireAuth()))

	s.RegisterRouteFunc("GET "+RouteCustomers, chain(s.ListCustomersHandler(), s.logRequest, s.RequireAuth(staffRoles...)))
	s.RegisterRouteFunc("POST "+RouteCustomers, chain(s.CreateCustomerHandler(), s.logRequest, s.RequireAuth(adminOnly...)))
	s.RegisterRouteFunc("GET "+RouteCustomer, chain(s.GetCustomerHandler(), s.logRequest, s.RequireAuth(staffRoles...)))
	s.RegisterRouteFunc("PUT "+RouteCustomer, chain(s.UpdateCustomerHandler(), s.logRequest, s.RequireAuth(adminOnly...)))
	s.RegisterRouteFunc("DELETE "+RouteCustomer, chain(s.DeleteCustomerHandler(), s.logRequest, s.RequireAuth(adminOnly...)))

	s.RegisterRouteFunc("GET "+RouteTechnicians, chain(s.ListTechniciansHandler(), s.logRequest, s.RequireAuth(adminOnly...)))
	s.RegisterRouteFunc("GET "+RouteTechnician, chain(s.GetTechnicianHandler(), s.logRequest, s.RequireAuth(adminOnly...)))
	s.RegisterRouteFunc("GET "+RouteServices, chain(s.ListServicesHandler(), s.logRequest, s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteSchedules, chain(s.ListSchedulesHandler(), s.logRequest, s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteInvoices, chain(s.ListInvoicesHandler(), s.logRequest, s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteInvoice, chain(s.GetInvoiceHandler(), s.logRequest, s.RequireAuth()))

	s.RegisterRouteFunc("/", chain(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	}, s.logRequest))
}

func chain(h http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("devapi request")
	}
}
