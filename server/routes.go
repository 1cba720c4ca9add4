package server

import (
	"net/http"

	"github.com/jrsteele09/acservice-dashboard/guard"
	"github.com/jrsteele09/acservice-dashboard/users"
	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	anonymous := guard.RedirectAuthenticated(s.sessions)
	adminOnly := guard.Require(s.sessions, users.RoleAdmin)

	// Auth pages
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare(anonymous)...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterPageHandler(), s.HTMLMiddleWare(anonymous)...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterSubmissionHandler(), s.HTMLMiddleWare(anonymous)...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Guarded pages
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.guard(RouteDashboard))...))
	s.RegisterRouteHandler("GET "+RouteCustomers, ChainMiddleware(s.CustomersHandler(), s.HTMLMiddleWare(s.guard(RouteCustomers))...))
	s.RegisterRouteHandler("POST "+RouteCustomers, ChainMiddleware(s.CreateCustomerHandler(), s.HTMLMiddleWare(adminOnly)...))
	s.RegisterRouteHandler("GET "+RouteCustomer, ChainMiddleware(s.CustomerHandler(), s.HTMLMiddleWare(s.guard(RouteCustomer))...))
	s.RegisterRouteHandler("POST "+RouteCustomer, ChainMiddleware(s.UpdateCustomerHandler(), s.HTMLMiddleWare(adminOnly)...))
	s.RegisterRouteHandler("POST "+RouteCustomerDelete, ChainMiddleware(s.DeleteCustomerHandler(), s.HTMLMiddleWare(adminOnly)...))
	s.RegisterRouteHandler("GET "+RouteTechnicians, ChainMiddleware(s.TechniciansHandler(), s.HTMLMiddleWare(s.guard(RouteTechnicians))...))
	s.RegisterRouteHandler("GET "+RouteTechnician, ChainMiddleware(s.TechnicianHandler(), s.HTMLMiddleWare(s.guard(RouteTechnician))...))
	s.RegisterRouteHandler("GET "+RouteServices, ChainMiddleware(s.ServicesHandler(), s.HTMLMiddleWare(s.guard(RouteServices))...))
	s.RegisterRouteHandler("GET "+RouteSchedules, ChainMiddleware(s.SchedulesHandler(), s.HTMLMiddleWare(s.guard(RouteSchedules))...))
	s.RegisterRouteHandler("GET "+RouteInvoices, ChainMiddleware(s.InvoicesHandler(), s.HTMLMiddleWare(s.guard(RouteInvoices))...))
	s.RegisterRouteHandler("GET "+RouteInvoice, ChainMiddleware(s.InvoiceHandler(), s.HTMLMiddleWare(s.guard(RouteInvoice))...))

	// Public pages
	s.RegisterRouteHandler("GET "+RouteUnauthorized, ChainMiddleware(s.UnauthorizedHandler(), s.HTMLMiddleWare(s.guard(RouteUnauthorized))...))
	s.RegisterRouteHandler("GET "+RouteNotFound, ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare(s.guard(RouteNotFound))...))

	s.RegisterRouteHandler("GET "+RouteStatic, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))

	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.redirectHandler("/"), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("/", ChainMiddleware(s.unknownRouteHandler(), s.HTMLMiddleWare()...))
}

// guard is the route table's policy for pattern
func (s *Server) guard(pattern string) func(http.HandlerFunc) http.HandlerFunc {
	return s.routeTable.Guard(pattern, s.sessions)
}

func (s *Server) redirectHandler(from string) http.HandlerFunc {
	to, ok := s.routeTable.Redirects[from]
	if !ok {
		panic("no redirect declared for " + from)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		guard.Redirect(w, r, to)
	}
}

// unknownRouteHandler sends any unmatched location to the not-found page
func (s *Server) unknownRouteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		guard.Redirect(w, r, s.routeTable.NotFound)
	}
}

func logError(method, path string, err error) {
	log.Warn().Err(err).Msgf("[%s] %s%s%s", colouredMethod(method), Red, path, ResetColor)
}
