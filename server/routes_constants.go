package server

import "github.com/jrsteele09/acservice-dashboard/guard"

// Route path constants
// Every page the console serves is declared here; guarded pages must also be
// declared in the guard route table.
const (
	// Auth pages
	RouteLogin    = guard.LoginPath
	RouteRegister = guard.RegisterPath
	RouteLogout   = "/logout"

	// Pages
	RouteDashboard      = guard.LandingPath
	RouteCustomers      = "/customers"
	RouteCustomer       = "/customers/{id}"
	RouteCustomerDelete = "/customers/{id}/delete"
	RouteTechnicians    = "/technicians"
	RouteTechnician     = "/technicians/{id}"
	RouteServices       = "/services"
	RouteSchedules      = "/schedules"
	RouteInvoices       = "/invoices"
	RouteInvoice        = "/invoices/{id}"
	RouteUnauthorized   = guard.UnauthorizedPath
	RouteNotFound       = "/404"

	// Static assets
	RouteStatic = "/static/{file}"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
)
