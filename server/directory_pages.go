package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
	"github.com/jrsteele09/acservice-dashboard/resources"
)

// Pager drives the shared pagination controls
type Pager struct {
	Page       int
	TotalPages int
	Total      int
	Query      url.Values
}

func newPager(p apiclient.Pagination, q url.Values) Pager {
	return Pager{Page: p.Page, TotalPages: p.TotalPages, Total: p.Total, Query: q}
}

// ListData is the model of every paginated list page
type ListData[T any] struct {
	Options resources.ListOptions
	Page    apiclient.Page[T]
	Pager   Pager
}

func loadList[T any](r *http.Request, list func(context.Context, resources.ListOptions) (apiclient.Page[T], error)) (ListData[T], error) {
	opts := resources.ListOptionsFromQuery(r.URL.Query())
	page, err := list(r.Context(), opts)
	return ListData[T]{Options: opts, Page: page, Pager: newPager(page.Pagination, r.URL.Query())}, err
}

func listHandler[T any](s *Server, templateName, pattern string, list func(context.Context, resources.ListOptions) (apiclient.Page[T], error)) http.HandlerFunc {
	tmpl := mustParseTemplate(templateName)
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := loadList(r, list)
		s.renderPage(w, r, tmpl, pattern, data, err)
	}
}

// detailHandler renders one record under key in the page data
func detailHandler[T any](s *Server, templateName, pattern, key string, get func(context.Context, string) (*T, error)) http.HandlerFunc {
	tmpl := mustParseTemplate(templateName)
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := get(r.Context(), r.PathValue("id"))
		s.renderPage(w, r, tmpl, pattern, map[string]any{key: record}, err)
	}
}

func (s *Server) TechniciansHandler() http.HandlerFunc {
	return listHandler(s, "technicians.html", RouteTechnicians, s.api.Technicians)
}

func (s *Server) TechnicianHandler() http.HandlerFunc {
	return detailHandler(s, "technician.html", RouteTechnician, "Technician", s.api.Technician)
}

func (s *Server) ServicesHandler() http.HandlerFunc {
	return listHandler(s, "services.html", RouteServices, s.api.Services)
}

func (s *Server) SchedulesHandler() http.HandlerFunc {
	return listHandler(s, "schedules.html", RouteSchedules, s.api.Schedules)
}

func (s *Server) InvoicesHandler() http.HandlerFunc {
	return listHandler(s, "invoices.html", RouteInvoices, s.api.Invoices)
}

func (s *Server) InvoiceHandler() http.HandlerFunc {
	return detailHandler(s, "invoice.html", RouteInvoice, "Invoice", s.api.Invoice)
}
