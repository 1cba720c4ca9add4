package server

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
	"github.com/jrsteele09/acservice-dashboard/guard"
	"github.com/jrsteele09/acservice-dashboard/resources"
	"github.com/jrsteele09/acservice-dashboard/users"
)

// CustomersData is the customer list page model; admins also get the
// create form
type CustomersData struct {
	ListData[resources.Customer]
	CanEdit   bool
	Form      resources.CustomerInput
	FormError string
}

// CustomerData is the customer detail page model
type CustomerData struct {
	Customer  *resources.Customer
	CanEdit   bool
	Form      resources.CustomerInput
	FormError string
}

func canEditCustomers(r *http.Request) bool {
	return guard.UserFromContext(r.Context()).HasRole(users.RoleAdmin)
}

func customerInputFromForm(r *http.Request) resources.CustomerInput {
	return resources.CustomerInput{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Email:   strings.TrimSpace(r.PostFormValue("email")),
		Phone:   strings.TrimSpace(r.PostFormValue("phone")),
		Address: strings.TrimSpace(r.PostFormValue("address")),
	}
}

// isFormRejection reports whether the backend refused the submitted values
// rather than failing
func isFormRejection(err error) bool {
	switch apiclient.StatusCode(err) {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// CustomersHandler lists customers (GET /customers)
func (s *Server) CustomersHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("customers.html")
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := loadList(r, s.api.Customers)
		s.renderPage(w, r, tmpl, RouteCustomers, CustomersData{ListData: list, CanEdit: canEditCustomers(r)}, err)
	}
}

// formFailure classifies a backend error from a form submission. A refused
// value comes back as the backend's message and status; anything else goes
// through handleBackendError. handled reports that a redirect was written.
func (s *Server) formFailure(w http.ResponseWriter, r *http.Request, err error) (msg string, status int, handled bool) {
	if isFormRejection(err) {
		return apiclient.Message(err), apiclient.StatusCode(err), false
	}
	msg, handled = s.handleBackendError(w, r, err)
	return msg, http.StatusBadGateway, handled
}

// CreateCustomerHandler adds a customer and returns to the list (POST /customers)
func (s *Server) CreateCustomerHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("customers.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		in := customerInputFromForm(r)

		if err := in.Validate(); err != nil {
			s.renderCustomerForm(w, r, tmpl, in, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if _, err := s.api.CreateCustomer(r.Context(), in); err != nil {
			msg, status, handled := s.formFailure(w, r, err)
			if !handled {
				s.renderCustomerForm(w, r, tmpl, in, msg, status)
			}
			return
		}
		redirectWithNotice(w, r, RouteCustomers, "customer_created")
	}
}

// renderCustomerForm re-renders the list with the rejected create form
func (s *Server) renderCustomerForm(w http.ResponseWriter, r *http.Request, tmpl *template.Template, in resources.CustomerInput, formError string, status int) {
	list, err := loadList(r, s.api.Customers)
	if err != nil {
		if _, handled := s.handleBackendError(w, r, err); handled {
			return
		}
	}
	page := s.newPageData(r, s.title(RouteCustomers), CustomersData{
		ListData:  list,
		CanEdit:   true,
		Form:      in,
		FormError: formError,
	})
	render(w, tmpl, status, page)
}

// CustomerHandler shows one customer (GET /customers/{id})
func (s *Server) CustomerHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("customer.html")
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.api.Customer(r.Context(), r.PathValue("id"))
		data := CustomerData{Customer: c, CanEdit: canEditCustomers(r)}
		if c != nil {
			data.Form = resources.CustomerInput{Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
		}
		s.renderPage(w, r, tmpl, RouteCustomer, data, err)
	}
}

// UpdateCustomerHandler saves an edited customer (POST /customers/{id})
func (s *Server) UpdateCustomerHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("customer.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		id := r.PathValue("id")
		in := customerInputFromForm(r)

		if err := in.Validate(); err != nil {
			s.renderCustomerEdit(w, r, tmpl, id, in, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if _, err := s.api.UpdateCustomer(r.Context(), id, in); err != nil {
			msg, status, handled := s.formFailure(w, r, err)
			if !handled {
				s.renderCustomerEdit(w, r, tmpl, id, in, msg, status)
			}
			return
		}
		redirectWithNotice(w, r, "/customers/"+url.PathEscape(id), "customer_updated")
	}
}

// renderCustomerEdit re-renders the detail page with the rejected edit form
func (s *Server) renderCustomerEdit(w http.ResponseWriter, r *http.Request, tmpl *template.Template, id string, in resources.CustomerInput, formError string, status int) {
	c, err := s.api.Customer(r.Context(), id)
	if err != nil {
		if _, handled := s.handleBackendError(w, r, err); handled {
			return
		}
		c = &resources.Customer{ID: id}
	}
	page := s.newPageData(r, s.title(RouteCustomer), CustomerData{
		Customer:  c,
		CanEdit:   true,
		Form:      in,
		FormError: formError,
	})
	render(w, tmpl, status, page)
}

// DeleteCustomerHandler removes a customer and returns to the list
// (POST /customers/{id}/delete)
func (s *Server) DeleteCustomerHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("customers.html")
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.api.DeleteCustomer(r.Context(), r.PathValue("id"))
		if err == nil {
			redirectWithNotice(w, r, RouteCustomers, "customer_deleted")
			return
		}
		msg, handled := s.handleBackendError(w, r, err)
		if handled {
			return
		}

		list, listErr := loadList(r, s.api.Customers)
		if listErr != nil {
			if _, handled := s.handleBackendError(w, r, listErr); handled {
				return
			}
		}
		page := s.newPageData(r, s.title(RouteCustomers), CustomersData{ListData: list, CanEdit: true})
		page.Error = msg
		render(w, tmpl, http.StatusBadGateway, page)
	}
}
