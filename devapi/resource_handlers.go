package devapi

import (
	"encoding/json"
	"net/http"

	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
	"github.com/jrsteele09/acservice-dashboard/resources"
)

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, s.data.stats(NowTimeFunc().UTC()), "")
	}
}

func (s *Server) RevenueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period := resources.ParsePeriod(r.URL.Query().Get("period"))
		writeData(w, http.StatusOK, s.data.revenue(period, NowTimeFunc().UTC()), "")
	}
}

func (s *Server) ServicesChartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, s.data.servicesChart(), "")
	}
}

func (s *Server) ListCustomersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := resources.ListOptionsFromQuery(r.URL.Query())
		writeJSON(w, http.StatusOK, paginate(s.data.listCustomers(opts), opts))
	}
}

func (s *Server) GetCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.data.getCustomer(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeData(w, http.StatusOK, c, "")
	}
}

func (s *Server) CreateCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeCustomer(w, r)
		if !ok {
			return
		}
		c, err := s.data.createCustomer(in)
		if err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeData(w, http.StatusCreated, c, "customer created")
	}
}

func (s *Server) UpdateCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeCustomer(w, r)
		if !ok {
			return
		}
		c, err := s.data.updateCustomer(r.PathValue("id"), in)
		if err != nil {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeData(w, http.StatusOK, c, "customer updated")
	}
}

func (s *Server) DeleteCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.data.deleteCustomer(r.PathValue("id")); err != nil {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeData[any](w, http.StatusOK, nil, "customer deleted")
	}
}

func (s *Server) ListTechniciansHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := resources.ListOptionsFromQuery(r.URL.Query())
		writeJSON(w, http.StatusOK, paginate(s.data.listTechnicians(opts), opts))
	}
}

func (s *Server) GetTechnicianHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.data.getTechnician(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "technician not found")
			return
		}
		writeData(w, http.StatusOK, t, "")
	}
}

func (s *Server) ListServicesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := resources.ListOptionsFromQuery(r.URL.Query())
		writeJSON(w, http.StatusOK, paginate(s.data.listServices(opts), opts))
	}
}

func (s *Server) ListSchedulesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := resources.ListOptionsFromQuery(r.URL.Query())
		u := userFromContext(r.Context())
		writeJSON(w, http.StatusOK, paginate(s.data.listSchedules(u, opts), opts))
	}
}

func (s *Server) ListInvoicesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := resources.ListOptionsFromQuery(r.URL.Query())
		u := userFromContext(r.Context())
		writeJSON(w, http.StatusOK, paginate(s.data.listInvoices(u, opts), opts))
	}
}

func (s *Server) GetInvoiceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := s.data.getInvoice(userFromContext(r.Context()), r.PathValue("id"))
		if dasherrors.Is(err, dasherrors.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invoice not found")
			return
		}
		writeData(w, http.StatusOK, inv, "")
	}
}

func decodeCustomer(w http.ResponseWriter, r *http.Request) (resources.CustomerInput, bool) {
	var in resources.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return in, false
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return in, false
	}
	return in, true
}
