package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
	"github.com/jrsteele09/acservice-dashboard/guard"
	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
	"github.com/jrsteele09/acservice-dashboard/internal/utils"
	"github.com/jrsteele09/acservice-dashboard/users"
	"github.com/rs/zerolog/log"
)

// LoginForm is the data behind the login page
type LoginForm struct {
	Email string
	From  string
}

// RegisterForm is the data behind the register page
type RegisterForm struct {
	Name           string
	Email          string
	Role           string
	Phone          string
	Address        string
	Specialization string
}

const (
	loginTitle    = "Sign in"
	registerTitle = "Create an account"
)

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("login.html")
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		form := LoginForm{Email: q.Get("email"), From: q.Get(guard.FromParam)}
		render(w, tmpl, http.StatusOK, s.newPageData(r, loginTitle, form))
	}
}

// LoginSubmissionHandler signs in and returns to the remembered location
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("login.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := LoginForm{
			Email: strings.TrimSpace(r.PostFormValue("email")),
			From:  r.PostFormValue(guard.FromParam),
		}
		password := r.PostFormValue("password")

		fail := func(status int, msg string) {
			page := s.newPageData(r, loginTitle, form)
			page.Error = msg
			render(w, tmpl, status, page)
		}

		if err := users.ValidateCredentials(form.Email, password); err != nil {
			fail(http.StatusUnprocessableEntity, err.Error())
			return
		}

		_, err := s.sessions.Login(r.Context(), form.Email, password)
		switch {
		case err == nil:
			guard.Redirect(w, r, guard.ReturnTo(form.From))
		case errors.Is(err, dasherrors.ErrInvalidCredentials):
			fail(http.StatusUnauthorized, apiclient.Message(err))
		default:
			log.Err(err).Msg("login failed")
			fail(http.StatusBadGateway, unavailableMessage)
		}
	}
}

// RegisterPageHandler displays the registration page (GET /register)
func (s *Server) RegisterPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("register.html")
	return func(w http.ResponseWriter, r *http.Request) {
		form := RegisterForm{Role: string(users.RoleCustomer)}
		render(w, tmpl, http.StatusOK, s.newPageData(r, registerTitle, form))
	}
}

// RegisterSubmissionHandler creates the account and sends the user to the
// login page; registering never signs anyone in
func (s *Server) RegisterSubmissionHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("register.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := RegisterForm{
			Name:           strings.TrimSpace(r.PostFormValue("name")),
			Email:          strings.TrimSpace(r.PostFormValue("email")),
			Role:           r.PostFormValue("role"),
			Phone:          strings.TrimSpace(r.PostFormValue("phone")),
			Address:        strings.TrimSpace(r.PostFormValue("address")),
			Specialization: strings.TrimSpace(r.PostFormValue("specialization")),
		}

		fail := func(status int, msg string) {
			page := s.newPageData(r, registerTitle, form)
			page.Error = msg
			render(w, tmpl, status, page)
		}

		role, err := users.ParseRole(form.Role)
		if err != nil || role == users.RoleAdmin {
			fail(http.StatusUnprocessableEntity, "choose a customer or technician account")
			return
		}
		req := users.RegisterRequest{
			Name:     form.Name,
			Email:    form.Email,
			Password: r.PostFormValue("password"),
			Role:     role,
			Phone:    utils.OptionalString(form.Phone),
			Address:  utils.OptionalString(form.Address),
		}
		if role == users.RoleTechnician {
			req.Specialization = utils.OptionalString(form.Specialization)
		}

		_, err = s.sessions.Register(r.Context(), req)
		switch status := apiclient.StatusCode(err); {
		case err == nil:
			target := RouteLogin + "?" + url.Values{noticeParam: {"registered"}, "email": {form.Email}}.Encode()
			guard.Redirect(w, r, target)
		case status >= 400 && status < 500:
			fail(status, apiclient.Message(err))
		case status != 0, errors.Is(err, dasherrors.ErrNetwork), errors.Is(err, dasherrors.ErrTimeout):
			log.Err(err).Msg("registration failed")
			fail(http.StatusBadGateway, unavailableMessage)
		default:
			// Rejected locally before anything was sent
			fail(http.StatusUnprocessableEntity, err.Error())
		}
	}
}

// LogoutHandler ends the session and lands on the login page
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Logout(r.Context(), func() {
			redirectWithNotice(w, r, RouteLogin, "signed_out")
		})
	}
}
