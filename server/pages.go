package server

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
	"github.com/jrsteele09/acservice-dashboard/guard"
	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
	"github.com/jrsteele09/acservice-dashboard/layout"
	"github.com/jrsteele09/acservice-dashboard/users"
	"github.com/rs/zerolog/log"
)

// PageData is the model every page template renders
type PageData struct {
	Title  string
	Layout layout.Descriptor
	User   *users.User
	Path   string
	Flash  string
	Error  string
	Data   any
}

const noticeParam = "notice"

// notices are the only flash messages a redirect can ask for
var notices = map[string]string{
	"registered":       "Account created. Sign in to continue.",
	"signed_out":       "You have been signed out.",
	"customer_created": "Customer added.",
	"customer_updated": "Customer saved.",
	"customer_deleted": "Customer deleted.",
}

const unavailableMessage = "The service is unavailable right now. Try again shortly."

func (s *Server) newPageData(r *http.Request, title string, data any) PageData {
	u := guard.UserFromContext(r.Context())
	if u == nil {
		u = s.sessions.Snapshot().User
	}
	return PageData{
		Title:  title,
		Layout: layout.ForUser(u),
		User:   u,
		Path:   r.URL.Path,
		Flash:  notices[r.URL.Query().Get(noticeParam)],
		Data:   data,
	}
}

func (s *Server) title(pattern string) string {
	return s.routeTable.MustLookup(pattern).Title
}

// renderPage renders tmpl, or deals with the backend error that prevented
// loading its data
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, tmpl *template.Template, pattern string, data any, err error) {
	page := s.newPageData(r, s.title(pattern), data)
	status := http.StatusOK
	if err != nil {
		msg, handled := s.handleBackendError(w, r, err)
		if handled {
			return
		}
		page.Error = msg
		status = http.StatusBadGateway
	}
	render(w, tmpl, status, page)
}

// handleBackendError navigates away when a backend failure means the page
// cannot be shown: an ended session goes to login remembering the location,
// a forbidden or missing record goes to the matching page. Anything else is
// returned as an inline message for the caller's error panel.
func (s *Server) handleBackendError(w http.ResponseWriter, r *http.Request, err error) (string, bool) {
	switch {
	case errors.Is(err, dasherrors.ErrSessionInvalid), errors.Is(err, dasherrors.ErrNoSession):
		from := r.URL.RequestURI()
		if r.Method != http.MethodGet {
			from = ""
		}
		guard.Redirect(w, r, guard.LoginURL(from))
		return "", true
	case apiclient.IsStatus(err, http.StatusForbidden):
		guard.Redirect(w, r, RouteUnauthorized)
		return "", true
	case apiclient.IsStatus(err, http.StatusNotFound):
		guard.Redirect(w, r, s.routeTable.NotFound)
		return "", true
	}

	log.Err(err).Str("path", r.URL.Path).Msg("backend request failed")
	if apiclient.StatusCode(err) != 0 {
		return apiclient.Message(err), false
	}
	return unavailableMessage, false
}

// redirectWithNotice is an htmx-aware 303 carrying a flash notice
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	guard.Redirect(w, r, path+"?"+url.Values{noticeParam: {notice}}.Encode())
}
