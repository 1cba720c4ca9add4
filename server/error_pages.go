package server

import "net/http"

// UnauthorizedHandler is where a signed-in user lands on a page their role
// cannot see (GET /unauthorized)
func (s *Server) UnauthorizedHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("unauthorized.html")
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, tmpl, http.StatusForbidden, s.newPageData(r, s.title(RouteUnauthorized), nil))
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("notfound.html")
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, tmpl, http.StatusNotFound, s.newPageData(r, s.title(RouteNotFound), nil))
	}
}
