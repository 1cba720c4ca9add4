// Package guard decides, per navigation, whether the current session may see
// a route, and redirects when it may not.
package guard

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/acservice-dashboard/session"
	"github.com/jrsteele09/acservice-dashboard/users"
)

const (
	LoginPath        = "/login"
	RegisterPath     = "/register"
	UnauthorizedPath = "/unauthorized"
	LandingPath      = "/dashboard"

	// FromParam carries the originally requested location through the login page
	FromParam = "from"
)

type Decision int

const (
	Render Decision = iota
	RedirectLogin
	RedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	}
	return "unknown"
}

// Decide applies the access table. An empty allow-list admits any
// authenticated role.
func Decide(st session.State, allowed []users.RoleType) Decision {
	if !st.IsAuthenticated || st.User == nil {
		return RedirectLogin
	}
	if len(allowed) == 0 || st.User.HasRole(allowed...) {
		return Render
	}
	return RedirectUnauthorized
}

// Snapshotter is the read side of the session manager
type Snapshotter interface {
	Snapshot() session.State
}

type contextKey string

const contextKeyUser contextKey = "user"

// WithUser stores the rendering user in ctx
func WithUser(ctx context.Context, u *users.User) context.Context {
	return context.WithValue(ctx, contextKeyUser, u)
}

// UserFromContext returns the user a guarded handler is rendering for
func UserFromContext(ctx context.Context) *users.User {
	u, _ := ctx.Value(contextKeyUser).(*users.User)
	return u
}

// Require gates a handler on the session and, when roles are given, on the
// user's role
func Require(sessions Snapshotter, roles ...users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			st := sessions.Snapshot()
			switch Decide(st, roles) {
			case RedirectLogin:
				Redirect(w, r, LoginURL(r.URL.RequestURI()))
			case RedirectUnauthorized:
				Redirect(w, r, UnauthorizedPath)
			default:
				next(w, r.WithContext(WithUser(r.Context(), st.User)))
			}
		}
	}
}

// RedirectAuthenticated keeps signed-in users away from the login and
// register pages
func RedirectAuthenticated(sessions Snapshotter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if sessions.Snapshot().IsAuthenticated {
				Redirect(w, r, ReturnTo(r.URL.Query().Get(FromParam)))
				return
			}
			next(w, r)
		}
	}
}

// LoginURL is the login page remembering from as the return location
func LoginURL(from string) string {
	if !isSafeLocalPath(from) || isAuthPage(from) {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{FromParam: {from}}.Encode()
}

// ReturnTo is where to go after a successful login: the remembered location
// when it is a local, non-auth page, the landing page otherwise
func ReturnTo(from string) string {
	if !isSafeLocalPath(from) || isAuthPage(from) {
		return LandingPath
	}
	return from
}

func isSafeLocalPath(p string) bool {
	if p == "" || p[0] != '/' || strings.HasPrefix(p, "//") || strings.ContainsAny(p, "\\\r\n") {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme == "" && u.Host == "" && u.User == nil
}

func isAuthPage(p string) bool {
	path := p
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	return path == LoginPath || path == RegisterPath
}

// Redirect is an htmx-aware 303
func Redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
