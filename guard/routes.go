package guard

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/acservice-dashboard/users"
	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRoutes []byte

// Route is one guarded page and the roles allowed to see it
type Route struct {
	Pattern string           `yaml:"pattern"`
	Title   string           `yaml:"title"`
	Roles   []users.RoleType `yaml:"roles"`
	Public  bool             `yaml:"public"`
}

type RouteTable struct {
	Routes    []Route           `yaml:"routes"`
	Redirects map[string]string `yaml:"redirects"`
	NotFound  string            `yaml:"not_found"`

	byPattern map[string]Route
}

// LoadRoutes parses the built-in route table
func LoadRoutes() (*RouteTable, error) {
	return ParseRoutes(defaultRoutes)
}

// ParseRoutes decodes and validates a route table
func ParseRoutes(data []byte) (*RouteTable, error) {
	var t RouteTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse route table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *RouteTable) validate() error {
	t.byPattern = make(map[string]Route, len(t.Routes))
	for _, r := range t.Routes {
		if !strings.HasPrefix(r.Pattern, "/") {
			return fmt.Errorf("route %q: pattern must start with /", r.Pattern)
		}
		if _, dup := t.byPattern[r.Pattern]; dup {
			return fmt.Errorf("route %q: declared twice", r.Pattern)
		}
		if r.Public && len(r.Roles) > 0 {
			return fmt.Errorf("route %q: public routes cannot restrict roles", r.Pattern)
		}
		for _, role := range r.Roles {
			if !role.Valid() {
				return fmt.Errorf("route %q: unknown role %q", r.Pattern, role)
			}
		}
		t.byPattern[r.Pattern] = r
	}
	for from, to := range t.Redirects {
		if _, ok := t.byPattern[to]; !ok {
			return fmt.Errorf("redirect %s: target %q is not a declared route", from, to)
		}
	}
	if t.NotFound != "" {
		if r, ok := t.byPattern[t.NotFound]; !ok || !r.Public {
			return fmt.Errorf("not_found %q must be a declared public route", t.NotFound)
		}
	}
	return nil
}

// Lookup finds a route by its mux pattern
func (t *RouteTable) Lookup(pattern string) (Route, bool) {
	r, ok := t.byPattern[pattern]
	return r, ok
}

// MustLookup is Lookup for patterns the caller registers itself
func (t *RouteTable) MustLookup(pattern string) Route {
	r, ok := t.Lookup(pattern)
	if !ok {
		panic("route not declared in route table: " + pattern)
	}
	return r
}

// Guard returns the middleware enforcing the route's policy. Public routes
// pass straight through.
func (t *RouteTable) Guard(pattern string, sessions Snapshotter) func(http.HandlerFunc) http.HandlerFunc {
	r := t.MustLookup(pattern)
	if r.Public {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	return Require(sessions, r.Roles...)
}
