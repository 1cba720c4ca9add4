// Package layout maps a role to the page shell it is rendered in
package layout

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/jrsteele09/acservice-dashboard/users"
	"gopkg.in/yaml.v3"
)

//go:embed layouts.yaml
var defaultLayouts []byte

type NavItem struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
	Icon  string `yaml:"icon"`
}

// Descriptor is everything a page shell needs to render its chrome
type Descriptor struct {
	Role  users.RoleType `yaml:"-"`
	Brand string         `yaml:"-"`
	Title string         `yaml:"title"`
	Nav   []NavItem      `yaml:"nav"`
}

// Active reports whether the nav item is the current section for path
func (n NavItem) Active(path string) bool {
	return path == n.Href || strings.HasPrefix(path, n.Href+"/")
}

type Set struct {
	Brand   string                        `yaml:"brand"`
	Default users.RoleType                `yaml:"default"`
	Layouts map[users.RoleType]Descriptor `yaml:"layouts"`
}

// Parse decodes and validates a layout set. Every role needs a shell and the
// default must be one of them.
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}
	for _, role := range []users.RoleType{users.RoleAdmin, users.RoleTechnician, users.RoleCustomer} {
		d, ok := s.Layouts[role]
		if !ok {
			return nil, fmt.Errorf("no layout for role %q", role)
		}
		if len(d.Nav) == 0 {
			return nil, fmt.Errorf("layout %q has no navigation", role)
		}
		d.Role = role
		d.Brand = s.Brand
		s.Layouts[role] = d
	}
	for role := range s.Layouts {
		if !role.Valid() {
			return nil, fmt.Errorf("layout for unknown role %q", role)
		}
	}
	if _, ok := s.Layouts[s.Default]; !ok {
		return nil, fmt.Errorf("default layout %q is not defined", s.Default)
	}
	return &s, nil
}

// For returns the shell for role, or the default shell when the role is
// empty or unknown
func (s *Set) For(role users.RoleType) Descriptor {
	d, ok := s.Layouts[role]
	if !ok {
		d = s.Layouts[s.Default]
	}
	nav := make([]NavItem, len(d.Nav))
	copy(nav, d.Nav)
	d.Nav = nav
	return d
}

var builtin = sync.OnceValue(func() *Set {
	s, err := Parse(defaultLayouts)
	if err != nil {
		panic("built-in layouts are invalid: " + err.Error())
	}
	return s
})

// For maps role to its shell using the built-in layout set
func For(role users.RoleType) Descriptor {
	return builtin().For(role)
}

// ForUser is For with a nil-safe user
func ForUser(u *users.User) Descriptor {
	if u == nil {
		return For("")
	}
	return For(u.Role)
}
