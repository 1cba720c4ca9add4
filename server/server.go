// Package server is the dashboard's HTML console: every page is rendered
// server-side from backend data fetched through the shared session.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/acservice-dashboard/guard"
	"github.com/jrsteele09/acservice-dashboard/internal/config"
	"github.com/jrsteele09/acservice-dashboard/resources"
	"github.com/jrsteele09/acservice-dashboard/users"
	"github.com/rs/zerolog/log"
)

// Sessions is the part of the session manager the console drives
type Sessions interface {
	guard.Snapshotter
	Login(ctx context.Context, email, password string) (*users.User, error)
	Register(ctx context.Context, req users.RegisterRequest) (*users.RegisteredProfile, error)
	Logout(ctx context.Context, onComplete func())
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	sessions   Sessions
	api        *resources.API
	routeTable *guard.RouteTable
}

func New(cfg config.EnvConfig, sessions Sessions, api *resources.API) (*Server, error) {
	table, err := guard.LoadRoutes()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to load route table: %w", err)
	}

	s := &Server{
		env:        cfg.GetEnv(),
		mux:        http.NewServeMux(),
		sessions:   sessions,
		api:        api,
		routeTable: table,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered mux patterns in registration order
func (s *Server) Routes() []string {
	out := make([]string, len(s.routes))
	copy(out, s.routes)
	return out
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Msgf("[%s] %s", colouredMethod(method), path)
}
