// Package devapi is an in-memory implementation of the dashboard's backend
// contract. It backs local development (`dashboard devapi`) and the tests of
// every package that talks to the backend.
package devapi

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/acservice-dashboard/internal/config"
	"github.com/jrsteele09/acservice-dashboard/token/refresh"
	refreshrepofake "github.com/jrsteele09/acservice-dashboard/token/refresh/repofake"
	"github.com/jrsteele09/acservice-dashboard/users"
	fakeuserrepo "github.com/jrsteele09/acservice-dashboard/users/repofake"
	"github.com/rs/zerolog/log"
)

// BasePath is the prefix of every backend route
const BasePath = "/api/v1"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type Server struct {
	mux    *http.ServeMux
	routes []string

	users     users.UserRepo
	refreshes *refresh.Manager
	secret    []byte
	accessTTL time.Duration

	data *dataset

	generation   atomic.Int64 // access tokens minted before the current generation are rejected
	refreshCalls atomic.Int64
	logoutCalls  atomic.Int64
	failRefresh  atomic.Bool
	failLogout   atomic.Bool

	delayLock    sync.RWMutex
	refreshDelay time.Duration
}

type Option func(*Server)

// WithAccessTokenTTL overrides the configured access token lifetime
func WithAccessTokenTTL(d time.Duration) Option {
	return func(s *Server) {
		s.accessTTL = d
	}
}

func New(cfg config.DevAPIConfig, opts ...Option) (*Server, error) {
	s := &Server{
		mux:       http.NewServeMux(),
		users:     fakeuserrepo.NewFakeUserRepo(),
		refreshes: refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), cfg.GetDevAPIRefreshTokenTTL()),
		secret:    []byte(cfg.GetDevAPISecret()),
		accessTTL: cfg.GetDevAPIAccessTokenTTL(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("[devapi New] signing secret is empty")
	}

	data, err := seed(s.users)
	if err != nil {
		return nil, fmt.Errorf("[devapi New] failed to seed data: %w", err)
	}
	s.data = data

	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered patterns in registration order
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

// RefreshCalls is the number of requests that reached the refresh endpoint
func (s *Server) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}

func (s *Server) LogoutCalls() int64 {
	return s.logoutCalls.Load()
}

// ExpireAccessTokens invalidates every access token issued so far.
// Refresh tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.generation.Add(1)
	log.Debug().Int64("generation", s.generation.Load()).Msg("devapi: access tokens expired")
}

// FailRefresh makes the refresh endpoint reject every token while set
func (s *Server) FailRefresh(fail bool) {
	s.failRefresh.Store(fail)
}

// FailLogout makes the logout endpoint answer 500 while set
func (s *Server) FailLogout(fail bool) {
	s.failLogout.Store(fail)
}

// SetRefreshDelay holds every refresh response for d
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.delayLock.Lock()
	defer s.delayLock.Unlock()
	s.refreshDelay = d
}

func (s *Server) getRefreshDelay() time.Duration {
	s.delayLock.RLock()
	defer s.delayLock.RUnlock()
	return s.refreshDelay
}

// Users exposes the user repository so callers can add accounts
func (s *Server) Users() users.UserRepo {
	return s.users
}
