package apiclient_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
	"github.com/jrsteele09/acservice-dashboard/token"
	"github.com/jrsteele09/acservice-dashboard/tokenstore"
	"github.com/jrsteele09/acservice-dashboard/users"
	"github.com/stretchr/testify/require"
)

// fakeBackend accepts exactly one access token at a time and rotates the pair on refresh
type fakeBackend struct {
	mu            sync.Mutex
	validAccess   string
	validRefresh  string
	generation    int
	failRefresh   bool
	rejectAll     bool
	refreshDelay  time.Duration
	handlerDelay  time.Duration
	refreshCalls  atomic.Int32
	requests      atomic.Int32
	refreshAuthHd atomic.Value // Authorization header seen on the refresh call
	seenTokens    sync.Map     // access token -> count of accepted requests
	bodies        []string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/auth/refresh" {
		b.handleRefresh(w, r)
		return
	}
	b.requests.Add(1)

	if b.handlerDelay > 0 {
		time.Sleep(b.handlerDelay)
	}

	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.bodies = append(b.bodies, string(body))
	valid := b.validAccess
	rejectAll := b.rejectAll
	b.mu.Unlock()

	if r.URL.Path == "/api/v1/boom" {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"database unavailable"}`))
		return
	}

	presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if rejectAll || presented == "" || presented != valid {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
		return
	}

	n, _ := b.seenTokens.LoadOrStore(presented, new(atomic.Int32))
	n.(*atomic.Int32).Add(1)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data": map[string]any{
			"path":   r.URL.Path,
			"method": r.Method,
			"query":  r.URL.RawQuery,
			"body":   string(body),
		},
	})
}

func (b *fakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)
	b.refreshAuthHd.Store(r.Header.Get("Authorization"))
	if b.refreshDelay > 0 {
		time.Sleep(b.refreshDelay)
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failRefresh || req.RefreshToken != b.validRefresh {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid refresh token"}`))
		return
	}

	b.generation++
	b.validAccess = fmt.Sprintf("access-%d", b.generation)
	b.validRefresh = fmt.Sprintf("refresh-%d", b.generation)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{
			"tokens": map[string]string{
				"access_token":  b.validAccess,
				"refresh_token": b.validRefresh,
			},
		},
	})
}

func (b *fakeBackend) acceptedWith(accessToken string) int32 {
	n, ok := b.seenTokens.Load(accessToken)
	if !ok {
		return 0
	}
	return n.(*atomic.Int32).Load()
}

type clientFixture struct {
	backend     *fakeBackend
	server      *httptest.Server
	store       *tokenstore.MemoryStore
	client      *apiclient.Client
	invalidated atomic.Int32
	lastCause   atomic.Value
}

// setupClient starts a backend that currently accepts "access-0"/"refresh-0"
func setupClient(t *testing.T, opts ...apiclient.Option) *clientFixture {
	t.Helper()

	f := &clientFixture{
		backend: &fakeBackend{validAccess: "access-0", validRefresh: "refresh-0"},
		store:   tokenstore.NewMemoryStore(),
	}
	f.server = httptest.NewServer(f.backend)
	t.Cleanup(f.server.Close)

	f.client = apiclient.New(f.server.URL+"/api/v1", f.store, opts...)
	f.client.OnSessionInvalid(func(cause error) {
		f.invalidated.Add(1)
		f.lastCause.Store(cause)
	})
	return f
}

func (f *clientFixture) seedSession(t *testing.T, pair token.Pair) {
	t.Helper()
	require.NoError(t, tokenstore.SaveTokens(f.store, pair))
	require.NoError(t, tokenstore.SaveUser(f.store, &users.User{ID: "u-1", Email: "admin@example.com", Role: users.RoleAdmin}))
}
