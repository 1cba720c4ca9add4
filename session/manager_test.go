package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
	"github.com/jrsteele09/acservice-dashboard/devapi"
	"github.com/jrsteele09/acservice-dashboard/internal/config"
	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
	"github.com/jrsteele09/acservice-dashboard/session"
	"github.com/jrsteele09/acservice-dashboard/tokenstore"
	"github.com/jrsteele09/acservice-dashboard/users"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	api     *devapi.Server
	server  *httptest.Server
	store   *tokenstore.MemoryStore
	client  *apiclient.Client
	manager *session.Manager
	forced  atomic.Int32
}

func setup(t *testing.T) *testFixture {
	t.Helper()
	api, err := devapi.New(config.DevAPI{})
	require.NoError(t, err)

	f := &testFixture{api: api, store: tokenstore.NewMemoryStore()}
	f.server = httptest.NewServer(api)
	t.Cleanup(f.server.Close)

	f.client = apiclient.New(f.server.URL+devapi.BasePath, f.store, apiclient.WithTimeout(5*time.Second))
	f.manager = session.NewManager(f.client, f.store, session.WithLogoutTimeout(time.Second))
	f.manager.OnForcedLogout(func() { f.forced.Add(1) })
	return f
}

func requireStoreEmpty(t *testing.T, store tokenstore.Store) {
	t.Helper()
	for _, k := range tokenstore.AuthKeys {
		_, ok := store.Get(k)
		require.False(t, ok, "key %s should be cleared", k)
	}
}

func TestLogin(t *testing.T) {
	f := setup(t)

	u, err := f.manager.Login(context.Background(), devapi.SeedAdminEmail, devapi.SeedPassword)
	require.NoError(t, err)
	require.Equal(t, users.RoleAdmin, u.Role)

	st := f.manager.Snapshot()
	require.True(t, st.IsAuthenticated)
	require.Equal(t, u.ID, st.User.ID)

	require.True(t, tokenstore.Tokens(f.store).Complete())
	cached, err := tokenstore.User(f.store)
	require.NoError(t, err)
	require.Equal(t, u.Email, cached.Email)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), devapi.SeedAdminEmail, devapi.SeedPassword)
	require.NoError(t, err)
	before := f.manager.Snapshot()
	pair := tokenstore.Tokens(f.store)

	_, err = f.manager.Login(context.Background(), devapi.SeedTechnicianEmail, "wrong-password")
	require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
	require.Equal(t, "invalid email or password", apiclient.Message(err))

	require.Equal(t, before, f.manager.Snapshot())
	require.Equal(t, pair, tokenstore.Tokens(f.store))
	require.EqualValues(t, 0, f.api.RefreshCalls())
	require.EqualValues(t, 0, f.forced.Load())
}

func TestLoginNetworkFailure(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	client := apiclient.New("http://127.0.0.1:1/api/v1", store, apiclient.WithTimeout(time.Second))
	m := session.NewManager(client, store)

	_, err := m.Login(context.Background(), devapi.SeedAdminEmail, devapi.SeedPassword)
	require.Error(t, err)
	require.False(t, dasherrors.Is(err, dasherrors.ErrInvalidCredentials))
	require.False(t, m.Snapshot().IsAuthenticated)
}

func TestRegisterNeverMutatesSession(t *testing.T) {
	f := setup(t)
	var notified atomic.Int32
	f.manager.Subscribe(func(session.State) { notified.Add(1) })

	profile, err := f.manager.Register(context.Background(), users.RegisterRequest{
		Name: "Fajar", Email: "fajar@example.com", Password: "Str0ngpass", Role: users.RoleCustomer,
	})
	require.NoError(t, err)
	require.Equal(t, "fajar@example.com", profile.Email)
	require.Equal(t, users.RoleCustomer, profile.Role)

	require.False(t, f.manager.Snapshot().IsAuthenticated)
	require.Equal(t, 0, f.store.Len())
	require.EqualValues(t, 0, notified.Load())

	// the user must still log in
	_, err = f.manager.Login(context.Background(), "fajar@example.com", "Str0ngpass")
	require.NoError(t, err)
	require.True(t, f.manager.Snapshot().IsAuthenticated)
}

func TestRegisterFailureHasNoSideEffects(t *testing.T) {
	f := setup(t)

	_, err := f.manager.Register(context.Background(), users.RegisterRequest{
		Name: "Dup", Email: devapi.SeedCustomerEmail, Password: "Str0ngpass", Role: users.RoleCustomer,
	})
	require.True(t, apiclient.IsStatus(err, http.StatusConflict))

	_, err = f.manager.Register(context.Background(), users.RegisterRequest{
		Name: "Boss", Email: "boss@example.com", Password: "Str0ngpass", Role: users.RoleAdmin,
	})
	require.ErrorIs(t, err, dasherrors.ErrInvalidRole)

	require.False(t, f.manager.Snapshot().IsAuthenticated)
	require.Equal(t, 0, f.store.Len())
}

func TestLogoutClearsLocalStateWhenServerFails(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), devapi.SeedAdminEmail, devapi.SeedPassword)
	require.NoError(t, err)
	require.NoError(t, f.store.Set("theme", "dark"))

	f.api.FailLogout(true)
	completed := false
	f.manager.Logout(context.Background(), func() { completed = true })

	require.True(t, completed)
	require.Equal(t, session.State{}, f.manager.Snapshot())
	requireStoreEmpty(t, f.store)
	v, ok := f.store.Get("theme")
	require.True(t, ok)
	require.Equal(t, "dark", v)
	require.EqualValues(t, 1, f.api.LogoutCalls())
}

func TestLogoutWithUnreachableServer(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	client := apiclient.New("http://127.0.0.1:1/api/v1", store)
	m := session.NewManager(client, store, session.WithLogoutTimeout(200*time.Millisecond))
	require.NoError(t, store.Set(tokenstore.KeyAccessToken, "a"))
	require.NoError(t, store.Set(tokenstore.KeyRefreshToken, "r"))
	require.NoError(t, store.Set(tokenstore.KeyUser, `{"id":"u","role":"admin"}`))
	m.InitializeAuth(context.Background())
	require.True(t, m.Snapshot().IsAuthenticated)

	// a cancelled caller context still clears everything
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Logout(ctx, nil)

	require.False(t, m.Snapshot().IsAuthenticated)
	require.Equal(t, 0, store.Len())
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), devapi.SeedAdminEmail, devapi.SeedPassword)
	require.NoError(t, err)
	stale := tokenstore.Tokens(f.store)

	f.manager.Logout(context.Background(), nil)

	// replaying the old pair cannot resurrect the session
	require.NoError(t, tokenstore.SaveTokens(f.store, stale))
	f.api.ExpireAccessTokens()
	_, err = f.client.Do(context.Background(), &apiclient.Request{Path: "/auth/me"})
	require.ErrorIs(t, err, dasherrors.ErrSessionInvalid)
}

func TestInitializeAuth(t *testing.T) {
	t.Run("valid stored session", func(t *testing.T) {
		f := setup(t)
		stored := &users.User{ID: "u-7", Email: "op@example.com", Name: "Operator", Role: users.RoleTechnician}
		require.NoError(t, f.store.Set(tokenstore.KeyAccessToken, "access"))
		require.NoError(t, f.store.Set(tokenstore.KeyRefreshToken, "refresh"))
		require.NoError(t, tokenstore.SaveUser(f.store, stored))

		st := f.manager.InitializeAuth(context.Background())
		require.True(t, st.IsAuthenticated)
		require.Equal(t, stored.ID, st.User.ID)
		require.Equal(t, stored.Role, st.User.Role)
		require.EqualValues(t, 0, f.api.LogoutCalls())
	})

	t.Run("corrupt user", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.store.Set(tokenstore.KeyAccessToken, "access"))
		require.NoError(t, f.store.Set(tokenstore.KeyRefreshToken, "refresh"))
		require.NoError(t, f.store.Set(tokenstore.KeyUser, "{not json"))

		st := f.manager.InitializeAuth(context.Background())
		require.Equal(t, session.State{}, st)
		requireStoreEmpty(t, f.store)
	})

	t.Run("missing token", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, tokenstore.SaveUser(f.store, &users.User{ID: "u-1", Role: users.RoleAdmin}))

		st := f.manager.InitializeAuth(context.Background())
		require.False(t, st.IsAuthenticated)
		requireStoreEmpty(t, f.store)
	})

	t.Run("missing user", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.store.Set(tokenstore.KeyAccessToken, "access"))

		st := f.manager.InitializeAuth(context.Background())
		require.False(t, st.IsAuthenticated)
		requireStoreEmpty(t, f.store)
	})
}

func TestSilentRefreshKeepsSession(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), devapi.SeedAdminEmail, devapi.SeedPassword)
	require.NoError(t, err)
	before := tokenstore.Tokens(f.store)

	f.api.ExpireAccessTokens()
	u, err := f.manager.RefreshProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, devapi.SeedAdminEmail, u.Email)

	require.EqualValues(t, 1, f.api.RefreshCalls())
	after := tokenstore.Tokens(f.store)
	require.NotEqual(t, before.AccessToken, after.AccessToken)
	require.NotEqual(t, before.RefreshToken, after.RefreshToken)
	require.True(t, f.manager.Snapshot().IsAuthenticated)
	require.EqualValues(t, 0, f.forced.Load())
}

func TestFailedRefreshForcesLogout(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), devapi.SeedAdminEmail, devapi.SeedPassword)
	require.NoError(t, err)

	var states []session.State
	var mu sync.Mutex
	f.manager.Subscribe(func(st session.State) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, st)
	})

	f.api.ExpireAccessTokens()
	f.api.FailRefresh(true)
	_, err = f.manager.RefreshProfile(context.Background())
	require.ErrorIs(t, err, dasherrors.ErrSessionInvalid)

	require.False(t, f.manager.Snapshot().IsAuthenticated)
	requireStoreEmpty(t, f.store)
	require.EqualValues(t, 1, f.forced.Load())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []session.State{{}}, states)
}

func TestConcurrentExpiryRefreshesOnce(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), devapi.SeedAdminEmail, devapi.SeedPassword)
	require.NoError(t, err)

	f.api.ExpireAccessTokens()
	f.api.SetRefreshDelay(50 * time.Millisecond)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := apiclient.GetData[map[string]any](context.Background(), f.client, "/dashboard/stats", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, f.api.RefreshCalls())
	require.True(t, f.manager.Snapshot().IsAuthenticated)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	f := setup(t)

	var seen []bool
	unsubscribe := f.manager.Subscribe(func(st session.State) {
		require.Equal(t, st.User != nil, st.IsAuthenticated)
		seen = append(seen, st.IsAuthenticated)
	})

	_, err := f.manager.Login(context.Background(), devapi.SeedCustomerEmail, devapi.SeedPassword)
	require.NoError(t, err)
	f.manager.Logout(context.Background(), nil)
	unsubscribe()
	_, err = f.manager.Login(context.Background(), devapi.SeedCustomerEmail, devapi.SeedPassword)
	require.NoError(t, err)

	require.Equal(t, []bool{true, false}, seen)
}

func TestSnapshotIsACopy(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), devapi.SeedAdminEmail, devapi.SeedPassword)
	require.NoError(t, err)

	st := f.manager.Snapshot()
	st.User.Role = users.RoleCustomer
	require.Equal(t, users.RoleAdmin, f.manager.Snapshot().User.Role)
}

func TestRefreshProfileWithoutSession(t *testing.T) {
	f := setup(t)
	_, err := f.manager.RefreshProfile(context.Background())
	require.ErrorIs(t, err, dasherrors.ErrNoSession)
}

func TestLogoutDuringRefreshStaysSignedOut(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), devapi.SeedAdminEmail, devapi.SeedPassword)
	require.NoError(t, err)

	f.api.ExpireAccessTokens()
	f.api.SetRefreshDelay(200 * time.Millisecond)
	f.api.FailLogout(true)

	done := make(chan error, 1)
	go func() {
		_, err := f.manager.RefreshProfile(context.Background())
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	f.manager.Logout(context.Background(), nil)

	err = <-done
	require.ErrorIs(t, err, dasherrors.ErrNoSession)
	require.EqualValues(t, 1, f.api.RefreshCalls())

	requireStoreEmpty(t, f.store)
	require.False(t, f.manager.Snapshot().IsAuthenticated)
	require.EqualValues(t, 0, f.forced.Load())
}

func TestLoginDuringRefreshKeepsNewSession(t *testing.T) {
	f := setup(t)
	_, err := f.manager.Login(context.Background(), devapi.SeedAdminEmail, devapi.SeedPassword)
	require.NoError(t, err)

	f.api.ExpireAccessTokens()
	f.api.SetRefreshDelay(200 * time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := f.manager.RefreshProfile(context.Background())
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	tech, err := f.manager.Login(context.Background(), devapi.SeedTechnicianEmail, devapi.SeedPassword)
	require.NoError(t, err)
	pair := tokenstore.Tokens(f.store)

	err = <-done
	require.ErrorIs(t, err, dasherrors.ErrNoSession)

	require.Equal(t, pair, tokenstore.Tokens(f.store))
	cached, err := tokenstore.User(f.store)
	require.NoError(t, err)
	require.Equal(t, tech.ID, cached.ID)

	st := f.manager.Snapshot()
	require.True(t, st.IsAuthenticated)
	require.Equal(t, tech.ID, st.User.ID)
	require.EqualValues(t, 0, f.forced.Load())
}

// userWriteFailStore rejects writes of the cached user once armed
type userWriteFailStore struct {
	*tokenstore.MemoryStore
	failUser atomic.Bool
}

func (s *userWriteFailStore) Set(key, value string) error {
	if key == tokenstore.KeyUser && s.failUser.Load() {
		return errors.New("disk full")
	}
	return s.MemoryStore.Set(key, value)
}

func TestLoginStoreFailureSignsOut(t *testing.T) {
	api, err := devapi.New(config.DevAPI{})
	require.NoError(t, err)
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	store := &userWriteFailStore{MemoryStore: tokenstore.NewMemoryStore()}
	client := apiclient.New(server.URL+devapi.BasePath, store, apiclient.WithTimeout(5*time.Second))
	m := session.NewManager(client, store)

	_, err = m.Login(context.Background(), devapi.SeedAdminEmail, devapi.SeedPassword)
	require.NoError(t, err)
	require.True(t, m.Snapshot().IsAuthenticated)

	store.failUser.Store(true)
	_, err = m.Login(context.Background(), devapi.SeedTechnicianEmail, devapi.SeedPassword)
	require.Error(t, err)

	requireStoreEmpty(t, store)
	require.False(t, m.Snapshot().IsAuthenticated)
	require.Nil(t, m.Snapshot().User)
}
