// Package session owns the process-wide authentication state and the
// login, register and logout operations that change it.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
	"github.com/jrsteele09/acservice-dashboard/token"
	"github.com/jrsteele09/acservice-dashboard/tokenstore"
	"github.com/jrsteele09/acservice-dashboard/users"
	"github.com/rs/zerolog/log"
)

const (
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathLogout   = "/auth/logout"
	PathMe       = "/auth/me"

	DefaultLogoutTimeout = 3 * time.Second
)

// Manager is the single writer of the session state. It is safe for
// concurrent use; construct one per process and pass it where it is needed.
type Manager struct {
	client        *apiclient.Client
	store         tokenstore.Store
	logoutTimeout time.Duration

	lock           sync.RWMutex
	state          State
	subscribers    map[int]func(State)
	nextSubscriber int
	onForcedLogout func()
}

type Option func(*Manager)

func WithLogoutTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.logoutTimeout = d
	}
}

// NewManager wires the manager to the client's session-invalid signal. The
// store must be the one the client was built with.
func NewManager(client *apiclient.Client, store tokenstore.Store, opts ...Option) *Manager {
	m := &Manager{
		client:        client,
		store:         store,
		logoutTimeout: DefaultLogoutTimeout,
		subscribers:   make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	client.OnSessionInvalid(m.expire)
	return m
}

// Snapshot returns a copy of the current state
func (m *Manager) Snapshot() State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.state.clone()
}

// Subscribe registers fn to be called with every new state. The returned
// function removes the subscription. fn runs while the session is being
// written and must not sign in or out.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.lock.Lock()
	defer m.lock.Unlock()

	id := m.nextSubscriber
	m.nextSubscriber++
	m.subscribers[id] = fn
	return func() {
		m.lock.Lock()
		defer m.lock.Unlock()
		delete(m.subscribers, id)
	}
}

// OnForcedLogout registers the navigation performed when the session is torn
// down because it could not be recovered
func (m *Manager) OnForcedLogout(fn func()) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.onForcedLogout = fn
}

// dispatch applies a mutation and notifies subscribers outside the lock
func (m *Manager) dispatch(mut mutation) State {
	m.lock.Lock()
	next := mut(m.state)
	next.IsAuthenticated = next.User != nil
	m.state = next
	subs := make([]func(State), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.lock.Unlock()

	for _, fn := range subs {
		fn(next.clone())
	}
	return next.clone()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	User   *users.User `json:"user"`
	Tokens token.Pair  `json:"tokens"`
}

// Login authenticates against the backend. A rejected credential is reported
// as ErrInvalidCredentials and leaves the session as it was. If the new session
// cannot be stored, nothing is kept and the session is signed out.
func (m *Manager) Login(ctx context.Context, email, password string) (*users.User, error) {
	resp, err := m.client.Do(ctx, &apiclient.Request{
		Method:      http.MethodPost,
		Path:        PathLogin,
		Body:        loginRequest{Email: email, Password: password},
		SkipRefresh: true,
	})
	if err != nil {
		switch apiclient.StatusCode(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusUnprocessableEntity:
			return nil, fmt.Errorf("%w: %w", dasherrors.ErrInvalidCredentials, err)
		}
		return nil, err
	}

	var env apiclient.Envelope[loginPayload]
	if err := resp.Decode(&env); err != nil {
		return nil, err
	}
	payload := env.Data
	if payload.User == nil || payload.User.ID == "" || !payload.User.Role.Valid() || !payload.Tokens.Complete() {
		return nil, fmt.Errorf("%w: malformed login response", dasherrors.ErrInternal)
	}

	if err := m.client.ReplaceSession(func() error {
		return m.persist(payload.Tokens, payload.User)
	}); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", payload.User.ID).Str("role", string(payload.User.Role)).Msg("signed in")
	u := *payload.User
	return &u, nil
}

// persist stores a new session and publishes it. A partial write is rolled
// back and the state signed out, so the store and the state always agree.
func (m *Manager) persist(pair token.Pair, u *users.User) error {
	err := tokenstore.SaveTokens(m.store, pair)
	if err == nil {
		err = tokenstore.SaveUser(m.store, u)
	}
	if err != nil {
		if clearErr := tokenstore.ClearAuth(m.store); clearErr != nil {
			log.Err(clearErr).Msg("failed to roll back partial session")
		}
		m.dispatch(signedOut())
		return fmt.Errorf("persist session: %w", err)
	}
	m.dispatch(authenticated(u))
	return nil
}

// Register creates an account. No tokens are issued and the session is not
// touched; the caller still has to Login.
func (m *Manager) Register(ctx context.Context, req users.RegisterRequest) (*users.RegisteredProfile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp, err := m.client.Do(ctx, &apiclient.Request{
		Method:      http.MethodPost,
		Path:        PathRegister,
		Body:        req,
		SkipRefresh: true,
	})
	if err != nil {
		return nil, err
	}

	var env apiclient.Envelope[users.RegisteredProfile]
	if err := resp.Decode(&env); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", env.Data.ID).Str("role", string(env.Data.Role)).Msg("account registered")
	return &env.Data, nil
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Logout tells the backend on a best-effort basis, then always clears the
// auth keys, resets the state and calls onComplete (which may be nil).
func (m *Manager) Logout(ctx context.Context, onComplete func()) {
	defer func() {
		if err := m.client.ReplaceSession(func() error {
			err := tokenstore.ClearAuth(m.store)
			m.dispatch(signedOut())
			return err
		}); err != nil {
			log.Err(err).Msg("failed to clear token store on logout")
		}
		if onComplete != nil {
			onComplete()
		}
	}()

	pair := tokenstore.Tokens(m.store)
	if pair.AccessToken == "" && pair.RefreshToken == "" {
		return
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.logoutTimeout)
	defer cancel()
	_, err := m.client.Do(callCtx, &apiclient.Request{
		Method:      http.MethodPost,
		Path:        PathLogout,
		Body:        logoutRequest{RefreshToken: pair.RefreshToken},
		SkipRefresh: true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("server-side logout failed, clearing local session anyway")
		return
	}
	log.Info().Msg("signed out")
}

// InitializeAuth restores the session from the store at process start. Any
// incomplete or unreadable stored session is logged out so the state is never
// partially populated.
func (m *Manager) InitializeAuth(ctx context.Context) State {
	access, _ := m.store.Get(tokenstore.KeyAccessToken)
	u, err := tokenstore.User(m.store)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("discarding stored session")
	case access != "" && u != nil:
		return m.dispatch(authenticated(u))
	}

	m.Logout(ctx, nil)
	return m.Snapshot()
}

// RefreshProfile re-reads the signed-in user from the backend and updates the
// cached copy. It goes through the normal refresh-and-retry path. A profile
// fetched for a session that has since been logged out or replaced is dropped
// and ErrNoSession returned.
func (m *Manager) RefreshProfile(ctx context.Context) (*users.User, error) {
	gen := m.client.SessionGeneration()
	if !m.Snapshot().IsAuthenticated {
		return nil, dasherrors.ErrNoSession
	}
	u, err := apiclient.GetData[*users.User](ctx, m.client, PathMe, nil)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Role.Valid() {
		return nil, fmt.Errorf("%w: malformed profile response", dasherrors.ErrInternal)
	}
	if err := m.client.UpdateSession(gen, func() error {
		if err := tokenstore.SaveUser(m.store, u); err != nil {
			return err
		}
		m.dispatch(authenticated(u))
		return nil
	}); err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

// expire handles an unrecoverable session reported by the client. Storage has
// already been cleared; a login that landed since then is left alone.
func (m *Manager) expire(cause error) {
	replaced := false
	_ = m.client.ReplaceSession(func() error {
		if access, _ := m.store.Get(tokenstore.KeyAccessToken); access != "" {
			replaced = true
			return nil
		}
		m.dispatch(signedOut())
		return nil
	})
	if replaced {
		log.Debug().Err(cause).Msg("stale session expiry ignored, a new session is active")
		return
	}
	log.Warn().Err(cause).Msg("session ended, sign in required")

	m.lock.RLock()
	navigate := m.onForcedLogout
	m.lock.RUnlock()
	if navigate != nil {
		navigate()
	}
}
