// Package tokenstore holds the durable client-side auth state: the access
// token, the refresh token and the cached user profile.
package tokenstore

import (
	"encoding/json"
	"fmt"

	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
	"github.com/jrsteele09/acservice-dashboard/token"
	"github.com/jrsteele09/acservice-dashboard/users"
)

const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// AuthKeys are the keys owned by the session; logout removes exactly these.
var AuthKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// Store is a synchronous, durable key-value store. Reads never fail: a value
// that cannot be read is reported as absent.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
	Clear() error
}

// Tokens returns whatever token pair is currently stored (either half may be empty)
func Tokens(s Store) token.Pair {
	access, _ := s.Get(KeyAccessToken)
	refresh, _ := s.Get(KeyRefreshToken)
	return token.Pair{AccessToken: access, RefreshToken: refresh}
}

// SaveTokens persists both halves of a pair
func SaveTokens(s Store, p token.Pair) error {
	if err := s.Set(KeyAccessToken, p.AccessToken); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := s.Set(KeyRefreshToken, p.RefreshToken); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// User decodes the cached user. It returns (nil, nil) when nothing is cached and
// ErrCorruptUser when the cached value does not decode into a usable profile.
func User(s Store) (*users.User, error) {
	raw, ok := s.Get(KeyUser)
	if !ok || raw == "" {
		return nil, nil
	}
	var u users.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("%w: %v", dasherrors.ErrCorruptUser, err)
	}
	if u.ID == "" || !u.Role.Valid() {
		return nil, dasherrors.ErrCorruptUser
	}
	return &u, nil
}

// SaveUser caches the profile as JSON
func SaveUser(s Store, u *users.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.Set(KeyUser, string(raw))
}

// ClearAuth removes the session keys and leaves unrelated entries alone.
// Every key is attempted; the first error is returned.
func ClearAuth(s Store) error {
	var firstErr error
	for _, k := range AuthKeys {
		if err := s.Remove(k); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
