package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const tokenLength = 32

// Manager issues and rotates opaque refresh tokens. Every successful Rotate
// invalidates the presented token.
type Manager struct {
	repo   Repo
	expiry time.Duration
}

func NewManager(repo Repo, expiry time.Duration) *Manager {
	return &Manager{
		repo:   repo,
		expiry: expiry,
	}
}

// Create generates a new refresh token for the user, replacing any existing one
func (m *Manager) Create(userID string) (string, error) {
	if existing, err := m.repo.GetByUserID(userID); err == nil && existing != nil {
		if err := m.repo.Delete(existing.Token); err != nil {
			return "", fmt.Errorf("failed to delete existing refresh token: %w", err)
		}
	}

	tokenBytes := make([]byte, tokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(&StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    NowTimeFunc(),
	}); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokenStr, nil
}

// Rotate consumes a refresh token and returns its owner plus a replacement
func (m *Manager) Rotate(token string) (userID string, next string, err error) {
	rt, err := m.repo.Get(token)
	if err != nil {
		return "", "", dasherrors.ErrSessionInvalid
	}
	if m.IsExpired(rt) {
		_ = m.repo.Delete(token)
		return "", "", fmt.Errorf("%w: refresh token expired", dasherrors.ErrSessionInvalid)
	}

	next, err = m.Create(rt.UserID)
	if err != nil {
		return "", "", err
	}
	return rt.UserID, next, nil
}

// Revoke removes a refresh token. Unknown tokens are not an error.
func (m *Manager) Revoke(token string) error {
	if err := m.repo.Delete(token); err != nil && !dasherrors.Is(err, dasherrors.ErrNotFound) {
		return err
	}
	return nil
}

func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return m.expiry > 0 && NowTimeFunc().Sub(rt.Iat) > m.expiry
}
