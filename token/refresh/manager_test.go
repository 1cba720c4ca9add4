package refresh_test

import (
	"testing"
	"time"

	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
	"github.com/jrsteele09/acservice-dashboard/token/refresh"
	refreshrepofake "github.com/jrsteele09/acservice-dashboard/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

func TestRotateInvalidatesPresentedToken(t *testing.T) {
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	m := refresh.NewManager(repo, time.Hour)

	first, err := m.Create("user-1")
	require.NoError(t, err)
	require.Len(t, first, 64)

	userID, second, err := m.Rotate(first)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
	require.NotEqual(t, first, second)
	require.Equal(t, 1, repo.Len())

	_, _, err = m.Rotate(first)
	require.ErrorIs(t, err, dasherrors.ErrSessionInvalid)
}

func TestCreateReplacesExistingToken(t *testing.T) {
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	m := refresh.NewManager(repo, time.Hour)

	first, err := m.Create("user-1")
	require.NoError(t, err)
	_, err = m.Create("user-1")
	require.NoError(t, err)

	_, err = repo.Get(first)
	require.ErrorIs(t, err, dasherrors.ErrNotFound)
	require.Equal(t, 1, repo.Len())
}

func TestRotateExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	refresh.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { refresh.NowTimeFunc = time.Now })

	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	m := refresh.NewManager(repo, time.Hour)
	tok, err := m.Create("user-1")
	require.NoError(t, err)

	now = now.Add(61 * time.Minute)
	_, _, err = m.Rotate(tok)
	require.ErrorIs(t, err, dasherrors.ErrSessionInvalid)
	require.Equal(t, 0, repo.Len())
}

func TestRevokeUnknownIsNoop(t *testing.T) {
	m := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo(), time.Hour)
	require.NoError(t, m.Revoke("missing"))
}
