package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/acservice-dashboard/devapi"
	"github.com/jrsteele09/acservice-dashboard/internal/config"
	"github.com/jrsteele09/acservice-dashboard/tokenstore"
	"github.com/stretchr/testify/require"
)

func TestResolvePassword(t *testing.T) {
	t.Setenv("DASHBOARD_PASSWORD", "")
	t.Cleanup(func() { loginPassword = "" })

	loginPassword = "from-flag"
	p, err := resolvePassword(strings.NewReader("from-stdin\n"))
	require.NoError(t, err)
	require.Equal(t, "from-flag", p)

	loginPassword = ""
	t.Setenv("DASHBOARD_PASSWORD", "from-env")
	p, err = resolvePassword(strings.NewReader("from-stdin\n"))
	require.NoError(t, err)
	require.Equal(t, "from-env", p)

	t.Setenv("DASHBOARD_PASSWORD", "")
	p, err = resolvePassword(strings.NewReader("from-stdin\r\n"))
	require.NoError(t, err)
	require.Equal(t, "from-stdin", p)

	_, err = resolvePassword(strings.NewReader(""))
	require.Error(t, err)
}

type cliFixture struct {
	api       *devapi.Server
	dataDir   string
	storePath string
}

// setupCLI points the commands at a dev backend and a file store in a temp folder
func setupCLI(t *testing.T) *cliFixture {
	t.Helper()
	api, err := devapi.New(config.DevAPI{})
	require.NoError(t, err)
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	f := &cliFixture{api: api, dataDir: t.TempDir()}
	f.storePath = filepath.Join(f.dataDir, tokenstore.DefaultFileName)

	t.Setenv("API_BASE_URL", srv.URL+devapi.BasePath)
	t.Setenv("TOKEN_STORE", config.TokenStoreFile)
	t.Setenv("FOLDER", f.dataDir)
	t.Setenv("DASHBOARD_PASSWORD", "")
	t.Cleanup(func() {
		loginEmail = ""
		loginPassword = ""
	})
	return f
}

func (f *cliFixture) stored(t *testing.T) *tokenstore.FileStore {
	t.Helper()
	store, err := tokenstore.OpenFileStore(f.storePath)
	require.NoError(t, err)
	return store
}

func (f *cliFixture) login(t *testing.T, email string) string {
	t.Helper()
	loginEmail = email
	var out bytes.Buffer
	require.NoError(t, runLogin(context.Background(), config.New(), strings.NewReader(devapi.SeedPassword+"\n"), &out))
	return out.String()
}

func TestLoginCommandStoresSession(t *testing.T) {
	f := setupCLI(t)

	out := f.login(t, devapi.SeedAdminEmail)
	require.Contains(t, out, "Signed in as")
	require.Contains(t, out, "(admin)")

	store := f.stored(t)
	require.True(t, tokenstore.Tokens(store).Complete())
	u, err := tokenstore.User(store)
	require.NoError(t, err)
	require.Equal(t, devapi.SeedAdminEmail, u.Email)
}

func TestLoginCommandRejectsBadPassword(t *testing.T) {
	f := setupCLI(t)
	loginEmail = devapi.SeedAdminEmail

	var out bytes.Buffer
	err := runLogin(context.Background(), config.New(), strings.NewReader("wrong-password\n"), &out)
	require.ErrorContains(t, err, "login rejected")
	require.Empty(t, out.String())
	require.False(t, tokenstore.Tokens(f.stored(t)).Complete())
}

func TestLoginThroughRootCommand(t *testing.T) {
	f := setupCLI(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(devapi.SeedPassword + "\n"))
	rootCmd.SetArgs([]string{"login", "--email", devapi.SeedTechnicianEmail, "--env-file", filepath.Join(f.dataDir, "missing.env")})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "Signed in as")
	require.Contains(t, out.String(), "(technician)")
	require.True(t, tokenstore.Tokens(f.stored(t)).Complete())
}

func TestWhoamiCommand(t *testing.T) {
	f := setupCLI(t)

	err := runWhoami(context.Background(), config.New(), &bytes.Buffer{})
	require.ErrorIs(t, err, errNotSignedIn)

	f.login(t, devapi.SeedAdminEmail)

	var out bytes.Buffer
	require.NoError(t, runWhoami(context.Background(), config.New(), &out))
	require.Contains(t, out.String(), "Email:   "+devapi.SeedAdminEmail)
	require.Contains(t, out.String(), "Role:    admin")
}

func TestWhoamiCommandReportsExpiredSession(t *testing.T) {
	f := setupCLI(t)
	f.login(t, devapi.SeedAdminEmail)

	f.api.ExpireAccessTokens()
	f.api.FailRefresh(true)

	var out bytes.Buffer
	err := runWhoami(context.Background(), config.New(), &out)
	require.ErrorIs(t, err, errSessionExpired)
	require.Empty(t, out.String())

	store := f.stored(t)
	for _, k := range tokenstore.AuthKeys {
		_, ok := store.Get(k)
		require.False(t, ok, "key %s should be cleared", k)
	}
}

func TestLogoutCommandClearsStore(t *testing.T) {
	f := setupCLI(t)
	f.login(t, devapi.SeedAdminEmail)

	var out bytes.Buffer
	require.NoError(t, runLogout(context.Background(), config.New(), &out))
	require.Equal(t, "Signed out\n", out.String())
	require.EqualValues(t, 1, f.api.LogoutCalls())

	store := f.stored(t)
	for _, k := range tokenstore.AuthKeys {
		_, ok := store.Get(k)
		require.False(t, ok, "key %s should be cleared", k)
	}

	err := runWhoami(context.Background(), config.New(), &bytes.Buffer{})
	require.ErrorIs(t, err, errNotSignedIn)
}
