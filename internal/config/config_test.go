package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/acservice-dashboard/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvVars_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("API_TIMEOUT", "")

	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "127.0.0.1", c.GetBindHost())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, 10*time.Second, c.GetAPITimeout())
	require.Equal(t, config.TokenStoreFile, c.GetTokenStore())
}

func TestEnvVars_Overrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("API_TIMEOUT", "250ms")
	t.Setenv("API_BASE_URL", "https://api.example.com/api/v1")

	c := config.New()
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, 250*time.Millisecond, c.GetAPITimeout())
	require.Equal(t, "https://api.example.com/api/v1", c.GetAPIBaseURL())
}

func TestGetEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	require.Equal(t, time.Second, config.GetEnvDuration("SOME_TIMEOUT", time.Second))

	t.Setenv("SOME_TIMEOUT", "-5s")
	require.Equal(t, time.Second, config.GetEnvDuration("SOME_TIMEOUT", time.Second))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DOTENV_TEST_VALUE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DOTENV_TEST_VALUE") })

	require.NoError(t, config.LoadDotEnv(envFile))
	require.Equal(t, "from-file", os.Getenv("DOTENV_TEST_VALUE"))

	require.NoError(t, config.LoadDotEnv(filepath.Join(dir, "missing.env")))
}
