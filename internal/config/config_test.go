package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Server.Addr)
	assert.Equal(t, DefaultUpstreamURL, cfg.Upstream.BaseURL)
	assert.Equal(t, "", cfg.Upstream.APIKey)
	assert.True(t, cfg.Upstream.BreakerEnabled)
	assert.Equal(t, uint32(5), cfg.Upstream.BreakerFailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.Upstream.BreakerOpenTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("UPSTREAM_API_KEY", "server-key")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("BREAKER_ENABLED", "false")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, http://localhost:5173")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "server-key", cfg.Upstream.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.False(t, cfg.Upstream.BreakerEnabled)
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Server.AllowedOrigins())
}

func TestLoad_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	content := "upstream:\n  base_url: http://upstream.test/volumes\nlogging:\n  format: console\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	t.Setenv(ConfigPathEnvVar, p)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://upstream.test/volumes", cfg.Upstream.BaseURL)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, ":4000", cfg.Server.Addr)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("server:\n  addr: \":7000\"\n"), 0o644))
	t.Setenv(ConfigPathEnvVar, p)
	t.Setenv("APP_ADDR", ":7001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.Server.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("UPSTREAM_BASE_URL", "not a url")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("UPSTREAM_API_KEY=from_file\n"), 0o644))

	t.Setenv("UPSTREAM_API_KEY", "from_env")

	cwd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	LoadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("UPSTREAM_API_KEY"))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "upstream.api_key", envKey("UPSTREAM_API_KEY"))
	assert.Equal(t, "", envKey("PATH"))
}
