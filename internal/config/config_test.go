package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

storage:
  driver: postgres
  postgres_url: "postgres://massmail@localhost/massmail?sslmode=disable"

redis:
  url: "redis://localhost:6379/0"

mail:
  provider: ses
  ses:
    region: eu-west-1
    timeout_seconds: 45

scheduler:
  enabled: true
  sweep_spec: "@every 1m"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "ses", cfg.Mail.Provider)
	assert.Equal(t, "eu-west-1", cfg.Mail.SES.Region)
	assert.Equal(t, 45*time.Second, cfg.Mail.SES.Timeout())
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "@every 1m", cfg.Scheduler.SweepSpec)
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  env: prod\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, "mongo", cfg.Storage.Driver)
	assert.Equal(t, "massmaildb", cfg.Storage.Mongo.Database)
	assert.Equal(t, "gmail", cfg.Mail.Provider)
	assert.Equal(t, "http://localhost:8080/auth/gmail/callback", cfg.Mail.Gmail.RedirectURL)
	assert.Equal(t, "@every 30s", cfg.Scheduler.SweepSpec)
	assert.Equal(t, 2*time.Minute, cfg.Scheduler.LockTTL())
	assert.Equal(t, 24*time.Hour, cfg.Session.MaxAge())
	assert.Equal(t, "prod", cfg.Log.Env)
}

func TestLoadFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("storage:\n  driver: mongo\n"), 0644))

	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("MAIL_PROVIDER", "smtp")
	t.Setenv("SERVER_PORT", "9191")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://env", cfg.Storage.PostgresURL)
	assert.Equal(t, "smtp", cfg.Mail.Provider)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoadFromEnvWithoutFile(t *testing.T) {
	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mongo", cfg.Storage.Driver)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}
