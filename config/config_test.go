package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaultsWithEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, []string{"ADMIN"}, cfg.Session.Roles)
	assert.True(t, cfg.Session.Required)
	assert.Equal(t, 30*time.Minute, cfg.Intake.FormTTL)
	assert.Equal(t, int64(5<<20), cfg.Intake.MaxUploadBytes)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpire)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	yaml := []byte(`
server:
  port: 9090
jwt:
  secret: file-secret
session:
  roles: [ADMIN, STAFF]
intake:
  form_ttl: 5m
storage:
  driver: minio
minio:
  endpoint: minio:9000
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yaml"), yaml, 0o644))
	chdir(t, dir)
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, []string{"ADMIN", "STAFF"}, cfg.Session.Roles)
	assert.Equal(t, 5*time.Minute, cfg.Intake.FormTTL)
	assert.Equal(t, "minio", cfg.Storage.Driver)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		JWT:     JWTConfig{Secret: "s"},
		Storage: StorageConfig{Driver: "local"},
		Intake:  IntakeConfig{MaxUploadBytes: 1},
	}
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.JWT.Secret = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Storage.Driver = "s3"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Storage.Driver = "minio"
	assert.Error(t, bad.Validate())
}
