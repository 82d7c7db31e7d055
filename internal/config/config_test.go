package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)

	cfg.JWT.Secret = "short"
	assert.NoError(t, cfg.Validate())

	cfg.Server.Mode = "release"
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = strings.Repeat("s", 32)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	yaml := "server:\n  port: \"8080\"\njwt:\n  secret: from-file\n  expire_hours: 2\nstorage:\n  type: local\n  local_path: " + uploads + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 24*time.Hour, cfg.JWT.VerifyExpire)
	assert.Equal(t, time.Hour, cfg.JWT.ResetExpire)
	assert.Equal(t, 3, cfg.JWT.ResetAttempts)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxBytes())
	assert.DirExists(t, uploads)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := "jwt:\n  secret: from-file\nstorage:\n  local_path: " + filepath.Join(dir, "uploads") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "9090", cfg.Server.Port)
}
