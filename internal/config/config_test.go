package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_secret: "secret"
db:
  dsn: "postgres://localhost/mbox"
auth:
  bcrypt_cost: 4
cors:
  allowed_origins: ["http://localhost:5173"]
`), 0o644))
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://mbox.dev,https://www.mbox.dev")

	cfg := MustLoad(path)
	assert.Equal(t, "secret", cfg.AppSecret)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.Auth.VerificationTTL)
	assert.Equal(t, []string{"https://mbox.dev", "https://www.mbox.dev"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "8000", cfg.Server.Port)
}

func TestMustLoadMissingFile(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yml")) })
}
