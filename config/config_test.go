package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("DB_USER", "foodgram")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SERVER_HOST", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_SSL_MODE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.ServerPort)
	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "foodgram", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("S3_BUCKET_NAME", "recipe-images")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "cache.internal", cfg.RedisHost)
	assert.Equal(t, "6379", cfg.RedisPort)
	assert.Equal(t, "recipe-images", cfg.S3Bucket)
}

func TestLoadConfigFromSecrets(t *testing.T) {
	secretsDir := t.TempDir()
	for name, value := range map[string]string{
		"db_user":     "foodgram",
		"db_password": "secret",
		"jwt_secret":  "prod-secret",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(secretsDir, name), []byte(value+"\n"), 0o600))
	}
	t.Setenv("CI", "")
	t.Setenv("ENV", "production")
	t.Setenv("SECRETS_DIR", secretsDir)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "foodgram", cfg.DBUser)
	// Secret files are trimmed of trailing whitespace.
	assert.Equal(t, "prod-secret", cfg.JWTSecret)
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())

	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())
}
