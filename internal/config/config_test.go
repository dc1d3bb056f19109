package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORAGE_DRIVER", "MinIO")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("UPLOADS_PRUNE", "true")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Storage.MinIO.UseSSL)
	assert.Equal(t, "minio", cfg.Storage.Driver)
	assert.Equal(t, int64(1024), cfg.Storage.MaxBytes)
	assert.True(t, cfg.Storage.Prune)
	assert.Equal(t, 2*1024+(1<<20), cfg.BodyLimitBytes)
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_NAME", "STORAGE_DRIVER", "UPLOADS_DIR", "UPLOAD_MAX_BYTES", "RABBITMQ_URL", "BODY_LIMIT_BYTES", "HTTP_READ_TIMEOUT_SEC"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "inventario", cfg.Database.Name)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "uploads", cfg.Storage.UploadsDir)
	assert.Equal(t, int64(defaultUploadMaxBytes), cfg.Storage.MaxBytes)
	assert.False(t, cfg.Storage.Prune)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.Equal(t, "product_events", cfg.RabbitMQ.Queue)
	assert.Equal(t, time.Minute, cfg.ReadTimeout)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvInt64(t *testing.T) {
	key := "TEST_INT64_VAR"
	defer os.Unsetenv(key)

	os.Setenv(key, "4096")
	assert.Equal(t, int64(4096), getEnvInt64(key, 1))

	os.Setenv(key, "-5")
	assert.Equal(t, int64(1), getEnvInt64(key, 1))

	os.Setenv(key, "x")
	assert.Equal(t, int64(1), getEnvInt64(key, 1))
}
