package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CLASSDESK_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ClassDesk API", cfg.AppName)
	assert.Equal(t, DriverFile, cfg.StorageDriver)
	assert.Equal(t, UploadDisk, cfg.UploadDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 25, cfg.MaxUploadMB)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CLASSDESK_JWT_SECRET", "test-secret")
	t.Setenv("CLASSDESK_APP_PORT", "9090")
	t.Setenv("CLASSDESK_STORAGE_DRIVER", "SQLITE")
	t.Setenv("CLASSDESK_TOKEN_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddress())
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("CLASSDESK_JWT_SECRET", "test-secret")
	t.Setenv("CLASSDESK_STORAGE_DRIVER", "mongodb")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestLoadRequiresPostgresDSN(t *testing.T) {
	t.Setenv("CLASSDESK_JWT_SECRET", "test-secret")
	t.Setenv("CLASSDESK_STORAGE_DRIVER", "postgres")
	t.Setenv("CLASSDESK_DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "database url")
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("CLASSDESK_JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "jwt secret")
}
