package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"DB_MAX_CONN_LIFETIME", "DB_DIAL_TIMEOUT",
		"GEMINI_API_KEY", "GEMINI_BASE_URL", "GEMINI_MODEL", "GEMINI_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, int32(1), cfg.Database.MinConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.MaxConnLifetime)
	assert.Equal(t, 3*time.Second, cfg.Database.DialTimeout)
	assert.Equal(t, "gemini-2.0-flash-lite", cfg.Gemini.Model)
	assert.Equal(t, 45*time.Second, cfg.Gemini.Timeout)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/mappingdata")
	t.Setenv("DB_MAX_CONNS", "5")
	t.Setenv("DB_DIAL_TIMEOUT", "10s")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-pro")

	cfg := LoadConfig()
	assert.Equal(t, "postgres://localhost/mappingdata", cfg.Database.DSN)
	assert.Equal(t, int32(5), cfg.Database.MaxConns)
	assert.Equal(t, 10*time.Second, cfg.Database.DialTimeout)
	assert.Equal(t, "gemini-1.5-pro", cfg.Gemini.Model)
}

func TestLoadConfigIgnoresGarbageValues(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "many")
	t.Setenv("DB_DIAL_TIMEOUT", "soon")

	cfg := LoadConfig()
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 3*time.Second, cfg.Database.DialTimeout)
}

func TestValidateForSave(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateForSave()
	require.Error(t, err)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cfg.Database.DSN = "postgres://localhost/db"
	assert.NoError(t, cfg.ValidateForSave())
}
