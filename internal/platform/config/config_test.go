package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"TAXCALC_ADDR", "ENVIRONMENT", "TAXCALC_MAX_BODY_BYTES",
	"NOTA_BASE_URL", "NOTA_TIMEOUT", "NOTA_RETRIES", "NOTA_BACKOFF_BASE",
	"BREAKER_FAILURES", "BREAKER_SUCCESSES",
	"CACHE_TTL", "CACHE_SWEEP_INTERVAL", "REDIS_URL",
	"TAX_YEAR", "TAX_RATE_TABLE_PATH",
}

// clearEnv blanks every variable FromEnv reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultNOTABaseURL, cfg.NOTA.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.NOTA.Timeout)
	assert.Equal(t, 2, cfg.NOTA.Retries)
	assert.Equal(t, time.Second, cfg.NOTA.BackoffBase)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.SweepInterval)
	assert.Empty(t, cfg.Cache.Redis.URL)
	assert.Zero(t, cfg.Tax.TaxYear)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TAXCALC_ADDR", ":9090")
	t.Setenv("NOTA_TIMEOUT", "2s")
	t.Setenv("NOTA_RETRIES", "0")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TAX_YEAR", "2026")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.NOTA.Timeout)
	assert.Equal(t, 0, cfg.NOTA.Retries)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.Redis.URL)
	assert.Equal(t, 2026, cfg.Tax.TaxYear)
}

func TestFromEnvRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"NOTA_TIMEOUT": "ten seconds",
		"NOTA_RETRIES": "-1",
		"TAX_YEAR":     "twenty",
		"CACHE_TTL":    "0s",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is present, even when empty
	os.Unsetenv("TAXCALC_ADDR")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TAXCALC_ADDR=:7070\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadWithoutEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
