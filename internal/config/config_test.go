package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/shiprate/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "empty.env"))
	require.NoError(t, os.WriteFile(os.Getenv("CONFIG_FILE"), nil, 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, config.SourceFile, cfg.SettingsSource)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.OTELEnabled)
}

func TestLoad_ConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	content := "PORT=9090\nSETTINGS_SOURCE=postgres\nDATABASE_URL=postgres://localhost/shop\nCACHE_TTL=1m\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", file)

	// godotenv does not override variables already set
	t.Setenv("PORT", "7070")
	unsetForTest(t, "SETTINGS_SOURCE", "DATABASE_URL", "CACHE_TTL")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, config.SourcePostgres, cfg.SettingsSource)
	assert.Equal(t, "postgres://localhost/shop", cfg.DatabaseURL)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

// unsetForTest clears keys and restores them when the test ends.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.env"))
	_, err := config.Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			SettingsSource: config.SourceFile,
			SettingsDir:    "./stores",
			DefaultCountry: "US",
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown source", func(c *config.Config) { c.SettingsSource = "s3" }},
		{"file without dir", func(c *config.Config) { c.SettingsDir = "" }},
		{"postgres without url", func(c *config.Config) { c.SettingsSource = config.SourcePostgres }},
		{"bad country", func(c *config.Config) { c.DefaultCountry = "USA" }},
		{"negative rate", func(c *config.Config) { c.RateLimitRPS = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAttributes(t *testing.T) {
	cfg := &config.Config{ServiceName: "shiprate", Version: "1.2.3", SettingsSource: config.SourceFile}
	attrs := cfg.Attributes()

	values := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		values[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "shiprate", values["service.name"])
	assert.Equal(t, "1.2.3", values["service.version"])
	assert.Equal(t, "file", values["settings.source"])
}
