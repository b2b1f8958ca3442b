package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DATA_DIR", "STORE_DRIVER", "KAFKA_BROKERS", "KAFKA_TOPIC", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "CarrierRates.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, DriverDuckDB, cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.GetDataDir())
	assert.Equal(t, filepath.Join(dir, "data", "rates.duckdb"), cfg.GetDatabasePath())

	_, err = os.Stat(path)
	assert.NoError(t, err)

	// The written file loads back to the same values
	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Import, again.Import)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "CarrierRates.config")

	xmlDoc := `<?xml version="1.0" encoding="UTF-8"?>
<CarrierRates>
  <Server><Port>9000</Port><BindAddress>127.0.0.1</BindAddress><EnableCORS>true</EnableCORS><AllowOrigins>http://a, http://b</AllowOrigins></Server>
  <Storage><Driver>memory</Driver><DataDirectory>/var/rates</DataDirectory></Storage>
  <Import><PreviewRows>3</PreviewRows></Import>
</CarrierRates>`
	require.NoError(t, os.WriteFile(path, []byte(xmlDoc), 0644))

	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.GetServerAddr())
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "/var/rates", cfg.GetDataDir())
	assert.Equal(t, 3, cfg.Import.PreviewRows)
	// Unset elements keep their defaults
	assert.Equal(t, 10, cfg.Import.ValidationSample)
	assert.Equal(t, "k1:9092,k2:9092", cfg.Messaging.KafkaBrokers)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.GetAllowOrigins())
	assert.Equal(t, log.DEBUG, cfg.GetLogLevel())
}

func TestLoadConfigDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PORT")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=9191\n"), 0644))

	cfg, err := LoadConfig(filepath.Join(dir, "CarrierRates.config"))
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	os.Unsetenv("PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AppConfig)
		ok     bool
	}{
		{"defaults", func(c *AppConfig) {}, true},
		{"unknown driver", func(c *AppConfig) { c.Storage.Driver = "postgres" }, false},
		{"bad port", func(c *AppConfig) { c.Server.Port = 0 }, false},
		{"negative upload", func(c *AppConfig) { c.Import.MaxUploadBytes = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGetLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	for in, want := range map[string]log.Lvl{
		"":        log.INFO,
		"DEBUG":   log.DEBUG,
		"warning": log.WARN,
		"error":   log.ERROR,
		"off":     log.OFF,
	} {
		cfg.Advanced.LogLevel = in
		assert.Equal(t, want, cfg.GetLogLevel(), in)
	}
}

func TestGetAllowOriginsDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.EnableCORS = false
	assert.Nil(t, cfg.GetAllowOrigins())

	cfg.Server.EnableCORS = true
	cfg.Server.AllowOrigins = " "
	assert.Equal(t, []string{"*"}, cfg.GetAllowOrigins())
}
