package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithFile("")
	require.NoError(t, err)

	assert.Equal(t, "localhost:8084", cfg.Address())
	assert.Equal(t, 0.02, cfg.Mining.MinSupport)
	assert.Equal(t, 0.3, cfg.Mining.MinConfidence)
	assert.Equal(t, 3.0, cfg.Mining.MinLift)
	assert.Equal(t, 20, cfg.Mining.GraphRules)
	assert.Equal(t, 1, cfg.Mining.CacheSize)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 5*time.Minute, cfg.Data.UploadTimeout)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("BASKET_SERVER_PORT", "9090")
	t.Setenv("BASKET_MINING_MIN_SUPPORT", "0.05")
	t.Setenv("BASKET_MINING_TIMEOUT", "45s")
	t.Setenv("BASKET_DATA_CSV_FILE", "online_retail.csv")
	t.Setenv("BASKET_SECURITY_ALLOWED_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("BASKET_LOGGER_LEVEL", "debug")

	cfg, err := LoadWithFile("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.05, cfg.Mining.MinSupport)
	assert.Equal(t, 45*time.Second, cfg.Mining.Timeout)
	assert.Equal(t, "online_retail.csv", cfg.Data.CSVFile)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 0.3, cfg.Mining.MinConfidence, "untouched keys keep defaults")
}

func TestLoad_YAMLFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basket.yaml")
	content := `
server:
  port: 7000
mining:
  min_support: 0.01
  min_lift: 1.5
  cache_size: 4
logger:
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("BASKET_MINING_MIN_LIFT", "2")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 0.01, cfg.Mining.MinSupport)
	assert.Equal(t, 2.0, cfg.Mining.MinLift)
	assert.Equal(t, 4, cfg.Mining.CacheSize)
	assert.Equal(t, "text", cfg.Logger.Format)
}

func TestLoad_ConfigFileFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basket.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  host: 0.0.0.0\n"), 0o600))
	t.Setenv("BASKET_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "BASKET_SERVER_PORT", "70000"},
		{"support above one", "BASKET_MINING_MIN_SUPPORT", "1.1"},
		{"zero confidence", "BASKET_MINING_MIN_CONFIDENCE", "0"},
		{"negative lift", "BASKET_MINING_MIN_LIFT", "-1"},
		{"cache size", "BASKET_MINING_CACHE_SIZE", "0"},
		{"upload timeout", "BASKET_DATA_UPLOAD_TIMEOUT", "0s"},
		{"log level", "BASKET_LOGGER_LEVEL", "verbose"},
		{"log format", "BASKET_LOGGER_FORMAT", "xml"},
		{"rate limit", "BASKET_SECURITY_RATE_LIMIT_RPS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadWithFile("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadWithFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnvKeyValue(t *testing.T) {
	key, _ := envKeyValue("BASKET_SERVER_READ_TIMEOUT", "5s")
	assert.Equal(t, "server.read_timeout", key)

	key, _ = envKeyValue("BASKET_CONFIG_FILE", "x")
	assert.Empty(t, key)

	key, val := envKeyValue("BASKET_SECURITY_TRUSTED_PROXIES", "10.0.0.1,10.0.0.2")
	assert.Equal(t, "security.trusted_proxies", key)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, val)
}
