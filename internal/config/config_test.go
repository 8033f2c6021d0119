package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Scrape.Fetcher)
	assert.Equal(t, 12, cfg.Scrape.TimeoutSecs)
	assert.Equal(t, 8, cfg.Scrape.ProductCap)
	assert.Contains(t, cfg.Scrape.ProductPaths, "/collections/all")
	assert.Equal(t, "auto", cfg.Generator.Provider)
	assert.Equal(t, 3, cfg.Generator.RetryAttempts)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, int64(1500), cfg.Anthropic.MaxTokens)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "siteforge.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Batch.Concurrency)
	assert.InDelta(t, 2.0, cfg.Batch.RPS, 0.001)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
scrape:
  fetcher: colly
  product_cap: 4
store:
  driver: postgres
  database_url: postgres://localhost/siteforge
  pool:
    max_conns: 20
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "colly", cfg.Scrape.Fetcher)
	assert.Equal(t, 4, cfg.Scrape.ProductCap)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, int32(20), cfg.Store.Pool.MaxConns)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Batch.Concurrency)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("SITEFORGE_STORE_DRIVER", "postgres")
	t.Setenv("SITEFORGE_LOG_LEVEL", "warn")
	t.Setenv("SITEFORGE_ANTHROPIC_KEY", "sk-ant-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "sk-ant-test", cfg.Anthropic.Key)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("scrape: [unclosed"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestFetcherOptions(t *testing.T) {
	opts := ScrapeConfig{TimeoutSecs: 5, UserAgent: "ua", MaxBodyBytes: 10, HostRPS: 1.5}.FetcherOptions()
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.Equal(t, "ua", opts.UserAgent)
	assert.Equal(t, int64(10), opts.MaxBodyBytes)
	assert.InDelta(t, 1.5, opts.HostRPS, 0.001)
}

func TestInitLoggerConsole(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "invalid", Format: "json"}))
}

// validDefaults returns a Config with defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Scrape.Fetcher = "http"
	cfg.Scrape.ProductCap = 8
	cfg.Generator.Provider = "template"
	cfg.Store.Driver = "sqlite"
	cfg.Server.Port = 8080
	cfg.Batch.Concurrency = 5
	return cfg
}

func TestValidateScrape(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("scrape"))

	cfg.Scrape.Fetcher = "chrome"
	cfg.Scrape.ProductCap = 0
	err := cfg.Validate("scrape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scrape.fetcher must be http or colly")
	assert.Contains(t, err.Error(), "scrape.product_cap must be > 0")
}

func TestValidateBatchConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.Concurrency = 0
	err := cfg.Validate("batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch.concurrency must be between 1 and 50")

	cfg.Batch.Concurrency = 51
	assert.Error(t, cfg.Validate("batch"))

	cfg.Batch.Concurrency = 50
	assert.NoError(t, cfg.Validate("batch"))
}

func TestValidateOnboard_AnthropicNeedsKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Generator.Provider = "anthropic"

	err := cfg.Validate("onboard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")

	cfg.Anthropic.Key = "sk-ant-key"
	assert.NoError(t, cfg.Validate("onboard"))
}

func TestValidateOnboard_PostgresNeedsURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("onboard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
