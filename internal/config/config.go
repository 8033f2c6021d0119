package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/siteforge/internal/fetcher"
	"github.com/sells-group/siteforge/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Generator GeneratorConfig `yaml:"generator" mapstructure:"generator"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ScrapeConfig configures fetching and product discovery.
type ScrapeConfig struct {
	Fetcher      string   `yaml:"fetcher" mapstructure:"fetcher"` // "http" or "colly"
	TimeoutSecs  int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent    string   `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HostRPS      float64  `yaml:"host_rps" mapstructure:"host_rps"`
	ProductPaths []string `yaml:"product_paths" mapstructure:"product_paths"`
	ProductCap   int      `yaml:"product_cap" mapstructure:"product_cap"`
}

// FetcherOptions maps the scrape section onto fetcher.Options.
func (c ScrapeConfig) FetcherOptions() fetcher.Options {
	return fetcher.Options{
		UserAgent:    c.UserAgent,
		Timeout:      time.Duration(c.TimeoutSecs) * time.Second,
		MaxBodyBytes: c.MaxBodyBytes,
		HostRPS:      c.HostRPS,
	}
}

// GeneratorConfig selects and tunes the content generator.
type GeneratorConfig struct {
	Provider            string `yaml:"provider" mapstructure:"provider"` // "auto", "anthropic" or "template"
	RetryAttempts       int    `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	BreakerThreshold    int    `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownSecs int    `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// BatchConfig configures batch scraping.
type BatchConfig struct {
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
	RPS         float64 `yaml:"rps" mapstructure:"rps"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SITEFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("scrape.fetcher", "http")
	v.SetDefault("scrape.timeout_secs", int(fetcher.DefaultTimeout/time.Second))
	v.SetDefault("scrape.max_body_bytes", fetcher.DefaultMaxBodyBytes)
	v.SetDefault("scrape.user_agent", "")
	v.SetDefault("scrape.host_rps", 0)
	v.SetDefault("scrape.product_paths", []string{
		"/products", "/shop", "/collections", "/collections/all", "/store", "/catalog", "/all-products",
	})
	v.SetDefault("scrape.product_cap", 8)
	v.SetDefault("generator.provider", "auto")
	v.SetDefault("generator.retry_attempts", 3)
	v.SetDefault("generator.breaker_threshold", 5)
	v.SetDefault("generator.breaker_cooldown_secs", 30)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1500)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "siteforge.db")
	v.SetDefault("store.pool.max_conns", 0)
	v.SetDefault("store.pool.min_conns", 0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("batch.concurrency", 5)
	v.SetDefault("batch.rps", 2.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is one of "scrape",
// "batch", "onboard" or "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Scrape.Fetcher {
	case "http", "colly":
	default:
		errs = append(errs, "scrape.fetcher must be http or colly")
	}
	if c.Scrape.ProductCap < 1 {
		errs = append(errs, "scrape.product_cap must be > 0")
	}

	needsStore := false
	switch mode {
	case "scrape":
	case "batch":
		if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 50 {
			errs = append(errs, "batch.concurrency must be between 1 and 50")
		}
		if c.Batch.RPS < 0 {
			errs = append(errs, "batch.rps must be >= 0")
		}
	case "onboard":
		needsStore = true
		errs = append(errs, c.validateGenerator()...)
	case "serve":
		needsStore = true
		errs = append(errs, c.validateGenerator()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if needsStore {
		switch c.Store.Driver {
		case "sqlite":
		case "postgres":
			if c.Store.DatabaseURL == "" {
				errs = append(errs, "store.database_url is required for postgres")
			}
		default:
			errs = append(errs, "store.driver must be sqlite or postgres")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateGenerator() []string {
	switch c.Generator.Provider {
	case "auto", "template":
		return nil
	case "anthropic":
		if c.Anthropic.Key == "" {
			return []string{"anthropic.key is required when generator.provider is anthropic"}
		}
		return nil
	default:
		return []string{"generator.provider must be auto, anthropic or template"}
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
