package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Probe   ProbeConfig   `yaml:"probe" mapstructure:"probe"`
	Rules   RulesConfig   `yaml:"rules" mapstructure:"rules"`
	Policy  PolicyConfig  `yaml:"policy" mapstructure:"policy"`
	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Targets TargetsConfig `yaml:"targets" mapstructure:"targets"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// CatalogConfig configures the remote catalog client.
type CatalogConfig struct {
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec    float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst     int     `yaml:"rate_burst" mapstructure:"rate_burst"`
	CacheTTLMins  int     `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
	CacheEntries  int     `yaml:"cache_entries" mapstructure:"cache_entries"`
	RetryAttempts int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
}

// ProbeConfig configures embedded metadata extraction.
type ProbeConfig struct {
	FfprobePath string `yaml:"ffprobe_path" mapstructure:"ffprobe_path"`
}

// RulesConfig points at an optional precedence rules file. When empty,
// the built-in rule set applies.
type RulesConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// PolicyConfig points at an optional validation policy file. When
// empty, the built-in audiobook policy applies.
type PolicyConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// EngineConfig configures the resolution pipeline.
type EngineConfig struct {
	SourceTimeoutSecs int `yaml:"source_timeout_secs" mapstructure:"source_timeout_secs"`
}

// BatchConfig configures batch resolution.
type BatchConfig struct {
	MaxConcurrentItems int `yaml:"max_concurrent_items" mapstructure:"max_concurrent_items"`
}

// TargetsConfig maps target names to field-map files for payload
// generation.
type TargetsConfig struct {
	Maps map[string]string `yaml:"maps" mapstructure:"maps"`
}

// StoreConfig configures the resolution history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
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
	v.AddConfigPath("$HOME/.config/quill")

	// Environment
	v.SetEnvPrefix("QUILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("catalog.base_url", "https://api.audnex.us")
	v.SetDefault("catalog.timeout_secs", 30)
	v.SetDefault("catalog.rate_per_sec", 10.0)
	v.SetDefault("catalog.rate_burst", 10)
	v.SetDefault("catalog.cache_ttl_mins", 60)
	v.SetDefault("catalog.cache_entries", 256)
	v.SetDefault("catalog.retry_attempts", 3)
	v.SetDefault("probe.ffprobe_path", "ffprobe")
	v.SetDefault("engine.source_timeout_secs", 45)
	v.SetDefault("batch.max_concurrent_items", 4)
	v.SetDefault("store.path", "quill.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

	// A zero or negative limit would stall every batch worker.
	cfg.Batch.MaxConcurrentItems = max(cfg.Batch.MaxConcurrentItems, 1)

	return &cfg, nil
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
