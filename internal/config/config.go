// Package config loads application configuration from a YAML file and
// BUZZMILL_* environment variables, with environment taking precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"buzzmill/internal/factory"
	"buzzmill/internal/scheduler"
	"buzzmill/internal/storage"
)

// Config is the full application configuration.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `mapstructure:"db_path"`

	// RegistryPath optionally points at a YAML source registry. Empty means
	// the compiled-in registry.
	RegistryPath string `mapstructure:"registry_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	Harvest  HarvestConfig  `mapstructure:"harvest"`
	Cycle    CycleConfig    `mapstructure:"cycle"`
	Curation CurationConfig `mapstructure:"curation"`
	Factory  FactoryConfig  `mapstructure:"factory"`
}

// HarvestConfig tunes topic collection.
type HarvestConfig struct {
	MaxTopics   int           `mapstructure:"max_topics"`
	MinTitleLen int           `mapstructure:"min_title_len"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CycleConfig tunes the two periodic jobs.
type CycleConfig struct {
	Cap           int           `mapstructure:"cap"`
	ShortInterval time.Duration `mapstructure:"short_interval"`
	LongSchedule  string        `mapstructure:"long_schedule"`
}

// CurationConfig tunes the long cycle's batch request.
type CurationConfig struct {
	AgroCount       int     `mapstructure:"agro_count"`
	InfoCount       int     `mapstructure:"info_count"`
	MinQualityScore float64 `mapstructure:"min_quality_score"`
}

// FactoryConfig points at the production service.
type FactoryConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration. An explicit path must exist; otherwise a
// buzzmill.yaml is searched in the working directory and ~/.config/buzzmill,
// and a missing file just means defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", "data/buzzmill.db")
	v.SetDefault("registry_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("harvest.max_topics", 15)
	v.SetDefault("harvest.min_title_len", 10)
	v.SetDefault("harvest.timeout", "12s")
	v.SetDefault("cycle.cap", 3)
	v.SetDefault("cycle.short_interval", "30m")
	v.SetDefault("cycle.long_schedule", "0 9,21 * * *")
	v.SetDefault("curation.agro_count", 2)
	v.SetDefault("curation.info_count", 2)
	v.SetDefault("curation.min_quality_score", 6.5)
	v.SetDefault("factory.url", "http://localhost:5001")
	v.SetDefault("factory.api_key", "")
	v.SetDefault("factory.timeout", "30s")

	v.SetEnvPrefix("BUZZMILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("buzzmill")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/buzzmill")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Harvest.MaxTopics <= 0 {
		return fmt.Errorf("harvest.max_topics must be positive, got %d", c.Harvest.MaxTopics)
	}
	if c.Cycle.Cap <= 0 {
		return fmt.Errorf("cycle.cap must be positive, got %d", c.Cycle.Cap)
	}
	if c.Cycle.Cap > c.Harvest.MaxTopics {
		return fmt.Errorf("cycle.cap (%d) exceeds harvest.max_topics (%d)", c.Cycle.Cap, c.Harvest.MaxTopics)
	}
	if c.Cycle.ShortInterval < time.Minute {
		return fmt.Errorf("cycle.short_interval must be at least 1m, got %s", c.Cycle.ShortInterval)
	}
	if c.Curation.MinQualityScore < 0 || c.Curation.MinQualityScore > 10 {
		return fmt.Errorf("curation.min_quality_score must be in [0,10], got %g", c.Curation.MinQualityScore)
	}
	return nil
}

// StorageConfig converts to the storage layer's config.
func (c *Config) StorageConfig() *storage.Config {
	return &storage.Config{Path: c.DBPath}
}

// SchedulerConfig converts to the scheduler's config.
func (c *Config) SchedulerConfig() scheduler.Config {
	return scheduler.Config{
		HarvestMax:    c.Harvest.MaxTopics,
		CycleCap:      c.Cycle.Cap,
		ShortInterval: c.Cycle.ShortInterval,
		LongSchedule:  c.Cycle.LongSchedule,
		Curation: factory.CurationRequest{
			AgroCount:       c.Curation.AgroCount,
			InfoCount:       c.Curation.InfoCount,
			MinQualityScore: c.Curation.MinQualityScore,
		},
	}
}

// FactoryClientConfig converts to the production service client's config.
func (c *Config) FactoryClientConfig() factory.Config {
	return factory.Config{
		BaseURL: c.Factory.URL,
		APIKey:  c.Factory.APIKey,
		Timeout: c.Factory.Timeout,
	}
}
