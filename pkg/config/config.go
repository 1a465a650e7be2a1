// Package config loads the daemon configuration from defaults, an optional
// YAML file and INSIGHTS_* environment variables, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bsidebar/insights/pkg/kvstore"
	"github.com/bsidebar/insights/pkg/paths"
	"github.com/bsidebar/insights/pkg/telemetry"
	"github.com/bsidebar/insights/pkg/version"
)

// EnvPrefix is prepended to every environment variable, e.g.
// INSIGHTS_STORE_DRIVER for store.driver.
const EnvPrefix = "INSIGHTS"

type Config struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Interval       time.Duration `mapstructure:"interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	MaxRetries     int           `mapstructure:"max_retries"`
	DevMode        bool          `mapstructure:"dev_mode"`
	Enabled        bool          `mapstructure:"enabled"`
	Version        string        `mapstructure:"version"`
	Language       string        `mapstructure:"language"`

	Store     StoreConfig     `mapstructure:"store"`
	Bookmarks BookmarksConfig `mapstructure:"bookmarks"`
	Settings  SettingsConfig  `mapstructure:"settings"`
}

type StoreConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	RedisURL string `mapstructure:"redis_url"`
}

type BookmarksConfig struct {
	Path string `mapstructure:"path"`
}

type SettingsConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads the configuration. An empty configPath looks for insights.yaml
// in the config directory and the working directory; a missing file is not
// an error unless configPath names it explicitly.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("endpoint", "")
	v.SetDefault("interval", telemetry.DefaultInterval)
	v.SetDefault("request_timeout", telemetry.DefaultRequestTimeout)
	v.SetDefault("retry_delay", telemetry.DefaultRetryDelay)
	v.SetDefault("max_retries", telemetry.DefaultMaxRetries)
	v.SetDefault("dev_mode", false)
	v.SetDefault("enabled", true)
	v.SetDefault("version", version.Version)
	v.SetDefault("language", "")
	v.SetDefault("store.driver", kvstore.DriverFile)
	v.SetDefault("store.path", filepath.Join(paths.GetDataDir(), "state.yaml"))
	v.SetDefault("store.redis_url", "")
	v.SetDefault("bookmarks.path", "")
	v.SetDefault("settings.path", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("insights")
		v.SetConfigType("yaml")
		v.AddConfigPath(paths.GetConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("endpoint must be an http(s) URL, got %q", c.Endpoint))
		}
	}
	if c.Interval <= 0 {
		errs = append(errs, errors.New("interval must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.RetryDelay <= 0 {
		errs = append(errs, errors.New("retry_delay must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("max_retries must be >= 0"))
	}

	switch c.Store.Driver {
	case kvstore.DriverMemory:
	case kvstore.DriverFile, kvstore.DriverSQLite:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for the %s driver", c.Store.Driver))
		}
	case kvstore.DriverRedis:
		if c.Store.RedisURL == "" {
			errs = append(errs, errors.New("store.redis_url is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}

	return errors.Join(errs...)
}

// StoreOptions returns the kvstore options for the configured backend.
func (c *Config) StoreOptions() kvstore.Options {
	return kvstore.Options{
		Driver:   c.Store.Driver,
		Path:     c.Store.Path,
		RedisURL: c.Store.RedisURL,
	}
}
