// Package config loads the process configuration and the module metadata.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/reactor/docsproxy/client"
)

// EnvPrefix prefixes environment overrides, e.g. DOCSPROXY_LISTEN.
const EnvPrefix = "DOCSPROXY"

// Config is the process configuration.
type Config struct {
	Listen      string                `mapstructure:"listen"`
	ModulesFile string                `mapstructure:"modules_file"`
	Log         LogConfig             `mapstructure:"log"`
	Hosts       HostsConfig           `mapstructure:"hosts"`
	Refresh     RefreshConfig         `mapstructure:"refresh"`
	Feeds       map[string]FeedConfig `mapstructure:"feeds"`
	Fetch       FetchConfig           `mapstructure:"fetch"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// HostsConfig names the upstream repositories archives are served from.
type HostsConfig struct {
	Mutable string `mapstructure:"mutable"`
	Archive string `mapstructure:"archive"`
}

type RefreshConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Interval    time.Duration `mapstructure:"interval"`
	Concurrency int           `mapstructure:"concurrency"`
}

// FeedConfig overrides the base URL of a version feed.
type FeedConfig struct {
	URL string `mapstructure:"url"`
}

type FetchConfig struct {
	MaxRetries int    `mapstructure:"max_retries"`
	UserAgent  string `mapstructure:"user_agent"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	hosts := client.DefaultHosts()
	return Config{
		Listen: ":8080",
		Log:    LogConfig{Level: "info"},
		Hosts:  HostsConfig{Mutable: hosts.Mutable, Archive: hosts.Archive},
		Refresh: RefreshConfig{
			Enabled:     true,
			Interval:    time.Hour,
			Concurrency: 4,
		},
		Fetch: FetchConfig{
			MaxRetries: 3,
			UserAgent:  "docsproxy/1.0",
		},
	}
}

// Load reads the configuration from path, if not empty, and from
// DOCSPROXY_* environment variables over the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("listen", defaults.Listen)
	v.SetDefault("modules_file", defaults.ModulesFile)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("hosts.mutable", defaults.Hosts.Mutable)
	v.SetDefault("hosts.archive", defaults.Hosts.Archive)
	v.SetDefault("refresh.enabled", defaults.Refresh.Enabled)
	v.SetDefault("refresh.interval", defaults.Refresh.Interval)
	v.SetDefault("refresh.concurrency", defaults.Refresh.Concurrency)
	v.SetDefault("fetch.max_retries", defaults.Fetch.MaxRetries)
	v.SetDefault("fetch.user_agent", defaults.Fetch.UserAgent)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot.
func (c *Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if c.Refresh.Enabled && c.Refresh.Interval <= 0 {
		errs = append(errs, fmt.Errorf("refresh.interval must be positive, got %s", c.Refresh.Interval))
	}
	if c.Refresh.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("refresh.concurrency must be at least 1, got %d", c.Refresh.Concurrency))
	}
	if c.Fetch.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_retries must not be negative, got %d", c.Fetch.MaxRetries))
	}
	return errors.Join(errs...)
}

// ClientHosts returns the upstream hosts for the URL builder.
func (c *Config) ClientHosts() client.Hosts {
	return client.Hosts{Mutable: c.Hosts.Mutable, Archive: c.Hosts.Archive}
}

// FeedURL returns the configured base URL of feed, or "" for its default.
func (c *Config) FeedURL(feed string) string {
	return c.Feeds[feed].URL
}
