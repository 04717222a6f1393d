// Package config loads graver settings from defaults, an optional config
// file and GRAVER_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Site    SiteConfig    `mapstructure:"site"`
	Search  SearchConfig  `mapstructure:"search"`
	DB      DbConfig      `mapstructure:"db"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type HTTPConfig struct {
	UserAgent       string        `mapstructure:"user_agent"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxConnsPerHost int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout"`
	ProxyURL        string        `mapstructure:"proxy_url"`
}

type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type SearchConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type DbConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// ScrapeConfig controls batch scraping of memorial lists.
type ScrapeConfig struct {
	Delay        time.Duration `mapstructure:"delay"`
	Jitter       float64       `mapstructure:"jitter"`
	FollowMerged bool          `mapstructure:"follow_merged"`
}

type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load builds a Config from defaults, the file at path (if any) and the
// environment. GRAVER_HTTP_MAX_RETRIES=5 overrides http.max_retries.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GRAVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.user_agent", "Mozilla/5.0")
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.retry_delay", 500*time.Millisecond)
	v.SetDefault("http.max_idle_conns", 100)
	v.SetDefault("http.max_conns_per_host", 10)
	v.SetDefault("http.idle_conn_timeout", 30*time.Second)
	v.SetDefault("http.proxy_url", "")
	v.SetDefault("site.base_url", "https://www.findagrave.com")
	v.SetDefault("search.page_size", 20)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "graves.db")
	v.SetDefault("scrape.delay", time.Duration(0))
	v.SetDefault("scrape.jitter", 0.3)
	v.SetDefault("scrape.follow_merged", true)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("metrics.addr", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.HTTP.RetryDelay < 0 {
		return fmt.Errorf("http.retry_delay must be >= 0")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url must be set")
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("search.page_size must be > 0")
	}
	switch c.DB.Driver {
	case "sqlite", "sqlserver":
	default:
		return fmt.Errorf("db.driver must be sqlite or sqlserver, got %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn must be set")
	}
	if c.Scrape.Jitter < 0 || c.Scrape.Jitter > 1 {
		return fmt.Errorf("scrape.jitter must be between 0 and 1")
	}
	return nil
}
