package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jobscout-za/jobscout/internal/region"
)

// Known source names, in default registration order.
var KnownSources = []string{"careerjet", "indeed", "careers24"}

const (
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultResultCap    = 20
	defaultTimeout      = 10 * time.Second
	defaultMaxItems     = 10
	defaultWatchEvery   = time.Hour
	slackWebhookPrefix  = "https://hooks.slack.com/"
	maxResultCap        = 100
	maxItemsPerSource   = 50
	minWatchInterval    = time.Minute
	defaultStorePath    = "jobscout.db"
	defaultServerAddr   = ":8080"
	defaultReadTimeout  = 5 * time.Second
	defaultWriteTimeout = 30 * time.Second
)

// Config is the root configuration for jobscout.
type Config struct {
	UserAgent    string
	ResultCap    int
	Sources      []SourceConfig
	RateLimit    RateLimitConfig
	Retry        RetryConfig
	Server       ServerConfig
	Store        StoreConfig
	Notification NotificationConfig
	Watch        WatchConfig
}

// SourceConfig describes one job board.
type SourceConfig struct {
	Name     string
	Enabled  bool
	BaseURL  string // empty means the board's public site
	Timeout  time.Duration
	MaxItems int
}

// EnabledSources returns the enabled sources in configured order.
func (c *Config) EnabledSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// RateLimitConfig bounds outbound requests per board.
type RateLimitConfig struct {
	RequestsPerSecond float64 // <= 0 disables limiting
	Burst             int
}

// RetryConfig controls retries of transient board failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// StoreConfig locates the watcher's SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// WatchConfig lists saved searches re-run on an interval.
type WatchConfig struct {
	Interval time.Duration
	Searches []SearchConfig
}

// SearchConfig is one saved search.
type SearchConfig struct {
	Name     string `yaml:"name"`
	Keywords string `yaml:"keywords"`
	Region   string `yaml:"region"`
	Town     string `yaml:"town"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	UserAgent    string             `yaml:"user_agent"`
	Aggregator   rawAggregator      `yaml:"aggregator"`
	Sources      []rawSourceConfig  `yaml:"sources"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Retry        rawRetryConfig     `yaml:"retry"`
	Server       rawServerConfig    `yaml:"server"`
	Store        StoreConfig        `yaml:"store"`
	Notification NotificationConfig `yaml:"notification"`
	Watch        rawWatchConfig     `yaml:"watch"`
}

type rawAggregator struct {
	ResultCap int `yaml:"result_cap"`
}

type rawSourceConfig struct {
	Name     string `yaml:"name"`
	Enabled  *bool  `yaml:"enabled"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
	MaxItems int    `yaml:"max_items"`
}

type rawRateLimitConfig struct {
	RequestsPerSecond *float64 `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

type rawServerConfig struct {
	Addr         string   `yaml:"addr"`
	ReadTimeout  string   `yaml:"read_timeout"`
	WriteTimeout string   `yaml:"write_timeout"`
	CORSOrigins  []string `yaml:"cors_origins"`
}

type rawWatchConfig struct {
	Interval string         `yaml:"interval"`
	Searches []SearchConfig `yaml:"searches"`
}

// Default returns the configuration used when no file is present: every
// known board enabled with the default timeout and item cap.
func Default() *Config {
	cfg := &Config{
		UserAgent: defaultUserAgent,
		ResultCap: defaultResultCap,
		RateLimit: RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
		Retry:     RetryConfig{MaxRetries: 1, BaseDelay: 500 * time.Millisecond},
		Server: ServerConfig{
			Addr:         defaultServerAddr,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			CORSOrigins:  []string{"http://localhost:3000"},
		},
		Store:        StoreConfig{Path: defaultStorePath},
		Notification: NotificationConfig{Type: "log"},
		Watch:        WatchConfig{Interval: defaultWatchEvery},
	}
	for _, name := range KnownSources {
		cfg.Sources = append(cfg.Sources, SourceConfig{
			Name:     name,
			Enabled:  true,
			Timeout:  defaultTimeout,
			MaxItems: defaultMaxItems,
		})
	}
	return cfg
}

// LoadOrDefault loads path, returning Default when the file does not exist
// and missingOK is set.
func LoadOrDefault(path string, missingOK bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && missingOK && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes. Environment variables are
// expanded before parsing and unset fields take their defaults.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	if raw.UserAgent != "" {
		cfg.UserAgent = raw.UserAgent
	}
	if raw.Aggregator.ResultCap != 0 {
		cfg.ResultCap = raw.Aggregator.ResultCap
	}

	if len(raw.Sources) > 0 {
		cfg.Sources = nil
		for i, rs := range raw.Sources {
			sc := SourceConfig{
				Name:     strings.ToLower(strings.TrimSpace(rs.Name)),
				Enabled:  rs.Enabled == nil || *rs.Enabled,
				BaseURL:  rs.BaseURL,
				Timeout:  defaultTimeout,
				MaxItems: defaultMaxItems,
			}
			if rs.Timeout != "" {
				d, err := time.ParseDuration(rs.Timeout)
				if err != nil {
					return nil, fmt.Errorf("parse sources[%d].timeout %q: %w", i, rs.Timeout, err)
				}
				sc.Timeout = d
			}
			if rs.MaxItems != 0 {
				sc.MaxItems = rs.MaxItems
			}
			cfg.Sources = append(cfg.Sources, sc)
		}
	}

	if raw.RateLimit.RequestsPerSecond != nil {
		cfg.RateLimit.RequestsPerSecond = *raw.RateLimit.RequestsPerSecond
	}
	if raw.RateLimit.Burst != 0 {
		cfg.RateLimit.Burst = raw.RateLimit.Burst
	}

	if raw.Retry.MaxRetries != nil {
		cfg.Retry.MaxRetries = *raw.Retry.MaxRetries
	}
	if err := parseDuration("retry.base_delay", raw.Retry.BaseDelay, &cfg.Retry.BaseDelay); err != nil {
		return nil, err
	}

	if raw.Server.Addr != "" {
		cfg.Server.Addr = raw.Server.Addr
	}
	if len(raw.Server.CORSOrigins) > 0 {
		cfg.Server.CORSOrigins = raw.Server.CORSOrigins
	}
	if err := parseDuration("server.read_timeout", raw.Server.ReadTimeout, &cfg.Server.ReadTimeout); err != nil {
		return nil, err
	}
	if err := parseDuration("server.write_timeout", raw.Server.WriteTimeout, &cfg.Server.WriteTimeout); err != nil {
		return nil, err
	}

	if raw.Store.Path != "" {
		cfg.Store.Path = raw.Store.Path
	}
	if raw.Notification.Type != "" {
		cfg.Notification = raw.Notification
	}

	if err := parseDuration("watch.interval", raw.Watch.Interval, &cfg.Watch.Interval); err != nil {
		return nil, err
	}
	cfg.Watch.Searches = raw.Watch.Searches

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration overwrites dst when value is set.
func parseDuration(field, value string, dst *time.Duration) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	*dst = d
	return nil
}

func isKnownSource(name string) bool {
	for _, k := range KnownSources {
		if k == name {
			return true
		}
	}
	return false
}

func validate(cfg *Config) error {
	if cfg.ResultCap < 1 || cfg.ResultCap > maxResultCap {
		return fmt.Errorf("aggregator.result_cap must be between 1 and %d, got %d", maxResultCap, cfg.ResultCap)
	}

	seen := make(map[string]bool)
	enabled := 0
	for i, s := range cfg.Sources {
		if !isKnownSource(s.Name) {
			return fmt.Errorf("sources[%d]: unknown source %q (known: %s)", i, s.Name, strings.Join(KnownSources, ", "))
		}
		if seen[s.Name] {
			return fmt.Errorf("sources[%d]: duplicate source %q", i, s.Name)
		}
		seen[s.Name] = true
		if s.Timeout <= 0 {
			return fmt.Errorf("sources[%d].timeout must be positive, got %v", i, s.Timeout)
		}
		if s.MaxItems < 1 || s.MaxItems > maxItemsPerSource {
			return fmt.Errorf("sources[%d].max_items must be between 1 and %d, got %d", i, maxItemsPerSource, s.MaxItems)
		}
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	if cfg.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit.burst must not be negative, got %d", cfg.RateLimit.Burst)
	}
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.BaseDelay <= 0 {
		return fmt.Errorf("retry.base_delay must be positive, got %v", cfg.Retry.BaseDelay)
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	names := make(map[string]bool)
	for i, s := range cfg.Watch.Searches {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("watch.searches[%d]: name is required", i)
		}
		if names[s.Name] {
			return fmt.Errorf("watch.searches[%d]: duplicate name %q", i, s.Name)
		}
		names[s.Name] = true
		if _, err := region.Resolve(s.Region, s.Town); err != nil {
			return fmt.Errorf("watch.searches[%d] (%s): %w", i, s.Name, err)
		}
	}
	if len(cfg.Watch.Searches) > 0 && cfg.Watch.Interval < minWatchInterval {
		return fmt.Errorf("watch.interval must be at least %v, got %v", minWatchInterval, cfg.Watch.Interval)
	}

	return nil
}
